package usecase

import (
	"context"
	"time"

	"coupon-sync/internal/domain/syncrun"
	"coupon-sync/internal/pkg/clock"
)

// StatusView is the externally visible run state, including when the next
// scheduled run is due.
type StatusView struct {
	Status          syncrun.Status
	Actor           syncrun.Actor
	RunID           *string
	StartedAt       *time.Time
	Processed       int
	Failed          int
	LastRunAt       *time.Time
	LastSuccessAt   *time.Time
	NextScheduledAt time.Time
}

type StatusUseCase struct {
	controller   *RunStateController
	clock        clock.Clock
	scheduleHour int
}

func NewStatusUseCase(controller *RunStateController, clk clock.Clock, scheduleHourUTC int) *StatusUseCase {
	return &StatusUseCase{controller: controller, clock: clk, scheduleHour: scheduleHourUTC}
}

func (u *StatusUseCase) Get(ctx context.Context) (*StatusView, error) {
	st, err := u.controller.State(ctx)
	if err != nil {
		return nil, err
	}

	view := &StatusView{
		Status:          st.Status,
		Actor:           st.Actor,
		StartedAt:       st.StartedAt,
		Processed:       st.Processed,
		Failed:          st.Failed,
		LastRunAt:       st.LastRunAt,
		LastSuccessAt:   st.LastSuccessAt,
		NextScheduledAt: u.nextScheduledAt(),
	}
	if st.RunID != nil {
		id := st.RunID.String()
		view.RunID = &id
	}
	return view, nil
}

// nextScheduledAt is today's schedule hour if still ahead, else tomorrow's.
func (u *StatusUseCase) nextScheduledAt() time.Time {
	now := u.clock.Now().UTC()
	next := time.Date(now.Year(), now.Month(), now.Day(), u.scheduleHour, 0, 0, 0, time.UTC)
	if !next.After(now) {
		next = next.Add(24 * time.Hour)
	}
	return next
}
