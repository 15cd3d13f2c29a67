package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"coupon-sync/internal/domain/syncrun"
	"coupon-sync/internal/pkg/clock"
	"coupon-sync/internal/pkg/errs"

	"github.com/google/uuid"
)

var (
	ErrAlreadyRunning        = errs.New("a sync run is already in progress")
	ErrAlreadyCompletedToday = errs.New("scheduled run already completed today")
	ErrNotRunning            = errs.New("no sync run in progress")
)

// StartRateLimitedError rejects a manual start that comes too soon after the
// previous one, carrying the remaining wait.
type StartRateLimitedError struct {
	Remaining time.Duration
}

func (e *StartRateLimitedError) Error() string {
	return fmt.Sprintf("manual start rate limited, retry in %s", e.Remaining)
}

// ManualStartSpacing is the minimum gap between manually-triggered runs.
const ManualStartSpacing = 30 * time.Second

// RunStateController is the single-flight gate for the pipeline. The state
// itself lives in a durable row with compare-and-set acquisition, so the gate
// holds across separate processes (API server and cron CLI).
//
// Cancellation is strictly cooperative: requestStop only flips a flag, and
// the orchestrator observes it at checkpoints between units of work.
type RunStateController struct {
	repo   RunStateRepository
	clock  clock.Clock
	logger *slog.Logger
}

func NewRunStateController(repo RunStateRepository, clk clock.Clock, logger *slog.Logger) *RunStateController {
	return &RunStateController{repo: repo, clock: clk, logger: logger}
}

// TryStart acquires the gate for a new run. Manual starts are additionally
// spaced at least ManualStartSpacing apart; scheduled starts are no-ops when
// today already saw a successful run. Batch and maintenance actors skip both
// guards since they hold the gate only briefly.
func (c *RunStateController) TryStart(ctx context.Context, actor syncrun.Actor) (*syncrun.Handle, error) {
	st, err := c.repo.Get(ctx)
	if err != nil {
		return nil, errs.Wrap(err, "failed to read run state")
	}
	if !st.Status.CanStart() {
		return nil, ErrAlreadyRunning
	}

	now := c.clock.Now()
	switch actor {
	case syncrun.ActorManual:
		if st.LastManualAt != nil {
			if wait := ManualStartSpacing - now.Sub(*st.LastManualAt); wait > 0 {
				return nil, &StartRateLimitedError{Remaining: wait}
			}
		}
	case syncrun.ActorScheduled:
		if st.LastSuccessAt != nil && sameDay(*st.LastSuccessAt, now) {
			return nil, ErrAlreadyCompletedToday
		}
	}

	handle := &syncrun.Handle{
		RunID:     uuid.New(),
		Actor:     actor,
		StartedAt: now,
	}

	acquired, err := c.repo.TryAcquire(ctx, handle.RunID, actor, now)
	if err != nil {
		return nil, errs.Wrap(err, "failed to acquire run state")
	}
	if !acquired {
		// Lost the race against another process between Get and TryAcquire.
		return nil, ErrAlreadyRunning
	}

	c.logger.Info("sync run started", "run_id", handle.RunID, "actor", string(actor))
	return handle, nil
}

// RequestStop flags the active run for cooperative shutdown. Idempotent while
// a stop is already pending.
func (c *RunStateController) RequestStop(ctx context.Context) error {
	ok, err := c.repo.RequestStop(ctx)
	if err != nil {
		return errs.Wrap(err, "failed to request stop")
	}
	if !ok {
		return ErrNotRunning
	}
	c.logger.Info("sync run stop requested")
	return nil
}

// Checkpoint publishes progress and reports whether the run should continue.
// A failed state read never kills a run; cancellation stays best-effort.
func (c *RunStateController) Checkpoint(ctx context.Context, handle *syncrun.Handle, stats syncrun.Stats) bool {
	if err := c.repo.UpdateProgress(ctx, handle.RunID, stats.Processed, stats.Failed); err != nil {
		c.logger.Warn("failed to publish run progress", "run_id", handle.RunID, "error", err)
	}

	status, err := c.repo.Status(ctx)
	if err != nil {
		c.logger.Warn("failed to read run status at checkpoint", "run_id", handle.RunID, "error", err)
		return true
	}
	return status != syncrun.StatusStopRequested
}

// Finish releases the gate and persists the summary. completed marks runs
// that exhausted their input rather than being stopped. Run history, the
// completed-today marker included, is recorded only for sync pipeline actors;
// batch and maintenance holders just give the gate back.
func (c *RunStateController) Finish(ctx context.Context, handle *syncrun.Handle, stats syncrun.Stats, completed bool) error {
	if err := c.repo.Finish(ctx, handle.RunID, stats, c.clock.Now(), completed); err != nil {
		return errs.Wrap(err, "failed to finish run")
	}
	c.logger.Info("sync run finished",
		"run_id", handle.RunID,
		"actor", string(handle.Actor),
		"processed", stats.Processed,
		"failed", stats.Failed,
		"created", stats.Created,
		"updated", stats.Updated,
		"completed", completed,
	)
	return nil
}

func (c *RunStateController) State(ctx context.Context) (*syncrun.State, error) {
	return c.repo.Get(ctx)
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}
