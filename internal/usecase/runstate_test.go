//go:build unit

package usecase_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"coupon-sync/internal/domain/syncrun"
	"coupon-sync/internal/pkg/clock"
	"coupon-sync/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newController(repo usecase.RunStateRepository, clk clock.Clock) *usecase.RunStateController {
	return usecase.NewRunStateController(repo, clk, slog.New(slog.DiscardHandler))
}

func TestTryStartAcquiresAndReleases(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRunStateRepo()
	clk := clock.NewMockClock(time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC))
	ctrl := newController(repo, clk)

	handle, err := ctrl.TryStart(ctx, syncrun.ActorManual)
	require.NoError(t, err)
	assert.Equal(t, syncrun.ActorManual, handle.Actor)

	st, err := ctrl.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, syncrun.StatusRunning, st.Status)

	require.NoError(t, ctrl.Finish(ctx, handle, syncrun.Stats{Processed: 3}, true))

	st, err = ctrl.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, syncrun.StatusIdle, st.Status)
	assert.Equal(t, 3, st.Processed)
	require.NotNil(t, st.LastSuccessAt)
}

func TestTryStartRejectsConcurrentRun(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRunStateRepo()
	clk := clock.NewMockClock(time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC))
	ctrl := newController(repo, clk)

	_, err := ctrl.TryStart(ctx, syncrun.ActorScheduled)
	require.NoError(t, err)

	_, err = ctrl.TryStart(ctx, syncrun.ActorManual)
	assert.ErrorIs(t, err, usecase.ErrAlreadyRunning)
}

func TestManualStartSpacing(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRunStateRepo()
	clk := clock.NewMockClock(time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC))
	ctrl := newController(repo, clk)

	first, err := ctrl.TryStart(ctx, syncrun.ActorManual)
	require.NoError(t, err)
	require.NoError(t, ctrl.Finish(ctx, first, syncrun.Stats{}, true))

	// 10 seconds later the spacing guard still applies.
	clk.Add(10 * time.Second)
	_, err = ctrl.TryStart(ctx, syncrun.ActorManual)
	var rateLimited *usecase.StartRateLimitedError
	require.ErrorAs(t, err, &rateLimited)
	assert.Equal(t, 20*time.Second, rateLimited.Remaining)

	// After the full spacing a new manual run is allowed.
	clk.Add(21 * time.Second)
	_, err = ctrl.TryStart(ctx, syncrun.ActorManual)
	assert.NoError(t, err)
}

func TestScheduledSkipsWhenAlreadyCompletedToday(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRunStateRepo()
	clk := clock.NewMockClock(time.Date(2026, 8, 31, 3, 0, 0, 0, time.UTC))
	ctrl := newController(repo, clk)

	first, err := ctrl.TryStart(ctx, syncrun.ActorScheduled)
	require.NoError(t, err)
	require.NoError(t, ctrl.Finish(ctx, first, syncrun.Stats{}, true))

	clk.Add(2 * time.Hour)
	_, err = ctrl.TryStart(ctx, syncrun.ActorScheduled)
	assert.ErrorIs(t, err, usecase.ErrAlreadyCompletedToday)

	// The guard does not apply to manual starts.
	_, err = ctrl.TryStart(ctx, syncrun.ActorManual)
	assert.NoError(t, err)
}

func TestScheduledRunsAgainNextDay(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRunStateRepo()
	clk := clock.NewMockClock(time.Date(2026, 8, 31, 3, 0, 0, 0, time.UTC))
	ctrl := newController(repo, clk)

	first, err := ctrl.TryStart(ctx, syncrun.ActorScheduled)
	require.NoError(t, err)
	require.NoError(t, ctrl.Finish(ctx, first, syncrun.Stats{}, true))

	clk.Add(24 * time.Hour)
	_, err = ctrl.TryStart(ctx, syncrun.ActorScheduled)
	assert.NoError(t, err)
}

func TestStoppedRunDoesNotCountAsSuccess(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRunStateRepo()
	clk := clock.NewMockClock(time.Date(2026, 8, 31, 3, 0, 0, 0, time.UTC))
	ctrl := newController(repo, clk)

	first, err := ctrl.TryStart(ctx, syncrun.ActorScheduled)
	require.NoError(t, err)
	require.NoError(t, ctrl.Finish(ctx, first, syncrun.Stats{}, false))

	// A stopped run leaves the day open for another scheduled attempt.
	clk.Add(time.Hour)
	_, err = ctrl.TryStart(ctx, syncrun.ActorScheduled)
	assert.NoError(t, err)
}

func TestRequestStopAndCheckpoint(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRunStateRepo()
	clk := clock.NewMockClock(time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC))
	ctrl := newController(repo, clk)

	assert.ErrorIs(t, ctrl.RequestStop(ctx), usecase.ErrNotRunning)

	handle, err := ctrl.TryStart(ctx, syncrun.ActorManual)
	require.NoError(t, err)

	assert.True(t, ctrl.Checkpoint(ctx, handle, syncrun.Stats{Processed: 1}))

	require.NoError(t, ctrl.RequestStop(ctx))
	// Repeating the request while a stop is pending stays idempotent.
	require.NoError(t, ctrl.RequestStop(ctx))

	assert.False(t, ctrl.Checkpoint(ctx, handle, syncrun.Stats{Processed: 2}))
}

func TestMaintenanceFinishDoesNotCountAsDailySuccess(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRunStateRepo()
	clk := clock.NewMockClock(time.Date(2026, 8, 31, 0, 5, 0, 0, time.UTC))
	ctrl := newController(repo, clk)

	// A maintenance pass shortly after midnight completes normally.
	handle, err := ctrl.TryStart(ctx, syncrun.ActorMaintenance)
	require.NoError(t, err)
	require.NoError(t, ctrl.Finish(ctx, handle, syncrun.Stats{}, true))

	st, err := ctrl.State(ctx)
	require.NoError(t, err)
	assert.Nil(t, st.LastSuccessAt, "maintenance passes never mark the day as synced")

	// The scheduled run later the same day must still go ahead.
	clk.Set(time.Date(2026, 8, 31, 3, 0, 0, 0, time.UTC))
	_, err = ctrl.TryStart(ctx, syncrun.ActorScheduled)
	assert.NoError(t, err)
}

func TestMaintenanceFinishPreservesRunCounters(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRunStateRepo()
	clk := clock.NewMockClock(time.Date(2026, 8, 31, 3, 0, 0, 0, time.UTC))
	ctrl := newController(repo, clk)

	first, err := ctrl.TryStart(ctx, syncrun.ActorScheduled)
	require.NoError(t, err)
	require.NoError(t, ctrl.Finish(ctx, first, syncrun.Stats{Processed: 5, Failed: 2}, true))

	syncFinishedAt := clk.Now()
	clk.Add(time.Hour)

	handle, err := ctrl.TryStart(ctx, syncrun.ActorMaintenance)
	require.NoError(t, err)
	assert.True(t, ctrl.Checkpoint(ctx, handle, syncrun.Stats{Processed: 9}))
	require.NoError(t, ctrl.Finish(ctx, handle, syncrun.Stats{}, true))

	st, err := ctrl.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, st.Processed, "counters keep describing the last sync run")
	assert.Equal(t, 2, st.Failed)
	require.NotNil(t, st.LastRunAt)
	assert.Equal(t, syncFinishedAt, *st.LastRunAt)
	require.NotNil(t, st.LastSuccessAt)
	assert.Equal(t, syncFinishedAt, *st.LastSuccessAt)
}

func TestBatchActorSkipsGuards(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRunStateRepo()
	clk := clock.NewMockClock(time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC))
	ctrl := newController(repo, clk)

	// Seed recent manual and successful scheduled history.
	first, err := ctrl.TryStart(ctx, syncrun.ActorManual)
	require.NoError(t, err)
	require.NoError(t, ctrl.Finish(ctx, first, syncrun.Stats{}, true))

	clk.Add(time.Second)
	handle, err := ctrl.TryStart(ctx, syncrun.ActorBatch)
	require.NoError(t, err)
	require.NoError(t, ctrl.Finish(ctx, handle, syncrun.Stats{}, true))

	clk.Add(time.Second)
	_, err = ctrl.TryStart(ctx, syncrun.ActorMaintenance)
	assert.NoError(t, err)
}
