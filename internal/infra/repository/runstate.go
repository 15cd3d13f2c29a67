package repository

import (
	"context"
	"time"

	"coupon-sync/internal/domain/syncrun"
	"coupon-sync/internal/infra"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RunStateRepository owns the single-row sync_state record. The Idle→Running
// transition is a compare-and-set UPDATE so two processes (API server and
// cron CLI) can race tryStart safely without advisory locks.
type RunStateRepository struct {
	db *pgxpool.Pool
}

func NewRunStateRepository(db *pgxpool.Pool) *RunStateRepository {
	return &RunStateRepository{db: db}
}

func (r *RunStateRepository) Get(ctx context.Context) (*syncrun.State, error) {
	var (
		st     syncrun.State
		status string
		actor  *string
	)
	err := r.db.QueryRow(ctx, `
		SELECT status, run_id, actor, started_at, processed, failed,
		       last_run_at, last_success_at, last_manual_at
		FROM sync_state WHERE id = 1`).
		Scan(&status, &st.RunID, &actor, &st.StartedAt, &st.Processed, &st.Failed,
			&st.LastRunAt, &st.LastSuccessAt, &st.LastManualAt)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to read sync state", err)
	}

	st.Status = syncrun.Status(status)
	if actor != nil {
		st.Actor = syncrun.Actor(*actor)
	}
	return &st, nil
}

// TryAcquire attempts the Idle→Running transition. It returns false when the
// guard row was not in a startable state, meaning another run holds the gate.
// The processed/failed counters always describe the last sync pipeline run,
// so batch and maintenance holders leave them untouched.
func (r *RunStateRepository) TryAcquire(ctx context.Context, runID uuid.UUID, actor syncrun.Actor, now time.Time) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE sync_state SET
			status = $1, run_id = $2, actor = $3, started_at = $4,
			processed = CASE WHEN $5 THEN 0 ELSE processed END,
			failed = CASE WHEN $5 THEN 0 ELSE failed END,
			last_manual_at = CASE WHEN $3 = $6 THEN $4 ELSE last_manual_at END
		WHERE id = 1 AND status IN ($7, $8)`,
		string(syncrun.StatusRunning), runID, string(actor), now,
		actor.IsSync(),
		string(syncrun.ActorManual),
		string(syncrun.StatusIdle), string(syncrun.StatusStopped),
	)
	if err != nil {
		return false, infra.WrapRepoErr("failed to acquire run state", err)
	}
	return tag.RowsAffected() == 1, nil
}

// RequestStop flips Running→StopRequested. Returns false when nothing was
// running. Repeating the call while already stop-requested stays true.
func (r *RunStateRepository) RequestStop(ctx context.Context) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE sync_state SET status = $1
		WHERE id = 1 AND status IN ($2, $1)`,
		string(syncrun.StatusStopRequested), string(syncrun.StatusRunning),
	)
	if err != nil {
		return false, infra.WrapRepoErr("failed to request stop", err)
	}
	return tag.RowsAffected() == 1, nil
}

// Status is the cheap read used at every checkpoint.
func (r *RunStateRepository) Status(ctx context.Context) (syncrun.Status, error) {
	var status string
	err := r.db.QueryRow(ctx, `SELECT status FROM sync_state WHERE id = 1`).Scan(&status)
	if err != nil {
		return "", infra.WrapRepoErr("failed to read sync status", err)
	}
	return syncrun.Status(status), nil
}

// UpdateProgress publishes live counters so getStatus reflects the run. Only
// sync pipeline holders write counters; the actor filter keeps batch and
// maintenance checkpoints from overwriting the last sync run's numbers.
func (r *RunStateRepository) UpdateProgress(ctx context.Context, runID uuid.UUID, processed, failed int) error {
	_, err := r.db.Exec(ctx, `
		UPDATE sync_state SET processed = $2, failed = $3
		WHERE id = 1 AND run_id = $1 AND actor IN ($4, $5)`,
		runID, processed, failed,
		string(syncrun.ActorScheduled), string(syncrun.ActorManual),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to update run progress", err)
	}
	return nil
}

// Finish releases the gate back to Idle and persists the run summary. Run
// history (counters, last_run_at, the completed-today marker) is written only
// when the departing holder is a sync pipeline actor; a finished maintenance
// or batch pass releases the gate and nothing else. completed=false marks a
// cooperatively stopped or aborted run, which does not count as the day's
// successful run.
func (r *RunStateRepository) Finish(ctx context.Context, runID uuid.UUID, stats syncrun.Stats, now time.Time, completed bool) error {
	_, err := r.db.Exec(ctx, `
		UPDATE sync_state SET
			status = $2, run_id = NULL, actor = NULL, started_at = NULL,
			processed = CASE WHEN actor IN ($7, $8) THEN $3 ELSE processed END,
			failed = CASE WHEN actor IN ($7, $8) THEN $4 ELSE failed END,
			last_run_at = CASE WHEN actor IN ($7, $8) THEN $5 ELSE last_run_at END,
			last_success_at = CASE WHEN $6 AND actor IN ($7, $8) THEN $5 ELSE last_success_at END
		WHERE id = 1 AND run_id = $1`,
		runID, string(syncrun.StatusIdle), stats.Processed, stats.Failed, now, completed,
		string(syncrun.ActorScheduled), string(syncrun.ActorManual),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to finish run", err)
	}
	return nil
}
