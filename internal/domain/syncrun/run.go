package syncrun

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusIdle          Status = "idle"
	StatusRunning       Status = "running"
	StatusStopRequested Status = "stop_requested"
	StatusStopped       Status = "stopped"
)

// CanStart reports whether a new run may begin from this status. A stopped
// run has already released the pipeline, so it is equivalent to idle here.
func (s Status) CanStart() bool {
	return s == StatusIdle || s == StatusStopped
}

type Actor string

const (
	ActorScheduled   Actor = "scheduled"
	ActorManual      Actor = "manual"
	ActorBatch       Actor = "batch"
	ActorMaintenance Actor = "maintenance"
)

// IsSync reports whether the actor executes the offer pipeline. Batch and
// maintenance holders borrow the gate without contributing run history.
func (a Actor) IsSync() bool {
	return a == ActorScheduled || a == ActorManual
}

// Handle identifies an acquired run. It is returned by TryStart and must be
// passed back on checkpoint/finish.
type Handle struct {
	RunID     uuid.UUID
	Actor     Actor
	StartedAt time.Time
}

// Stats is the summary persisted when a run finishes.
type Stats struct {
	Processed int
	Failed    int
	Created   int
	Updated   int
}

// State mirrors the durable single-row run record shared between processes.
type State struct {
	Status        Status
	RunID         *uuid.UUID
	Actor         Actor
	StartedAt     *time.Time
	Processed     int
	Failed        int
	LastRunAt     *time.Time
	LastSuccessAt *time.Time
	LastManualAt  *time.Time
}
