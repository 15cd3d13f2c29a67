package notification

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type Kind string

const (
	KindCouponCreated Kind = "coupon-created"
	KindBrandCreated  Kind = "brand-created"
	KindError         Kind = "error"
	KindSyncSummary   Kind = "sync-summary"
)

// Notification is one entry of the capacity-bounded activity log. The log is
// append-only; the store evicts the oldest entries past capacity.
type Notification struct {
	ID        uuid.UUID
	Kind      Kind
	Payload   json.RawMessage
	Read      bool
	CreatedAt time.Time
}
