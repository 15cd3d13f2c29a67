package coupon

import (
	"time"

	"github.com/google/uuid"
)

// Coupon is a persisted offer in the catalog. The (Source, SourceID) pair is
// globally unique and acts as the idempotency key for reconciliation.
type Coupon struct {
	ID        uuid.UUID
	BrandID   uuid.UUID
	Title     string
	Code      string
	Terms     string
	URL       string
	Source    string
	SourceID  string
	ExpiresAt *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ExpiredAt reports whether the coupon's validity window has passed. Coupons
// without an expiry never expire.
func (c *Coupon) ExpiredAt(now time.Time) bool {
	return c.ExpiresAt != nil && c.ExpiresAt.Before(now)
}

// SameDetails reports whether terms and expiry already match the given values,
// letting the reconciler skip no-op writes.
func (c *Coupon) SameDetails(terms string, expiresAt *time.Time) bool {
	if c.Terms != terms {
		return false
	}
	if (c.ExpiresAt == nil) != (expiresAt == nil) {
		return false
	}
	return c.ExpiresAt == nil || c.ExpiresAt.Equal(*expiresAt)
}
