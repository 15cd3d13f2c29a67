// Package provider holds one client per external service: two affiliate
// networks (awin, tradetracker), a text-generation provider (openai) and a
// URL shortener (yourls). All of them share the httpx retry core; affiliate
// list endpoints additionally read through the response cache.
package provider

import (
	"context"
	"encoding/json"
	"time"

	"coupon-sync/internal/infra/httpx"
)

// doer is the slice of httpx.Client the clients depend on. Kept as an
// interface so tests can script responses without a network.
type doer interface {
	Do(ctx context.Context, req httpx.Request) (json.RawMessage, error)
}

// parseOfferDate accepts the date shapes the affiliate APIs emit.
func parseOfferDate(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t
		}
	}
	return nil
}
