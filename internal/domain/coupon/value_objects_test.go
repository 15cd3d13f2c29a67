//go:build unit

package coupon_test

import (
	"testing"
	"time"

	"coupon-sync/internal/domain/coupon"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeCode(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"lowercases", "SAVE10", "save10"},
		{"trims whitespace", "  save10\t", "save10"},
		{"both", " SaVe10 ", "save10"},
		{"empty", "", ""},
		{"whitespace only", "   ", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, coupon.NormalizeCode(tc.in))
		})
	}
}

func TestExpiredAt(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	assert.True(t, (&coupon.Coupon{ExpiresAt: &past}).ExpiredAt(now))
	assert.False(t, (&coupon.Coupon{ExpiresAt: &future}).ExpiredAt(now))
	assert.False(t, (&coupon.Coupon{ExpiresAt: &now}).ExpiredAt(now), "expiry exactly now is not yet expired")
	assert.False(t, (&coupon.Coupon{}).ExpiredAt(now), "nil expiry never expires")
}

func TestSameDetails(t *testing.T) {
	expiry := time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC)
	c := &coupon.Coupon{Terms: "Online only", ExpiresAt: &expiry}

	sameExpiry := expiry
	assert.True(t, c.SameDetails("Online only", &sameExpiry))
	assert.False(t, c.SameDetails("In-store only", &expiry))
	assert.False(t, c.SameDetails("Online only", nil))

	open := &coupon.Coupon{Terms: "Online only"}
	assert.True(t, open.SameDetails("Online only", nil))
	assert.False(t, open.SameDetails("Online only", &expiry))
}
