package coupon

import "strings"

// NormalizeCode lowercases and trims a voucher code. Two coupons of the same
// brand whose normalized codes match are considered duplicates.
func NormalizeCode(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}

// SourceRef identifies an offer at its provider of origin.
type SourceRef struct {
	Source   string
	SourceID string
}

func (r SourceRef) IsZero() bool {
	return r.Source == "" || r.SourceID == ""
}
