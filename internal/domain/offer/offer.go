// Package offer carries the transient, provider-neutral record shape produced
// by affiliate clients. Raw records exist only for the duration of a run.
package offer

import "time"

type Raw struct {
	Source    string
	SourceID  string
	BrandName string
	Title     string
	Code      string
	Terms     string
	TargetURL string
	ExpiresAt *time.Time
}

// Usable reports whether the record carries enough identity to be reconciled.
func (r Raw) Usable() bool {
	return r.Source != "" && r.SourceID != "" && r.BrandName != ""
}
