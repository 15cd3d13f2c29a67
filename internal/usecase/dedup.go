package usecase

import (
	"context"
	"log/slog"

	"coupon-sync/internal/domain/coupon"
	"coupon-sync/internal/domain/syncrun"

	"github.com/google/uuid"
)

// DuplicateGroup is one set of coupons sharing a brand and normalized code.
// CanonicalID is the member kept; RemoveIDs are purged in a live run.
type DuplicateGroup struct {
	BrandID        uuid.UUID   `json:"brand_id"`
	NormalizedCode string      `json:"normalized_code"`
	CanonicalID    uuid.UUID   `json:"canonical_id"`
	RemoveIDs      []uuid.UUID `json:"remove_ids"`
}

// DedupReport is the outcome of a purge pass. In dry-run mode Removed stays
// zero and Groups holds the would-be plan.
type DedupReport struct {
	Groups  []DuplicateGroup `json:"groups"`
	Removed int64            `json:"removed"`
	DryRun  bool             `json:"dry_run"`
}

// DedupUseCase finds coupons that collide on (brand, normalized code) and
// keeps one canonical member per group. Preference goes to the earliest
// created member that still has a provider source id, since that one can be
// refreshed on the next sync; failing that, plain earliest created wins.
type DedupUseCase struct {
	controller *RunStateController
	coupons    CouponRepository
	logger     *slog.Logger
}

func NewDedupUseCase(controller *RunStateController, coupons CouponRepository, logger *slog.Logger) *DedupUseCase {
	return &DedupUseCase{controller: controller, coupons: coupons, logger: logger}
}

// PurgeDuplicates plans and, unless dryRun, executes the removal. The run
// gate is held for the whole pass so a sync cannot recreate rows mid-purge.
func (u *DedupUseCase) PurgeDuplicates(ctx context.Context, dryRun bool) (*DedupReport, error) {
	handle, err := u.controller.TryStart(ctx, syncrun.ActorMaintenance)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := u.controller.Finish(ctx, handle, syncrun.Stats{}, true); err != nil {
			u.logger.Error("failed to release maintenance run state", "run_id", handle.RunID, "error", err)
		}
	}()

	all, err := u.coupons.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	report := &DedupReport{Groups: planGroups(all), DryRun: dryRun}
	if dryRun {
		return report, nil
	}

	var removeIDs []uuid.UUID
	for _, g := range report.Groups {
		removeIDs = append(removeIDs, g.RemoveIDs...)
	}
	removed, err := u.coupons.DeleteByIDs(ctx, removeIDs)
	if err != nil {
		return nil, err
	}
	report.Removed = removed

	u.logger.Info("duplicate coupons purged", "groups", len(report.Groups), "removed", removed)
	return report, nil
}

type dedupKey struct {
	brandID uuid.UUID
	code    string
}

// planGroups expects coupons ordered by creation time ascending, which makes
// "earliest" simply "first seen".
func planGroups(coupons []coupon.Coupon) []DuplicateGroup {
	byKey := make(map[dedupKey][]coupon.Coupon)
	var order []dedupKey
	for _, c := range coupons {
		code := coupon.NormalizeCode(c.Code)
		if code == "" {
			continue
		}
		key := dedupKey{brandID: c.BrandID, code: code}
		if _, seen := byKey[key]; !seen {
			order = append(order, key)
		}
		byKey[key] = append(byKey[key], c)
	}

	var groups []DuplicateGroup
	for _, key := range order {
		members := byKey[key]
		if len(members) < 2 {
			continue
		}

		canonical := members[0]
		for _, m := range members {
			if m.SourceID != "" {
				canonical = m
				break
			}
		}

		group := DuplicateGroup{
			BrandID:        key.brandID,
			NormalizedCode: key.code,
			CanonicalID:    canonical.ID,
		}
		for _, m := range members {
			if m.ID != canonical.ID {
				group.RemoveIDs = append(group.RemoveIDs, m.ID)
			}
		}
		groups = append(groups, group)
	}
	return groups
}
