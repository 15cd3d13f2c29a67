package usecase

import (
	"context"
	"log/slog"

	"coupon-sync/internal/domain/syncrun"
	"coupon-sync/internal/pkg/clock"
)

// ExpirationUseCase deletes coupons whose expiry has passed. Coupons without
// an expiry are permanent and never swept.
type ExpirationUseCase struct {
	controller *RunStateController
	coupons    CouponRepository
	clock      clock.Clock
	logger     *slog.Logger
}

func NewExpirationUseCase(controller *RunStateController, coupons CouponRepository, clk clock.Clock, logger *slog.Logger) *ExpirationUseCase {
	return &ExpirationUseCase{controller: controller, coupons: coupons, clock: clk, logger: logger}
}

func (u *ExpirationUseCase) PurgeExpired(ctx context.Context) (int64, error) {
	handle, err := u.controller.TryStart(ctx, syncrun.ActorMaintenance)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err := u.controller.Finish(ctx, handle, syncrun.Stats{}, true); err != nil {
			u.logger.Error("failed to release maintenance run state", "run_id", handle.RunID, "error", err)
		}
	}()

	removed, err := u.coupons.DeleteExpired(ctx, u.clock.Now())
	if err != nil {
		return 0, err
	}
	u.logger.Info("expired coupons purged", "removed", removed)
	return removed, nil
}
