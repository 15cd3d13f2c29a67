//go:build unit

package usecase_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"coupon-sync/internal/domain/coupon"
	"coupon-sync/internal/domain/syncrun"
	"coupon-sync/internal/pkg/clock"
	"coupon-sync/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPurgeExpired(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	coupons := &fakeCouponRepo{}
	runState := newFakeRunStateRepo()
	clk := clock.NewMockClock(now)
	logger := slog.New(slog.DiscardHandler)
	controller := usecase.NewRunStateController(runState, clk, logger)
	uc := usecase.NewExpirationUseCase(controller, coupons, clk, logger)

	yesterday := now.Add(-24 * time.Hour)
	tomorrow := now.Add(24 * time.Hour)

	expired := uuid.New()
	permanent := uuid.New()
	upcoming := uuid.New()
	coupons.add(coupon.Coupon{ID: expired, BrandID: uuid.New(), ExpiresAt: &yesterday})
	coupons.add(coupon.Coupon{ID: permanent, BrandID: uuid.New()})
	coupons.add(coupon.Coupon{ID: upcoming, BrandID: uuid.New(), ExpiresAt: &tomorrow})

	removed, err := uc.PurgeExpired(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(1), removed)
	assert.Nil(t, coupons.find(expired))
	assert.NotNil(t, coupons.find(permanent), "coupons without expiry are never purged")
	assert.NotNil(t, coupons.find(upcoming))
	assert.Equal(t, syncrun.StatusIdle, runState.state.Status, "gate released after the sweep")
}

func TestPurgeExpiredLeavesScheduledRunAvailable(t *testing.T) {
	ctx := context.Background()
	coupons := &fakeCouponRepo{}
	runState := newFakeRunStateRepo()
	clk := clock.NewMockClock(time.Date(2026, 8, 31, 0, 5, 0, 0, time.UTC))
	logger := slog.New(slog.DiscardHandler)
	controller := usecase.NewRunStateController(runState, clk, logger)
	uc := usecase.NewExpirationUseCase(controller, coupons, clk, logger)

	// A sweep just after midnight must not satisfy the completed-today guard.
	_, err := uc.PurgeExpired(ctx)
	require.NoError(t, err)

	clk.Set(time.Date(2026, 8, 31, 3, 0, 0, 0, time.UTC))
	_, err = controller.TryStart(ctx, syncrun.ActorScheduled)
	assert.NoError(t, err, "scheduled run still due after a maintenance sweep")
}

func TestPurgeExpiredBlockedByActiveRun(t *testing.T) {
	coupons := &fakeCouponRepo{}
	runState := newFakeRunStateRepo()
	clk := clock.NewMockClock(time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC))
	logger := slog.New(slog.DiscardHandler)
	controller := usecase.NewRunStateController(runState, clk, logger)
	uc := usecase.NewExpirationUseCase(controller, coupons, clk, logger)

	runState.state.Status = syncrun.StatusRunning

	_, err := uc.PurgeExpired(context.Background())
	assert.ErrorIs(t, err, usecase.ErrAlreadyRunning)
}
