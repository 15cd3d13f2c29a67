package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"coupon-sync/internal/domain/brand"
	"coupon-sync/internal/domain/coupon"
	"coupon-sync/internal/domain/notification"
	"coupon-sync/internal/domain/offer"
	"coupon-sync/internal/domain/syncrun"
	"coupon-sync/internal/infra"
	"coupon-sync/internal/pkg/errs"
	"coupon-sync/internal/pkg/metrics"

	"github.com/google/uuid"
)

// RunResult summarizes one pipeline run.
type RunResult struct {
	Stats   syncrun.Stats
	Stopped bool
}

// SyncUseCase runs the full pipeline: fetch offers from every configured
// network, reconcile them against stored brands and coupons, enrich new
// brands, and persist the outcome. One provider failing never aborts the
// run; its offers are simply absent this time around.
type SyncUseCase struct {
	controller    *RunStateController
	networks      []AffiliateNetwork
	brands        BrandRepository
	coupons       CouponRepository
	notifications NotificationRepository
	enricher      *BrandEnricher
	shortener     LinkShortener
	logger        *slog.Logger
}

func NewSyncUseCase(
	controller *RunStateController,
	networks []AffiliateNetwork,
	brands BrandRepository,
	coupons CouponRepository,
	notifications NotificationRepository,
	enricher *BrandEnricher,
	shortener LinkShortener,
	logger *slog.Logger,
) *SyncUseCase {
	return &SyncUseCase{
		controller:    controller,
		networks:      networks,
		brands:        brands,
		coupons:       coupons,
		notifications: notifications,
		enricher:      enricher,
		shortener:     shortener,
		logger:        logger,
	}
}

// Run acquires the gate and executes the pipeline to completion, blocking the
// caller. Used by the cron CLI.
func (u *SyncUseCase) Run(ctx context.Context, actor syncrun.Actor) (*RunResult, error) {
	handle, err := u.controller.TryStart(ctx, actor)
	if err != nil {
		return nil, err
	}
	return u.execute(ctx, handle), nil
}

// Start acquires the gate synchronously, so conflicts surface to the caller,
// then runs the pipeline in the background. Used by the HTTP API.
func (u *SyncUseCase) Start(ctx context.Context, actor syncrun.Actor) (*syncrun.Handle, error) {
	handle, err := u.controller.TryStart(ctx, actor)
	if err != nil {
		return nil, err
	}

	go func() {
		// Detached from the request context so the run outlives the response.
		u.execute(context.Background(), handle)
	}()
	return handle, nil
}

func (u *SyncUseCase) execute(ctx context.Context, handle *syncrun.Handle) *RunResult {
	started := time.Now()
	result := &RunResult{}

	for _, network := range u.networks {
		offers, err := network.ListOffers(ctx)
		if err != nil {
			u.logger.Error("provider fetch failed", "provider", network.Name(), "error", err)
			u.notifyError(ctx, fmt.Sprintf("fetch from %s failed: %v", network.Name(), err))
			continue
		}

		stopped := u.reconcileOffers(ctx, handle, offers, &result.Stats)
		if stopped {
			result.Stopped = true
			break
		}
	}

	outcome := "completed"
	if result.Stopped {
		outcome = "stopped"
	}
	metrics.RecordRunDuration(string(handle.Actor), outcome, time.Since(started))

	u.notifySummary(ctx, handle, result)
	if err := u.controller.Finish(ctx, handle, result.Stats, !result.Stopped); err != nil {
		u.logger.Error("failed to release run state", "run_id", handle.RunID, "error", err)
	}
	return result
}

// reconcileOffers applies one provider's offers. Returns true when a stop was
// observed at a checkpoint; stats accumulated so far stay valid.
func (u *SyncUseCase) reconcileOffers(ctx context.Context, handle *syncrun.Handle, offers []offer.Raw, stats *syncrun.Stats) bool {
	for _, raw := range offers {
		if err := u.reconcileOne(ctx, raw, stats); err != nil {
			stats.Failed++
			u.logger.Warn("offer reconcile failed",
				"source", raw.Source, "source_id", raw.SourceID, "error", err)
			metrics.RecordOffer("failed")
		}
		stats.Processed++

		if !u.controller.Checkpoint(ctx, handle, *stats) {
			u.logger.Info("stop observed at checkpoint", "run_id", handle.RunID, "processed", stats.Processed)
			return true
		}
	}
	return false
}

func (u *SyncUseCase) reconcileOne(ctx context.Context, raw offer.Raw, stats *syncrun.Stats) error {
	if !raw.Usable() {
		return errs.New("offer missing source, source id, or brand name")
	}

	b, err := u.resolveBrand(ctx, raw)
	if err != nil {
		return err
	}

	// Enrichment failures never fail the offer.
	if b.NeedsContent() && u.enricher != nil {
		if err := u.enricher.Enrich(ctx, b); err != nil {
			u.logger.Warn("brand enrichment failed", "brand", b.Name, "error", err)
		}
	}

	existing, err := u.coupons.FindBySource(ctx, raw.Source, raw.SourceID)
	switch {
	case err == nil:
		if existing.SameDetails(raw.Terms, raw.ExpiresAt) {
			metrics.RecordOffer("unchanged")
			return nil
		}
		if err := u.coupons.UpdateDetails(ctx, existing.ID, raw.Terms, raw.ExpiresAt); err != nil {
			return err
		}
		stats.Updated++
		metrics.RecordOffer("updated")
		return nil

	case infra.IsKind(err, infra.KindNotFound):
		return u.createCoupon(ctx, raw, b, stats)

	default:
		return err
	}
}

func (u *SyncUseCase) resolveBrand(ctx context.Context, raw offer.Raw) (*brand.Brand, error) {
	name := strings.TrimSpace(raw.BrandName)
	b, err := u.brands.FindByName(ctx, name)
	if err == nil {
		return b, nil
	}
	if !infra.IsKind(err, infra.KindNotFound) {
		return nil, err
	}

	b = brand.New(name, raw.TargetURL)
	if err := u.brands.Create(ctx, b); err != nil {
		return nil, err
	}
	u.notify(ctx, notification.KindBrandCreated, map[string]any{
		"brand_id": b.ID,
		"name":     b.Name,
	})
	return b, nil
}

func (u *SyncUseCase) createCoupon(ctx context.Context, raw offer.Raw, b *brand.Brand, stats *syncrun.Stats) error {
	c := &coupon.Coupon{
		ID:        uuid.New(),
		BrandID:   b.ID,
		Title:     raw.Title,
		Code:      raw.Code,
		Terms:     raw.Terms,
		URL:       raw.TargetURL,
		Source:    raw.Source,
		SourceID:  raw.SourceID,
		ExpiresAt: raw.ExpiresAt,
	}

	// Shortening is best effort; the tracking URL stands in on failure.
	if u.shortener != nil && raw.TargetURL != "" {
		if short, err := u.shortener.Shorten(ctx, raw.TargetURL, shortKeyword(raw)); err == nil {
			c.URL = short
		} else {
			u.logger.Warn("link shortening failed", "source_id", raw.SourceID, "error", err)
		}
	}

	if err := u.coupons.Create(ctx, c); err != nil {
		if infra.IsKind(err, infra.KindDuplicateKey) {
			// Another process won the insert race for this source id.
			metrics.RecordOffer("unchanged")
			return nil
		}
		return err
	}

	stats.Created++
	metrics.RecordOffer("created")
	u.notify(ctx, notification.KindCouponCreated, map[string]any{
		"coupon_id": c.ID,
		"brand_id":  b.ID,
		"brand":     b.Name,
		"title":     c.Title,
		"code":      c.Code,
	})
	return nil
}

func (u *SyncUseCase) notifySummary(ctx context.Context, handle *syncrun.Handle, result *RunResult) {
	u.notify(ctx, notification.KindSyncSummary, map[string]any{
		"run_id":    handle.RunID,
		"actor":     string(handle.Actor),
		"processed": result.Stats.Processed,
		"failed":    result.Stats.Failed,
		"created":   result.Stats.Created,
		"updated":   result.Stats.Updated,
		"stopped":   result.Stopped,
	})
}

func (u *SyncUseCase) notifyError(ctx context.Context, message string) {
	u.notify(ctx, notification.KindError, map[string]any{"message": message})
}

func (u *SyncUseCase) notify(ctx context.Context, kind notification.Kind, payload map[string]any) {
	raw, err := json.Marshal(payload)
	if err != nil {
		u.logger.Warn("failed to encode notification payload", "kind", string(kind), "error", err)
		return
	}
	if err := u.notifications.Append(ctx, kind, raw); err != nil {
		u.logger.Warn("failed to append notification", "kind", string(kind), "error", err)
	}
}

func shortKeyword(raw offer.Raw) string {
	return raw.Source + "-" + raw.SourceID
}
