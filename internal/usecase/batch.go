package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"coupon-sync/internal/domain/syncrun"
	"coupon-sync/internal/pkg/clock"
)

// batchWallBudget bounds one interactive batch call so it finishes well
// inside a typical HTTP gateway timeout.
const batchWallBudget = 25 * time.Second

// BrandBatchResult reports one batch invocation. Completed flips true once
// the cursor reaches the end of the brands needing content.
type BrandBatchResult struct {
	Processed int      `json:"processed"`
	Total     int      `json:"total"`
	Completed bool     `json:"completed"`
	Log       []string `json:"log"`
}

// BrandBatchUseCase enriches brands in small offset-paginated batches driven
// by repeated interactive calls. The run gate is held only for the duration
// of each call, never across calls, so a daily sync can interleave.
type BrandBatchUseCase struct {
	controller *RunStateController
	brands     BrandRepository
	enricher   *BrandEnricher
	batchSize  int
	clock      clock.Clock
	logger     *slog.Logger
}

func NewBrandBatchUseCase(
	controller *RunStateController,
	brands BrandRepository,
	enricher *BrandEnricher,
	batchSize int,
	clk clock.Clock,
	logger *slog.Logger,
) *BrandBatchUseCase {
	return &BrandBatchUseCase{
		controller: controller,
		brands:     brands,
		enricher:   enricher,
		batchSize:  batchSize,
		clock:      clk,
		logger:     logger,
	}
}

// ProcessBatch enriches up to batchSize brands starting at offset. It stops
// early on the wall budget or a stop request, reporting how far it got so
// the caller can resume from offset+processed.
func (u *BrandBatchUseCase) ProcessBatch(ctx context.Context, offset int) (*BrandBatchResult, error) {
	handle, err := u.controller.TryStart(ctx, syncrun.ActorBatch)
	if err != nil {
		return nil, err
	}

	result := &BrandBatchResult{}
	var stats syncrun.Stats
	defer func() {
		if err := u.controller.Finish(ctx, handle, stats, result.Completed); err != nil {
			u.logger.Error("failed to release batch run state", "run_id", handle.RunID, "error", err)
		}
	}()

	total, err := u.brands.CountNeedingContent(ctx)
	if err != nil {
		return nil, err
	}
	result.Total = total

	brands, err := u.brands.ListNeedingContent(ctx, offset, u.batchSize)
	if err != nil {
		return nil, err
	}

	deadline := u.clock.Now().Add(batchWallBudget)
	for i := range brands {
		if u.clock.Now().After(deadline) {
			result.Log = append(result.Log, "wall budget reached, resume from next offset")
			break
		}

		b := &brands[i]
		if err := u.enricher.Enrich(ctx, b); err != nil {
			stats.Failed++
			result.Log = append(result.Log, fmt.Sprintf("%s: %v", b.Name, err))
		} else {
			result.Log = append(result.Log, fmt.Sprintf("%s: enriched", b.Name))
		}
		result.Processed++
		stats.Processed++

		if !u.controller.Checkpoint(ctx, handle, stats) {
			result.Log = append(result.Log, "stop requested")
			break
		}
	}

	result.Completed = offset+result.Processed >= total
	return result, nil
}
