package components

import (
	"log/slog"

	"coupon-sync/internal/pkg/clock"
	"coupon-sync/internal/pkg/config"
	"coupon-sync/internal/pkg/prompts"
	"coupon-sync/internal/usecase"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	fx.Provide(
		clock.NewRealClock,
		NewPromptTemplates,
		usecase.NewRunStateController,
		usecase.NewBrandEnricher,
		usecase.NewSyncUseCase,
		NewBrandBatchUseCase,
		usecase.NewDedupUseCase,
		usecase.NewExpirationUseCase,
		NewStatusUseCase,
		usecase.NewProviderUseCase,
		usecase.NewNotificationUseCase,
	),
)

func NewPromptTemplates(cfg config.Config, logger *slog.Logger) prompts.Templates {
	templates, err := prompts.Load(cfg.Sync.PromptFile)
	if err != nil {
		logger.Warn("failed to load prompt templates, using defaults", "path", cfg.Sync.PromptFile, "error", err)
		return prompts.Defaults()
	}
	return templates
}

func NewBrandBatchUseCase(
	controller *usecase.RunStateController,
	brands usecase.BrandRepository,
	enricher *usecase.BrandEnricher,
	cfg config.Config,
	clk clock.Clock,
	logger *slog.Logger,
) *usecase.BrandBatchUseCase {
	return usecase.NewBrandBatchUseCase(controller, brands, enricher, cfg.Sync.BatchSize, clk, logger)
}

func NewStatusUseCase(controller *usecase.RunStateController, clk clock.Clock, cfg config.Config) *usecase.StatusUseCase {
	return usecase.NewStatusUseCase(controller, clk, cfg.Sync.ScheduleHourUTC)
}
