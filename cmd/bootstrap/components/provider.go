package components

import (
	"log/slog"

	"coupon-sync/internal/infra/httpx"
	"coupon-sync/internal/infra/provider"
	"coupon-sync/internal/pkg/clock"
	"coupon-sync/internal/pkg/config"
	"coupon-sync/internal/usecase"

	"go.uber.org/fx"
)

var ProviderModule = fx.Module("provider",
	fx.Provide(
		NewProviderHTTPClient,
		NewAffiliateNetworks,
		fx.Annotate(
			NewTextGenerator,
			fx.As(new(usecase.TextGenerator)),
		),
		fx.Annotate(
			NewLinkShortener,
			fx.As(new(usecase.LinkShortener)),
		),
	),
)

func NewProviderHTTPClient(cfg config.Config, logger *slog.Logger) *httpx.Client {
	return httpx.NewClient(cfg.Sync.APITimeout, cfg.Sync.ProviderRPS, logger)
}

func NewAffiliateNetworks(client *httpx.Client, clk clock.Clock, cfg config.Config, logger *slog.Logger) []usecase.AffiliateNetwork {
	cache := httpx.NewCache(clk)
	return []usecase.AffiliateNetwork{
		provider.NewAwinClient(client, cache, cfg.Awin, logger),
		provider.NewTradeTrackerClient(client, cache, cfg.TradeTracker, logger),
	}
}

func NewTextGenerator(client *httpx.Client, cfg config.Config, logger *slog.Logger) *provider.OpenAIClient {
	return provider.NewOpenAIClient(client, cfg.OpenAI, logger)
}

func NewLinkShortener(client *httpx.Client, cfg config.Config, logger *slog.Logger) *provider.YourlsClient {
	return provider.NewYourlsClient(client, cfg.Yourls, logger)
}
