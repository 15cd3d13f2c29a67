package components

import (
	"coupon-sync/internal/handler"
	"coupon-sync/internal/handler/api"
	"coupon-sync/internal/handler/middleware"
	"coupon-sync/internal/pkg/config"
	"coupon-sync/internal/pkg/jwt"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		NewAuthHandler,
		api.NewSyncHandler,
		api.NewMaintenanceHandler,
		api.NewProviderHandler,
		api.NewNotificationHandler,
		middleware.NewAuthMiddleware,
	),
	fx.Invoke(handler.NewRouter),
)

func NewAuthHandler(tokens *jwt.Service, cfg config.Config) *api.AuthHandler {
	return api.NewAuthHandler(tokens, cfg.Auth.AdminPasswordHash)
}
