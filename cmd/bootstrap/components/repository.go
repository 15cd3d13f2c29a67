package components

import (
	"coupon-sync/internal/infra/repository"
	"coupon-sync/internal/pkg/config"
	"coupon-sync/internal/usecase"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

var RepositoryModule = fx.Module("repository",
	fx.Provide(
		fx.Annotate(
			repository.NewBrandRepository,
			fx.As(new(usecase.BrandRepository)),
		),
		fx.Annotate(
			repository.NewCouponRepository,
			fx.As(new(usecase.CouponRepository)),
		),
		fx.Annotate(
			repository.NewRunStateRepository,
			fx.As(new(usecase.RunStateRepository)),
		),
		fx.Annotate(
			NewNotificationRepository,
			fx.As(new(usecase.NotificationRepository)),
		),
	),
)

func NewNotificationRepository(pool *pgxpool.Pool, cfg config.Config) *repository.NotificationRepository {
	return repository.NewNotificationRepository(pool, cfg.Sync.NotificationCap)
}
