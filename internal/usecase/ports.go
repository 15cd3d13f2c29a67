package usecase

import (
	"context"
	"encoding/json"
	"time"

	"coupon-sync/internal/domain/brand"
	"coupon-sync/internal/domain/coupon"
	"coupon-sync/internal/domain/notification"
	"coupon-sync/internal/domain/offer"
	"coupon-sync/internal/domain/syncrun"

	"github.com/google/uuid"
)

type BrandRepository interface {
	FindByName(ctx context.Context, name string) (*brand.Brand, error)
	Create(ctx context.Context, b *brand.Brand) error
	UpdateContent(ctx context.Context, id uuid.UUID, description, whyWeLove *string, hashtags []string) error
	ListNeedingContent(ctx context.Context, offset, limit int) ([]brand.Brand, error)
	CountNeedingContent(ctx context.Context) (int, error)
}

type CouponRepository interface {
	FindBySource(ctx context.Context, source, sourceID string) (*coupon.Coupon, error)
	Create(ctx context.Context, c *coupon.Coupon) error
	UpdateDetails(ctx context.Context, id uuid.UUID, terms string, expiresAt *time.Time) error
	UpdateURL(ctx context.Context, id uuid.UUID, url string) error
	ListAll(ctx context.Context) ([]coupon.Coupon, error)
	DeleteByIDs(ctx context.Context, ids []uuid.UUID) (int64, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type RunStateRepository interface {
	Get(ctx context.Context) (*syncrun.State, error)
	TryAcquire(ctx context.Context, runID uuid.UUID, actor syncrun.Actor, now time.Time) (bool, error)
	RequestStop(ctx context.Context) (bool, error)
	Status(ctx context.Context) (syncrun.Status, error)
	UpdateProgress(ctx context.Context, runID uuid.UUID, processed, failed int) error
	Finish(ctx context.Context, runID uuid.UUID, stats syncrun.Stats, now time.Time, completed bool) error
}

type NotificationRepository interface {
	Append(ctx context.Context, kind notification.Kind, payload json.RawMessage) error
	ListRecent(ctx context.Context, limit int) ([]notification.Notification, error)
	MarkRead(ctx context.Context, id uuid.UUID) error
}

// AffiliateNetwork is one offer source. ListOffers returns normalized raw
// records; a client with missing credentials fails fast without network I/O.
type AffiliateNetwork interface {
	Name() string
	ListOffers(ctx context.Context) ([]offer.Raw, error)
	TestConnection(ctx context.Context) bool
}

type TextGenerator interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
	TestConnection(ctx context.Context) bool
}

type LinkShortener interface {
	Name() string
	Shorten(ctx context.Context, longURL, keyword string) (string, error)
	TestConnection(ctx context.Context) bool
}
