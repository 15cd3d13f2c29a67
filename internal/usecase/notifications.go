package usecase

import (
	"context"

	"coupon-sync/internal/domain/notification"

	"github.com/google/uuid"
)

const defaultNotificationListLimit = 50

type NotificationUseCase struct {
	repo NotificationRepository
}

func NewNotificationUseCase(repo NotificationRepository) *NotificationUseCase {
	return &NotificationUseCase{repo: repo}
}

func (u *NotificationUseCase) ListRecent(ctx context.Context, limit int) ([]notification.Notification, error) {
	if limit <= 0 {
		limit = defaultNotificationListLimit
	}
	return u.repo.ListRecent(ctx, limit)
}

func (u *NotificationUseCase) MarkRead(ctx context.Context, id uuid.UUID) error {
	return u.repo.MarkRead(ctx, id)
}
