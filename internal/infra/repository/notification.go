package repository

import (
	"context"
	"encoding/json"

	"coupon-sync/internal/domain/notification"
	"coupon-sync/internal/infra"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NotificationRepository is an append-only activity log with FIFO eviction:
// after each append, rows older than the newest `capacity` are dropped.
type NotificationRepository struct {
	db       *pgxpool.Pool
	capacity int
}

func NewNotificationRepository(db *pgxpool.Pool, capacity int) *NotificationRepository {
	return &NotificationRepository{db: db, capacity: capacity}
}

func (r *NotificationRepository) Append(ctx context.Context, kind notification.Kind, payload json.RawMessage) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO notifications (id, kind, payload, read, created_at)
		VALUES ($1, $2, $3, false, now())`,
		uuid.New(), string(kind), payload,
	)
	if err != nil {
		return infra.WrapRepoErr("failed to append notification", err)
	}

	_, err = r.db.Exec(ctx, `
		DELETE FROM notifications WHERE id NOT IN (
			SELECT id FROM notifications ORDER BY created_at DESC, id DESC LIMIT $1
		)`,
		r.capacity,
	)
	if err != nil {
		return infra.WrapRepoErr("failed to trim notifications", err)
	}
	return nil
}

func (r *NotificationRepository) ListRecent(ctx context.Context, limit int) ([]notification.Notification, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, kind, payload, read, created_at
		FROM notifications ORDER BY created_at DESC, id DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list notifications", err)
	}
	defer rows.Close()

	var notifications []notification.Notification
	for rows.Next() {
		var (
			n    notification.Notification
			kind string
		)
		if err := rows.Scan(&n.ID, &kind, &n.Payload, &n.Read, &n.CreatedAt); err != nil {
			return nil, infra.WrapRepoErr("failed to scan notification row", err)
		}
		n.Kind = notification.Kind(kind)
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate notification rows", err)
	}
	return notifications, nil
}

func (r *NotificationRepository) MarkRead(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE notifications SET read = true WHERE id = $1`, id)
	if err != nil {
		return infra.WrapRepoErr("failed to mark notification read", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("notification not found", nil, infra.KindNotFound)
	}
	return nil
}
