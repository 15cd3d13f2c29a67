package response

import (
	"encoding/json"
	"time"

	"coupon-sync/internal/domain/notification"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

type NotificationResponse struct {
	ID        uuid.UUID       `json:"id"`
	Kind      string          `json:"kind"`
	Payload   json.RawMessage `json:"payload"`
	Read      bool            `json:"read"`
	CreatedAt time.Time       `json:"createdAt"`
}

func FromNotifications(items []notification.Notification) ([]NotificationResponse, error) {
	resp := make([]NotificationResponse, 0, len(items))
	for _, n := range items {
		var r NotificationResponse
		if err := copier.Copy(&r, &n); err != nil {
			return nil, err
		}
		r.Kind = string(n.Kind)
		resp = append(resp, r)
	}
	return resp, nil
}
