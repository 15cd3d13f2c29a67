package response

import (
	"time"

	"coupon-sync/internal/usecase"

	"github.com/jinzhu/copier"
)

type RunStartedResponse struct {
	RunID string `json:"runId"`
	Actor string `json:"actor"`
}

type RunSkippedResponse struct {
	Skipped bool   `json:"skipped"`
	Reason  string `json:"reason"`
}

type StatusResponse struct {
	Status          string     `json:"status"`
	Actor           string     `json:"actor,omitempty"`
	RunID           *string    `json:"runId,omitempty"`
	StartedAt       *time.Time `json:"startedAt,omitempty"`
	Processed       int        `json:"processed"`
	Failed          int        `json:"failed"`
	LastRunAt       *time.Time `json:"lastRunAt,omitempty"`
	LastSuccessAt   *time.Time `json:"lastSuccessAt,omitempty"`
	NextScheduledAt time.Time  `json:"nextScheduledAt"`
}

func FromStatusView(view *usecase.StatusView) (*StatusResponse, error) {
	var resp StatusResponse
	if err := copier.Copy(&resp, view); err != nil {
		return nil, err
	}
	resp.Status = string(view.Status)
	resp.Actor = string(view.Actor)
	return &resp, nil
}

type BrandBatchResponse struct {
	Processed int      `json:"processed"`
	Total     int      `json:"total"`
	Completed bool     `json:"completed"`
	Log       []string `json:"log"`
}

func FromBrandBatchResult(result *usecase.BrandBatchResult) (*BrandBatchResponse, error) {
	var resp BrandBatchResponse
	if err := copier.Copy(&resp, result); err != nil {
		return nil, err
	}
	return &resp, nil
}
