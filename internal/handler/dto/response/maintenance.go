package response

import (
	"coupon-sync/internal/usecase"

	"github.com/google/uuid"
)

type PurgeExpiredResponse struct {
	Removed int64 `json:"removed"`
}

type DuplicateGroupResponse struct {
	BrandID        uuid.UUID   `json:"brandId"`
	NormalizedCode string      `json:"normalizedCode"`
	CanonicalID    uuid.UUID   `json:"canonicalId"`
	RemoveIDs      []uuid.UUID `json:"removeIds"`
}

type PurgeDuplicatesResponse struct {
	Groups  []DuplicateGroupResponse `json:"groups"`
	Removed int64                    `json:"removed"`
	DryRun  bool                     `json:"dryRun"`
}

func FromDedupReport(report *usecase.DedupReport) *PurgeDuplicatesResponse {
	resp := &PurgeDuplicatesResponse{
		Groups:  make([]DuplicateGroupResponse, 0, len(report.Groups)),
		Removed: report.Removed,
		DryRun:  report.DryRun,
	}
	for _, g := range report.Groups {
		resp.Groups = append(resp.Groups, DuplicateGroupResponse{
			BrandID:        g.BrandID,
			NormalizedCode: g.NormalizedCode,
			CanonicalID:    g.CanonicalID,
			RemoveIDs:      g.RemoveIDs,
		})
	}
	return resp
}
