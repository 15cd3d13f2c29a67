package request

type BrandBatchRequest struct {
	Offset int `json:"offset" binding:"min=0"`
}
