package brand

import (
	"time"

	"github.com/google/uuid"
)

// Brand is a merchant in the local catalog. Brands are created the first time
// an offer references them and are never deleted by the pipeline.
type Brand struct {
	ID            uuid.UUID
	Name          string
	Description   *string
	WhyWeLove     *string
	Hashtags      []string
	FeaturedImage *string
	AffiliateURL  string
	Popular       bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func New(name, affiliateURL string) *Brand {
	return &Brand{
		ID:           uuid.New(),
		Name:         name,
		AffiliateURL: affiliateURL,
	}
}

// NeedsContent reports whether any of the generated content fields is still
// unset, which makes the brand a candidate for enrichment.
func (b *Brand) NeedsContent() bool {
	return b.Description == nil || b.WhyWeLove == nil || len(b.Hashtags) == 0
}
