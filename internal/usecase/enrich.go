package usecase

import (
	"context"
	"log/slog"
	"strings"

	"coupon-sync/internal/domain/brand"
	"coupon-sync/internal/pkg/errs"
	"coupon-sync/internal/pkg/prompts"
)

// BrandEnricher fills missing editorial content on a brand from the text
// generation provider. Only blank fields are generated; existing copy is
// never overwritten.
type BrandEnricher struct {
	generator TextGenerator
	brands    BrandRepository
	templates prompts.Templates
	logger    *slog.Logger
}

func NewBrandEnricher(generator TextGenerator, brands BrandRepository, templates prompts.Templates, logger *slog.Logger) *BrandEnricher {
	return &BrandEnricher{generator: generator, brands: brands, templates: templates, logger: logger}
}

// Enrich generates the missing fields and persists whatever succeeded. A
// partial result is still saved; the next run retries what is still blank.
func (e *BrandEnricher) Enrich(ctx context.Context, b *brand.Brand) error {
	if e.generator == nil {
		return errs.New("no text generator configured")
	}

	var (
		description *string
		whyWeLove   *string
		hashtags    []string
		firstErr    error
	)

	if b.Description == nil {
		if text, err := e.generator.Generate(ctx, e.templates.RenderDescription(b.Name)); err == nil {
			description = &text
		} else {
			firstErr = err
		}
	}

	if b.WhyWeLove == nil {
		if text, err := e.generator.Generate(ctx, e.templates.RenderWhyWeLove(b.Name)); err == nil {
			whyWeLove = &text
		} else if firstErr == nil {
			firstErr = err
		}
	}

	if len(b.Hashtags) == 0 {
		if text, err := e.generator.Generate(ctx, e.templates.RenderHashtags(b.Name)); err == nil {
			hashtags = parseHashtags(text)
		} else if firstErr == nil {
			firstErr = err
		}
	}

	if description == nil && whyWeLove == nil && len(hashtags) == 0 {
		if firstErr != nil {
			return errs.Wrap(firstErr, "text generation produced nothing")
		}
		return nil
	}

	if err := e.brands.UpdateContent(ctx, b.ID, description, whyWeLove, hashtags); err != nil {
		return errs.Wrap(err, "failed to save generated content")
	}

	if description != nil {
		b.Description = description
	}
	if whyWeLove != nil {
		b.WhyWeLove = whyWeLove
	}
	if len(hashtags) > 0 {
		b.Hashtags = hashtags
	}
	return firstErr
}

// parseHashtags splits generated text into clean "#tag" tokens, tolerating
// comma or whitespace separated output.
func parseHashtags(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\n' || r == '\t'
	})

	var tags []string
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" || f == "#" {
			continue
		}
		if !strings.HasPrefix(f, "#") {
			f = "#" + f
		}
		tags = append(tags, f)
	}
	return tags
}
