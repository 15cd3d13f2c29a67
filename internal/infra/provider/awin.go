package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"coupon-sync/internal/domain/offer"
	"coupon-sync/internal/infra/httpx"
	"coupon-sync/internal/pkg/config"
	"coupon-sync/internal/pkg/errs"
)

const awinPageSize = 100

// AwinClient talks to the awin publisher API: a GET for the joined programme
// list and a paginated POST for active promotions, both bearer-authenticated
// JSON. Promotions are joined against programmes to recover brand names.
type AwinClient struct {
	doer   doer
	cache  *httpx.Cache
	cfg    config.AwinConfig
	logger *slog.Logger
}

func NewAwinClient(d doer, cache *httpx.Cache, cfg config.AwinConfig, logger *slog.Logger) *AwinClient {
	return &AwinClient{doer: d, cache: cache, cfg: cfg, logger: logger}
}

func (c *AwinClient) Name() string { return "awin" }

func (c *AwinClient) configured() bool {
	return c.cfg.APIToken != "" && c.cfg.PublisherID != ""
}

type awinProgramme struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	ClickThroughURL string `json:"clickThroughUrl"`
}

type awinPromotion struct {
	PromotionID  int64  `json:"promotionId"`
	AdvertiserID int64  `json:"advertiserId"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Terms        string `json:"terms"`
	EndDate      string `json:"endDate"`
	Voucher      struct {
		Code string `json:"code"`
	} `json:"voucher"`
	URLTracking string `json:"urlTracking"`
}

type awinPromotionPage struct {
	Data       []awinPromotion `json:"data"`
	Pagination struct {
		Page     int `json:"page"`
		PageSize int `json:"pageSize"`
		Total    int `json:"total"`
	} `json:"pagination"`
}

// ListOffers fetches joined programmes and all active promotion pages, then
// normalizes them into raw offer records.
func (c *AwinClient) ListOffers(ctx context.Context) ([]offer.Raw, error) {
	if !c.configured() {
		c.logger.Error("awin client not configured, skipping", "missing", "api token or publisher id")
		return nil, httpx.ErrCredentialMissing
	}

	programmes, err := c.listProgrammes(ctx)
	if err != nil {
		return nil, errs.Wrap(err, "failed to list awin programmes")
	}
	names := make(map[int64]awinProgramme, len(programmes))
	for _, p := range programmes {
		names[p.ID] = p
	}

	promotions, err := c.listPromotions(ctx)
	if err != nil {
		return nil, errs.Wrap(err, "failed to list awin promotions")
	}

	offers := make([]offer.Raw, 0, len(promotions))
	for _, p := range promotions {
		prog, ok := names[p.AdvertiserID]
		if !ok {
			continue // promotion for a programme we have not joined
		}
		terms := p.Terms
		if terms == "" {
			terms = p.Description
		}
		offers = append(offers, offer.Raw{
			Source:    c.Name(),
			SourceID:  strconv.FormatInt(p.PromotionID, 10),
			BrandName: prog.Name,
			Title:     p.Title,
			Code:      p.Voucher.Code,
			Terms:     terms,
			TargetURL: firstNonEmpty(p.URLTracking, prog.ClickThroughURL),
			ExpiresAt: parseOfferDate(p.EndDate),
		})
	}
	return offers, nil
}

func (c *AwinClient) listProgrammes(ctx context.Context) ([]awinProgramme, error) {
	cacheKey := "awin:programmes:" + c.cfg.PublisherID

	raw, ok := c.cache.Get(cacheKey)
	if !ok {
		var err error
		raw, err = c.doer.Do(ctx, httpx.Request{
			Method: http.MethodGet,
			URL: fmt.Sprintf("%s/publishers/%s/programmes?relationship=joined&countryCode=%s",
				c.cfg.BaseURL, c.cfg.PublisherID, c.cfg.Region),
			Header: c.authHeader(),
		})
		if err != nil {
			return nil, err
		}
		c.cache.Put(cacheKey, raw, 0)
	}

	var programmes []awinProgramme
	if err := json.Unmarshal(raw, &programmes); err != nil {
		return nil, errs.Mark(err, httpx.ErrParse)
	}
	return programmes, nil
}

func (c *AwinClient) listPromotions(ctx context.Context) ([]awinPromotion, error) {
	cacheKey := "awin:promotions:" + c.cfg.PublisherID

	if raw, ok := c.cache.Get(cacheKey); ok {
		var promotions []awinPromotion
		if err := json.Unmarshal(raw, &promotions); err == nil {
			return promotions, nil
		}
	}

	var promotions []awinPromotion
	for page := 1; ; page++ {
		raw, err := c.doer.Do(ctx, httpx.Request{
			Method: http.MethodPost,
			URL:    fmt.Sprintf("%s/publishers/%s/promotions", c.cfg.BaseURL, c.cfg.PublisherID),
			Header: c.authHeader(),
			JSONBody: map[string]any{
				"filters": map[string]any{
					"membership": "joined",
					"regionCodes": []string{
						c.cfg.Region,
					},
					"status": "active",
				},
				"pagination": map[string]int{
					"page":     page,
					"pageSize": awinPageSize,
				},
			},
		})
		if err != nil {
			return nil, err
		}

		var parsed awinPromotionPage
		if err := json.Unmarshal(raw, &parsed); err != nil {
			return nil, errs.Mark(err, httpx.ErrParse)
		}
		promotions = append(promotions, parsed.Data...)

		if len(parsed.Data) < awinPageSize || len(promotions) >= parsed.Pagination.Total {
			break
		}
	}

	if data, err := json.Marshal(promotions); err == nil {
		c.cache.Put(cacheKey, data, 0)
	}
	return promotions, nil
}

// TestConnection checks credentials by fetching the programme list.
func (c *AwinClient) TestConnection(ctx context.Context) bool {
	if !c.configured() {
		c.logger.Error("awin client not configured", "missing", "api token or publisher id")
		return false
	}
	_, err := c.doer.Do(ctx, httpx.Request{
		Method: http.MethodGet,
		URL: fmt.Sprintf("%s/publishers/%s/programmes?relationship=joined&countryCode=%s",
			c.cfg.BaseURL, c.cfg.PublisherID, c.cfg.Region),
		Header: c.authHeader(),
	})
	return err == nil
}

func (c *AwinClient) authHeader() http.Header {
	h := http.Header{}
	h.Set("Authorization", "Bearer "+c.cfg.APIToken)
	return h
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
