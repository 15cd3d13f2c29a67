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

// TradeTrackerClient reads the voucher feed for one affiliate site: a single
// bearer-authenticated list endpoint filtered by site id and region.
type TradeTrackerClient struct {
	doer   doer
	cache  *httpx.Cache
	cfg    config.TradeTrackerConfig
	logger *slog.Logger
}

func NewTradeTrackerClient(d doer, cache *httpx.Cache, cfg config.TradeTrackerConfig, logger *slog.Logger) *TradeTrackerClient {
	return &TradeTrackerClient{doer: d, cache: cache, cfg: cfg, logger: logger}
}

func (c *TradeTrackerClient) Name() string { return "tradetracker" }

func (c *TradeTrackerClient) configured() bool {
	return c.cfg.APIToken != "" && c.cfg.SiteID != ""
}

type tradeTrackerVoucher struct {
	ID             int64  `json:"id"`
	CampaignName   string `json:"campaignName"`
	Name           string `json:"name"`
	Code           string `json:"code"`
	Description    string `json:"description"`
	ExpirationDate string `json:"expirationDate"`
	TrackingURL    string `json:"trackingUrl"`
}

func (c *TradeTrackerClient) vouchersURL() string {
	return fmt.Sprintf("%s/sites/%s/vouchers?country=%s", c.cfg.BaseURL, c.cfg.SiteID, c.cfg.Region)
}

func (c *TradeTrackerClient) ListOffers(ctx context.Context) ([]offer.Raw, error) {
	if !c.configured() {
		c.logger.Error("tradetracker client not configured, skipping", "missing", "api token or site id")
		return nil, httpx.ErrCredentialMissing
	}

	cacheKey := "tradetracker:vouchers:" + c.cfg.SiteID

	raw, ok := c.cache.Get(cacheKey)
	if !ok {
		var err error
		raw, err = c.doer.Do(ctx, httpx.Request{
			Method: http.MethodGet,
			URL:    c.vouchersURL(),
			Header: c.authHeader(),
		})
		if err != nil {
			return nil, errs.Wrap(err, "failed to list tradetracker vouchers")
		}
		c.cache.Put(cacheKey, raw, 0)
	}

	var vouchers []tradeTrackerVoucher
	if err := json.Unmarshal(raw, &vouchers); err != nil {
		return nil, errs.Mark(err, httpx.ErrParse)
	}

	offers := make([]offer.Raw, 0, len(vouchers))
	for _, v := range vouchers {
		offers = append(offers, offer.Raw{
			Source:    c.Name(),
			SourceID:  strconv.FormatInt(v.ID, 10),
			BrandName: v.CampaignName,
			Title:     v.Name,
			Code:      v.Code,
			Terms:     v.Description,
			TargetURL: v.TrackingURL,
			ExpiresAt: parseOfferDate(v.ExpirationDate),
		})
	}
	return offers, nil
}

func (c *TradeTrackerClient) TestConnection(ctx context.Context) bool {
	if !c.configured() {
		c.logger.Error("tradetracker client not configured", "missing", "api token or site id")
		return false
	}
	_, err := c.doer.Do(ctx, httpx.Request{
		Method: http.MethodGet,
		URL:    c.vouchersURL(),
		Header: c.authHeader(),
	})
	return err == nil
}

func (c *TradeTrackerClient) authHeader() http.Header {
	h := http.Header{}
	h.Set("Authorization", "Bearer "+c.cfg.APIToken)
	return h
}
