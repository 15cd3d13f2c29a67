package provider

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"

	"coupon-sync/internal/infra/httpx"
	"coupon-sync/internal/pkg/config"
	"coupon-sync/internal/pkg/errs"
)

// YourlsClient creates short links through a self-hosted yourls instance.
// The API takes form-encoded POSTs with the username and password baked into
// every call; there is no token exchange.
type YourlsClient struct {
	doer   doer
	cfg    config.YourlsConfig
	logger *slog.Logger
}

func NewYourlsClient(d doer, cfg config.YourlsConfig, logger *slog.Logger) *YourlsClient {
	return &YourlsClient{doer: d, cfg: cfg, logger: logger}
}

func (c *YourlsClient) Name() string { return "yourls" }

func (c *YourlsClient) configured() bool {
	return c.cfg.Endpoint != "" && c.cfg.Username != "" && c.cfg.Password != ""
}

type yourlsResponse struct {
	Status   string `json:"status"`
	ShortURL string `json:"shorturl"`
	Message  string `json:"message"`
}

// Shorten creates (or reuses) a short link for longURL. The keyword is a
// hint; yourls may ignore it when taken.
func (c *YourlsClient) Shorten(ctx context.Context, longURL, keyword string) (string, error) {
	if !c.configured() {
		c.logger.Error("yourls client not configured, skipping short link", "missing", "endpoint or credentials")
		return "", httpx.ErrCredentialMissing
	}

	form := c.baseForm()
	form.Set("action", "shorturl")
	form.Set("url", longURL)
	if keyword != "" {
		form.Set("keyword", keyword)
	}

	raw, err := c.doer.Do(ctx, httpx.Request{
		Method:   http.MethodPost,
		URL:      c.cfg.Endpoint,
		FormBody: form,
	})
	if err != nil {
		return "", errs.Wrap(err, "short link request failed")
	}

	var parsed yourlsResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", errs.Mark(err, httpx.ErrParse)
	}

	// yourls reports "fail" when the URL is already shortened but still
	// returns the existing short link; that counts as success here.
	if parsed.ShortURL == "" {
		return "", errs.Mark(errs.New("yourls returned no short url: "+parsed.Message), httpx.ErrParse)
	}
	return parsed.ShortURL, nil
}

func (c *YourlsClient) TestConnection(ctx context.Context) bool {
	if !c.configured() {
		c.logger.Error("yourls client not configured", "missing", "endpoint or credentials")
		return false
	}

	form := c.baseForm()
	form.Set("action", "stats")

	_, err := c.doer.Do(ctx, httpx.Request{
		Method:   http.MethodPost,
		URL:      c.cfg.Endpoint,
		FormBody: form,
	})
	return err == nil
}

func (c *YourlsClient) baseForm() url.Values {
	form := url.Values{}
	form.Set("format", "json")
	form.Set("username", c.cfg.Username)
	form.Set("password", c.cfg.Password)
	return form
}
