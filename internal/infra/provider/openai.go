package provider

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"coupon-sync/internal/infra/httpx"
	"coupon-sync/internal/pkg/config"
	"coupon-sync/internal/pkg/errs"
)

// OpenAIClient is purely generative: text in, text out through the
// completions endpoint. It has no list semantics and never touches the cache.
type OpenAIClient struct {
	doer   doer
	cfg    config.OpenAIConfig
	logger *slog.Logger
}

func NewOpenAIClient(d doer, cfg config.OpenAIConfig, logger *slog.Logger) *OpenAIClient {
	return &OpenAIClient{doer: d, cfg: cfg, logger: logger}
}

func (c *OpenAIClient) Name() string { return "openai" }

type completionResponse struct {
	Choices []struct {
		Text string `json:"text"`
	} `json:"choices"`
}

// Generate runs one completion for the prompt and returns the trimmed text.
func (c *OpenAIClient) Generate(ctx context.Context, prompt string) (string, error) {
	if c.cfg.APIKey == "" {
		c.logger.Error("openai client not configured, skipping generation", "missing", "api key")
		return "", httpx.ErrCredentialMissing
	}

	raw, err := c.doer.Do(ctx, httpx.Request{
		Method: http.MethodPost,
		URL:    c.cfg.BaseURL + "/v1/completions",
		Header: c.authHeader(),
		JSONBody: map[string]any{
			"model":       c.cfg.Model,
			"prompt":      prompt,
			"max_tokens":  c.cfg.MaxTokens,
			"temperature": c.cfg.Temperature,
		},
	})
	if err != nil {
		return "", errs.Wrap(err, "completion request failed")
	}

	var parsed completionResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", errs.Mark(err, httpx.ErrParse)
	}
	if len(parsed.Choices) == 0 {
		return "", errs.Mark(errs.New("completion returned no choices"), httpx.ErrParse)
	}

	return strings.TrimSpace(parsed.Choices[0].Text), nil
}

func (c *OpenAIClient) TestConnection(ctx context.Context) bool {
	if c.cfg.APIKey == "" {
		c.logger.Error("openai client not configured", "missing", "api key")
		return false
	}
	_, err := c.doer.Do(ctx, httpx.Request{
		Method: http.MethodGet,
		URL:    c.cfg.BaseURL + "/v1/models",
		Header: c.authHeader(),
	})
	return err == nil
}

func (c *OpenAIClient) authHeader() http.Header {
	h := http.Header{}
	h.Set("Authorization", "Bearer "+c.cfg.APIKey)
	return h
}
