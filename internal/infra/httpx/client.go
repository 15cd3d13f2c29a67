// Package httpx is the shared outbound HTTP core every provider client is
// built on: one request/parse path, a fixed attempt budget with exponential
// backoff, rate-limit (429) handling and a client-side token bucket.
package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"coupon-sync/internal/pkg/errs"
	"coupon-sync/internal/pkg/metrics"

	"golang.org/x/time/rate"
)

var (
	ErrTransport         = errs.New("transport failure")
	ErrRateLimited       = errs.New("rate limited by provider")
	ErrClientRejected    = errs.New("request rejected by provider")
	ErrServerFailure     = errs.New("provider server failure")
	ErrParse             = errs.New("malformed provider response")
	ErrCredentialMissing = errs.New("provider credentials missing")
)

const (
	maxAttempts = 3

	minTimeout = 15 * time.Second
	maxTimeout = 180 * time.Second

	rateLimitCap = 120 * time.Second
)

// Request describes one provider call. JSONBody and FormBody are mutually
// exclusive; FormBody wins when both are set.
type Request struct {
	Method   string
	URL      string
	Header   http.Header
	JSONBody any
	FormBody url.Values
}

// Sleeper abstracts backoff waits so tests can assert exact delays.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration)
}

type realSleeper struct{}

func (realSleeper) Sleep(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

type Client struct {
	http    *http.Client
	limiter *rate.Limiter
	sleeper Sleeper
	logger  *slog.Logger
}

// NewClient builds the retrying client. The timeout is clamped to
// [15s, 180s]; rps <= 0 disables the client-side token bucket.
func NewClient(timeout time.Duration, rps float64, logger *slog.Logger) *Client {
	if timeout < minTimeout {
		timeout = minTimeout
	}
	if timeout > maxTimeout {
		timeout = maxTimeout
	}

	var limiter *rate.Limiter
	if rps > 0 {
		burst := int(rps)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}

	return &Client{
		http:    &http.Client{Timeout: timeout},
		limiter: limiter,
		sleeper: realSleeper{},
		logger:  logger,
	}
}

// WithSleeper replaces the backoff sleeper. Test hook.
func (c *Client) WithSleeper(s Sleeper) *Client {
	c.sleeper = s
	return c
}

// Do issues the request with up to three attempts. Transport failures and 5xx
// are retried with 2^attempt seconds of backoff; 429 waits for Retry-After
// (or the rate-limit fallback) and the attempt still counts; other 4xx and
// malformed 2xx bodies are terminal. The parsed JSON body is returned on
// success.
func (c *Client) Do(ctx context.Context, req Request) (json.RawMessage, error) {
	host := hostOf(req.URL)

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, errs.Mark(err, ErrTransport)
			}
		}

		body, status, retryAfterHdr, err := c.do(ctx, req)
		if err != nil {
			c.logAttempt(req, attempt, 0, "transport failure", err)
			metrics.RecordProviderRequest(host, "transport_error")
			lastErr = errs.Mark(err, ErrTransport)
			if attempt < maxAttempts {
				c.sleeper.Sleep(ctx, backoff(attempt))
			}
			continue
		}

		switch {
		case status >= 200 && status < 300:
			if !json.Valid(body) {
				c.logAttempt(req, attempt, status, "unparseable body", nil)
				metrics.RecordProviderRequest(host, "parse_error")
				return nil, errs.Mark(errs.New("response body is not valid JSON"), ErrParse)
			}
			c.logAttempt(req, attempt, status, "ok", nil)
			metrics.RecordProviderRequest(host, "ok")
			return json.RawMessage(body), nil

		case status == http.StatusTooManyRequests:
			delay := rateLimitDelay(attempt, retryAfterHdr)
			c.logAttempt(req, attempt, status, "rate limited, waiting "+delay.String(), nil)
			metrics.RecordProviderRequest(host, "rate_limited")
			lastErr = errs.Mark(errs.New("status 429"), ErrRateLimited)
			if attempt < maxAttempts {
				c.sleeper.Sleep(ctx, delay)
			}

		case status >= 400 && status < 500:
			c.logAttempt(req, attempt, status, "client error", nil)
			metrics.RecordProviderRequest(host, "rejected")
			return nil, errs.Mark(errs.New("status "+strconv.Itoa(status)), ErrClientRejected)

		default: // 5xx
			c.logAttempt(req, attempt, status, "server error", nil)
			metrics.RecordProviderRequest(host, "server_error")
			lastErr = errs.Mark(errs.New("status "+strconv.Itoa(status)), ErrServerFailure)
			if attempt < maxAttempts {
				c.sleeper.Sleep(ctx, backoff(attempt))
			}
		}
	}

	return nil, lastErr
}

func (c *Client) do(ctx context.Context, req Request) (body []byte, status int, retryAfterHdr string, err error) {
	var reader io.Reader
	header := http.Header{}
	for k, vs := range req.Header {
		for _, v := range vs {
			header.Add(k, v)
		}
	}

	switch {
	case req.FormBody != nil:
		reader = strings.NewReader(req.FormBody.Encode())
		header.Set("Content-Type", "application/x-www-form-urlencoded")
	case req.JSONBody != nil:
		data, merr := json.Marshal(req.JSONBody)
		if merr != nil {
			return nil, 0, "", errs.Wrap(merr, "failed to encode request body")
		}
		reader = bytes.NewReader(data)
		header.Set("Content-Type", "application/json")
	}
	if header.Get("Accept") == "" {
		header.Set("Accept", "application/json")
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, reader)
	if err != nil {
		return nil, 0, "", err
	}
	httpReq.Header = header

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, 0, "", err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, "", err
	}

	return data, resp.StatusCode, resp.Header.Get("Retry-After"), nil
}

// backoff is the transport/5xx delay: 2^attempt seconds.
func backoff(attempt int) time.Duration {
	return time.Duration(1<<attempt) * time.Second
}

// rateLimitDelay picks the 429 wait: the server's Retry-After when positive,
// otherwise min(30 * 2^attempt, 120) seconds.
func rateLimitDelay(attempt int, retryAfterHdr string) time.Duration {
	if secs, err := strconv.Atoi(strings.TrimSpace(retryAfterHdr)); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	d := time.Duration(30*(1<<attempt)) * time.Second
	if d > rateLimitCap {
		d = rateLimitCap
	}
	return d
}

func (c *Client) logAttempt(req Request, attempt, status int, outcome string, err error) {
	args := []any{
		"method", req.Method,
		"url", req.URL,
		"attempt", attempt,
		"outcome", outcome,
	}
	if status > 0 {
		args = append(args, "status", status)
	}
	if err != nil {
		args = append(args, "error", err.Error())
		c.logger.Warn("provider request attempt", args...)
		return
	}
	if status >= 400 {
		c.logger.Warn("provider request attempt", args...)
		return
	}
	c.logger.Debug("provider request attempt", args...)
}

func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "unknown"
	}
	return u.Host
}
