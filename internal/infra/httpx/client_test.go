//go:build unit

package httpx

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSleeper struct {
	delays []time.Duration
}

func (s *recordingSleeper) Sleep(_ context.Context, d time.Duration) {
	s.delays = append(s.delays, d)
}

func newTestClient(t *testing.T) (*Client, *recordingSleeper) {
	t.Helper()
	sleeper := &recordingSleeper{}
	client := NewClient(15*time.Second, 0, slog.New(slog.DiscardHandler)).WithSleeper(sleeper)
	return client, sleeper
}

func TestNewClientClampsTimeout(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)

	assert.Equal(t, 15*time.Second, NewClient(time.Second, 0, logger).http.Timeout)
	assert.Equal(t, 15*time.Second, NewClient(15*time.Second, 0, logger).http.Timeout)
	assert.Equal(t, 90*time.Second, NewClient(90*time.Second, 0, logger).http.Timeout)
	assert.Equal(t, 180*time.Second, NewClient(10*time.Minute, 0, logger).http.Timeout)
}

func TestDoSuccess(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	client, sleeper := newTestClient(t)
	body, err := client.Do(context.Background(), Request{Method: http.MethodGet, URL: srv.URL})

	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(body))
	assert.Equal(t, int32(1), calls.Load())
	assert.Empty(t, sleeper.delays)
}

func TestDoClientErrorIsTerminal(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	client, sleeper := newTestClient(t)
	_, err := client.Do(context.Background(), Request{Method: http.MethodGet, URL: srv.URL})

	require.ErrorIs(t, err, ErrClientRejected)
	assert.Equal(t, int32(1), calls.Load(), "4xx must not be retried")
	assert.Empty(t, sleeper.delays)
}

func TestDoServerErrorRetriesWithBackoff(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client, sleeper := newTestClient(t)
	_, err := client.Do(context.Background(), Request{Method: http.MethodGet, URL: srv.URL})

	require.ErrorIs(t, err, ErrServerFailure)
	assert.Equal(t, int32(3), calls.Load())
	// 2^1 and 2^2 seconds; the final attempt never sleeps.
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, sleeper.delays)
}

func TestDoServerErrorThenSuccess(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	client, sleeper := newTestClient(t)
	body, err := client.Do(context.Background(), Request{Method: http.MethodGet, URL: srv.URL})

	require.NoError(t, err)
	assert.Equal(t, `[]`, string(body))
	assert.Equal(t, []time.Duration{2 * time.Second}, sleeper.delays)
}

func TestDoRateLimitHonorsRetryAfter(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "7")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client, sleeper := newTestClient(t)
	_, err := client.Do(context.Background(), Request{Method: http.MethodGet, URL: srv.URL})

	require.NoError(t, err)
	assert.Equal(t, []time.Duration{7 * time.Second}, sleeper.delays)
}

func TestDoRateLimitFallbackDelay(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client, sleeper := newTestClient(t)
	_, err := client.Do(context.Background(), Request{Method: http.MethodGet, URL: srv.URL})

	require.ErrorIs(t, err, ErrRateLimited)
	assert.Equal(t, int32(3), calls.Load(), "429 attempts count against the budget")
	// 30*2^1 = 60s, then 30*2^2 capped at 120s.
	assert.Equal(t, []time.Duration{60 * time.Second, 120 * time.Second}, sleeper.delays)
}

func TestDoMalformedBodyIsTerminal(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.Write([]byte(`<html>not json</html>`))
	}))
	defer srv.Close()

	client, sleeper := newTestClient(t)
	_, err := client.Do(context.Background(), Request{Method: http.MethodGet, URL: srv.URL})

	require.ErrorIs(t, err, ErrParse)
	assert.Equal(t, int32(1), calls.Load(), "a malformed 2xx body must not be retried")
	assert.Empty(t, sleeper.delays)
}

func TestDoTransportErrorRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	srv.Close() // refuse all connections

	client, sleeper := newTestClient(t)
	_, err := client.Do(context.Background(), Request{Method: http.MethodGet, URL: srv.URL})

	require.ErrorIs(t, err, ErrTransport)
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, sleeper.delays)
}

func TestDoSendsFormBody(t *testing.T) {
	var gotContentType string
	var gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		require.NoError(t, r.ParseForm())
		gotBody = r.PostForm.Encode()
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client, _ := newTestClient(t)
	form := url.Values{}
	form.Set("action", "shorturl")
	form.Set("url", "https://example.com")

	_, err := client.Do(context.Background(), Request{Method: http.MethodPost, URL: srv.URL, FormBody: form})

	require.NoError(t, err)
	assert.Equal(t, "application/x-www-form-urlencoded", gotContentType)
	assert.Equal(t, form.Encode(), gotBody)
}

func TestRateLimitDelayIgnoresBadHeader(t *testing.T) {
	assert.Equal(t, 60*time.Second, rateLimitDelay(1, ""))
	assert.Equal(t, 60*time.Second, rateLimitDelay(1, "soon"))
	assert.Equal(t, 60*time.Second, rateLimitDelay(1, "-3"))
	assert.Equal(t, 9*time.Second, rateLimitDelay(1, "9"))
	assert.Equal(t, 120*time.Second, rateLimitDelay(3, ""))
}
