// Package api implements the vendor HTTP client. One logical fetch
// composes the rate limiter and the retry executor: every attempt first
// acquires quota, then performs the call, then normalizes whatever came
// back into the shared failure taxonomy.
package api

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/vietddude/collector/internal/core/domain"
	"github.com/vietddude/collector/internal/infra/ratelimit"
	"github.com/vietddude/collector/internal/infra/retry"
	"github.com/vietddude/collector/internal/pipeline/metrics"
)

// Config holds client settings.
type Config struct {
	Name    string // provider name for logs and metrics
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Client fetches OHLCV series from the vendor API.
type Client struct {
	cfg        Config
	httpClient *http.Client
	limiter    *ratelimit.Limiter
	executor   *retry.Executor
	log        *slog.Logger
}

// NewClient creates a client guarded by the given limiter and retry
// policy.
func NewClient(cfg Config, limiter *ratelimit.Limiter, policy retry.Policy, log *slog.Logger) *Client {
	if cfg.Name == "" {
		cfg.Name = "primary"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if log == nil {
		log = slog.Default()
	}
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		limiter:  limiter,
		executor: retry.NewExecutor(policy, Classify),
		log:      log,
	}
}

// Name returns the provider name.
func (c *Client) Name() string { return c.cfg.Name }

// Fetch performs one logical request with rate limiting and retry. The
// returned dataset's candles are sorted ascending by date.
func (c *Client) Fetch(ctx context.Context, req domain.Request) (*domain.Dataset, error) {
	if !req.Endpoint.Valid() {
		return nil, fatal(string(req.Endpoint), req.Symbol, 0, "unknown endpoint kind", nil)
	}

	var candles []domain.Candle
	err := c.executor.Execute(ctx, func(ctx context.Context) error {
		rows, err := c.attempt(ctx, req)
		if err != nil {
			return err
		}
		candles = rows
		return nil
	})
	if err != nil {
		metrics.FetchFailures.WithLabelValues(Classify(err).String()).Inc()
		return nil, err
	}

	c.log.Debug("fetch complete", "symbol", req.Symbol, "rows", len(candles))
	return &domain.Dataset{
		Symbol:    req.Symbol,
		Candles:   candles,
		FetchedAt: time.Now(),
		Status:    domain.FetchStatusSuccess,
	}, nil
}

// attempt is one quota-charged try. Failed calls still count against the
// vendor's budget, so the limiter is charged before the outcome is known.
func (c *Client) attempt(ctx context.Context, req domain.Request) ([]domain.Candle, error) {
	op := string(req.Endpoint)

	waitStart := time.Now()
	if err := c.limiter.Acquire(ctx, 1); err != nil {
		if err == ratelimit.ErrDailyQuotaExhausted {
			return nil, quotaExceeded(op, req.Symbol, "daily quota exhausted", err)
		}
		return nil, err
	}
	metrics.RateLimitWait.Observe(time.Since(waitStart).Seconds())
	metrics.FetchAttempts.WithLabelValues(op).Inc()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL, nil)
	if err != nil {
		return nil, fatal(op, req.Symbol, 0, "build request", err)
	}
	httpReq.URL.RawQuery = buildQuery(req, c.cfg.APIKey).Encode()
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, transient(op, req.Symbol, 0, "request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transient(op, req.Symbol, resp.StatusCode, "read response", err)
	}

	if err := normalizeStatus(op, req.Symbol, resp.StatusCode, body); err != nil {
		return nil, err
	}

	return parseSeries(op, req, body)
}

// normalizeStatus maps HTTP status codes into the failure taxonomy.
func normalizeStatus(op, symbol string, status int, body []byte) error {
	switch {
	case status == http.StatusOK:
		return nil
	case status == http.StatusTooManyRequests:
		return transient(op, symbol, status, "rate limited by vendor", nil)
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fatal(op, symbol, status, "authentication rejected", nil)
	case status == http.StatusBadRequest || status == http.StatusNotFound:
		return fatal(op, symbol, status, "request rejected", nil)
	case status >= 500:
		return transient(op, symbol, status, fmt.Sprintf("server error: %.120s", body), nil)
	default:
		return transient(op, symbol, status, fmt.Sprintf("unexpected status %d", status), nil)
	}
}
