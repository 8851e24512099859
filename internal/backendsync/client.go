// Package backendsync replicates trade-open events to an external ledger
// backend. Replication is strictly best-effort: bounded retries, then log
// and drop. It never blocks or fails the lifecycle call that triggered it.
package backendsync

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-resty/resty/v2"

	"solana-trust-ledger/internal/domain"
	"solana-trust-ledger/internal/observability"
)

// Default retry configuration: 3 total attempts, fixed 2s between attempts.
const (
	DefaultMaxAttempts = 3
	DefaultRetryDelay  = 2 * time.Second
	DefaultTimeout     = 10 * time.Second
)

const createTradePath = "/api/updaters/createTradePerformance"

// Client posts trade creation events to the backend.
type Client struct {
	http        *resty.Client
	maxAttempts int
	retryDelay  time.Duration
	metrics     *observability.Metrics
	logger      *log.Logger
}

// Option configures Client.
type Option func(*Client)

// WithRetryDelay sets the fixed delay between attempts.
func WithRetryDelay(d time.Duration) Option {
	return func(c *Client) {
		c.retryDelay = d
	}
}

// WithMaxAttempts sets the total number of attempts.
func WithMaxAttempts(n int) Option {
	return func(c *Client) {
		c.maxAttempts = n
	}
}

// WithTimeout sets the per-request HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.SetTimeout(d)
	}
}

// WithMetrics attaches Prometheus counters.
func WithMetrics(m *observability.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithLogger sets the logger used for abandoned payloads.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// NewClient creates a backend sync client authenticated with a bearer token.
func NewClient(backendURL, authToken string, opts ...Option) *Client {
	http := resty.New().
		SetBaseURL(backendURL).
		SetTimeout(DefaultTimeout).
		SetAuthToken(authToken)

	c := &Client{
		http:        http,
		maxAttempts: DefaultMaxAttempts,
		retryDelay:  DefaultRetryDelay,
		logger:      log.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// createTradeRequest is the backend wire payload.
type createTradeRequest struct {
	TokenAddress  string                   `json:"tokenAddress"`
	TradeData     *domain.TradePerformance `json:"tradeData"`
	RecommenderID string                   `json:"recommenderId"`
}

// SyncTradeCreation posts a trade-open event, retrying up to maxAttempts
// with a fixed delay. Non-2xx responses count as failures; the response
// body is not consumed.
func (c *Client) SyncTradeCreation(ctx context.Context, trade *domain.TradePerformance) error {
	payload := createTradeRequest{
		TokenAddress:  trade.TokenAddress,
		TradeData:     trade,
		RecommenderID: trade.RecommenderID,
	}

	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.retryDelay):
			}
		}

		if c.metrics != nil {
			c.metrics.SyncAttempts.Inc()
		}

		resp, err := c.http.R().
			SetContext(ctx).
			SetBody(payload).
			Post(createTradePath)
		if err != nil {
			lastErr = fmt.Errorf("post trade creation: %w", err)
		} else if resp.IsError() {
			lastErr = fmt.Errorf("post trade creation: status %d", resp.StatusCode())
		} else {
			return nil
		}

		if c.metrics != nil {
			c.metrics.SyncFailures.Inc()
		}
	}

	return fmt.Errorf("backend sync exhausted after %d attempts: %w", c.maxAttempts, lastErr)
}

// Dispatch replicates a trade-open event on a detached goroutine. Failures
// are logged and dropped; the caller is never blocked and never sees an
// error. The local trade record is not rolled back on sync failure.
func (c *Client) Dispatch(trade *domain.TradePerformance) {
	t := *trade
	go func() {
		if err := c.SyncTradeCreation(context.Background(), &t); err != nil {
			if c.metrics != nil {
				c.metrics.SyncAbandoned.Inc()
			}
			c.logger.Printf("backendsync: dropping trade %s for %s: %v", t.TradeKey, t.TokenAddress, err)
		}
	}()
}
