package marketdata

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"solana-trust-ledger/internal/solana"
)

// Default HTTP configuration.
const (
	DefaultTimeout = 15 * time.Second
)

// Client implements Provider against an aggregator HTTP API.
type Client struct {
	http          *resty.Client
	walletAddress string
}

// ClientOption configures Client.
type ClientOption func(*Client)

// WithTimeout sets the HTTP request timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.http.SetTimeout(d)
	}
}

// WithHTTPClient swaps the underlying resty client, for tests.
func WithHTTPClient(rc *resty.Client) ClientOption {
	return func(c *Client) {
		baseURL := c.http.BaseURL
		c.http = rc
		if rc.BaseURL == "" {
			c.http.SetBaseURL(baseURL)
		}
	}
}

// NewClient creates an aggregator API client.
func NewClient(baseURL, apiKey, walletAddress string, opts ...ClientOption) *Client {
	http := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(DefaultTimeout).
		SetHeader("X-API-KEY", apiKey)

	c := &Client{http: http, walletAddress: walletAddress}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// overviewResponse is the aggregator token overview payload.
type overviewResponse struct {
	Symbol                string  `json:"symbol"`
	Price                 float64 `json:"price"`
	PriceChange24h        float64 `json:"priceChange24hPercent"`
	Volume24h             float64 `json:"volume24h"`
	Volume24hChangePct    float64 `json:"volume24hChangePercent"`
	Trade24hChangePct     float64 `json:"trade24hChangePercent"`
	HolderChange24hPct    float64 `json:"holderChange24hPercent"`
	LiquidityChange24hPct float64 `json:"liquidityChange24hPercent"`
	MarketCapChange24hPct float64 `json:"marketCapChange24hPercent"`
	UniqueWallet24h       float64 `json:"uniqueWallet24h"`
	IsScam                bool    `json:"isScam"`

	Pairs []struct {
		Liquidity struct {
			USD float64 `json:"usd"`
		} `json:"liquidity"`
		MarketCap float64 `json:"marketCap"`
	} `json:"pairs"`

	Security struct {
		OwnerBalance      float64 `json:"ownerBalance"`
		CreatorBalance    float64 `json:"creatorBalance"`
		OwnerPercentage   float64 `json:"ownerPercentage"`
		CreatorPercentage float64 `json:"creatorPercentage"`
		Top10HolderPct    float64 `json:"top10HolderPercent"`
	} `json:"security"`
}

type solPriceResponse struct {
	Price float64 `json:"price"`
}

type walletBalanceResponse struct {
	SOL float64 `json:"sol"`
}

// Snapshot fetches the current market view of a token.
func (c *Client) Snapshot(ctx context.Context, tokenAddress string) (*TokenSnapshot, error) {
	var overview overviewResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("address", tokenAddress).
		SetResult(&overview).
		Get("/token/{address}/overview")
	if err != nil {
		return nil, fmt.Errorf("fetch token overview: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("fetch token overview: status %d", resp.StatusCode())
	}

	var sol solPriceResponse
	resp, err = c.http.R().
		SetContext(ctx).
		SetResult(&sol).
		Get("/price/sol")
	if err != nil {
		return nil, fmt.Errorf("fetch sol price: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("fetch sol price: status %d", resp.StatusCode())
	}

	snap := &TokenSnapshot{
		TokenAddress:          tokenAddress,
		Symbol:                overview.Symbol,
		Price:                 overview.Price,
		SOLPrice:              sol.Price,
		PriceChange24h:        overview.PriceChange24h,
		Volume24h:             overview.Volume24h,
		Volume24hChangePct:    overview.Volume24hChangePct,
		Trade24hChangePct:     overview.Trade24hChangePct,
		HolderChange24hPct:    overview.HolderChange24hPct,
		LiquidityChange24hPct: overview.LiquidityChange24hPct,
		MarketCapChange24hPct: overview.MarketCapChange24hPct,
		UniqueWallet24h:       overview.UniqueWallet24h,
		IsScam:                overview.IsScam,
		Security: SecurityData{
			OwnerBalance:      overview.Security.OwnerBalance,
			CreatorBalance:    overview.Security.CreatorBalance,
			OwnerPercentage:   overview.Security.OwnerPercentage,
			CreatorPercentage: overview.Security.CreatorPercentage,
			Top10HolderPct:    overview.Security.Top10HolderPct,
		},
	}

	// Liquidity and market cap come from the first pair entry; an absent
	// pairs collection leaves them at zero.
	if len(overview.Pairs) > 0 {
		snap.Liquidity = overview.Pairs[0].Liquidity.USD
		snap.MarketCap = overview.Pairs[0].MarketCap
	}

	return snap, nil
}

// WalletBalance returns the configured wallet's SOL balance. The wallet
// must be an on-curve key; program-derived addresses hold no balance.
func (c *Client) WalletBalance(ctx context.Context) (float64, error) {
	if err := solana.ValidateWalletAddress(c.walletAddress); err != nil {
		return 0, fmt.Errorf("wallet balance: %w", err)
	}

	var balance walletBalanceResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("address", c.walletAddress).
		SetResult(&balance).
		Get("/wallet/{address}/balance")
	if err != nil {
		return 0, fmt.Errorf("fetch wallet balance: %w", err)
	}
	if resp.IsError() {
		return 0, fmt.Errorf("fetch wallet balance: status %d", resp.StatusCode())
	}
	return balance.SOL, nil
}

var _ Provider = (*Client)(nil)
