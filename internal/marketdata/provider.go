// Package marketdata supplies current token trade, liquidity and security
// snapshots. The provider is a capability interface so the data source is
// swappable and mockable; retrieval itself is an external concern.
package marketdata

import "context"

// SecurityData holds token security metadata.
type SecurityData struct {
	OwnerBalance      float64
	CreatorBalance    float64
	OwnerPercentage   float64
	CreatorPercentage float64
	Top10HolderPct    float64
}

// TokenSnapshot is the current market view of a token, assembled from
// trade, pair and security data. Liquidity and market cap come from the
// first entry of the pairs collection; an absent collection yields zeros.
type TokenSnapshot struct {
	TokenAddress string
	Symbol       string

	Price    float64
	SOLPrice float64 // quote/SOL exchange rate

	PriceChange24h        float64
	Volume24h             float64
	Volume24hChangePct    float64
	Trade24hChangePct     float64
	HolderChange24hPct    float64
	LiquidityChange24hPct float64
	MarketCapChange24hPct float64
	UniqueWallet24h       float64

	MarketCap float64
	Liquidity float64

	Security SecurityData
	IsScam   bool
}

// Provider supplies current market snapshots and wallet balances.
type Provider interface {
	// Snapshot fetches the current market view of a token. Failures
	// propagate; scores must not be computed on partial data.
	Snapshot(ctx context.Context, tokenAddress string) (*TokenSnapshot, error)

	// WalletBalance returns the configured wallet's SOL balance. Callers
	// treat failures as a zero balance, not as errors.
	WalletBalance(ctx context.Context) (float64, error)
}
