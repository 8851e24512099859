package storage

import (
	"context"

	"solana-trust-ledger/internal/domain"
)

// RecommenderStore provides access to recommender identities and their
// rolling trust metrics.
type RecommenderStore interface {
	// ResolveOrCreate maps an external id (platform user id, wallet) to a
	// stable recommender id, creating the identity on first use.
	ResolveOrCreate(ctx context.Context, externalID string) (string, error)

	// GetMetrics retrieves metrics for a recommender. Returns ErrNotFound
	// if no metrics have been recorded yet.
	GetMetrics(ctx context.Context, recommenderID string) (*domain.RecommenderMetrics, error)

	// UpsertMetrics replaces the stored metrics record atomically.
	UpsertMetrics(ctx context.Context, m *domain.RecommenderMetrics) error
}

// TokenPerformanceStore provides access to per-token performance snapshots.
type TokenPerformanceStore interface {
	// Upsert inserts or replaces the snapshot for a token address.
	Upsert(ctx context.Context, tp *domain.TokenPerformance) error

	// Get retrieves the snapshot for a token. Returns ErrNotFound if not exists.
	Get(ctx context.Context, tokenAddress string) (*domain.TokenPerformance, error)

	// ValidationTrust computes the externally sourced trust contribution
	// for a token. Zero when no snapshot exists.
	ValidationTrust(ctx context.Context, tokenAddress string) (float64, error)
}

// RecommendationStore provides access to immutable token recommendations.
type RecommendationStore interface {
	// Insert adds a new recommendation. Returns ErrDuplicateKey if id exists.
	Insert(ctx context.Context, r *domain.TokenRecommendation) error

	// GetByTimeRange retrieves recommendations within [start, end] ms (inclusive).
	GetByTimeRange(ctx context.Context, start, end int64) ([]*domain.TokenRecommendation, error)
}

// TradeStore provides access to trade performance records. Simulated and
// real trades share the schema; every lookup is scoped by the simulation flag.
type TradeStore interface {
	// Insert adds a new OPEN trade. Returns ErrDuplicateKey if the trade
	// key exists.
	Insert(ctx context.Context, t *domain.TradePerformance) error

	// GetLatestOpen retrieves the most recent open trade for the
	// (token, recommender, simulation) key, by buy timestamp. Returns
	// ErrNotFound if no open trade exists.
	GetLatestOpen(ctx context.Context, tokenAddress, recommenderID string, simulation bool) (*domain.TradePerformance, error)

	// CloseTrade applies sell-side fields to an open trade. Matches OPEN
	// rows only, so closing an already-closed trade returns ErrNotFound.
	CloseTrade(ctx context.Context, tradeKey string, c *domain.TradeClose) error
}

// BalanceStore provides access to simulated token balances and the
// append-only transaction ledger.
type BalanceStore interface {
	// GetBalance returns the balance for a token address, zero if unknown.
	GetBalance(ctx context.Context, tokenAddress string) (float64, error)

	// SetBalance replaces the balance for a token address.
	SetBalance(ctx context.Context, tokenAddress string, balance float64) error

	// AddTransaction appends a transaction row. Returns ErrDuplicateKey if
	// the transaction hash exists.
	AddTransaction(ctx context.Context, tx *domain.Transaction) error
}

// SnapshotArchive is an append-only analytics sink for token performance
// snapshots. Writes are best-effort from the trade lifecycle.
type SnapshotArchive interface {
	// Append stores a snapshot row keyed by (token_address, last_updated).
	Append(ctx context.Context, tp *domain.TokenPerformance) error

	// GetByToken retrieves archived snapshots for a token, ordered by
	// last_updated ASC.
	GetByToken(ctx context.Context, tokenAddress string) ([]*domain.TokenPerformance, error)
}
