package postgres

import (
	"context"
	"fmt"

	"solana-trust-ledger/internal/domain"
	"solana-trust-ledger/internal/storage"
)

// TokenPerformanceStore implements storage.TokenPerformanceStore using PostgreSQL.
type TokenPerformanceStore struct {
	pool *Pool
}

// NewTokenPerformanceStore creates a new TokenPerformanceStore.
func NewTokenPerformanceStore(pool *Pool) *TokenPerformanceStore {
	return &TokenPerformanceStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TokenPerformanceStore = (*TokenPerformanceStore)(nil)

// Upsert inserts or replaces the snapshot for a token address.
func (s *TokenPerformanceStore) Upsert(ctx context.Context, tp *domain.TokenPerformance) error {
	if tp == nil || tp.TokenAddress == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO token_performance (
			token_address, symbol,
			price_change_24h, volume_change_24h, trade_change_24h,
			liquidity_change_24h, holder_change_24h, liquidity, market_cap_change_24h,
			rug_pull, is_scam, sustained_growth, rapid_dump, suspicious_volume,
			validation_trust, balance, initial_market_cap, last_updated
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9,
			$10, $11, $12, $13, $14, $15, $16, $17, $18
		)
		ON CONFLICT (token_address) DO UPDATE SET
			symbol                = EXCLUDED.symbol,
			price_change_24h      = EXCLUDED.price_change_24h,
			volume_change_24h     = EXCLUDED.volume_change_24h,
			trade_change_24h      = EXCLUDED.trade_change_24h,
			liquidity_change_24h  = EXCLUDED.liquidity_change_24h,
			holder_change_24h     = EXCLUDED.holder_change_24h,
			liquidity             = EXCLUDED.liquidity,
			market_cap_change_24h = EXCLUDED.market_cap_change_24h,
			rug_pull              = EXCLUDED.rug_pull,
			is_scam               = EXCLUDED.is_scam,
			sustained_growth      = EXCLUDED.sustained_growth,
			rapid_dump            = EXCLUDED.rapid_dump,
			suspicious_volume     = EXCLUDED.suspicious_volume,
			validation_trust      = EXCLUDED.validation_trust,
			balance               = EXCLUDED.balance,
			initial_market_cap    = EXCLUDED.initial_market_cap,
			last_updated          = EXCLUDED.last_updated
	`

	_, err := s.pool.Exec(ctx, query,
		tp.TokenAddress, tp.Symbol,
		tp.PriceChange24h, tp.VolumeChange24h, tp.TradeChange24h,
		tp.LiquidityChange24h, tp.HolderChange24h, tp.Liquidity, tp.MarketCapChange24h,
		tp.RugPull, tp.IsScam, tp.SustainedGrowth, tp.RapidDump, tp.SuspiciousVolume,
		tp.ValidationTrust, tp.Balance, tp.InitialMarketCap, tp.LastUpdated,
	)
	if err != nil {
		return fmt.Errorf("upsert token performance: %w", err)
	}
	return nil
}

// Get retrieves the snapshot for a token. Returns ErrNotFound if not exists.
func (s *TokenPerformanceStore) Get(ctx context.Context, tokenAddress string) (*domain.TokenPerformance, error) {
	query := `
		SELECT
			token_address, symbol,
			price_change_24h, volume_change_24h, trade_change_24h,
			liquidity_change_24h, holder_change_24h, liquidity, market_cap_change_24h,
			rug_pull, is_scam, sustained_growth, rapid_dump, suspicious_volume,
			validation_trust, balance, initial_market_cap, last_updated
		FROM token_performance
		WHERE token_address = $1
	`

	var tp domain.TokenPerformance
	err := s.pool.QueryRow(ctx, query, tokenAddress).Scan(
		&tp.TokenAddress, &tp.Symbol,
		&tp.PriceChange24h, &tp.VolumeChange24h, &tp.TradeChange24h,
		&tp.LiquidityChange24h, &tp.HolderChange24h, &tp.Liquidity, &tp.MarketCapChange24h,
		&tp.RugPull, &tp.IsScam, &tp.SustainedGrowth, &tp.RapidDump, &tp.SuspiciousVolume,
		&tp.ValidationTrust, &tp.Balance, &tp.InitialMarketCap, &tp.LastUpdated,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get token performance: %w", err)
	}
	return &tp, nil
}

// ValidationTrust computes the externally sourced trust contribution for a
// token. Zero when no snapshot exists.
func (s *TokenPerformanceStore) ValidationTrust(ctx context.Context, tokenAddress string) (float64, error) {
	var trust float64
	err := s.pool.QueryRow(ctx,
		`SELECT validation_trust FROM token_performance WHERE token_address = $1`,
		tokenAddress,
	).Scan(&trust)
	if err != nil {
		if isNotFoundError(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("get validation trust: %w", err)
	}
	return trust, nil
}
