package clickhouse

import (
	"context"
	"fmt"

	"solana-trust-ledger/internal/domain"
	"solana-trust-ledger/internal/storage"
)

// SnapshotArchiveStore implements storage.SnapshotArchive using ClickHouse.
// Rows are append-only; duplicates on (token_address, last_updated) collapse
// through ReplacingMergeTree at merge time.
type SnapshotArchiveStore struct {
	conn *Conn
}

// NewSnapshotArchiveStore creates a new SnapshotArchiveStore.
func NewSnapshotArchiveStore(conn *Conn) *SnapshotArchiveStore {
	return &SnapshotArchiveStore{conn: conn}
}

// Compile-time interface check.
var _ storage.SnapshotArchive = (*SnapshotArchiveStore)(nil)

// Append stores a snapshot row keyed by (token_address, last_updated).
func (s *SnapshotArchiveStore) Append(ctx context.Context, tp *domain.TokenPerformance) error {
	if tp == nil || tp.TokenAddress == "" {
		return storage.ErrInvalidInput
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO token_performance_archive (
			token_address, symbol,
			price_change_24h, volume_change_24h, trade_change_24h,
			liquidity_change_24h, holder_change_24h, liquidity, market_cap_change_24h,
			rug_pull, is_scam, sustained_growth, rapid_dump, suspicious_volume,
			validation_trust, balance, initial_market_cap, last_updated
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	err = batch.Append(
		tp.TokenAddress, tp.Symbol,
		tp.PriceChange24h, tp.VolumeChange24h, tp.TradeChange24h,
		tp.LiquidityChange24h, tp.HolderChange24h, tp.Liquidity, tp.MarketCapChange24h,
		tp.RugPull, tp.IsScam, tp.SustainedGrowth, tp.RapidDump, tp.SuspiciousVolume,
		tp.ValidationTrust, tp.Balance, tp.InitialMarketCap, uint64(tp.LastUpdated),
	)
	if err != nil {
		return fmt.Errorf("append to batch: %w", err)
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetByToken retrieves archived snapshots for a token, ordered by
// last_updated ASC.
func (s *SnapshotArchiveStore) GetByToken(ctx context.Context, tokenAddress string) ([]*domain.TokenPerformance, error) {
	query := `
		SELECT
			token_address, symbol,
			price_change_24h, volume_change_24h, trade_change_24h,
			liquidity_change_24h, holder_change_24h, liquidity, market_cap_change_24h,
			rug_pull, is_scam, sustained_growth, rapid_dump, suspicious_volume,
			validation_trust, balance, initial_market_cap, last_updated
		FROM token_performance_archive
		WHERE token_address = ?
		ORDER BY last_updated ASC
	`

	rows, err := s.conn.Query(ctx, query, tokenAddress)
	if err != nil {
		return nil, fmt.Errorf("query archive by token: %w", err)
	}
	defer rows.Close()

	return scanSnapshots(rows)
}

// scanSnapshots scans multiple rows.
func scanSnapshots(rows chRows) ([]*domain.TokenPerformance, error) {
	var snaps []*domain.TokenPerformance

	for rows.Next() {
		var tp domain.TokenPerformance
		var lastUpdated uint64

		err := rows.Scan(
			&tp.TokenAddress, &tp.Symbol,
			&tp.PriceChange24h, &tp.VolumeChange24h, &tp.TradeChange24h,
			&tp.LiquidityChange24h, &tp.HolderChange24h, &tp.Liquidity, &tp.MarketCapChange24h,
			&tp.RugPull, &tp.IsScam, &tp.SustainedGrowth, &tp.RapidDump, &tp.SuspiciousVolume,
			&tp.ValidationTrust, &tp.Balance, &tp.InitialMarketCap, &lastUpdated,
		)
		if err != nil {
			return nil, fmt.Errorf("scan archive row: %w", err)
		}

		tp.LastUpdated = int64(lastUpdated)
		snaps = append(snaps, &tp)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate archive rows: %w", err)
	}

	return snaps, nil
}
