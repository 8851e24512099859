package postgres

import (
	"context"
	"fmt"

	"solana-trust-ledger/internal/domain"
	"solana-trust-ledger/internal/storage"
)

// RecommendationStore implements storage.RecommendationStore using PostgreSQL.
type RecommendationStore struct {
	pool *Pool
}

// NewRecommendationStore creates a new RecommendationStore.
func NewRecommendationStore(pool *Pool) *RecommendationStore {
	return &RecommendationStore{pool: pool}
}

// Compile-time interface check.
var _ storage.RecommendationStore = (*RecommendationStore)(nil)

// Insert adds a new recommendation. Returns ErrDuplicateKey if id exists.
func (s *RecommendationStore) Insert(ctx context.Context, r *domain.TokenRecommendation) error {
	if r == nil || r.ID == "" || r.RecommenderID == "" || r.TokenAddress == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO token_recommendations (
			id, recommender_id, token_address, ts,
			initial_market_cap, initial_liquidity, initial_price
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := s.pool.Exec(ctx, query,
		r.ID, r.RecommenderID, r.TokenAddress, r.Timestamp,
		r.InitialMarketCap, r.InitialLiquidity, r.InitialPrice,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert recommendation: %w", err)
	}
	return nil
}

// GetByTimeRange retrieves recommendations within [start, end] ms (inclusive),
// ordered by timestamp ASC with id as tiebreaker.
func (s *RecommendationStore) GetByTimeRange(ctx context.Context, start, end int64) ([]*domain.TokenRecommendation, error) {
	query := `
		SELECT
			id, recommender_id, token_address, ts,
			initial_market_cap, initial_liquidity, initial_price
		FROM token_recommendations
		WHERE ts >= $1 AND ts <= $2
		ORDER BY ts ASC, id ASC
	`

	rows, err := s.pool.Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("get recommendations by time range: %w", err)
	}
	defer rows.Close()

	var recs []*domain.TokenRecommendation
	for rows.Next() {
		var r domain.TokenRecommendation
		err := rows.Scan(
			&r.ID, &r.RecommenderID, &r.TokenAddress, &r.Timestamp,
			&r.InitialMarketCap, &r.InitialLiquidity, &r.InitialPrice,
		)
		if err != nil {
			return nil, fmt.Errorf("scan recommendation row: %w", err)
		}
		recs = append(recs, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recommendation rows: %w", err)
	}
	return recs, nil
}
