package postgres

import (
	"context"
	"fmt"

	"solana-trust-ledger/internal/domain"
	"solana-trust-ledger/internal/idhash"
	"solana-trust-ledger/internal/storage"
)

// RecommenderStore implements storage.RecommenderStore using PostgreSQL.
type RecommenderStore struct {
	pool *Pool
}

// NewRecommenderStore creates a new RecommenderStore.
func NewRecommenderStore(pool *Pool) *RecommenderStore {
	return &RecommenderStore{pool: pool}
}

// Compile-time interface check.
var _ storage.RecommenderStore = (*RecommenderStore)(nil)

// ResolveOrCreate maps an external id to a stable recommender id, creating
// the identity row on first use. Concurrent first calls race safely through
// ON CONFLICT.
func (s *RecommenderStore) ResolveOrCreate(ctx context.Context, externalID string) (string, error) {
	if externalID == "" {
		return "", storage.ErrInvalidInput
	}

	id := idhash.ComputeRecommenderID(externalID)

	query := `
		INSERT INTO recommenders (external_id, recommender_id)
		VALUES ($1, $2)
		ON CONFLICT (external_id) DO NOTHING
	`
	if _, err := s.pool.Exec(ctx, query, externalID, id); err != nil {
		return "", fmt.Errorf("insert recommender identity: %w", err)
	}

	var stored string
	err := s.pool.QueryRow(ctx,
		`SELECT recommender_id FROM recommenders WHERE external_id = $1`,
		externalID,
	).Scan(&stored)
	if err != nil {
		return "", fmt.Errorf("resolve recommender identity: %w", err)
	}
	return stored, nil
}

// GetMetrics retrieves metrics for a recommender. Returns ErrNotFound if
// no metrics have been recorded yet.
func (s *RecommenderStore) GetMetrics(ctx context.Context, recommenderID string) (*domain.RecommenderMetrics, error) {
	query := `
		SELECT
			recommender_id, trust_score, total_recommendations, successful_recs,
			avg_token_performance, risk_score, consistency_score,
			virtual_confidence, last_active_date, trust_decay, last_updated
		FROM recommender_metrics
		WHERE recommender_id = $1
	`

	var m domain.RecommenderMetrics
	err := s.pool.QueryRow(ctx, query, recommenderID).Scan(
		&m.RecommenderID, &m.TrustScore, &m.TotalRecommendations, &m.SuccessfulRecs,
		&m.AvgTokenPerformance, &m.RiskScore, &m.ConsistencyScore,
		&m.VirtualConfidence, &m.LastActiveDate, &m.TrustDecay, &m.LastUpdated,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get recommender metrics: %w", err)
	}
	return &m, nil
}

// UpsertMetrics replaces the stored metrics record atomically.
func (s *RecommenderStore) UpsertMetrics(ctx context.Context, m *domain.RecommenderMetrics) error {
	if m == nil || m.RecommenderID == "" {
		return storage.ErrInvalidInput
	}
	if m.SuccessfulRecs > m.TotalRecommendations || m.SuccessfulRecs < 0 {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO recommender_metrics (
			recommender_id, trust_score, total_recommendations, successful_recs,
			avg_token_performance, risk_score, consistency_score,
			virtual_confidence, last_active_date, trust_decay, last_updated
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (recommender_id) DO UPDATE SET
			trust_score           = EXCLUDED.trust_score,
			total_recommendations = EXCLUDED.total_recommendations,
			successful_recs       = EXCLUDED.successful_recs,
			avg_token_performance = EXCLUDED.avg_token_performance,
			risk_score            = EXCLUDED.risk_score,
			consistency_score     = EXCLUDED.consistency_score,
			virtual_confidence    = EXCLUDED.virtual_confidence,
			last_active_date      = EXCLUDED.last_active_date,
			trust_decay           = EXCLUDED.trust_decay,
			last_updated          = EXCLUDED.last_updated
	`

	_, err := s.pool.Exec(ctx, query,
		m.RecommenderID, m.TrustScore, m.TotalRecommendations, m.SuccessfulRecs,
		m.AvgTokenPerformance, m.RiskScore, m.ConsistencyScore,
		m.VirtualConfidence, m.LastActiveDate, m.TrustDecay, m.LastUpdated,
	)
	if err != nil {
		return fmt.Errorf("upsert recommender metrics: %w", err)
	}
	return nil
}
