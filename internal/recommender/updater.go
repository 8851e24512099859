// Package recommender folds trade outcomes into rolling recommender
// metrics.
package recommender

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"solana-trust-ledger/internal/domain"
	"solana-trust-ledger/internal/marketdata"
	"solana-trust-ledger/internal/observability"
	"solana-trust-ledger/internal/scoring"
	"solana-trust-ledger/internal/storage"
)

// DefaultConfidenceDivisor scales wallet balance into virtual confidence.
// Explicitly provisional; override via Updater.ConfidenceDivisor.
const DefaultConfidenceDivisor = 1_000_000.0

// Updater recomputes a recommender's rolling metrics after each trade
// close and replaces the stored record with a single upsert.
type Updater struct {
	store    storage.RecommenderStore
	provider marketdata.Provider
	metrics  *observability.Metrics
	logger   *log.Logger

	// ConfidenceDivisor converts wallet balance to virtual confidence.
	ConfidenceDivisor float64

	// now is overridable for deterministic tests.
	now func() time.Time
}

// NewUpdater creates a metrics updater.
func NewUpdater(store storage.RecommenderStore, provider marketdata.Provider, metrics *observability.Metrics, logger *log.Logger) *Updater {
	if logger == nil {
		logger = log.Default()
	}
	return &Updater{
		store:             store,
		provider:          provider,
		metrics:           metrics,
		logger:            logger,
		ConfidenceDivisor: DefaultConfidenceDivisor,
		now:               time.Now,
	}
}

// ApplyTradeOutcome folds one closed trade's token snapshot into the
// recommender's metrics. Metrics are created lazily on the first close.
// A rug-pulled token does not count as a successful recommendation.
func (u *Updater) ApplyTradeOutcome(ctx context.Context, recommenderID string, tp *domain.TokenPerformance) error {
	now := u.now().UnixMilli()

	stored, err := u.store.GetMetrics(ctx, recommenderID)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("get recommender metrics: %w", err)
		}
		stored = &domain.RecommenderMetrics{RecommenderID: recommenderID, LastActiveDate: now}
	}

	updated := *stored
	updated.TotalRecommendations++
	if !tp.RugPull {
		updated.SuccessfulRecs++
	}

	// Running mean over the updated count.
	oldCount := float64(stored.TotalRecommendations)
	newCount := float64(updated.TotalRecommendations)
	updated.AvgTokenPerformance = (stored.AvgTokenPerformance*oldCount + tp.PriceChange24h) / newCount

	// Scores use the updated average; decay uses the pre-update trust
	// and the inactivity elapsed before this close.
	updated.RiskScore = scoring.RiskScore(tp)
	updated.ConsistencyScore = scoring.ConsistencyScore(tp, &updated)
	updated.TrustScore = scoring.TrustScore(tp, &updated)
	updated.TrustDecay = scoring.DecayedScore(stored.TrustScore, stored.LastActiveDate, now)
	updated.VirtualConfidence = u.virtualConfidence(ctx)
	updated.LastActiveDate = now
	updated.LastUpdated = now

	if err := u.store.UpsertMetrics(ctx, &updated); err != nil {
		return fmt.Errorf("upsert recommender metrics: %w", err)
	}

	if u.metrics != nil {
		u.metrics.MetricsUpdates.Inc()
	}
	return nil
}

// virtualConfidence scales the wallet balance by the confidence divisor.
// Balance lookups are auxiliary: failures degrade to zero, not errors.
func (u *Updater) virtualConfidence(ctx context.Context) float64 {
	balance, err := u.provider.WalletBalance(ctx)
	if err != nil {
		u.logger.Printf("recommender: wallet balance lookup failed, using 0: %v", err)
		balance = 0
	}
	divisor := u.ConfidenceDivisor
	if divisor == 0 {
		divisor = DefaultConfidenceDivisor
	}
	return balance / divisor
}

// CurrentTrust returns the stored trust score with inactivity decay
// applied. The decayed value is not persisted.
func (u *Updater) CurrentTrust(ctx context.Context, recommenderID string) (float64, error) {
	m, err := u.store.GetMetrics(ctx, recommenderID)
	if err != nil {
		return 0, fmt.Errorf("get recommender metrics: %w", err)
	}
	return scoring.DecayedScore(m.TrustScore, m.LastActiveDate, u.now().UnixMilli()), nil
}
