// Package ranking groups stored recommendations by token, averages the
// computed trust scores across contributing recommenders and returns
// summaries ranked by trust.
package ranking

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"solana-trust-ledger/internal/domain"
	"solana-trust-ledger/internal/observability"
	"solana-trust-ledger/internal/scoring"
	"solana-trust-ledger/internal/storage"
)

// Aggregator computes ranked token summaries from stored metrics.
type Aggregator struct {
	recommendations storage.RecommendationStore
	tokens          storage.TokenPerformanceStore
	recommenders    storage.RecommenderStore
	metrics         *observability.Metrics
}

// NewAggregator creates a ranking aggregator.
func NewAggregator(recommendations storage.RecommendationStore, tokens storage.TokenPerformanceStore, recommenders storage.RecommenderStore, metrics *observability.Metrics) *Aggregator {
	return &Aggregator{
		recommendations: recommendations,
		tokens:          tokens,
		recommenders:    recommenders,
		metrics:         metrics,
	}
}

// GetRecommendations returns one summary per token recommended within
// [start, end] ms, sorted by average trust score descending. Ties break on
// token address ascending so the ranking is deterministic.
func (a *Aggregator) GetRecommendations(ctx context.Context, start, end int64) ([]*domain.TokenRecommendationSummary, error) {
	began := time.Now()

	recs, err := a.recommendations.GetByTimeRange(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("fetch recommendations: %w", err)
	}

	groups := make(map[string][]*domain.TokenRecommendation)
	for _, r := range recs {
		groups[r.TokenAddress] = append(groups[r.TokenAddress], r)
	}

	summaries := make([]*domain.TokenRecommendationSummary, 0, len(groups))
	for token, group := range groups {
		summary, err := a.summarize(ctx, token, group)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, summary)
	}

	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].AverageTrustScore != summaries[j].AverageTrustScore {
			return summaries[i].AverageTrustScore > summaries[j].AverageTrustScore
		}
		return summaries[i].TokenAddress < summaries[j].TokenAddress
	})

	if a.metrics != nil {
		a.metrics.RankingDuration.Observe(time.Since(began).Seconds())
		a.metrics.SummariesReturned.Set(float64(len(summaries)))
	}
	return summaries, nil
}

// summarize scores every recommendation in a token group and averages the
// results. Per-recommendation lookups are independent accumulator terms,
// so they run concurrently; all must complete before averaging.
func (a *Aggregator) summarize(ctx context.Context, tokenAddress string, group []*domain.TokenRecommendation) (*domain.TokenRecommendationSummary, error) {
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	entries := make([]domain.RecommenderEntry, len(group))

	for i, rec := range group {
		wg.Add(1)
		go func(i int, rec *domain.TokenRecommendation) {
			defer wg.Done()

			entry, err := a.scoreRecommendation(ctx, rec)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				return
			}
			entries[i] = entry
		}(i, rec)
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}

	summary := &domain.TokenRecommendationSummary{
		TokenAddress: tokenAddress,
		Recommenders: entries,
	}
	for _, e := range entries {
		summary.AverageTrustScore += e.TrustScore
		summary.AverageRiskScore += e.RiskScore
		summary.AverageConsistencyScore += e.ConsistencyScore
	}
	n := float64(len(entries))
	summary.AverageTrustScore /= n
	summary.AverageRiskScore /= n
	summary.AverageConsistencyScore /= n

	return summary, nil
}

// scoreRecommendation computes trust, risk and consistency for one
// recommendation. A token or recommender with no stored record scores
// against a zero-valued snapshot; store failures propagate.
func (a *Aggregator) scoreRecommendation(ctx context.Context, rec *domain.TokenRecommendation) (domain.RecommenderEntry, error) {
	tp, err := a.tokens.Get(ctx, rec.TokenAddress)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			return domain.RecommenderEntry{}, fmt.Errorf("fetch token performance: %w", err)
		}
		tp = &domain.TokenPerformance{TokenAddress: rec.TokenAddress}
	}

	m, err := a.recommenders.GetMetrics(ctx, rec.RecommenderID)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			return domain.RecommenderEntry{}, fmt.Errorf("fetch recommender metrics: %w", err)
		}
		m = &domain.RecommenderMetrics{RecommenderID: rec.RecommenderID}
	}

	return domain.RecommenderEntry{
		RecommenderID:    rec.RecommenderID,
		RecommendationID: rec.ID,
		TrustScore:       scoring.TrustScore(tp, m),
		RiskScore:        scoring.OverallRiskScore(tp, m),
		ConsistencyScore: scoring.ConsistencyScore(tp, m),
	}, nil
}
