package memory

import (
	"context"
	"sync"

	"solana-trust-ledger/internal/domain"
	"solana-trust-ledger/internal/idhash"
	"solana-trust-ledger/internal/storage"
)

// RecommenderStore is an in-memory implementation of storage.RecommenderStore.
type RecommenderStore struct {
	mu      sync.RWMutex
	ids     map[string]string // external id -> recommender id
	metrics map[string]*domain.RecommenderMetrics
}

// NewRecommenderStore creates a new in-memory recommender store.
func NewRecommenderStore() *RecommenderStore {
	return &RecommenderStore{
		ids:     make(map[string]string),
		metrics: make(map[string]*domain.RecommenderMetrics),
	}
}

// ResolveOrCreate maps an external id to a stable recommender id.
func (s *RecommenderStore) ResolveOrCreate(_ context.Context, externalID string) (string, error) {
	if externalID == "" {
		return "", storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if id, exists := s.ids[externalID]; exists {
		return id, nil
	}
	id := idhash.ComputeRecommenderID(externalID)
	s.ids[externalID] = id
	return id, nil
}

// GetMetrics retrieves metrics for a recommender. Returns ErrNotFound if
// no metrics have been recorded yet.
func (s *RecommenderStore) GetMetrics(_ context.Context, recommenderID string) (*domain.RecommenderMetrics, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, exists := s.metrics[recommenderID]
	if !exists {
		return nil, storage.ErrNotFound
	}

	copy := *m
	return &copy, nil
}

// UpsertMetrics replaces the stored metrics record atomically.
func (s *RecommenderStore) UpsertMetrics(_ context.Context, m *domain.RecommenderMetrics) error {
	if m == nil || m.RecommenderID == "" {
		return storage.ErrInvalidInput
	}
	if m.SuccessfulRecs > m.TotalRecommendations || m.SuccessfulRecs < 0 {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	copy := *m
	s.metrics[m.RecommenderID] = &copy
	return nil
}

var _ storage.RecommenderStore = (*RecommenderStore)(nil)
