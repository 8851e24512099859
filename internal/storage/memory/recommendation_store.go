package memory

import (
	"context"
	"sort"
	"sync"

	"solana-trust-ledger/internal/domain"
	"solana-trust-ledger/internal/storage"
)

// RecommendationStore is an in-memory implementation of
// storage.RecommendationStore.
type RecommendationStore struct {
	mu   sync.RWMutex
	data map[string]*domain.TokenRecommendation // keyed by id
}

// NewRecommendationStore creates a new in-memory recommendation store.
func NewRecommendationStore() *RecommendationStore {
	return &RecommendationStore{
		data: make(map[string]*domain.TokenRecommendation),
	}
}

// Insert adds a new recommendation. Returns ErrDuplicateKey if id exists.
func (s *RecommendationStore) Insert(_ context.Context, r *domain.TokenRecommendation) error {
	if r == nil || r.ID == "" || r.TokenAddress == "" || r.RecommenderID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[r.ID]; exists {
		return storage.ErrDuplicateKey
	}

	copy := *r
	s.data[r.ID] = &copy
	return nil
}

// GetByTimeRange retrieves recommendations within [start, end] ms
// (inclusive), ordered by timestamp ASC.
func (s *RecommendationStore) GetByTimeRange(_ context.Context, start, end int64) ([]*domain.TokenRecommendation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.TokenRecommendation
	for _, r := range s.data {
		if r.Timestamp >= start && r.Timestamp <= end {
			copy := *r
			result = append(result, &copy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Timestamp != result[j].Timestamp {
			return result[i].Timestamp < result[j].Timestamp
		}
		return result[i].ID < result[j].ID
	})

	return result, nil
}

var _ storage.RecommendationStore = (*RecommendationStore)(nil)
