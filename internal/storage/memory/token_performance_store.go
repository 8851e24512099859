package memory

import (
	"context"
	"sync"

	"solana-trust-ledger/internal/domain"
	"solana-trust-ledger/internal/storage"
)

// TokenPerformanceStore is an in-memory implementation of
// storage.TokenPerformanceStore.
type TokenPerformanceStore struct {
	mu   sync.RWMutex
	data map[string]*domain.TokenPerformance // keyed by token_address
}

// NewTokenPerformanceStore creates a new in-memory token performance store.
func NewTokenPerformanceStore() *TokenPerformanceStore {
	return &TokenPerformanceStore{
		data: make(map[string]*domain.TokenPerformance),
	}
}

// Upsert inserts or replaces the snapshot for a token address.
func (s *TokenPerformanceStore) Upsert(_ context.Context, tp *domain.TokenPerformance) error {
	if tp == nil || tp.TokenAddress == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	copy := *tp
	s.data[tp.TokenAddress] = &copy
	return nil
}

// Get retrieves the snapshot for a token. Returns ErrNotFound if not exists.
func (s *TokenPerformanceStore) Get(_ context.Context, tokenAddress string) (*domain.TokenPerformance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tp, exists := s.data[tokenAddress]
	if !exists {
		return nil, storage.ErrNotFound
	}

	copy := *tp
	return &copy, nil
}

// ValidationTrust computes the externally sourced trust contribution for a
// token. Zero when no snapshot exists.
func (s *TokenPerformanceStore) ValidationTrust(_ context.Context, tokenAddress string) (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tp, exists := s.data[tokenAddress]
	if !exists {
		return 0, nil
	}
	return tp.ValidationTrust, nil
}

var _ storage.TokenPerformanceStore = (*TokenPerformanceStore)(nil)
