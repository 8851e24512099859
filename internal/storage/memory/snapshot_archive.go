package memory

import (
	"context"
	"sort"
	"sync"

	"solana-trust-ledger/internal/domain"
	"solana-trust-ledger/internal/storage"
)

// SnapshotArchive is an in-memory implementation of storage.SnapshotArchive.
type SnapshotArchive struct {
	mu   sync.RWMutex
	data map[string][]*domain.TokenPerformance // keyed by token_address
}

// NewSnapshotArchive creates a new in-memory snapshot archive.
func NewSnapshotArchive() *SnapshotArchive {
	return &SnapshotArchive{
		data: make(map[string][]*domain.TokenPerformance),
	}
}

// Append stores a snapshot row keyed by (token_address, last_updated).
func (s *SnapshotArchive) Append(_ context.Context, tp *domain.TokenPerformance) error {
	if tp == nil || tp.TokenAddress == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	copy := *tp
	s.data[tp.TokenAddress] = append(s.data[tp.TokenAddress], &copy)
	return nil
}

// GetByToken retrieves archived snapshots for a token, ordered by
// last_updated ASC.
func (s *SnapshotArchive) GetByToken(_ context.Context, tokenAddress string) ([]*domain.TokenPerformance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := s.data[tokenAddress]
	result := make([]*domain.TokenPerformance, 0, len(rows))
	for _, tp := range rows {
		copy := *tp
		result = append(result, &copy)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].LastUpdated < result[j].LastUpdated
	})

	return result, nil
}

var _ storage.SnapshotArchive = (*SnapshotArchive)(nil)
