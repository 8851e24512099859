package memory

import (
	"context"
	"sync"

	"solana-trust-ledger/internal/domain"
	"solana-trust-ledger/internal/storage"
)

// BalanceStore is an in-memory implementation of storage.BalanceStore.
type BalanceStore struct {
	mu           sync.RWMutex
	balances     map[string]float64 // keyed by token_address
	transactions map[string]*domain.Transaction
}

// NewBalanceStore creates a new in-memory balance store.
func NewBalanceStore() *BalanceStore {
	return &BalanceStore{
		balances:     make(map[string]float64),
		transactions: make(map[string]*domain.Transaction),
	}
}

// GetBalance returns the balance for a token address, zero if unknown.
func (s *BalanceStore) GetBalance(_ context.Context, tokenAddress string) (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.balances[tokenAddress], nil
}

// SetBalance replaces the balance for a token address.
func (s *BalanceStore) SetBalance(_ context.Context, tokenAddress string, balance float64) error {
	if tokenAddress == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.balances[tokenAddress] = balance
	return nil
}

// AddTransaction appends a transaction row. Returns ErrDuplicateKey if the
// transaction hash exists.
func (s *BalanceStore) AddTransaction(_ context.Context, tx *domain.Transaction) error {
	if tx == nil || tx.TransactionHash == "" || tx.TokenAddress == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.transactions[tx.TransactionHash]; exists {
		return storage.ErrDuplicateKey
	}

	copy := *tx
	s.transactions[tx.TransactionHash] = &copy
	return nil
}

var _ storage.BalanceStore = (*BalanceStore)(nil)
