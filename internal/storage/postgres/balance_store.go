package postgres

import (
	"context"
	"fmt"

	"solana-trust-ledger/internal/domain"
	"solana-trust-ledger/internal/storage"
)

// BalanceStore implements storage.BalanceStore using PostgreSQL.
type BalanceStore struct {
	pool *Pool
}

// NewBalanceStore creates a new BalanceStore.
func NewBalanceStore(pool *Pool) *BalanceStore {
	return &BalanceStore{pool: pool}
}

// Compile-time interface check.
var _ storage.BalanceStore = (*BalanceStore)(nil)

// GetBalance returns the balance for a token address, zero if unknown.
func (s *BalanceStore) GetBalance(ctx context.Context, tokenAddress string) (float64, error) {
	var balance float64
	err := s.pool.QueryRow(ctx,
		`SELECT balance FROM token_balances WHERE token_address = $1`,
		tokenAddress,
	).Scan(&balance)
	if err != nil {
		if isNotFoundError(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("get balance: %w", err)
	}
	return balance, nil
}

// SetBalance replaces the balance for a token address.
func (s *BalanceStore) SetBalance(ctx context.Context, tokenAddress string, balance float64) error {
	if tokenAddress == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO token_balances (token_address, balance)
		VALUES ($1, $2)
		ON CONFLICT (token_address) DO UPDATE SET balance = EXCLUDED.balance
	`
	if _, err := s.pool.Exec(ctx, query, tokenAddress, balance); err != nil {
		return fmt.Errorf("set balance: %w", err)
	}
	return nil
}

// AddTransaction appends a transaction row. Returns ErrDuplicateKey if the
// transaction hash exists.
func (s *BalanceStore) AddTransaction(ctx context.Context, tx *domain.Transaction) error {
	if tx == nil || tx.TransactionHash == "" || tx.TokenAddress == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO transactions (
			transaction_hash, token_address, tx_type, amount, price, is_simulation, ts
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := s.pool.Exec(ctx, query,
		tx.TransactionHash, tx.TokenAddress, tx.Type, tx.Amount, tx.Price,
		tx.IsSimulation, tx.Timestamp,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}
