package memory

import (
	"context"
	"errors"
	"testing"

	"solana-trust-ledger/internal/domain"
	"solana-trust-ledger/internal/storage"
)

func TestBalanceStore_DefaultZero(t *testing.T) {
	store := NewBalanceStore()
	ctx := context.Background()

	bal, err := store.GetBalance(ctx, "tokenA")
	if err != nil {
		t.Fatalf("GetBalance failed: %v", err)
	}
	if bal != 0 {
		t.Errorf("expected zero balance for unknown token, got %f", bal)
	}
}

func TestBalanceStore_SetAndGet(t *testing.T) {
	store := NewBalanceStore()
	ctx := context.Background()

	if err := store.SetBalance(ctx, "tokenA", 42.5); err != nil {
		t.Fatalf("SetBalance failed: %v", err)
	}

	bal, err := store.GetBalance(ctx, "tokenA")
	if err != nil {
		t.Fatalf("GetBalance failed: %v", err)
	}
	if bal != 42.5 {
		t.Errorf("expected balance 42.5, got %f", bal)
	}
}

func TestBalanceStore_AddTransaction_Duplicate(t *testing.T) {
	store := NewBalanceStore()
	ctx := context.Background()

	tx := &domain.Transaction{
		TokenAddress:    "tokenA",
		TransactionHash: "sig1",
		Type:            domain.TransactionTypeBuy,
		Amount:          10,
		Price:           0.5,
		IsSimulation:    true,
		Timestamp:       1000,
	}
	if err := store.AddTransaction(ctx, tx); err != nil {
		t.Fatalf("AddTransaction failed: %v", err)
	}

	err := store.AddTransaction(ctx, tx)
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}
}
