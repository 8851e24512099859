package memory

import (
	"context"
	"errors"
	"testing"

	"solana-trust-ledger/internal/domain"
	"solana-trust-ledger/internal/storage"
)

func TestTokenPerformanceStore_UpsertReplaces(t *testing.T) {
	store := NewTokenPerformanceStore()
	ctx := context.Background()

	first := &domain.TokenPerformance{TokenAddress: "tokenA", Symbol: "AAA", PriceChange24h: 10}
	if err := store.Upsert(ctx, first); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	second := &domain.TokenPerformance{TokenAddress: "tokenA", Symbol: "AAA", PriceChange24h: -20, RapidDump: true}
	if err := store.Upsert(ctx, second); err != nil {
		t.Fatalf("Second upsert failed: %v", err)
	}

	got, err := store.Get(ctx, "tokenA")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.PriceChange24h != -20 {
		t.Errorf("expected replaced snapshot, got PriceChange24h %f", got.PriceChange24h)
	}
	if !got.RapidDump {
		t.Error("expected RapidDump flag from replacement snapshot")
	}
}

func TestTokenPerformanceStore_Get_NotFound(t *testing.T) {
	store := NewTokenPerformanceStore()
	ctx := context.Background()

	_, err := store.Get(ctx, "nonexistent")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestTokenPerformanceStore_ValidationTrust(t *testing.T) {
	store := NewTokenPerformanceStore()
	ctx := context.Background()

	// Unknown token degrades to zero, not an error.
	trust, err := store.ValidationTrust(ctx, "unknown")
	if err != nil {
		t.Fatalf("ValidationTrust failed: %v", err)
	}
	if trust != 0 {
		t.Errorf("expected zero trust for unknown token, got %f", trust)
	}

	tp := &domain.TokenPerformance{TokenAddress: "tokenA", ValidationTrust: 3.5}
	if err := store.Upsert(ctx, tp); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	trust, err = store.ValidationTrust(ctx, "tokenA")
	if err != nil {
		t.Fatalf("ValidationTrust failed: %v", err)
	}
	if trust != 3.5 {
		t.Errorf("expected trust 3.5, got %f", trust)
	}
}
