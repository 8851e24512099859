package memory

import (
	"context"
	"errors"
	"testing"

	"solana-trust-ledger/internal/domain"
	"solana-trust-ledger/internal/storage"
)

func TestRecommenderStore_ResolveOrCreate_Stable(t *testing.T) {
	store := NewRecommenderStore()
	ctx := context.Background()

	id1, err := store.ResolveOrCreate(ctx, "discord:12345")
	if err != nil {
		t.Fatalf("ResolveOrCreate failed: %v", err)
	}
	id2, err := store.ResolveOrCreate(ctx, "discord:12345")
	if err != nil {
		t.Fatalf("Second ResolveOrCreate failed: %v", err)
	}

	if id1 != id2 {
		t.Errorf("expected stable id, got %s and %s", id1, id2)
	}
	if id1 == "" {
		t.Error("expected non-empty recommender id")
	}
}

func TestRecommenderStore_GetMetrics_NotFound(t *testing.T) {
	store := NewRecommenderStore()
	ctx := context.Background()

	_, err := store.GetMetrics(ctx, "nonexistent")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestRecommenderStore_UpsertAndGetMetrics(t *testing.T) {
	store := NewRecommenderStore()
	ctx := context.Background()

	m := &domain.RecommenderMetrics{
		RecommenderID:        "rec1",
		TrustScore:           7.5,
		TotalRecommendations: 4,
		SuccessfulRecs:       3,
		AvgTokenPerformance:  12.0,
	}
	if err := store.UpsertMetrics(ctx, m); err != nil {
		t.Fatalf("UpsertMetrics failed: %v", err)
	}

	got, err := store.GetMetrics(ctx, "rec1")
	if err != nil {
		t.Fatalf("GetMetrics failed: %v", err)
	}
	if got.TrustScore != 7.5 {
		t.Errorf("TrustScore mismatch: got %f, want 7.5", got.TrustScore)
	}

	// Mutating the returned copy must not affect the stored record.
	got.TrustScore = 0
	again, err := store.GetMetrics(ctx, "rec1")
	if err != nil {
		t.Fatalf("GetMetrics failed: %v", err)
	}
	if again.TrustScore != 7.5 {
		t.Error("stored record mutated through returned copy")
	}
}

func TestRecommenderStore_UpsertMetrics_RejectsInvariantViolation(t *testing.T) {
	store := NewRecommenderStore()
	ctx := context.Background()

	m := &domain.RecommenderMetrics{
		RecommenderID:        "rec1",
		TotalRecommendations: 1,
		SuccessfulRecs:       2,
	}
	err := store.UpsertMetrics(ctx, m)
	if !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}
}
