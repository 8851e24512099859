package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-trust-ledger/internal/domain"
	"solana-trust-ledger/internal/storage"
)

func rec(id, token string, ts int64) *domain.TokenRecommendation {
	return &domain.TokenRecommendation{
		ID:            id,
		RecommenderID: "rec-1",
		TokenAddress:  token,
		Timestamp:     ts,
	}
}

func TestRecommendationStore_InsertAndRange(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewRecommendationStore(pool)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, rec("r1", "tok-1", 1000)))
	require.NoError(t, store.Insert(ctx, rec("r2", "tok-2", 2000)))
	require.NoError(t, store.Insert(ctx, rec("r3", "tok-1", 3000)))

	// Inclusive bounds, ordered by timestamp.
	got, err := store.GetByTimeRange(ctx, 1000, 2000)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "r1", got[0].ID)
	assert.Equal(t, "r2", got[1].ID)

	got, err = store.GetByTimeRange(ctx, 4000, 5000)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRecommendationStore_DuplicateID(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewRecommendationStore(pool)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, rec("r1", "tok-1", 1000)))
	err := store.Insert(ctx, rec("r1", "tok-2", 2000))
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}
