package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-trust-ledger/internal/domain"
	"solana-trust-ledger/internal/storage"
)

func TestTokenPerformanceStore_UpsertAndGet(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewTokenPerformanceStore(pool)
	ctx := context.Background()

	_, err := store.Get(ctx, "tok-1")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	tp := &domain.TokenPerformance{
		TokenAddress:    "tok-1",
		Symbol:          "TOK",
		PriceChange24h:  25,
		RugPull:         true,
		ValidationTrust: 4.2,
		LastUpdated:     1000,
	}
	require.NoError(t, store.Upsert(ctx, tp))

	got, err := store.Get(ctx, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, "TOK", got.Symbol)
	assert.Equal(t, 25.0, got.PriceChange24h)
	assert.True(t, got.RugPull)

	// Upsert replaces the snapshot wholesale.
	tp.RugPull = false
	tp.PriceChange24h = -10
	require.NoError(t, store.Upsert(ctx, tp))

	got, err = store.Get(ctx, "tok-1")
	require.NoError(t, err)
	assert.False(t, got.RugPull)
	assert.Equal(t, -10.0, got.PriceChange24h)
}

func TestTokenPerformanceStore_ValidationTrust(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewTokenPerformanceStore(pool)
	ctx := context.Background()

	// Unknown token contributes zero trust.
	trust, err := store.ValidationTrust(ctx, "missing")
	require.NoError(t, err)
	assert.Equal(t, 0.0, trust)

	require.NoError(t, store.Upsert(ctx, &domain.TokenPerformance{
		TokenAddress:    "tok-1",
		ValidationTrust: 3.5,
	}))

	trust, err = store.ValidationTrust(ctx, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, 3.5, trust)
}
