package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CoinPilot/internal/domain/models"
	domrepo "CoinPilot/internal/domain/repository"
	"CoinPilot/pkg/cache"
)

func newTestStore(t *testing.T) *CacheReportStore {
	t.Helper()
	mc := cache.NewMemoryCache()
	t.Cleanup(func() { _ = mc.Close() })
	return NewCacheReportStore(mc)
}

func readyEntry(symbol string, score float64) *models.CacheEntry {
	now := time.Now().UTC().Truncate(time.Second)
	return models.NewReadyEntry(&models.SignalReport{
		Symbol:       symbol,
		OverallScore: score,
		MarketRegime: "neutral",
		GeneratedAt:  now,
	}, now, time.Minute)
}

func TestCacheReportStore_UpsertGetRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	entry := readyEntry("BTC", 0.42)
	require.NoError(t, store.Upsert(ctx, entry))

	got, err := store.Get(ctx, "BTC")
	require.NoError(t, err)
	assert.Equal(t, entry.Symbol, got.Symbol)
	assert.Equal(t, entry.Status, got.Status)
	require.NotNil(t, got.Report)
	assert.Equal(t, 0.42, got.Report.OverallScore)
	assert.True(t, got.ExpiresAt.After(got.CreatedAt))
}

func TestCacheReportStore_GetMissing(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Get(context.Background(), "DOGE")
	assert.ErrorIs(t, err, domrepo.ErrNotFound)
}

func TestCacheReportStore_UpsertReplacesWholesale(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, readyEntry("BTC", 0.1)))
	require.NoError(t, store.Upsert(ctx, readyEntry("BTC", 0.9)))

	got, err := store.Get(ctx, "BTC")
	require.NoError(t, err)
	assert.Equal(t, 0.9, got.Report.OverallScore, "last writer wins per symbol")
}

func TestCacheReportStore_UpsertValidation(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	assert.Error(t, store.Upsert(ctx, nil))
	assert.Error(t, store.Upsert(ctx, &models.CacheEntry{}))

	now := time.Now()
	assert.Error(t, store.Upsert(ctx, &models.CacheEntry{
		Symbol:    "BTC",
		Status:    models.EntryReady,
		CreatedAt: now,
		ExpiresAt: now,
	}), "expires_at must be strictly after created_at")
}

func TestCacheReportStore_ListPreservesOrderSkipsMissing(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, readyEntry("SOL", 0.3)))
	require.NoError(t, store.Upsert(ctx, readyEntry("BTC", 0.1)))

	entries, err := store.List(ctx, []string{"BTC", "ETH", "SOL"})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "BTC", entries[0].Symbol)
	assert.Equal(t, "SOL", entries[1].Symbol)

	empty, err := store.List(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestCacheReportStore_StaleEntriesStayReadable(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	past := time.Now().Add(-time.Hour)
	entry := models.NewReadyEntry(&models.SignalReport{Symbol: "BTC", GeneratedAt: past}, past, time.Minute)
	require.NoError(t, store.Upsert(ctx, entry))

	got, err := store.Get(ctx, "BTC")
	require.NoError(t, err, "logically expired entries remain readable for the status view")
	assert.False(t, got.IsFresh(time.Now()))
}
