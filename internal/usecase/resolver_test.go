package usecase

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CoinPilot/internal/domain/models"
	domrepo "CoinPilot/internal/domain/repository"
)

func newTestResolver(t *testing.T, store domrepo.ReportStore, compute analysisFn, ttl time.Duration, m *countingMetrics) *Resolver {
	t.Helper()
	d := newDispatcher(compute, m, testLogger(t))
	return NewResolver(store, d, []string{"BTC", "ETH"}, ttl, m, testLogger(t))
}

func countingCompute(calls *int64, err error) analysisFn {
	return func(_ context.Context, symbol string) (*models.SignalReport, error) {
		atomic.AddInt64(calls, 1)
		if err != nil {
			return nil, err
		}
		return &models.SignalReport{Symbol: symbol, OverallScore: 0.5, GeneratedAt: time.Now()}, nil
	}
}

func TestResolver_FreshHitServesCacheWithoutComputing(t *testing.T) {
	var calls int64
	store := newMemStore()
	m := newCountingMetrics()
	r := newTestResolver(t, store, countingCompute(&calls, nil), time.Minute, m)

	report := &models.SignalReport{Symbol: "BTC", OverallScore: 0.9, GeneratedAt: time.Now()}
	require.NoError(t, store.Upsert(context.Background(), models.NewReadyEntry(report, time.Now(), time.Minute)))

	got, err := r.Get(context.Background(), "BTC")
	require.NoError(t, err)
	assert.Equal(t, 0.9, got.OverallScore)
	assert.Zero(t, atomic.LoadInt64(&calls), "fresh hit must make zero collaborator calls")

	hits, misses, _, _ := m.snapshot()
	assert.Equal(t, 1, hits)
	assert.Zero(t, misses)
}

func TestResolver_MissComputesAndStoresReady(t *testing.T) {
	var calls int64
	store := newMemStore()
	m := newCountingMetrics()
	r := newTestResolver(t, store, countingCompute(&calls, nil), time.Minute, m)

	got, err := r.Get(context.Background(), "BTC")
	require.NoError(t, err)
	assert.Equal(t, "BTC", got.Symbol)
	assert.Equal(t, int64(1), atomic.LoadInt64(&calls))

	entry, err := store.Get(context.Background(), "BTC")
	require.NoError(t, err)
	assert.Equal(t, models.EntryReady, entry.Status)
	assert.True(t, entry.ExpiresAt.After(entry.CreatedAt))
	assert.True(t, entry.IsFresh(time.Now()))
}

func TestResolver_StaleEntryRecomputed(t *testing.T) {
	var calls int64
	store := newMemStore()
	r := newTestResolver(t, store, countingCompute(&calls, nil), time.Minute, newCountingMetrics())

	old := &models.SignalReport{Symbol: "BTC", OverallScore: 0.1, GeneratedAt: time.Now().Add(-time.Hour)}
	stale := models.NewReadyEntry(old, time.Now().Add(-time.Hour), time.Minute)
	require.NoError(t, store.Upsert(context.Background(), stale))

	got, err := r.Get(context.Background(), "BTC")
	require.NoError(t, err)
	assert.Equal(t, 0.5, got.OverallScore, "stale entry must be recomputed, not served")
	assert.Equal(t, int64(1), atomic.LoadInt64(&calls))

	entry, err := store.Get(context.Background(), "BTC")
	require.NoError(t, err)
	assert.True(t, entry.IsFresh(time.Now()), "recomputation renews the TTL window")
}

func TestResolver_FailedRecomputeReturnsErrorNotStaleData(t *testing.T) {
	var calls int64
	cause := errors.New("quant down")
	store := newMemStore()
	r := newTestResolver(t, store, countingCompute(&calls, cause), time.Minute, newCountingMetrics())

	old := &models.SignalReport{Symbol: "BTC", OverallScore: 0.1, GeneratedAt: time.Now().Add(-time.Hour)}
	require.NoError(t, store.Upsert(context.Background(), models.NewReadyEntry(old, time.Now().Add(-time.Hour), time.Minute)))

	_, err := r.Get(context.Background(), "BTC")
	assert.ErrorIs(t, err, cause, "stale data is never silently substituted for a failed computation")

	// The stale READY entry survives for the bulk-status view.
	entry, gerr := store.Get(context.Background(), "BTC")
	require.NoError(t, gerr)
	assert.Equal(t, models.EntryReady, entry.Status)
	assert.Equal(t, 0.1, entry.Report.OverallScore)
}

func TestResolver_FailureWithoutPriorReportStoresFailed(t *testing.T) {
	var calls int64
	cause := errors.New("social down")
	store := newMemStore()
	r := newTestResolver(t, store, countingCompute(&calls, cause), time.Minute, newCountingMetrics())

	_, err := r.Get(context.Background(), "BTC")
	assert.ErrorIs(t, err, cause)

	entry, gerr := store.Get(context.Background(), "BTC")
	require.NoError(t, gerr)
	assert.Equal(t, models.EntryFailed, entry.Status)
	assert.Contains(t, entry.LastError, "social down")
	assert.Nil(t, entry.Report)
}

func TestResolver_ForceRefreshBypassesFreshness(t *testing.T) {
	var calls int64
	store := newMemStore()
	r := newTestResolver(t, store, countingCompute(&calls, nil), time.Minute, newCountingMetrics())

	report := &models.SignalReport{Symbol: "BTC", OverallScore: 0.9, GeneratedAt: time.Now()}
	require.NoError(t, store.Upsert(context.Background(), models.NewReadyEntry(report, time.Now(), time.Minute)))

	got, err := r.ForceRefresh(context.Background(), "BTC")
	require.NoError(t, err)
	assert.Equal(t, 0.5, got.OverallScore)
	assert.Equal(t, int64(1), atomic.LoadInt64(&calls), "force refresh recomputes even when fresh")
}

func TestResolver_HotListStatus(t *testing.T) {
	var calls int64
	store := newMemStore()
	r := newTestResolver(t, store, countingCompute(&calls, nil), time.Minute, newCountingMetrics())

	report := &models.SignalReport{Symbol: "ETH", GeneratedAt: time.Now()}
	require.NoError(t, store.Upsert(context.Background(), models.NewReadyEntry(report, time.Now(), time.Minute)))

	entries, err := r.HotListStatus(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1, "missing hot-list symbols are skipped, not errored")
	assert.Equal(t, "ETH", entries[0].Symbol)
}
