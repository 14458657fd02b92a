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
)

func TestRefreshAll_WarmsEverySymbol(t *testing.T) {
	var calls int64
	store := newMemStore()
	compute := func(_ context.Context, symbol string) (*models.SignalReport, error) {
		atomic.AddInt64(&calls, 1)
		return &models.SignalReport{Symbol: symbol, GeneratedAt: time.Now()}, nil
	}
	m := newCountingMetrics()
	d := newDispatcher(compute, m, testLogger(t))
	r := NewRefresher(store, d, []string{"BTC", "ETH", "SOL"}, time.Minute, time.Minute, m, testLogger(t))

	r.RefreshAll(context.Background())

	assert.Equal(t, int64(3), atomic.LoadInt64(&calls))
	for _, symbol := range []string{"BTC", "ETH", "SOL"} {
		entry, err := store.Get(context.Background(), symbol)
		require.NoError(t, err, symbol)
		assert.Equal(t, models.EntryReady, entry.Status, symbol)
		assert.True(t, entry.IsFresh(time.Now()), symbol)
	}
}

func TestRefreshAll_FailureIsolatedPerSymbol(t *testing.T) {
	store := newMemStore()
	compute := func(_ context.Context, symbol string) (*models.SignalReport, error) {
		if symbol == "ETH" {
			return nil, errors.New("quant down")
		}
		return &models.SignalReport{Symbol: symbol, GeneratedAt: time.Now()}, nil
	}
	m := newCountingMetrics()
	d := newDispatcher(compute, m, testLogger(t))
	r := NewRefresher(store, d, []string{"BTC", "ETH", "SOL"}, time.Minute, time.Minute, m, testLogger(t))

	r.RefreshAll(context.Background())

	for _, symbol := range []string{"BTC", "SOL"} {
		entry, err := store.Get(context.Background(), symbol)
		require.NoError(t, err, symbol)
		assert.Equal(t, models.EntryReady, entry.Status, symbol)
	}
	entry, err := store.Get(context.Background(), "ETH")
	require.NoError(t, err)
	assert.Equal(t, models.EntryFailed, entry.Status)
	assert.Contains(t, entry.LastError, "quant down")
}

func TestRefreshAll_PreservesLastKnownGood(t *testing.T) {
	store := newMemStore()
	var fail atomic.Bool
	compute := func(_ context.Context, symbol string) (*models.SignalReport, error) {
		if fail.Load() {
			return nil, errors.New("upstream flapping")
		}
		return &models.SignalReport{Symbol: symbol, OverallScore: 0.7, GeneratedAt: time.Now()}, nil
	}
	m := newCountingMetrics()
	d := newDispatcher(compute, m, testLogger(t))
	r := NewRefresher(store, d, []string{"BTC"}, time.Minute, time.Minute, m, testLogger(t))

	r.RefreshAll(context.Background())
	fail.Store(true)
	r.RefreshAll(context.Background())

	entry, err := store.Get(context.Background(), "BTC")
	require.NoError(t, err)
	assert.Equal(t, models.EntryReady, entry.Status, "a failed tick must not clobber a READY entry")
	require.NotNil(t, entry.Report)
	assert.Equal(t, 0.7, entry.Report.OverallScore)
}

func TestRefresher_StartTicksAndStops(t *testing.T) {
	var calls int64
	store := newMemStore()
	compute := func(_ context.Context, symbol string) (*models.SignalReport, error) {
		atomic.AddInt64(&calls, 1)
		return &models.SignalReport{Symbol: symbol, GeneratedAt: time.Now()}, nil
	}
	m := newCountingMetrics()
	d := newDispatcher(compute, m, testLogger(t))
	r := NewRefresher(store, d, []string{"BTC"}, 20*time.Millisecond, time.Minute, m, testLogger(t))

	r.Start(context.Background())

	deadline := time.Now().Add(time.Second)
	for atomic.LoadInt64(&calls) < 2 {
		if time.Now().After(deadline) {
			t.Fatal("refresher never ticked past the immediate first pass")
		}
		time.Sleep(5 * time.Millisecond)
	}
	r.Stop()

	after := atomic.LoadInt64(&calls)
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, after, atomic.LoadInt64(&calls), "no refreshes after Stop")
}

func TestNewRefresher_TTLNeverBelowInterval(t *testing.T) {
	store := newMemStore()
	m := newCountingMetrics()
	d := newDispatcher(func(_ context.Context, symbol string) (*models.SignalReport, error) {
		return &models.SignalReport{Symbol: symbol, GeneratedAt: time.Now()}, nil
	}, m, testLogger(t))

	// ttl shorter than the interval would let entries expire between ticks.
	r := NewRefresher(store, d, []string{"BTC"}, time.Minute, time.Second, m, testLogger(t))
	r.RefreshAll(context.Background())

	entry, err := store.Get(context.Background(), "BTC")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, entry.ExpiresAt.Sub(entry.CreatedAt), time.Minute)
}
