package usecase

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CoinPilot/internal/domain/models"
)

func TestDispatcher_CollapsesConcurrentCallers(t *testing.T) {
	var calls int64
	release := make(chan struct{})
	compute := func(ctx context.Context, symbol string) (*models.SignalReport, error) {
		atomic.AddInt64(&calls, 1)
		<-release
		return &models.SignalReport{Symbol: symbol, GeneratedAt: time.Now()}, nil
	}
	d := newDispatcher(compute, newCountingMetrics(), testLogger(t))

	const n = 50
	var (
		ready   int64
		wg      sync.WaitGroup
		mu      sync.Mutex
		reports []*models.SignalReport
		errs    []error
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			atomic.AddInt64(&ready, 1)
			r, err := d.Resolve(context.Background(), "BTC")
			mu.Lock()
			reports = append(reports, r)
			errs = append(errs, err)
			mu.Unlock()
		}()
	}

	for atomic.LoadInt64(&ready) < n {
		time.Sleep(time.Millisecond)
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int64(1), atomic.LoadInt64(&calls), "exactly one computation for N concurrent callers")
	require.Len(t, reports, n)
	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		assert.Same(t, reports[0], reports[i], "all callers share the one result")
	}
}

func TestDispatcher_ErrorFansOutToAllWaiters(t *testing.T) {
	wantErr := errors.New("quant analyst failed")
	release := make(chan struct{})
	compute := func(ctx context.Context, symbol string) (*models.SignalReport, error) {
		<-release
		return nil, wantErr
	}
	d := newDispatcher(compute, newCountingMetrics(), testLogger(t))

	const n = 10
	var (
		ready int64
		wg    sync.WaitGroup
		mu    sync.Mutex
		errs  []error
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			atomic.AddInt64(&ready, 1)
			_, err := d.Resolve(context.Background(), "ETH")
			mu.Lock()
			errs = append(errs, err)
			mu.Unlock()
		}()
	}

	for atomic.LoadInt64(&ready) < n {
		time.Sleep(time.Millisecond)
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	require.Len(t, errs, n)
	for _, err := range errs {
		assert.ErrorIs(t, err, wantErr)
	}
}

func TestDispatcher_TokenReleasedAfterCompletion(t *testing.T) {
	var calls int64
	compute := func(ctx context.Context, symbol string) (*models.SignalReport, error) {
		atomic.AddInt64(&calls, 1)
		return &models.SignalReport{Symbol: symbol}, nil
	}
	d := newDispatcher(compute, newCountingMetrics(), testLogger(t))

	_, err := d.Resolve(context.Background(), "BTC")
	require.NoError(t, err)
	assert.False(t, d.InFlight("BTC"))

	// A later request starts a fresh computation instead of joining a ghost.
	_, err = d.Resolve(context.Background(), "BTC")
	require.NoError(t, err)
	assert.Equal(t, int64(2), atomic.LoadInt64(&calls))
}

func TestDispatcher_CallerCancelDoesNotAbortComputation(t *testing.T) {
	release := make(chan struct{})
	completed := make(chan struct{})
	compute := func(ctx context.Context, symbol string) (*models.SignalReport, error) {
		<-release
		// The detached context must survive the initiator's cancellation.
		require.NoError(t, ctx.Err())
		close(completed)
		return &models.SignalReport{Symbol: symbol}, nil
	}
	d := newDispatcher(compute, newCountingMetrics(), testLogger(t))

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, err := d.Resolve(ctx, "SOL")
		errCh <- err
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-errCh, context.Canceled)

	close(release)
	select {
	case <-completed:
	case <-time.After(time.Second):
		t.Fatal("computation did not run to completion after caller cancel")
	}

	// Token is eventually released.
	deadline := time.Now().Add(time.Second)
	for d.InFlight("SOL") {
		if time.Now().After(deadline) {
			t.Fatal("flight token never released")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestDispatcher_IndependentSymbolsRunConcurrently(t *testing.T) {
	var inFlight, maxInFlight int64
	release := make(chan struct{})
	compute := func(ctx context.Context, symbol string) (*models.SignalReport, error) {
		cur := atomic.AddInt64(&inFlight, 1)
		for {
			prev := atomic.LoadInt64(&maxInFlight)
			if cur <= prev || atomic.CompareAndSwapInt64(&maxInFlight, prev, cur) {
				break
			}
		}
		<-release
		atomic.AddInt64(&inFlight, -1)
		return &models.SignalReport{Symbol: symbol}, nil
	}
	d := newDispatcher(compute, newCountingMetrics(), testLogger(t))

	var wg sync.WaitGroup
	for _, symbol := range []string{"BTC", "ETH", "SOL"} {
		wg.Add(1)
		go func(symbol string) {
			defer wg.Done()
			_, err := d.Resolve(context.Background(), symbol)
			assert.NoError(t, err)
		}(symbol)
	}

	deadline := time.Now().Add(time.Second)
	for atomic.LoadInt64(&inFlight) < 3 {
		if time.Now().After(deadline) {
			t.Fatal("symbols did not run concurrently")
		}
		time.Sleep(time.Millisecond)
	}
	close(release)
	wg.Wait()

	assert.Equal(t, int64(3), atomic.LoadInt64(&maxInFlight))
}
