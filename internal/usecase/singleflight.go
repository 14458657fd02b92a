package usecase

import (
	"context"
	"sync"
	"time"

	"CoinPilot/internal/domain/models"
	domrepo "CoinPilot/internal/domain/repository"
	applogger "CoinPilot/pkg/logger"
)

// analysisFn is the computation the dispatcher deduplicates.
type analysisFn func(ctx context.Context, symbol string) (*models.SignalReport, error)

// flight is the in-flight token for one symbol: at most one exists per
// symbol at any instant, system-wide within this process.
type flight struct {
	done   chan struct{}
	report *models.SignalReport
	err    error
}

// Dispatcher guarantees at most one concurrent aggregation per symbol and
// fans the shared result out to every concurrent caller.
//
// The flights map is the only concurrently mutated shared state; all
// check-and-set transitions happen under mu.
type Dispatcher struct {
	mu      sync.Mutex
	flights map[string]*flight

	compute analysisFn
	metrics domrepo.Metrics
	logger  *applogger.Logger
}

func NewDispatcher(agg *Aggregator, metrics domrepo.Metrics, logger *applogger.Logger) *Dispatcher {
	return newDispatcher(agg.Aggregate, metrics, logger)
}

func newDispatcher(compute analysisFn, metrics domrepo.Metrics, logger *applogger.Logger) *Dispatcher {
	return &Dispatcher{
		flights: make(map[string]*flight),
		compute: compute,
		metrics: metrics,
		logger:  logger,
	}
}

// Resolve returns the analysis for symbol, joining an in-flight computation
// when one exists. Errors are published to waiters like results; waiters
// never block past the computation's own lifetime.
//
// A caller whose context expires stops waiting but does not cancel the
// underlying computation: the shared result still lands in the cache for
// subsequent readers.
func (d *Dispatcher) Resolve(ctx context.Context, symbol string) (*models.SignalReport, error) {
	d.mu.Lock()
	if f, ok := d.flights[symbol]; ok {
		d.mu.Unlock()
		d.metrics.RecordFlightJoined(symbol)
		d.logger.Debug("joined in-flight analysis", applogger.String("symbol", symbol))
		select {
		case <-f.done:
			return f.report, f.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f := &flight{done: make(chan struct{})}
	d.flights[symbol] = f
	d.mu.Unlock()
	d.metrics.RecordFlightStarted(symbol)

	// Detach from the initiator's cancellation: the computation always runs
	// to completion so late joiners and the cache still see the result.
	go d.run(context.WithoutCancel(ctx), symbol, f)

	select {
	case <-f.done:
		return f.report, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// InFlight reports whether a computation for symbol is currently running.
func (d *Dispatcher) InFlight(symbol string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.flights[symbol]
	return ok
}

func (d *Dispatcher) run(ctx context.Context, symbol string, f *flight) {
	start := time.Now()
	report, err := d.compute(ctx, symbol)

	// Free the slot before publishing so the next computation for this
	// symbol can start the instant waiters are released.
	d.mu.Lock()
	delete(d.flights, symbol)
	f.report, f.err = report, err
	d.mu.Unlock()
	close(f.done)

	d.metrics.RecordFlightDone(symbol)
	if err != nil {
		d.logger.Warn("analysis failed",
			applogger.String("symbol", symbol),
			applogger.Duration("took", time.Since(start)),
			applogger.Error(err))
		return
	}
	d.logger.Debug("analysis completed",
		applogger.String("symbol", symbol),
		applogger.Duration("took", time.Since(start)))
}
