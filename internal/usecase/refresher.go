package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	domrepo "CoinPilot/internal/domain/repository"
	applogger "CoinPilot/pkg/logger"
)

// Refresher keeps the hot-list warm: on a fixed interval it resolves every
// hot-list symbol through the single-flight dispatcher and writes results to
// the store. Per-symbol failures are isolated and never clobber a READY
// entry. Overlapping work for one symbol is impossible by the dispatcher's
// single-flight guarantee, even when a slow tick runs into the next.
type Refresher struct {
	store      domrepo.ReportStore
	dispatcher *Dispatcher
	archive    domrepo.ReportArchive  // optional
	events     domrepo.EventPublisher // optional
	hotlist    []string
	interval   time.Duration
	ttl        time.Duration
	metrics    domrepo.Metrics
	logger     *applogger.Logger
	now        func() time.Time

	stopOnce sync.Once
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

// RefresherOption configures Refresher.
type RefresherOption func(*Refresher)

// WithRefresherArchive attaches the best-effort report archive.
func WithRefresherArchive(a domrepo.ReportArchive) RefresherOption {
	return func(r *Refresher) { r.archive = a }
}

// WithRefresherEvents attaches the best-effort event publisher.
func WithRefresherEvents(p domrepo.EventPublisher) RefresherOption {
	return func(r *Refresher) { r.events = p }
}

// WithRefresherClock overrides the time source.
func WithRefresherClock(now func() time.Time) RefresherOption {
	return func(r *Refresher) {
		if now != nil {
			r.now = now
		}
	}
}

func NewRefresher(
	store domrepo.ReportStore,
	dispatcher *Dispatcher,
	hotlist []string,
	interval, ttl time.Duration,
	metrics domrepo.Metrics,
	logger *applogger.Logger,
	opts ...RefresherOption,
) *Refresher {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	if ttl < interval {
		ttl = interval
	}
	r := &Refresher{
		store:      store,
		dispatcher: dispatcher,
		hotlist:    hotlist,
		interval:   interval,
		ttl:        ttl,
		metrics:    metrics,
		logger:     logger,
		now:        time.Now,
		stopCh:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Start launches the refresh loop. The first tick runs immediately so the
// hot-list is warm shortly after boot.
func (r *Refresher) Start(ctx context.Context) {
	if len(r.hotlist) == 0 {
		r.logger.Warn("refresher started with empty hot-list")
		return
	}
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.logger.Info("refresher started",
			applogger.Strings("hotlist", r.hotlist),
			applogger.Duration("interval", r.interval),
			applogger.Duration("ttl", r.ttl))

		r.RefreshAll(ctx)
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				r.RefreshAll(ctx)
			case <-r.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop terminates the refresh loop and waits for the current tick to finish.
func (r *Refresher) Stop() {
	r.stopOnce.Do(func() { close(r.stopCh) })
	r.wg.Wait()
}

// RefreshAll runs one refresh tick: every hot-list symbol in parallel, each
// failure isolated to its own symbol.
func (r *Refresher) RefreshAll(ctx context.Context) {
	start := time.Now()
	var wg sync.WaitGroup
	for _, symbol := range r.hotlist {
		wg.Add(1)
		go func(symbol string) {
			defer wg.Done()
			r.refreshOne(ctx, symbol)
		}(symbol)
	}
	wg.Wait()
	r.metrics.RecordRefreshDuration(time.Since(start).Seconds())
}

func (r *Refresher) refreshOne(ctx context.Context, symbol string) {
	report, err := r.dispatcher.Resolve(ctx, symbol)
	if err != nil {
		prev, gerr := r.store.Get(ctx, symbol)
		if gerr != nil && !errors.Is(gerr, domrepo.ErrNotFound) {
			r.logger.Warn("refresh store read failed", applogger.String("symbol", symbol), applogger.Error(gerr))
			return
		}
		persistFailure(ctx, r.store, symbol, prev, err, r.now(), r.ttl, r.logger)
		r.logger.Warn("hot-list refresh failed", applogger.String("symbol", symbol), applogger.Error(err))
		return
	}
	persistSuccess(ctx, r.store, r.archive, r.events, report, r.now(), r.ttl, r.logger)
}
