package usecase

import (
	"context"
	"errors"
	"time"

	"CoinPilot/internal/domain/models"
	domrepo "CoinPilot/internal/domain/repository"
	applogger "CoinPilot/pkg/logger"
)

// Resolver answers foreground analysis requests. Fresh cache entries are
// served with zero collaborator calls; misses and stale entries go through
// the single-flight dispatcher and are written back with a fresh TTL.
//
// Policy: freshness over availability. When recomputation fails, the caller
// gets the error; a stale entry still present in the store is not
// substituted automatically.
type Resolver struct {
	store      domrepo.ReportStore
	dispatcher *Dispatcher
	archive    domrepo.ReportArchive  // optional
	events     domrepo.EventPublisher // optional
	hotlist    []string
	ttl        time.Duration
	metrics    domrepo.Metrics
	logger     *applogger.Logger
	now        func() time.Time
}

// ResolverOption configures Resolver.
type ResolverOption func(*Resolver)

// WithArchive attaches the best-effort report archive.
func WithArchive(a domrepo.ReportArchive) ResolverOption {
	return func(r *Resolver) { r.archive = a }
}

// WithEvents attaches the best-effort event publisher.
func WithEvents(p domrepo.EventPublisher) ResolverOption {
	return func(r *Resolver) { r.events = p }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) ResolverOption {
	return func(r *Resolver) {
		if now != nil {
			r.now = now
		}
	}
}

func NewResolver(
	store domrepo.ReportStore,
	dispatcher *Dispatcher,
	hotlist []string,
	ttl time.Duration,
	metrics domrepo.Metrics,
	logger *applogger.Logger,
	opts ...ResolverOption,
) *Resolver {
	r := &Resolver{
		store:      store,
		dispatcher: dispatcher,
		hotlist:    hotlist,
		ttl:        ttl,
		metrics:    metrics,
		logger:     logger,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Get returns the analysis for symbol, serving the cache when fresh and
// computing on demand otherwise.
func (r *Resolver) Get(ctx context.Context, symbol string) (*models.SignalReport, error) {
	entry, err := r.store.Get(ctx, symbol)
	if err != nil && !errors.Is(err, domrepo.ErrNotFound) {
		return nil, err
	}
	if entry.IsFresh(r.now()) {
		r.metrics.RecordCacheHit(symbol)
		return entry.Report, nil
	}
	r.metrics.RecordCacheMiss(symbol)
	return r.recompute(ctx, symbol, entry)
}

// ForceRefresh recomputes symbol regardless of freshness, still collapsing
// into any in-flight computation.
func (r *Resolver) ForceRefresh(ctx context.Context, symbol string) (*models.SignalReport, error) {
	entry, err := r.store.Get(ctx, symbol)
	if err != nil && !errors.Is(err, domrepo.ErrNotFound) {
		return nil, err
	}
	return r.recompute(ctx, symbol, entry)
}

// HotListStatus returns the stored entries for the configured hot-list.
func (r *Resolver) HotListStatus(ctx context.Context) ([]*models.CacheEntry, error) {
	return r.store.List(ctx, r.hotlist)
}

// HotList returns the configured hot-list symbols.
func (r *Resolver) HotList() []string { return r.hotlist }

func (r *Resolver) recompute(ctx context.Context, symbol string, prev *models.CacheEntry) (*models.SignalReport, error) {
	if prev == nil {
		// First sighting of this symbol: record the in-flight state so the
		// bulk-status view can show it.
		if err := r.store.Upsert(ctx, models.NewPendingEntry(symbol, r.now(), r.ttl)); err != nil {
			r.logger.Warn("pending upsert failed", applogger.String("symbol", symbol), applogger.Error(err))
		}
	}

	report, err := r.dispatcher.Resolve(ctx, symbol)
	if err != nil {
		persistFailure(ctx, r.store, symbol, prev, err, r.now(), r.ttl, r.logger)
		return nil, err
	}

	persistSuccess(ctx, r.store, r.archive, r.events, report, r.now(), r.ttl, r.logger)
	return report, nil
}

// persistSuccess writes a READY entry with a fresh TTL and feeds the
// best-effort archive and event stream. Archive and publish failures are
// logged, never propagated.
func persistSuccess(
	ctx context.Context,
	store domrepo.ReportStore,
	archive domrepo.ReportArchive,
	events domrepo.EventPublisher,
	report *models.SignalReport,
	now time.Time,
	ttl time.Duration,
	logger *applogger.Logger,
) {
	if err := store.Upsert(ctx, models.NewReadyEntry(report, now, ttl)); err != nil {
		logger.Error("cache upsert failed", applogger.String("symbol", report.Symbol), applogger.Error(err))
	}
	if archive != nil {
		if err := archive.Append(ctx, report); err != nil {
			logger.Warn("report archive append failed", applogger.String("symbol", report.Symbol), applogger.Error(err))
		}
	}
	if events != nil {
		if err := events.PublishRefresh(ctx, report); err != nil {
			logger.Warn("refresh event publish failed", applogger.String("symbol", report.Symbol), applogger.Error(err))
		}
	}
}

// persistFailure records a FAILED entry only when no usable report exists:
// a previous READY entry is left untouched so last-known-good data survives
// a failed recomputation.
func persistFailure(
	ctx context.Context,
	store domrepo.ReportStore,
	symbol string,
	prev *models.CacheEntry,
	cause error,
	now time.Time,
	ttl time.Duration,
	logger *applogger.Logger,
) {
	if prev != nil && prev.Status == models.EntryReady {
		return
	}
	if err := store.Upsert(ctx, models.NewFailedEntry(symbol, cause, now, ttl)); err != nil {
		logger.Warn("failed-entry upsert failed", applogger.String("symbol", symbol), applogger.Error(err))
	}
}
