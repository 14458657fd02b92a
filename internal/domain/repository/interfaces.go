package repository

import (
	"context"
	"errors"
	"time"

	"CoinPilot/internal/domain/models"
)

// ErrNotFound is returned when no cache entry exists for a symbol.
var ErrNotFound = errors.New("report store: entry not found")

// ReportStore is the durable keyed store holding one analysis record per
// symbol. Upsert replaces the entry wholesale (last-writer-wins per symbol).
type ReportStore interface {
	Get(ctx context.Context, symbol string) (*models.CacheEntry, error)
	Upsert(ctx context.Context, entry *models.CacheEntry) error
	// List returns the entries that exist for the given symbols, in the
	// given order. Missing symbols are skipped.
	List(ctx context.Context, symbols []string) ([]*models.CacheEntry, error)
}

// ReportArchive appends successful reports to long-term storage for
// historical queries. Best-effort; never on the serving path.
type ReportArchive interface {
	Append(ctx context.Context, report *models.SignalReport) error
	Query(ctx context.Context, symbol string, from, to time.Time, limit int) ([]*models.SignalReport, error)
	Health(ctx context.Context) error
	Close() error
}

// EventPublisher emits refresh and decision events for downstream consumers.
type EventPublisher interface {
	PublishRefresh(ctx context.Context, report *models.SignalReport) error
	PublishDecision(ctx context.Context, decision *models.Decision) error
	Close() error
}

// Metrics records operational measurements.
type Metrics interface {
	RecordCacheHit(symbol string)
	RecordCacheMiss(symbol string)
	RecordFlightJoined(symbol string)
	RecordFlightStarted(symbol string)
	RecordFlightDone(symbol string)
	RecordAnalystError(analyst string)
	RecordRefreshDuration(seconds float64)
	RecordDecision(action string)
	RecordLatency(op string, seconds float64)
}
