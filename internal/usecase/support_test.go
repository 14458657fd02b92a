package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"CoinPilot/internal/domain/models"
	domrepo "CoinPilot/internal/domain/repository"
	applogger "CoinPilot/pkg/logger"
)

func testLogger(t *testing.T) *applogger.Logger {
	t.Helper()
	l, err := applogger.New(&applogger.Config{Level: "error", Format: "console", Output: "stdout"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return l
}

// countingMetrics records calls so tests can assert on hit/miss and
// flight accounting.
type countingMetrics struct {
	mu          sync.Mutex
	hits        int
	misses      int
	joined      int
	started     int
	done        int
	analystErrs map[string]int
	decisions   map[string]int
}

func newCountingMetrics() *countingMetrics {
	return &countingMetrics{
		analystErrs: make(map[string]int),
		decisions:   make(map[string]int),
	}
}

func (m *countingMetrics) RecordCacheHit(string)  { m.mu.Lock(); m.hits++; m.mu.Unlock() }
func (m *countingMetrics) RecordCacheMiss(string) { m.mu.Lock(); m.misses++; m.mu.Unlock() }
func (m *countingMetrics) RecordFlightJoined(string) {
	m.mu.Lock()
	m.joined++
	m.mu.Unlock()
}
func (m *countingMetrics) RecordFlightStarted(string) {
	m.mu.Lock()
	m.started++
	m.mu.Unlock()
}
func (m *countingMetrics) RecordFlightDone(string) { m.mu.Lock(); m.done++; m.mu.Unlock() }
func (m *countingMetrics) RecordAnalystError(analyst string) {
	m.mu.Lock()
	m.analystErrs[analyst]++
	m.mu.Unlock()
}
func (m *countingMetrics) RecordRefreshDuration(float64) {}
func (m *countingMetrics) RecordDecision(action string) {
	m.mu.Lock()
	m.decisions[action]++
	m.mu.Unlock()
}
func (m *countingMetrics) RecordLatency(string, float64) {}

func (m *countingMetrics) snapshot() (hits, misses, started, joined int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hits, m.misses, m.started, m.joined
}

var _ domrepo.Metrics = (*countingMetrics)(nil)

// Function adapters for the three analyst interfaces.

type quantFn func(ctx context.Context, symbol string) (models.QuantSignal, error)

func (f quantFn) Analyze(ctx context.Context, symbol string) (models.QuantSignal, error) {
	return f(ctx, symbol)
}

type socialFn func(ctx context.Context, symbol string) (models.SocialSignal, error)

func (f socialFn) Analyze(ctx context.Context, symbol string) (models.SocialSignal, error) {
	return f(ctx, symbol)
}

type riskFn func(ctx context.Context, symbol string) (models.RiskSignal, error)

func (f riskFn) Analyze(ctx context.Context, symbol string) (models.RiskSignal, error) {
	return f(ctx, symbol)
}

// memStore is an in-memory ReportStore for resolver and refresher tests.
type memStore struct {
	mu sync.Mutex
	m  map[string]*models.CacheEntry
}

func newMemStore() *memStore {
	return &memStore{m: make(map[string]*models.CacheEntry)}
}

func (s *memStore) Get(_ context.Context, symbol string) (*models.CacheEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.m[symbol]
	if !ok {
		return nil, domrepo.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (s *memStore) Upsert(_ context.Context, entry *models.CacheEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *entry
	s.m[entry.Symbol] = &cp
	return nil
}

func (s *memStore) List(_ context.Context, symbols []string) ([]*models.CacheEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.CacheEntry
	for _, sym := range symbols {
		if e, ok := s.m[sym]; ok {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

var _ domrepo.ReportStore = (*memStore)(nil)

// makeReport builds a merged report directly, bypassing the aggregator, for
// decision engine tests.
func makeReport(dir models.Direction, qc float64, sent models.Sentiment, sc float64, level models.RiskLevel, riskOff bool) *models.SignalReport {
	now := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	return &models.SignalReport{
		Symbol:      "BTC",
		Quant:       models.QuantSignal{Direction: dir, Confidence: qc, Timestamp: now},
		Social:      models.SocialSignal{Sentiment: sent, Confidence: sc, Timestamp: now},
		Risk:        models.RiskSignal{Level: level, RiskOff: riskOff, Confidence: 0.9, Timestamp: now},
		GeneratedAt: now,
	}
}
