package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	cacheHits       *prometheus.CounterVec
	cacheMisses     *prometheus.CounterVec
	flightsJoined   *prometheus.CounterVec
	flightsStarted  *prometheus.CounterVec
	flightsInFlight prometheus.Gauge
	analystErrors   *prometheus.CounterVec
	refreshDuration prometheus.Histogram
	decisions       *prometheus.CounterVec
	latency         *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		cacheHits: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coinpilot_cache_hits_total",
				Help: "Fresh cache hits served without collaborator calls",
			},
			[]string{"symbol"},
		),
		cacheMisses: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coinpilot_cache_misses_total",
				Help: "Cache misses or stale entries triggering recomputation",
			},
			[]string{"symbol"},
		),
		flightsJoined: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coinpilot_flights_joined_total",
				Help: "Callers that reused an in-flight computation",
			},
			[]string{"symbol"},
		),
		flightsStarted: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coinpilot_flights_started_total",
				Help: "Computations started by the dispatcher",
			},
			[]string{"symbol"},
		),
		flightsInFlight: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "coinpilot_flights_in_flight",
				Help: "Computations currently in flight",
			},
		),
		analystErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coinpilot_analyst_errors_total",
				Help: "Collaborator analyst failures by analyst",
			},
			[]string{"analyst"},
		),
		refreshDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "coinpilot_refresh_tick_seconds",
				Help:    "Duration of one full hot-list refresh tick",
				Buckets: prometheus.DefBuckets,
			},
		),
		decisions: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coinpilot_decisions_total",
				Help: "Decisions produced by action",
			},
			[]string{"action"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "coinpilot_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordCacheHit records a fresh cache hit.
func (r *Recorder) RecordCacheHit(symbol string) {
	r.cacheHits.WithLabelValues(symbol).Inc()
}

// RecordCacheMiss records a cache miss or stale entry.
func (r *Recorder) RecordCacheMiss(symbol string) {
	r.cacheMisses.WithLabelValues(symbol).Inc()
}

// RecordFlightJoined records a caller joining an in-flight computation.
func (r *Recorder) RecordFlightJoined(symbol string) {
	r.flightsJoined.WithLabelValues(symbol).Inc()
}

// RecordFlightStarted records a computation starting.
func (r *Recorder) RecordFlightStarted(symbol string) {
	r.flightsStarted.WithLabelValues(symbol).Inc()
	r.flightsInFlight.Inc()
}

// RecordFlightDone records a computation finishing.
func (r *Recorder) RecordFlightDone(symbol string) {
	r.flightsInFlight.Dec()
}

// RecordAnalystError records a collaborator failure.
func (r *Recorder) RecordAnalystError(analyst string) {
	r.analystErrors.WithLabelValues(analyst).Inc()
}

// RecordRefreshDuration records the duration of one refresh tick.
func (r *Recorder) RecordRefreshDuration(seconds float64) {
	r.refreshDuration.Observe(seconds)
}

// RecordDecision records a produced decision.
func (r *Recorder) RecordDecision(action string) {
	r.decisions.WithLabelValues(action).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
