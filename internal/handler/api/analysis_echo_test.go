package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"CoinPilot/internal/domain/models"
	"CoinPilot/internal/usecase"
	"CoinPilot/pkg/cache"
	applogger "CoinPilot/pkg/logger"

	internalrepo "CoinPilot/internal/repository"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger(t *testing.T) *applogger.Logger {
	t.Helper()
	l, err := applogger.New(&applogger.Config{Level: "error", Format: "console", Output: "stdout"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return l
}

type nopMetrics struct{}

func (nopMetrics) RecordCacheHit(string)         {}
func (nopMetrics) RecordCacheMiss(string)        {}
func (nopMetrics) RecordFlightJoined(string)     {}
func (nopMetrics) RecordFlightStarted(string)    {}
func (nopMetrics) RecordFlightDone(string)       {}
func (nopMetrics) RecordAnalystError(string)     {}
func (nopMetrics) RecordRefreshDuration(float64) {}
func (nopMetrics) RecordDecision(string)         {}
func (nopMetrics) RecordLatency(string, float64) {}

type stubQuant struct{}

func (stubQuant) Analyze(_ context.Context, _ string) (models.QuantSignal, error) {
	return models.QuantSignal{Direction: models.DirectionBuy, Confidence: 0.9, Timestamp: time.Now()}, nil
}

type stubSocial struct{}

func (stubSocial) Analyze(_ context.Context, _ string) (models.SocialSignal, error) {
	return models.SocialSignal{Sentiment: models.SentimentPositive, Confidence: 0.8, Timestamp: time.Now()}, nil
}

type stubRisk struct{}

func (stubRisk) Analyze(_ context.Context, _ string) (models.RiskSignal, error) {
	return models.RiskSignal{Level: models.RiskLow, Confidence: 0.9, Timestamp: time.Now()}, nil
}

// newTestHandler wires the full serving chain over an in-memory store with
// stub analysts, so requests exercise the real resolver and advisor.
func newTestHandler(t *testing.T, defaultPersonality string) *AnalysisEchoHandler {
	t.Helper()
	lgr := testLogger(t)
	m := nopMetrics{}
	store := internalrepo.NewCacheReportStore(cache.NewMemoryCache())
	agg := usecase.NewAggregator(stubQuant{}, stubSocial{}, stubRisk{}, m, lgr)
	dispatcher := usecase.NewDispatcher(agg, m, lgr)
	resolver := usecase.NewResolver(store, dispatcher, []string{"BTC"}, 5*time.Minute, m, lgr)
	advisor := usecase.NewAdvisor(resolver, usecase.NewDecisionEngine(), m, lgr)
	return NewAnalysisEchoHandler(lgr, resolver, advisor, nil, nil, defaultPersonality)
}

func doDecision(t *testing.T, h *AnalysisEchoHandler, target string) (*httptest.ResponseRecorder, models.Decision) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()

	err := h.Decision(e.NewContext(req, rec))
	require.NoError(t, err)

	var body struct {
		Data models.Decision `json:"data"`
	}
	if rec.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec, body.Data
}

func TestDecision_DefaultPersonalityFromConfig(t *testing.T) {
	h := newTestHandler(t, "aggressive")

	rec, decision := doDecision(t, h, "/api/decision?symbol=BTC")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "aggressive", decision.Personality)
}

func TestDecision_ExplicitPersonalityWins(t *testing.T) {
	h := newTestHandler(t, "aggressive")

	rec, decision := doDecision(t, h, "/api/decision?symbol=BTC&personality=conservative")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "conservative", decision.Personality)
}

func TestDecision_RejectsUnknownPersonality(t *testing.T) {
	h := newTestHandler(t, "neutral")

	rec, _ := doDecision(t, h, "/api/decision?symbol=BTC&personality=reckless")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
