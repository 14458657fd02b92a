package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CoinPilot/internal/domain/models"
)

type summarizerFn func(ctx context.Context, report *models.SignalReport, decision *models.Decision) (string, error)

func (f summarizerFn) Summarize(ctx context.Context, report *models.SignalReport, decision *models.Decision) (string, error) {
	return f(ctx, report, decision)
}

type recordingPublisher struct {
	refreshes int
	decisions int
	err       error
}

func (p *recordingPublisher) PublishRefresh(context.Context, *models.SignalReport) error {
	p.refreshes++
	return p.err
}

func (p *recordingPublisher) PublishDecision(context.Context, *models.Decision) error {
	p.decisions++
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func advisorFixture(t *testing.T, opts ...AdvisorOption) (*Advisor, *memStore, *countingMetrics) {
	t.Helper()
	store := newMemStore()
	m := newCountingMetrics()
	compute := func(_ context.Context, symbol string) (*models.SignalReport, error) {
		return makeReport(models.DirectionBuy, 1.0, models.SentimentPositive, 1.0, models.RiskLow, false), nil
	}
	d := newDispatcher(compute, m, testLogger(t))
	r := NewResolver(store, d, []string{"BTC"}, time.Minute, m, testLogger(t))
	return NewAdvisor(r, NewDecisionEngine(), m, testLogger(t), opts...), store, m
}

func TestAdvisor_DecideResolvesAndRecords(t *testing.T) {
	a, store, m := advisorFixture(t)

	d, err := a.Decide(context.Background(), "BTC", PersonalityNeutral)
	require.NoError(t, err)
	assert.Equal(t, models.ActionBuy, d.Action)
	assert.Equal(t, 100, d.PositionSize)
	assert.Equal(t, 1, m.decisions["BUY"])

	// Resolution wrote through to the store.
	entry, err := store.Get(context.Background(), "BTC")
	require.NoError(t, err)
	assert.Equal(t, models.EntryReady, entry.Status)
}

func TestAdvisor_SummaryAttachedAfterDecision(t *testing.T) {
	var sawAction models.Action
	summ := summarizerFn(func(_ context.Context, _ *models.SignalReport, d *models.Decision) (string, error) {
		sawAction = d.Action
		return "bull market, momentum intact", nil
	})
	a, _, _ := advisorFixture(t, WithSummarizer(summ))

	d, err := a.Decide(context.Background(), "BTC", PersonalityNeutral)
	require.NoError(t, err)
	assert.Equal(t, "bull market, momentum intact", d.Summary)
	assert.Equal(t, models.ActionBuy, sawAction, "summarizer sees the already-final decision")
}

func TestAdvisor_SummaryFailureIsAdvisoryOnly(t *testing.T) {
	summ := summarizerFn(func(context.Context, *models.SignalReport, *models.Decision) (string, error) {
		return "", errors.New("llm service down")
	})
	a, _, _ := advisorFixture(t, WithSummarizer(summ))

	d, err := a.Decide(context.Background(), "BTC", PersonalityNeutral)
	require.NoError(t, err, "summary failure never fails the decision")
	assert.Equal(t, models.ActionBuy, d.Action)
	assert.Empty(t, d.Summary)
}

func TestAdvisor_PublishFailureTolerated(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("broker unreachable")}
	a, _, _ := advisorFixture(t, WithAdvisorEvents(pub))

	d, err := a.Decide(context.Background(), "BTC", PersonalityAggressive)
	require.NoError(t, err)
	assert.Equal(t, models.ActionBuy, d.Action)
	assert.Equal(t, 1, pub.decisions)
}
