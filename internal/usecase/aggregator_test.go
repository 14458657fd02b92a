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

func okQuant(dir models.Direction, conf float64) quantFn {
	return func(_ context.Context, _ string) (models.QuantSignal, error) {
		return models.QuantSignal{Direction: dir, Confidence: conf, Timestamp: time.Now()}, nil
	}
}

func okSocial(sent models.Sentiment, conf float64) socialFn {
	return func(_ context.Context, _ string) (models.SocialSignal, error) {
		return models.SocialSignal{Sentiment: sent, Confidence: conf, Timestamp: time.Now()}, nil
	}
}

func okRisk(level models.RiskLevel, riskOff bool, env string) riskFn {
	return func(_ context.Context, _ string) (models.RiskSignal, error) {
		return models.RiskSignal{Level: level, RiskOff: riskOff, Confidence: 0.8, Environment: env, Timestamp: time.Now()}, nil
	}
}

func TestAggregate_MergesAllThreeSignals(t *testing.T) {
	a := NewAggregator(
		okQuant(models.DirectionBuy, 0.8),
		okSocial(models.SentimentPositive, 0.6),
		okRisk(models.RiskLow, false, "bullish"),
		newCountingMetrics(), testLogger(t),
	)

	report, err := a.Aggregate(context.Background(), "BTC")
	require.NoError(t, err)

	assert.Equal(t, "BTC", report.Symbol)
	assert.InDelta(t, 0.8, report.QuantScore, 1e-9)
	assert.InDelta(t, 0.6, report.SocialScore, 1e-9)
	assert.InDelta(t, 1.0, report.RiskScore, 1e-9)
	assert.Equal(t, "bull", report.MarketRegime)
	// bull weights 0.5/0.3/0.2: (0.4 + 0.18 + 0.2) / 1.0
	assert.InDelta(t, 0.78, report.OverallScore, 1e-9)
	assert.NotEmpty(t, report.Summary)
	assert.False(t, report.GeneratedAt.IsZero())
}

func TestAggregate_RiskFailureSubstitutesConservativeDefault(t *testing.T) {
	m := newCountingMetrics()
	a := NewAggregator(
		okQuant(models.DirectionBuy, 0.9),
		okSocial(models.SentimentPositive, 0.9),
		riskFn(func(_ context.Context, _ string) (models.RiskSignal, error) {
			return models.RiskSignal{}, errors.New("macro feed down")
		}),
		m, testLogger(t),
	)

	report, err := a.Aggregate(context.Background(), "BTC")
	require.NoError(t, err, "risk is best-effort; the aggregate must survive its failure")

	assert.Equal(t, models.RiskHigh, report.Risk.Level)
	assert.False(t, report.Risk.RiskOff)
	assert.Zero(t, report.Risk.Confidence)
	assert.Equal(t, "neutral", report.MarketRegime)
	assert.Equal(t, 1, m.analystErrs["risk"])
}

func TestAggregate_MandatoryAnalystFailureFailsWhole(t *testing.T) {
	cause := errors.New("connection refused")

	t.Run("quant", func(t *testing.T) {
		a := NewAggregator(
			quantFn(func(_ context.Context, _ string) (models.QuantSignal, error) {
				return models.QuantSignal{}, cause
			}),
			okSocial(models.SentimentPositive, 0.9),
			okRisk(models.RiskLow, false, ""),
			newCountingMetrics(), testLogger(t),
		)
		_, err := a.Aggregate(context.Background(), "BTC")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrCollaborator)
		var ce *CollaboratorError
		require.ErrorAs(t, err, &ce)
		assert.Equal(t, "quant", ce.Analyst)
		assert.False(t, ce.Timeout)
	})

	t.Run("social", func(t *testing.T) {
		a := NewAggregator(
			okQuant(models.DirectionBuy, 0.9),
			socialFn(func(_ context.Context, _ string) (models.SocialSignal, error) {
				return models.SocialSignal{}, cause
			}),
			okRisk(models.RiskLow, false, ""),
			newCountingMetrics(), testLogger(t),
		)
		_, err := a.Aggregate(context.Background(), "BTC")
		var ce *CollaboratorError
		require.ErrorAs(t, err, &ce)
		assert.Equal(t, "social", ce.Analyst)
	})
}

func TestAggregate_TimeoutMarkedAsTimeout(t *testing.T) {
	a := NewAggregator(
		quantFn(func(ctx context.Context, _ string) (models.QuantSignal, error) {
			<-ctx.Done()
			return models.QuantSignal{}, ctx.Err()
		}),
		okSocial(models.SentimentPositive, 0.9),
		okRisk(models.RiskLow, false, ""),
		newCountingMetrics(), testLogger(t),
		WithAnalystTimeout(10*time.Millisecond),
	)

	_, err := a.Aggregate(context.Background(), "BTC")
	var ce *CollaboratorError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "quant", ce.Analyst)
	assert.True(t, ce.Timeout)
}

func TestAggregate_ClampsOutOfRangeConfidence(t *testing.T) {
	a := NewAggregator(
		okQuant(models.DirectionBuy, 1.8),
		okSocial(models.SentimentNegative, -0.3),
		okRisk(models.RiskMedium, false, ""),
		newCountingMetrics(), testLogger(t),
	)

	report, err := a.Aggregate(context.Background(), "BTC")
	require.NoError(t, err)
	assert.Equal(t, 1.0, report.Quant.Confidence)
	assert.Equal(t, 0.0, report.Social.Confidence)
}

func TestAggregate_EmptySymbolRejected(t *testing.T) {
	a := NewAggregator(
		okQuant(models.DirectionBuy, 0.5),
		okSocial(models.SentimentNeutral, 0.5),
		okRisk(models.RiskLow, false, ""),
		newCountingMetrics(), testLogger(t),
	)
	_, err := a.Aggregate(context.Background(), "")
	assert.Error(t, err)
}

func TestWeightTable_Lookup(t *testing.T) {
	table := DefaultWeights()

	assert.Equal(t, RegimeWeights{Quant: 0.5, Social: 0.3, Risk: 0.2}, table.Lookup("bull"))
	assert.Equal(t, table.Lookup("neutral"), table.Lookup("sideways"), "unknown regimes fall back to neutral")

	empty := WeightTable{}
	w := empty.Lookup("bull")
	assert.Positive(t, w.Quant+w.Social+w.Risk, "lookup never yields a zero-total row")
}

func TestNormalizeRegime(t *testing.T) {
	cases := map[string]string{
		"bull": "bull", "Bullish": "bull", "risk_on": "bull",
		"bear": "bear", "BEARISH": "bear", "risk_off": "bear",
		"": "neutral", "sideways": "neutral", " chop ": "neutral",
	}
	for in, want := range cases {
		assert.Equal(t, want, normalizeRegime(in), "input %q", in)
	}
}
