package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"CoinPilot/internal/domain/models"
	domrepo "CoinPilot/internal/domain/repository"
	domsvc "CoinPilot/internal/domain/service"
	applogger "CoinPilot/pkg/logger"
)

// RegimeWeights weight the quant/social/risk sub-scores for one market regime.
type RegimeWeights struct {
	Quant  float64 `yaml:"quant" json:"quant"`
	Social float64 `yaml:"social" json:"social"`
	Risk   float64 `yaml:"risk" json:"risk"`
}

// WeightTable maps a market regime name to its score weights. The table is
// injected configuration; regime names are matched case-insensitively and
// unknown regimes fall back to the "neutral" row.
type WeightTable map[string]RegimeWeights

// DefaultWeights is the fallback table used when config supplies none.
func DefaultWeights() WeightTable {
	return WeightTable{
		"bull":    {Quant: 0.5, Social: 0.3, Risk: 0.2},
		"bear":    {Quant: 0.4, Social: 0.2, Risk: 0.4},
		"neutral": {Quant: 0.5, Social: 0.2, Risk: 0.3},
	}
}

// Lookup returns the weights for regime, falling back to neutral and then to
// an even split so the aggregate never divides by zero.
func (t WeightTable) Lookup(regime string) RegimeWeights {
	if w, ok := t[strings.ToLower(regime)]; ok {
		return w
	}
	if w, ok := t["neutral"]; ok {
		return w
	}
	return RegimeWeights{Quant: 1, Social: 1, Risk: 1}
}

// Aggregator calls the three collaborator analysts concurrently and merges
// their results into one SignalReport. Quant and social are mandatory; the
// risk signal is best-effort and substituted with a conservative default on
// failure.
type Aggregator struct {
	quant   domsvc.QuantAnalyst
	social  domsvc.SocialAnalyst
	risk    domsvc.RiskAnalyst
	weights WeightTable
	timeout time.Duration
	metrics domrepo.Metrics
	logger  *applogger.Logger
}

// AggregatorOption configures Aggregator.
type AggregatorOption func(*Aggregator)

// WithAnalystTimeout sets the per-analyst timeout.
func WithAnalystTimeout(d time.Duration) AggregatorOption {
	return func(a *Aggregator) {
		if d > 0 {
			a.timeout = d
		}
	}
}

// WithWeights sets the regime weight table.
func WithWeights(t WeightTable) AggregatorOption {
	return func(a *Aggregator) {
		if len(t) > 0 {
			a.weights = t
		}
	}
}

func NewAggregator(
	quant domsvc.QuantAnalyst,
	social domsvc.SocialAnalyst,
	risk domsvc.RiskAnalyst,
	metrics domrepo.Metrics,
	logger *applogger.Logger,
	opts ...AggregatorOption,
) *Aggregator {
	a := &Aggregator{
		quant:   quant,
		social:  social,
		risk:    risk,
		weights: DefaultWeights(),
		timeout: 10 * time.Second,
		metrics: metrics,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Aggregate runs the three analysts for symbol. Each call runs under its own
// timeout; the whole aggregate fails only when quant or social fail.
func (a *Aggregator) Aggregate(ctx context.Context, symbol string) (*models.SignalReport, error) {
	if symbol == "" {
		return nil, fmt.Errorf("symbol required")
	}

	start := time.Now()

	type item struct {
		name string
		val  interface{}
		err  error
	}
	ch := make(chan item, 3)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		cctx, cancel := context.WithTimeout(ctx, a.timeout)
		defer cancel()
		v, err := a.quant.Analyze(cctx, symbol)
		ch <- item{"quant", v, err}
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		cctx, cancel := context.WithTimeout(ctx, a.timeout)
		defer cancel()
		v, err := a.social.Analyze(cctx, symbol)
		ch <- item{"social", v, err}
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		cctx, cancel := context.WithTimeout(ctx, a.timeout)
		defer cancel()
		v, err := a.risk.Analyze(cctx, symbol)
		ch <- item{"risk", v, err}
	}()

	go func() { wg.Wait(); close(ch) }()

	var (
		quant  models.QuantSignal
		social models.SocialSignal
		risk   models.RiskSignal
	)
	riskFailed := false
	for it := range ch {
		if it.err != nil {
			a.metrics.RecordAnalystError(it.name)
			if it.name == "risk" {
				// Best-effort source: substitute conservative default.
				a.logger.Warn("risk analyst failed, substituting conservative default",
					applogger.String("symbol", symbol), applogger.Error(it.err))
				riskFailed = true
				continue
			}
			return nil, newCollaboratorError(it.name, it.err)
		}
		switch it.name {
		case "quant":
			quant = it.val.(models.QuantSignal)
		case "social":
			social = it.val.(models.SocialSignal)
		case "risk":
			risk = it.val.(models.RiskSignal)
		}
	}

	now := time.Now()
	if riskFailed {
		risk = models.SubstituteRisk(now)
	}

	report := a.merge(symbol, quant, social, risk, now)
	a.metrics.RecordLatency("aggregate", time.Since(start).Seconds())
	return report, nil
}

func (a *Aggregator) merge(symbol string, quant models.QuantSignal, social models.SocialSignal, risk models.RiskSignal, now time.Time) *models.SignalReport {
	quant.Confidence = clamp01(quant.Confidence)
	social.Confidence = clamp01(social.Confidence)
	risk.Confidence = clamp01(risk.Confidence)

	qs := directionScore(quant.Direction, quant.Confidence)
	ss := sentimentScore(social.Sentiment, social.Confidence)
	rs := riskScore(risk)

	regime := normalizeRegime(risk.Environment)
	w := a.weights.Lookup(regime)
	total := w.Quant + w.Social + w.Risk
	overall := 0.0
	if total > 0 {
		overall = (w.Quant*qs + w.Social*ss + w.Risk*rs) / total
	}

	detail, _ := json.Marshal(map[string]interface{}{
		"indicators":       quant.Indicators,
		"news_impact":      social.NewsImpact,
		"macro_indicators": risk.MacroIndicators,
	})

	return &models.SignalReport{
		Symbol:       symbol,
		Quant:        quant,
		Social:       social,
		Risk:         risk,
		QuantScore:   qs,
		SocialScore:  ss,
		RiskScore:    rs,
		OverallScore: overall,
		MarketRegime: regime,
		Summary:      buildSummary(symbol, quant, social, risk, overall),
		FullReport:   detail,
		GeneratedAt:  now,
	}
}

func directionScore(d models.Direction, confidence float64) float64 {
	switch d {
	case models.DirectionBuy:
		return confidence
	case models.DirectionSell:
		return -confidence
	default:
		return 0
	}
}

func sentimentScore(s models.Sentiment, confidence float64) float64 {
	switch s {
	case models.SentimentPositive:
		return confidence
	case models.SentimentNegative:
		return -confidence
	default:
		return 0
	}
}

func riskScore(r models.RiskSignal) float64 {
	if r.RiskOff {
		return -1
	}
	switch r.Level {
	case models.RiskLow:
		return 1
	case models.RiskMedium:
		return 0.5
	case models.RiskHigh:
		return -0.5
	case models.RiskCritical:
		return -1
	default:
		return 0
	}
}

func normalizeRegime(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "bull", "bullish", "risk_on":
		return "bull"
	case "bear", "bearish", "risk_off":
		return "bear"
	default:
		return "neutral"
	}
}

func buildSummary(symbol string, quant models.QuantSignal, social models.SocialSignal, risk models.RiskSignal, overall float64) string {
	return fmt.Sprintf("%s: quant %s (%.2f), social %s (%.2f), risk %s, overall %.3f",
		symbol, quant.Direction, quant.Confidence, social.Sentiment, social.Confidence, risk.Level, overall)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
