package usecase

import (
	"fmt"
	"math"

	"CoinPilot/internal/domain/models"
)

// Signal-strength weights and classification bounds.
const (
	quantWeight     = 0.7
	socialWeight    = 0.3
	strongThreshold = 0.6
	weakThreshold   = 0.3
)

// Personality profiles remap the risk level the safety override and sizing
// steps see. Conservative treats the environment one level worse than
// reported, aggressive one level better; CRITICAL is never relaxed.
const (
	PersonalityConservative = "conservative"
	PersonalityNeutral      = "neutral"
	PersonalityAggressive   = "aggressive"
)

// DecisionEngine merges a signal report into one bounded trading decision.
// Pure and deterministic: no I/O, no clock reads besides the stamped time,
// identical input yields identical output.
type DecisionEngine struct{}

func NewDecisionEngine() *DecisionEngine { return &DecisionEngine{} }

// Decide produces the decision for report under the given personality
// profile. Out-of-range confidences are clamped, never rejected.
func (e *DecisionEngine) Decide(report *models.SignalReport, personality string) models.Decision {
	d := e.decide(report, normalizePersonality(personality))
	d.Symbol = report.Symbol
	d.RiskLevel = report.Risk.Level
	d.DecidedAt = report.GeneratedAt
	return d
}

func (e *DecisionEngine) decide(report *models.SignalReport, personality string) models.Decision {
	qc := clamp01(report.Quant.Confidence)
	sc := clamp01(report.Social.Confidence)
	rc := clamp01(report.Risk.Confidence)
	confidence := clamp01((qc + sc + rc) / 3)

	s := quantWeight*directionScore(report.Quant.Direction, qc) +
		socialWeight*sentimentScore(report.Social.Sentiment, sc)

	base := models.Decision{
		Action:       models.ActionHold,
		PositionSize: 0,
		Confidence:   confidence,
		Personality:  personality,
	}

	if math.Abs(s) < weakThreshold {
		base.Rationale = fmt.Sprintf("no actionable signal: |s|=%.2f below %.2f", math.Abs(s), weakThreshold)
		return base
	}

	effective := effectiveRiskLevel(report.Risk.Level, personality)
	if report.Risk.RiskOff || effective == models.RiskCritical {
		reason := "critical risk environment"
		if report.Risk.RiskOff {
			reason = "risk-off environment"
		}
		base.Rationale = fmt.Sprintf("safety override: %s forces HOLD", reason)
		return base
	}

	strong := math.Abs(s) >= strongThreshold
	size := positionSize(strong, effective)
	if size == 0 {
		base.Rationale = fmt.Sprintf("weak signal (s=%.2f) in %s risk environment: stand aside", s, effective)
		return base
	}

	action := models.ActionBuy
	if s < 0 {
		action = models.ActionSell
	}
	strength := "weak"
	if strong {
		strength = "strong"
	}
	base.Action = action
	base.PositionSize = size
	base.Rationale = fmt.Sprintf("%s %s signal (s=%.2f) in %s risk environment: %d%% position",
		strength, action, s, effective, size)
	return base
}

// positionSize implements the strength x risk sizing table. CRITICAL never
// reaches here; the safety override fires first.
func positionSize(strong bool, level models.RiskLevel) int {
	if strong {
		switch level {
		case models.RiskLow:
			return 100
		case models.RiskMedium:
			return 70
		default:
			return 30
		}
	}
	if level == models.RiskLow {
		return 30
	}
	return 0
}

func effectiveRiskLevel(level models.RiskLevel, personality string) models.RiskLevel {
	switch personality {
	case PersonalityConservative:
		return escalate(level)
	case PersonalityAggressive:
		return relax(level)
	default:
		return level
	}
}

func escalate(level models.RiskLevel) models.RiskLevel {
	switch level {
	case models.RiskLow:
		return models.RiskMedium
	case models.RiskMedium:
		return models.RiskHigh
	default:
		return models.RiskCritical
	}
}

// relax steps one level down but never below LOW and never out of CRITICAL:
// a critical environment halts trading regardless of appetite.
func relax(level models.RiskLevel) models.RiskLevel {
	switch level {
	case models.RiskHigh:
		return models.RiskMedium
	case models.RiskMedium:
		return models.RiskLow
	default:
		return level
	}
}

func normalizePersonality(p string) string {
	switch p {
	case PersonalityConservative, PersonalityAggressive:
		return p
	default:
		return PersonalityNeutral
	}
}
