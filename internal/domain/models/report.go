package models

import (
	"encoding/json"
	"time"
)

// Direction is the short-horizon trading direction from the quant analyst.
type Direction string

const (
	DirectionBuy  Direction = "BUY"
	DirectionSell Direction = "SELL"
	DirectionHold Direction = "HOLD"
)

// Sentiment is the aggregate social-media sentiment for an asset.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

// RiskLevel is the macro risk-environment classification.
type RiskLevel string

const (
	RiskLow      RiskLevel = "LOW"
	RiskMedium   RiskLevel = "MEDIUM"
	RiskHigh     RiskLevel = "HIGH"
	RiskCritical RiskLevel = "CRITICAL"
)

// QuantSignal is the short-horizon technical signal for one asset.
type QuantSignal struct {
	Direction  Direction          `json:"direction"`
	Confidence float64            `json:"confidence"`
	Indicators map[string]float64 `json:"indicators,omitempty"`
	Timeframe  string             `json:"timeframe,omitempty"`
	Timestamp  time.Time          `json:"timestamp"`
}

// SocialSignal is the sentiment signal for one asset.
type SocialSignal struct {
	Sentiment   Sentiment `json:"sentiment"`
	Confidence  float64   `json:"confidence"`
	SocialScore float64   `json:"social_score"`
	NewsImpact  string    `json:"news_impact,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// RiskSignal is the long-horizon risk-environment signal. It is shared
// across assets but evaluated per request.
type RiskSignal struct {
	Level           RiskLevel          `json:"level"`
	RiskOff         bool               `json:"risk_off"`
	Confidence      float64            `json:"confidence"`
	Environment     string             `json:"market_environment,omitempty"`
	MacroIndicators map[string]float64 `json:"macro_indicators,omitempty"`
	Timestamp       time.Time          `json:"timestamp"`
}

// SignalReport is the merged analyst output for one asset. It is what the
// cache stores and what the decision engine consumes.
type SignalReport struct {
	Symbol       string          `json:"symbol"`
	Quant        QuantSignal     `json:"quant"`
	Social       SocialSignal    `json:"social"`
	Risk         RiskSignal      `json:"risk"`
	QuantScore   float64         `json:"quant_score"`
	SocialScore  float64         `json:"social_score"`
	RiskScore    float64         `json:"risk_score"`
	OverallScore float64         `json:"overall_score"`
	MarketRegime string          `json:"market_regime"`
	Summary      string          `json:"analyst_summary,omitempty"`
	FullReport   json.RawMessage `json:"full_report,omitempty"`
	GeneratedAt  time.Time       `json:"generated_at"`
}

// SubstituteRisk is the conservative stand-in used when the risk analyst is
// unavailable. Absent risk data must bias toward caution, not block analysis.
func SubstituteRisk(now time.Time) RiskSignal {
	return RiskSignal{
		Level:      RiskHigh,
		RiskOff:    false,
		Confidence: 0,
		Timestamp:  now,
	}
}
