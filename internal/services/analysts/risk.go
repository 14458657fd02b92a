package analysts

import (
	"context"
	"fmt"
	"strings"

	"CoinPilot/internal/domain/models"
	domsvc "CoinPilot/internal/domain/service"
	"CoinPilot/pkg/config"
)

// HTTPRiskAnalyst fetches the macro risk-environment signal from the risk
// analyst service. Callers treat its failures as best-effort.
type HTTPRiskAnalyst struct{ base *HTTPServiceBase }

func NewHTTPRiskAnalyst(cfg *config.Config) *HTTPRiskAnalyst {
	return &HTTPRiskAnalyst{base: NewHTTPServiceBase(cfg)}
}

type riskRequest struct {
	Symbol string `json:"symbol"`
}

type riskResponse struct {
	RiskLevel       string             `json:"risk_level"`
	RiskOff         bool               `json:"risk_off"`
	Confidence      float64            `json:"confidence"`
	Environment     string             `json:"market_environment"`
	MacroIndicators map[string]float64 `json:"macro_indicators"`
	Timestamp       int64              `json:"timestamp"`
}

func (a *HTTPRiskAnalyst) Analyze(ctx context.Context, symbol string) (models.RiskSignal, error) {
	var result models.RiskSignal
	var rr riskResponse
	err := a.base.PostJSONWithRetry(ctx, "/risk/analyze", riskRequest{Symbol: symbol}, &rr)
	if err != nil {
		return result, fmt.Errorf("post risk: %w", err)
	}

	level, err := parseRiskLevel(rr.RiskLevel)
	if err != nil {
		return result, err
	}
	result.Level = level
	result.RiskOff = rr.RiskOff
	result.Confidence = clamp01(rr.Confidence)
	result.Environment = rr.Environment
	result.MacroIndicators = rr.MacroIndicators
	result.Timestamp = parseUnix(rr.Timestamp)
	return result, nil
}

func parseRiskLevel(s string) (models.RiskLevel, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "LOW":
		return models.RiskLow, nil
	case "MEDIUM":
		return models.RiskMedium, nil
	case "HIGH":
		return models.RiskHigh, nil
	case "CRITICAL":
		return models.RiskCritical, nil
	default:
		return "", fmt.Errorf("risk payload: unknown risk level %q", s)
	}
}

var _ domsvc.RiskAnalyst = (*HTTPRiskAnalyst)(nil)
