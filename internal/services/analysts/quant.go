package analysts

import (
	"context"
	"fmt"
	"strings"
	"time"

	"CoinPilot/internal/domain/models"
	domsvc "CoinPilot/internal/domain/service"
	"CoinPilot/pkg/config"
)

// HTTPQuantAnalyst fetches the short-horizon technical signal from the
// quant analyst service.
type HTTPQuantAnalyst struct{ base *HTTPServiceBase }

func NewHTTPQuantAnalyst(cfg *config.Config) *HTTPQuantAnalyst {
	return &HTTPQuantAnalyst{base: NewHTTPServiceBase(cfg)}
}

type quantRequest struct {
	Symbol string `json:"symbol"`
}

type quantResponse struct {
	Direction  string             `json:"direction"`
	Confidence float64            `json:"confidence"`
	Indicators map[string]float64 `json:"indicators"`
	Timeframe  string             `json:"timeframe"`
	Timestamp  int64              `json:"timestamp"`
}

func (a *HTTPQuantAnalyst) Analyze(ctx context.Context, symbol string) (models.QuantSignal, error) {
	var result models.QuantSignal
	var qr quantResponse
	err := a.base.PostJSONWithRetry(ctx, "/quant/analyze", quantRequest{Symbol: symbol}, &qr)
	if err != nil {
		return result, fmt.Errorf("post quant: %w", err)
	}

	// Convert the loose upstream payload to the typed signal at the
	// boundary; unknown shapes never reach the decision path.
	direction, err := parseDirection(qr.Direction)
	if err != nil {
		return result, err
	}
	result.Direction = direction
	result.Confidence = clamp01(qr.Confidence)
	result.Indicators = qr.Indicators
	result.Timeframe = qr.Timeframe
	result.Timestamp = parseUnix(qr.Timestamp)
	return result, nil
}

func parseDirection(s string) (models.Direction, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "BUY":
		return models.DirectionBuy, nil
	case "SELL":
		return models.DirectionSell, nil
	case "HOLD", "NEUTRAL":
		return models.DirectionHold, nil
	default:
		return "", fmt.Errorf("quant payload: unknown direction %q", s)
	}
}

func parseUnix(ts int64) time.Time {
	if ts <= 0 {
		return time.Now()
	}
	return time.Unix(ts, 0)
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

var _ domsvc.QuantAnalyst = (*HTTPQuantAnalyst)(nil)
