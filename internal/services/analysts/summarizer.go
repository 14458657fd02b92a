package analysts

import (
	"context"
	"fmt"

	"CoinPilot/internal/domain/models"
	domsvc "CoinPilot/internal/domain/service"
	"CoinPilot/pkg/config"
)

// HTTPSummarizer asks the summarization service for an advisory
// natural-language view of the market. It runs after the decision engine;
// its output is attached to responses and never read back into the
// decision path.
type HTTPSummarizer struct{ base *HTTPServiceBase }

func NewHTTPSummarizer(cfg *config.Config) *HTTPSummarizer {
	return &HTTPSummarizer{base: NewHTTPServiceBase(cfg)}
}

type summaryRequest struct {
	Symbol       string  `json:"symbol"`
	OverallScore float64 `json:"overall_score"`
	MarketRegime string  `json:"market_regime"`
	Action       string  `json:"action"`
	PositionSize int     `json:"position_size"`
	Rationale    string  `json:"rationale"`
}

type summaryResponse struct {
	Summary string `json:"summary"`
}

func (s *HTTPSummarizer) Summarize(ctx context.Context, report *models.SignalReport, decision *models.Decision) (string, error) {
	var sr summaryResponse
	err := s.base.PostJSONWithRetry(ctx, "/summary", summaryRequest{
		Symbol:       report.Symbol,
		OverallScore: report.OverallScore,
		MarketRegime: report.MarketRegime,
		Action:       string(decision.Action),
		PositionSize: decision.PositionSize,
		Rationale:    decision.Rationale,
	}, &sr)
	if err != nil {
		return "", fmt.Errorf("post summary: %w", err)
	}
	return sr.Summary, nil
}

var _ domsvc.Summarizer = (*HTTPSummarizer)(nil)
