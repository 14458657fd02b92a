package analysts

import (
	"context"
	"fmt"
	"strings"

	"CoinPilot/internal/domain/models"
	domsvc "CoinPilot/internal/domain/service"
	"CoinPilot/pkg/config"
)

// HTTPSocialAnalyst fetches the sentiment signal from the social analyst
// service.
type HTTPSocialAnalyst struct{ base *HTTPServiceBase }

func NewHTTPSocialAnalyst(cfg *config.Config) *HTTPSocialAnalyst {
	return &HTTPSocialAnalyst{base: NewHTTPServiceBase(cfg)}
}

type socialRequest struct {
	Symbol string `json:"symbol"`
}

type socialResponse struct {
	Sentiment   string  `json:"sentiment"`
	Confidence  float64 `json:"confidence"`
	SocialScore float64 `json:"social_score"`
	NewsImpact  string  `json:"news_impact"`
	Timestamp   int64   `json:"timestamp"`
}

func (a *HTTPSocialAnalyst) Analyze(ctx context.Context, symbol string) (models.SocialSignal, error) {
	var result models.SocialSignal
	var sr socialResponse
	err := a.base.PostJSONWithRetry(ctx, "/social/analyze", socialRequest{Symbol: symbol}, &sr)
	if err != nil {
		return result, fmt.Errorf("post social: %w", err)
	}

	sentiment, err := parseSentiment(sr.Sentiment)
	if err != nil {
		return result, err
	}
	result.Sentiment = sentiment
	result.Confidence = clamp01(sr.Confidence)
	result.SocialScore = sr.SocialScore
	result.NewsImpact = sr.NewsImpact
	result.Timestamp = parseUnix(sr.Timestamp)
	return result, nil
}

func parseSentiment(s string) (models.Sentiment, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "positive", "bullish":
		return models.SentimentPositive, nil
	case "negative", "bearish":
		return models.SentimentNegative, nil
	case "neutral", "mixed":
		return models.SentimentNeutral, nil
	default:
		return "", fmt.Errorf("social payload: unknown sentiment %q", s)
	}
}

var _ domsvc.SocialAnalyst = (*HTTPSocialAnalyst)(nil)
