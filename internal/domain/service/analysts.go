package service

import (
	"context"

	"CoinPilot/internal/domain/models"
)

// QuantAnalyst computes the short-horizon technical signal for one asset.
type QuantAnalyst interface {
	Analyze(ctx context.Context, symbol string) (models.QuantSignal, error)
}

// SocialAnalyst computes the sentiment signal for one asset.
type SocialAnalyst interface {
	Analyze(ctx context.Context, symbol string) (models.SocialSignal, error)
}

// RiskAnalyst computes the macro risk-environment signal.
type RiskAnalyst interface {
	Analyze(ctx context.Context, symbol string) (models.RiskSignal, error)
}

// Summarizer produces an advisory natural-language market summary. It runs
// after the decision engine and never feeds back into it.
type Summarizer interface {
	Summarize(ctx context.Context, report *models.SignalReport, decision *models.Decision) (string, error)
}
