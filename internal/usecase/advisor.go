package usecase

import (
	"context"

	"CoinPilot/internal/domain/models"
	domrepo "CoinPilot/internal/domain/repository"
	domsvc "CoinPilot/internal/domain/service"
	applogger "CoinPilot/pkg/logger"
)

// Advisor runs resolution followed by the decision engine and decorates the
// result with the advisory summary. The summary is attached after the
// decision is final; it can never influence it.
type Advisor struct {
	resolver   *Resolver
	engine     *DecisionEngine
	summarizer domsvc.Summarizer      // optional
	events     domrepo.EventPublisher // optional
	metrics    domrepo.Metrics
	logger     *applogger.Logger
}

// AdvisorOption configures Advisor.
type AdvisorOption func(*Advisor)

// WithSummarizer attaches the advisory summarizer.
func WithSummarizer(s domsvc.Summarizer) AdvisorOption {
	return func(a *Advisor) { a.summarizer = s }
}

// WithAdvisorEvents attaches the best-effort event publisher.
func WithAdvisorEvents(p domrepo.EventPublisher) AdvisorOption {
	return func(a *Advisor) { a.events = p }
}

func NewAdvisor(
	resolver *Resolver,
	engine *DecisionEngine,
	metrics domrepo.Metrics,
	logger *applogger.Logger,
	opts ...AdvisorOption,
) *Advisor {
	a := &Advisor{
		resolver: resolver,
		engine:   engine,
		metrics:  metrics,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Decide resolves the analysis for symbol (cache or compute) and produces
// the bounded trading decision under the given personality profile.
func (a *Advisor) Decide(ctx context.Context, symbol, personality string) (*models.Decision, error) {
	report, err := a.resolver.Get(ctx, symbol)
	if err != nil {
		return nil, err
	}

	decision := a.engine.Decide(report, personality)
	a.metrics.RecordDecision(string(decision.Action))

	if a.summarizer != nil {
		summary, serr := a.summarizer.Summarize(ctx, report, &decision)
		if serr != nil {
			a.logger.Warn("summary generation failed",
				applogger.String("symbol", symbol), applogger.Error(serr))
		} else {
			decision.Summary = summary
		}
	}

	if a.events != nil {
		if perr := a.events.PublishDecision(ctx, &decision); perr != nil {
			a.logger.Warn("decision event publish failed",
				applogger.String("symbol", symbol), applogger.Error(perr))
		}
	}

	return &decision, nil
}
