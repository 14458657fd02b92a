package jobs

import (
	"context"
	"fmt"

	"CoinPilot/internal/usecase"
	applogger "CoinPilot/pkg/logger"
	"CoinPilot/pkg/queue"
)

// RefreshMessageType routes manual refresh requests through the queue.
const RefreshMessageType = "analysis.refresh"

// RefreshPayload is the queued request for a forced recomputation.
type RefreshPayload struct {
	Symbol string `json:"symbol"`
}

// RefreshJob consumes queued refresh requests and drives the resolver.
// The forced recomputation still collapses into any in-flight analysis.
type RefreshJob struct {
	resolver *usecase.Resolver
	logger   *applogger.Logger
}

func NewRefreshJob(resolver *usecase.Resolver, logger *applogger.Logger) *RefreshJob {
	return &RefreshJob{resolver: resolver, logger: logger}
}

func (j *RefreshJob) Name() string { return "analysis-refresh" }

func (j *RefreshJob) Type() string { return RefreshMessageType }

func (j *RefreshJob) Handle(ctx context.Context, payload interface{}) error {
	p, err := queue.ParsePayload[RefreshPayload](payload)
	if err != nil {
		return fmt.Errorf("refresh job payload: %w", err)
	}
	if p.Symbol == "" {
		return fmt.Errorf("refresh job: symbol required")
	}

	if _, err := j.resolver.ForceRefresh(ctx, p.Symbol); err != nil {
		j.logger.Warn("queued refresh failed", applogger.String("symbol", p.Symbol), applogger.Error(err))
		return err
	}
	j.logger.Info("queued refresh completed", applogger.String("symbol", p.Symbol))
	return nil
}

var _ queue.Job = (*RefreshJob)(nil)
