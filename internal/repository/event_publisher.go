package repository

import (
	"context"

	"CoinPilot/internal/domain/models"
	"CoinPilot/internal/domain/repository"
	pkgkafka "CoinPilot/pkg/kafka"
)

// KafkaEventPublisher emits refresh and decision events for downstream
// consumers (audit trails, notification bots, backtests).
type KafkaEventPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

func NewKafkaEventPublisher(producer *pkgkafka.Producer, topic string) repository.EventPublisher {
	return &KafkaEventPublisher{producer: producer, topic: topic}
}

func (p *KafkaEventPublisher) PublishRefresh(ctx context.Context, r *models.SignalReport) error {
	return p.producer.Publish(ctx, p.topic, []byte(r.Symbol), map[string]interface{}{
		"type":          "analysis.refreshed",
		"symbol":        r.Symbol,
		"overall_score": r.OverallScore,
		"market_regime": r.MarketRegime,
		"risk_level":    r.Risk.Level,
		"generated_at":  r.GeneratedAt.Unix(),
	})
}

func (p *KafkaEventPublisher) PublishDecision(ctx context.Context, d *models.Decision) error {
	return p.producer.Publish(ctx, p.topic, []byte(d.Symbol), map[string]interface{}{
		"type":          "decision.made",
		"symbol":        d.Symbol,
		"action":        d.Action,
		"position_size": d.PositionSize,
		"confidence":    d.Confidence,
		"risk_level":    d.RiskLevel,
		"personality":   d.Personality,
		"decided_at":    d.DecidedAt.Unix(),
	})
}

func (p *KafkaEventPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
