//go:build wireinject
// +build wireinject

package di

import (
	"CoinPilot/pkg/config"
	"CoinPilot/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideCacheService,
		ProvideClickHouseClient,
		ProvideKafkaProducer,

		// Repositories
		ProvideReportStore,
		ProvideReportArchive,
		ProvideEventPublisher,

		// Collaborator analysts
		ProvideQuantAnalyst,
		ProvideSocialAnalyst,
		ProvideRiskAnalyst,
		ProvideSummarizer,

		// Use cases
		ProvideAggregator,
		ProvideDispatcher,
		ProvideResolver,
		ProvideRefresher,
		ProvideDecisionEngine,
		ProvideAdvisor,

		// Queue
		ProvideRefreshJob,
		ProvideQueuePublisher,
		ProvideQueueConsumer,

		// Transport
		ProvideHandler,
		ProvideApp,
	)
	return nil, nil
}
