package di

import (
	"context"
	"fmt"
	"time"

	"CoinPilot/internal/domain/repository"
	domsvc "CoinPilot/internal/domain/service"
	"CoinPilot/internal/handler/api"
	"CoinPilot/internal/jobs"
	internalrepo "CoinPilot/internal/repository"
	"CoinPilot/internal/services/analysts"
	"CoinPilot/internal/usecase"
	pkgcache "CoinPilot/pkg/cache"
	pkgch "CoinPilot/pkg/clickhouse"
	"CoinPilot/pkg/config"
	xhttp "CoinPilot/pkg/http"
	pkgkafka "CoinPilot/pkg/kafka"
	applogger "CoinPilot/pkg/logger"
	"CoinPilot/pkg/metrics"
	"CoinPilot/pkg/queue"
	"CoinPilot/pkg/server"

	"github.com/redis/go-redis/v9"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	return applogger.New(&applogger.Config{
		Level:  cfg.Logger.Level,
		Format: cfg.Logger.Format,
		Output: cfg.Logger.Output,
	})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideCacheService creates the report store backend selected by config.
func ProvideCacheService(cfg *config.Config) (pkgcache.Service, error) {
	switch cfg.Cache.Backend {
	case "redis", "layered":
		rc, err := pkgcache.NewRedisCache(
			pkgcache.WithRedisHost(cfg.Redis.Host),
			pkgcache.WithRedisPort(cfg.Redis.Port),
			pkgcache.WithRedisPassword(cfg.Redis.Password),
			pkgcache.WithRedisDB(cfg.Redis.DB),
			pkgcache.WithRedisPrefix(cfg.Redis.Prefix),
		)
		if err != nil {
			return nil, fmt.Errorf("redis cache: %w", err)
		}
		if cfg.Cache.Backend == "layered" {
			return pkgcache.NewLayeredCache(rc), nil
		}
		return rc, nil
	default:
		return pkgcache.NewMemoryCache(), nil
	}
}

// redisClientOf extracts the Redis client from backends that carry one.
// The refresh queue rides on it; memory-backed deployments have none.
func redisClientOf(svc pkgcache.Service) *redis.Client {
	switch c := svc.(type) {
	case *pkgcache.RedisCache:
		return c.Client()
	case *pkgcache.LayeredCache:
		return c.Redis().Client()
	default:
		return nil
	}
}

// ProvideReportStore creates the cache-backed report store.
func ProvideReportStore(svc pkgcache.Service) repository.ReportStore {
	return internalrepo.NewCacheReportStore(svc)
}

// ProvideClickHouseClient creates a ClickHouse client, or nil when the
// archive is disabled.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if !cfg.ClickHouse.Enabled {
		return nil, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db := cfg.ClickHouse.Database
	if err := client.InitSchema(ctx, []string{
		"CREATE DATABASE IF NOT EXISTS " + db,
		`CREATE TABLE IF NOT EXISTS ` + db + `.analysis_reports (
			ts DateTime,
			symbol String,
			direction String,
			sentiment String,
			risk_level String,
			risk_off UInt8,
			quant_score Float64,
			social_score Float64,
			risk_score Float64,
			overall_score Float64,
			regime String,
			summary String,
			detail String
		) ENGINE=MergeTree ORDER BY (symbol, ts)`,
	}); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, nil
}

// ProvideReportArchive creates the ClickHouse archive, or nil when disabled.
func ProvideReportArchive(client *pkgch.Client, cfg *config.Config) repository.ReportArchive {
	if client == nil {
		return nil
	}
	return internalrepo.NewClickHouseReportArchive(client.DB(), cfg.ClickHouse.Database+".analysis_reports")
}

// ProvideKafkaProducer creates a Kafka producer, or nil when disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithTimeouts(cfg.Kafka.WriteTimeout, cfg.Kafka.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideEventPublisher creates the Kafka event publisher, or nil when
// Kafka is disabled.
func ProvideEventPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.EventPublisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaEventPublisher(producer, cfg.Kafka.Topic)
}

// ProvideQuantAnalyst creates the HTTP quant analyst adapter.
func ProvideQuantAnalyst(cfg *config.Config) domsvc.QuantAnalyst {
	return analysts.NewHTTPQuantAnalyst(cfg)
}

// ProvideSocialAnalyst creates the HTTP social analyst adapter.
func ProvideSocialAnalyst(cfg *config.Config) domsvc.SocialAnalyst {
	return analysts.NewHTTPSocialAnalyst(cfg)
}

// ProvideRiskAnalyst creates the HTTP risk analyst adapter.
func ProvideRiskAnalyst(cfg *config.Config) domsvc.RiskAnalyst {
	return analysts.NewHTTPRiskAnalyst(cfg)
}

// ProvideSummarizer creates the HTTP summarizer adapter.
func ProvideSummarizer(cfg *config.Config) domsvc.Summarizer {
	return analysts.NewHTTPSummarizer(cfg)
}

// ProvideAggregator creates the signal aggregator with the configured
// per-analyst timeout and regime weight table.
func ProvideAggregator(
	quant domsvc.QuantAnalyst,
	social domsvc.SocialAnalyst,
	risk domsvc.RiskAnalyst,
	m repository.Metrics,
	lgr *applogger.Logger,
	cfg *config.Config,
) *usecase.Aggregator {
	opts := []usecase.AggregatorOption{
		usecase.WithAnalystTimeout(cfg.Analysts.Timeout),
	}
	if len(cfg.Decision.Weights) > 0 {
		table := make(usecase.WeightTable, len(cfg.Decision.Weights))
		for regime, w := range cfg.Decision.Weights {
			table[regime] = usecase.RegimeWeights{Quant: w.Quant, Social: w.Social, Risk: w.Risk}
		}
		opts = append(opts, usecase.WithWeights(table))
	}
	return usecase.NewAggregator(quant, social, risk, m, lgr, opts...)
}

// ProvideDispatcher creates the single-flight dispatcher.
func ProvideDispatcher(agg *usecase.Aggregator, m repository.Metrics, lgr *applogger.Logger) *usecase.Dispatcher {
	return usecase.NewDispatcher(agg, m, lgr)
}

// ProvideResolver creates the on-demand resolver.
func ProvideResolver(
	store repository.ReportStore,
	dispatcher *usecase.Dispatcher,
	archive repository.ReportArchive,
	events repository.EventPublisher,
	m repository.Metrics,
	lgr *applogger.Logger,
	cfg *config.Config,
) *usecase.Resolver {
	return usecase.NewResolver(store, dispatcher, cfg.Refresh.HotList, cfg.Cache.TTL, m, lgr,
		usecase.WithArchive(archive),
		usecase.WithEvents(events),
	)
}

// ProvideRefresher creates the hot-list refresh scheduler.
func ProvideRefresher(
	store repository.ReportStore,
	dispatcher *usecase.Dispatcher,
	archive repository.ReportArchive,
	events repository.EventPublisher,
	m repository.Metrics,
	lgr *applogger.Logger,
	cfg *config.Config,
) *usecase.Refresher {
	return usecase.NewRefresher(store, dispatcher, cfg.Refresh.HotList, cfg.Refresh.Interval, cfg.Cache.TTL, m, lgr,
		usecase.WithRefresherArchive(archive),
		usecase.WithRefresherEvents(events),
	)
}

// ProvideDecisionEngine creates the pure decision engine.
func ProvideDecisionEngine() *usecase.DecisionEngine {
	return usecase.NewDecisionEngine()
}

// ProvideAdvisor creates the decision advisor.
func ProvideAdvisor(
	resolver *usecase.Resolver,
	engine *usecase.DecisionEngine,
	m repository.Metrics,
	lgr *applogger.Logger,
	summarizer domsvc.Summarizer,
	events repository.EventPublisher,
) *usecase.Advisor {
	return usecase.NewAdvisor(resolver, engine, m, lgr,
		usecase.WithSummarizer(summarizer),
		usecase.WithAdvisorEvents(events),
	)
}

// ProvideRefreshJob creates the queued refresh job.
func ProvideRefreshJob(resolver *usecase.Resolver, lgr *applogger.Logger) *jobs.RefreshJob {
	return jobs.NewRefreshJob(resolver, lgr)
}

// ProvideQueuePublisher creates the refresh queue publisher. The queue rides
// on Redis, so it is only available with the redis and layered cache
// backends; with the memory backend refreshes run inline in the handler.
func ProvideQueuePublisher(lgr *applogger.Logger, svc pkgcache.Service) queue.QueueService {
	client := redisClientOf(svc)
	if client == nil {
		return nil
	}
	return queue.NewRedisPublisher(lgr, client)
}

// ProvideQueueConsumer creates the refresh queue consumer, or nil without a
// Redis backend.
func ProvideQueueConsumer(
	lgr *applogger.Logger,
	svc pkgcache.Service,
	job *jobs.RefreshJob,
	cfg *config.Config,
) *queue.RedisQueue {
	client := redisClientOf(svc)
	if client == nil {
		return nil
	}
	return queue.NewRedisConsumer(lgr, &queue.QueueConfig{
		Workers:    cfg.Queue.Workers,
		RetryLimit: cfg.Queue.RetryLimit,
		RetryDelay: cfg.Queue.RetryDelay,
	}, client, []queue.Job{job})
}

// ProvideHandler creates the Echo HTTP handler.
func ProvideHandler(
	lgr *applogger.Logger,
	resolver *usecase.Resolver,
	advisor *usecase.Advisor,
	archive repository.ReportArchive,
	refreshQ queue.QueueService,
	cfg *config.Config,
) xhttp.Handler {
	return api.NewAnalysisEchoHandler(lgr, resolver, advisor, archive, refreshQ, cfg.Decision.DefaultPersonality)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	lgr *applogger.Logger,
	refresher *usecase.Refresher,
	consumer *queue.RedisQueue,
	handler xhttp.Handler,
	chClient *pkgch.Client,
	events repository.EventPublisher,
	svc pkgcache.Service,
) *server.App {
	return server.New(cfg, lgr, refresher, consumer, handler, chClient, events, svc)
}
