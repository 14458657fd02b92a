package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"CoinPilot/internal/domain/repository"
	"CoinPilot/internal/usecase"
	pkgcache "CoinPilot/pkg/cache"
	pkgch "CoinPilot/pkg/clickhouse"
	"CoinPilot/pkg/config"
	xhttp "CoinPilot/pkg/http"
	applogger "CoinPilot/pkg/logger"
	"CoinPilot/pkg/queue"
)

// App encapsulates the entire application lifecycle: the hot-list refresher,
// the refresh queue consumer and the HTTP server, with graceful shutdown of
// all infrastructure clients.
type App struct {
	cfg        *config.Config
	logger     *applogger.Logger
	refresher  *usecase.Refresher
	consumer   *queue.RedisQueue
	handler    xhttp.Handler
	httpServer *xhttp.Server
	chClient   *pkgch.Client
	events     repository.EventPublisher
	cacheSvc   pkgcache.Service
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	logger *applogger.Logger,
	refresher *usecase.Refresher,
	consumer *queue.RedisQueue,
	handler xhttp.Handler,
	chClient *pkgch.Client,
	events repository.EventPublisher,
	cacheSvc pkgcache.Service,
) *App {
	return &App{
		cfg:       cfg,
		logger:    logger,
		refresher: refresher,
		consumer:  consumer,
		handler:   handler,
		chClient:  chClient,
		events:    events,
		cacheSvc:  cacheSvc,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithMetrics(a.cfg.Metrics.Enabled, a.cfg.Metrics.Path),
	)

	// Background refresher keeps the hot-list warm.
	a.refresher.Start(ctx)

	// Queued refreshes, when a Redis backend is available.
	if a.consumer != nil {
		if err := a.consumer.Start(); err != nil {
			a.logger.Error("refresh queue start error", applogger.Error(err))
			return err
		}
		a.consumer.StartRetryProcessor()
		a.logger.Info("refresh queue consumer started")
	}

	if err := a.httpServer.Start(); err != nil {
		a.logger.Error("http server start error", applogger.Error(err))
		return err
	}
	a.logger.Info("server started",
		applogger.Int("port", a.cfg.Server.Port),
		applogger.Strings("hotlist", a.cfg.Refresh.HotList))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.logger.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	// Stop producing new work before tearing down the stores it writes to.
	a.refresher.Stop()

	if a.consumer != nil {
		if err := a.consumer.Stop(ctx); err != nil {
			a.logger.Warn("refresh queue stop error", applogger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.logger.Error("http shutdown error", applogger.Error(err))
	}

	if a.events != nil {
		if err := a.events.Close(); err != nil {
			a.logger.Warn("event publisher close error", applogger.Error(err))
		}
	}

	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.logger.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	if closer, ok := a.cacheSvc.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			a.logger.Warn("cache close error", applogger.Error(err))
		}
	}

	a.logger.Info("shutdown complete")
	return nil
}
