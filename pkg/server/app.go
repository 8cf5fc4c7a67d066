package server

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"TrendCast/internal/domain/repository"
	"TrendCast/internal/usecase"
	pkgch "TrendCast/pkg/clickhouse"
	"TrendCast/pkg/config"
	xhttp "TrendCast/pkg/http"
	applogger "TrendCast/pkg/logger"
)

// App encapsulates the application lifecycle: HTTP API, optional live bar
// collector, and infrastructure clients.
type App struct {
	cfg        *config.Config
	handler    xhttp.Handler
	collector  *usecase.BarCollector
	publisher  repository.ForecastPublisher
	chClient   *pkgch.Client
	log        *applogger.Logger
	httpServer *xhttp.Server
}

// New creates an App. collector may be nil when streaming is disabled.
func New(
	cfg *config.Config,
	handler xhttp.Handler,
	collector *usecase.BarCollector,
	publisher repository.ForecastPublisher,
	chClient *pkgch.Client,
	log *applogger.Logger,
) *App {
	return &App{
		cfg:       cfg,
		handler:   handler,
		collector: collector,
		publisher: publisher,
		chClient:  chClient,
		log:       log,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithLogger(a.log),
	)

	if a.collector != nil {
		go func() {
			if err := a.collector.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				a.log.Error("collector error", applogger.Error(err))
			}
		}()
		a.log.Info("bar collector started", applogger.Strings("symbols", a.cfg.Stream.Symbols))
	}

	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}
	a.log.Info("http server started", applogger.Int("port", a.cfg.Server.Port))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	cancel()
	return a.shutdown()
}

// shutdown gracefully stops all services.
func (a *App) shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}

	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.log.Warn("publisher close error", applogger.Error(err))
		}
	}
	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.log.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	a.log.Info("shutdown complete")
	return nil
}
