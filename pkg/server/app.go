package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"titandash/internal/domain/models"
	drepo "titandash/internal/domain/repository"
	"titandash/internal/service/binance"
	"titandash/internal/service/marketdata"
	"titandash/pkg/cache"
	pkgch "titandash/pkg/clickhouse"
	"titandash/pkg/config"
	xhttp "titandash/pkg/http"
	applogger "titandash/pkg/logger"
)

// App encapsulates the application lifecycle: HTTP server, the optional
// Binance stream feeding the price cache, and infrastructure teardown.
type App struct {
	cfg        *config.Config
	l          *applogger.Logger
	handler    xhttp.Handler
	market     *marketdata.Service
	stream     *binance.Stream
	chClient   *pkgch.Client
	cacheSvc   cache.Service
	publisher  drepo.Publisher
	httpServer *xhttp.Server
}

// New creates an App with all dependencies.
func New(
	cfg *config.Config,
	l *applogger.Logger,
	handler xhttp.Handler,
	market *marketdata.Service,
	stream *binance.Stream,
	chClient *pkgch.Client,
	cacheSvc cache.Service,
	publisher drepo.Publisher,
) *App {
	return &App{
		cfg:       cfg,
		l:         l,
		handler:   handler,
		market:    market,
		stream:    stream,
		chClient:  chClient,
		cacheSvc:  cacheSvc,
		publisher: publisher,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.httpServer = xhttp.NewServer(a.handler, a.l,
		xhttp.WithHost(a.cfg.Server.Host),
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)

	if a.stream != nil {
		go a.stream.Run(ctx, func(symbol string, p models.PriceData) {
			a.market.WarmTick(symbol, p)
		})
		a.l.Info("binance stream started", applogger.Strings("symbols", a.cfg.Binance.Symbols))
	}

	if err := a.httpServer.Start(); err != nil {
		a.l.Error("http server start error", applogger.Error(err))
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.l.Info("shutdown signal received")
	cancel()
	return a.shutdown(context.Background())
}

// shutdown stops the HTTP server first, then closes infrastructure.
func (a *App) shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.l.Error("http shutdown error", applogger.Error(err))
	}

	if a.stream != nil {
		if err := a.stream.Close(); err != nil {
			a.l.Warn("binance stream close error", applogger.Error(err))
		}
	}
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.l.Warn("kafka publisher close error", applogger.Error(err))
		}
	}
	if a.cacheSvc != nil {
		if err := a.cacheSvc.Close(); err != nil {
			a.l.Warn("cache close error", applogger.Error(err))
		}
	}
	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.l.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	a.l.Info("shutdown complete")
	return nil
}
