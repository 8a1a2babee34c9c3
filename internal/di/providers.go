package di

import (
	"context"
	"fmt"
	"time"

	"titandash/internal/domain/repository"
	"titandash/internal/handler/api"
	internalrepo "titandash/internal/repository"
	"titandash/internal/service/binance"
	"titandash/internal/service/dashboard"
	"titandash/internal/service/marketdata"
	"titandash/internal/service/portfolio"
	"titandash/pkg/cache"
	pkgch "titandash/pkg/clickhouse"
	"titandash/pkg/config"
	"titandash/pkg/flags"
	xhttp "titandash/pkg/http"
	"titandash/pkg/http/middleware"
	pkgkafka "titandash/pkg/kafka"
	applogger "titandash/pkg/logger"
	"titandash/pkg/metrics"
	"titandash/pkg/server"
)

// ProvideLogger creates the application logger from config.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	format := "json"
	if cfg.Log.Pretty {
		format = "console"
	}
	return applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: format,
		Output: "stdout",
	})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideClickHouseClient creates a ClickHouse client and prepares the
// dashboard schema.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.InitSchema(ctx, internalrepo.SchemaStatements); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return client, nil
}

// ProvideDashboardStore creates the ClickHouse-backed dashboard store.
func ProvideDashboardStore(chClient *pkgch.Client, l *applogger.Logger) repository.DashboardStore {
	store := internalrepo.NewCHDashboardStore(chClient)
	store.SetLogger(l)
	return store
}

// ProvideCache creates a Redis cache when configured, otherwise an
// in-process memory cache.
func ProvideCache(cfg *config.Config, l *applogger.Logger) (cache.Service, error) {
	if !cfg.Redis.Enabled {
		return cache.NewMemoryCache(cache.WithMemoryMaxSize(1000)), nil
	}
	c, err := cache.NewRedisCache(
		cache.WithRedisHost(cfg.Redis.Host),
		cache.WithRedisPort(cfg.Redis.Port),
		cache.WithRedisPassword(cfg.Redis.Password),
		cache.WithRedisDB(cfg.Redis.DB),
		cache.WithRedisPrefix(cfg.Redis.Prefix),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	l.Info("redis cache connected", applogger.String("host", cfg.Redis.Host))
	return c, nil
}

// ProvidePublisher creates a Kafka price publisher, or nil when Kafka
// is disabled.
func ProvidePublisher(cfg *config.Config) (repository.Publisher, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithAsync(cfg.Kafka.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return internalrepo.NewKafkaPublisher(producer, cfg.Kafka.Topic), nil
}

// ProvideMarketSource creates the Binance REST market source.
func ProvideMarketSource(cfg *config.Config) repository.MarketSource {
	hc := xhttp.NewClient(cfg.Binance.BaseURL, flags.Default())
	return binance.NewClient(hc)
}

// ProvideBinanceStream creates the miniTicker WebSocket stream, or nil
// when streaming is disabled.
func ProvideBinanceStream(cfg *config.Config, l *applogger.Logger) *binance.Stream {
	if !cfg.Binance.StreamEnabled {
		return nil
	}
	return binance.NewStream(cfg.Binance.WebSocketURL, cfg.Binance.Symbols, cfg.Binance.ReconnectWait, l)
}

// ProvideMarketDataService creates the market data service.
func ProvideMarketDataService(
	source repository.MarketSource,
	store repository.DashboardStore,
	cacheSvc cache.Service,
	m repository.Metrics,
	l *applogger.Logger,
	pub repository.Publisher,
	cfg *config.Config,
) *marketdata.Service {
	opts := []marketdata.Option{}
	if pub != nil {
		opts = append(opts, marketdata.WithPublisher(pub))
	}
	if cfg.Cache.PriceTTL > 0 {
		opts = append(opts, marketdata.WithPriceTTL(cfg.Cache.PriceTTL))
	}
	return marketdata.New(source, store, cacheSvc, m, l, opts...)
}

// ProvidePortfolioService creates the portfolio service.
func ProvidePortfolioService(store repository.DashboardStore, l *applogger.Logger) *portfolio.Service {
	return portfolio.New(store, l)
}

// ProvideDashboardService creates the dashboard orchestration service.
func ProvideDashboardService(
	store repository.DashboardStore,
	pf *portfolio.Service,
	md *marketdata.Service,
	m repository.Metrics,
	l *applogger.Logger,
) *dashboard.Service {
	return dashboard.New(store, pf, md, m, l)
}

// ProvideHandler creates the echo handler, guarded by bearer auth when
// tokens are configured.
func ProvideHandler(
	l *applogger.Logger,
	dash *dashboard.Service,
	pf *portfolio.Service,
	md *marketdata.Service,
	cfg *config.Config,
) xhttp.Handler {
	opts := []api.HandlerOption{}
	if len(cfg.Auth.Tokens) > 0 {
		opts = append(opts, api.WithAuth(middleware.BearerAuth(cfg.Auth.Tokens)))
	}
	return api.NewDashboardEchoHandler(l, dash, pf, md, opts...)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	handler xhttp.Handler,
	md *marketdata.Service,
	stream *binance.Stream,
	chClient *pkgch.Client,
	cacheSvc cache.Service,
	pub repository.Publisher,
) *server.App {
	return server.New(cfg, l, handler, md, stream, chClient, cacheSvc, pub)
}
