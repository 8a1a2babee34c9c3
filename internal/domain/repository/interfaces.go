package repository

import (
	"context"

	"titandash/internal/domain/models"
)

// MarketSource provides live ticker data for a symbol.
type MarketSource interface {
	Ticker24h(ctx context.Context, symbol string) (*models.PriceData, error)
}

// DashboardStore persists prices and answers the dashboard sub-queries.
type DashboardStore interface {
	Init(ctx context.Context) error // ensure tables, health checks

	StorePrice(ctx context.Context, symbol string, p models.PriceData) error
	LatestPrice(ctx context.Context, symbol string) (*models.PriceData, error)

	PortfolioBalance(ctx context.Context, userID string) (float64, error)
	PortfolioAssets(ctx context.Context, userID string) ([]models.PortfolioAsset, error)
	TradeStats(ctx context.Context, userID string) (*models.TradeStats, error)
	Transactions(ctx context.Context, userID string, limit int) ([]models.Transaction, error)

	ActiveTradesCount(ctx context.Context, userID string) (int, error)
	TodayTradesCount(ctx context.Context, userID string) (int, error)
	PendingOrdersCount(ctx context.Context, userID string) (int, error)
	Volume24h(ctx context.Context, userID string) (float64, error)

	ActiveSignals(ctx context.Context, limit int) ([]models.AISignal, error)
	ActiveStrategiesCount(ctx context.Context, userID string) (int, error)

	OpenExposure(ctx context.Context, userID string) (float64, error)
	MaxLoss30d(ctx context.Context, userID string) (float64, error)

	DailyPnLSeries(ctx context.Context, userID string, days int) ([]models.PnLPoint, error)
	DailyVolumeSeries(ctx context.Context, userID string, days int) ([]models.VolumePoint, error)

	Health(ctx context.Context) error // ping
	Close() error
}

// Publisher emits price ticks to downstream consumers.
type Publisher interface {
	PublishPrice(ctx context.Context, symbol string, p models.PriceData) error
	Close() error
}

// Metrics records operational measurements.
type Metrics interface {
	RecordUpstreamFetch(source, result string)
	RecordFallback(section string)
	RecordSubQueryError(slot string)
	RecordCacheLookup(kind, outcome string)
	RecordLastPrice(symbol string, price float64)
	RecordLatency(op string, seconds float64)
}
