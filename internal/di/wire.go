//go:build wireinject
// +build wireinject

package di

import (
	"titandash/pkg/config"
	"titandash/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideCache,
		ProvidePublisher,

		// Repositories
		ProvideDashboardStore,
		ProvideMarketSource,
		ProvideBinanceStream,

		// Services
		ProvideMarketDataService,
		ProvidePortfolioService,
		ProvideDashboardService,

		// HTTP surface
		ProvideHandler,
		ProvideApp,
	)
	return &server.App{}, nil
}
