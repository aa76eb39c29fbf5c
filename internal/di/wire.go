//go:build wireinject
// +build wireinject

package di

import (
	"StockPricePrediction/pkg/config"
	"StockPricePrediction/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, func(), error) {
	wire.Build(
		ProvideLogger,

		// Metrics
		ProvideRegistry,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideCache,

		// Repositories
		ProvideSeriesSource,
		ProvideReportSink,

		// Models and use cases
		ProvideModelRegistry,
		ProvideRenderer,
		ProvideTrainer,
		ProvidePredictor,
		ProvideForecastUseCase,

		// HTTP
		ProvideLimiter,
		ProvideForecastHandler,
		ProvideHealthChecks,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil, nil
}
