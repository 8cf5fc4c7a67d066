//go:build wireinject
// +build wireinject

package di

import (
	"TrendCast/pkg/config"
	"TrendCast/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire generates the implementation in wire_gen.go.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideBarStore,
		ProvideCache,
		ProvideForecastPublisher,
		ProvideMarketStream,

		// Domain engines
		ProvideFeatureEngine,
		ProvideCheckpointStore,

		// Use cases
		ProvideTrainUseCase,
		ProvideForecastUseCase,
		ProvideBarsUseCase,
		ProvideBarCollector,

		// Transport
		ProvideHandler,
		ProvideApp,
	)
	return nil, nil
}
