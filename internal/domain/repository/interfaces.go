package repository

import (
	"context"
	"time"

	"TrendCast/internal/domain/models"
)

// BarStore persists and reloads daily OHLCV bars.
type BarStore interface {
	Init(ctx context.Context) error // ensure tables, health checks
	SaveBars(ctx context.Context, bars []models.Bar) error
	GetBars(ctx context.Context, symbol string, from, to time.Time) ([]models.Bar, error)
	GetLatestBars(ctx context.Context, symbol string, n int) ([]models.Bar, error)
	Health(ctx context.Context) error
	Close() error
}

// MarketStream delivers live trades used to maintain the current day's bar.
type MarketStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context) error
	Read(ctx context.Context) (<-chan *models.StreamTrade, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

// ForecastPublisher emits completed forecast paths to downstream consumers.
type ForecastPublisher interface {
	Publish(ctx context.Context, path *models.ForecastPath) error
	Close() error
}

// Metrics records operational measurements.
type Metrics interface {
	RecordForecast(symbol, kind string)
	RecordTrainingEpoch(symbol string, trainLoss, valLoss float64)
	RecordBarsIngested(symbol string, n int)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
}
