package di

import (
	"context"
	"fmt"
	"time"

	"TrendCast/internal/domain/repository"
	"TrendCast/internal/features"
	"TrendCast/internal/handler/api"
	internalrepo "TrendCast/internal/repository"
	icache "TrendCast/internal/service/cache"
	"TrendCast/internal/service/stream"
	"TrendCast/internal/usecase"
	pkgch "TrendCast/pkg/clickhouse"
	"TrendCast/pkg/config"
	pkgkafka "TrendCast/pkg/kafka"
	applogger "TrendCast/pkg/logger"
	"TrendCast/pkg/metrics"
	"TrendCast/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	return applogger.New(&applogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
}

// ProvideClickHouseClient creates a ClickHouse client.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithAddress(cfg.ClickHouse.Host, cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithPool(10, 5),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}
	return client, nil
}

// ProvideBarStore creates the bar store and ensures its schema.
func ProvideBarStore(ch *pkgch.Client, l *applogger.Logger) (repository.BarStore, error) {
	store := internalrepo.NewCHBarStore(ch, l)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.Init(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

// ProvideCache returns Redis when configured, else an in-process TTL cache.
func ProvideCache(cfg *config.Config) icache.BytesCache {
	if cfg.Redis.Enabled {
		return icache.NewRedisCache(icache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	return icache.NewTTLCache()
}

// ProvideForecastPublisher creates the Kafka publisher, or a no-op when
// Kafka is disabled.
func ProvideForecastPublisher(cfg *config.Config, l *applogger.Logger) (repository.ForecastPublisher, error) {
	if !cfg.Kafka.Enabled {
		return internalrepo.NopForecastPublisher{}, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatching(cfg.Kafka.Producer.BatchSize, cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return internalrepo.NewKafkaForecastPublisher(producer, cfg.Kafka.Topic, l), nil
}

// ProvideMetrics creates the Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideFeatureEngine creates the indicator engine from config.
func ProvideFeatureEngine(cfg *config.Config) *features.Engine {
	return features.NewEngine(features.Config{
		SMAPeriods:        cfg.Features.SMAPeriods,
		EMAPeriods:        cfg.Features.EMAPeriods,
		MACDFast:          cfg.Features.MACDFast,
		MACDSlow:          cfg.Features.MACDSlow,
		MACDSignal:        cfg.Features.MACDSignal,
		ADXPeriod:         cfg.Features.ADXPeriod,
		RSIPeriod:         cfg.Features.RSIPeriod,
		StochKPeriod:      cfg.Features.StochKPeriod,
		StochDPeriod:      cfg.Features.StochDPeriod,
		WilliamsPeriod:    cfg.Features.WilliamsPeriod,
		MFIPeriod:         cfg.Features.MFIPeriod,
		BollingerPeriod:   cfg.Features.BollingerPeriod,
		BollingerK:        cfg.Features.BollingerK,
		ATRPeriod:         cfg.Features.ATRPeriod,
		ReturnPeriods:     cfg.Features.ReturnPeriods,
		MomentumPeriods:   cfg.Features.MomentumPeriods,
		VolatilityWindows: cfg.Features.VolatilityWindows,
	})
}

// ProvideCheckpointStore creates the file-backed checkpoint store.
func ProvideCheckpointStore(cfg *config.Config, l *applogger.Logger) *internalrepo.FileCheckpointStore {
	return internalrepo.NewFileCheckpointStore(cfg.Training.CheckpointDir, "", l)
}

// ProvideTrainUseCase creates the training pipeline.
func ProvideTrainUseCase(
	store repository.BarStore,
	fe *features.Engine,
	ckpts *internalrepo.FileCheckpointStore,
	m repository.Metrics,
	l *applogger.Logger,
	cfg *config.Config,
) *usecase.TrainUseCase {
	return usecase.NewTrainUseCase(store, fe, ckpts, usecase.TrainConfig{
		SequenceLength: cfg.Training.SequenceLength,
		TrainRatio:     cfg.Training.TrainRatio,
		ValRatio:       cfg.Training.ValRatio,
		TestRatio:      cfg.Training.TestRatio,
		BatchSize:      cfg.Training.BatchSize,
		LearningRate:   cfg.Training.LearningRate,
		Momentum:       cfg.Training.Momentum,
		Epochs:         cfg.Training.Epochs,
		Patience:       cfg.Training.Patience,
		MinDelta:       cfg.Training.MinDelta,
		Seed:           cfg.Training.Seed,
		MinHistory:     cfg.Training.MinHistory,
		CheckpointDir:  cfg.Training.CheckpointDir,
		TargetColumn:   cfg.Training.TargetColumn,
	}, m, l)
}

// ProvideForecastUseCase creates the inference pipeline.
func ProvideForecastUseCase(
	store repository.BarStore,
	fe *features.Engine,
	ckpts *internalrepo.FileCheckpointStore,
	c icache.BytesCache,
	pub repository.ForecastPublisher,
	m repository.Metrics,
	l *applogger.Logger,
	cfg *config.Config,
) *usecase.ForecastUseCase {
	return usecase.NewForecastUseCase(store, fe, ckpts, c, pub, usecase.ForecastConfig{
		CheckpointDir: cfg.Training.CheckpointDir,
		LearningRate:  cfg.Training.LearningRate,
		Momentum:      cfg.Training.Momentum,
		Seed:          cfg.Forecast.Seed,
		NoiseScale:    cfg.Forecast.NoiseScale,
		Simulations:   cfg.Forecast.Simulations,
		CacheTTL:      cfg.Forecast.CacheTTL,
		MinHistory:    cfg.Training.MinHistory,
	}, m, l)
}

// ProvideBarsUseCase creates the bar history use case.
func ProvideBarsUseCase(store repository.BarStore) *usecase.BarsUseCase {
	return usecase.NewBarsUseCase(store)
}

// ProvideMarketStream creates the live trade stream, or nil when disabled.
func ProvideMarketStream(cfg *config.Config, l *applogger.Logger) repository.MarketStream {
	if !cfg.Stream.Enabled {
		return nil
	}
	return stream.New(
		cfg.Stream.APIKey,
		cfg.Stream.URL,
		cfg.Stream.Symbols,
		cfg.Stream.ReconnectDelay,
		cfg.Stream.PingInterval,
		l,
	)
}

// ProvideBarCollector creates the collector, or nil when streaming is off.
func ProvideBarCollector(
	ms repository.MarketStream,
	store repository.BarStore,
	m repository.Metrics,
	l *applogger.Logger,
) *usecase.BarCollector {
	if ms == nil {
		return nil
	}
	return usecase.NewBarCollector(ms, store, m, l, 30*time.Second)
}

// ProvideHandler creates the HTTP API handler.
func ProvideHandler(
	l *applogger.Logger,
	fuc *usecase.ForecastUseCase,
	tuc *usecase.TrainUseCase,
	buc *usecase.BarsUseCase,
) *api.ForecastHandler {
	return api.NewForecastHandler(l, fuc, tuc, buc)
}

// ProvideApp assembles the application.
func ProvideApp(
	cfg *config.Config,
	h *api.ForecastHandler,
	collector *usecase.BarCollector,
	pub repository.ForecastPublisher,
	ch *pkgch.Client,
	l *applogger.Logger,
) *server.App {
	return server.New(cfg, h, collector, pub, ch, l)
}
