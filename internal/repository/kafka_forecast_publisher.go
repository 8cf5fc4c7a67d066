package repository

import (
	"context"
	"fmt"

	"TrendCast/internal/domain/models"
	domrepo "TrendCast/internal/domain/repository"
	pkgkafka "TrendCast/pkg/kafka"
	applogger "TrendCast/pkg/logger"
)

// KafkaForecastPublisher emits forecast paths to a Kafka topic keyed by
// symbol so consumers see one partition per ticker.
type KafkaForecastPublisher struct {
	producer *pkgkafka.Producer
	topic    string
	l        *applogger.Logger
}

func NewKafkaForecastPublisher(producer *pkgkafka.Producer, topic string, l *applogger.Logger) domrepo.ForecastPublisher {
	return &KafkaForecastPublisher{producer: producer, topic: topic, l: l}
}

func (p *KafkaForecastPublisher) Publish(ctx context.Context, path *models.ForecastPath) error {
	if path == nil {
		return nil
	}
	if err := p.producer.Publish(ctx, p.topic, []byte(path.Symbol), path); err != nil {
		if p.l != nil {
			p.l.Error("forecast publish failed",
				applogger.String("symbol", path.Symbol),
				applogger.String("topic", p.topic),
				applogger.Error(err),
			)
		}
		return fmt.Errorf("publish forecast: %w", err)
	}
	return nil
}

func (p *KafkaForecastPublisher) Close() error {
	return p.producer.Close()
}

// NopForecastPublisher is used when Kafka is disabled.
type NopForecastPublisher struct{}

func (NopForecastPublisher) Publish(context.Context, *models.ForecastPath) error { return nil }
func (NopForecastPublisher) Close() error                                        { return nil }
