package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain repository.Metrics using Prometheus.
type Recorder struct {
	forecasts    *prometheus.CounterVec
	epochLoss    *prometheus.GaugeVec
	barsIngested *prometheus.CounterVec
	errorsTotal  *prometheus.CounterVec
	latency      *prometheus.HistogramVec
}

// New creates a Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		forecasts: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trendcast_forecasts_total",
				Help: "Total number of forecasts produced",
			},
			[]string{"symbol", "kind"},
		),
		epochLoss: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "trendcast_training_epoch_loss",
				Help: "Most recent epoch loss by phase",
			},
			[]string{"symbol", "phase"},
		),
		barsIngested: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trendcast_bars_ingested_total",
				Help: "Total number of OHLCV bars written to storage",
			},
			[]string{"symbol"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trendcast_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "trendcast_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordForecast records a produced forecast (kind is "point" or "montecarlo").
func (r *Recorder) RecordForecast(symbol, kind string) {
	r.forecasts.WithLabelValues(symbol, kind).Inc()
}

// RecordTrainingEpoch records the latest train and validation losses.
func (r *Recorder) RecordTrainingEpoch(symbol string, trainLoss, valLoss float64) {
	r.epochLoss.WithLabelValues(symbol, "train").Set(trainLoss)
	r.epochLoss.WithLabelValues(symbol, "val").Set(valLoss)
}

// RecordBarsIngested records bars written to storage.
func (r *Recorder) RecordBarsIngested(symbol string, n int) {
	r.barsIngested.WithLabelValues(symbol).Add(float64(n))
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
