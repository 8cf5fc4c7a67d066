package usecase

import (
	"context"
	"sync"
	"time"

	"TrendCast/internal/domain/models"
	domrepo "TrendCast/internal/domain/repository"
	applogger "TrendCast/pkg/logger"
)

// BarCollector folds live stream trades into the current day's OHLCV bar
// per symbol and periodically upserts the open bars to storage. Storage
// uses a replacing engine, so flushing the same day repeatedly is safe.
type BarCollector struct {
	stream        domrepo.MarketStream
	store         domrepo.BarStore
	metrics       domrepo.Metrics
	log           *applogger.Logger
	flushInterval time.Duration

	mu   sync.Mutex
	open map[string]*models.Bar // symbol -> bar for its current day
}

func NewBarCollector(stream domrepo.MarketStream, store domrepo.BarStore, metrics domrepo.Metrics, log *applogger.Logger, flushInterval time.Duration) *BarCollector {
	if flushInterval <= 0 {
		flushInterval = 30 * time.Second
	}
	return &BarCollector{
		stream:        stream,
		store:         store,
		metrics:       metrics,
		log:           log,
		flushInterval: flushInterval,
		open:          make(map[string]*models.Bar),
	}
}

// Run connects, subscribes and consumes trades until ctx is cancelled.
// Read errors trigger reconnects with the stream's own backoff.
func (c *BarCollector) Run(ctx context.Context) error {
	if err := c.stream.Connect(ctx); err != nil {
		return err
	}
	if err := c.stream.Subscribe(ctx); err != nil {
		return err
	}

	ticker := time.NewTicker(c.flushInterval)
	defer ticker.Stop()

	trades, errs := c.stream.Read(ctx)
	for {
		select {
		case <-ctx.Done():
			c.flush(context.WithoutCancel(ctx))
			return ctx.Err()
		case <-ticker.C:
			c.flush(ctx)
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			if c.metrics != nil {
				c.metrics.RecordError("stream_read")
			}
			if c.log != nil {
				c.log.Warn("stream error, reconnecting", applogger.Error(err))
			}
			if rerr := c.stream.Reconnect(ctx); rerr != nil {
				return rerr
			}
			trades, errs = c.stream.Read(ctx)
		case t, ok := <-trades:
			if !ok {
				trades = nil
				continue
			}
			c.fold(t)
		}
	}
}

// fold updates the symbol's open bar with one trade. A trade on a new
// calendar day closes the previous bar into the flush set implicitly,
// since open bars are keyed by symbol and replaced on day rollover.
func (c *BarCollector) fold(t *models.StreamTrade) {
	if t == nil || t.Symbol == "" || t.Price <= 0 {
		return
	}
	day := t.At.UTC().Truncate(24 * time.Hour)

	c.mu.Lock()
	defer c.mu.Unlock()

	b, ok := c.open[t.Symbol]
	if !ok || !b.Date.Equal(day) {
		c.open[t.Symbol] = &models.Bar{
			Symbol: t.Symbol,
			Date:   day,
			Open:   t.Price,
			High:   t.Price,
			Low:    t.Price,
			Close:  t.Price,
			Volume: t.Volume,
		}
		return
	}
	if t.Price > b.High {
		b.High = t.Price
	}
	if t.Price < b.Low {
		b.Low = t.Price
	}
	b.Close = t.Price
	b.Volume += t.Volume
}

func (c *BarCollector) flush(ctx context.Context) {
	c.mu.Lock()
	bars := make([]models.Bar, 0, len(c.open))
	for _, b := range c.open {
		bars = append(bars, *b)
	}
	c.mu.Unlock()

	if len(bars) == 0 {
		return
	}
	if err := c.store.SaveBars(ctx, bars); err != nil {
		if c.metrics != nil {
			c.metrics.RecordError("bar_flush")
		}
		if c.log != nil {
			c.log.Error("bar flush failed", applogger.Error(err))
		}
		return
	}
	if c.metrics != nil {
		for _, b := range bars {
			c.metrics.RecordBarsIngested(b.Symbol, 1)
		}
	}
}
