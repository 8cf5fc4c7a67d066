package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TrendCast/internal/domain/models"
)

type captureBarStore struct {
	saved [][]models.Bar
	err   error
}

func (s *captureBarStore) Init(ctx context.Context) error { return nil }

func (s *captureBarStore) SaveBars(ctx context.Context, bars []models.Bar) error {
	if s.err != nil {
		return s.err
	}
	s.saved = append(s.saved, bars)
	return nil
}

func (s *captureBarStore) GetBars(ctx context.Context, symbol string, from, to time.Time) ([]models.Bar, error) {
	return nil, nil
}

func (s *captureBarStore) GetLatestBars(ctx context.Context, symbol string, n int) ([]models.Bar, error) {
	return nil, nil
}

func (s *captureBarStore) Health(ctx context.Context) error { return nil }
func (s *captureBarStore) Close() error                     { return nil }

func trade(symbol string, price, volume float64, at time.Time) *models.StreamTrade {
	return &models.StreamTrade{Symbol: symbol, Price: price, Volume: volume, At: at}
}

func TestFoldBuildsDailyOHLCV(t *testing.T) {
	c := NewBarCollector(nil, &captureBarStore{}, nil, nil, time.Minute)
	day := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)

	c.fold(trade("AAPL", 100, 10, day.Add(10*time.Hour)))
	c.fold(trade("AAPL", 105, 5, day.Add(11*time.Hour)))
	c.fold(trade("AAPL", 98, 7, day.Add(12*time.Hour)))
	c.fold(trade("AAPL", 101, 3, day.Add(13*time.Hour)))

	b := c.open["AAPL"]
	require.NotNil(t, b)
	assert.Equal(t, day, b.Date)
	assert.Equal(t, 100.0, b.Open)
	assert.Equal(t, 105.0, b.High)
	assert.Equal(t, 98.0, b.Low)
	assert.Equal(t, 101.0, b.Close)
	assert.Equal(t, 25.0, b.Volume)
}

func TestFoldStartsNewBarOnDayRollover(t *testing.T) {
	c := NewBarCollector(nil, &captureBarStore{}, nil, nil, time.Minute)
	day1 := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)

	c.fold(trade("AAPL", 100, 10, day1.Add(15*time.Hour)))
	c.fold(trade("AAPL", 110, 4, day2.Add(9*time.Hour)))

	b := c.open["AAPL"]
	require.NotNil(t, b)
	assert.Equal(t, day2, b.Date)
	assert.Equal(t, 110.0, b.Open)
	assert.Equal(t, 4.0, b.Volume)
}

func TestFoldKeepsSymbolsSeparate(t *testing.T) {
	c := NewBarCollector(nil, &captureBarStore{}, nil, nil, time.Minute)
	at := time.Date(2024, 3, 4, 14, 30, 0, 0, time.UTC)

	c.fold(trade("AAPL", 100, 1, at))
	c.fold(trade("MSFT", 400, 2, at))

	require.Len(t, c.open, 2)
	assert.Equal(t, 100.0, c.open["AAPL"].Close)
	assert.Equal(t, 400.0, c.open["MSFT"].Close)
}

func TestFoldIgnoresInvalidTrades(t *testing.T) {
	c := NewBarCollector(nil, &captureBarStore{}, nil, nil, time.Minute)
	at := time.Now()

	c.fold(nil)
	c.fold(trade("", 100, 1, at))
	c.fold(trade("AAPL", 0, 1, at))
	c.fold(trade("AAPL", -5, 1, at))

	assert.Empty(t, c.open)
}

func TestFlushSavesOpenBars(t *testing.T) {
	store := &captureBarStore{}
	c := NewBarCollector(nil, store, nil, nil, time.Minute)
	at := time.Date(2024, 3, 4, 14, 30, 0, 0, time.UTC)

	c.flush(context.Background())
	assert.Empty(t, store.saved, "nothing to flush yet")

	c.fold(trade("AAPL", 100, 1, at))
	c.flush(context.Background())

	require.Len(t, store.saved, 1)
	require.Len(t, store.saved[0], 1)
	assert.Equal(t, "AAPL", store.saved[0][0].Symbol)

	// open bars stay open; the next flush upserts the same day again
	c.flush(context.Background())
	require.Len(t, store.saved, 2)
}
