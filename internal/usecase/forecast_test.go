package usecase

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TrendCast/internal/domain/models"
)

// recordingCache serves one canned payload and remembers the keys asked for.
type recordingCache struct {
	keys    []string
	payload []byte
}

func (c *recordingCache) GetBytes(key string) ([]byte, bool, error) {
	c.keys = append(c.keys, key)
	return c.payload, c.payload != nil, nil
}

func (c *recordingCache) SetBytes(key string, value []byte, ttl time.Duration) error {
	return nil
}

func TestMonteCarloFallsBackToConfiguredEnsembleKnobs(t *testing.T) {
	canned, err := json.Marshal(&models.MonteCarloResult{Symbol: "AAPL", Horizon: 5})
	require.NoError(t, err)
	cache := &recordingCache{payload: canned}

	uc := NewForecastUseCase(nil, nil, nil, cache, nil, ForecastConfig{
		Simulations: 750,
		NoiseScale:  0.03,
	}, nil, nil)

	req := &models.MonteCarloRequest{Symbol: "AAPL", Horizon: 5}
	res, err := uc.MonteCarlo(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "AAPL", res.Symbol)

	// zero request knobs take the configured values before the cache key
	// is built
	require.Len(t, cache.keys, 1)
	assert.Equal(t, "forecast:mc:AAPL:5:750:0.03", cache.keys[0])
	assert.Equal(t, 750, req.Simulations)
	assert.Equal(t, 0.03, req.NoiseScale)
}

func TestMonteCarloKeepsExplicitEnsembleKnobs(t *testing.T) {
	canned, _ := json.Marshal(&models.MonteCarloResult{Symbol: "AAPL"})
	cache := &recordingCache{payload: canned}

	uc := NewForecastUseCase(nil, nil, nil, cache, nil, ForecastConfig{
		Simulations: 750,
		NoiseScale:  0.03,
	}, nil, nil)

	_, err := uc.MonteCarlo(context.Background(), &models.MonteCarloRequest{
		Symbol: "AAPL", Horizon: 5, Simulations: 50, NoiseScale: 0.2,
	})
	require.NoError(t, err)
	require.Len(t, cache.keys, 1)
	assert.Equal(t, "forecast:mc:AAPL:5:50:0.2", cache.keys[0])
}

func TestNextTradingDaySkipsWeekends(t *testing.T) {
	friday := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), nextTradingDay(friday))

	tuesday := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC), nextTradingDay(tuesday))
}
