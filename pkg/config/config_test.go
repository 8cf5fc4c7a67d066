package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
environment: test
`)
	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, c.Server.Port)
	assert.Equal(t, "info", c.Logging.Level)
	assert.Equal(t, 60, c.Training.SequenceLength)
	assert.Equal(t, 0.7, c.Training.TrainRatio)
	assert.Equal(t, 0.15, c.Training.ValRatio)
	assert.Equal(t, 0.15, c.Training.TestRatio)
	assert.Equal(t, "close", c.Training.TargetColumn)
	assert.Equal(t, 10, c.Forecast.Horizon)
	assert.Equal(t, 0.95, c.Forecast.Confidence)
	assert.Equal(t, 1000, c.Forecast.Simulations)
	assert.Equal(t, 5*time.Minute, c.Forecast.CacheTTL)
}

func TestLoadExplicitValuesWin(t *testing.T) {
	path := writeConfig(t, `
environment: production
server:
  port: 9090
training:
  sequence_length: 30
  train_ratio: 0.8
  val_ratio: 0.1
  test_ratio: 0.1
forecast:
  confidence_level: 0.99
`)
	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, c.Server.Port)
	assert.Equal(t, 30, c.Training.SequenceLength)
	assert.Equal(t, 0.8, c.Training.TrainRatio)
	assert.Equal(t, 0.99, c.Forecast.Confidence)
}

func TestValidateRejectsBadRatios(t *testing.T) {
	path := writeConfig(t, `
environment: test
training:
  train_ratio: 0.8
  val_ratio: 0.3
  test_ratio: 0.1
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ratios must sum")
}

func TestValidateRejectsUnknownConfidence(t *testing.T) {
	path := writeConfig(t, `
environment: test
forecast:
  confidence_level: 0.9
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "confidence_level")
}

func TestValidateRequiresEnvironment(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 8080
`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidateStreamNeedsAPIKey(t *testing.T) {
	path := writeConfig(t, `
environment: test
stream:
  enabled: true
  url: wss://example.com
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api_key")
}

func TestLoadWithEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
environment: test
clickhouse:
  host: localhost
`)
	t.Setenv("CLICKHOUSE_HOST", "ch.internal")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")

	c, err := LoadWithEnv(path)
	require.NoError(t, err)
	assert.Equal(t, "ch.internal", c.ClickHouse.Host)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, c.Kafka.Brokers)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
