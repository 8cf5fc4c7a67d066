package config

import (
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"logging"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	ClickHouse struct {
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port"`
		Database         string        `yaml:"database"`
		User             string        `yaml:"user"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		AsyncInsert      bool          `yaml:"async_insert"`
		WaitForAsync     bool          `yaml:"wait_for_async_insert"`
		DialTimeout      time.Duration `yaml:"dial_timeout"`
		ReadTimeout      time.Duration `yaml:"read_timeout"`
		WriteTimeout     time.Duration `yaml:"write_timeout"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time"`
	} `yaml:"clickhouse"`
	Kafka struct {
		Enabled      bool     `yaml:"enabled"`
		Brokers      []string `yaml:"brokers"`
		Topic        string   `yaml:"topic"`
		RequiredAcks int      `yaml:"required_acks"`
		Compression  string   `yaml:"compression"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts"`
			Linger       time.Duration `yaml:"linger"`
			BatchBytes   int           `yaml:"batch_bytes"`
			BatchSize    int           `yaml:"batch_size"`
			WriteTimeout time.Duration `yaml:"write_timeout"`
			ReadTimeout  time.Duration `yaml:"read_timeout"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
	} `yaml:"kafka"`
	Redis struct {
		Enabled  bool   `yaml:"enabled"`
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Stream struct {
		Enabled        bool          `yaml:"enabled"`
		URL            string        `yaml:"url"`
		APIKey         string        `yaml:"api_key"`
		Symbols        []string      `yaml:"symbols"`
		ReconnectDelay time.Duration `yaml:"reconnect_delay"`
		PingInterval   time.Duration `yaml:"ping_interval"`
	} `yaml:"stream"`
	Features struct {
		SMAPeriods        []int   `yaml:"sma_periods"`
		EMAPeriods        []int   `yaml:"ema_periods"`
		MACDFast          int     `yaml:"macd_fast"`
		MACDSlow          int     `yaml:"macd_slow"`
		MACDSignal        int     `yaml:"macd_signal"`
		ADXPeriod         int     `yaml:"adx_period"`
		RSIPeriod         int     `yaml:"rsi_period"`
		StochKPeriod      int     `yaml:"stoch_k_period"`
		StochDPeriod      int     `yaml:"stoch_d_period"`
		WilliamsPeriod    int     `yaml:"williams_period"`
		MFIPeriod         int     `yaml:"mfi_period"`
		BollingerPeriod   int     `yaml:"bollinger_period"`
		BollingerK        float64 `yaml:"bollinger_k"`
		ATRPeriod         int     `yaml:"atr_period"`
		ReturnPeriods     []int   `yaml:"return_periods"`
		MomentumPeriods   []int   `yaml:"momentum_periods"`
		VolatilityWindows []int   `yaml:"volatility_windows"`
	} `yaml:"features"`
	Training struct {
		SequenceLength int     `yaml:"sequence_length"`
		TrainRatio     float64 `yaml:"train_ratio"`
		ValRatio       float64 `yaml:"val_ratio"`
		TestRatio      float64 `yaml:"test_ratio"`
		BatchSize      int     `yaml:"batch_size"`
		LearningRate   float64 `yaml:"learning_rate"`
		Momentum       float64 `yaml:"momentum"`
		Epochs         int     `yaml:"epochs"`
		Patience       int     `yaml:"patience"`
		MinDelta       float64 `yaml:"min_delta"`
		Seed           int64   `yaml:"seed"`
		MinHistory     int     `yaml:"min_history"`
		CheckpointDir  string  `yaml:"checkpoint_dir"`
		TargetColumn   string  `yaml:"target_column"`
	} `yaml:"training"`
	Forecast struct {
		Horizon     int           `yaml:"horizon"`
		Confidence  float64       `yaml:"confidence_level"`
		Simulations int           `yaml:"simulations"`
		NoiseScale  float64       `yaml:"noise_scale"`
		Seed        int64         `yaml:"seed"`
		CacheTTL    time.Duration `yaml:"cache_ttl"`
	} `yaml:"forecast"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		c.Kafka.Topic = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("STREAM_API_KEY"); v != "" {
		c.Stream.APIKey = v
	}
	if v := os.Getenv("SYMBOLS"); v != "" {
		c.Stream.Symbols = strings.Split(v, ",")
	}
	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 10 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 10 * time.Second
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
	if c.Training.SequenceLength == 0 {
		c.Training.SequenceLength = 60
	}
	if c.Training.TrainRatio == 0 && c.Training.ValRatio == 0 && c.Training.TestRatio == 0 {
		c.Training.TrainRatio, c.Training.ValRatio, c.Training.TestRatio = 0.7, 0.15, 0.15
	}
	if c.Training.BatchSize == 0 {
		c.Training.BatchSize = 64
	}
	if c.Training.LearningRate == 0 {
		c.Training.LearningRate = 0.001
	}
	if c.Training.Momentum == 0 {
		c.Training.Momentum = 0.9
	}
	if c.Training.Epochs == 0 {
		c.Training.Epochs = 100
	}
	if c.Training.Patience == 0 {
		c.Training.Patience = 10
	}
	if c.Training.MinDelta == 0 {
		c.Training.MinDelta = 1e-4
	}
	if c.Training.MinHistory == 0 {
		c.Training.MinHistory = 100
	}
	if c.Training.CheckpointDir == "" {
		c.Training.CheckpointDir = "checkpoints"
	}
	if c.Training.TargetColumn == "" {
		c.Training.TargetColumn = "close"
	}
	if c.Forecast.Horizon == 0 {
		c.Forecast.Horizon = 10
	}
	if c.Forecast.Confidence == 0 {
		c.Forecast.Confidence = 0.95
	}
	if c.Forecast.Simulations == 0 {
		c.Forecast.Simulations = 1000
	}
	if c.Forecast.NoiseScale == 0 {
		c.Forecast.NoiseScale = 0.01
	}
	if c.Forecast.CacheTTL == 0 {
		c.Forecast.CacheTTL = 5 * time.Minute
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	sum := c.Training.TrainRatio + c.Training.ValRatio + c.Training.TestRatio
	if math.Abs(sum-1.0) > 1e-6 {
		return fmt.Errorf("training split ratios must sum to 1.0, got %.6f", sum)
	}
	if c.Forecast.Confidence != 0.95 && c.Forecast.Confidence != 0.99 {
		return fmt.Errorf("forecast.confidence_level must be 0.95 or 0.99, got %v", c.Forecast.Confidence)
	}
	if c.Training.SequenceLength <= 0 {
		return fmt.Errorf("training.sequence_length must be positive")
	}
	if c.Stream.Enabled && c.Stream.APIKey == "" {
		return fmt.Errorf("stream.api_key is required when stream is enabled")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	return nil
}
