package features

import (
	"fmt"
	"sync"

	"TrendCast/internal/domain/models"
)

// Config parameterizes the feature engine. Zero values fall back to the
// documented defaults.
type Config struct {
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
}

// DefaultConfig returns the standard parameterization.
func DefaultConfig() Config {
	return Config{
		SMAPeriods:        []int{5, 10, 20, 50, 100, 200},
		EMAPeriods:        []int{5, 10, 20, 50, 100, 200},
		MACDFast:          12,
		MACDSlow:          26,
		MACDSignal:        9,
		ADXPeriod:         14,
		RSIPeriod:         14,
		StochKPeriod:      14,
		StochDPeriod:      3,
		WilliamsPeriod:    14,
		MFIPeriod:         14,
		BollingerPeriod:   20,
		BollingerK:        2,
		ATRPeriod:         14,
		ReturnPeriods:     []int{1, 5, 10, 20},
		MomentumPeriods:   []int{5, 10, 20},
		VolatilityWindows: []int{5, 10, 20, 30},
	}
}

func (c *Config) applyDefaults() {
	d := DefaultConfig()
	if len(c.SMAPeriods) == 0 {
		c.SMAPeriods = d.SMAPeriods
	}
	if len(c.EMAPeriods) == 0 {
		c.EMAPeriods = d.EMAPeriods
	}
	if c.MACDFast == 0 {
		c.MACDFast = d.MACDFast
	}
	if c.MACDSlow == 0 {
		c.MACDSlow = d.MACDSlow
	}
	if c.MACDSignal == 0 {
		c.MACDSignal = d.MACDSignal
	}
	if c.ADXPeriod == 0 {
		c.ADXPeriod = d.ADXPeriod
	}
	if c.RSIPeriod == 0 {
		c.RSIPeriod = d.RSIPeriod
	}
	if c.StochKPeriod == 0 {
		c.StochKPeriod = d.StochKPeriod
	}
	if c.StochDPeriod == 0 {
		c.StochDPeriod = d.StochDPeriod
	}
	if c.WilliamsPeriod == 0 {
		c.WilliamsPeriod = d.WilliamsPeriod
	}
	if c.MFIPeriod == 0 {
		c.MFIPeriod = d.MFIPeriod
	}
	if c.BollingerPeriod == 0 {
		c.BollingerPeriod = d.BollingerPeriod
	}
	if c.BollingerK == 0 {
		c.BollingerK = d.BollingerK
	}
	if c.ATRPeriod == 0 {
		c.ATRPeriod = d.ATRPeriod
	}
	if len(c.ReturnPeriods) == 0 {
		c.ReturnPeriods = d.ReturnPeriods
	}
	if len(c.MomentumPeriods) == 0 {
		c.MomentumPeriods = d.MomentumPeriods
	}
	if len(c.VolatilityWindows) == 0 {
		c.VolatilityWindows = d.VolatilityWindows
	}
}

type namedSeries struct {
	name string
	vals []float64
}

// Engine is the stateless OHLCV -> OHLCV+indicators transform.
type Engine struct {
	cfg Config
}

// NewEngine creates a feature engine with the given parameterization.
func NewEngine(cfg Config) *Engine {
	cfg.applyDefaults()
	return &Engine{cfg: cfg}
}

// Compute derives the full indicator panel from a bar series. Indicator
// families run concurrently; each writes a disjoint set of columns, and
// output column order is fixed regardless of completion order.
func (e *Engine) Compute(bars []models.Bar) (*FeatureTable, error) {
	if len(bars) == 0 {
		return nil, ErrNoBars
	}
	if err := models.ValidateBars(bars); err != nil {
		return nil, fmt.Errorf("validate bars: %w", err)
	}

	t := FromBars(bars)
	high, _ := t.Column("high")
	low, _ := t.Column("low")
	closes, _ := t.Column("close")
	volume, _ := t.Column("volume")
	cfg := e.cfg

	families := []func() []namedSeries{
		func() []namedSeries {
			out := make([]namedSeries, 0, len(cfg.SMAPeriods)+len(cfg.EMAPeriods))
			for _, p := range cfg.SMAPeriods {
				out = append(out, namedSeries{fmt.Sprintf("sma_%d", p), SMA(closes, p)})
			}
			for _, p := range cfg.EMAPeriods {
				out = append(out, namedSeries{fmt.Sprintf("ema_%d", p), EMA(closes, p)})
			}
			return out
		},
		func() []namedSeries {
			macd, sig, hist := MACD(closes, cfg.MACDFast, cfg.MACDSlow, cfg.MACDSignal)
			adx, plusDI, minusDI := ADX(high, low, closes, cfg.ADXPeriod)
			return []namedSeries{
				{"macd", macd}, {"macd_signal", sig}, {"macd_diff", hist},
				{"adx", adx}, {"adx_pos", plusDI}, {"adx_neg", minusDI},
			}
		},
		func() []namedSeries {
			k, d := Stochastic(high, low, closes, cfg.StochKPeriod, cfg.StochDPeriod)
			return []namedSeries{
				{"rsi", RSI(closes, cfg.RSIPeriod)},
				{"stoch_k", k}, {"stoch_d", d},
				{"williams_r", WilliamsR(high, low, closes, cfg.WilliamsPeriod)},
				{"mfi", MFI(high, low, closes, volume, cfg.MFIPeriod)},
			}
		},
		func() []namedSeries {
			upper, mid, lower, width := Bollinger(closes, cfg.BollingerPeriod, cfg.BollingerK)
			return []namedSeries{
				{"bb_high", upper}, {"bb_mid", mid}, {"bb_low", lower}, {"bb_width", width},
				{"atr", ATR(high, low, closes, cfg.ATRPeriod)},
			}
		},
		func() []namedSeries {
			return []namedSeries{
				{"obv", OBV(closes, volume)},
				{"vwap", VWAP(high, low, closes, volume)},
			}
		},
		func() []namedSeries {
			out := make([]namedSeries, 0, 2*len(cfg.ReturnPeriods)+2*len(cfg.MomentumPeriods)+len(cfg.VolatilityWindows))
			for _, p := range cfg.ReturnPeriods {
				simple, logr := Returns(closes, p)
				out = append(out,
					namedSeries{fmt.Sprintf("return_%dd", p), simple},
					namedSeries{fmt.Sprintf("log_return_%dd", p), logr})
			}
			for _, p := range cfg.MomentumPeriods {
				abs, pct := Momentum(closes, p)
				out = append(out,
					namedSeries{fmt.Sprintf("momentum_%dd", p), abs},
					namedSeries{fmt.Sprintf("momentum_pct_%dd", p), pct})
			}
			for _, w := range cfg.VolatilityWindows {
				out = append(out, namedSeries{fmt.Sprintf("volatility_%dd", w), Volatility(closes, w)})
			}
			return out
		},
	}

	results := make([][]namedSeries, len(families))
	var wg sync.WaitGroup
	for i, fam := range families {
		wg.Add(1)
		go func(i int, fam func() []namedSeries) {
			defer wg.Done()
			results[i] = fam()
		}(i, fam)
	}
	wg.Wait()

	for _, fam := range results {
		for _, s := range fam {
			if err := t.AddColumn(s.name, s.vals); err != nil {
				return nil, fmt.Errorf("add column: %w", err)
			}
		}
	}
	return t, nil
}
