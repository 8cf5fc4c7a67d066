package models

import (
	"fmt"
	"math"
	"time"
)

// Bar is one daily OHLCV candle for a symbol.
type Bar struct {
	Symbol string    `json:"symbol"`
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// Usable reports whether every price field is finite and positive and
// volume is finite and non-negative.
func (b Bar) Usable() bool {
	for _, v := range []float64{b.Open, b.High, b.Low, b.Close} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
			return false
		}
	}
	if math.IsNaN(b.Volume) || math.IsInf(b.Volume, 0) || b.Volume < 0 {
		return false
	}
	return true
}

// ValidateBars checks that bars are non-empty, usable, and strictly
// increasing by date.
func ValidateBars(bars []Bar) error {
	if len(bars) == 0 {
		return fmt.Errorf("no bars")
	}
	for i, b := range bars {
		if !b.Usable() {
			return fmt.Errorf("bar %d (%s): non-finite or non-positive field", i, b.Date.Format("2006-01-02"))
		}
		if i > 0 && !bars[i-1].Date.Before(b.Date) {
			return fmt.Errorf("bar %d (%s): dates not strictly increasing", i, b.Date.Format("2006-01-02"))
		}
	}
	return nil
}
