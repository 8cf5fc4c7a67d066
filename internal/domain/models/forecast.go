package models

import "time"

// ForecastPoint is one future step of a point forecast with its band.
type ForecastPoint struct {
	Date       time.Time `json:"date"`
	Prediction float64   `json:"prediction"`
	Lower      float64   `json:"lower"`
	Upper      float64   `json:"upper"`
}

// ForecastPath is a complete point forecast for a symbol.
type ForecastPath struct {
	Symbol      string          `json:"symbol"`
	GeneratedAt time.Time       `json:"generated_at"`
	Horizon     int             `json:"horizon"`
	Confidence  float64         `json:"confidence"`
	Points      []ForecastPoint `json:"points"`
}

// HistoryPoint is one recent observed close returned alongside a forecast.
type HistoryPoint struct {
	Date  time.Time `json:"date"`
	Close float64   `json:"close"`
}

// MonteCarloBand is one future step of the ensemble summary.
type MonteCarloBand struct {
	Date         time.Time `json:"date"`
	Mean         float64   `json:"mean"`
	Median       float64   `json:"median"`
	Percentile5  float64   `json:"p5"`
	Percentile95 float64   `json:"p95"`
}

// MonteCarloResult is the ensemble forecast for a symbol.
type MonteCarloResult struct {
	Symbol      string           `json:"symbol"`
	GeneratedAt time.Time        `json:"generated_at"`
	Horizon     int              `json:"horizon"`
	Simulations int              `json:"simulations"`
	Bands       []MonteCarloBand `json:"bands"`
}

// TrainReport summarizes a completed training run.
type TrainReport struct {
	Symbol       string    `json:"symbol"`
	Epochs       int       `json:"epochs"`
	BestEpoch    int       `json:"best_epoch"`
	BestValLoss  float64   `json:"best_val_loss"`
	TestLoss     float64   `json:"test_loss"`
	StoppedEarly bool      `json:"stopped_early"`
	Windows      int       `json:"windows"`
	Features     int       `json:"features"`
	TrainedAt    time.Time `json:"trained_at"`
}
