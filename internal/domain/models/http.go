package models

// PredictRequest asks for an autoregressive point forecast.
type PredictRequest struct {
	Symbol     string  `json:"symbol" validate:"required,min=1,max=6,ticker"`
	Horizon    int     `json:"horizon" default:"10" validate:"gte=1,lte=30"`
	Confidence float64 `json:"confidence" default:"0.95" validate:"oneof=0.95 0.99"`
}

// MonteCarloRequest asks for an ensemble forecast.
type MonteCarloRequest struct {
	Symbol      string  `json:"symbol" validate:"required,min=1,max=6,ticker"`
	Horizon     int     `json:"horizon" default:"10" validate:"gte=1,lte=30"`
	Simulations int     `json:"simulations" default:"1000" validate:"gte=10,lte=10000"`
	NoiseScale  float64 `json:"noise_scale" default:"0.01" validate:"gt=0,lte=0.5"`
}

// TrainRequest triggers a training run for a symbol.
type TrainRequest struct {
	Symbol string `json:"symbol" validate:"required,min=1,max=6,ticker"`
	Epochs int    `json:"epochs" default:"100" validate:"gte=1,lte=1000"`
}

// IngestBarsRequest backfills historical bars for one symbol. Bars must
// be in ascending date order.
type IngestBarsRequest struct {
	Symbol string `json:"symbol" validate:"required,min=1,max=6,ticker"`
	Bars   []Bar  `json:"bars" validate:"required,min=1,max=10000"`
}

// BarsRequest fetches stored bars, either the latest N or an explicit
// date range when both from and to are given (YYYY-MM-DD).
type BarsRequest struct {
	Symbol string `query:"symbol" validate:"required,min=1,max=6,ticker"`
	Limit  int    `query:"limit" default:"100" validate:"gte=1,lte=5000"`
	From   string `query:"from" validate:"omitempty,datetime=2006-01-02"`
	To     string `query:"to" validate:"omitempty,datetime=2006-01-02"`
}

// PredictResponse carries a forecast plus the recent history it extends.
type PredictResponse struct {
	Forecast *ForecastPath  `json:"forecast"`
	History  []HistoryPoint `json:"history"`
	Cached   bool           `json:"cached"`
}
