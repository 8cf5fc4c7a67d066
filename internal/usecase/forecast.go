package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"TrendCast/internal/dataset"
	"TrendCast/internal/domain/models"
	domrepo "TrendCast/internal/domain/repository"
	"TrendCast/internal/features"
	"TrendCast/internal/forecast"
	"TrendCast/internal/model"
	"TrendCast/internal/repository"
	"TrendCast/internal/service/cache"
	"TrendCast/internal/training"
	applogger "TrendCast/pkg/logger"
)

// ForecastConfig collects inference-side settings.
type ForecastConfig struct {
	CheckpointDir string
	LearningRate  float64
	Momentum      float64
	Seed          int64
	NoiseScale    float64
	Simulations   int
	CacheTTL      time.Duration
	HistoryTail   int
	MinHistory    int
}

// ForecastUseCase loads a trained model, rebuilds the latest feature
// window and runs point or Monte Carlo forecasts. Responses are cached
// with a short TTL keyed by symbol and request shape.
type ForecastUseCase struct {
	store     domrepo.BarStore
	fe        *features.Engine
	ckpts     *repository.FileCheckpointStore
	cache     cache.BytesCache
	publisher domrepo.ForecastPublisher
	cfg       ForecastConfig
	metrics   domrepo.Metrics
	log       *applogger.Logger
}

func NewForecastUseCase(store domrepo.BarStore, fe *features.Engine, ckpts *repository.FileCheckpointStore, c cache.BytesCache, publisher domrepo.ForecastPublisher, cfg ForecastConfig, metrics domrepo.Metrics, log *applogger.Logger) *ForecastUseCase {
	if cfg.HistoryTail <= 0 {
		cfg.HistoryTail = 30
	}
	return &ForecastUseCase{
		store:     store,
		fe:        fe,
		ckpts:     ckpts,
		cache:     c,
		publisher: publisher,
		cfg:       cfg,
		metrics:   metrics,
		log:       log,
	}
}

// inference bundles everything one forecast call needs.
type inference struct {
	pred      *model.Linear
	meta      *modelMeta
	scaler    *dataset.Scaler
	window    [][]float64
	lastBars  []models.Bar
	targetIdx int
}

func (uc *ForecastUseCase) prepare(ctx context.Context, symbol string) (*inference, error) {
	sink := uc.ckpts.ForSymbol(symbol)
	if !sink.Exists() {
		return nil, fmt.Errorf("%w: %s", ErrModelNotTrained, symbol)
	}
	cp, err := sink.Load(ctx)
	if err != nil {
		return nil, err
	}
	meta, err := loadMeta(uc.cfg.CheckpointDir, symbol)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrModelNotTrained, symbol, err)
	}

	pred := model.NewLinear(uc.cfg.LearningRate, uc.cfg.Momentum, uc.cfg.Seed)
	if err := training.Resume(pred, cp); err != nil {
		return nil, err
	}

	// Enough raw history that the longest indicator warm-up still leaves a
	// full window of usable rows.
	need := max(uc.cfg.MinHistory, meta.SequenceLength+260)
	bars, err := uc.store.GetLatestBars(ctx, symbol, need)
	if err != nil {
		return nil, fmt.Errorf("load bars: %w", err)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("%w: no bars for %s", ErrInsufficientHistory, symbol)
	}

	table, err := uc.fe.Compute(bars)
	if err != nil {
		return nil, fmt.Errorf("compute features: %w", err)
	}
	table = table.DropNaNRows()

	cols := table.Columns()
	if len(cols) != len(meta.Columns) {
		return nil, fmt.Errorf("feature layout changed since training: %d columns, trained on %d",
			len(cols), len(meta.Columns))
	}
	for i, c := range cols {
		if c != meta.Columns[i] {
			return nil, fmt.Errorf("feature layout changed since training: column %d is %q, trained on %q",
				i, c, meta.Columns[i])
		}
	}

	m := table.Matrix()
	if len(m) < meta.SequenceLength {
		return nil, fmt.Errorf("%w: %d usable rows, window is %d",
			ErrInsufficientHistory, len(m), meta.SequenceLength)
	}
	scaler := meta.scaler()
	scaled, err := scaler.Transform(m[len(m)-meta.SequenceLength:])
	if err != nil {
		return nil, fmt.Errorf("transform: %w", err)
	}

	return &inference{
		pred:      pred,
		meta:      meta,
		scaler:    scaler,
		window:    scaled,
		lastBars:  bars,
		targetIdx: meta.TargetIndex,
	}, nil
}

// nextTradingDay advances one day, skipping weekends.
func nextTradingDay(t time.Time) time.Time {
	t = t.AddDate(0, 0, 1)
	for t.Weekday() == time.Saturday || t.Weekday() == time.Sunday {
		t = t.AddDate(0, 0, 1)
	}
	return t
}

func futureDates(last time.Time, horizon int) []time.Time {
	out := make([]time.Time, horizon)
	d := last
	for i := 0; i < horizon; i++ {
		d = nextTradingDay(d)
		out[i] = d
	}
	return out
}

// Predict produces an autoregressive point forecast with closed-form bands.
func (uc *ForecastUseCase) Predict(ctx context.Context, req *models.PredictRequest) (*models.PredictResponse, error) {
	start := time.Now()
	key := fmt.Sprintf("forecast:point:%s:%d:%g", req.Symbol, req.Horizon, req.Confidence)
	if b, ok, err := uc.cache.GetBytes(key); err == nil && ok {
		var resp models.PredictResponse
		if err := json.Unmarshal(b, &resp); err == nil {
			resp.Cached = true
			return &resp, nil
		}
	}

	inf, err := uc.prepare(ctx, req.Symbol)
	if err != nil {
		return nil, err
	}

	engine := forecast.NewEngine(inf.pred, inf.targetIdx)
	path, err := engine.PredictFuture(ctx, inf.window, req.Horizon, req.Confidence)
	if err != nil {
		if uc.metrics != nil {
			uc.metrics.RecordError("forecast_point")
		}
		return nil, fmt.Errorf("forecast %s: %w", req.Symbol, err)
	}

	lastDate := inf.lastBars[len(inf.lastBars)-1].Date
	dates := futureDates(lastDate, req.Horizon)
	points := make([]models.ForecastPoint, req.Horizon)
	for i := range points {
		pred, err := inf.scaler.InverseValue(inf.targetIdx, path.Predictions[i])
		if err != nil {
			return nil, err
		}
		lo, err := inf.scaler.InverseValue(inf.targetIdx, path.Lower[i])
		if err != nil {
			return nil, err
		}
		hi, err := inf.scaler.InverseValue(inf.targetIdx, path.Upper[i])
		if err != nil {
			return nil, err
		}
		points[i] = models.ForecastPoint{Date: dates[i], Prediction: pred, Lower: lo, Upper: hi}
	}

	fp := &models.ForecastPath{
		Symbol:      req.Symbol,
		GeneratedAt: time.Now().UTC(),
		Horizon:     req.Horizon,
		Confidence:  req.Confidence,
		Points:      points,
	}
	resp := &models.PredictResponse{
		Forecast: fp,
		History:  uc.historyTail(inf.lastBars),
	}

	if b, err := json.Marshal(resp); err == nil {
		_ = uc.cache.SetBytes(key, b, uc.cfg.CacheTTL)
	}
	if uc.publisher != nil {
		if err := uc.publisher.Publish(ctx, fp); err != nil && uc.log != nil {
			uc.log.Warn("forecast publish failed",
				applogger.String("symbol", req.Symbol),
				applogger.Error(err),
			)
		}
	}
	if uc.metrics != nil {
		uc.metrics.RecordForecast(req.Symbol, "point")
		uc.metrics.RecordLatency("forecast_point", time.Since(start).Seconds())
	}
	return resp, nil
}

// MonteCarlo produces an ensemble forecast with empirical bands.
func (uc *ForecastUseCase) MonteCarlo(ctx context.Context, req *models.MonteCarloRequest) (*models.MonteCarloResult, error) {
	start := time.Now()
	// Request defaults cover the HTTP path; direct callers may leave the
	// ensemble knobs zero and get the configured values.
	if req.Simulations <= 0 {
		req.Simulations = uc.cfg.Simulations
	}
	if req.NoiseScale <= 0 {
		req.NoiseScale = uc.cfg.NoiseScale
	}
	key := fmt.Sprintf("forecast:mc:%s:%d:%d:%g", req.Symbol, req.Horizon, req.Simulations, req.NoiseScale)
	if b, ok, err := uc.cache.GetBytes(key); err == nil && ok {
		var resp models.MonteCarloResult
		if err := json.Unmarshal(b, &resp); err == nil {
			return &resp, nil
		}
	}

	inf, err := uc.prepare(ctx, req.Symbol)
	if err != nil {
		return nil, err
	}

	engine := forecast.NewEngine(inf.pred, inf.targetIdx)
	res, err := engine.MonteCarlo(ctx, inf.window, req.Horizon, forecast.MonteCarloConfig{
		Simulations: req.Simulations,
		NoiseScale:  req.NoiseScale,
		Seed:        uc.cfg.Seed,
	})
	if err != nil {
		if uc.metrics != nil {
			uc.metrics.RecordError("forecast_mc")
		}
		return nil, fmt.Errorf("monte carlo %s: %w", req.Symbol, err)
	}

	lastDate := inf.lastBars[len(inf.lastBars)-1].Date
	dates := futureDates(lastDate, req.Horizon)
	bands := make([]models.MonteCarloBand, req.Horizon)
	for i := range bands {
		mean, err := inf.scaler.InverseValue(inf.targetIdx, res.Mean[i])
		if err != nil {
			return nil, err
		}
		med, err := inf.scaler.InverseValue(inf.targetIdx, res.Median[i])
		if err != nil {
			return nil, err
		}
		p5, err := inf.scaler.InverseValue(inf.targetIdx, res.Percentile5[i])
		if err != nil {
			return nil, err
		}
		p95, err := inf.scaler.InverseValue(inf.targetIdx, res.Percentile95[i])
		if err != nil {
			return nil, err
		}
		bands[i] = models.MonteCarloBand{Date: dates[i], Mean: mean, Median: med, Percentile5: p5, Percentile95: p95}
	}

	out := &models.MonteCarloResult{
		Symbol:      req.Symbol,
		GeneratedAt: time.Now().UTC(),
		Horizon:     req.Horizon,
		Simulations: req.Simulations,
		Bands:       bands,
	}
	if b, err := json.Marshal(out); err == nil {
		_ = uc.cache.SetBytes(key, b, uc.cfg.CacheTTL)
	}
	if uc.metrics != nil {
		uc.metrics.RecordForecast(req.Symbol, "montecarlo")
		uc.metrics.RecordLatency("forecast_mc", time.Since(start).Seconds())
	}
	return out, nil
}

func (uc *ForecastUseCase) historyTail(bars []models.Bar) []models.HistoryPoint {
	n := uc.cfg.HistoryTail
	if len(bars) < n {
		n = len(bars)
	}
	tail := bars[len(bars)-n:]
	out := make([]models.HistoryPoint, len(tail))
	for i, b := range tail {
		out[i] = models.HistoryPoint{Date: b.Date, Close: b.Close}
	}
	return out
}
