// Package forecast turns a trained predictor and the last observed window
// into multi-step-ahead forecasts: a recursive point path with an
// approximate closed-form band, and a Monte Carlo ensemble with empirical
// percentile bands.
package forecast

import (
	"context"
	"errors"
	"fmt"

	"gonum.org/v1/gonum/stat"

	domsvc "TrendCast/internal/domain/service"
)

// ErrUnsupportedConfidence indicates a confidence level without a known
// quantile multiplier. Configuration error, raised immediately.
var ErrUnsupportedConfidence = errors.New("unsupported confidence level")

// fallbackStd bounds the first-step band before any prediction spread
// exists to estimate uncertainty from.
const fallbackStd = 0.02

// zFor maps a confidence level to its quantile multiplier.
func zFor(confidence float64) (float64, error) {
	switch confidence {
	case 0.95:
		return 1.96, nil
	case 0.99:
		return 2.58, nil
	default:
		return 0, fmt.Errorf("%w: %v (want 0.95 or 0.99)", ErrUnsupportedConfidence, confidence)
	}
}

// Path is a completed recursive forecast: parallel slices of length
// horizon with Lower[i] <= Predictions[i] <= Upper[i].
type Path struct {
	Predictions []float64
	Lower       []float64
	Upper       []float64
}

// Engine produces forecasts from a trained predictor. It is stateless
// across calls; concurrent use is safe as long as the predictor's
// inference is read-only.
type Engine struct {
	pred      domsvc.Predictor
	targetIdx int
}

// NewEngine creates a forecast engine. targetIdx is the position of the
// autoregressed target feature within each row.
func NewEngine(pred domsvc.Predictor, targetIdx int) *Engine {
	return &Engine{pred: pred, targetIdx: targetIdx}
}

// rollWindow shifts the window left by one row and appends a synthetic row
// holding every feature at its last known value except the target, which
// takes the fresh prediction. The model never sees independently forecast
// auxiliary features, only the autoregressed target.
func (e *Engine) rollWindow(window [][]float64, pred float64) {
	last := window[len(window)-1]
	synthetic := append([]float64(nil), last...)
	synthetic[e.targetIdx] = pred
	copy(window, window[1:])
	window[len(window)-1] = synthetic
}

func cloneWindow(w [][]float64) [][]float64 {
	out := make([][]float64, len(w))
	for i, row := range w {
		out[i] = append([]float64(nil), row...)
	}
	return out
}

// PredictFuture runs the autoregressive loop for horizon steps. The band
// at each step is prediction -/+ z*std where std is the population
// standard deviation of the predictions emitted so far in this call; the
// band is an approximation, not a coverage guarantee. Cancellation is
// honored between steps.
func (e *Engine) PredictFuture(ctx context.Context, lastWindow [][]float64, horizon int, confidence float64) (*Path, error) {
	if horizon <= 0 {
		return nil, fmt.Errorf("horizon must be positive, got %d", horizon)
	}
	if len(lastWindow) == 0 {
		return nil, fmt.Errorf("empty window")
	}
	z, err := zFor(confidence)
	if err != nil {
		return nil, err
	}

	window := cloneWindow(lastWindow)
	out := &Path{
		Predictions: make([]float64, 0, horizon),
		Lower:       make([]float64, 0, horizon),
		Upper:       make([]float64, 0, horizon),
	}

	for step := 0; step < horizon; step++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		pred, err := e.pred.Predict(window)
		if err != nil {
			return nil, fmt.Errorf("predict step %d: %w", step, err)
		}
		out.Predictions = append(out.Predictions, pred)

		std := fallbackStd
		if len(out.Predictions) > 1 {
			std = stat.PopStdDev(out.Predictions, nil)
		}
		out.Lower = append(out.Lower, pred-z*std)
		out.Upper = append(out.Upper, pred+z*std)

		e.rollWindow(window, pred)
	}
	return out, nil
}
