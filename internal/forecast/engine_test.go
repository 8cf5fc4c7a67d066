package forecast

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stepPredictor returns the target cell of the window's last row plus a
// fixed increment, so each autoregressive step is exactly traceable.
type stepPredictor struct {
	targetIdx int
	increment float64
}

func (p *stepPredictor) Predict(seq [][]float64) (float64, error) {
	return seq[len(seq)-1][p.targetIdx] + p.increment, nil
}

func (p *stepPredictor) Fit(seqs [][][]float64, targets []float64) (float64, error) {
	return 0, nil
}

func (p *stepPredictor) Evaluate(seqs [][][]float64, targets []float64) (float64, error) {
	return 0, nil
}

func window3x2(lastTarget float64) [][]float64 {
	return [][]float64{
		{1, lastTarget - 2},
		{2, lastTarget - 1},
		{3, lastTarget},
	}
}

func TestPredictFutureAutoregression(t *testing.T) {
	e := NewEngine(&stepPredictor{targetIdx: 1, increment: 1}, 1)

	path, err := e.PredictFuture(context.Background(), window3x2(10), 5, 0.95)
	require.NoError(t, err)
	require.Len(t, path.Predictions, 5)
	require.Len(t, path.Lower, 5)
	require.Len(t, path.Upper, 5)

	// each step feeds the previous prediction back as the target
	assert.Equal(t, []float64{11, 12, 13, 14, 15}, path.Predictions)
}

func TestPredictFutureBandsBracketPrediction(t *testing.T) {
	e := NewEngine(&stepPredictor{targetIdx: 1, increment: 0.5}, 1)

	path, err := e.PredictFuture(context.Background(), window3x2(100), 8, 0.95)
	require.NoError(t, err)
	for i := range path.Predictions {
		assert.LessOrEqual(t, path.Lower[i], path.Predictions[i], "step %d", i)
		assert.GreaterOrEqual(t, path.Upper[i], path.Predictions[i], "step %d", i)
	}

	// first step has a single prediction, so the fallback band applies
	z := 1.96
	assert.InDelta(t, path.Predictions[0]-z*fallbackStd, path.Lower[0], 1e-12)
	assert.InDelta(t, path.Predictions[0]+z*fallbackStd, path.Upper[0], 1e-12)
}

func TestPredictFutureWiderBandAtHigherConfidence(t *testing.T) {
	mk := func(conf float64) *Path {
		e := NewEngine(&stepPredictor{targetIdx: 1, increment: 1}, 1)
		p, err := e.PredictFuture(context.Background(), window3x2(10), 6, conf)
		require.NoError(t, err)
		return p
	}
	p95 := mk(0.95)
	p99 := mk(0.99)
	for i := range p95.Predictions {
		w95 := p95.Upper[i] - p95.Lower[i]
		w99 := p99.Upper[i] - p99.Lower[i]
		assert.Greater(t, w99, w95, "step %d", i)
	}
}

func TestPredictFutureUnsupportedConfidence(t *testing.T) {
	e := NewEngine(&stepPredictor{targetIdx: 1}, 1)
	_, err := e.PredictFuture(context.Background(), window3x2(10), 5, 0.9)
	assert.ErrorIs(t, err, ErrUnsupportedConfidence)
}

func TestPredictFutureRejectsBadInput(t *testing.T) {
	e := NewEngine(&stepPredictor{targetIdx: 1}, 1)

	_, err := e.PredictFuture(context.Background(), window3x2(10), 0, 0.95)
	assert.Error(t, err)

	_, err = e.PredictFuture(context.Background(), nil, 5, 0.95)
	assert.Error(t, err)
}

func TestPredictFutureDoesNotMutateInput(t *testing.T) {
	w := window3x2(10)
	orig := cloneWindow(w)

	e := NewEngine(&stepPredictor{targetIdx: 1, increment: 1}, 1)
	_, err := e.PredictFuture(context.Background(), w, 5, 0.95)
	require.NoError(t, err)
	assert.Equal(t, orig, w)
}

func TestPredictFutureHonorsCancellation(t *testing.T) {
	e := NewEngine(&stepPredictor{targetIdx: 1, increment: 1}, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := e.PredictFuture(ctx, window3x2(10), 5, 0.95)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRollWindowCarriesForwardFeatures(t *testing.T) {
	e := NewEngine(&stepPredictor{targetIdx: 1}, 1)
	w := [][]float64{
		{1, 10},
		{2, 20},
		{3, 30},
	}
	e.rollWindow(w, 99)

	assert.Equal(t, [][]float64{
		{2, 20},
		{3, 30},
		{3, 99}, // last row's features carried, target replaced
	}, w)
}
