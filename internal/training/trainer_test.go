package training

import (
	"context"
	"math"
	"testing"

	"TrendCast/internal/dataset"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedPredictor returns a fixed loss sequence from Evaluate, one entry
// per validation pass, and a constant training loss. It lets the tests pin
// down early-stopping behavior without real optimization.
type scriptedPredictor struct {
	valLosses []float64
	calls     int
	fitLoss   float64
	params    []float64
	optState  []float64
}

func (p *scriptedPredictor) Predict(seq [][]float64) (float64, error) { return 0, nil }

func (p *scriptedPredictor) Fit(seqs [][][]float64, targets []float64) (float64, error) {
	return p.fitLoss, nil
}

func (p *scriptedPredictor) Evaluate(seqs [][][]float64, targets []float64) (float64, error) {
	loss := p.valLosses[p.calls%len(p.valLosses)]
	p.calls++
	return loss, nil
}

func (p *scriptedPredictor) StateDict() ([]float64, []float64) {
	return append([]float64(nil), p.params...), append([]float64(nil), p.optState...)
}

func (p *scriptedPredictor) LoadStateDict(params, optState []float64) error {
	p.params = append([]float64(nil), params...)
	p.optState = append([]float64(nil), optState...)
	return nil
}

// memorySink records every checkpoint handed to it.
type memorySink struct {
	saved []*Checkpoint
}

func (s *memorySink) Save(_ context.Context, cp *Checkpoint) error {
	s.saved = append(s.saved, cp)
	return nil
}

func makeWindows(n int) []dataset.Window {
	out := make([]dataset.Window, n)
	for i := range out {
		out[i] = dataset.Window{
			Seq:    [][]float64{{float64(i)}},
			Target: float64(i),
		}
	}
	return out
}

func TestTrainStopsAfterPatience(t *testing.T) {
	// improves on epochs 1-3, then plateaus
	pred := &scriptedPredictor{
		valLosses: []float64{1.0, 0.5, 0.25, 0.25, 0.25, 0.25, 0.25, 0.25, 0.25, 0.25},
		fitLoss:   0.1,
		params:    []float64{1, 2},
		optState:  []float64{0, 0},
	}
	sink := &memorySink{}
	tr := NewTrainer(pred, Config{Epochs: 50, Patience: 3, MinDelta: 1e-4, BatchSize: 4, Seed: 1}, sink, nil)

	res, err := tr.Train(context.Background(), makeWindows(8), makeWindows(4))
	require.NoError(t, err)

	assert.True(t, res.StoppedEarly)
	assert.Equal(t, 3, res.BestEpoch)
	assert.Equal(t, 0.25, res.BestValLoss)
	// best epoch plus patience epochs without improvement
	assert.Equal(t, 6, res.Epochs)
	assert.Equal(t, StateStoppedEarly, tr.State())
	assert.Equal(t, "stopped_early_stopping", tr.State().String())

	// one checkpoint per improvement, none on plateau epochs
	require.Len(t, sink.saved, 3)
	last := sink.saved[len(sink.saved)-1]
	assert.Equal(t, CheckpointVersion, last.Version)
	assert.Equal(t, 3, last.Epoch)
	assert.Equal(t, 0.25, last.BestValLoss)
	assert.Equal(t, []float64{1, 2}, last.Params)
}

func TestTrainRunsToEpochCap(t *testing.T) {
	pred := &scriptedPredictor{
		valLosses: []float64{5, 4, 3, 2, 1},
		fitLoss:   0.1,
		params:    []float64{1, 2},
		optState:  []float64{3, 4},
	}
	tr := NewTrainer(pred, Config{Epochs: 5, Patience: 10, BatchSize: 4, Seed: 1}, nil, nil)

	res, err := tr.Train(context.Background(), makeWindows(8), makeWindows(4))
	require.NoError(t, err)
	assert.False(t, res.StoppedEarly)
	assert.Equal(t, 5, res.Epochs)
	assert.Equal(t, 5, res.BestEpoch)
	assert.Equal(t, 1.0, res.BestValLoss)
	assert.Equal(t, StateStoppedMaxEpochs, tr.State())
	assert.Equal(t, []int{1, 2, 3, 4, 5}, res.History.Epochs)
	assert.Equal(t, []float64{5, 4, 3, 2, 1}, res.History.ValLoss)
}

func TestTrainMinDeltaGatesImprovement(t *testing.T) {
	// the drop from 1.0 to 0.99995 is below MinDelta, so it never counts
	pred := &scriptedPredictor{
		valLosses: []float64{1.0, 0.99995, 0.99995, 0.99995},
		fitLoss:   0.1,
	}
	sink := &memorySink{}
	tr := NewTrainer(pred, Config{Epochs: 10, Patience: 3, MinDelta: 1e-4, BatchSize: 4, Seed: 1}, sink, nil)

	res, err := tr.Train(context.Background(), makeWindows(8), makeWindows(4))
	require.NoError(t, err)
	assert.True(t, res.StoppedEarly)
	assert.Equal(t, 1, res.BestEpoch)
	assert.Equal(t, 4, res.Epochs)
	assert.Len(t, sink.saved, 1)
}

func TestTrainDivergenceAborts(t *testing.T) {
	pred := &scriptedPredictor{
		valLosses: []float64{1},
		fitLoss:   math.NaN(),
	}
	tr := NewTrainer(pred, Config{Epochs: 10, BatchSize: 4, Seed: 1}, nil, nil)

	_, err := tr.Train(context.Background(), makeWindows(8), makeWindows(4))
	assert.ErrorIs(t, err, ErrDiverged)
	assert.Equal(t, StateIdle, tr.State())
}

func TestTrainContextCancellation(t *testing.T) {
	pred := &scriptedPredictor{valLosses: []float64{1}, fitLoss: 0.1}
	tr := NewTrainer(pred, Config{Epochs: 100, BatchSize: 4, Seed: 1}, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := tr.Train(ctx, makeWindows(8), makeWindows(4))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTrainRejectsEmptySets(t *testing.T) {
	pred := &scriptedPredictor{valLosses: []float64{1}, fitLoss: 0.1}
	tr := NewTrainer(pred, Config{}, nil, nil)

	_, err := tr.Train(context.Background(), nil, makeWindows(4))
	assert.Error(t, err)
	_, err = tr.Train(context.Background(), makeWindows(4), nil)
	assert.Error(t, err)
}

func TestResumeRestoresState(t *testing.T) {
	pred := &scriptedPredictor{}
	cp := &Checkpoint{
		Version:        CheckpointVersion,
		Epoch:          7,
		Params:         []float64{1, 2, 3},
		OptimizerState: []float64{4, 5, 6},
		BestValLoss:    0.3,
	}
	require.NoError(t, Resume(pred, cp))
	assert.Equal(t, []float64{1, 2, 3}, pred.params)
	assert.Equal(t, []float64{4, 5, 6}, pred.optState)
}
