package model

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// trainingSet builds windows of shape (rows, cols) whose target is a fixed
// linear function of the flattened window, so a linear model can fit it.
func trainingSet(n, rows, cols int, seed int64) (seqs [][][]float64, targets []float64) {
	rng := rand.New(rand.NewSource(seed))
	dim := rows * cols
	coef := make([]float64, dim)
	for i := range coef {
		coef[i] = rng.NormFloat64() * 0.1
	}
	for s := 0; s < n; s++ {
		seq := make([][]float64, rows)
		var y float64
		k := 0
		for r := range seq {
			seq[r] = make([]float64, cols)
			for c := range seq[r] {
				v := rng.NormFloat64()
				seq[r][c] = v
				y += coef[k] * v
				k++
			}
		}
		seqs = append(seqs, seq)
		targets = append(targets, y+0.5)
	}
	return seqs, targets
}

func TestLinearLossDecreases(t *testing.T) {
	seqs, targets := trainingSet(128, 4, 3, 7)
	m := NewLinear(0.01, 0.9, 42)

	first, err := m.Fit(seqs, targets)
	require.NoError(t, err)

	var last float64
	for i := 0; i < 200; i++ {
		last, err = m.Fit(seqs, targets)
		require.NoError(t, err)
	}
	assert.Less(t, last, first, "loss should decrease with training")
	assert.Less(t, last, 0.05)
}

func TestLinearEvaluateMatchesPredict(t *testing.T) {
	seqs, targets := trainingSet(16, 3, 2, 11)
	m := NewLinear(0.01, 0.9, 1)
	for i := 0; i < 50; i++ {
		_, err := m.Fit(seqs, targets)
		require.NoError(t, err)
	}

	loss, err := m.Evaluate(seqs, targets)
	require.NoError(t, err)

	var manual float64
	for i, seq := range seqs {
		p, err := m.Predict(seq)
		require.NoError(t, err)
		d := p - targets[i]
		manual += d * d
	}
	manual /= float64(len(seqs))
	assert.InDelta(t, manual, loss, 1e-12)
}

func TestLinearEvaluateDoesNotUpdate(t *testing.T) {
	seqs, targets := trainingSet(16, 3, 2, 3)
	m := NewLinear(0.01, 0.9, 1)
	_, err := m.Fit(seqs, targets)
	require.NoError(t, err)

	before, _ := m.StateDict()
	_, err = m.Evaluate(seqs, targets)
	require.NoError(t, err)
	after, _ := m.StateDict()
	assert.Equal(t, before, after)
}

func TestLinearEmptyBatch(t *testing.T) {
	m := NewLinear(0.01, 0.9, 1)
	_, err := m.Fit(nil, nil)
	assert.ErrorIs(t, err, ErrEmptyBatch)

	_, err = m.Evaluate([][][]float64{{{1}}}, nil)
	assert.ErrorIs(t, err, ErrEmptyBatch)

	_, err = m.Predict(nil)
	assert.ErrorIs(t, err, ErrEmptyBatch)
}

func TestLinearDimensionMismatch(t *testing.T) {
	m := NewLinear(0.01, 0.9, 1)
	_, err := m.Predict([][]float64{{1, 2}})
	require.NoError(t, err)

	_, err = m.Predict([][]float64{{1, 2, 3}})
	assert.Error(t, err)
}

func TestLinearStateDictRoundtrip(t *testing.T) {
	seqs, targets := trainingSet(32, 4, 2, 5)
	src := NewLinear(0.01, 0.9, 9)
	for i := 0; i < 20; i++ {
		_, err := src.Fit(seqs, targets)
		require.NoError(t, err)
	}

	params, opt := src.StateDict()
	dst := NewLinear(0.01, 0.9, 1234)
	require.NoError(t, dst.LoadStateDict(params, opt))

	want, err := src.Predict(seqs[0])
	require.NoError(t, err)
	got, err := dst.Predict(seqs[0])
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// restored optimizer state continues training identically
	a, err := src.Fit(seqs, targets)
	require.NoError(t, err)
	b, err := dst.Fit(seqs, targets)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestLinearLoadStateDictValidation(t *testing.T) {
	m := NewLinear(0.01, 0.9, 1)
	assert.Error(t, m.LoadStateDict([]float64{1}, []float64{1}))
	assert.Error(t, m.LoadStateDict([]float64{1, 2, 3}, []float64{1, 2}))
}
