// Package model provides the default predictor implementation behind the
// Predictor contract. The architecture is deliberately simple; the
// training harness and forecast engine only see the interface, so richer
// sequence models can be dropped in without touching either.
package model

import (
	"errors"
	"fmt"
	"math/rand"

	domsvc "TrendCast/internal/domain/service"
)

// ErrEmptyBatch indicates Fit or Evaluate received no samples.
var ErrEmptyBatch = errors.New("empty batch")

// Linear predicts the target as an affine function of the flattened
// window, trained by SGD with momentum. The momentum velocities are the
// optimizer state persisted in checkpoints.
type Linear struct {
	weights []float64
	bias    float64

	velocity     []float64
	biasVelocity float64

	lr       float64
	momentum float64
	rng      *rand.Rand
}

// NewLinear creates an untrained linear predictor. Weights are allocated
// lazily on the first batch, once the window shape is known.
func NewLinear(learningRate, momentum float64, seed int64) *Linear {
	return &Linear{
		lr:       learningRate,
		momentum: momentum,
		rng:      rand.New(rand.NewSource(seed)),
	}
}

func flatten(seq [][]float64) []float64 {
	if len(seq) == 0 {
		return nil
	}
	out := make([]float64, 0, len(seq)*len(seq[0]))
	for _, row := range seq {
		out = append(out, row...)
	}
	return out
}

func (m *Linear) ensureInit(dim int) {
	if m.weights != nil {
		return
	}
	m.weights = make([]float64, dim)
	m.velocity = make([]float64, dim)
	scale := 1.0 / float64(dim)
	for i := range m.weights {
		m.weights[i] = (m.rng.Float64()*2 - 1) * scale
	}
}

func (m *Linear) forward(x []float64) (float64, error) {
	if len(x) != len(m.weights) {
		return 0, fmt.Errorf("input dim %d != model dim %d", len(x), len(m.weights))
	}
	out := m.bias
	for i, v := range x {
		out += m.weights[i] * v
	}
	return out, nil
}

// Predict runs read-only inference on one window.
func (m *Linear) Predict(seq [][]float64) (float64, error) {
	x := flatten(seq)
	if len(x) == 0 {
		return 0, ErrEmptyBatch
	}
	m.ensureInit(len(x))
	return m.forward(x)
}

// Fit performs one gradient step over the batch and returns the batch MSE
// measured before the update.
func (m *Linear) Fit(seqs [][][]float64, targets []float64) (float64, error) {
	if len(seqs) == 0 || len(seqs) != len(targets) {
		return 0, fmt.Errorf("%w: %d seqs, %d targets", ErrEmptyBatch, len(seqs), len(targets))
	}

	n := float64(len(seqs))
	var loss float64
	var gradW []float64
	var gradB float64

	for i, seq := range seqs {
		x := flatten(seq)
		if len(x) == 0 {
			return 0, ErrEmptyBatch
		}
		m.ensureInit(len(x))
		if gradW == nil {
			gradW = make([]float64, len(x))
		}
		pred, err := m.forward(x)
		if err != nil {
			return 0, err
		}
		diff := pred - targets[i]
		loss += diff * diff
		for j, v := range x {
			gradW[j] += 2 * diff * v / n
		}
		gradB += 2 * diff / n
	}
	loss /= n

	for j := range m.weights {
		m.velocity[j] = m.momentum*m.velocity[j] - m.lr*gradW[j]
		m.weights[j] += m.velocity[j]
	}
	m.biasVelocity = m.momentum*m.biasVelocity - m.lr*gradB
	m.bias += m.biasVelocity

	return loss, nil
}

// Evaluate computes the batch MSE without updating parameters.
func (m *Linear) Evaluate(seqs [][][]float64, targets []float64) (float64, error) {
	if len(seqs) == 0 || len(seqs) != len(targets) {
		return 0, fmt.Errorf("%w: %d seqs, %d targets", ErrEmptyBatch, len(seqs), len(targets))
	}
	var loss float64
	for i, seq := range seqs {
		pred, err := m.Predict(seq)
		if err != nil {
			return 0, err
		}
		diff := pred - targets[i]
		loss += diff * diff
	}
	return loss / float64(len(seqs)), nil
}

// StateDict returns flat parameter and optimizer state vectors. Layout:
// params = weights ++ [bias], optState = velocities ++ [biasVelocity].
func (m *Linear) StateDict() ([]float64, []float64) {
	params := make([]float64, len(m.weights)+1)
	copy(params, m.weights)
	params[len(m.weights)] = m.bias

	opt := make([]float64, len(m.velocity)+1)
	copy(opt, m.velocity)
	opt[len(m.velocity)] = m.biasVelocity
	return params, opt
}

// LoadStateDict restores parameters and optimizer state.
func (m *Linear) LoadStateDict(params, optState []float64) error {
	if len(params) < 2 || len(params) != len(optState) {
		return fmt.Errorf("state dict: params len %d, opt state len %d", len(params), len(optState))
	}
	dim := len(params) - 1
	m.weights = append([]float64(nil), params[:dim]...)
	m.bias = params[dim]
	m.velocity = append([]float64(nil), optState[:dim]...)
	m.biasVelocity = optState[dim]
	return nil
}

var (
	_ domsvc.Predictor      = (*Linear)(nil)
	_ domsvc.Checkpointable = (*Linear)(nil)
)
