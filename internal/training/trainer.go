// Package training is the generic harness that drives any Predictor:
// epoch loop, early stopping, divergence guard and checkpoint selection.
package training

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"

	"TrendCast/internal/dataset"
	domsvc "TrendCast/internal/domain/service"
	applogger "TrendCast/pkg/logger"
)

// ErrDiverged indicates training produced a NaN/Inf loss. The run aborts
// before any checkpoint can be poisoned by the invalid value.
var ErrDiverged = errors.New("training diverged: loss is not finite")

// State tracks the harness lifecycle.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateStoppedEarly
	StateStoppedMaxEpochs
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateStoppedEarly:
		return "stopped_early_stopping"
	case StateStoppedMaxEpochs:
		return "stopped_max_epochs"
	default:
		return "unknown"
	}
}

// CheckpointSink persists the best checkpoint. The trainer overwrites the
// best snapshot in place; it does not version checkpoints.
type CheckpointSink interface {
	Save(ctx context.Context, cp *Checkpoint) error
}

// Config parameterizes a training run.
type Config struct {
	Epochs    int     // epoch cap, default 100
	Patience  int     // early-stopping patience, default 10
	MinDelta  float64 // minimum improvement, default 1e-4
	BatchSize int     // default 64
	Seed      int64   // shuffle seed
}

func (c *Config) applyDefaults() {
	if c.Epochs <= 0 {
		c.Epochs = 100
	}
	if c.Patience <= 0 {
		c.Patience = 10
	}
	if c.MinDelta <= 0 {
		c.MinDelta = 1e-4
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 64
	}
	if c.Seed == 0 {
		c.Seed = 42
	}
}

// Result summarizes a finished run.
type Result struct {
	Epochs       int
	BestEpoch    int
	BestValLoss  float64
	StoppedEarly bool
	History      History
}

// Trainer drives one Predictor through epochs of shuffled training batches
// and ordered validation batches.
type Trainer struct {
	pred domsvc.Predictor
	cfg  Config
	sink CheckpointSink
	log  *applogger.Logger

	state State
	rng   *rand.Rand
}

// NewTrainer creates a trainer. sink and log may be nil.
func NewTrainer(pred domsvc.Predictor, cfg Config, sink CheckpointSink, log *applogger.Logger) *Trainer {
	cfg.applyDefaults()
	return &Trainer{
		pred:  pred,
		cfg:   cfg,
		sink:  sink,
		log:   log,
		state: StateIdle,
		rng:   rand.New(rand.NewSource(cfg.Seed)),
	}
}

// State returns the current lifecycle state.
func (t *Trainer) State() State { return t.state }

// Train runs the epoch loop until early stopping, the epoch cap, or
// context cancellation (checked between epochs). Validation never updates
// parameters; a checkpoint is written only when validation improves beyond
// MinDelta.
func (t *Trainer) Train(ctx context.Context, train, val []dataset.Window) (*Result, error) {
	if len(train) == 0 || len(val) == 0 {
		return nil, fmt.Errorf("train: need non-empty train (%d) and val (%d) windows", len(train), len(val))
	}

	t.state = StateRunning
	defer func() {
		if t.state == StateRunning {
			t.state = StateIdle
		}
	}()

	shuffled := append([]dataset.Window(nil), train...)
	valBatches := dataset.MakeBatches(val, t.cfg.BatchSize)

	res := &Result{BestValLoss: math.Inf(1), BestEpoch: -1}
	patienceCtr := 0

	for epoch := 0; epoch < t.cfg.Epochs; epoch++ {
		select {
		case <-ctx.Done():
			t.state = StateIdle
			return nil, ctx.Err()
		default:
		}

		t.rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})

		trainLoss, err := t.runEpoch(dataset.MakeBatches(shuffled, t.cfg.BatchSize), true)
		if err != nil {
			t.state = StateIdle
			return nil, err
		}
		valLoss, err := t.runEpoch(valBatches, false)
		if err != nil {
			t.state = StateIdle
			return nil, err
		}

		res.Epochs = epoch + 1
		res.History.Epochs = append(res.History.Epochs, epoch+1)
		res.History.TrainLoss = append(res.History.TrainLoss, trainLoss)
		res.History.ValLoss = append(res.History.ValLoss, valLoss)

		if t.log != nil {
			t.log.Debug("epoch finished",
				applogger.Int("epoch", epoch+1),
				applogger.Float64("train_loss", trainLoss),
				applogger.Float64("val_loss", valLoss),
			)
		}

		if valLoss < res.BestValLoss-t.cfg.MinDelta {
			res.BestValLoss = valLoss
			res.BestEpoch = epoch + 1
			patienceCtr = 0
			if err := t.persistBest(ctx, epoch+1, res); err != nil {
				t.state = StateIdle
				return nil, err
			}
		} else {
			patienceCtr++
		}

		if patienceCtr >= t.cfg.Patience {
			t.state = StateStoppedEarly
			res.StoppedEarly = true
			if t.log != nil {
				t.log.Info("early stopping triggered",
					applogger.Int("epoch", epoch+1),
					applogger.Int("best_epoch", res.BestEpoch),
				)
			}
			return res, nil
		}
	}

	t.state = StateStoppedMaxEpochs
	return res, nil
}

// runEpoch computes the mean loss over batches; total is summed first and
// divided once, keeping the result insensitive to batch completion order.
func (t *Trainer) runEpoch(batches []dataset.Batch, update bool) (float64, error) {
	var total float64
	for _, b := range batches {
		var loss float64
		var err error
		if update {
			loss, err = t.pred.Fit(b.Seqs, b.Targets)
		} else {
			loss, err = t.pred.Evaluate(b.Seqs, b.Targets)
		}
		if err != nil {
			return 0, fmt.Errorf("batch: %w", err)
		}
		if math.IsNaN(loss) || math.IsInf(loss, 0) {
			return 0, ErrDiverged
		}
		total += loss
	}
	return total / float64(len(batches)), nil
}

func (t *Trainer) persistBest(ctx context.Context, epoch int, res *Result) error {
	if t.sink == nil {
		return nil
	}
	ckpt, ok := t.pred.(domsvc.Checkpointable)
	if !ok {
		return nil
	}
	params, optState := ckpt.StateDict()
	cp := &Checkpoint{
		Version:        CheckpointVersion,
		Epoch:          epoch,
		Params:         params,
		OptimizerState: optState,
		BestValLoss:    res.BestValLoss,
		History:        res.History,
	}
	if err := t.sink.Save(ctx, cp); err != nil {
		return fmt.Errorf("persist checkpoint: %w", err)
	}
	return nil
}

// Resume restores a predictor from a checkpoint. Missing or malformed
// fields surface as CorruptCheckpointError from DecodeCheckpoint.
func Resume(pred domsvc.Predictor, cp *Checkpoint) error {
	ckpt, ok := pred.(domsvc.Checkpointable)
	if !ok {
		return fmt.Errorf("predictor %T cannot load checkpoints", pred)
	}
	if err := ckpt.LoadStateDict(cp.Params, cp.OptimizerState); err != nil {
		return fmt.Errorf("load state dict: %w", err)
	}
	return nil
}
