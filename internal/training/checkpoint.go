package training

import (
	"encoding/json"
	"fmt"
)

// CheckpointVersion is the current on-disk layout version.
const CheckpointVersion = 1

// History records per-epoch losses, parallel slices indexed by epoch.
type History struct {
	Epochs    []int     `json:"epochs"`
	TrainLoss []float64 `json:"train_loss"`
	ValLoss   []float64 `json:"val_loss"`
}

// Checkpoint is a versioned snapshot of model parameters, optimizer state
// and training progress. The layout uses explicit named fields so loaders
// in other languages can read it and corruption can be detected precisely.
type Checkpoint struct {
	Version        int       `json:"version"`
	Epoch          int       `json:"epoch"`
	Params         []float64 `json:"params"`
	OptimizerState []float64 `json:"optimizer_state"`
	BestValLoss    float64   `json:"best_val_loss"`
	History        History   `json:"history"`
}

// CorruptCheckpointError names the missing or invalid checkpoint field.
type CorruptCheckpointError struct {
	Field  string
	Reason string
}

func (e *CorruptCheckpointError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("corrupt checkpoint: field %q %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("corrupt checkpoint: missing field %q", e.Field)
}

// EncodeCheckpoint serializes a checkpoint to its JSON layout.
func EncodeCheckpoint(cp *Checkpoint) ([]byte, error) {
	b, err := json.Marshal(cp)
	if err != nil {
		return nil, fmt.Errorf("encode checkpoint: %w", err)
	}
	return b, nil
}

// DecodeCheckpoint parses and validates a checkpoint. Every required field
// must be present; a partial load is an error, never a silent default.
func DecodeCheckpoint(b []byte) (*Checkpoint, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("decode checkpoint: %w", err)
	}
	for _, field := range []string{"version", "epoch", "params", "optimizer_state", "best_val_loss", "history"} {
		if _, ok := raw[field]; !ok {
			return nil, &CorruptCheckpointError{Field: field}
		}
	}

	var cp Checkpoint
	if err := json.Unmarshal(b, &cp); err != nil {
		return nil, fmt.Errorf("decode checkpoint: %w", err)
	}
	if cp.Version != CheckpointVersion {
		return nil, &CorruptCheckpointError{
			Field:  "version",
			Reason: fmt.Sprintf("is %d, want %d", cp.Version, CheckpointVersion),
		}
	}
	if len(cp.Params) == 0 {
		return nil, &CorruptCheckpointError{Field: "params", Reason: "is empty"}
	}
	if len(cp.OptimizerState) != len(cp.Params) {
		return nil, &CorruptCheckpointError{
			Field:  "optimizer_state",
			Reason: fmt.Sprintf("length %d does not match params length %d", len(cp.OptimizerState), len(cp.Params)),
		}
	}
	return &cp, nil
}
