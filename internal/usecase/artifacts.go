package usecase

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"TrendCast/internal/dataset"
)

// modelMeta pins everything inference needs beyond the checkpoint: the
// exact feature column order the model was trained on, the fitted scaler,
// and the window geometry. Saved beside the checkpoint as JSON.
type modelMeta struct {
	Columns        []string  `json:"columns"`
	Mean           []float64 `json:"mean"`
	Scale          []float64 `json:"scale"`
	SequenceLength int       `json:"sequence_length"`
	TargetColumn   string    `json:"target_column"`
	TargetIndex    int       `json:"target_index"`
}

func metaPath(dir, symbol string) string {
	return filepath.Join(dir, strings.ToLower(symbol)+".meta.json")
}

func saveMeta(dir, symbol string, m *modelMeta) error {
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encode meta: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("meta dir: %w", err)
	}
	tmp := metaPath(dir, symbol) + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("write meta: %w", err)
	}
	return os.Rename(tmp, metaPath(dir, symbol))
}

func loadMeta(dir, symbol string) (*modelMeta, error) {
	b, err := os.ReadFile(metaPath(dir, symbol))
	if err != nil {
		return nil, fmt.Errorf("read meta: %w", err)
	}
	var m modelMeta
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("decode meta: %w", err)
	}
	if len(m.Columns) == 0 || len(m.Mean) != len(m.Columns) || len(m.Scale) != len(m.Columns) {
		return nil, fmt.Errorf("decode meta: inconsistent column layout")
	}
	if m.SequenceLength <= 0 {
		return nil, fmt.Errorf("decode meta: bad sequence length %d", m.SequenceLength)
	}
	return &m, nil
}

func (m *modelMeta) scaler() *dataset.Scaler {
	return &dataset.Scaler{Mean: m.Mean, Scale: m.Scale}
}
