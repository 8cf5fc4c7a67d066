package repository

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"TrendCast/internal/training"
	applogger "TrendCast/pkg/logger"
)

// FileCheckpointStore persists training checkpoints as JSON files, one
// per symbol, under a base directory. Writes go through a temp file and
// rename so a crash mid-write never leaves a torn checkpoint.
type FileCheckpointStore struct {
	dir    string
	symbol string
	l      *applogger.Logger
}

func NewFileCheckpointStore(dir, symbol string, l *applogger.Logger) *FileCheckpointStore {
	return &FileCheckpointStore{dir: dir, symbol: symbol, l: l}
}

// ForSymbol returns a sink bound to another symbol sharing the same directory.
func (s *FileCheckpointStore) ForSymbol(symbol string) *FileCheckpointStore {
	return &FileCheckpointStore{dir: s.dir, symbol: symbol, l: s.l}
}

func (s *FileCheckpointStore) path() string {
	name := strings.ToLower(s.symbol) + ".ckpt.json"
	return filepath.Join(s.dir, name)
}

// Save writes the checkpoint atomically.
func (s *FileCheckpointStore) Save(ctx context.Context, cp *training.Checkpoint) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b, err := training.EncodeCheckpoint(cp)
	if err != nil {
		return fmt.Errorf("encode checkpoint: %w", err)
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("checkpoint dir: %w", err)
	}
	tmp := s.path() + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("write checkpoint: %w", err)
	}
	if err := os.Rename(tmp, s.path()); err != nil {
		return fmt.Errorf("commit checkpoint: %w", err)
	}
	if s.l != nil {
		s.l.Debug("checkpoint saved",
			applogger.String("symbol", s.symbol),
			applogger.Int("epoch", cp.Epoch),
			applogger.Float64("best_val_loss", cp.BestValLoss),
		)
	}
	return nil
}

// Load reads and validates the checkpoint for the bound symbol.
func (s *FileCheckpointStore) Load(ctx context.Context) (*training.Checkpoint, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b, err := os.ReadFile(s.path())
	if err != nil {
		return nil, fmt.Errorf("read checkpoint: %w", err)
	}
	cp, err := training.DecodeCheckpoint(b)
	if err != nil {
		return nil, err
	}
	return cp, nil
}

// Exists reports whether a checkpoint file is present for the symbol.
func (s *FileCheckpointStore) Exists() bool {
	_, err := os.Stat(s.path())
	return err == nil
}

var _ training.CheckpointSink = (*FileCheckpointStore)(nil)
