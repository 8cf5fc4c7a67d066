package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TrendCast/internal/training"
)

func testCheckpoint() *training.Checkpoint {
	return &training.Checkpoint{
		Version:        training.CheckpointVersion,
		Epoch:          4,
		Params:         []float64{0.1, -0.2, 0.3},
		OptimizerState: []float64{0.01, 0.02, 0.03},
		BestValLoss:    0.125,
		History: training.History{
			Epochs:    []int{0, 1, 2, 3, 4},
			TrainLoss: []float64{1, 0.8, 0.6, 0.5, 0.4},
			ValLoss:   []float64{1.1, 0.9, 0.7, 0.6, 0.5},
		},
	}
}

func TestFileCheckpointStoreRoundTrip(t *testing.T) {
	store := NewFileCheckpointStore(t.TempDir(), "AAPL", nil)
	ctx := context.Background()

	assert.False(t, store.Exists())

	want := testCheckpoint()
	require.NoError(t, store.Save(ctx, want))
	assert.True(t, store.Exists())

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestFileCheckpointStoreLowercasesSymbol(t *testing.T) {
	dir := t.TempDir()
	store := NewFileCheckpointStore(dir, "TSLA", nil)
	require.NoError(t, store.Save(context.Background(), testCheckpoint()))

	_, err := os.Stat(filepath.Join(dir, "tsla.ckpt.json"))
	assert.NoError(t, err)
}

func TestFileCheckpointStoreForSymbolIsolation(t *testing.T) {
	base := NewFileCheckpointStore(t.TempDir(), "", nil)
	ctx := context.Background()

	a := base.ForSymbol("AAPL")
	b := base.ForSymbol("MSFT")

	cp := testCheckpoint()
	require.NoError(t, a.Save(ctx, cp))

	assert.True(t, a.Exists())
	assert.False(t, b.Exists())
	_, err := b.Load(ctx)
	assert.Error(t, err)
}

func TestFileCheckpointStoreSaveOverwrites(t *testing.T) {
	store := NewFileCheckpointStore(t.TempDir(), "AAPL", nil)
	ctx := context.Background()

	first := testCheckpoint()
	require.NoError(t, store.Save(ctx, first))

	second := testCheckpoint()
	second.Epoch = 9
	second.BestValLoss = 0.05
	require.NoError(t, store.Save(ctx, second))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 9, got.Epoch)
	assert.Equal(t, 0.05, got.BestValLoss)
}

func TestFileCheckpointStoreRejectsTornFile(t *testing.T) {
	dir := t.TempDir()
	store := NewFileCheckpointStore(dir, "AAPL", nil)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "aapl.ckpt.json"), []byte(`{"version":`), 0o644))

	_, err := store.Load(context.Background())
	assert.Error(t, err)
}

func TestFileCheckpointStoreHonorsCancelledContext(t *testing.T) {
	store := NewFileCheckpointStore(t.TempDir(), "AAPL", nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, store.Save(ctx, testCheckpoint()), context.Canceled)
	_, err := store.Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
