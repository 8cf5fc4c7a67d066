// Package dataset turns feature tables into model-ready sequences:
// fixed-length windows with aligned targets, chronological train/val/test
// partitions, and train-fitted feature scaling.
package dataset

import (
	"errors"
	"fmt"
	"math"

	"TrendCast/internal/features"
)

var (
	// ErrInsufficientData indicates fewer rows than one window needs.
	ErrInsufficientData = errors.New("not enough rows for a single window")

	// ErrBadRatios indicates split ratios that do not sum to 1.
	ErrBadRatios = errors.New("split ratios must sum to 1.0")

	// ErrUnknownTarget indicates the target column is not in the table.
	ErrUnknownTarget = errors.New("unknown target column")
)

// Window is one contiguous L-row slice of feature vectors paired with the
// target value of the row immediately following it.
type Window struct {
	Seq    [][]float64 // length x features
	Target float64
}

// MakeWindows slices a feature table into one window per valid offset i in
// [0, n-length), target = row i+length's target column.
func MakeWindows(table *features.FeatureTable, length int, targetColumn string) ([]Window, error) {
	idx := table.ColumnIndex(targetColumn)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTarget, targetColumn)
	}
	return MakeWindowsFromMatrix(table.Matrix(), length, idx)
}

// MakeWindowsFromMatrix is MakeWindows over an already materialized
// (typically scaled) row matrix.
func MakeWindowsFromMatrix(m [][]float64, length int, targetIdx int) ([]Window, error) {
	n := len(m)
	if length <= 0 {
		return nil, fmt.Errorf("window length must be positive, got %d", length)
	}
	if length >= n {
		return nil, fmt.Errorf("%w: length %d >= %d rows", ErrInsufficientData, length, n)
	}
	if targetIdx < 0 || (n > 0 && targetIdx >= len(m[0])) {
		return nil, fmt.Errorf("%w: index %d", ErrUnknownTarget, targetIdx)
	}

	out := make([]Window, 0, n-length)
	for i := 0; i < n-length; i++ {
		out = append(out, Window{
			Seq:    m[i : i+length],
			Target: m[i+length][targetIdx],
		})
	}
	return out, nil
}

// Split holds three disjoint chronological partitions of a window sequence.
type Split struct {
	Train []Window
	Val   []Window
	Test  []Window
}

// SplitWindows partitions windows by index, never by shuffling: every
// train window predates every validation window, which predates every
// test window.
func SplitWindows(windows []Window, trainRatio, valRatio, testRatio float64) (Split, error) {
	if math.Abs(trainRatio+valRatio+testRatio-1.0) > 1e-6 {
		return Split{}, fmt.Errorf("%w: got %.6f + %.6f + %.6f",
			ErrBadRatios, trainRatio, valRatio, testRatio)
	}

	n := len(windows)
	trainEnd := int(float64(n) * trainRatio)
	valEnd := int(float64(n) * (trainRatio + valRatio))

	return Split{
		Train: windows[:trainEnd],
		Val:   windows[trainEnd:valEnd],
		Test:  windows[valEnd:],
	}, nil
}

// Batch is a training batch in the shape the Predictor contract consumes.
type Batch struct {
	Seqs    [][][]float64
	Targets []float64
}

// MakeBatches chunks windows into batches of at most size windows,
// preserving order. The trainer reshuffles train windows per epoch before
// calling this.
func MakeBatches(windows []Window, size int) []Batch {
	if size <= 0 {
		size = len(windows)
	}
	out := make([]Batch, 0, (len(windows)+size-1)/size)
	for start := 0; start < len(windows); start += size {
		end := start + size
		if end > len(windows) {
			end = len(windows)
		}
		b := Batch{
			Seqs:    make([][][]float64, 0, end-start),
			Targets: make([]float64, 0, end-start),
		}
		for _, w := range windows[start:end] {
			b.Seqs = append(b.Seqs, w.Seq)
			b.Targets = append(b.Targets, w.Target)
		}
		out = append(out, b)
	}
	return out
}
