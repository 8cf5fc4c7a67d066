package dataset

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// ErrNotFitted indicates Transform was called before Fit.
var ErrNotFitted = errors.New("scaler has not been fitted")

// Scaler holds per-feature (mean, scale) pairs fit once on the training
// partition and applied, never refit, to validation/test/inference rows.
type Scaler struct {
	Mean  []float64
	Scale []float64
}

// Fit computes column-wise mean and sample standard deviation. It returns
// the indices of zero-deviation columns so the caller can log or drop
// them; Transform maps such columns to zero (centering only) instead of
// emitting Inf/NaN.
func (s *Scaler) Fit(m [][]float64) ([]int, error) {
	if len(m) == 0 {
		return nil, fmt.Errorf("fit scaler: empty matrix")
	}
	cols := len(m[0])
	s.Mean = make([]float64, cols)
	s.Scale = make([]float64, cols)

	colBuf := make([]float64, len(m))
	var degenerate []int
	for j := 0; j < cols; j++ {
		for i, row := range m {
			if len(row) != cols {
				return nil, fmt.Errorf("fit scaler: row %d has %d columns, want %d", i, len(row), cols)
			}
			colBuf[i] = row[j]
		}
		s.Mean[j] = stat.Mean(colBuf, nil)
		s.Scale[j] = stat.StdDev(colBuf, nil)
		if s.Scale[j] == 0 {
			degenerate = append(degenerate, j)
		}
	}
	return degenerate, nil
}

// Transform applies (x-mean)/scale row-wise into a new matrix.
func (s *Scaler) Transform(m [][]float64) ([][]float64, error) {
	if len(s.Mean) == 0 {
		return nil, ErrNotFitted
	}
	out := make([][]float64, len(m))
	for i, row := range m {
		if len(row) != len(s.Mean) {
			return nil, fmt.Errorf("transform: row %d has %d columns, want %d", i, len(row), len(s.Mean))
		}
		r := make([]float64, len(row))
		for j, v := range row {
			if s.Scale[j] == 0 {
				r[j] = 0
				continue
			}
			r[j] = (v - s.Mean[j]) / s.Scale[j]
		}
		out[i] = r
	}
	return out, nil
}

// InverseValue maps one scaled value of column j back to its raw units.
func (s *Scaler) InverseValue(j int, v float64) (float64, error) {
	if len(s.Mean) == 0 {
		return 0, ErrNotFitted
	}
	if j < 0 || j >= len(s.Mean) {
		return 0, fmt.Errorf("inverse: column %d out of range", j)
	}
	return v*s.Scale[j] + s.Mean[j], nil
}
