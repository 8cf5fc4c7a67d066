package features

import "errors"

var (
	// ErrMissingColumn indicates a required OHLCV column is absent from a
	// reloaded table. Fatal configuration error, never a per-row skip.
	ErrMissingColumn = errors.New("required column missing")

	// ErrNoBars indicates feature computation was asked to run on an
	// empty series.
	ErrNoBars = errors.New("no bars to compute features from")
)
