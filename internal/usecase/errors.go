package usecase

import "errors"

var (
	// ErrInsufficientHistory indicates too few stored bars to compute
	// features and at least one training window.
	ErrInsufficientHistory = errors.New("insufficient bar history")

	// ErrModelNotTrained indicates no checkpoint exists for the symbol.
	ErrModelNotTrained = errors.New("no trained model for symbol")
)
