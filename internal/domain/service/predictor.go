package service

// Predictor is the capability contract every sequence model must satisfy:
// map one window of feature vectors to one scalar, and learn from batches
// of (window, target) pairs. The training harness and the forecast engine
// are written against this interface only; concrete architectures
// (linear, recurrent, attention) are substitutable.
type Predictor interface {
	// Predict runs read-only inference on one window (rows x features).
	// Safe for concurrent callers as long as no Fit runs at the same time.
	Predict(seq [][]float64) (float64, error)

	// Fit performs one forward/backward/update step over a batch and
	// returns the batch mean squared error before the update.
	Fit(seqs [][][]float64, targets []float64) (float64, error)

	// Evaluate computes the batch mean squared error without touching
	// parameters.
	Evaluate(seqs [][][]float64, targets []float64) (float64, error)
}

// Checkpointable exposes flat parameter and optimizer state vectors so the
// harness can persist and restore a model without knowing its shape.
type Checkpointable interface {
	StateDict() (params []float64, optState []float64)
	LoadStateDict(params []float64, optState []float64) error
}
