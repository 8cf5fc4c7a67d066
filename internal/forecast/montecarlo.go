package forecast

import (
	"context"
	"fmt"
	"math/rand"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"
)

// MonteCarloConfig parameterizes the path ensemble.
type MonteCarloConfig struct {
	Simulations int     // number of paths, default 1000
	NoiseScale  float64 // stddev of the Gaussian perturbation, default 0.01
	Seed        int64   // base seed; path i uses Seed+i
	Workers     int     // parallel path workers, default NumCPU
}

func (c *MonteCarloConfig) applyDefaults() {
	if c.Simulations <= 0 {
		c.Simulations = 1000
	}
	if c.NoiseScale <= 0 {
		c.NoiseScale = 0.01
	}
	if c.Seed == 0 {
		c.Seed = 1
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
}

// MonteCarloResult holds per-step ensemble statistics, each slice of
// length horizon, with Percentile5[i] <= Median[i] <= Percentile95[i].
type MonteCarloResult struct {
	Mean         []float64
	Median       []float64
	Percentile5  []float64
	Percentile95 []float64
	Paths        [][]float64 // simulations x horizon
}

// MonteCarlo repeats the recursive forecast Simulations times, injecting
// independent zero-mean Gaussian noise into every feature of the rolling
// window before each prediction, and aggregates the paths into empirical
// bands. Paths run in parallel; each path has its own deterministic seed,
// so results are reproducible and independent of completion order.
func (e *Engine) MonteCarlo(ctx context.Context, lastWindow [][]float64, horizon int, cfg MonteCarloConfig) (*MonteCarloResult, error) {
	if horizon <= 0 {
		return nil, fmt.Errorf("horizon must be positive, got %d", horizon)
	}
	if len(lastWindow) == 0 {
		return nil, fmt.Errorf("empty window")
	}
	cfg.applyDefaults()

	paths := make([][]float64, cfg.Simulations)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)

	for i := 0; i < cfg.Simulations; i++ {
		g.Go(func() error {
			path, err := e.simulatePath(gctx, lastWindow, horizon, cfg.NoiseScale, cfg.Seed+int64(i))
			if err != nil {
				return err
			}
			paths[i] = path
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return aggregatePaths(paths, horizon), nil
}

// simulatePath runs one noisy autoregressive pass. The noise perturbs a
// copy handed to the predictor; the rolling window itself stays clean and
// is advanced with the raw prediction.
func (e *Engine) simulatePath(ctx context.Context, lastWindow [][]float64, horizon int, noiseScale float64, seed int64) ([]float64, error) {
	rng := rand.New(rand.NewSource(seed))
	window := cloneWindow(lastWindow)
	noisy := cloneWindow(lastWindow)
	path := make([]float64, 0, horizon)

	for step := 0; step < horizon; step++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		for r, row := range window {
			for c, v := range row {
				noisy[r][c] = v + rng.NormFloat64()*noiseScale
			}
		}
		pred, err := e.pred.Predict(noisy)
		if err != nil {
			return nil, fmt.Errorf("simulate step %d: %w", step, err)
		}
		path = append(path, pred)
		e.rollWindow(window, pred)
	}
	return path, nil
}

// aggregatePaths reduces the ensemble to per-step statistics. Mean, median
// and percentiles are order-independent over the completed set.
func aggregatePaths(paths [][]float64, horizon int) *MonteCarloResult {
	res := &MonteCarloResult{
		Mean:         make([]float64, horizon),
		Median:       make([]float64, horizon),
		Percentile5:  make([]float64, horizon),
		Percentile95: make([]float64, horizon),
		Paths:        paths,
	}

	col := make([]float64, len(paths))
	for step := 0; step < horizon; step++ {
		for i, p := range paths {
			col[i] = p[step]
		}
		res.Mean[step] = stat.Mean(col, nil)
		sort.Float64s(col)
		res.Median[step] = stat.Quantile(0.5, stat.Empirical, col, nil)
		res.Percentile5[step] = stat.Quantile(0.05, stat.Empirical, col, nil)
		res.Percentile95[step] = stat.Quantile(0.95, stat.Empirical, col, nil)
	}
	return res
}
