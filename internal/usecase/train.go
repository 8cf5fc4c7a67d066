package usecase

import (
	"context"
	"fmt"
	"time"

	"TrendCast/internal/dataset"
	"TrendCast/internal/domain/models"
	domrepo "TrendCast/internal/domain/repository"
	"TrendCast/internal/features"
	"TrendCast/internal/model"
	"TrendCast/internal/repository"
	"TrendCast/internal/training"
	applogger "TrendCast/pkg/logger"
)

// TrainConfig collects the knobs a training run needs.
type TrainConfig struct {
	SequenceLength int
	TrainRatio     float64
	ValRatio       float64
	TestRatio      float64
	BatchSize      int
	LearningRate   float64
	Momentum       float64
	Epochs         int
	Patience       int
	MinDelta       float64
	Seed           int64
	MinHistory     int
	CheckpointDir  string
	TargetColumn   string
}

// maxTrainingBars bounds how much history one run pulls from storage.
const maxTrainingBars = 5000

// TrainUseCase builds the feature matrix for a symbol, fits the scaler on
// the chronological training partition, trains a predictor with early
// stopping and reports test loss from the best checkpoint.
type TrainUseCase struct {
	store   domrepo.BarStore
	fe      *features.Engine
	ckpts   *repository.FileCheckpointStore
	cfg     TrainConfig
	metrics domrepo.Metrics
	log     *applogger.Logger
}

func NewTrainUseCase(store domrepo.BarStore, fe *features.Engine, ckpts *repository.FileCheckpointStore, cfg TrainConfig, metrics domrepo.Metrics, log *applogger.Logger) *TrainUseCase {
	return &TrainUseCase{store: store, fe: fe, ckpts: ckpts, cfg: cfg, metrics: metrics, log: log}
}

// Train runs the full pipeline for one symbol. epochs <= 0 uses the
// configured default.
func (uc *TrainUseCase) Train(ctx context.Context, symbol string, epochs int) (*models.TrainReport, error) {
	start := time.Now()
	if epochs <= 0 {
		epochs = uc.cfg.Epochs
	}

	bars, err := uc.store.GetLatestBars(ctx, symbol, maxTrainingBars)
	if err != nil {
		return nil, fmt.Errorf("load bars: %w", err)
	}
	if len(bars) < uc.cfg.MinHistory {
		return nil, fmt.Errorf("%w: %d bars, need %d", ErrInsufficientHistory, len(bars), uc.cfg.MinHistory)
	}

	table, err := uc.fe.Compute(bars)
	if err != nil {
		return nil, fmt.Errorf("compute features: %w", err)
	}
	table = table.DropNaNRows()

	m := table.Matrix()
	targetIdx := table.ColumnIndex(uc.cfg.TargetColumn)
	if targetIdx < 0 {
		return nil, fmt.Errorf("%w: %s", dataset.ErrUnknownTarget, uc.cfg.TargetColumn)
	}
	if len(m) <= uc.cfg.SequenceLength {
		return nil, fmt.Errorf("%w: %d usable rows after warm-up, window is %d",
			ErrInsufficientHistory, len(m), uc.cfg.SequenceLength)
	}

	// Scaler sees only the chronological training slice; val/test/inference
	// rows are transformed with the same statistics.
	trainRows := int(float64(len(m)) * uc.cfg.TrainRatio)
	if trainRows < 2 {
		return nil, fmt.Errorf("%w: train partition has %d rows", ErrInsufficientHistory, trainRows)
	}
	scaler := &dataset.Scaler{}
	degenerate, err := scaler.Fit(m[:trainRows])
	if err != nil {
		return nil, fmt.Errorf("fit scaler: %w", err)
	}
	if len(degenerate) > 0 && uc.log != nil {
		names := make([]string, 0, len(degenerate))
		for _, j := range degenerate {
			names = append(names, table.Columns()[j])
		}
		uc.log.Warn("constant feature columns, centered to zero",
			applogger.String("symbol", symbol),
			applogger.Strings("columns", names),
		)
	}
	scaled, err := scaler.Transform(m)
	if err != nil {
		return nil, fmt.Errorf("transform: %w", err)
	}

	windows, err := dataset.MakeWindowsFromMatrix(scaled, uc.cfg.SequenceLength, targetIdx)
	if err != nil {
		return nil, err
	}
	split, err := dataset.SplitWindows(windows, uc.cfg.TrainRatio, uc.cfg.ValRatio, uc.cfg.TestRatio)
	if err != nil {
		return nil, err
	}

	pred := model.NewLinear(uc.cfg.LearningRate, uc.cfg.Momentum, uc.cfg.Seed)
	sink := uc.ckpts.ForSymbol(symbol)
	trainer := training.NewTrainer(pred, training.Config{
		Epochs:    epochs,
		Patience:  uc.cfg.Patience,
		MinDelta:  uc.cfg.MinDelta,
		BatchSize: uc.cfg.BatchSize,
		Seed:      uc.cfg.Seed,
	}, sink, uc.log)

	res, err := trainer.Train(ctx, split.Train, split.Val)
	if err != nil {
		if uc.metrics != nil {
			uc.metrics.RecordError("train")
		}
		return nil, fmt.Errorf("train %s: %w", symbol, err)
	}

	// Evaluate the best checkpoint, not the final epoch, on held-out data.
	if sink.Exists() {
		cp, err := sink.Load(ctx)
		if err != nil {
			return nil, fmt.Errorf("reload best checkpoint: %w", err)
		}
		if err := training.Resume(pred, cp); err != nil {
			return nil, err
		}
	}
	var testLoss float64
	if len(split.Test) > 0 {
		seqs := make([][][]float64, len(split.Test))
		targets := make([]float64, len(split.Test))
		for i, w := range split.Test {
			seqs[i] = w.Seq
			targets[i] = w.Target
		}
		testLoss, err = pred.Evaluate(seqs, targets)
		if err != nil {
			return nil, fmt.Errorf("test evaluation: %w", err)
		}
	}

	if err := saveMeta(uc.cfg.CheckpointDir, symbol, &modelMeta{
		Columns:        table.Columns(),
		Mean:           scaler.Mean,
		Scale:          scaler.Scale,
		SequenceLength: uc.cfg.SequenceLength,
		TargetColumn:   uc.cfg.TargetColumn,
		TargetIndex:    targetIdx,
	}); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		n := len(res.History.TrainLoss)
		if n > 0 {
			uc.metrics.RecordTrainingEpoch(symbol, res.History.TrainLoss[n-1], res.History.ValLoss[n-1])
		}
		uc.metrics.RecordLatency("train", time.Since(start).Seconds())
	}
	if uc.log != nil {
		uc.log.Info("training finished",
			applogger.String("symbol", symbol),
			applogger.Int("epochs", res.Epochs),
			applogger.Int("best_epoch", res.BestEpoch),
			applogger.Float64("best_val_loss", res.BestValLoss),
			applogger.Float64("test_loss", testLoss),
			applogger.Bool("stopped_early", res.StoppedEarly),
		)
	}

	return &models.TrainReport{
		Symbol:       symbol,
		Epochs:       res.Epochs,
		BestEpoch:    res.BestEpoch,
		BestValLoss:  res.BestValLoss,
		TestLoss:     testLoss,
		StoppedEarly: res.StoppedEarly,
		Windows:      len(windows),
		Features:     table.NumCols(),
		TrainedAt:    time.Now().UTC(),
	}, nil
}
