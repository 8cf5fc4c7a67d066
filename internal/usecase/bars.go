package usecase

import (
	"context"
	"fmt"
	"time"

	"TrendCast/internal/domain/models"
	domrepo "TrendCast/internal/domain/repository"
)

// BarsUseCase serves stored bar history and storage health.
type BarsUseCase struct {
	store domrepo.BarStore
}

func NewBarsUseCase(store domrepo.BarStore) *BarsUseCase {
	return &BarsUseCase{store: store}
}

// GetLatest returns the most recent bars in chronological order.
func (uc *BarsUseCase) GetLatest(ctx context.Context, symbol string, limit int) ([]models.Bar, error) {
	if symbol == "" {
		return nil, fmt.Errorf("symbol required")
	}
	if limit <= 0 {
		limit = 100
	}
	bars, err := uc.store.GetLatestBars(ctx, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("get bars: %w", err)
	}
	return bars, nil
}

// GetRange returns bars between two dates inclusive, in chronological order.
func (uc *BarsUseCase) GetRange(ctx context.Context, symbol string, from, to time.Time) ([]models.Bar, error) {
	if symbol == "" {
		return nil, fmt.Errorf("symbol required")
	}
	if to.Before(from) {
		return nil, fmt.Errorf("range end %s before start %s", to.Format(time.DateOnly), from.Format(time.DateOnly))
	}
	bars, err := uc.store.GetBars(ctx, symbol, from, to)
	if err != nil {
		return nil, fmt.Errorf("get bars: %w", err)
	}
	return bars, nil
}

// Ingest validates and stores a batch of bars.
func (uc *BarsUseCase) Ingest(ctx context.Context, bars []models.Bar) (int, error) {
	if err := models.ValidateBars(bars); err != nil {
		return 0, fmt.Errorf("validate bars: %w", err)
	}
	if err := uc.store.SaveBars(ctx, bars); err != nil {
		return 0, err
	}
	return len(bars), nil
}

// Health checks the underlying store with a short deadline.
func (uc *BarsUseCase) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return uc.store.Health(ctx)
}
