package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"TrendCast/internal/domain/models"
	domrepo "TrendCast/internal/domain/repository"
	pkgch "TrendCast/pkg/clickhouse"
	applogger "TrendCast/pkg/logger"
)

const barsTable = "trendcast.daily_bars"

var barsSchema = []string{
	`CREATE DATABASE IF NOT EXISTS trendcast`,
	`CREATE TABLE IF NOT EXISTS trendcast.daily_bars (
        symbol LowCardinality(String),
        date   Date,
        open   Float64,
        high   Float64,
        low    Float64,
        close  Float64,
        volume Float64
    ) ENGINE = ReplacingMergeTree
    ORDER BY (symbol, date)`,
}

// CHBarStore implements BarStore backed by ClickHouse. The table uses
// ReplacingMergeTree so re-ingesting a day upserts the bar.
type CHBarStore struct {
	ch *pkgch.Client
	l  *applogger.Logger
}

func NewCHBarStore(ch *pkgch.Client, l *applogger.Logger) domrepo.BarStore {
	return &CHBarStore{ch: ch, l: l}
}

func (s *CHBarStore) Init(ctx context.Context) error {
	if err := s.ch.InitSchema(ctx, barsSchema); err != nil {
		return fmt.Errorf("bar store init: %w", err)
	}
	return nil
}

func (s *CHBarStore) SaveBars(ctx context.Context, bars []models.Bar) error {
	if len(bars) == 0 {
		return nil
	}
	// Multi-row VALUES insert chunked to bound statement size.
	const chunkSize = 2000
	for start := 0; start < len(bars); start += chunkSize {
		end := min(start+chunkSize, len(bars))

		values := make([]string, 0, end-start)
		args := make([]any, 0, (end-start)*7)
		for _, b := range bars[start:end] {
			if b.Symbol == "" || !b.Usable() {
				continue
			}
			values = append(values, "(?, ?, ?, ?, ?, ?, ?)")
			args = append(args, b.Symbol, b.Date, b.Open, b.High, b.Low, b.Close, b.Volume)
		}
		if len(values) == 0 {
			continue
		}
		q := fmt.Sprintf("INSERT INTO %s (symbol, date, open, high, low, close, volume) VALUES %s",
			barsTable, strings.Join(values, ","))
		if _, err := s.ch.DB().ExecContext(ctx, q, args...); err != nil {
			if s.l != nil {
				s.l.Error("clickhouse save_bars error",
					applogger.String("symbol", bars[start].Symbol),
					applogger.Int("rows", len(values)),
					applogger.Error(err),
				)
			}
			return fmt.Errorf("save bars: %w", err)
		}
	}
	return nil
}

func (s *CHBarStore) GetBars(ctx context.Context, symbol string, from, to time.Time) ([]models.Bar, error) {
	start := time.Now()
	q := fmt.Sprintf(`SELECT symbol, date, open, high, low, close, volume
        FROM %s FINAL
        WHERE symbol = ? AND date >= ? AND date <= ?
        ORDER BY date ASC`, barsTable)
	rows, err := s.ch.DB().QueryContext(ctx, q, symbol, from, to)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse get_bars query error",
				applogger.String("symbol", symbol),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("get bars: %w", err)
	}
	defer rows.Close()

	out := make([]models.Bar, 0, 1024)
	for rows.Next() {
		var b models.Bar
		if err := rows.Scan(&b.Symbol, &b.Date, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			return nil, fmt.Errorf("scan bar: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	if s.l != nil {
		s.l.Debug("clickhouse get_bars ok",
			applogger.String("symbol", symbol),
			applogger.Int("rows", len(out)),
			applogger.Duration("duration", time.Since(start)),
		)
	}
	return out, nil
}

func (s *CHBarStore) GetLatestBars(ctx context.Context, symbol string, n int) ([]models.Bar, error) {
	q := fmt.Sprintf(`SELECT symbol, date, open, high, low, close, volume
        FROM %s FINAL
        WHERE symbol = ?
        ORDER BY date DESC
        LIMIT ?`, barsTable)
	rows, err := s.ch.DB().QueryContext(ctx, q, symbol, n)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse latest_bars query error",
				applogger.String("symbol", symbol),
				applogger.Int("limit", n),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("get latest bars: %w", err)
	}
	defer rows.Close()

	tmp := make([]models.Bar, 0, n)
	for rows.Next() {
		var b models.Bar
		if err := rows.Scan(&b.Symbol, &b.Date, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			return nil, fmt.Errorf("scan bar: %w", err)
		}
		tmp = append(tmp, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	// reverse to chronological order
	for i, j := 0, len(tmp)-1; i < j; i, j = i+1, j-1 {
		tmp[i], tmp[j] = tmp[j], tmp[i]
	}
	return tmp, nil
}

func (s *CHBarStore) Health(ctx context.Context) error {
	return s.ch.Health(ctx)
}

func (s *CHBarStore) Close() error {
	return s.ch.Close()
}
