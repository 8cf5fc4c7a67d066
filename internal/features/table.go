package features

import (
	"fmt"
	"math"
	"time"

	"TrendCast/internal/domain/models"
)

// BaseColumns are the five OHLCV columns every table starts from.
var BaseColumns = []string{"open", "high", "low", "close", "volume"}

// FeatureTable is a columnar store of feature series, one row per trading
// day, rows in ascending date order. Every column has the same length;
// indicators compute NaN during warm-up rather than omitting rows.
type FeatureTable struct {
	dates   []time.Time
	columns []string
	data    map[string][]float64
}

// NewFeatureTable creates an empty table over the given date index.
func NewFeatureTable(dates []time.Time) *FeatureTable {
	return &FeatureTable{
		dates:   dates,
		columns: make([]string, 0, 64),
		data:    make(map[string][]float64, 64),
	}
}

// FromBars builds a table holding just the OHLCV columns.
func FromBars(bars []models.Bar) *FeatureTable {
	n := len(bars)
	dates := make([]time.Time, n)
	open := make([]float64, n)
	high := make([]float64, n)
	low := make([]float64, n)
	closes := make([]float64, n)
	vol := make([]float64, n)
	for i, b := range bars {
		dates[i] = b.Date
		open[i] = b.Open
		high[i] = b.High
		low[i] = b.Low
		closes[i] = b.Close
		vol[i] = b.Volume
	}
	t := NewFeatureTable(dates)
	_ = t.AddColumn("open", open)
	_ = t.AddColumn("high", high)
	_ = t.AddColumn("low", low)
	_ = t.AddColumn("close", closes)
	_ = t.AddColumn("volume", vol)
	return t
}

// FromColumns rebuilds a table from persisted columns. The five OHLCV
// columns are required; their absence is a configuration error.
func FromColumns(dates []time.Time, columns []string, data map[string][]float64) (*FeatureTable, error) {
	t := NewFeatureTable(dates)
	for _, name := range columns {
		vals, ok := data[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
		if err := t.AddColumn(name, vals); err != nil {
			return nil, err
		}
	}
	for _, name := range BaseColumns {
		if _, ok := t.data[name]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
	}
	return t, nil
}

// AddColumn appends a named series. Length must match the date index and
// names must be unique.
func (t *FeatureTable) AddColumn(name string, vals []float64) error {
	if len(vals) != len(t.dates) {
		return fmt.Errorf("column %s: length %d != %d rows", name, len(vals), len(t.dates))
	}
	if _, dup := t.data[name]; dup {
		return fmt.Errorf("column %s: already present", name)
	}
	t.columns = append(t.columns, name)
	t.data[name] = vals
	return nil
}

// NumRows returns the row count.
func (t *FeatureTable) NumRows() int { return len(t.dates) }

// NumCols returns the column count.
func (t *FeatureTable) NumCols() int { return len(t.columns) }

// Columns returns column names in insertion order.
func (t *FeatureTable) Columns() []string { return t.columns }

// Dates returns the date index.
func (t *FeatureTable) Dates() []time.Time { return t.dates }

// Column returns a named series.
func (t *FeatureTable) Column(name string) ([]float64, bool) {
	v, ok := t.data[name]
	return v, ok
}

// ColumnIndex returns the positional index of a column, or -1.
func (t *FeatureTable) ColumnIndex(name string) int {
	for i, c := range t.columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Row materializes row i as a vector in column order.
func (t *FeatureTable) Row(i int) []float64 {
	out := make([]float64, len(t.columns))
	for j, c := range t.columns {
		out[j] = t.data[c][i]
	}
	return out
}

// Matrix materializes all rows (rows x features).
func (t *FeatureTable) Matrix() [][]float64 {
	out := make([][]float64, len(t.dates))
	for i := range t.dates {
		out[i] = t.Row(i)
	}
	return out
}

// DropNaNRows returns a new table keeping only rows where every column is
// finite. Caller invokes this once after feature computation, before
// windowing.
func (t *FeatureTable) DropNaNRows() *FeatureTable {
	keep := make([]int, 0, len(t.dates))
	for i := range t.dates {
		ok := true
		for _, c := range t.columns {
			v := t.data[c][i]
			if math.IsNaN(v) || math.IsInf(v, 0) {
				ok = false
				break
			}
		}
		if ok {
			keep = append(keep, i)
		}
	}

	dates := make([]time.Time, len(keep))
	for j, i := range keep {
		dates[j] = t.dates[i]
	}
	out := NewFeatureTable(dates)
	for _, c := range t.columns {
		src := t.data[c]
		vals := make([]float64, len(keep))
		for j, i := range keep {
			vals[j] = src[i]
		}
		_ = out.AddColumn(c, vals)
	}
	return out
}
