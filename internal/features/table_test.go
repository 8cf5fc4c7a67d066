package features

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tableDates(n int) []time.Time {
	out := make([]time.Time, n)
	d := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range out {
		out[i] = d.AddDate(0, 0, i)
	}
	return out
}

func TestFromColumnsRebuildsTable(t *testing.T) {
	dates := tableDates(3)
	cols := []string{"open", "high", "low", "close", "volume", "sma_5"}
	data := map[string][]float64{
		"open":   {1, 2, 3},
		"high":   {2, 3, 4},
		"low":    {0.5, 1.5, 2.5},
		"close":  {1.5, 2.5, 3.5},
		"volume": {10, 20, 30},
		"sma_5":  {math.NaN(), math.NaN(), 2.5},
	}

	tb, err := FromColumns(dates, cols, data)
	require.NoError(t, err)
	assert.Equal(t, cols, tb.Columns())
	assert.Equal(t, 3, tb.NumRows())
	assert.Equal(t, 2.0, tb.Row(1)[0])
	assert.True(t, math.IsNaN(tb.Row(1)[5]))
	assert.Equal(t, 2.5, tb.Row(2)[5])
}

func TestFromColumnsRequiresOHLCV(t *testing.T) {
	dates := tableDates(2)
	data := map[string][]float64{
		"open": {1, 2}, "high": {2, 3}, "low": {0, 1}, "close": {1, 2},
	}
	_, err := FromColumns(dates, []string{"open", "high", "low", "close"}, data)
	assert.ErrorIs(t, err, ErrMissingColumn)
}

func TestFromColumnsRejectsAbsentSeries(t *testing.T) {
	_, err := FromColumns(tableDates(2), []string{"open"}, map[string][]float64{})
	assert.ErrorIs(t, err, ErrMissingColumn)
}

func TestAddColumnRejectsLengthMismatchAndDuplicates(t *testing.T) {
	tb := NewFeatureTable(tableDates(3))
	require.NoError(t, tb.AddColumn("close", []float64{1, 2, 3}))
	assert.Error(t, tb.AddColumn("short", []float64{1}))
	assert.Error(t, tb.AddColumn("close", []float64{4, 5, 6}))
}

func TestDropNaNRowsKeepsDateAlignment(t *testing.T) {
	tb := NewFeatureTable(tableDates(4))
	require.NoError(t, tb.AddColumn("close", []float64{1, math.NaN(), 3, 4}))
	require.NoError(t, tb.AddColumn("ind", []float64{math.Inf(1), 2, 3, 4}))

	clean := tb.DropNaNRows()
	require.Equal(t, 2, clean.NumRows())
	assert.Equal(t, tableDates(4)[2], clean.Dates()[0])
	vals, ok := clean.Column("close")
	require.True(t, ok)
	assert.Equal(t, []float64{3, 4}, vals)
}
