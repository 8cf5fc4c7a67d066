package features

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func linear(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i + 1)
	}
	return out
}

func wavy(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 100 + 0.1*float64(i) + 5*math.Sin(float64(i)/7)
	}
	return out
}

func TestSMAWarmupAndValue(t *testing.T) {
	x := linear(50)
	sma := SMA(x, 20)
	require.Len(t, sma, 50)

	for i := 0; i < 19; i++ {
		assert.True(t, math.IsNaN(sma[i]), "index %d should be warm-up NaN", i)
	}
	// mean of 1..20
	assert.InDelta(t, 10.5, sma[19], 1e-12)
	// trailing mean of a linear series is close - 9.5
	assert.InDelta(t, x[49]-9.5, sma[49], 1e-12)
}

func TestSMAWindowLargerThanSeries(t *testing.T) {
	sma := SMA(linear(5), 10)
	for i, v := range sma {
		assert.True(t, math.IsNaN(v), "index %d", i)
	}
}

func TestEMADefinedFromStart(t *testing.T) {
	x := wavy(30)
	e := EMA(x, 10)
	assert.Equal(t, x[0], e[0])
	for i, v := range e {
		assert.False(t, math.IsNaN(v), "index %d", i)
	}
}

func TestMACDHistogramIsDifference(t *testing.T) {
	x := wavy(120)
	macd, sig, hist := MACD(x, 12, 26, 9)
	for i := range x {
		assert.InDelta(t, macd[i]-sig[i], hist[i], 1e-12)
	}
}

func TestRSIMonotonicGainsIsHundred(t *testing.T) {
	rsi := RSI(linear(40), 14)
	for i := 0; i < 13; i++ {
		assert.True(t, math.IsNaN(rsi[i]))
	}
	// warm-up is window-1 rows: the undefined first diff counts as zero
	// gain/loss, so the first full window ends at index 13
	for i := 13; i < 40; i++ {
		assert.InDelta(t, 100, rsi[i], 1e-12)
	}
}

func TestRSIFlatSeriesUndefined(t *testing.T) {
	flat := make([]float64, 30)
	for i := range flat {
		flat[i] = 50
	}
	rsi := RSI(flat, 14)
	for _, v := range rsi {
		assert.True(t, math.IsNaN(v))
	}
}

func TestRSIWithinBounds(t *testing.T) {
	x := wavy(200)
	rsi := RSI(x, 14)
	for i := 13; i < len(rsi); i++ {
		require.False(t, math.IsNaN(rsi[i]), "index %d", i)
		assert.GreaterOrEqual(t, rsi[i], 0.0)
		assert.LessOrEqual(t, rsi[i], 100.0)
	}
}

func TestStochasticFlatWindowUndefined(t *testing.T) {
	flat := make([]float64, 30)
	for i := range flat {
		flat[i] = 10
	}
	k, _ := Stochastic(flat, flat, flat, 14, 3)
	for _, v := range k {
		assert.True(t, math.IsNaN(v))
	}
}

func TestStochasticBounds(t *testing.T) {
	c := wavy(120)
	h := make([]float64, len(c))
	l := make([]float64, len(c))
	for i := range c {
		h[i] = c[i] + 1
		l[i] = c[i] - 1
	}
	k, d := Stochastic(h, l, c, 14, 3)
	for i := 13; i < len(k); i++ {
		require.False(t, math.IsNaN(k[i]))
		assert.GreaterOrEqual(t, k[i], 0.0)
		assert.LessOrEqual(t, k[i], 100.0)
	}
	// %D warms up two rows later
	for i := 15; i < len(d); i++ {
		require.False(t, math.IsNaN(d[i]))
	}
}

func TestWilliamsRRange(t *testing.T) {
	c := wavy(120)
	h := make([]float64, len(c))
	l := make([]float64, len(c))
	for i := range c {
		h[i] = c[i] + 2
		l[i] = c[i] - 2
	}
	wr := WilliamsR(h, l, c, 14)
	for i := 13; i < len(wr); i++ {
		require.False(t, math.IsNaN(wr[i]))
		assert.GreaterOrEqual(t, wr[i], -100.0)
		assert.LessOrEqual(t, wr[i], 0.0)
	}
}

func TestMFIAllPositiveFlow(t *testing.T) {
	c := linear(40)
	v := make([]float64, len(c))
	for i := range v {
		v[i] = 1000
	}
	mfi := MFI(c, c, c, v, 14)
	assert.True(t, math.IsNaN(mfi[12]))
	for i := 13; i < len(mfi); i++ {
		assert.InDelta(t, 100, mfi[i], 1e-12)
	}
}

func TestBollingerOrdering(t *testing.T) {
	c := wavy(80)
	upper, mid, lower, width := Bollinger(c, 20, 2)
	sma := SMA(c, 20)
	for i := 19; i < len(c); i++ {
		require.False(t, math.IsNaN(mid[i]))
		assert.InDelta(t, sma[i], mid[i], 1e-12)
		assert.Less(t, lower[i], mid[i])
		assert.Greater(t, upper[i], mid[i])
		assert.Greater(t, width[i], 0.0)
	}
}

func TestOBVAccumulation(t *testing.T) {
	close := []float64{10, 11, 11, 9, 12}
	vol := []float64{100, 200, 300, 400, 500}
	obv := OBV(close, vol)
	assert.Equal(t, []float64{0, 200, 200, -200, 300}, obv)
}

func TestVWAPZeroVolumeUndefined(t *testing.T) {
	c := linear(10)
	zero := make([]float64, 10)
	vwap := VWAP(c, c, c, zero)
	for _, v := range vwap {
		assert.True(t, math.IsNaN(v))
	}
}

func TestVWAPConstantPrice(t *testing.T) {
	n := 10
	c := make([]float64, n)
	v := make([]float64, n)
	for i := range c {
		c[i] = 25
		v[i] = float64(i + 1)
	}
	vwap := VWAP(c, c, c, v)
	for _, got := range vwap {
		assert.InDelta(t, 25, got, 1e-12)
	}
}

func TestReturnsAlignment(t *testing.T) {
	c := []float64{100, 110, 121}
	simple, logr := Returns(c, 1)
	assert.True(t, math.IsNaN(simple[0]))
	assert.InDelta(t, 0.1, simple[1], 1e-12)
	assert.InDelta(t, 0.1, simple[2], 1e-12)
	assert.InDelta(t, math.Log(1.1), logr[1], 1e-12)
}

func TestMomentum(t *testing.T) {
	c := []float64{100, 102, 104, 106}
	abs, pct := Momentum(c, 2)
	assert.True(t, math.IsNaN(abs[1]))
	assert.InDelta(t, 4, abs[2], 1e-12)
	assert.InDelta(t, 4, pct[2], 1e-12)
	assert.InDelta(t, 6.0/102*100, pct[3], 1e-9)
}

func TestVolatilityAnnualization(t *testing.T) {
	// alternating +1%/-1% daily returns around 100
	c := make([]float64, 40)
	c[0] = 100
	for i := 1; i < len(c); i++ {
		if i%2 == 1 {
			c[i] = c[i-1] * 1.01
		} else {
			c[i] = c[i-1] * 0.99
		}
	}
	vol := Volatility(c, 10)
	for i := 10; i < len(vol); i++ {
		require.False(t, math.IsNaN(vol[i]), "index %d", i)
		assert.Greater(t, vol[i], 0.0)
	}
}

func TestTrueRangeFirstRow(t *testing.T) {
	h := []float64{12, 15}
	l := []float64{9, 11}
	c := []float64{10, 14}
	tr := trueRange(h, l, c)
	assert.Equal(t, 3.0, tr[0])
	// max(15-11, |15-10|, |11-10|) = 5
	assert.Equal(t, 5.0, tr[1])
}

func TestADXBounds(t *testing.T) {
	c := wavy(200)
	h := make([]float64, len(c))
	l := make([]float64, len(c))
	for i := range c {
		h[i] = c[i] + 1.5
		l[i] = c[i] - 1.5
	}
	adx, plusDI, minusDI := ADX(h, l, c, 14)
	for i := 40; i < len(adx); i++ {
		require.False(t, math.IsNaN(adx[i]), "index %d", i)
		assert.GreaterOrEqual(t, adx[i], 0.0)
		assert.LessOrEqual(t, adx[i], 100.0)
		assert.GreaterOrEqual(t, plusDI[i], 0.0)
		assert.GreaterOrEqual(t, minusDI[i], 0.0)
	}
}
