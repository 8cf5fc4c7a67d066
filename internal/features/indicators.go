package features

import "math"

// Indicator formulas. Each function returns series aligned with its input;
// warm-up rows are NaN. Degenerate denominators follow a per-indicator
// policy (NaN or the natural limiting value) and never panic.

// SMA is the arithmetic mean over a trailing window.
func SMA(close []float64, window int) []float64 {
	return rollingMean(close, window)
}

// EMA is the span-parameterized exponential moving average.
func EMA(close []float64, span int) []float64 {
	return ema(close, span)
}

// MACD returns the MACD line, its signal line, and their difference.
func MACD(close []float64, fast, slow, signal int) (macd, sig, hist []float64) {
	emaFast := ema(close, fast)
	emaSlow := ema(close, slow)
	macd = make([]float64, len(close))
	for i := range close {
		macd[i] = emaFast[i] - emaSlow[i]
	}
	sig = ema(macd, signal)
	hist = make([]float64, len(close))
	for i := range close {
		hist[i] = macd[i] - sig[i]
	}
	return macd, sig, hist
}

// trueRange is max(high-low, |high-prevClose|, |low-prevClose|). The first
// entry has no previous close and reduces to high-low.
func trueRange(high, low, close []float64) []float64 {
	tr := make([]float64, len(close))
	for i := range close {
		hl := high[i] - low[i]
		if i == 0 {
			tr[i] = hl
			continue
		}
		hc := math.Abs(high[i] - close[i-1])
		lc := math.Abs(low[i] - close[i-1])
		tr[i] = math.Max(hl, math.Max(hc, lc))
	}
	return tr
}

// ATR is the moving average of true range.
func ATR(high, low, close []float64, window int) []float64 {
	return rollingMean(trueRange(high, low, close), window)
}

// ADX returns directional trend strength: adx, +DI and -DI.
func ADX(high, low, close []float64, window int) (adx, plusDI, minusDI []float64) {
	n := len(close)
	plusDM := filled(n)
	minusDM := filled(n)
	for i := 1; i < n; i++ {
		up := high[i] - high[i-1]
		down := low[i-1] - low[i]
		plusDM[i], minusDM[i] = 0, 0
		if up > down && up > 0 {
			plusDM[i] = up
		}
		if down > up && down > 0 {
			minusDM[i] = down
		}
	}

	atr := rollingMean(trueRange(high, low, close), window)
	smPlus := rollingMean(plusDM, window)
	smMinus := rollingMean(minusDM, window)

	plusDI = filled(n)
	minusDI = filled(n)
	dx := filled(n)
	for i := 0; i < n; i++ {
		if math.IsNaN(atr[i]) || math.IsNaN(smPlus[i]) || math.IsNaN(smMinus[i]) || atr[i] == 0 {
			continue
		}
		plusDI[i] = 100 * smPlus[i] / atr[i]
		minusDI[i] = 100 * smMinus[i] / atr[i]
		if sum := plusDI[i] + minusDI[i]; sum != 0 {
			dx[i] = 100 * math.Abs(plusDI[i]-minusDI[i]) / sum
		}
	}
	adx = rollingMean(dx, window)
	return adx, plusDI, minusDI
}

// RSI maps the ratio of smoothed gains to smoothed losses into [0, 100].
// A zero loss average with a nonzero gain average is the limiting value
// 100, not an error; zero gains and zero losses stay NaN.
func RSI(close []float64, window int) []float64 {
	n := len(close)
	delta := diff(close, 1)
	gains := make([]float64, n)
	losses := make([]float64, n)
	// The undefined first diff counts as zero gain and zero loss, so the
	// first window yields a value at index window-1.
	for i := 1; i < n; i++ {
		if delta[i] > 0 {
			gains[i] = delta[i]
		} else if delta[i] < 0 {
			losses[i] = -delta[i]
		}
	}

	avgGain := rollingMean(gains, window)
	avgLoss := rollingMean(losses, window)
	out := filled(n)
	for i := 0; i < n; i++ {
		g, l := avgGain[i], avgLoss[i]
		if math.IsNaN(g) || math.IsNaN(l) {
			continue
		}
		if l == 0 {
			if g > 0 {
				out[i] = 100
			}
			continue
		}
		rs := g / l
		out[i] = 100 - 100/(1+rs)
	}
	return out
}

// Stochastic returns %K and its moving average %D. A window where the
// rolling high equals the rolling low leaves %K undefined (NaN).
func Stochastic(high, low, close []float64, kWindow, dWindow int) (k, d []float64) {
	lowMin := rollingMin(low, kWindow)
	highMax := rollingMax(high, kWindow)
	k = filled(len(close))
	for i := range close {
		rng := highMax[i] - lowMin[i]
		if math.IsNaN(rng) || rng == 0 {
			continue
		}
		k[i] = 100 * (close[i] - lowMin[i]) / rng
	}
	d = rollingMean(k, dWindow)
	return k, d
}

// WilliamsR is the %K mirror scaled to [-100, 0].
func WilliamsR(high, low, close []float64, window int) []float64 {
	highMax := rollingMax(high, window)
	lowMin := rollingMin(low, window)
	out := filled(len(close))
	for i := range close {
		rng := highMax[i] - lowMin[i]
		if math.IsNaN(rng) || rng == 0 {
			continue
		}
		out[i] = -100 * (highMax[i] - close[i]) / rng
	}
	return out
}

// MFI is the volume-weighted RSI variant over typical price. Zero negative
// flow with positive flow present is the limiting value 100; a window with
// no flow at all stays NaN.
func MFI(high, low, close, volume []float64, window int) []float64 {
	n := len(close)
	tp := make([]float64, n)
	for i := 0; i < n; i++ {
		tp[i] = (high[i] + low[i] + close[i]) / 3
	}

	// The first row has no prior typical price; it counts as zero flow in
	// both directions, keeping the warm-up at window-1 rows.
	posFlow := make([]float64, n)
	negFlow := make([]float64, n)
	for i := 1; i < n; i++ {
		mf := tp[i] * volume[i]
		if tp[i] > tp[i-1] {
			posFlow[i] = mf
		} else if tp[i] < tp[i-1] {
			negFlow[i] = mf
		}
	}

	posSum := rollingSum(posFlow, window)
	negSum := rollingSum(negFlow, window)
	out := filled(n)
	for i := 0; i < n; i++ {
		p, q := posSum[i], negSum[i]
		if math.IsNaN(p) || math.IsNaN(q) {
			continue
		}
		if q == 0 {
			if p > 0 {
				out[i] = 100
			}
			continue
		}
		ratio := p / q
		out[i] = 100 - 100/(1+ratio)
	}
	return out
}

// Bollinger returns the upper, middle and lower bands plus relative width.
func Bollinger(close []float64, window int, k float64) (upper, mid, lower, width []float64) {
	mid = rollingMean(close, window)
	std := rollingStd(close, window)
	n := len(close)
	upper = filled(n)
	lower = filled(n)
	width = filled(n)
	for i := 0; i < n; i++ {
		if math.IsNaN(mid[i]) || math.IsNaN(std[i]) {
			continue
		}
		upper[i] = mid[i] + k*std[i]
		lower[i] = mid[i] - k*std[i]
		if mid[i] != 0 {
			width[i] = (upper[i] - lower[i]) / mid[i]
		}
	}
	return upper, mid, lower, width
}

// OBV is cumulative signed volume; flat closes contribute zero.
func OBV(close, volume []float64) []float64 {
	out := make([]float64, len(close))
	for i := 1; i < len(close); i++ {
		switch {
		case close[i] > close[i-1]:
			out[i] = out[i-1] + volume[i]
		case close[i] < close[i-1]:
			out[i] = out[i-1] - volume[i]
		default:
			out[i] = out[i-1]
		}
	}
	return out
}

// VWAP is the running volume-weighted average of typical price from the
// start of the series. Undefined (NaN) until cumulative volume is nonzero.
func VWAP(high, low, close, volume []float64) []float64 {
	n := len(close)
	num := make([]float64, n)
	for i := 0; i < n; i++ {
		tp := (high[i] + low[i] + close[i]) / 3
		num[i] = tp * volume[i]
	}
	cn := cumsum(num)
	cv := cumsum(volume)
	out := filled(n)
	for i := 0; i < n; i++ {
		if cv[i] == 0 {
			continue
		}
		out[i] = cn[i] / cv[i]
	}
	return out
}

// Returns computes the simple and log return over a horizon.
func Returns(close []float64, period int) (simple, logr []float64) {
	simple = pctChange(close, period)
	logr = filled(len(close))
	for i := period; i < len(close); i++ {
		prev := close[i-period]
		if prev <= 0 || close[i] <= 0 {
			continue
		}
		logr[i] = math.Log(close[i] / prev)
	}
	return simple, logr
}

// Momentum computes the absolute and percentage price change over a horizon.
func Momentum(close []float64, period int) (abs, pct []float64) {
	abs = diff(close, period)
	pct = filled(len(close))
	for i := period; i < len(close); i++ {
		if close[i-period] == 0 {
			continue
		}
		pct[i] = (close[i]/close[i-period] - 1) * 100
	}
	return abs, pct
}

// Volatility is the rolling standard deviation of daily simple returns,
// annualized by sqrt(252).
func Volatility(close []float64, window int) []float64 {
	ret := pctChange(close, 1)
	std := rollingStd(ret, window)
	out := filled(len(close))
	for i := range std {
		if !math.IsNaN(std[i]) {
			out[i] = std[i] * math.Sqrt(252)
		}
	}
	return out
}
