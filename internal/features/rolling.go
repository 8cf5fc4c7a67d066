package features

import "math"

// Rolling primitives. All return a slice aligned with the input where the
// first window-1 entries are NaN, matching the warm-up contract. A window
// containing any NaN yields NaN, so warm-up propagates through derived
// series the way it does in a dataframe.

var nan = math.NaN()

func filled(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = nan
	}
	return out
}

func rollingApply(x []float64, w int, f func(win []float64) float64) []float64 {
	out := filled(len(x))
	if w <= 0 || w > len(x) {
		return out
	}
	for i := w - 1; i < len(x); i++ {
		win := x[i-w+1 : i+1]
		bad := false
		for _, v := range win {
			if math.IsNaN(v) {
				bad = true
				break
			}
		}
		if bad {
			continue
		}
		out[i] = f(win)
	}
	return out
}

func rollingMean(x []float64, w int) []float64 {
	return rollingApply(x, w, func(win []float64) float64 {
		sum := 0.0
		for _, v := range win {
			sum += v
		}
		return sum / float64(len(win))
	})
}

func rollingSum(x []float64, w int) []float64 {
	return rollingApply(x, w, func(win []float64) float64 {
		sum := 0.0
		for _, v := range win {
			sum += v
		}
		return sum
	})
}

// rollingStd is the sample standard deviation (n-1 denominator).
func rollingStd(x []float64, w int) []float64 {
	return rollingApply(x, w, func(win []float64) float64 {
		n := float64(len(win))
		if n < 2 {
			return nan
		}
		sum := 0.0
		for _, v := range win {
			sum += v
		}
		mean := sum / n
		ss := 0.0
		for _, v := range win {
			d := v - mean
			ss += d * d
		}
		return math.Sqrt(ss / (n - 1))
	})
}

func rollingMin(x []float64, w int) []float64 {
	return rollingApply(x, w, func(win []float64) float64 {
		m := win[0]
		for _, v := range win[1:] {
			if v < m {
				m = v
			}
		}
		return m
	})
}

func rollingMax(x []float64, w int) []float64 {
	return rollingApply(x, w, func(win []float64) float64 {
		m := win[0]
		for _, v := range win[1:] {
			if v > m {
				m = v
			}
		}
		return m
	})
}

// ema is the recursive exponential moving average with smoothing span w,
// seeded by the first value: alpha = 2/(w+1). Defined from index 0.
func ema(x []float64, span int) []float64 {
	out := filled(len(x))
	if len(x) == 0 || span <= 0 {
		return out
	}
	alpha := 2.0 / (float64(span) + 1.0)
	prev := x[0]
	out[0] = prev
	for i := 1; i < len(x); i++ {
		prev = alpha*x[i] + (1-alpha)*prev
		out[i] = prev
	}
	return out
}

// shift moves the series forward by n, filling the head with NaN.
func shift(x []float64, n int) []float64 {
	out := filled(len(x))
	for i := n; i < len(x); i++ {
		out[i] = x[i-n]
	}
	return out
}

// diff is x[i] - x[i-n] with NaN for the first n entries.
func diff(x []float64, n int) []float64 {
	out := filled(len(x))
	for i := n; i < len(x); i++ {
		out[i] = x[i] - x[i-n]
	}
	return out
}

// pctChange is x[i]/x[i-n] - 1 with NaN for the first n entries and for a
// zero base value.
func pctChange(x []float64, n int) []float64 {
	out := filled(len(x))
	for i := n; i < len(x); i++ {
		if x[i-n] == 0 {
			continue
		}
		out[i] = x[i]/x[i-n] - 1
	}
	return out
}

func cumsum(x []float64) []float64 {
	out := make([]float64, len(x))
	sum := 0.0
	for i, v := range x {
		sum += v
		out[i] = sum
	}
	return out
}
