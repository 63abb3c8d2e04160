package indicators

import "math"

// OBV proxy volumes, used when the caller has no volume column.
const (
	OBVRangeVolumeScale = 1_000_000.0
	OBVConstantVolume   = 1_000_000.0
)

// RSI averages the first period gains and losses, then applies Wilder
// smoothing. The first value is at index period; RSI is 100 whenever the
// average loss is zero.
func RSI(closes []float64, period int) Series {
	out := empty(len(closes))
	if period <= 0 {
		return out
	}

	gains := NewWilder(period)
	losses := NewWilder(period)
	for i := 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		gains.Push(gain)
		losses.Push(loss)
		if !gains.Ready() {
			continue
		}

		avgLoss := losses.Value()
		if avgLoss == 0 {
			out[i] = Some(100)
			continue
		}
		rs := gains.Value() / avgLoss
		out[i] = Some(100 - 100/(1+rs))
	}
	return out
}

// highestLowest scans highs and lows over [from, to].
func highestLowest(highs, lows []float64, from, to int) (hh, ll float64) {
	hh = math.Inf(-1)
	ll = math.Inf(1)
	for j := from; j <= to; j++ {
		if highs[j] > hh {
			hh = highs[j]
		}
		if lows[j] < ll {
			ll = lows[j]
		}
	}
	return hh, ll
}

// StochasticResult holds %K and %D.
type StochasticResult struct {
	K Series
	D Series
}

// Stochastic computes %K over kPeriod candles (50 on a zero range) and
// %D as the SMA of %K. Undefined %K slots count as 0 while smoothing and
// %D is cleared again wherever %K is undefined.
func Stochastic(highs, lows, closes []float64, kPeriod, dPeriod int) StochasticResult {
	n := len(closes)
	res := StochasticResult{K: empty(n), D: empty(n)}
	if kPeriod <= 0 || dPeriod <= 0 || !sameLen(n, highs, lows) {
		return res
	}

	for i := kPeriod - 1; i < n; i++ {
		hh, ll := highestLowest(highs, lows, i-kPeriod+1, i)
		if hh == ll {
			res.K[i] = Some(50)
			continue
		}
		res.K[i] = Some((closes[i] - ll) / (hh - ll) * 100)
	}

	kVals, _ := res.K.Floats()
	d := SMA(kVals, dPeriod)
	for i := range d {
		if res.K[i].OK {
			res.D[i] = d[i]
		}
	}
	return res
}

// CCI is (TP - SMA(TP)) / (0.015 * mean deviation) over typical price
// (h+l+c)/3. A zero mean deviation yields 0.
func CCI(highs, lows, closes []float64, period int) Series {
	n := len(closes)
	out := empty(n)
	if period <= 0 || !sameLen(n, highs, lows) {
		return out
	}

	ma := NewMA(period)
	for i := 0; i < n; i++ {
		tp := (highs[i] + lows[i] + closes[i]) / 3
		ma.Push(tp)
		if !ma.Ready() {
			continue
		}
		md := ma.MeanDeviation()
		if md == 0 {
			out[i] = Some(0)
			continue
		}
		out[i] = Some((tp - ma.Value()) / (0.015 * md))
	}
	return out
}

// WilliamsR is ((highestHigh - close) / range) * -100; a zero range
// yields -50.
func WilliamsR(highs, lows, closes []float64, period int) Series {
	n := len(closes)
	out := empty(n)
	if period <= 0 || !sameLen(n, highs, lows) {
		return out
	}

	for i := period - 1; i < n; i++ {
		hh, ll := highestLowest(highs, lows, i-period+1, i)
		if hh == ll {
			out[i] = Some(-50)
			continue
		}
		out[i] = Some((hh - closes[i]) / (hh - ll) * -100)
	}
	return out
}

// OBV is the running on-balance volume, starting at the first bar's
// volume. Without volumes each bar's volume is |high-low| scaled by
// OBVRangeVolumeScale, or OBVConstantVolume when highs and lows are also
// missing.
func OBV(closes, volumes, highs, lows []float64) Series {
	n := len(closes)
	out := empty(n)
	if n == 0 {
		return out
	}

	volume := func(i int) float64 {
		switch {
		case len(volumes) == n:
			return volumes[i]
		case len(highs) == n && len(lows) == n:
			return math.Abs(highs[i]-lows[i]) * OBVRangeVolumeScale
		default:
			return OBVConstantVolume
		}
	}

	obv := volume(0)
	out[0] = Some(obv)
	for i := 1; i < n; i++ {
		switch {
		case closes[i] > closes[i-1]:
			obv += volume(i)
		case closes[i] < closes[i-1]:
			obv -= volume(i)
		}
		out[i] = Some(obv)
	}
	return out
}
