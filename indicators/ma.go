package indicators

// SMA is the simple mean of the trailing period closes, defined from
// index period-1.
func SMA(closes []float64, period int) Series {
	out := empty(len(closes))
	if period <= 0 {
		return out
	}

	ma := NewMA(period)
	for i, c := range closes {
		ma.Push(c)
		if ma.Ready() {
			out[i] = Some(ma.Value())
		}
	}
	return out
}

// EMA seeds with the SMA of the first window at index period-1, then
// recurses with multiplier 2/(period+1).
func EMA(closes []float64, period int) Series {
	out := empty(len(closes))
	if period <= 0 {
		return out
	}

	ema := NewEMA(period)
	for i, c := range closes {
		ema.Push(c)
		if ema.Ready() {
			out[i] = Some(ema.Value())
		}
	}
	return out
}

// MACDResult holds the three MACD lines.
type MACDResult struct {
	MACD      Series
	Signal    Series
	Histogram Series
}

// MACD computes EMA(fast) - EMA(slow). The signal line is an EMA over the
// defined MACD values only, mapped back onto the original indices.
func MACD(closes []float64, fast, slow, signal int) MACDResult {
	n := len(closes)
	res := MACDResult{MACD: empty(n), Signal: empty(n), Histogram: empty(n)}
	if fast <= 0 || slow <= 0 || signal <= 0 {
		return res
	}

	fastEMA := EMA(closes, fast)
	slowEMA := EMA(closes, slow)

	idx := make([]int, 0, n)
	vals := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		if fastEMA[i].OK && slowEMA[i].OK {
			res.MACD[i] = Some(fastEMA[i].V - slowEMA[i].V)
			idx = append(idx, i)
			vals = append(vals, res.MACD[i].V)
		}
	}

	sig := EMA(vals, signal)
	for j, i := range idx {
		res.Signal[i] = sig[j]
	}

	for i := 0; i < n; i++ {
		if res.MACD[i].OK && res.Signal[i].OK {
			res.Histogram[i] = Some(res.MACD[i].V - res.Signal[i].V)
		}
	}
	return res
}

// BandResult holds a channel: Bollinger or Keltner.
type BandResult struct {
	Upper  Series
	Middle Series
	Lower  Series
}

// BollingerBands puts bands stdDev population standard deviations around
// the SMA.
func BollingerBands(closes []float64, period int, stdDev float64) BandResult {
	n := len(closes)
	res := BandResult{Upper: empty(n), Middle: empty(n), Lower: empty(n)}
	if period <= 0 {
		return res
	}

	ma := NewMA(period)
	for i, c := range closes {
		ma.Push(c)
		if !ma.Ready() {
			continue
		}
		mid := ma.Value()
		dev := stdDev * ma.StdDev()
		res.Middle[i] = Some(mid)
		res.Upper[i] = Some(mid + dev)
		res.Lower[i] = Some(mid - dev)
	}
	return res
}
