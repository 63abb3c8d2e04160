package indicators

import (
	"fmt"
	"math"

	"github.com/rustyeddy/chartkit/market"
)

// ATR is a streaming Average True Range indicator. The first candle's
// true range is its high-low span; the first ATR is the simple average of
// the first period true ranges, Wilder-smoothed thereafter.
type ATR struct {
	period      int
	smooth      *WilderMA
	prevCandle  market.Candle
	hasPrevious bool
}

// NewATR creates a new Average True Range indicator with the given period
func NewATR(period int) *ATR {
	return &ATR{
		period: period,
		smooth: NewWilder(period),
	}
}

func (a *ATR) Name() string {
	return fmt.Sprintf("ATR(%d)", a.period)
}

func (a *ATR) Warmup() int {
	return a.period
}

func (a *ATR) Reset() {
	a.smooth.Reset()
	a.hasPrevious = false
}

func (a *ATR) Update(c market.Candle) {
	tr := c.High - c.Low
	if a.hasPrevious {
		tr = trueRange(c, a.prevCandle)
	}
	a.smooth.Push(tr)
	a.prevCandle = c
	a.hasPrevious = true
}

func (a *ATR) Ready() bool {
	return a.smooth.Ready()
}

func (a *ATR) Value() float64 {
	return a.smooth.Value()
}

// trueRange calculates the True Range for a candle given the previous candle
func trueRange(current, previous market.Candle) float64 {
	highLow := current.High - current.Low
	highClose := math.Abs(current.High - previous.Close)
	lowClose := math.Abs(current.Low - previous.Close)

	return math.Max(highLow, math.Max(highClose, lowClose))
}

func sameLen(n int, arrays ...[]float64) bool {
	for _, a := range arrays {
		if len(a) != n {
			return false
		}
	}
	return true
}

// ATRSeries computes the Average True Range over parallel price arrays.
func ATRSeries(highs, lows, closes []float64, period int) Series {
	n := len(closes)
	out := empty(n)
	if period <= 0 || !sameLen(n, highs, lows) {
		return out
	}

	atr := NewATR(period)
	for i := 0; i < n; i++ {
		atr.Update(market.Candle{High: highs[i], Low: lows[i], Close: closes[i]})
		if atr.Ready() {
			out[i] = Some(atr.Value())
		}
	}
	return out
}

// KeltnerChannel puts bands atrMultiplier ATRs around the EMA of closes.
func KeltnerChannel(highs, lows, closes []float64, period int, atrMultiplier float64) BandResult {
	n := len(closes)
	res := BandResult{Upper: empty(n), Middle: empty(n), Lower: empty(n)}
	if period <= 0 || !sameLen(n, highs, lows) {
		return res
	}

	mid := EMA(closes, period)
	atr := ATRSeries(highs, lows, closes, period)
	for i := 0; i < n; i++ {
		if !mid[i].OK || !atr[i].OK {
			continue
		}
		off := atrMultiplier * atr[i].V
		res.Middle[i] = mid[i]
		res.Upper[i] = Some(mid[i].V + off)
		res.Lower[i] = Some(mid[i].V - off)
	}
	return res
}
