// Package patterns detects candlestick formations in OHLC arrays.
//
// Each detector scans the series once and reports the index of the last
// candle in every formation it finds, with a heuristic reliability in
// [0,1]. Detectors never panic on short, empty or ragged input; they
// simply find nothing.
package patterns

import (
	"math"

	"github.com/rustyeddy/chartkit/market"
)

// DefaultDojiThreshold is the largest body/range ratio still read as a doji.
const DefaultDojiThreshold = 0.1

// Detection is one occurrence of a pattern.
type Detection struct {
	Index       int     `json:"index"`
	Reliability float64 `json:"reliability"`
}

// Candles is the parallel-array input every detector reads.
type Candles struct {
	Open  []float64
	High  []float64
	Low   []float64
	Close []float64
}

// Len returns the candle count, or 0 when any array is missing or the
// arrays disagree in length.
func (c Candles) Len() int {
	n := len(c.Close)
	if n == 0 || len(c.Open) != n || len(c.High) != n || len(c.Low) != n {
		return 0
	}
	return n
}

func (c Candles) at(i int) market.Candle {
	return market.Candle{Open: c.Open[i], High: c.High[i], Low: c.Low[i], Close: c.Close[i]}
}

func (c Candles) body(i int) float64        { return c.at(i).Body() }
func (c Candles) span(i int) float64        { return c.at(i).Range() }
func (c Candles) upperShadow(i int) float64 { return c.at(i).UpperShadow() }
func (c Candles) lowerShadow(i int) float64 { return c.at(i).LowerShadow() }
func (c Candles) bullish(i int) bool        { return c.at(i).Bullish() }
func (c Candles) bearish(i int) bool        { return c.at(i).Bearish() }
func (c Candles) bodyTop(i int) float64     { return c.at(i).BodyTop() }
func (c Candles) bodyBottom(i int) float64  { return c.at(i).BodyBottom() }

// Doji finds candles whose body is under threshold of their range.
// Zero-range candles are skipped.
func Doji(c Candles, threshold float64) []Detection {
	var out []Detection
	for i := 0; i < c.Len(); i++ {
		rng := c.span(i)
		if rng <= 0 {
			continue
		}
		ratio := c.body(i) / rng
		if ratio < threshold {
			out = append(out, Detection{
				Index:       i,
				Reliability: math.Min(0.7, 0.5+(threshold-ratio)*2),
			})
		}
	}
	return out
}

// Hammer finds a long lower shadow (at least twice the body), a short
// upper shadow (at most half the body) and a body in the top 40% of the
// range.
func Hammer(c Candles) []Detection {
	var out []Detection
	for i := 0; i < c.Len(); i++ {
		body := c.body(i)
		rng := c.span(i)
		if body == 0 || rng <= 0 {
			continue
		}
		ratio := c.lowerShadow(i) / body
		if ratio < 2 || c.upperShadow(i)/body > 0.5 {
			continue
		}
		if (c.bodyTop(i)-c.Low[i])/rng < 0.6 {
			continue
		}
		out = append(out, Detection{
			Index:       i,
			Reliability: math.Min(0.8, 0.5+(ratio-2)*0.1),
		})
	}
	return out
}

// InvertedHammer mirrors Hammer: long upper shadow, body in the bottom
// 40% of the range.
func InvertedHammer(c Candles) []Detection {
	var out []Detection
	for i := 0; i < c.Len(); i++ {
		body := c.body(i)
		rng := c.span(i)
		if body == 0 || rng <= 0 {
			continue
		}
		ratio := c.upperShadow(i) / body
		if ratio < 2 || c.lowerShadow(i)/body > 0.5 {
			continue
		}
		if (c.High[i]-c.bodyBottom(i))/rng < 0.6 {
			continue
		}
		out = append(out, Detection{
			Index:       i,
			Reliability: math.Min(0.75, 0.5+(ratio-2)*0.1),
		})
	}
	return out
}

// engulfingReliability grows with how much larger the engulfing body is.
func engulfingReliability(curr, prev float64) float64 {
	if prev <= 0 {
		return 0.85
	}
	return math.Min(0.85, 0.6+(curr/prev-1)*0.1)
}

// BullishEngulfing finds a bullish candle whose body contains the
// previous bearish body.
func BullishEngulfing(c Candles) []Detection {
	var out []Detection
	for i := 1; i < c.Len(); i++ {
		p := i - 1
		if !c.bearish(p) || !c.bullish(i) {
			continue
		}
		if c.Open[i] <= c.Close[p] && c.Close[i] >= c.Open[p] {
			out = append(out, Detection{
				Index:       i,
				Reliability: engulfingReliability(c.body(i), c.body(p)),
			})
		}
	}
	return out
}

// BearishEngulfing finds a bearish candle whose body contains the
// previous bullish body.
func BearishEngulfing(c Candles) []Detection {
	var out []Detection
	for i := 1; i < c.Len(); i++ {
		p := i - 1
		if !c.bullish(p) || !c.bearish(i) {
			continue
		}
		if c.Open[i] >= c.Close[p] && c.Close[i] <= c.Open[p] {
			out = append(out, Detection{
				Index:       i,
				Reliability: engulfingReliability(c.body(i), c.body(p)),
			})
		}
	}
	return out
}

// largeBody reports a body covering at least half of its range.
func (c Candles) largeBody(i int) bool {
	rng := c.span(i)
	return rng > 0 && c.body(i)/rng >= 0.5
}

// smallMiddle reports a middle body under half of both neighbours.
func (c Candles) smallMiddle(first, mid, third int) bool {
	b := c.body(mid)
	return b < 0.5*c.body(first) && b < 0.5*c.body(third)
}

// MorningStar: a large bearish candle, a small middle body, then a
// bullish candle closing above the first candle's midpoint. A middle body
// gapped below the first close rates 0.8, otherwise 0.7.
func MorningStar(c Candles) []Detection {
	var out []Detection
	for i := 2; i < c.Len(); i++ {
		a, b := i-2, i-1
		if !c.bearish(a) || !c.largeBody(a) || !c.bullish(i) {
			continue
		}
		if !c.smallMiddle(a, b, i) {
			continue
		}
		if c.Close[i] <= (c.Open[a]+c.Close[a])/2 {
			continue
		}
		rel := 0.7
		if c.bodyTop(b) < c.Close[a] {
			rel = 0.8
		}
		out = append(out, Detection{Index: i, Reliability: rel})
	}
	return out
}

// EveningStar mirrors MorningStar at a top.
func EveningStar(c Candles) []Detection {
	var out []Detection
	for i := 2; i < c.Len(); i++ {
		a, b := i-2, i-1
		if !c.bullish(a) || !c.largeBody(a) || !c.bearish(i) {
			continue
		}
		if !c.smallMiddle(a, b, i) {
			continue
		}
		if c.Close[i] >= (c.Open[a]+c.Close[a])/2 {
			continue
		}
		rel := 0.7
		if c.bodyBottom(b) > c.Close[a] {
			rel = 0.8
		}
		out = append(out, Detection{Index: i, Reliability: rel})
	}
	return out
}

// ThreeWhiteSoldiers finds three bullish candles with rising closes. When
// each open sits inside the previous body and every upper shadow is under
// 30% of its body the reliability is 0.8, otherwise 0.65.
func ThreeWhiteSoldiers(c Candles) []Detection {
	var out []Detection
	for i := 2; i < c.Len(); i++ {
		a, b := i-2, i-1
		if !c.bullish(a) || !c.bullish(b) || !c.bullish(i) {
			continue
		}
		if !(c.Close[a] < c.Close[b] && c.Close[b] < c.Close[i]) {
			continue
		}

		strict := true
		for _, k := range []int{b, i} {
			if c.Open[k] < c.Open[k-1] || c.Open[k] > c.Close[k-1] {
				strict = false
			}
		}
		for _, k := range []int{a, b, i} {
			if c.upperShadow(k) >= 0.3*c.body(k) {
				strict = false
			}
		}

		rel := 0.65
		if strict {
			rel = 0.8
		}
		out = append(out, Detection{Index: i, Reliability: rel})
	}
	return out
}

// ThreeBlackCrows mirrors ThreeWhiteSoldiers with falling closes and
// short lower shadows.
func ThreeBlackCrows(c Candles) []Detection {
	var out []Detection
	for i := 2; i < c.Len(); i++ {
		a, b := i-2, i-1
		if !c.bearish(a) || !c.bearish(b) || !c.bearish(i) {
			continue
		}
		if !(c.Close[a] > c.Close[b] && c.Close[b] > c.Close[i]) {
			continue
		}

		strict := true
		for _, k := range []int{b, i} {
			if c.Open[k] > c.Open[k-1] || c.Open[k] < c.Close[k-1] {
				strict = false
			}
		}
		for _, k := range []int{a, b, i} {
			if c.lowerShadow(k) >= 0.3*c.body(k) {
				strict = false
			}
		}

		rel := 0.65
		if strict {
			rel = 0.8
		}
		out = append(out, Detection{Index: i, Reliability: rel})
	}
	return out
}
