package indicators

import (
	"fmt"
	"math"

	"github.com/rustyeddy/chartkit/market"
)

// ADX implements Wilder's Average Directional Index (trend strength).
// Usage:
//
//	adx := indicators.NewADX(14)
//	adx.Update(candle)
//	if adx.Ready() && adx.Value() >= 20 { ... }
type ADX struct {
	Period int

	prev     market.Candle
	havePrev bool

	// Wilder-smoothed TR, +DM and -DM, seeded over candles 1..Period
	tr  *WilderMA
	pdm *WilderMA
	mdm *WilderMA

	// Wilder-smoothed DX, seeded with the first Period DX values
	dx *WilderMA

	plusDI  float64
	minusDI float64
	lastDX  float64
}

func NewADX(period int) *ADX {
	return &ADX{
		Period: period,
		tr:     NewWilder(period),
		pdm:    NewWilder(period),
		mdm:    NewWilder(period),
		dx:     NewWilder(period),
	}
}

func (a *ADX) Name() string {
	return fmt.Sprintf("ADX(%d)", a.Period)
}

// Warmup counts candles: Period for DM/TR after the seed candle, then
// Period DX values.
func (a *ADX) Warmup() int {
	return 2 * a.Period
}

func (a *ADX) Reset() {
	a.havePrev = false
	a.tr.Reset()
	a.pdm.Reset()
	a.mdm.Reset()
	a.dx.Reset()
	a.plusDI, a.minusDI, a.lastDX = 0, 0, 0
}

// Update consumes the next candle.
func (a *ADX) Update(c market.Candle) {
	// Seed previous candle
	if !a.havePrev {
		a.prev = c
		a.havePrev = true
		return
	}

	// 1) Directional movement: only the larger, positive delta counts
	upMove := c.High - a.prev.High
	downMove := a.prev.Low - c.Low

	var pdm, mdm float64
	if upMove > downMove && upMove > 0 {
		pdm = upMove
	}
	if downMove > upMove && downMove > 0 {
		mdm = downMove
	}

	// 2) True Range
	tr := trueRange(c, a.prev)
	a.prev = c

	a.tr.Push(tr)
	a.pdm.Push(pdm)
	a.mdm.Push(mdm)
	if !a.tr.Ready() {
		return
	}

	// 3) Directional indicators and DX
	a.plusDI, a.minusDI = 0, 0
	if atr := a.tr.Value(); atr != 0 {
		a.plusDI = 100 * a.pdm.Value() / atr
		a.minusDI = 100 * a.mdm.Value() / atr
	}
	a.lastDX = 0
	if sum := a.plusDI + a.minusDI; sum != 0 {
		a.lastDX = math.Abs(a.plusDI-a.minusDI) / sum * 100
	}

	// 4) ADX: average of the first Period DX values, then Wilder
	a.dx.Push(a.lastDX)
}

// DIReady reports whether +DI, -DI and DX are defined.
func (a *ADX) DIReady() bool {
	return a.tr.Ready()
}

func (a *ADX) PlusDI() float64  { return a.plusDI }
func (a *ADX) MinusDI() float64 { return a.minusDI }
func (a *ADX) DX() float64      { return a.lastDX }

func (a *ADX) Ready() bool {
	return a.dx.Ready()
}

func (a *ADX) Value() float64 {
	return a.dx.Value()
}

// ADXResult holds the ADX line and its directional indicators.
type ADXResult struct {
	ADX     Series
	PlusDI  Series
	MinusDI Series
}

// ADXSeries computes ADX, +DI and -DI. DI values start at index period,
// ADX at index 2*period-1.
func ADXSeries(highs, lows, closes []float64, period int) ADXResult {
	n := len(closes)
	res := ADXResult{ADX: empty(n), PlusDI: empty(n), MinusDI: empty(n)}
	if period <= 0 || !sameLen(n, highs, lows) {
		return res
	}

	adx := NewADX(period)
	for i := 0; i < n; i++ {
		adx.Update(market.Candle{High: highs[i], Low: lows[i], Close: closes[i]})
		if adx.DIReady() {
			res.PlusDI[i] = Some(adx.PlusDI())
			res.MinusDI[i] = Some(adx.MinusDI())
		}
		if adx.Ready() {
			res.ADX[i] = Some(adx.Value())
		}
	}
	return res
}
