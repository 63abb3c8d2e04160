package indicators

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/markcheno/go-talib"
	"github.com/rustyeddy/chartkit/market"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testPrices struct {
	open, high, low, close, volume []float64
}

// wavePrices builds a deterministic, non-flat price path.
func wavePrices(n int) testPrices {
	p := testPrices{
		open:   make([]float64, n),
		high:   make([]float64, n),
		low:    make([]float64, n),
		close:  make([]float64, n),
		volume: make([]float64, n),
	}
	for i := 0; i < n; i++ {
		x := float64(i)
		c := 100 + 10*math.Sin(x/7) + 3*math.Cos(x/3) + 0.05*x
		o := c - 0.5*math.Sin(x)
		p.open[i] = o
		p.close[i] = c
		p.high[i] = math.Max(o, c) + 1 + 0.3*math.Abs(math.Sin(x/2))
		p.low[i] = math.Min(o, c) - 1 - 0.2*math.Abs(math.Cos(x/5))
		p.volume[i] = 1000 + 100*float64(i%7)
	}
	return p
}

func createTestCandles() testPrices {
	return testPrices{
		open:  []float64{100, 102, 105, 106, 108, 110, 111, 113, 114, 116},
		high:  []float64{105, 107, 108, 110, 112, 113, 115, 116, 118, 120},
		low:   []float64{99, 101, 104, 105, 107, 109, 110, 112, 113, 115},
		close: []float64{102, 105, 106, 108, 110, 111, 113, 114, 116, 118},
	}
}

func TestSMA(t *testing.T) {
	p := createTestCandles()

	sma := SMA(p.close, 5)
	require.Len(t, sma, len(p.close))
	for i := 0; i < 4; i++ {
		assert.False(t, sma[i].OK, "index %d", i)
	}
	// Last 5 closes: 111,113,114,116,118 => 572/5 = 114.4
	v, ok := sma.Last()
	assert.True(t, ok)
	assert.InDelta(t, 114.4, v, 0.001)

	for i := 4; i < len(p.close); i++ {
		sum := 0.0
		for j := i - 4; j <= i; j++ {
			sum += p.close[j]
		}
		assert.InDelta(t, sum/5, sma[i].V, 1e-12)
	}
}

func TestSMAMatchesTalib(t *testing.T) {
	p := wavePrices(200)
	for _, period := range []int{2, 5, 20} {
		got := SMA(p.close, period)
		want := talib.Sma(p.close, period)
		for i := period - 1; i < len(got); i++ {
			require.True(t, got[i].OK)
			assert.InDelta(t, want[i], got[i].V, 1e-9, "period %d index %d", period, i)
		}
	}
}

func TestEMASeedEqualsSMA(t *testing.T) {
	p := wavePrices(60)
	for _, period := range []int{1, 3, 12, 26} {
		ema := EMA(p.close, period)
		sma := SMA(p.close, period)
		assert.Equal(t, sma[period-1].V, ema[period-1].V, "period %d", period)
		if period > 1 {
			assert.False(t, ema[period-2].OK)
		}
	}
}

func TestEMAMatchesTalib(t *testing.T) {
	p := wavePrices(200)
	got := EMA(p.close, 10)
	want := talib.Ema(p.close, 10)
	for i := 9; i < len(got); i++ {
		assert.InDelta(t, want[i], got[i].V, 1e-9, "index %d", i)
	}
}

func TestRSI(t *testing.T) {
	p := wavePrices(200)
	rsi := RSI(p.close, 14)

	for i := 0; i < 14; i++ {
		assert.False(t, rsi[i].OK)
	}
	want := talib.Rsi(p.close, 14)
	for i := 14; i < len(rsi); i++ {
		require.True(t, rsi[i].OK)
		assert.GreaterOrEqual(t, rsi[i].V, 0.0)
		assert.LessOrEqual(t, rsi[i].V, 100.0)
		assert.InDelta(t, want[i], rsi[i].V, 1e-6, "index %d", i)
	}
}

func TestRSINoLosses(t *testing.T) {
	closes := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	rsi := RSI(closes, 3)
	for i := 3; i < len(closes); i++ {
		assert.Equal(t, Some(100), rsi[i])
	}

	// flat prices: no gains and no losses still reads 100
	flat := RSI([]float64{5, 5, 5, 5, 5}, 2)
	assert.Equal(t, Some(100), flat[4])
}

func TestMACD(t *testing.T) {
	p := wavePrices(120)
	m := MACD(p.close, 12, 26, 9)
	require.Len(t, m.MACD, 120)

	assert.False(t, m.MACD[24].OK)
	assert.True(t, m.MACD[25].OK)
	// the signal EMA needs 9 defined MACD values
	assert.False(t, m.Signal[32].OK)
	assert.True(t, m.Signal[33].OK)

	for i := range m.Histogram {
		if m.MACD[i].OK && m.Signal[i].OK {
			require.True(t, m.Histogram[i].OK)
			assert.InDelta(t, m.MACD[i].V-m.Signal[i].V, m.Histogram[i].V, 1e-12)
		} else {
			assert.False(t, m.Histogram[i].OK, "index %d", i)
		}
	}

	// signal seed is the mean of the first 9 MACD values
	sum := 0.0
	for i := 25; i <= 33; i++ {
		sum += m.MACD[i].V
	}
	assert.InDelta(t, sum/9, m.Signal[33].V, 1e-9)
}

func TestMACDDegenerate(t *testing.T) {
	m := MACD([]float64{1, 2, 3}, 0, 26, 9)
	assert.Len(t, m.MACD, 3)
	assert.Equal(t, 0, m.MACD.Defined()+m.Signal.Defined()+m.Histogram.Defined())

	m = MACD(nil, 12, 26, 9)
	assert.Empty(t, m.MACD)
}

func TestBollingerMatchesTalib(t *testing.T) {
	p := wavePrices(150)
	bb := BollingerBands(p.close, 20, 2)
	upper, middle, lower := talib.BBands(p.close, 20, 2, 2, talib.SMA)

	assert.False(t, bb.Middle[18].OK)
	for i := 19; i < len(p.close); i++ {
		assert.InDelta(t, middle[i], bb.Middle[i].V, 1e-9)
		assert.InDelta(t, upper[i], bb.Upper[i].V, 1e-6)
		assert.InDelta(t, lower[i], bb.Lower[i].V, 1e-6)
	}
}

func TestATRDetailed(t *testing.T) {
	highs := []float64{10, 11, 12, 11, 12, 13}
	lows := []float64{8, 9, 10, 9, 10, 11}
	closes := []float64{9, 10, 11, 10, 11, 12}

	atr := ATRSeries(highs, lows, closes, 3)
	assert.False(t, atr[0].OK)
	assert.False(t, atr[1].OK)
	for i := 2; i < 6; i++ {
		assert.Equal(t, Some(2), atr[i])
	}
}

func TestATRSeedAndSmoothing(t *testing.T) {
	highs := []float64{10, 14, 12, 15}
	lows := []float64{8, 10, 9, 13}
	closes := []float64{9, 13, 10, 14}

	// TR: 2, max(4,5,1)=5, max(3,1,4)=4, max(2,5,3)=5
	atr := ATRSeries(highs, lows, closes, 2)
	assert.False(t, atr[0].OK)
	assert.InDelta(t, 3.5, atr[1].V, 1e-12)
	assert.InDelta(t, (3.5+4)/2, atr[2].V, 1e-12)
	assert.InDelta(t, (3.75+5)/2, atr[3].V, 1e-12)
}

func TestADXWilderSeeding(t *testing.T) {
	highs := []float64{10, 12, 11, 14, 13, 15}
	lows := []float64{8, 9, 7, 11, 10, 12}
	closes := []float64{9, 11, 8, 13, 11, 14}

	// TR:  3, 4, 6, 3, 4
	// +DM: 2, 0, 3, 0, 2
	// -DM: 0, 2, 0, 1, 0
	res := ADXSeries(highs, lows, closes, 2)

	assert.False(t, res.PlusDI[1].OK)
	assert.False(t, res.ADX[2].OK)

	// index 2: seeds TR 3.5, +DM 1, -DM 1
	require.True(t, res.PlusDI[2].OK)
	assert.InDelta(t, 200.0/7, res.PlusDI[2].V, 1e-9)
	assert.InDelta(t, 200.0/7, res.MinusDI[2].V, 1e-9)

	// index 3: TR 4.75, +DM 2, -DM 0.5; DX 60, ADX = (0+60)/2
	assert.InDelta(t, 800.0/19, res.PlusDI[3].V, 1e-9)
	assert.InDelta(t, 200.0/19, res.MinusDI[3].V, 1e-9)
	require.True(t, res.ADX[3].OK)
	assert.InDelta(t, 30, res.ADX[3].V, 1e-9)

	// index 4: TR 3.875, +DM 1, -DM 0.75; DX 100/7, Wilder step
	assert.InDelta(t, 800.0/31, res.PlusDI[4].V, 1e-9)
	assert.InDelta(t, 600.0/31, res.MinusDI[4].V, 1e-9)
	assert.InDelta(t, (30+100.0/7)/2, res.ADX[4].V, 1e-9)

	// index 5: DX 60 again
	assert.InDelta(t, ((30+100.0/7)/2+60)/2, res.ADX[5].V, 1e-9)
}

func TestTrueRange(t *testing.T) {
	current := market.Candle{High: 110, Low: 100, Close: 105}
	previous := market.Candle{Close: 104}
	assert.Equal(t, 10.0, trueRange(current, previous))

	gapUp := market.Candle{High: 120, Low: 115}
	assert.Equal(t, 16.0, trueRange(gapUp, previous))
}

func TestStochastic(t *testing.T) {
	highs := []float64{10, 12, 11, 13, 13}
	lows := []float64{8, 9, 9, 10, 13}
	closes := []float64{9, 11, 10, 12, 13}

	st := Stochastic(highs, lows, closes, 3, 3)
	assert.False(t, st.K[1].OK)

	// index 2: hh=12 ll=8 -> (10-8)/4*100 = 50
	assert.InDelta(t, 50, st.K[2].V, 1e-12)
	// index 3: hh=13 ll=9 -> (12-9)/4*100 = 75
	assert.InDelta(t, 75, st.K[3].V, 1e-12)
	// index 4: hh=13 ll=9 -> (13-9)/4*100 = 100
	assert.InDelta(t, 100, st.K[4].V, 1e-12)

	// %D smooths with the undefined %K slots counted as zero
	assert.False(t, st.D[1].OK)
	assert.InDelta(t, 50.0/3, st.D[2].V, 1e-12)
	assert.InDelta(t, (50.0+75)/3, st.D[3].V, 1e-12)
	assert.InDelta(t, (50.0+75+100)/3, st.D[4].V, 1e-12)
}

func TestStochasticZeroRange(t *testing.T) {
	flat := []float64{5, 5, 5, 5}
	st := Stochastic(flat, flat, flat, 2, 2)
	assert.Equal(t, Some(50), st.K[1])
	assert.Equal(t, Some(50), st.K[3])
}

func TestCCI(t *testing.T) {
	p := wavePrices(100)
	cci := CCI(p.high, p.low, p.close, 20)
	want := talib.Cci(p.high, p.low, p.close, 20)

	assert.False(t, cci[18].OK)
	for i := 19; i < len(cci); i++ {
		assert.InDelta(t, want[i], cci[i].V, 1e-6, "index %d", i)
	}

	flat := []float64{3, 3, 3, 3}
	zero := CCI(flat, flat, flat, 2)
	assert.Equal(t, Some(0), zero[3])
}

func TestWilliamsR(t *testing.T) {
	p := wavePrices(100)
	wr := WilliamsR(p.high, p.low, p.close, 14)
	want := talib.WillR(p.high, p.low, p.close, 14)

	for i := 13; i < len(wr); i++ {
		assert.InDelta(t, want[i], wr[i].V, 1e-9)
		assert.LessOrEqual(t, wr[i].V, 0.0)
		assert.GreaterOrEqual(t, wr[i].V, -100.0)
	}

	flat := []float64{3, 3, 3}
	assert.Equal(t, Some(-50), WilliamsR(flat, flat, flat, 2)[2])
}

func TestADX(t *testing.T) {
	p := wavePrices(150)
	period := 14
	r := ADXSeries(p.high, p.low, p.close, period)

	assert.False(t, r.PlusDI[period-1].OK)
	assert.True(t, r.PlusDI[period].OK)
	assert.False(t, r.ADX[2*period-2].OK)
	assert.True(t, r.ADX[2*period-1].OK)

	for i := 2*period - 1; i < len(r.ADX); i++ {
		assert.GreaterOrEqual(t, r.ADX[i].V, 0.0)
		assert.LessOrEqual(t, r.ADX[i].V, 100.0)
	}
}

func TestADXTrend(t *testing.T) {
	n := 40
	highs := make([]float64, n)
	lows := make([]float64, n)
	closes := make([]float64, n)
	for i := 0; i < n; i++ {
		highs[i] = 10 + float64(i) + 0.5
		lows[i] = 10 + float64(i) - 0.5
		closes[i] = 10 + float64(i)
	}

	r := ADXSeries(highs, lows, closes, 5)
	last := len(closes) - 1
	assert.Greater(t, r.PlusDI[last].V, r.MinusDI[last].V)
	assert.Equal(t, 0.0, r.MinusDI[last].V)
	// a clean trend has DX pinned at 100
	assert.InDelta(t, 100, r.ADX[last].V, 1e-9)
}

func TestOBV(t *testing.T) {
	p := wavePrices(80)
	obv := OBV(p.close, p.volume, nil, nil)
	want := talib.Obv(p.close, p.volume)
	for i := range obv {
		assert.InDelta(t, want[i], obv[i].V, 1e-9)
	}
}

func TestOBVProxyVolume(t *testing.T) {
	closes := []float64{10, 11, 11, 9}
	highs := []float64{10.5, 11.5, 11.2, 9.5}
	lows := []float64{9.5, 10.5, 10.7, 8.5}

	obv := OBV(closes, nil, highs, lows)
	assert.InDelta(t, 1e6, obv[0].V, 1e-6)
	assert.InDelta(t, 2e6, obv[1].V, 1e-6)
	// equal close: unchanged
	assert.InDelta(t, 2e6, obv[2].V, 1e-6)
	assert.InDelta(t, 1e6, obv[3].V, 1e-6)

	constant := OBV(closes, nil, nil, nil)
	assert.Equal(t, Some(OBVConstantVolume), constant[0])
	assert.Equal(t, Some(2*OBVConstantVolume), constant[1])
	assert.Equal(t, Some(2*OBVConstantVolume), constant[2])
	assert.Equal(t, Some(OBVConstantVolume), constant[3])
}

func TestKeltnerChannel(t *testing.T) {
	p := wavePrices(60)
	k := KeltnerChannel(p.high, p.low, p.close, 20, 2)
	ema := EMA(p.close, 20)
	atr := ATRSeries(p.high, p.low, p.close, 20)

	assert.False(t, k.Middle[18].OK)
	for i := 19; i < 60; i++ {
		assert.Equal(t, ema[i], k.Middle[i])
		assert.InDelta(t, 2*atr[i].V, k.Upper[i].V-k.Middle[i].V, 1e-9)
		assert.InDelta(t, 2*atr[i].V, k.Middle[i].V-k.Lower[i].V, 1e-9)
	}
}

func TestDegenerateInputs(t *testing.T) {
	p := createTestCandles()

	tests := []struct {
		name string
		got  Series
		n    int
	}{
		{"sma empty", SMA(nil, 5), 0},
		{"sma zero period", SMA(p.close, 0), len(p.close)},
		{"ema negative period", EMA(p.close, -1), len(p.close)},
		{"rsi short input", RSI([]float64{1, 2}, 14), 2},
		{"atr mismatched", ATRSeries(p.high[:3], p.low, p.close, 3), len(p.close)},
		{"cci mismatched", CCI(p.high, nil, p.close, 3), len(p.close)},
		{"williams zero period", WilliamsR(p.high, p.low, p.close, 0), len(p.close)},
		{"obv empty", OBV(nil, nil, nil, nil), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, tt.got, tt.n)
			assert.Equal(t, 0, tt.got.Defined())
		})
	}
}

func TestValueJSON(t *testing.T) {
	s := Series{Some(1.5), {}, Some(0)}
	b, err := json.Marshal(s)
	require.NoError(t, err)
	assert.Equal(t, `[1.5,null,0]`, string(b))

	var back Series
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, s, back)
}

func TestCompute(t *testing.T) {
	p := wavePrices(100)
	times := make([]int64, 100)
	for i := range times {
		times[i] = int64(i * 60)
	}
	s := &market.Series{Time: times, Open: p.open, High: p.high, Low: p.low, Close: p.close}

	res, err := Compute("MACD", s, Params{})
	require.NoError(t, err)
	assert.Equal(t, "macd", res.ID)
	require.Len(t, res.Lines, 3)
	hist, ok := res.Line("histogram")
	require.True(t, ok)
	assert.Len(t, hist, 100)

	res, err = Compute("williamsR", s, Params{Period: 10})
	require.NoError(t, err)
	assert.Equal(t, "williams_r", res.ID)
	wr, _ := res.Line("williams_r")
	assert.Equal(t, WilliamsR(p.high, p.low, p.close, 10), wr)

	// default period for sma is 20
	res, err = Compute("sma", s, Params{})
	require.NoError(t, err)
	sma, _ := res.Line("sma")
	assert.False(t, sma[18].OK)
	assert.True(t, sma[19].OK)

	_, err = Compute("ichimoku", s, Params{})
	assert.ErrorIs(t, err, ErrUnknownIndicator)

	res, err = Compute("rsi", nil, Params{})
	require.NoError(t, err)
	rsi, _ := res.Line("rsi")
	assert.Empty(t, rsi)
}

func TestComputeMalformedSeries(t *testing.T) {
	s := &market.Series{
		Time:  []int64{1, 2, 3},
		Open:  []float64{1, 2, 3},
		High:  []float64{1, 2},
		Low:   []float64{1, 2, 3},
		Close: []float64{1, 2, 3},
	}
	res, err := Compute("atr", s, Params{Period: 1})
	require.NoError(t, err)
	atr, _ := res.Line("atr")
	assert.Len(t, atr, 3)
	assert.Equal(t, 0, atr.Defined())
}

func TestCatalog(t *testing.T) {
	infos := Catalog()
	assert.Len(t, infos, 12)

	info, ok := Lookup("Bollinger")
	require.True(t, ok)
	assert.True(t, info.Overlay)
	assert.Equal(t, []string{"upper", "middle", "lower"}, info.Lines)

	_, ok = Lookup("nope")
	assert.False(t, ok)
}
