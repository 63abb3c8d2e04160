package market

import "math"

// ChartVolumeProxyScale converts a bar's high-low range into a stand-in
// volume for the chart's volume histogram when the feed carries none.
const ChartVolumeProxyScale = 1_000_000.0

// Candle represents OHLC (Open, High, Low, Close) candlestick data.
// Time is unix seconds for the candle open.
type Candle struct {
	Time      int64
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
	HasVolume bool
}

func (c Candle) Body() float64 {
	return math.Abs(c.Close - c.Open)
}

func (c Candle) Range() float64 {
	return c.High - c.Low
}

// BodyTop is the higher of open and close.
func (c Candle) BodyTop() float64 {
	return math.Max(c.Open, c.Close)
}

// BodyBottom is the lower of open and close.
func (c Candle) BodyBottom() float64 {
	return math.Min(c.Open, c.Close)
}

func (c Candle) UpperShadow() float64 {
	return c.High - c.BodyTop()
}

func (c Candle) LowerShadow() float64 {
	return c.BodyBottom() - c.Low
}

func (c Candle) Bullish() bool { return c.Close > c.Open }
func (c Candle) Bearish() bool { return c.Close < c.Open }
