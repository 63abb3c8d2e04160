package indicators

import (
	"fmt"
	"math"

	"github.com/rustyeddy/chartkit/market"
)

// SimpleMA is a streaming Simple Moving Average indicator
type SimpleMA struct {
	period int
	window []float64
}

// NewMA creates a new Simple Moving Average indicator with the given period
func NewMA(period int) *SimpleMA {
	return &SimpleMA{
		period: period,
		window: make([]float64, 0, period),
	}
}

func (m *SimpleMA) Name() string {
	return fmt.Sprintf("MA(%d)", m.period)
}

func (m *SimpleMA) Warmup() int {
	return m.period
}

func (m *SimpleMA) Reset() {
	m.window = m.window[:0]
}

func (m *SimpleMA) Update(c market.Candle) {
	m.Push(c.Close)
}

// Push adds the next raw value.
func (m *SimpleMA) Push(x float64) {
	if m.period <= 0 {
		return
	}
	if len(m.window) == m.period {
		copy(m.window, m.window[1:])
		m.window = m.window[:m.period-1]
	}
	m.window = append(m.window, x)
}

func (m *SimpleMA) Ready() bool {
	return m.period > 0 && len(m.window) >= m.period
}

// Value is the mean of the window, summed from scratch.
func (m *SimpleMA) Value() float64 {
	if !m.Ready() {
		return 0
	}

	sum := 0.0
	for _, x := range m.window {
		sum += x
	}
	return sum / float64(len(m.window))
}

// StdDev is the population standard deviation of the window.
func (m *SimpleMA) StdDev() float64 {
	if !m.Ready() {
		return 0
	}
	mean := m.Value()
	sq := 0.0
	for _, x := range m.window {
		d := x - mean
		sq += d * d
	}
	return math.Sqrt(sq / float64(len(m.window)))
}

// MeanDeviation is the mean absolute deviation of the window from its mean.
func (m *SimpleMA) MeanDeviation() float64 {
	if !m.Ready() {
		return 0
	}
	mean := m.Value()
	dev := 0.0
	for _, x := range m.window {
		dev += math.Abs(x - mean)
	}
	return dev / float64(len(m.window))
}

// ExponentialMA is a streaming Exponential Moving Average indicator
type ExponentialMA struct {
	period     int
	multiplier float64
	ema        float64
	count      int
	warmupSum  float64
}

// NewEMA creates a new Exponential Moving Average indicator with the given period
func NewEMA(period int) *ExponentialMA {
	return &ExponentialMA{
		period:     period,
		multiplier: 2.0 / float64(period+1),
	}
}

func (e *ExponentialMA) Name() string {
	return fmt.Sprintf("EMA(%d)", e.period)
}

func (e *ExponentialMA) Warmup() int {
	return e.period
}

func (e *ExponentialMA) Reset() {
	e.ema = 0
	e.count = 0
	e.warmupSum = 0
}

func (e *ExponentialMA) Update(c market.Candle) {
	e.Push(c.Close)
}

func (e *ExponentialMA) Push(x float64) {
	if e.count < e.period {
		// During warmup, accumulate sum for initial SMA
		e.warmupSum += x
		e.count++
		if e.count == e.period {
			// Initialize EMA with SMA
			e.ema = e.warmupSum / float64(e.period)
		}
	} else {
		e.ema = (x-e.ema)*e.multiplier + e.ema
	}
}

func (e *ExponentialMA) Ready() bool {
	return e.period > 0 && e.count >= e.period
}

func (e *ExponentialMA) Value() float64 {
	if !e.Ready() {
		return 0
	}
	return e.ema
}

// WilderMA is Wilder's smoothing: a simple average over the first period
// values, then avg = (avg*(period-1) + x) / period.
type WilderMA struct {
	period int
	count  int
	sum    float64
	avg    float64
}

func NewWilder(period int) *WilderMA {
	return &WilderMA{period: period}
}

func (w *WilderMA) Name() string {
	return fmt.Sprintf("Wilder(%d)", w.period)
}

func (w *WilderMA) Warmup() int {
	return w.period
}

func (w *WilderMA) Reset() {
	w.count = 0
	w.sum = 0
	w.avg = 0
}

func (w *WilderMA) Update(c market.Candle) {
	w.Push(c.Close)
}

func (w *WilderMA) Push(x float64) {
	if w.count < w.period {
		w.sum += x
		w.count++
		if w.count == w.period {
			w.avg = w.sum / float64(w.period)
		}
		return
	}
	p := float64(w.period)
	w.avg = (w.avg*(p-1) + x) / p
}

func (w *WilderMA) Ready() bool {
	return w.period > 0 && w.count >= w.period
}

func (w *WilderMA) Value() float64 {
	if !w.Ready() {
		return 0
	}
	return w.avg
}
