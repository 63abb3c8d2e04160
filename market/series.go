package market

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrNoData is returned when a source yields no usable candles.
var ErrNoData = errors.New("no candle data")

// Series holds candles as parallel arrays, the shape indicators and
// pattern detectors consume. Volume is nil when the source carried none.
//
// Series is supplied wholesale by the caller and is never mutated by the
// analytics packages.
type Series struct {
	Symbol string
	Time   []int64
	Open   []float64
	High   []float64
	Low    []float64
	Close  []float64
	Volume []float64
}

// NewSeries builds a Series from candles, sorted by time. Volume is kept
// only when every candle has one.
func NewSeries(symbol string, candles []Candle) *Series {
	sorted := make([]Candle, len(candles))
	copy(sorted, candles)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Time < sorted[j].Time })

	n := len(sorted)
	s := &Series{
		Symbol: symbol,
		Time:   make([]int64, n),
		Open:   make([]float64, n),
		High:   make([]float64, n),
		Low:    make([]float64, n),
		Close:  make([]float64, n),
	}

	withVolume := n > 0
	for i, c := range sorted {
		s.Time[i] = c.Time
		s.Open[i] = c.Open
		s.High[i] = c.High
		s.Low[i] = c.Low
		s.Close[i] = c.Close
		if !c.HasVolume {
			withVolume = false
		}
	}
	if withVolume {
		s.Volume = make([]float64, n)
		for i, c := range sorted {
			s.Volume[i] = c.Volume
		}
	}
	return s
}

func (s *Series) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Close)
}

// Validate checks the shared-length and non-decreasing time invariants.
func (s *Series) Validate() error {
	if s == nil {
		return ErrNoData
	}
	n := len(s.Close)
	if len(s.Time) != n || len(s.Open) != n || len(s.High) != n || len(s.Low) != n {
		return fmt.Errorf("series length mismatch: time=%d open=%d high=%d low=%d close=%d",
			len(s.Time), len(s.Open), len(s.High), len(s.Low), n)
	}
	if s.Volume != nil && len(s.Volume) != n {
		return fmt.Errorf("series length mismatch: volume=%d close=%d", len(s.Volume), n)
	}
	for i := 1; i < n; i++ {
		if s.Time[i] < s.Time[i-1] {
			return fmt.Errorf("time decreases at index %d: %d < %d", i, s.Time[i], s.Time[i-1])
		}
	}
	return nil
}

func (s *Series) Candle(i int) Candle {
	c := Candle{
		Time:  s.Time[i],
		Open:  s.Open[i],
		High:  s.High[i],
		Low:   s.Low[i],
		Close: s.Close[i],
	}
	if s.Volume != nil {
		c.Volume = s.Volume[i]
		c.HasVolume = true
	}
	return c
}

// Bounds returns the first and last timestamps.
func (s *Series) Bounds() (first, last int64, ok bool) {
	if s.Len() == 0 || len(s.Time) == 0 {
		return 0, 0, false
	}
	return s.Time[0], s.Time[len(s.Time)-1], true
}

// PriceRange returns the lowest low and highest high.
func (s *Series) PriceRange() (lo, hi float64, ok bool) {
	if s.Len() == 0 || len(s.High) != len(s.Low) {
		return 0, 0, false
	}
	lo = math.Inf(1)
	hi = math.Inf(-1)
	for i := range s.Low {
		if s.Low[i] < lo {
			lo = s.Low[i]
		}
		if s.High[i] > hi {
			hi = s.High[i]
		}
	}
	return lo, hi, true
}

// Interval returns the median spacing between candles in seconds, or 0
// with fewer than two candles.
func (s *Series) Interval() int64 {
	if s == nil || len(s.Time) < 2 {
		return 0
	}
	steps := make([]int64, 0, len(s.Time)-1)
	for i := 1; i < len(s.Time); i++ {
		if d := s.Time[i] - s.Time[i-1]; d > 0 {
			steps = append(steps, d)
		}
	}
	if len(steps) == 0 {
		return 0
	}
	sort.Slice(steps, func(i, j int) bool { return steps[i] < steps[j] })
	return steps[len(steps)/2]
}

// IntervalLabel names the candle interval, e.g. "M5" or "H1".
func (s *Series) IntervalLabel() string {
	label, err := SecondsToTFString(int32(s.Interval()))
	if err != nil {
		return "?"
	}
	return label
}

// VolumeBars returns the volume histogram values: real volume when the
// feed has it, otherwise the high-low range scaled by ChartVolumeProxyScale.
func (s *Series) VolumeBars() []float64 {
	n := s.Len()
	out := make([]float64, n)
	if n == 0 {
		return out
	}
	if s.Volume != nil {
		copy(out, s.Volume)
		return out
	}
	for i := 0; i < n; i++ {
		out[i] = math.Abs(s.High[i]-s.Low[i]) * ChartVolumeProxyScale
	}
	return out
}
