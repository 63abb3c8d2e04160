// Package viewport computes the visible time window of a chart: zoom
// around a pivot, scroll with clamping at the data edges, and a Controller
// that only accepts windows showing a sane number of candles.
package viewport

import (
	"fmt"
	"math"
)

const (
	DefaultZoomInFactor  = 0.8
	DefaultZoomOutFactor = 1.25
	DefaultScrollPercent = 0.1
)

// TimeRange is a window in unix seconds. Fractional seconds occur after
// zooming.
type TimeRange struct {
	From float64 `json:"from" yaml:"from"`
	To   float64 `json:"to" yaml:"to"`
}

func (r TimeRange) Span() float64 { return r.To - r.From }

// Valid reports From < To with both ends finite.
func (r TimeRange) Valid() bool {
	if math.IsNaN(r.From) || math.IsNaN(r.To) || math.IsInf(r.From, 0) || math.IsInf(r.To, 0) {
		return false
	}
	return r.From < r.To
}

// Contains reports whether t lies in [From, To].
func (r TimeRange) Contains(t int64) bool {
	x := float64(t)
	return x >= r.From && x <= r.To
}

func (r TimeRange) String() string {
	return fmt.Sprintf("[%.0f, %.0f]", r.From, r.To)
}

// Zoom rescales the span by factor around the time at pivotX, the
// fraction of the window from its left edge. pivotX is clamped to [0,1].
// factor below 1 zooms in, above 1 zooms out. A non-positive factor
// returns r unchanged.
func Zoom(r TimeRange, factor, pivotX float64) TimeRange {
	if factor <= 0 || math.IsNaN(factor) {
		return r
	}
	pivotX = math.Max(0, math.Min(1, pivotX))

	span := r.Span()
	pivot := r.From + span*pivotX
	newSpan := span * factor
	return TimeRange{
		From: pivot - newSpan*pivotX,
		To:   pivot + newSpan*(1-pivotX),
	}
}

// ZoomIn narrows the window; factor <= 0 uses DefaultZoomInFactor.
func ZoomIn(r TimeRange, factor, pivotX float64) TimeRange {
	if factor <= 0 {
		factor = DefaultZoomInFactor
	}
	return Zoom(r, factor, pivotX)
}

// ZoomOut widens the window; factor <= 0 uses DefaultZoomOutFactor.
func ZoomOut(r TimeRange, factor, pivotX float64) TimeRange {
	if factor <= 0 {
		factor = DefaultZoomOutFactor
	}
	return Zoom(r, factor, pivotX)
}

// Direction of a scroll.
type Direction int

const (
	Left  Direction = -1
	Right Direction = 1
)

// ParseDirection accepts "left"/"back" and "right"/"forward".
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "left", "back", "l":
		return Left, nil
	case "right", "forward", "r":
		return Right, nil
	}
	return 0, fmt.Errorf("unknown scroll direction %q", s)
}

// Scroll shifts the window by span*percent. With bounds set, an end pushed
// past a data edge is clamped there and the overflow is moved to the other
// end so the span is kept; a final clamp keeps both ends inside bounds
// when the window is wider than the data.
func Scroll(r TimeRange, dir Direction, percent float64, bounds *TimeRange) TimeRange {
	if percent <= 0 {
		percent = DefaultScrollPercent
	}
	shift := r.Span() * percent * float64(dir)
	out := TimeRange{From: r.From + shift, To: r.To + shift}
	if bounds == nil {
		return out
	}

	if out.From < bounds.From {
		overflow := bounds.From - out.From
		out.From = bounds.From
		out.To += overflow
	}
	if out.To > bounds.To {
		overflow := out.To - bounds.To
		out.To = bounds.To
		out.From -= overflow
	}

	out.From = math.Max(out.From, bounds.From)
	out.To = math.Min(out.To, bounds.To)
	return out
}

// DataBounds spans the first to the last timestamp.
func DataBounds(times []int64) (TimeRange, bool) {
	if len(times) == 0 {
		return TimeRange{}, false
	}
	return TimeRange{From: float64(times[0]), To: float64(times[len(times)-1])}, true
}

// VisibleCandleCount counts timestamps inside r, ends included.
func VisibleCandleCount(times []int64, r TimeRange) int {
	n := 0
	for _, t := range times {
		if r.Contains(t) {
			n++
		}
	}
	return n
}

// DefaultRange is the initial window showing the last n candles, or all
// of them when n <= 0 or n exceeds the data. A single candle gets a one
// second window.
func DefaultRange(times []int64, n int) (TimeRange, bool) {
	if len(times) == 0 {
		return TimeRange{}, false
	}
	start := 0
	if n > 0 && n < len(times) {
		start = len(times) - n
	}
	r := TimeRange{From: float64(times[start]), To: float64(times[len(times)-1])}
	if r.To <= r.From {
		r.To = r.From + 1
	}
	return r, true
}
