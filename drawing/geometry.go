package drawing

import (
	"fmt"
	"math"

	"github.com/rustyeddy/chartkit/market"
	"github.com/rustyeddy/chartkit/pkg/id"
)

const (
	// AngleScale multiplies price-per-hour before atan so that typical
	// slopes read as distinct angles.
	AngleScale = 100.0

	DefaultSnapTolerance    = 0.01
	DefaultNearestTolerance = 0.02

	msPerSecond = 1000.0
	msPerHour   = 3_600_000.0
)

// Slope is price change per millisecond from Point1 to Point2. Equal
// times give +Inf.
func Slope(t Trendline) float64 {
	dt := float64(t.Point2.Time-t.Point1.Time) * msPerSecond
	if dt == 0 {
		return math.Inf(1)
	}
	return (t.Point2.Price - t.Point1.Price) / dt
}

// AngleDegrees is the display angle of a trendline: atan of the scaled
// price-per-hour, 90 for a vertical line.
func AngleDegrees(t Trendline) float64 {
	m := Slope(t)
	if math.IsInf(m, 0) {
		return 90
	}
	return math.Atan(m*msPerHour*AngleScale) * 180 / math.Pi
}

func AngleLabel(t Trendline) string {
	return fmt.Sprintf("%.1f°", AngleDegrees(t))
}

// Snap is the outcome of snapping a price to a candle.
type Snap struct {
	Price   float64 `json:"price"`
	DidSnap bool    `json:"didSnap"`
	Field   string  `json:"field,omitempty"`
}

// SnapToPrice moves price to the closest of the candle's open, high, low
// or close when that value lies within tolerance*(high-low). Otherwise
// the price comes back unchanged. A non-positive tolerance uses
// DefaultSnapTolerance.
func SnapToPrice(price float64, c market.Candle, tolerance float64) Snap {
	if tolerance <= 0 {
		tolerance = DefaultSnapTolerance
	}

	fields := [...]struct {
		name string
		v    float64
	}{
		{"open", c.Open},
		{"high", c.High},
		{"low", c.Low},
		{"close", c.Close},
	}

	best := 0
	bestDist := math.Abs(price - fields[0].v)
	for i := 1; i < len(fields); i++ {
		if d := math.Abs(price - fields[i].v); d < bestDist {
			best, bestDist = i, d
		}
	}

	if bestDist <= tolerance*(c.High-c.Low) {
		return Snap{Price: fields[best].v, DidSnap: true, Field: fields[best].name}
	}
	return Snap{Price: price}
}

// NearestCandle finds the candle closest to clickTime and snaps price
// against it. A non-positive tolerance uses DefaultNearestTolerance. ok is
// false for an empty series.
func NearestCandle(s *market.Series, clickTime int64, price, tolerance float64) (int, Snap, bool) {
	n := s.Len()
	if n == 0 || len(s.Time) != n {
		return -1, Snap{Price: price}, false
	}
	if tolerance <= 0 {
		tolerance = DefaultNearestTolerance
	}

	best := 0
	bestDist := absInt64(s.Time[0] - clickTime)
	for i := 1; i < n; i++ {
		if d := absInt64(s.Time[i] - clickTime); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best, SnapToPrice(price, s.Candle(best), tolerance), true
}

func absInt64(x int64) int64 {
	if x < 0 {
		return -x
	}
	return x
}

// Segment is the drawable span of a trendline, left to right.
type Segment struct {
	From Point `json:"from"`
	To   Point `json:"to"`
}

func priceAt(t Trendline, at int64) float64 {
	m := Slope(t)
	return t.Point1.Price + m*float64(at-t.Point1.Time)*msPerSecond
}

// Extend projects the trendline to dataStart when ExtendLeft is set and
// to dataEnd when ExtendRight is set, each only when the boundary lies
// beyond the endpoint. A vertical line is never extended.
func Extend(t Trendline, dataStart, dataEnd int64) Segment {
	left, right := t.Point1, t.Point2
	if right.Time < left.Time {
		left, right = right, left
	}
	seg := Segment{From: left, To: right}
	if left.Time == right.Time {
		return seg
	}

	if t.ExtendLeft && dataStart < left.Time {
		seg.From = Point{Time: dataStart, Price: priceAt(t, dataStart)}
	}
	if t.ExtendRight && dataEnd > right.Time {
		seg.To = Point{Time: dataEnd, Price: priceAt(t, dataEnd)}
	}
	return seg
}

// Parallel builds a copy of t passing through click. The original line's
// price at the click time is interpolated and the difference to the click
// price is added to both endpoints. The copy gets a new id.
func Parallel(t Trendline, click Point) Trendline {
	base := t.Point1.Price
	if dt := t.Point2.Time - t.Point1.Time; dt != 0 {
		frac := float64(click.Time-t.Point1.Time) / float64(dt)
		base = t.Point1.Price + (t.Point2.Price-t.Point1.Price)*frac
	}
	offset := click.Price - base

	out := t
	out.ID = id.New()
	out.Point1.Price += offset
	out.Point2.Price += offset
	return out
}

// WithinBounds reports whether a drawing touches the series: a horizontal
// line inside the price range, or a trendline or Fibonacci with at least
// one anchor inside the time span.
func WithinBounds(d Drawing, s *market.Series) bool {
	switch v := d.(type) {
	case HorizontalLine:
		lo, hi, ok := s.PriceRange()
		return ok && v.Price >= lo && v.Price <= hi
	case Trendline:
		return anyInSpan(s, v.Point1, v.Point2)
	case FibonacciRetracement:
		return anyInSpan(s, v.StartPoint, v.EndPoint)
	}
	return false
}

func anyInSpan(s *market.Series, pts ...Point) bool {
	first, last, ok := s.Bounds()
	if !ok {
		return false
	}
	for _, p := range pts {
		if p.Time >= first && p.Time <= last {
			return true
		}
	}
	return false
}
