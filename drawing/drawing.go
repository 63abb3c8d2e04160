// Package drawing holds chart annotations and the geometry behind them:
// Fibonacci levels, trendline slope and extension, snapping a click to
// the nearest OHLC value, and parallel-line construction.
//
// A Drawing is one of three variants. Geometry functions are stateless;
// the caller owns each drawing's lifecycle.
package drawing

import (
	"errors"
	"fmt"
	"math"

	"github.com/rustyeddy/chartkit/pkg/id"
)

// ErrInvalidDrawing reports a drawing missing a required field.
var ErrInvalidDrawing = errors.New("invalid drawing")

// Kind tags a drawing variant.
type Kind string

const (
	KindHorizontalLine Kind = "horizontal_line"
	KindTrendline      Kind = "trendline"
	KindFibonacci      Kind = "fibonacci"
)

// Point anchors a drawing to a candle time (unix seconds) and a price.
type Point struct {
	Time  int64   `json:"time"`
	Price float64 `json:"price"`
}

// Style is passed through to the renderer untouched.
type Style struct {
	Color string `json:"color,omitempty"`
	Width int    `json:"width,omitempty"`
}

// FibLevel is one configurable ratio of a Fibonacci drawing.
type FibLevel struct {
	Value   float64 `json:"value"`
	Label   string  `json:"label"`
	Enabled bool    `json:"enabled"`
}

// Drawing is implemented by HorizontalLine, Trendline and
// FibonacciRetracement only.
type Drawing interface {
	Kind() Kind
	DrawingID() string
	Validate() error
	drawing()
}

type HorizontalLine struct {
	ID    string
	Price float64
	Style Style
}

type Trendline struct {
	ID          string
	Point1      Point
	Point2      Point
	ExtendLeft  bool
	ExtendRight bool
	Style       Style
}

type FibonacciRetracement struct {
	ID              string
	StartPoint      Point
	EndPoint        Point
	Levels          []FibLevel
	ExtensionLevels []FibLevel
	Style           Style
}

func (HorizontalLine) Kind() Kind       { return KindHorizontalLine }
func (Trendline) Kind() Kind            { return KindTrendline }
func (FibonacciRetracement) Kind() Kind { return KindFibonacci }

func (h HorizontalLine) DrawingID() string       { return h.ID }
func (t Trendline) DrawingID() string            { return t.ID }
func (f FibonacciRetracement) DrawingID() string { return f.ID }

func (HorizontalLine) drawing()       {}
func (Trendline) drawing()            {}
func (FibonacciRetracement) drawing() {}

func NewHorizontalLine(price float64) HorizontalLine {
	return HorizontalLine{ID: id.New(), Price: price}
}

func NewTrendline(p1, p2 Point) Trendline {
	return Trendline{ID: id.New(), Point1: p1, Point2: p2}
}

// NewFibonacci uses the default retracement and extension levels.
func NewFibonacci(start, end Point) FibonacciRetracement {
	return FibonacciRetracement{
		ID:              id.New(),
		StartPoint:      start,
		EndPoint:        end,
		Levels:          DefaultRetracementLevels(),
		ExtensionLevels: DefaultExtensionLevels(),
	}
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

func validPoint(name string, p Point) error {
	if p.Time <= 0 {
		return fmt.Errorf("%w: %s has no time", ErrInvalidDrawing, name)
	}
	if !finite(p.Price) {
		return fmt.Errorf("%w: %s price is not finite", ErrInvalidDrawing, name)
	}
	return nil
}

func (h HorizontalLine) Validate() error {
	if !finite(h.Price) {
		return fmt.Errorf("%w: price is not finite", ErrInvalidDrawing)
	}
	return nil
}

func (t Trendline) Validate() error {
	if err := validPoint("point1", t.Point1); err != nil {
		return err
	}
	return validPoint("point2", t.Point2)
}

func (f FibonacciRetracement) Validate() error {
	if err := validPoint("startPoint", f.StartPoint); err != nil {
		return err
	}
	if err := validPoint("endPoint", f.EndPoint); err != nil {
		return err
	}
	for _, l := range append(append([]FibLevel{}, f.Levels...), f.ExtensionLevels...) {
		if !finite(l.Value) {
			return fmt.Errorf("%w: level %q is not finite", ErrInvalidDrawing, l.Label)
		}
	}
	return nil
}
