package drawing

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rustyeddy/chartkit/market"
	"github.com/rustyeddy/chartkit/pkg/id"
)

type wirePoint struct {
	Time  any      `json:"time"`
	Price *float64 `json:"price"`
}

type wireDrawing struct {
	ID              string     `json:"id,omitempty"`
	Type            string     `json:"type"`
	Price           *float64   `json:"price,omitempty"`
	Point1          *wirePoint `json:"point1,omitempty"`
	Point2          *wirePoint `json:"point2,omitempty"`
	ExtendLeft      bool       `json:"extendLeft,omitempty"`
	ExtendRight     bool       `json:"extendRight,omitempty"`
	StartPoint      *wirePoint `json:"startPoint,omitempty"`
	EndPoint        *wirePoint `json:"endPoint,omitempty"`
	Levels          []FibLevel `json:"levels,omitempty"`
	ExtensionLevels []FibLevel `json:"extensionLevels,omitempty"`
	Style           *Style     `json:"style,omitempty"`
}

func toWire(p Point) *wirePoint {
	price := p.Price
	return &wirePoint{Time: p.Time, Price: &price}
}

func styleRef(s Style) *Style {
	if s == (Style{}) {
		return nil
	}
	return &s
}

// Marshal encodes drawings as a JSON array of tagged objects.
func Marshal(ds []Drawing) ([]byte, error) {
	out := make([]wireDrawing, 0, len(ds))
	for i, d := range ds {
		switch v := d.(type) {
		case HorizontalLine:
			price := v.Price
			out = append(out, wireDrawing{ID: v.ID, Type: string(KindHorizontalLine), Price: &price, Style: styleRef(v.Style)})
		case Trendline:
			out = append(out, wireDrawing{
				ID:          v.ID,
				Type:        string(KindTrendline),
				Point1:      toWire(v.Point1),
				Point2:      toWire(v.Point2),
				ExtendLeft:  v.ExtendLeft,
				ExtendRight: v.ExtendRight,
				Style:       styleRef(v.Style),
			})
		case FibonacciRetracement:
			out = append(out, wireDrawing{
				ID:              v.ID,
				Type:            string(KindFibonacci),
				StartPoint:      toWire(v.StartPoint),
				EndPoint:        toWire(v.EndPoint),
				Levels:          v.Levels,
				ExtensionLevels: v.ExtensionLevels,
				Style:           styleRef(v.Style),
			})
		default:
			return nil, fmt.Errorf("drawing %d: unsupported type %T", i, d)
		}
	}
	return json.Marshal(out)
}

func parseKind(s string) (Kind, bool) {
	key := strings.NewReplacer("_", "", "-", "", " ", "").Replace(strings.ToLower(s))
	switch key {
	case "horizontalline", "hline":
		return KindHorizontalLine, true
	case "trendline":
		return KindTrendline, true
	case "fibonacci", "fibonacciretracement", "fib":
		return KindFibonacci, true
	}
	return "", false
}

func fromWire(name string, p *wirePoint) (Point, error) {
	if p == nil || p.Time == nil || p.Price == nil {
		return Point{}, fmt.Errorf("%w: %s is required", ErrInvalidDrawing, name)
	}
	ts, err := market.ParseTime(p.Time)
	if err != nil {
		return Point{}, fmt.Errorf("%w: %s: %v", ErrInvalidDrawing, name, err)
	}
	return Point{Time: ts, Price: *p.Price}, nil
}

func (w wireDrawing) decode() (Drawing, error) {
	kind, ok := parseKind(w.Type)
	if !ok {
		return nil, fmt.Errorf("%w: unknown type %q", ErrInvalidDrawing, w.Type)
	}

	ident := w.ID
	if ident == "" {
		ident = id.New()
	}
	var style Style
	if w.Style != nil {
		style = *w.Style
	}

	var d Drawing
	switch kind {
	case KindHorizontalLine:
		if w.Price == nil {
			return nil, fmt.Errorf("%w: price is required", ErrInvalidDrawing)
		}
		d = HorizontalLine{ID: ident, Price: *w.Price, Style: style}

	case KindTrendline:
		p1, err := fromWire("point1", w.Point1)
		if err != nil {
			return nil, err
		}
		p2, err := fromWire("point2", w.Point2)
		if err != nil {
			return nil, err
		}
		d = Trendline{ID: ident, Point1: p1, Point2: p2, ExtendLeft: w.ExtendLeft, ExtendRight: w.ExtendRight, Style: style}

	case KindFibonacci:
		start, err := fromWire("startPoint", w.StartPoint)
		if err != nil {
			return nil, err
		}
		end, err := fromWire("endPoint", w.EndPoint)
		if err != nil {
			return nil, err
		}
		f := FibonacciRetracement{ID: ident, StartPoint: start, EndPoint: end, Levels: w.Levels, ExtensionLevels: w.ExtensionLevels, Style: style}
		if f.Levels == nil {
			f.Levels = DefaultRetracementLevels()
		}
		if f.ExtensionLevels == nil {
			f.ExtensionLevels = DefaultExtensionLevels()
		}
		d = f
	}

	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// Unmarshal decodes a JSON array of drawings. Entries with an unknown type
// or a missing required field are dropped with a warning and counted in
// dropped. Only a document that is not an array is an error. Entries
// without an id get a fresh one.
func Unmarshal(data []byte) (out []Drawing, dropped int, err error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, 0, fmt.Errorf("drawings: %w", err)
	}

	out = make([]Drawing, 0, len(raw))
	for i, r := range raw {
		var w wireDrawing
		dec := json.NewDecoder(bytes.NewReader(r))
		dec.UseNumber()
		if err := dec.Decode(&w); err != nil {
			slog.Warn("dropping drawing", "index", i, "err", err)
			dropped++
			continue
		}
		d, err := w.decode()
		if err != nil {
			slog.Warn("dropping drawing", "index", i, "id", w.ID, "err", err)
			dropped++
			continue
		}
		out = append(out, d)
	}
	return out, dropped, nil
}
