package patterns

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/rustyeddy/chartkit/market"
)

// Bias is the direction a pattern points to.
type Bias string

const (
	Bullish Bias = "bullish"
	Bearish Bias = "bearish"
	Neutral Bias = "neutral"
)

// Info describes a pattern for marker rendering.
type Info struct {
	ID      string
	Name    string
	Bias    Bias
	Candles int
}

type options struct {
	dojiThreshold float64
}

// Option tunes detection.
type Option func(*options)

// WithDojiThreshold overrides DefaultDojiThreshold.
func WithDojiThreshold(t float64) Option {
	return func(o *options) {
		if t > 0 {
			o.dojiThreshold = t
		}
	}
}

type detector func(c Candles, o options) []Detection

type entry struct {
	Info
	detect detector
}

var registry = []entry{
	{Info{"doji", "Doji", Neutral, 1}, func(c Candles, o options) []Detection { return Doji(c, o.dojiThreshold) }},
	{Info{"hammer", "Hammer", Bullish, 1}, func(c Candles, _ options) []Detection { return Hammer(c) }},
	{Info{"inverted_hammer", "Inverted Hammer", Bullish, 1}, func(c Candles, _ options) []Detection { return InvertedHammer(c) }},
	{Info{"bullish_engulfing", "Bullish Engulfing", Bullish, 2}, func(c Candles, _ options) []Detection { return BullishEngulfing(c) }},
	{Info{"bearish_engulfing", "Bearish Engulfing", Bearish, 2}, func(c Candles, _ options) []Detection { return BearishEngulfing(c) }},
	{Info{"morning_star", "Morning Star", Bullish, 3}, func(c Candles, _ options) []Detection { return MorningStar(c) }},
	{Info{"evening_star", "Evening Star", Bearish, 3}, func(c Candles, _ options) []Detection { return EveningStar(c) }},
	{Info{"three_white_soldiers", "Three White Soldiers", Bullish, 3}, func(c Candles, _ options) []Detection { return ThreeWhiteSoldiers(c) }},
	{Info{"three_black_crows", "Three Black Crows", Bearish, 3}, func(c Candles, _ options) []Detection { return ThreeBlackCrows(c) }},
}

func normalizeID(id string) string {
	id = strings.ToLower(strings.TrimSpace(id))
	return strings.NewReplacer("_", "", "-", "", " ", "").Replace(id)
}

func find(id string) (entry, bool) {
	key := normalizeID(id)
	if key == "" {
		return entry{}, false
	}
	for _, e := range registry {
		if normalizeID(e.ID) == key {
			return e, true
		}
	}
	return entry{}, false
}

// Lookup returns metadata for a pattern id. Ids ignore case and
// separators, so "invertedHammer" and "inverted_hammer" match.
func Lookup(id string) (Info, bool) {
	e, ok := find(id)
	return e.Info, ok
}

// IDs lists every pattern id in registry order.
func IDs() []string {
	out := make([]string, len(registry))
	for i, e := range registry {
		out[i] = e.ID
	}
	return out
}

func buildOptions(opts []Option) options {
	o := options{dojiThreshold: DefaultDojiThreshold}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Detect resolves id to its detector and runs it. Unknown ids, missing
// arrays and empty or ragged input return an empty result.
func Detect(id string, opens, highs, lows, closes []float64, opts ...Option) []Detection {
	e, ok := find(id)
	if !ok {
		slog.Warn("unknown pattern", "id", id)
		return []Detection{}
	}

	c := Candles{Open: opens, High: highs, Low: lows, Close: closes}
	if c.Len() == 0 {
		return []Detection{}
	}

	out := e.detect(c, buildOptions(opts))
	if out == nil {
		out = []Detection{}
	}
	return out
}

// DetectSeries runs Detect over a market series.
func DetectSeries(id string, s *market.Series, opts ...Option) []Detection {
	if s == nil {
		return []Detection{}
	}
	return Detect(id, s.Open, s.High, s.Low, s.Close, opts...)
}

// Match is a detection tagged with its pattern.
type Match struct {
	Pattern string `json:"pattern"`
	Detection
}

// DetectAll runs the given patterns (every pattern when ids is empty) and
// returns the matches ordered by index, then by the order of ids.
func DetectAll(s *market.Series, ids []string, opts ...Option) []Match {
	if len(ids) == 0 {
		ids = IDs()
	}

	var out []Match
	for _, id := range ids {
		info, ok := Lookup(id)
		if !ok {
			slog.Warn("unknown pattern", "id", id)
			continue
		}
		for _, d := range DetectSeries(info.ID, s, opts...) {
			out = append(out, Match{Pattern: info.ID, Detection: d})
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}
