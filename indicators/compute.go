package indicators

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rustyeddy/chartkit/market"
)

var ErrUnknownIndicator = errors.New("unknown indicator")

// Params carries indicator parameters. Zero fields take the indicator's
// default.
type Params struct {
	Period     int     `json:"period" yaml:"period"`
	Fast       int     `json:"fast" yaml:"fast"`
	Slow       int     `json:"slow" yaml:"slow"`
	Signal     int     `json:"signal" yaml:"signal"`
	StdDev     float64 `json:"std_dev" yaml:"std_dev"`
	KPeriod    int     `json:"k_period" yaml:"k_period"`
	DPeriod    int     `json:"d_period" yaml:"d_period"`
	Multiplier float64 `json:"multiplier" yaml:"multiplier"`
}

// DefaultParams returns the conventional settings.
func DefaultParams() Params {
	return Params{
		Period:     14,
		Fast:       12,
		Slow:       26,
		Signal:     9,
		StdDev:     2,
		KPeriod:    14,
		DPeriod:    3,
		Multiplier: 2,
	}
}

func (p Params) withDefaults(info Info) Params {
	d := DefaultParams()
	if p.Period <= 0 {
		p.Period = info.DefaultPeriod
	}
	if p.Fast <= 0 {
		p.Fast = d.Fast
	}
	if p.Slow <= 0 {
		p.Slow = d.Slow
	}
	if p.Signal <= 0 {
		p.Signal = d.Signal
	}
	if p.StdDev <= 0 {
		p.StdDev = d.StdDev
	}
	if p.KPeriod <= 0 {
		p.KPeriod = d.KPeriod
	}
	if p.DPeriod <= 0 {
		p.DPeriod = d.DPeriod
	}
	if p.Multiplier <= 0 {
		p.Multiplier = d.Multiplier
	}
	return p
}

// Line is one named output of an indicator.
type Line struct {
	Name   string `json:"name"`
	Values Series `json:"values"`
}

// Result is an indicator's output lines, in display order.
type Result struct {
	ID    string `json:"id"`
	Lines []Line `json:"lines"`
}

// Line returns the named line.
func (r Result) Line(name string) (Series, bool) {
	for _, l := range r.Lines {
		if l.Name == name {
			return l.Values, true
		}
	}
	return nil, false
}

// Info describes an indicator for the chart layer.
type Info struct {
	ID            string
	Name          string
	Overlay       bool // drawn on the price pane rather than its own pane
	Lines         []string
	DefaultPeriod int
}

type computeFunc func(s *market.Series, p Params) []Series

type entry struct {
	Info
	compute computeFunc
}

var catalog = []entry{
	{Info{"sma", "Simple Moving Average", true, []string{"sma"}, 20},
		func(s *market.Series, p Params) []Series {
			return []Series{SMA(s.Close, p.Period)}
		}},
	{Info{"ema", "Exponential Moving Average", true, []string{"ema"}, 20},
		func(s *market.Series, p Params) []Series {
			return []Series{EMA(s.Close, p.Period)}
		}},
	{Info{"rsi", "Relative Strength Index", false, []string{"rsi"}, 14},
		func(s *market.Series, p Params) []Series {
			return []Series{RSI(s.Close, p.Period)}
		}},
	{Info{"macd", "MACD", false, []string{"macd", "signal", "histogram"}, 0},
		func(s *market.Series, p Params) []Series {
			r := MACD(s.Close, p.Fast, p.Slow, p.Signal)
			return []Series{r.MACD, r.Signal, r.Histogram}
		}},
	{Info{"bollinger", "Bollinger Bands", true, []string{"upper", "middle", "lower"}, 20},
		func(s *market.Series, p Params) []Series {
			r := BollingerBands(s.Close, p.Period, p.StdDev)
			return []Series{r.Upper, r.Middle, r.Lower}
		}},
	{Info{"atr", "Average True Range", false, []string{"atr"}, 14},
		func(s *market.Series, p Params) []Series {
			return []Series{ATRSeries(s.High, s.Low, s.Close, p.Period)}
		}},
	{Info{"stochastic", "Stochastic Oscillator", false, []string{"k", "d"}, 0},
		func(s *market.Series, p Params) []Series {
			r := Stochastic(s.High, s.Low, s.Close, p.KPeriod, p.DPeriod)
			return []Series{r.K, r.D}
		}},
	{Info{"cci", "Commodity Channel Index", false, []string{"cci"}, 20},
		func(s *market.Series, p Params) []Series {
			return []Series{CCI(s.High, s.Low, s.Close, p.Period)}
		}},
	{Info{"williams_r", "Williams %R", false, []string{"williams_r"}, 14},
		func(s *market.Series, p Params) []Series {
			return []Series{WilliamsR(s.High, s.Low, s.Close, p.Period)}
		}},
	{Info{"adx", "Average Directional Index", false, []string{"adx", "plus_di", "minus_di"}, 14},
		func(s *market.Series, p Params) []Series {
			r := ADXSeries(s.High, s.Low, s.Close, p.Period)
			return []Series{r.ADX, r.PlusDI, r.MinusDI}
		}},
	{Info{"obv", "On-Balance Volume", false, []string{"obv"}, 0},
		func(s *market.Series, p Params) []Series {
			return []Series{OBV(s.Close, s.Volume, s.High, s.Low)}
		}},
	{Info{"keltner", "Keltner Channel", true, []string{"upper", "middle", "lower"}, 20},
		func(s *market.Series, p Params) []Series {
			r := KeltnerChannel(s.High, s.Low, s.Close, p.Period, p.Multiplier)
			return []Series{r.Upper, r.Middle, r.Lower}
		}},
}

// normalizeID folds case and separators: "williamsR", "Williams-R" and
// "williams_r" are the same id.
func normalizeID(id string) string {
	id = strings.ToLower(strings.TrimSpace(id))
	return strings.NewReplacer("_", "", "-", "", " ", "").Replace(id)
}

func lookup(id string) (entry, bool) {
	key := normalizeID(id)
	for _, e := range catalog {
		if normalizeID(e.ID) == key {
			return e, true
		}
	}
	return entry{}, false
}

// Lookup returns the indicator's description.
func Lookup(id string) (Info, bool) {
	e, ok := lookup(id)
	return e.Info, ok
}

// Catalog lists the available indicators.
func Catalog() []Info {
	out := make([]Info, len(catalog))
	for i, e := range catalog {
		out[i] = e.Info
	}
	return out
}

// Compute runs the indicator named id over s. An unknown id is logged and
// returns ErrUnknownIndicator with an empty result; a nil or malformed
// series yields lines of "no value" slots.
func Compute(id string, s *market.Series, p Params) (Result, error) {
	e, ok := lookup(id)
	if !ok {
		slog.Warn("unknown indicator", "id", id)
		return Result{ID: id}, fmt.Errorf("%w: %q", ErrUnknownIndicator, id)
	}

	if s == nil {
		s = &market.Series{}
	}
	p = p.withDefaults(e.Info)

	res := Result{ID: e.ID}
	if err := s.Validate(); err != nil && s.Len() > 0 {
		slog.Warn("malformed series", "indicator", e.ID, "error", err)
		for _, name := range e.Lines {
			res.Lines = append(res.Lines, Line{Name: name, Values: empty(s.Len())})
		}
		return res, nil
	}

	for i, values := range e.compute(s, p) {
		res.Lines = append(res.Lines, Line{Name: e.Lines[i], Values: values})
	}
	return res, nil
}
