// Package indicators provides technical analysis indicators for charting.
//
// Batch functions map price arrays to a Series aligned index-for-index
// with the input. Slots inside an indicator's warm-up hold a Value with
// OK=false, which is distinct from a computed zero. The streaming types
// behind them follow the Update/Ready/Value shape.
package indicators

import (
	"bytes"
	"strconv"

	"github.com/rustyeddy/chartkit/market"
)

// Indicator computes a single streaming value from candles.
// It is deterministic; identical input sequences give identical values.
type Indicator interface {
	// Name returns a stable identifier like "EMA(20)" or "ATR(14)".
	Name() string

	// Warmup returns how many updates are needed before Ready() can be true.
	Warmup() int

	// Reset clears all internal state.
	Reset()

	// Update consumes the next *closed* candle and updates internal state.
	Update(c market.Candle)

	// Ready reports whether Value() is meaningful (warmup completed).
	Ready() bool
}

type ValueF64 interface {
	// Value returns the current indicator value. If !Ready(), it returns 0;
	// callers should always check Ready().
	Value() float64
}

// Value is one slot of an indicator series. OK is false where the
// indicator has no value (warm-up, or an undefined operand).
type Value struct {
	V  float64
	OK bool
}

// Some wraps a computed value.
func Some(v float64) Value {
	return Value{V: v, OK: true}
}

var null = []byte("null")

func (v Value) MarshalJSON() ([]byte, error) {
	if !v.OK {
		return null, nil
	}
	return strconv.AppendFloat(nil, v.V, 'g', -1, 64), nil
}

func (v *Value) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), null) {
		*v = Value{}
		return nil
	}
	f, err := strconv.ParseFloat(string(bytes.TrimSpace(b)), 64)
	if err != nil {
		return err
	}
	*v = Some(f)
	return nil
}

// Series is an indicator line aligned with the candles it was computed from.
type Series []Value

// empty returns n "no value" slots.
func empty(n int) Series {
	return make(Series, n)
}

// Floats splits the series into raw values and their validity flags.
func (s Series) Floats() ([]float64, []bool) {
	vals := make([]float64, len(s))
	ok := make([]bool, len(s))
	for i, v := range s {
		vals[i] = v.V
		ok[i] = v.OK
	}
	return vals, ok
}

// Last returns the final slot.
func (s Series) Last() (float64, bool) {
	if len(s) == 0 {
		return 0, false
	}
	v := s[len(s)-1]
	return v.V, v.OK
}

// Defined counts the slots holding a value.
func (s Series) Defined() int {
	n := 0
	for _, v := range s {
		if v.OK {
			n++
		}
	}
	return n
}
