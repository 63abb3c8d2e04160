package drawing

import (
	"fmt"
	"math"
)

var (
	retracementValues = []float64{0, 0.236, 0.382, 0.5, 0.618, 0.786, 1}
	extensionValues   = []float64{1.272, 1.618, 2, 2.618}
)

// LevelLabel renders a ratio as a percentage, 0.618 -> "61.8%".
func LevelLabel(v float64) string {
	return fmt.Sprintf("%g%%", math.Round(v*1000)/10)
}

// Levels builds labelled levels for the given ratios.
func Levels(values []float64, enabled bool) []FibLevel {
	out := make([]FibLevel, len(values))
	for i, v := range values {
		out[i] = FibLevel{Value: v, Label: LevelLabel(v), Enabled: enabled}
	}
	return out
}

// DefaultRetracementLevels are all enabled.
func DefaultRetracementLevels() []FibLevel {
	return Levels(retracementValues, true)
}

// DefaultExtensionLevels start disabled; the user opts in per level.
func DefaultExtensionLevels() []FibLevel {
	return Levels(extensionValues, false)
}

// FibPrice is start + (end-start)*value. Values outside [0,1] are
// extensions beyond the anchors.
func FibPrice(start, end, value float64) float64 {
	return start + (end-start)*value
}

// LevelPrice is a level resolved against a drawing's anchors.
type LevelPrice struct {
	Value float64 `json:"value"`
	Label string  `json:"label"`
	Price float64 `json:"price"`
}

// Prices resolves the enabled retracement and extension levels. A value
// present in both lists appears once, at its first position.
func (f FibonacciRetracement) Prices() []LevelPrice {
	seen := make(map[float64]bool)
	var out []LevelPrice
	for _, list := range [][]FibLevel{f.Levels, f.ExtensionLevels} {
		for _, l := range list {
			if !l.Enabled || seen[l.Value] {
				continue
			}
			seen[l.Value] = true
			out = append(out, LevelPrice{
				Value: l.Value,
				Label: l.Label,
				Price: FibPrice(f.StartPoint.Price, f.EndPoint.Price, l.Value),
			})
		}
	}
	return out
}
