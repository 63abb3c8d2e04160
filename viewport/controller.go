package viewport

import "log/slog"

// Limits bound the candles a window may show. They are enforced only
// once the series holds at least Threshold candles.
type Limits struct {
	MinVisible int `json:"min_visible" yaml:"min_visible"`
	MaxVisible int `json:"max_visible" yaml:"max_visible"`
	Threshold  int `json:"threshold" yaml:"threshold"`
}

func DefaultLimits() Limits {
	return Limits{MinVisible: 50, MaxVisible: 500, Threshold: 50}
}

// Decision records one Apply call.
type Decision struct {
	Proposed TimeRange
	Visible  int
	Accepted bool
}

// Controller remembers the last window that satisfied the limits and
// reverts to it when a proposal does not. It is not safe for concurrent
// use.
type Controller struct {
	limits   Limits
	last     TimeRange
	hasLast  bool
	decision func(Decision)
}

func NewController(l Limits) *Controller {
	return &Controller{limits: l}
}

// OnDecision registers fn to observe every Apply.
func (c *Controller) OnDecision(fn func(Decision)) {
	c.decision = fn
}

func (c *Controller) Limits() Limits { return c.limits }

// Apply checks proposed against times. When accepted it becomes the
// remembered window and is returned with true. When rejected the
// remembered window is returned unchanged with false; before any window
// was accepted that is the zero range. An invalid range is always
// rejected.
func (c *Controller) Apply(proposed TimeRange, times []int64) (TimeRange, bool) {
	d := Decision{Proposed: proposed}
	if proposed.Valid() {
		d.Visible = VisibleCandleCount(times, proposed)
		d.Accepted = len(times) < c.limits.Threshold ||
			(d.Visible >= c.limits.MinVisible && d.Visible <= c.limits.MaxVisible)
	}

	if c.decision != nil {
		c.decision(d)
	}

	if !d.Accepted {
		slog.Debug("viewport range rejected", "range", proposed.String(), "visible", d.Visible)
		return c.last, false
	}
	c.last = proposed
	c.hasLast = true
	return proposed, true
}

// Last returns the remembered window.
func (c *Controller) Last() (TimeRange, bool) {
	return c.last, c.hasLast
}

// Reset forgets the remembered window, as when a new series is loaded.
func (c *Controller) Reset() {
	c.last = TimeRange{}
	c.hasLast = false
}
