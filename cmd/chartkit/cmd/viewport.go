package cmd

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/rustyeddy/chartkit/market"
	"github.com/rustyeddy/chartkit/viewport"
	"github.com/spf13/cobra"
)

var viewportCmd = &cobra.Command{
	Use:   "viewport",
	Short: "Replay zoom and scroll gestures against the candles",
	Long: `Compute chart windows the way the chart does while zooming and scrolling.

Every proposed window goes through the visible-candle limits; a rejected
window leaves the previous one in place.

Subcommands:
  count  - Count the candles inside a window
  zoom   - Zoom in or out repeatedly around a pivot
  scroll - Scroll left or right repeatedly

Examples:
  chartkit viewport count --data eurusd.csv
  chartkit viewport zoom --data eurusd.csv --steps 5 --pivot 1
  chartkit viewport scroll --data eurusd.csv --dir left --steps 3`,
}

var viewportCountCmd = &cobra.Command{
	Use:   "count",
	Short: "Count the candles inside a window",
	Args:  cobra.NoArgs,
	RunE:  runViewportCount,
}

var viewportZoomCmd = &cobra.Command{
	Use:   "zoom",
	Short: "Zoom in or out around a pivot",
	Args:  cobra.NoArgs,
	RunE:  runViewportZoom,
}

var viewportScrollCmd = &cobra.Command{
	Use:   "scroll",
	Short: "Scroll the window left or right",
	Args:  cobra.NoArgs,
	RunE:  runViewportScroll,
}

var (
	vpFrom    string
	vpTo      string
	vpSteps   int
	vpOut     bool
	vpFactor  float64
	vpPivot   float64
	vpDir     string
	vpPercent float64
)

func init() {
	rootCmd.AddCommand(viewportCmd)
	viewportCmd.AddCommand(viewportCountCmd)
	viewportCmd.AddCommand(viewportZoomCmd)
	viewportCmd.AddCommand(viewportScrollCmd)

	pf := viewportCmd.PersistentFlags()
	pf.StringVar(&vpFrom, "view-from", "", "window start (default: the last viewport.initial_candles candles)")
	pf.StringVar(&vpTo, "view-to", "", "window end")
	pf.IntVar(&vpSteps, "steps", 1, "number of gestures to apply")

	viewportZoomCmd.Flags().BoolVar(&vpOut, "out", false, "zoom out instead of in")
	viewportZoomCmd.Flags().Float64Var(&vpFactor, "factor", 0, "span multiplier per step (default from config)")
	viewportZoomCmd.Flags().Float64Var(&vpPivot, "pivot", 0.5, "pivot as a fraction of the window, 0 = left edge")

	viewportScrollCmd.Flags().StringVar(&vpDir, "dir", "right", "left or right")
	viewportScrollCmd.Flags().Float64Var(&vpPercent, "percent", 0, "fraction of the span per step (default from config)")
}

// initialWindow resolves --view-from/--view-to, falling back to the
// configured number of trailing candles.
func initialWindow(s *market.Series) (viewport.TimeRange, error) {
	if vpFrom != "" || vpTo != "" {
		r, _ := viewport.DataBounds(s.Time)
		if vpFrom != "" {
			from, err := market.ParseTime(vpFrom)
			if err != nil {
				return r, fmt.Errorf("--view-from: %w", err)
			}
			r.From = float64(from)
		}
		if vpTo != "" {
			to, err := market.ParseTime(vpTo)
			if err != nil {
				return r, fmt.Errorf("--view-to: %w", err)
			}
			r.To = float64(to)
		}
		return r, nil
	}

	r, ok := viewport.DefaultRange(s.Time, cfg.Viewport.InitialCandles)
	if !ok {
		return r, market.ErrNoData
	}
	return r, nil
}

func newController() *viewport.Controller {
	c := viewport.NewController(cfg.Viewport.Limits)
	c.OnDecision(mets.ObserveViewport)
	return c
}

func printWindow(w io.Writer, label string, r viewport.TimeRange, times []int64, accepted bool) {
	status := "accepted"
	if !accepted {
		status = "rejected"
	}
	fmt.Fprintf(w, "%-8s %s .. %s  %s candles  %s\n",
		label, formatFloatUnix(r.From), formatFloatUnix(r.To),
		humanize.Comma(int64(viewport.VisibleCandleCount(times, r))), status)
}

func runViewportCount(cmd *cobra.Command, args []string) error {
	s, err := loadSeries(cmd)
	if err != nil {
		return err
	}
	r, err := initialWindow(s)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	describeSeries(w, s)
	full, _ := viewport.DataBounds(s.Time)
	fmt.Fprintf(w, "all:     %s candles\n", humanize.Comma(int64(viewport.VisibleCandleCount(s.Time, full))))
	fmt.Fprintf(w, "window:  %s candles in %s .. %s\n",
		humanize.Comma(int64(viewport.VisibleCandleCount(s.Time, r))), formatFloatUnix(r.From), formatFloatUnix(r.To))
	return nil
}

// replay applies step to the window vpSteps times through a Controller.
func replay(cmd *cobra.Command, step func(viewport.TimeRange, *market.Series) viewport.TimeRange) error {
	s, err := loadSeries(cmd)
	if err != nil {
		return err
	}
	r, err := initialWindow(s)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	c := newController()
	cur, ok := c.Apply(r, s.Time)
	printWindow(w, "start", r, s.Time, ok)
	if !ok {
		cur = r
	}

	for i := 1; i <= vpSteps; i++ {
		proposed := step(cur, s)
		got, ok := c.Apply(proposed, s.Time)
		printWindow(w, fmt.Sprintf("step %d", i), proposed, s.Time, ok)
		if ok {
			cur = got
		}
	}

	if last, ok := c.Last(); ok {
		printWindow(w, "final", last, s.Time, true)
	}
	return nil
}

func runViewportZoom(cmd *cobra.Command, args []string) error {
	factor := vpFactor
	if factor <= 0 {
		factor = cfg.Viewport.ZoomInFactor
		if vpOut {
			factor = cfg.Viewport.ZoomOutFactor
		}
	}
	return replay(cmd, func(r viewport.TimeRange, _ *market.Series) viewport.TimeRange {
		if vpOut {
			return viewport.ZoomOut(r, factor, vpPivot)
		}
		return viewport.ZoomIn(r, factor, vpPivot)
	})
}

func runViewportScroll(cmd *cobra.Command, args []string) error {
	dir, err := viewport.ParseDirection(vpDir)
	if err != nil {
		return err
	}
	percent := vpPercent
	if percent <= 0 {
		percent = cfg.Viewport.ScrollPercent
	}

	return replay(cmd, func(r viewport.TimeRange, s *market.Series) viewport.TimeRange {
		b, ok := viewport.DataBounds(s.Time)
		if !ok {
			return viewport.Scroll(r, dir, percent, nil)
		}
		return viewport.Scroll(r, dir, percent, &b)
	})
}
