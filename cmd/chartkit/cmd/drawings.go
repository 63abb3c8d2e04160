package cmd

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/rustyeddy/chartkit/drawing"
	"github.com/rustyeddy/chartkit/market"
	"github.com/spf13/cobra"
)

var drawingsCmd = &cobra.Command{
	Use:   "drawings",
	Short: "Inspect saved chart drawings",
	Long: `Work with the JSON drawing documents a chart saves.

Subcommands:
  check - Load a drawings file and report on every drawing
  snap  - Snap a click to the nearest candle's OHLC price

Examples:
  chartkit drawings check drawings.json
  chartkit drawings check drawings.json --data eurusd.csv
  chartkit drawings snap --data eurusd.csv --time 2024-01-02T10:00:00Z --price 1.0951`,
}

var drawingsCheckCmd = &cobra.Command{
	Use:   "check <file>",
	Short: "Load a drawings file and report on every drawing",
	Args:  cobra.ExactArgs(1),
	RunE:  runDrawingsCheck,
}

var drawingsSnapCmd = &cobra.Command{
	Use:   "snap",
	Short: "Snap a click to the nearest candle",
	Args:  cobra.NoArgs,
	RunE:  runDrawingsSnap,
}

var (
	snapTime  string
	snapPrice float64
)

func init() {
	rootCmd.AddCommand(drawingsCmd)
	drawingsCmd.AddCommand(drawingsCheckCmd)
	drawingsCmd.AddCommand(drawingsSnapCmd)

	drawingsSnapCmd.Flags().StringVar(&snapTime, "time", "", "click time (ISO-8601 or epoch)")
	drawingsSnapCmd.Flags().Float64Var(&snapPrice, "price", 0, "click price")
	cobra.CheckErr(drawingsSnapCmd.MarkFlagRequired("time"))
	cobra.CheckErr(drawingsSnapCmd.MarkFlagRequired("price"))
}

func runDrawingsCheck(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	ds, dropped, err := drawing.Unmarshal(data)
	if err != nil {
		return err
	}
	mets.DrawingsLoaded.Add(float64(len(ds)))
	mets.DrawingsDropped.Add(float64(dropped))

	// Candles are optional here; without them bounds and extension are skipped.
	var s *market.Series
	if dataPath != "" || dbPath != "" {
		if s, err = loadSeries(cmd); err != nil {
			return err
		}
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%s: %s drawings, %s dropped\n",
		args[0], humanize.Comma(int64(len(ds))), humanize.Comma(int64(dropped)))

	for _, d := range ds {
		fmt.Fprintf(w, "%-18s %s", d.Kind(), d.DrawingID())
		if s != nil {
			if drawing.WithinBounds(d, s) {
				fmt.Fprint(w, "  in view")
			} else {
				fmt.Fprint(w, "  out of view")
			}
		}
		fmt.Fprintln(w)

		switch v := d.(type) {
		case drawing.HorizontalLine:
			fmt.Fprintf(w, "    price %.5f\n", v.Price)

		case drawing.Trendline:
			fmt.Fprintf(w, "    %s %.5f -> %s %.5f  angle %s\n",
				formatUnix(v.Point1.Time), v.Point1.Price,
				formatUnix(v.Point2.Time), v.Point2.Price, drawing.AngleLabel(v))
			if first, last, ok := s.Bounds(); ok && (v.ExtendLeft || v.ExtendRight) {
				seg := drawing.Extend(v, first, last)
				fmt.Fprintf(w, "    extended %s %.5f -> %s %.5f\n",
					formatUnix(seg.From.Time), seg.From.Price,
					formatUnix(seg.To.Time), seg.To.Price)
			}

		case drawing.FibonacciRetracement:
			for _, lp := range v.Prices() {
				fmt.Fprintf(w, "    %-8s %12.5f\n", lp.Label, lp.Price)
			}
		}
	}
	return nil
}

func runDrawingsSnap(cmd *cobra.Command, args []string) error {
	s, err := loadSeries(cmd)
	if err != nil {
		return err
	}
	at, err := market.ParseTime(snapTime)
	if err != nil {
		return fmt.Errorf("--time: %w", err)
	}

	w := cmd.OutOrStdout()
	i, snap, ok := drawing.NearestCandle(s, at, snapPrice, cfg.Drawing.NearestTolerance)
	if !ok {
		fmt.Fprintln(w, "no candles")
		return nil
	}
	fmt.Fprintf(w, "nearest candle #%d at %s\n", i, formatUnix(s.Time[i]))
	if snap.DidSnap {
		fmt.Fprintf(w, "snapped to %s %.5f\n", snap.Field, snap.Price)
	} else {
		fmt.Fprintf(w, "no snap, price stays %.5f\n", snap.Price)
	}
	return nil
}
