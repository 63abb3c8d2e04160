package cmd

import (
	"fmt"

	"github.com/rustyeddy/chartkit/drawing"
	"github.com/spf13/cobra"
)

var fibCmd = &cobra.Command{
	Use:   "fib",
	Short: "Print Fibonacci retracement and extension prices",
	Long: `Resolve the configured Fibonacci levels between two prices.

Without --start/--end the swing is taken from the candles: the lowest low
to the highest high (or the reverse with --down).

Examples:
  chartkit fib --start 1.0800 --end 1.1000
  chartkit fib --data eurusd.csv --extensions`,
	Args: cobra.NoArgs,
	RunE: runFib,
}

var (
	fibStart      float64
	fibEnd        float64
	fibDown       bool
	fibExtensions bool
)

func init() {
	rootCmd.AddCommand(fibCmd)

	fibCmd.Flags().Float64Var(&fibStart, "start", 0, "start price")
	fibCmd.Flags().Float64Var(&fibEnd, "end", 0, "end price")
	fibCmd.Flags().BoolVar(&fibDown, "down", false, "swing from the high to the low when reading candles")
	fibCmd.Flags().BoolVar(&fibExtensions, "extensions", false, "enable the extension levels")
}

func runFib(cmd *cobra.Command, args []string) error {
	var start, end drawing.Point
	if cmd.Flags().Changed("start") && cmd.Flags().Changed("end") {
		start.Price, end.Price = fibStart, fibEnd
	} else {
		s, err := loadSeries(cmd)
		if err != nil {
			return fmt.Errorf("need --start and --end or candles: %w", err)
		}
		lo, hi, ok := s.PriceRange()
		if !ok {
			return fmt.Errorf("no candles to measure")
		}
		first, last, _ := s.Bounds()
		start = drawing.Point{Time: first, Price: lo}
		end = drawing.Point{Time: last, Price: hi}
		if fibDown {
			start.Price, end.Price = hi, lo
		}
	}

	levels, extensions := cfg.FibLevels()
	if fibExtensions {
		for i := range extensions {
			extensions[i].Enabled = true
		}
	}
	fib := drawing.FibonacciRetracement{
		StartPoint:      start,
		EndPoint:        end,
		Levels:          levels,
		ExtensionLevels: extensions,
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%.5f -> %.5f\n", start.Price, end.Price)
	for _, lp := range fib.Prices() {
		fmt.Fprintf(w, "  %-8s %12.5f\n", lp.Label, lp.Price)
	}
	return nil
}
