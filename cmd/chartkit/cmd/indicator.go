package cmd

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rustyeddy/chartkit/indicators"
	"github.com/spf13/cobra"
)

var indicatorCmd = &cobra.Command{
	Use:   "indicator <id>",
	Short: "Compute an indicator over the candles",
	Long: `Compute one indicator and print its most recent values.

Parameters come from the config file (indicators.defaults and
indicators.overrides) and can be overridden with flags.

Examples:
  chartkit indicator rsi --data eurusd.csv --period 7
  chartkit indicator macd --data eurusd.csv --fast 8 --slow 21 --last 20
  chartkit indicator bollinger --db candles.db --symbol EUR_USD --json`,
	Args: cobra.ExactArgs(1),
	RunE: runIndicator,
}

var indicatorsCmd = &cobra.Command{
	Use:   "indicators",
	Short: "List the available indicators",
	Args:  cobra.NoArgs,
	Run:   runIndicators,
}

var (
	indParams indicators.Params
	indLast   int
	indJSON   bool
)

func init() {
	rootCmd.AddCommand(indicatorCmd)
	rootCmd.AddCommand(indicatorsCmd)

	f := indicatorCmd.Flags()
	f.IntVar(&indParams.Period, "period", 0, "lookback period")
	f.IntVar(&indParams.Fast, "fast", 0, "MACD fast EMA period")
	f.IntVar(&indParams.Slow, "slow", 0, "MACD slow EMA period")
	f.IntVar(&indParams.Signal, "signal", 0, "MACD signal period")
	f.Float64Var(&indParams.StdDev, "stddev", 0, "Bollinger band width in standard deviations")
	f.IntVar(&indParams.KPeriod, "k", 0, "Stochastic %K period")
	f.IntVar(&indParams.DPeriod, "d", 0, "Stochastic %D period")
	f.Float64Var(&indParams.Multiplier, "mult", 0, "Keltner ATR multiplier")
	f.IntVar(&indLast, "last", 10, "rows to print (0 for all)")
	f.BoolVar(&indJSON, "json", false, "print the full result as JSON")
}

// mergeParams lets non-zero flag values win over the configured ones.
func mergeParams(base, flags indicators.Params) indicators.Params {
	if flags.Period > 0 {
		base.Period = flags.Period
	}
	if flags.Fast > 0 {
		base.Fast = flags.Fast
	}
	if flags.Slow > 0 {
		base.Slow = flags.Slow
	}
	if flags.Signal > 0 {
		base.Signal = flags.Signal
	}
	if flags.StdDev > 0 {
		base.StdDev = flags.StdDev
	}
	if flags.KPeriod > 0 {
		base.KPeriod = flags.KPeriod
	}
	if flags.DPeriod > 0 {
		base.DPeriod = flags.DPeriod
	}
	if flags.Multiplier > 0 {
		base.Multiplier = flags.Multiplier
	}
	return base
}

func runIndicator(cmd *cobra.Command, args []string) error {
	s, err := loadSeries(cmd)
	if err != nil {
		return err
	}

	id := args[0]
	start := time.Now()
	res, err := indicators.Compute(id, s, mergeParams(cfg.ParamsFor(id), indParams))
	mets.ObserveIndicator(res.ID, start, err)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if indJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	describeSeries(w, s)
	names := make([]string, len(res.Lines))
	for i, l := range res.Lines {
		names[i] = fmt.Sprintf("%14s", l.Name)
	}
	fmt.Fprintf(w, "%-20s %s\n", "time", strings.Join(names, " "))

	from := 0
	if indLast > 0 && s.Len() > indLast {
		from = s.Len() - indLast
	}
	for i := from; i < s.Len(); i++ {
		cells := make([]string, len(res.Lines))
		for j, l := range res.Lines {
			cells[j] = fmt.Sprintf("%14s", "-")
			if l.Values[i].OK {
				cells[j] = fmt.Sprintf("%14.5f", l.Values[i].V)
			}
		}
		fmt.Fprintf(w, "%-20s %s\n", formatUnix(s.Time[i]), strings.Join(cells, " "))
	}
	return nil
}

func runIndicators(cmd *cobra.Command, args []string) {
	w := cmd.OutOrStdout()
	for _, info := range indicators.Catalog() {
		pane := "pane"
		if info.Overlay {
			pane = "overlay"
		}
		fmt.Fprintf(w, "%-12s %-28s %-8s %s\n", info.ID, info.Name, pane, strings.Join(info.Lines, ","))
	}
}
