package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/rustyeddy/chartkit/patterns"
	"github.com/spf13/cobra"
)

var patternsCmd = &cobra.Command{
	Use:   "patterns [id...]",
	Short: "Detect candlestick patterns",
	Long: `Scan the candles for candlestick patterns.

With no ids the patterns listed in patterns.enabled run, or every pattern
when that list is empty.

Examples:
  chartkit patterns --data eurusd.csv
  chartkit patterns doji hammer --data eurusd.csv --min 0.7
  chartkit patterns --list`,
	RunE: runPatterns,
}

var (
	patMin  float64
	patJSON bool
	patList bool
)

func init() {
	rootCmd.AddCommand(patternsCmd)

	patternsCmd.Flags().Float64Var(&patMin, "min", 0, "only show detections with at least this reliability")
	patternsCmd.Flags().BoolVar(&patJSON, "json", false, "print matches as JSON")
	patternsCmd.Flags().BoolVar(&patList, "list", false, "list the known patterns and exit")
}

func runPatterns(cmd *cobra.Command, args []string) error {
	w := cmd.OutOrStdout()
	if patList {
		for _, id := range patterns.IDs() {
			info, _ := patterns.Lookup(id)
			fmt.Fprintf(w, "%-22s %-22s %-8s %d candle(s)\n", info.ID, info.Name, info.Bias, info.Candles)
		}
		return nil
	}

	s, err := loadSeries(cmd)
	if err != nil {
		return err
	}

	ids := args
	if len(ids) == 0 {
		ids = cfg.Patterns.Enabled
	}

	var matches []patterns.Match
	for _, m := range patterns.DetectAll(s, ids, cfg.PatternOptions()...) {
		if m.Reliability < patMin {
			continue
		}
		matches = append(matches, m)
		mets.PatternDetections.WithLabelValues(m.Pattern).Inc()
	}

	if patJSON {
		if matches == nil {
			matches = []patterns.Match{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(matches)
	}

	describeSeries(w, s)
	for _, m := range matches {
		info, _ := patterns.Lookup(m.Pattern)
		fmt.Fprintf(w, "%-20s #%-6d %-22s %-8s %.2f\n",
			formatUnix(s.Time[m.Index]), m.Index, info.Name, info.Bias, m.Reliability)
	}
	fmt.Fprintf(w, "%s detections\n", humanize.Comma(int64(len(matches))))
	return nil
}
