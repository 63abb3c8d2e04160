package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rustyeddy/chartkit/export"
	"github.com/rustyeddy/chartkit/indicators"
	"github.com/rustyeddy/chartkit/patterns"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export indicators, patterns and trade statistics",
	Long: `Write analytics results as CSV files or an XLSX workbook.

An --out path ending in .xlsx produces one workbook with a sheet per
table; any other path is a directory receiving one CSV per table.

Examples:
  chartkit export --data eurusd.csv --indicators sma,rsi,macd --patterns --out report.xlsx
  chartkit export --trades trades.csv --period week --out reports/`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

var (
	exportOut        string
	exportIndicators string
	exportPatterns   bool
	exportTrades     string
	exportPeriod     string
)

func init() {
	rootCmd.AddCommand(exportCmd)

	f := exportCmd.Flags()
	f.StringVarP(&exportOut, "out", "o", "", "output .xlsx file or CSV directory (required)")
	f.StringVar(&exportIndicators, "indicators", "", "comma separated indicator ids")
	f.BoolVar(&exportPatterns, "patterns", false, "include pattern detections")
	f.StringVar(&exportTrades, "trades", "", "trade journal CSV to summarize")
	f.StringVar(&exportPeriod, "period", "day", "trade summary period: day, week or month")
	cobra.CheckErr(exportCmd.MarkFlagRequired("out"))
}

func runExport(cmd *cobra.Command, args []string) error {
	period, err := export.ParsePeriod(exportPeriod)
	if err != nil {
		return err
	}

	ids := splitList(exportIndicators)
	if len(ids) == 0 && !exportPatterns && exportTrades == "" {
		return fmt.Errorf("nothing to export: use --indicators, --patterns or --trades")
	}

	var tables []export.Table

	if len(ids) > 0 || exportPatterns {
		s, err := loadSeries(cmd)
		if err != nil {
			return err
		}

		if len(ids) > 0 {
			results := make([]indicators.Result, 0, len(ids))
			for _, id := range ids {
				start := time.Now()
				res, err := indicators.Compute(id, s, cfg.ParamsFor(id))
				mets.ObserveIndicator(res.ID, start, err)
				if err != nil {
					return err
				}
				results = append(results, res)
			}
			tables = append(tables, export.IndicatorTable(s, results...))
		}

		if exportPatterns {
			matches := patterns.DetectAll(s, cfg.Patterns.Enabled, cfg.PatternOptions()...)
			for _, m := range matches {
				mets.PatternDetections.WithLabelValues(m.Pattern).Inc()
			}
			tables = append(tables, export.PatternTable(s, matches))
		}
	}

	if exportTrades != "" {
		f, err := os.Open(exportTrades)
		if err != nil {
			return err
		}
		trades, err := export.LoadTradesCSV(f)
		f.Close()
		if err != nil {
			return fmt.Errorf("load trades: %w", err)
		}
		tables = append(tables, export.TradeTable(trades), export.PeriodTable(export.Summarize(trades, period)))
	}

	var paths []string
	if strings.EqualFold(filepath.Ext(exportOut), ".xlsx") {
		if err := export.WriteXLSX(exportOut, tables...); err != nil {
			return err
		}
		paths = []string{exportOut}
	} else {
		if paths, err = export.WriteCSVDir(exportOut, tables...); err != nil {
			return err
		}
	}

	w := cmd.OutOrStdout()
	for _, p := range paths {
		size := "?"
		if fi, err := os.Stat(p); err == nil {
			size = humanize.Bytes(uint64(fi.Size()))
		}
		fmt.Fprintf(w, "wrote %s (%s)\n", p, size)
	}
	return nil
}
