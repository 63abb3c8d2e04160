package cmd

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rustyeddy/chartkit/config"
	"github.com/rustyeddy/chartkit/internal/logger"
	"github.com/rustyeddy/chartkit/internal/metrics"
	"github.com/rustyeddy/chartkit/market"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "chartkit",
	Short: "Candlestick chart analytics from the command line",
	Long: `Chartkit runs the analytics behind a candlestick chart over candle files.

It provides tools for:
  - Technical indicators (SMA, EMA, RSI, MACD, Bollinger, ATR, ...)
  - Candlestick pattern detection
  - Fibonacci levels and drawing checks
  - Viewport zoom and scroll arithmetic
  - CSV and XLSX export of results and trade statistics

Candles come from a .csv/.json file (--data) or a SQLite database
(--db with --symbol).`,
	SilenceUsage:       true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: report,
}

var (
	cfgFile     string
	dataPath    string
	dbPath      string
	symbol      string
	fromFlag    string
	toFlag      string
	logLevel    string
	logFormat   string
	showMetrics bool

	cfg  *config.Config
	mets *metrics.Metrics
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&cfgFile, "config", "c", "", "config file (yaml or json); defaults apply when empty")
	pf.StringVarP(&dataPath, "data", "d", "", "candle file (.csv or .json)")
	pf.StringVar(&dbPath, "db", "", "SQLite database with a candles table")
	pf.StringVarP(&symbol, "symbol", "s", "", "symbol to read from --db")
	pf.StringVar(&fromFlag, "from", "", "first candle time for --db (ISO-8601 or epoch)")
	pf.StringVar(&toFlag, "to", "", "last candle time for --db (ISO-8601 or epoch)")
	pf.StringVar(&logLevel, "log-level", "", "override log.level (debug, info, warn, error)")
	pf.StringVar(&logFormat, "log-format", "", "override log.format (text or json)")
	pf.BoolVar(&showMetrics, "metrics", false, "print run counters when done")
}

func setup(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if logFormat != "" {
		cfg.Log.Format = logFormat
	}
	logger.Init(cfg.Log.Level, cfg.Log.Format, cmd.ErrOrStderr())
	mets = metrics.NewMetrics()
	return nil
}

func report(cmd *cobra.Command, args []string) error {
	if !showMetrics || mets == nil {
		return nil
	}
	lines, err := mets.Summary()
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	fmt.Fprintln(w, "\nMetrics:")
	for _, l := range lines {
		fmt.Fprintf(w, "  %s\n", l)
	}
	return nil
}

func parseBound(v string) (int64, error) {
	if v == "" {
		return 0, nil
	}
	return market.ParseTime(v)
}

// loadSeries reads candles from --data or --db.
func loadSeries(cmd *cobra.Command) (*market.Series, error) {
	var (
		s   *market.Series
		err error
	)

	switch {
	case dataPath != "":
		s, err = market.LoadFile(dataPath)
		if err != nil {
			return nil, fmt.Errorf("load candles: %w", err)
		}

	case dbPath != "":
		if symbol == "" {
			return nil, fmt.Errorf("--symbol is required with --db")
		}
		from, err := parseBound(fromFlag)
		if err != nil {
			return nil, fmt.Errorf("--from: %w", err)
		}
		to, err := parseBound(toFlag)
		if err != nil {
			return nil, fmt.Errorf("--to: %w", err)
		}

		src, err := market.NewSQLiteSource(dbPath)
		if err != nil {
			return nil, fmt.Errorf("open db: %w", err)
		}
		defer src.Close()

		s, err = src.Candles(cmd.Context(), symbol, from, to)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", symbol, err)
		}

	default:
		return nil, fmt.Errorf("one of --data or --db is required")
	}

	mets.CandlesLoaded.Add(float64(s.Len()))
	return s, nil
}

func describeSeries(w io.Writer, s *market.Series) {
	first, last, ok := s.Bounds()
	if !ok {
		fmt.Fprintf(w, "%s: no candles\n", s.Symbol)
		return
	}
	fmt.Fprintf(w, "%s %s: %s candles, %s .. %s\n",
		s.Symbol, s.IntervalLabel(), humanize.Comma(int64(s.Len())), formatUnix(first), formatUnix(last))
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func formatUnix(sec int64) string {
	return time.Unix(sec, 0).UTC().Format("2006-01-02 15:04")
}

func formatFloatUnix(sec float64) string {
	return formatUnix(int64(math.Floor(sec)))
}
