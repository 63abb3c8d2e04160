package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rustyeddy/chartkit/market"
)

// Trade is a closed trade as recorded by a trading journal.
type Trade struct {
	TradeID    string
	Instrument string
	Units      float64
	EntryPrice float64
	ExitPrice  float64
	OpenTime   time.Time
	CloseTime  time.Time
	RealizedPL float64
	Reason     string
}

var tradeHeader = []string{"trade_id", "instrument", "units", "entry_price", "exit_price", "open_time", "close_time", "realized_pl", "reason"}

// LoadTradesCSV reads a journal trades file. The header names the
// columns; open_time and close_time take any format market.ParseTime
// accepts. Bad rows are skipped with a warning.
func LoadTradesCSV(r io.Reader) ([]Trade, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read trades header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, name := range []string{"close_time", "realized_pl"} {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("trades: missing column %q", name)
		}
	}

	get := func(rec []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}
	num := func(rec []string, name string) (float64, error) {
		v := get(rec, name)
		if v == "" {
			return 0, nil
		}
		return strconv.ParseFloat(v, 64)
	}
	when := func(rec []string, name string) (time.Time, error) {
		v := get(rec, name)
		if v == "" {
			return time.Time{}, nil
		}
		sec, err := market.ParseTime(v)
		if err != nil {
			return time.Time{}, err
		}
		return time.Unix(sec, 0).UTC(), nil
	}

	var out []Trade
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			slog.Warn("skipping trade row", "line", line, "err", err)
			continue
		}

		t := Trade{
			TradeID:    get(rec, "trade_id"),
			Instrument: get(rec, "instrument"),
			Reason:     get(rec, "reason"),
		}
		var errs []error
		var e error
		t.Units, e = num(rec, "units")
		errs = append(errs, e)
		t.EntryPrice, e = num(rec, "entry_price")
		errs = append(errs, e)
		t.ExitPrice, e = num(rec, "exit_price")
		errs = append(errs, e)
		t.RealizedPL, e = num(rec, "realized_pl")
		errs = append(errs, e)
		t.OpenTime, e = when(rec, "open_time")
		errs = append(errs, e)
		t.CloseTime, e = when(rec, "close_time")
		errs = append(errs, e)

		if err := errors.Join(errs...); err != nil || t.CloseTime.IsZero() {
			slog.Warn("skipping trade row", "line", line, "err", err)
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

// TradeTable uses the journal column layout.
func TradeTable(trades []Trade) Table {
	t := Table{Name: "trades", Header: append([]string(nil), tradeHeader...)}
	for _, tr := range trades {
		t.Rows = append(t.Rows, []string{
			tr.TradeID,
			tr.Instrument,
			f(tr.Units),
			f(tr.EntryPrice),
			f(tr.ExitPrice),
			formatTime(tr.OpenTime),
			formatTime(tr.CloseTime),
			f(tr.RealizedPL),
			tr.Reason,
		})
	}
	return t
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// Period groups trades by close time.
type Period string

const (
	Daily   Period = "day"
	Weekly  Period = "week"
	Monthly Period = "month"
)

// ParsePeriod accepts day, week or month.
func ParsePeriod(s string) (Period, error) {
	switch p := Period(strings.ToLower(strings.TrimSpace(s))); p {
	case Daily, Weekly, Monthly:
		return p, nil
	case "":
		return Daily, nil
	}
	return "", fmt.Errorf("unknown period %q (want day, week or month)", s)
}

func (p Period) key(t time.Time) string {
	t = t.UTC()
	switch p {
	case Weekly:
		y, w := t.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", y, w)
	case Monthly:
		return t.Format("2006-01")
	}
	return t.Format("2006-01-02")
}

// PeriodStats summarizes the trades closed in one period.
type PeriodStats struct {
	Period       string
	Trades       int
	Wins         int
	Losses       int
	NetPL        float64
	GrossProfit  float64
	GrossLoss    float64 // positive
	WinRate      float64 // wins / trades
	ProfitFactor float64 // gross profit / gross loss, 0 without losses
}

// Summarize groups trades into periods, oldest first. Break-even trades
// count toward Trades but neither Wins nor Losses.
func Summarize(trades []Trade, p Period) []PeriodStats {
	byKey := make(map[string]*PeriodStats)
	for _, t := range trades {
		k := p.key(t.CloseTime)
		st, ok := byKey[k]
		if !ok {
			st = &PeriodStats{Period: k}
			byKey[k] = st
		}
		st.Trades++
		st.NetPL += t.RealizedPL
		switch {
		case t.RealizedPL > 0:
			st.Wins++
			st.GrossProfit += t.RealizedPL
		case t.RealizedPL < 0:
			st.Losses++
			st.GrossLoss -= t.RealizedPL
		}
	}

	out := make([]PeriodStats, 0, len(byKey))
	for _, st := range byKey {
		st.WinRate = float64(st.Wins) / float64(st.Trades)
		if st.GrossLoss > 0 {
			st.ProfitFactor = st.GrossProfit / st.GrossLoss
		}
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Period < out[j].Period })
	return out
}

// PeriodTable renders Summarize output.
func PeriodTable(stats []PeriodStats) Table {
	t := Table{
		Name:   "periods",
		Header: []string{"period", "trades", "wins", "losses", "net_pl", "gross_profit", "gross_loss", "win_rate", "profit_factor"},
	}
	for _, st := range stats {
		t.Rows = append(t.Rows, []string{
			st.Period,
			strconv.Itoa(st.Trades),
			strconv.Itoa(st.Wins),
			strconv.Itoa(st.Losses),
			f(st.NetPL),
			f(st.GrossProfit),
			f(st.GrossLoss),
			strconv.FormatFloat(st.WinRate, 'f', 4, 64),
			strconv.FormatFloat(st.ProfitFactor, 'f', 4, 64),
		})
	}
	return t
}
