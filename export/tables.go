package export

import (
	"strconv"
	"time"

	"github.com/rustyeddy/chartkit/indicators"
	"github.com/rustyeddy/chartkit/market"
	"github.com/rustyeddy/chartkit/patterns"
)

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}

func ts(sec int64) string {
	return time.Unix(sec, 0).UTC().Format(time.RFC3339)
}

// IndicatorTable lays out one row per candle: time, close, then a column
// per indicator line named "<id>.<line>". Missing values are empty cells.
func IndicatorTable(s *market.Series, results ...indicators.Result) Table {
	t := Table{Name: "indicators", Header: []string{"time", "close"}}
	for _, r := range results {
		for _, l := range r.Lines {
			name := r.ID
			if len(r.Lines) > 1 || l.Name != r.ID {
				name += "." + l.Name
			}
			t.Header = append(t.Header, name)
		}
	}

	for i := 0; i < s.Len(); i++ {
		row := []string{ts(s.Time[i]), f(s.Close[i])}
		for _, r := range results {
			for _, l := range r.Lines {
				cell := ""
				if i < len(l.Values) && l.Values[i].OK {
					cell = f(l.Values[i].V)
				}
				row = append(row, cell)
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// PatternTable lists matches with the candle time they end on.
func PatternTable(s *market.Series, matches []patterns.Match) Table {
	t := Table{
		Name:   "patterns",
		Header: []string{"time", "index", "pattern", "name", "bias", "reliability"},
	}
	for _, m := range matches {
		when := ""
		if m.Index >= 0 && m.Index < s.Len() && m.Index < len(s.Time) {
			when = ts(s.Time[m.Index])
		}
		info, _ := patterns.Lookup(m.Pattern)
		t.Rows = append(t.Rows, []string{
			when,
			strconv.Itoa(m.Index),
			m.Pattern,
			info.Name,
			string(info.Bias),
			strconv.FormatFloat(m.Reliability, 'f', 2, 64),
		})
	}
	return t
}
