package export

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rustyeddy/chartkit/indicators"
	"github.com/rustyeddy/chartkit/market"
	"github.com/rustyeddy/chartkit/patterns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWriteCSVQuoting(t *testing.T) {
	tbl := Table{
		Name:   "notes",
		Header: []string{"id", "note"},
		Rows: [][]string{
			{"1", "plain"},
			{"2", "a, b"},
			{"3", `say "hi"`},
			{"4", "two\nlines"},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, tbl))

	out := buf.String()
	assert.Contains(t, out, `2,"a, b"`)
	assert.Contains(t, out, `3,"say ""hi"""`)
	assert.Contains(t, out, "4,\"two\nlines\"")

	rows, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, tbl.Rows[2], rows[3])
	assert.Equal(t, tbl.Rows[3], rows[4])
}

func TestWriteCSVDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	paths, err := WriteCSVDir(dir,
		Table{Name: "Indicators", Header: []string{"a"}},
		Table{Name: "per day/stats", Header: []string{"b"}},
	)
	require.NoError(t, err)
	require.Len(t, paths, 2)
	assert.Equal(t, filepath.Join(dir, "indicators.csv"), paths[0])
	assert.Equal(t, filepath.Join(dir, "per_day_stats.csv"), paths[1])

	data, err := os.ReadFile(paths[1])
	require.NoError(t, err)
	assert.Equal(t, "b\n", string(data))
}

func TestWriteXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")
	err := WriteXLSX(path,
		Table{Name: "indicators", Header: []string{"time", "close"}, Rows: [][]string{{"2024-01-02T00:00:00Z", "1.500000"}}},
		Table{Name: "a/b:c", Header: []string{"x"}, Rows: [][]string{{"text"}}},
	)
	require.NoError(t, err)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"indicators", "a_b_c"}, f.GetSheetList())

	v, err := f.GetCellValue("indicators", "B2")
	require.NoError(t, err)
	assert.Equal(t, "1.5", v)

	v, err = f.GetCellValue("indicators", "A2")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-02T00:00:00Z", v)

	v, err = f.GetCellValue("a_b_c", "A2")
	require.NoError(t, err)
	assert.Equal(t, "text", v)

	assert.Error(t, WriteXLSX(path))
}

func testSeries() *market.Series {
	var candles []market.Candle
	for i := 0; i < 5; i++ {
		x := float64(i)
		candles = append(candles, market.Candle{
			Time: 1704153600 + int64(i)*3600, Open: 10 + x, High: 11 + x, Low: 9 + x, Close: 10.5 + x,
		})
	}
	return market.NewSeries("TEST", candles)
}

func TestIndicatorTable(t *testing.T) {
	s := testSeries()
	sma, err := indicators.Compute("sma", s, indicators.Params{Period: 3})
	require.NoError(t, err)
	bb, err := indicators.Compute("bollinger", s, indicators.Params{Period: 3})
	require.NoError(t, err)

	tbl := IndicatorTable(s, sma, bb)
	assert.Equal(t, []string{"time", "close", "sma", "bollinger.upper", "bollinger.middle", "bollinger.lower"}, tbl.Header)
	require.Len(t, tbl.Rows, 5)
	assert.Equal(t, "2024-01-02T00:00:00Z", tbl.Rows[0][0])
	assert.Equal(t, "", tbl.Rows[1][2])
	assert.Equal(t, "11.500000", tbl.Rows[2][2])
	assert.Equal(t, "11.500000", tbl.Rows[2][4])
}

func TestPatternTable(t *testing.T) {
	s := testSeries()
	tbl := PatternTable(s, []patterns.Match{
		{Pattern: "doji", Detection: patterns.Detection{Index: 1, Reliability: 0.65}},
		{Pattern: "hammer", Detection: patterns.Detection{Index: 99, Reliability: 0.6}},
	})
	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, []string{"2024-01-02T01:00:00Z", "1", "doji", "Doji", "neutral", "0.65"}, tbl.Rows[0])
	assert.Equal(t, "", tbl.Rows[1][0])

	assert.Len(t, PatternTable(nil, []patterns.Match{{Pattern: "doji"}}).Rows, 1)
}

const tradesCSV = `trade_id,instrument,units,entry_price,exit_price,open_time,close_time,realized_pl,reason
T1,EUR_USD,1000,1.1,1.2,2024-01-02T01:00:00Z,2024-01-02T03:00:00Z,100,"target, hit"
T2,EUR_USD,1000,1.2,1.15,2024-01-02T04:00:00Z,2024-01-02T05:00:00Z,-50,stop
T3,EUR_USD,1000,1.15,1.15,2024-01-03T01:00:00Z,2024-01-03T02:00:00Z,0,flat
T4,EUR_USD,bad,1.15,1.15,2024-01-03T01:00:00Z,2024-01-03T02:00:00Z,0,flat
T5,GBP_USD,500,1.3,1.31,2024-02-01T00:00:00Z,,5,open
T6,GBP_USD,500,1.3,1.32,1706749200,1706752800,10,target
`

func TestLoadTradesCSV(t *testing.T) {
	trades, err := LoadTradesCSV(strings.NewReader(tradesCSV))
	require.NoError(t, err)
	require.Len(t, trades, 4)

	assert.Equal(t, "T1", trades[0].TradeID)
	assert.Equal(t, "target, hit", trades[0].Reason)
	assert.Equal(t, time.Date(2024, 1, 2, 3, 0, 0, 0, time.UTC), trades[0].CloseTime)
	assert.Equal(t, -50.0, trades[1].RealizedPL)
	assert.Equal(t, "T6", trades[3].TradeID)
	assert.Equal(t, time.Date(2024, 2, 1, 2, 0, 0, 0, time.UTC), trades[3].CloseTime)

	_, err = LoadTradesCSV(strings.NewReader("trade_id,units\nT1,3\n"))
	assert.Error(t, err)
}

func TestTradeTableMatchesJournalLayout(t *testing.T) {
	trades, err := LoadTradesCSV(strings.NewReader(tradesCSV))
	require.NoError(t, err)

	tbl := TradeTable(trades)
	assert.Equal(t, tradeHeader, tbl.Header)
	assert.Equal(t, "100.000000", tbl.Rows[0][7])

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, tbl))
	again, err := LoadTradesCSV(&buf)
	require.NoError(t, err)
	assert.Equal(t, trades, again)
}

func TestSummarize(t *testing.T) {
	trades, err := LoadTradesCSV(strings.NewReader(tradesCSV))
	require.NoError(t, err)

	daily := Summarize(trades, Daily)
	require.Len(t, daily, 3)

	assert.Equal(t, PeriodStats{
		Period: "2024-01-02", Trades: 2, Wins: 1, Losses: 1,
		NetPL: 50, GrossProfit: 100, GrossLoss: 50, WinRate: 0.5, ProfitFactor: 2,
	}, daily[0])
	assert.Equal(t, "2024-01-03", daily[1].Period)
	assert.Equal(t, 0, daily[1].Wins)
	assert.Equal(t, 0, daily[1].Losses)
	assert.Equal(t, 0.0, daily[1].WinRate)

	monthly := Summarize(trades, Monthly)
	require.Len(t, monthly, 2)
	assert.Equal(t, "2024-01", monthly[0].Period)
	assert.Equal(t, 3, monthly[0].Trades)

	weekly := Summarize(trades, Weekly)
	assert.Equal(t, "2024-W01", weekly[0].Period)

	tbl := PeriodTable(daily)
	assert.Equal(t, []string{"2024-01-02", "2", "1", "1", "50.000000", "100.000000", "50.000000", "0.5000", "2.0000"}, tbl.Rows[0])

	assert.Empty(t, Summarize(nil, Daily))
}

func TestParsePeriod(t *testing.T) {
	p, err := ParsePeriod("Week")
	require.NoError(t, err)
	assert.Equal(t, Weekly, p)

	p, err = ParsePeriod("")
	require.NoError(t, err)
	assert.Equal(t, Daily, p)

	_, err = ParsePeriod("year")
	assert.Error(t, err)
}
