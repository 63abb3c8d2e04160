package market

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTime(t *testing.T) {
	tests := []struct {
		name    string
		in      any
		want    int64
		wantErr bool
	}{
		{"epoch seconds", float64(1704067200), 1704067200, false},
		{"epoch millis", float64(1704067200123), 1704067200, false},
		{"epoch int", int64(1704067200), 1704067200, false},
		{"numeric string", "1704067200", 1704067200, false},
		{"millis string", "1704067200000", 1704067200, false},
		{"rfc3339", "2024-01-01T00:00:00Z", 1704067200, false},
		{"rfc3339 offset", "2024-01-01T02:00:00+02:00", 1704067200, false},
		{"iso no zone", "2024-01-01T00:00:00", 1704067200, false},
		{"date only", "2024-01-01", 1704067200, false},
		{"short year", "24-01-01 00:00", 1704067200, false},
		{"short year afternoon", "24-01-01 13:30", 1704067200 + 13*3600 + 30*60, false},
		{"garbage", "yesterday", 0, true},
		{"empty", "  ", 0, true},
		{"nil", nil, 0, true},
		{"bool", true, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTime(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadCSVSkipsBadRows(t *testing.T) {
	data := `Time,Open,High,Low,Close,Volume
2024-01-01T00:02:00Z,3,4,2,3.5,30
not-a-time,1,2,0.5,1.5,10
2024-01-01T00:00:00Z,1,2,0.5,1.5,10
2024-01-01T00:01:00Z,1.5,x,1,2,20
`
	s, err := LoadCSV(strings.NewReader(data))
	require.NoError(t, err)
	require.NoError(t, s.Validate())

	assert.Equal(t, 2, s.Len())
	// sorted by time
	assert.Equal(t, int64(1704067200), s.Time[0])
	assert.Equal(t, int64(1704067320), s.Time[1])
	assert.Equal(t, []float64{10, 30}, s.Volume)
}

func TestLoadCSVMissingColumn(t *testing.T) {
	_, err := LoadCSV(strings.NewReader("time,open,high,close\n"))
	assert.Error(t, err)
}

func TestLoadJSON(t *testing.T) {
	data := `[
		{"time": "2024-01-01T00:00:00Z", "open": 1, "high": 2, "low": 0.5, "close": 1.5},
		{"time": 1704067260000, "open": 1.5, "high": 2.5, "low": 1, "close": 2},
		{"time": "24-01-01 00:02", "open": 2, "high": 3, "low": 1.5, "close": 2.5},
		{"time": "bogus", "open": 2, "high": 3, "low": 1.5, "close": 2.5},
		{"time": 1704067380, "open": "n/a", "high": 3, "low": 1.5, "close": 2.5},
		{"time": 1704067380, "open": 2, "high": 3, "low": 1.5}
	]`
	s, err := LoadJSON(strings.NewReader(data))
	require.NoError(t, err)

	assert.Equal(t, 3, s.Len())
	assert.Equal(t, []int64{1704067200, 1704067260, 1704067320}, s.Time)
	assert.Nil(t, s.Volume)
}

func TestLoadJSONBadDocument(t *testing.T) {
	_, err := LoadJSON(strings.NewReader(`{"time": 1704067200}`))
	assert.Error(t, err)

	_, err = LoadJSON(strings.NewReader(`[{"time": 1704067200, "close": "x"}]`))
	assert.ErrorIs(t, err, ErrNoData)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "EURUSD.csv")
	require.NoError(t, os.WriteFile(path, []byte("time,open,high,low,close\n1704067200,1,2,0.5,1.5\n"), 0644))

	s, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "EURUSD", s.Symbol)
	assert.Equal(t, 1, s.Len())

	_, err = LoadFile(filepath.Join(dir, "candles.txt"))
	assert.Error(t, err)
}

func TestSeriesHelpers(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Unix()
	s := NewSeries("X", []Candle{
		{Time: base, Open: 10, High: 12, Low: 9, Close: 11},
		{Time: base + 3600, Open: 11, High: 15, Low: 10, Close: 14},
		{Time: base + 7200, Open: 14, High: 14, Low: 8, Close: 9},
	})

	first, last, ok := s.Bounds()
	require.True(t, ok)
	assert.Equal(t, base, first)
	assert.Equal(t, base+7200, last)

	lo, hi, ok := s.PriceRange()
	require.True(t, ok)
	assert.Equal(t, 8.0, lo)
	assert.Equal(t, 15.0, hi)

	assert.Equal(t, int64(3600), s.Interval())
	assert.Equal(t, "H1", s.IntervalLabel())

	// no volume in the feed: chart proxy
	assert.Equal(t, []float64{3e6, 5e6, 6e6}, s.VolumeBars())

	c := s.Candle(1)
	assert.True(t, c.Bullish())
	assert.Equal(t, 3.0, c.Body())
	assert.Equal(t, 1.0, c.UpperShadow())
	assert.Equal(t, 1.0, c.LowerShadow())
	assert.Equal(t, 14.0, c.BodyTop())
	assert.Equal(t, 11.0, c.BodyBottom())
	assert.Equal(t, 5.0, c.Range())

	c = s.Candle(2)
	assert.True(t, c.Bearish())
	assert.False(t, c.Bullish())
	assert.Equal(t, 14.0, c.BodyTop())
	assert.Equal(t, 0.0, c.UpperShadow())
}

func TestSeriesValidate(t *testing.T) {
	s := &Series{
		Time:  []int64{2, 1},
		Open:  []float64{1, 1},
		High:  []float64{1, 1},
		Low:   []float64{1, 1},
		Close: []float64{1, 1},
	}
	assert.Error(t, s.Validate())

	s.Time = []int64{1}
	assert.Error(t, s.Validate())

	var nilSeries *Series
	assert.ErrorIs(t, nilSeries.Validate(), ErrNoData)
	assert.Equal(t, 0, nilSeries.Len())
}

func TestSQLiteSource(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "candles.db")
	src, err := NewSQLiteSource(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = src.Close() })

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`INSERT INTO candles (symbol, time, open, high, low, close, volume) VALUES
		('EUR_USD', 120, 1.2, 1.3, 1.1, 1.25, 300),
		('EUR_USD', 60, 1.1, 1.2, 1.0, 1.15, 200),
		('EUR_USD', 0, 1.0, 1.1, 0.9, 1.05, 100),
		('USD_JPY', 60, 150, 151, 149, 150.5, 10)`)
	require.NoError(t, err)

	s, err := src.Candles(context.Background(), "EUR_USD", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, "EUR_USD", s.Symbol)
	assert.Equal(t, []int64{0, 60, 120}, s.Time)
	assert.Equal(t, []float64{100, 200, 300}, s.Volume)

	s, err = src.Candles(context.Background(), "EUR_USD", 60, 60)
	require.NoError(t, err)
	assert.Equal(t, 1, s.Len())

	_, err = src.Candles(context.Background(), "GBP_USD", 0, 0)
	assert.ErrorIs(t, err, ErrNoData)
}
