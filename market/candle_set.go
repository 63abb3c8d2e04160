package market

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// LoadFile reads a candle file, picking the format from the extension
// (.csv or .json).
func LoadFile(path string) (*Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	symbol := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	var s *Series
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		s, err = LoadCSV(f)
	case ".json":
		s, err = LoadJSON(f)
	default:
		return nil, fmt.Errorf("unsupported candle file %s (want .csv or .json)", path)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	s.Symbol = symbol
	return s, nil
}

// LoadCSV reads candles from CSV with a header row naming time, open,
// high, low, close and optionally volume, in any order. Rows with a bad
// timestamp or price are skipped.
func LoadCSV(r io.Reader) (*Series, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrNoData
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	cols := map[string]int{}
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, req := range []string{"time", "open", "high", "low", "close"} {
		if _, ok := cols[req]; !ok {
			return nil, fmt.Errorf("csv header missing %q column", req)
		}
	}
	volCol, hasVol := cols["volume"]

	var candles []Candle
	badLines := 0
	row := 0
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		row++
		if err != nil {
			badLines++
			slog.Warn("skipping unreadable csv row", "row", row, "error", err)
			continue
		}

		get := func(name string) string {
			i := cols[name]
			if i >= len(rec) {
				return ""
			}
			return rec[i]
		}

		ts, err := ParseTime(get("time"))
		if err != nil {
			badLines++
			slog.Warn("skipping candle with invalid time", "row", row, "error", err)
			continue
		}

		c := Candle{Time: ts}
		prices := []*float64{&c.Open, &c.High, &c.Low, &c.Close}
		for i, name := range []string{"open", "high", "low", "close"} {
			if *prices[i], err = strconv.ParseFloat(strings.TrimSpace(get(name)), 64); err != nil {
				break
			}
		}
		if err != nil {
			badLines++
			slog.Warn("skipping candle with invalid price", "row", row, "error", err)
			continue
		}

		if hasVol && volCol < len(rec) && strings.TrimSpace(rec[volCol]) != "" {
			if v, err := strconv.ParseFloat(strings.TrimSpace(rec[volCol]), 64); err == nil {
				c.Volume = v
				c.HasVolume = true
			}
		}
		candles = append(candles, c)
	}

	if badLines > 0 {
		slog.Warn("csv ingest warnings", "badLines", badLines, "candles", len(candles))
	}
	if len(candles) == 0 {
		return nil, ErrNoData
	}
	return NewSeries("", candles), nil
}

type jsonCandle struct {
	Time   any      `json:"time"`
	Open   *float64 `json:"open"`
	High   *float64 `json:"high"`
	Low    *float64 `json:"low"`
	Close  *float64 `json:"close"`
	Volume *float64 `json:"volume"`
}

// LoadJSON reads an array of {time, open, high, low, close, volume?}
// objects. time may be a string or a number. Entries that fail to decode
// are skipped with a warning; only a document that is not an array fails.
func LoadJSON(r io.Reader) (*Series, error) {
	var raw []json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode candles: %w", err)
	}

	candles := make([]Candle, 0, len(raw))
	for i, msg := range raw {
		var row jsonCandle
		dec := json.NewDecoder(bytes.NewReader(msg))
		dec.UseNumber()
		if err := dec.Decode(&row); err != nil {
			slog.Warn("skipping candle that does not decode", "index", i, "error", err)
			continue
		}

		ts, err := ParseTime(row.Time)
		if err != nil {
			slog.Warn("skipping candle with invalid time", "index", i, "error", err)
			continue
		}
		if row.Open == nil || row.High == nil || row.Low == nil || row.Close == nil {
			slog.Warn("skipping candle with missing price", "index", i)
			continue
		}
		c := Candle{Time: ts, Open: *row.Open, High: *row.High, Low: *row.Low, Close: *row.Close}
		if row.Volume != nil {
			c.Volume = *row.Volume
			c.HasVolume = true
		}
		candles = append(candles, c)
	}

	if len(candles) == 0 {
		return nil, ErrNoData
	}
	return NewSeries("", candles), nil
}
