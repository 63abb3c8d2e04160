package market

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// Schema is the candle table SQLiteSource reads from.
const Schema = `
CREATE TABLE IF NOT EXISTS candles (
	symbol TEXT NOT NULL,
	time INTEGER NOT NULL,
	open REAL NOT NULL,
	high REAL NOT NULL,
	low REAL NOT NULL,
	close REAL NOT NULL,
	volume REAL,
	PRIMARY KEY (symbol, time)
);
`

// SQLiteSource reads candles from a SQLite database.
type SQLiteSource struct {
	db *sql.DB
}

func NewSQLiteSource(path string) (*SQLiteSource, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteSource{db: db}, nil
}

// Candles returns the symbol's candles with from <= time <= to. A zero
// to means no upper bound.
func (s *SQLiteSource) Candles(ctx context.Context, symbol string, from, to int64) (*Series, error) {
	if to == 0 {
		to = 1<<63 - 1
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT time, open, high, low, close, volume
		FROM candles
		WHERE symbol = ? AND time >= ? AND time <= ?
		ORDER BY time`,
		symbol, from, to,
	)
	if err != nil {
		return nil, fmt.Errorf("query candles: %w", err)
	}
	defer rows.Close()

	var candles []Candle
	for rows.Next() {
		var (
			c      Candle
			volume sql.NullFloat64
		)
		if err := rows.Scan(&c.Time, &c.Open, &c.High, &c.Low, &c.Close, &volume); err != nil {
			return nil, fmt.Errorf("scan candle: %w", err)
		}
		if volume.Valid {
			c.Volume = volume.Float64
			c.HasVolume = true
		}
		candles = append(candles, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(candles) == 0 {
		return nil, ErrNoData
	}
	return NewSeries(symbol, candles), nil
}

func (s *SQLiteSource) Close() error {
	return s.db.Close()
}
