package market

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// epoch values above this are milliseconds
const millisThreshold = 1e12

var shortLayout = regexp.MustCompile(`^\d{2}-\d{2}-\d{2} \d{2}:\d{2}$`)

var isoLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseTime converts a candle timestamp into unix seconds. It accepts
// ISO-8601 strings, epoch seconds or milliseconds (numbers or numeric
// strings), and the "YY-MM-DD HH:MM" export format with a 20xx year.
// Zone-less strings are read as UTC.
func ParseTime(v any) (int64, error) {
	switch t := v.(type) {
	case nil:
		return 0, fmt.Errorf("missing time")
	case int:
		return epoch(float64(t))
	case int64:
		return epoch(float64(t))
	case float64:
		return epoch(t)
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return 0, fmt.Errorf("invalid time %q: %w", t.String(), err)
		}
		return epoch(f)
	case time.Time:
		return t.Unix(), nil
	case string:
		return parseTimeString(t)
	default:
		return 0, fmt.Errorf("unsupported time type %T", v)
	}
}

func epoch(f float64) (int64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("invalid epoch %v", f)
	}
	if f > millisThreshold {
		f /= 1000
	}
	return int64(math.Floor(f)), nil
}

func parseTimeString(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty time")
	}

	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return epoch(f)
	}

	if shortLayout.MatchString(s) {
		t, err := time.ParseInLocation("2006-01-02 15:04", "20"+s, time.UTC)
		if err != nil {
			return 0, fmt.Errorf("invalid time %q: %w", s, err)
		}
		return t.Unix(), nil
	}

	for _, layout := range isoLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.Unix(), nil
		}
	}
	return 0, fmt.Errorf("unrecognized time format %q", s)
}

func SecondsToTFString(sec int32) (string, error) {
	if sec <= 0 {
		return "", fmt.Errorf("invalid timeframe seconds: %d", sec)
	}

	// Minutes
	if sec < 3600 && sec%60 == 0 {
		return fmt.Sprintf("M%d", sec/60), nil
	}

	// Hours
	if sec < 86400 && sec%3600 == 0 {
		return fmt.Sprintf("H%d", sec/3600), nil
	}

	// Days
	if sec%86400 == 0 {
		days := sec / 86400
		if days == 7 {
			return "W1", nil
		}
		if days == 30 {
			return "MN1", nil
		}
		return fmt.Sprintf("D%d", days), nil
	}

	return "", fmt.Errorf("cannot map timeframe: %d seconds", sec)
}
