package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rustyeddy/chartkit/drawing"
	"github.com/rustyeddy/chartkit/indicators"
	"github.com/rustyeddy/chartkit/patterns"
	"github.com/rustyeddy/chartkit/viewport"
	"gopkg.in/yaml.v3"
)

// Config holds the tunables of the analytics packages.
type Config struct {
	Indicators IndicatorsConfig `json:"indicators" yaml:"indicators"`
	Patterns   PatternsConfig   `json:"patterns" yaml:"patterns"`
	Drawing    DrawingConfig    `json:"drawing" yaml:"drawing"`
	Viewport   ViewportConfig   `json:"viewport" yaml:"viewport"`
	Log        LogConfig        `json:"log" yaml:"log"`
}

// IndicatorsConfig sets default parameters, optionally overridden per
// indicator id.
type IndicatorsConfig struct {
	Defaults  indicators.Params            `json:"defaults" yaml:"defaults"`
	Overrides map[string]indicators.Params `json:"overrides,omitempty" yaml:"overrides,omitempty"`
}

// PatternsConfig contains detector settings
type PatternsConfig struct {
	DojiThreshold float64  `json:"doji_threshold" yaml:"doji_threshold"`
	Enabled       []string `json:"enabled,omitempty" yaml:"enabled,omitempty"` // empty means all
}

// DrawingConfig contains snap tolerances and Fibonacci ratios
type DrawingConfig struct {
	SnapTolerance     float64   `json:"snap_tolerance" yaml:"snap_tolerance"`
	NearestTolerance  float64   `json:"nearest_tolerance" yaml:"nearest_tolerance"`
	RetracementLevels []float64 `json:"retracement_levels" yaml:"retracement_levels"`
	ExtensionLevels   []float64 `json:"extension_levels" yaml:"extension_levels"`
}

// ViewportConfig contains the visible candle limits and gesture steps
type ViewportConfig struct {
	viewport.Limits `yaml:",inline"`
	ZoomInFactor    float64 `json:"zoom_in_factor" yaml:"zoom_in_factor"`
	ZoomOutFactor   float64 `json:"zoom_out_factor" yaml:"zoom_out_factor"`
	ScrollPercent   float64 `json:"scroll_percent" yaml:"scroll_percent"`
	InitialCandles  int     `json:"initial_candles" yaml:"initial_candles"`
}

// LogConfig contains logging parameters
type LogConfig struct {
	Level  string `json:"level" yaml:"level"`   // debug, info, warn, error
	Format string `json:"format" yaml:"format"` // text or json
}

// LoadFromFile loads configuration from a file. Sections missing from the
// file keep their defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		cfg = Default()
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Load returns Default when path is empty, otherwise LoadFromFile.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	return LoadFromFile(path)
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension)
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	default:
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	p := c.Indicators.Defaults
	if p.Period < 0 || p.Fast < 0 || p.Slow < 0 || p.Signal < 0 || p.KPeriod < 0 || p.DPeriod < 0 {
		return fmt.Errorf("indicators.defaults periods must not be negative")
	}
	if p.Fast > 0 && p.Slow > 0 && p.Fast >= p.Slow {
		return fmt.Errorf("indicators.defaults.fast must be less than slow")
	}
	for id := range c.Indicators.Overrides {
		if _, ok := indicators.Lookup(id); !ok {
			return fmt.Errorf("indicators.overrides: unknown indicator %q", id)
		}
	}

	if c.Patterns.DojiThreshold <= 0 || c.Patterns.DojiThreshold >= 1 {
		return fmt.Errorf("patterns.doji_threshold must be between 0 and 1")
	}
	for _, id := range c.Patterns.Enabled {
		if _, ok := patterns.Lookup(id); !ok {
			return fmt.Errorf("patterns.enabled: unknown pattern %q", id)
		}
	}

	if c.Drawing.SnapTolerance < 0 || c.Drawing.NearestTolerance < 0 {
		return fmt.Errorf("drawing tolerances must not be negative")
	}

	v := c.Viewport
	if v.MinVisible <= 0 || v.MaxVisible < v.MinVisible {
		return fmt.Errorf("viewport.min_visible must be positive and not above max_visible")
	}
	if v.Threshold < 0 {
		return fmt.Errorf("viewport.threshold must not be negative")
	}
	if v.ZoomInFactor <= 0 || v.ZoomInFactor >= 1 {
		return fmt.Errorf("viewport.zoom_in_factor must be between 0 and 1")
	}
	if v.ZoomOutFactor <= 1 {
		return fmt.Errorf("viewport.zoom_out_factor must be greater than 1")
	}
	if v.ScrollPercent <= 0 || v.ScrollPercent > 1 {
		return fmt.Errorf("viewport.scroll_percent must be between 0 and 1")
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error")
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("log.format must be 'text' or 'json'")
	}
	return nil
}

// ParamsFor merges the override for id over the defaults. Zero override
// fields keep the default.
func (c *Config) ParamsFor(id string) indicators.Params {
	p := c.Indicators.Defaults
	info, ok := indicators.Lookup(id)
	if !ok {
		return p
	}

	for key, o := range c.Indicators.Overrides {
		if other, ok := indicators.Lookup(key); !ok || other.ID != info.ID {
			continue
		}
		if o.Period > 0 {
			p.Period = o.Period
		}
		if o.Fast > 0 {
			p.Fast = o.Fast
		}
		if o.Slow > 0 {
			p.Slow = o.Slow
		}
		if o.Signal > 0 {
			p.Signal = o.Signal
		}
		if o.StdDev > 0 {
			p.StdDev = o.StdDev
		}
		if o.KPeriod > 0 {
			p.KPeriod = o.KPeriod
		}
		if o.DPeriod > 0 {
			p.DPeriod = o.DPeriod
		}
		if o.Multiplier > 0 {
			p.Multiplier = o.Multiplier
		}
	}
	return p
}

// PatternOptions converts the pattern section into detector options.
func (c *Config) PatternOptions() []patterns.Option {
	return []patterns.Option{patterns.WithDojiThreshold(c.Patterns.DojiThreshold)}
}

// FibLevels builds the retracement and extension levels for new drawings.
func (c *Config) FibLevels() (levels, extensions []drawing.FibLevel) {
	return drawing.Levels(c.Drawing.RetracementLevels, true),
		drawing.Levels(c.Drawing.ExtensionLevels, false)
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	params := indicators.DefaultParams()
	params.Period = 0 // each indicator's own default period

	return &Config{
		Indicators: IndicatorsConfig{
			Defaults: params,
		},
		Patterns: PatternsConfig{
			DojiThreshold: patterns.DefaultDojiThreshold,
		},
		Drawing: DrawingConfig{
			SnapTolerance:     drawing.DefaultSnapTolerance,
			NearestTolerance:  drawing.DefaultNearestTolerance,
			RetracementLevels: []float64{0, 0.236, 0.382, 0.5, 0.618, 0.786, 1},
			ExtensionLevels:   []float64{1.272, 1.618, 2, 2.618},
		},
		Viewport: ViewportConfig{
			Limits:         viewport.DefaultLimits(),
			ZoomInFactor:   viewport.DefaultZoomInFactor,
			ZoomOutFactor:  viewport.DefaultZoomOutFactor,
			ScrollPercent:  viewport.DefaultScrollPercent,
			InitialCandles: 100,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
