package thicket

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

const (
	defaultCancelThreshold = 36
	defaultPanThreshold    = 4
	defaultZoomThreshold   = 0.05
	defaultMaxTouchPoints  = 10
)

// Config holds the tunables of a stage: gesture thresholds, input limits and
// debug output.
type Config struct {
	Debug DebugConfig `toml:"debug" yaml:"debug"`
	Press PressConfig `toml:"press" yaml:"press"`
	Pan   PanConfig   `toml:"pan" yaml:"pan"`
	Zoom  ZoomConfig  `toml:"zoom" yaml:"zoom"`
	Input InputConfig `toml:"input" yaml:"input"`
}

// DebugConfig enables debug mode and selects note categories by name
// ("events", "grabs", "gestures", "focus", "all").
type DebugConfig struct {
	Enabled bool     `toml:"enabled" yaml:"enabled"`
	Notes   []string `toml:"notes" yaml:"notes"`
}

// PressConfig configures press and click recognition.
type PressConfig struct {
	// CancelThreshold is the distance in pixels a press may travel before it
	// stops being a press. Negative disables cancellation.
	CancelThreshold float64 `toml:"cancel_threshold" yaml:"cancel_threshold"`
}

// PanConfig configures pan recognition.
type PanConfig struct {
	// BeginThreshold is the distance in pixels a point must travel before a
	// pan is recognized.
	BeginThreshold float64 `toml:"begin_threshold" yaml:"begin_threshold"`
}

// ZoomConfig configures pinch-zoom recognition.
type ZoomConfig struct {
	// BeginThreshold is the relative change in finger distance needed
	// before a zoom is recognized.
	BeginThreshold float64 `toml:"begin_threshold" yaml:"begin_threshold"`
}

// InputConfig configures the input backend.
type InputConfig struct {
	MaxTouchPoints int `toml:"max_touch_points" yaml:"max_touch_points"`
}

// DefaultConfig returns the configuration a new stage starts with.
func DefaultConfig() Config {
	return Config{
		Press: PressConfig{CancelThreshold: defaultCancelThreshold},
		Pan:   PanConfig{BeginThreshold: defaultPanThreshold},
		Zoom:  ZoomConfig{BeginThreshold: defaultZoomThreshold},
		Input: InputConfig{MaxTouchPoints: defaultMaxTouchPoints},
	}
}

// LoadConfig decodes data in the given format ("toml" or "yaml") on top of
// DefaultConfig. Keys absent from data keep their defaults.
func LoadConfig(data []byte, format string) (Config, error) {
	cfg := DefaultConfig()
	switch strings.ToLower(format) {
	case "toml":
		if _, err := toml.NewDecoder(bytes.NewReader(data)).Decode(&cfg); err != nil {
			return Config{}, fmt.Errorf("decode toml config: %w", err)
		}
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("decode yaml config: %w", err)
		}
	default:
		return Config{}, fmt.Errorf("decode config: unknown format %q", format)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfigFile reads a config file, picking the format from its extension.
func LoadConfigFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	format := strings.TrimPrefix(filepath.Ext(path), ".")
	cfg, err := LoadConfig(data, format)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Pan.BeginThreshold < 0 {
		return fmt.Errorf("pan.begin_threshold must not be negative, got %v", c.Pan.BeginThreshold)
	}
	if c.Zoom.BeginThreshold < 0 {
		return fmt.Errorf("zoom.begin_threshold must not be negative, got %v", c.Zoom.BeginThreshold)
	}
	if c.Input.MaxTouchPoints <= 0 {
		return fmt.Errorf("input.max_touch_points must be positive, got %d", c.Input.MaxTouchPoints)
	}
	if _, err := c.Debug.flags(); err != nil {
		return err
	}
	return nil
}

func (d DebugConfig) flags() (DebugFlags, error) {
	var flags DebugFlags
	for _, name := range d.Notes {
		f, ok := debugFlagNames[strings.ToLower(name)]
		if !ok {
			return 0, fmt.Errorf("debug.notes: unknown category %q", name)
		}
		flags |= f
	}
	return flags, nil
}

// ApplyConfig installs cfg on the stage. Gestures without an explicit
// threshold pick the new values up on their next event.
func (s *Stage) ApplyConfig(cfg Config) error {
	if err := cfg.validate(); err != nil {
		return fmt.Errorf("apply config: %w", err)
	}
	flags, _ := cfg.Debug.flags()
	s.config = cfg
	s.SetDebugMode(cfg.Debug.Enabled)
	s.SetDebugFlags(flags)
	return nil
}

// Config returns the stage configuration.
func (s *Stage) Config() Config { return s.config }
