package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/keyscan/debounce-go/pkg/debounce"
	"github.com/keyscan/debounce-go/pkg/scan"
	"github.com/keyscan/debounce-go/pkg/split"
)

// Config is the top-level configuration file.
type Config struct {
	// UnitID names this half in captured events. Empty means generate one.
	UnitID string `yaml:"unit_id"`

	Matrix Matrix `yaml:"matrix"`

	// Algorithm is an algorithm name or wire value.
	Algorithm string `yaml:"algorithm"`

	// DebounceMS is the debounce time; 0 disables debouncing.
	DebounceMS int `yaml:"debounce_ms"`

	ScanInterval time.Duration `yaml:"scan_interval"`

	Split Split `yaml:"split"`

	// EventLog is the path of a .dlog capture file. Empty disables capture.
	EventLog string `yaml:"event_log"`

	// MetricsAddr is the listen address of the Prometheus endpoint.
	MetricsAddr string `yaml:"metrics_addr"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	Scenario Scenario `yaml:"scenario"`
}

// Matrix holds the matrix dimensions.
type Matrix struct {
	Rows int `yaml:"rows"`
	Cols int `yaml:"cols"`
}

// Split configures a primary/secondary pair.
type Split struct {
	Enabled      bool          `yaml:"enabled"`
	Housekeeping time.Duration `yaml:"housekeeping"`
}

// Scenario is a scripted bench run.
type Scenario struct {
	Seed    uint64   `yaml:"seed"`
	Strokes []Stroke `yaml:"strokes"`
}

// Stroke is one scripted keystroke.
type Stroke struct {
	Row     int           `yaml:"row"`
	Col     int           `yaml:"col"`
	Press   time.Duration `yaml:"press"`
	Release time.Duration `yaml:"release"`
	Bounce  time.Duration `yaml:"bounce"`
}

// Default returns the configuration used for omitted fields.
func Default() *Config {
	engine := debounce.DefaultConfig()
	return &Config{
		Matrix:       Matrix{Rows: engine.Rows, Cols: engine.Cols},
		Algorithm:    engine.Algorithm.String(),
		DebounceMS:   int(engine.Time),
		ScanInterval: scan.DefaultInterval,
		Split:        Split{Housekeeping: split.DefaultHousekeepingInterval},
		LogLevel:     "info",
	}
}

// Parse decodes YAML over Default and validates the result.
// Unknown fields are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, &LoadError{
			Message: "failed to parse YAML",
			Cause:   err,
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, &LoadError{
			Message: "invalid configuration",
			Cause:   err,
		}
	}
	return cfg, nil
}

// Load reads and parses a configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{
			File:    path,
			Message: "failed to read file",
			Cause:   err,
		}
	}

	cfg, err := Parse(data)
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) {
			le.File = path
			return nil, le
		}
		return nil, &LoadError{File: path, Message: err.Error()}
	}
	return cfg, nil
}

// Validation errors.
var (
	ErrDebounceTime = errors.New("debounce_ms out of range")
	ErrScanInterval = errors.New("scan_interval must be positive")
	ErrLogLevel     = errors.New("unknown log level")
)

// Validate checks every field.
func (c *Config) Validate() error {
	if _, err := c.AlgorithmValue(); err != nil {
		return err
	}
	if c.DebounceMS < 0 || c.DebounceMS > int(debounce.MaxTime) {
		return fmt.Errorf("%w: %d", ErrDebounceTime, c.DebounceMS)
	}
	if c.ScanInterval <= 0 {
		return fmt.Errorf("%w: %v", ErrScanInterval, c.ScanInterval)
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	return c.BenchScenario().Validate()
}

// AlgorithmValue parses Algorithm.
func (c *Config) AlgorithmValue() (debounce.Algorithm, error) {
	return debounce.ParseAlgorithm(c.Algorithm)
}

// EngineConfig returns the engine settings. Call Validate first.
func (c *Config) EngineConfig() debounce.Config {
	a, _ := c.AlgorithmValue()
	return debounce.Config{
		Rows:      c.Matrix.Rows,
		Cols:      c.Matrix.Cols,
		Algorithm: a,
		Time:      uint8(c.DebounceMS),
		UnitID:    c.UnitID,
	}
}

// BenchScenario converts Scenario for the bench.
func (c *Config) BenchScenario() scan.Scenario {
	s := scan.Scenario{
		Rows: c.Matrix.Rows,
		Cols: c.Matrix.Cols,
		Seed: c.Scenario.Seed,
	}
	for _, st := range c.Scenario.Strokes {
		s.Strokes = append(s.Strokes, scan.Stroke{
			Row:       st.Row,
			Col:       st.Col,
			PressAt:   st.Press,
			ReleaseAt: st.Release,
			Bounce:    st.Bounce,
		})
	}
	return s
}

// SlogLevel parses LogLevel.
func (c *Config) SlogLevel() (slog.Level, error) {
	return ParseLevel(c.LogLevel)
}

// ParseLevel parses debug, info, warn or error.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("%w: %q", ErrLogLevel, s)
	}
}

// LoadError provides details about a configuration loading error.
type LoadError struct {
	// File is the path to the file that failed to load.
	File string

	// Message describes the error.
	Message string

	// Cause is the underlying error, if any.
	Cause error
}

func (e *LoadError) Error() string {
	msg := e.Message
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	if e.File == "" {
		return msg
	}
	return e.File + ": " + msg
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}
