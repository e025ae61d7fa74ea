// Package config handles bytecalc.toml configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// FileName is the configuration file bytecalc looks for.
const FileName = "bytecalc.toml"

// Config represents a bytecalc.toml configuration.
type Config struct {
	GC      GC      `toml:"gc"`
	Trace   Trace   `toml:"trace"`
	History History `toml:"history"`

	// Dir is the directory containing the config file (set at load time).
	Dir string `toml:"-"`
}

// GC configures the garbage collector.
type GC struct {
	ThresholdBytes int     `toml:"threshold-bytes"`
	GrowthFactor   float64 `toml:"growth-factor"`
}

// Trace configures execution tracing.
type Trace struct {
	Enabled bool `toml:"enabled"`
}

// History configures the evaluation history store.
type History struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		GC: GC{
			ThresholdBytes: 1 << 20,
			GrowthFactor:   2.0,
		},
		History: History{
			Path: "bytecalc-history.db",
		},
	}
}

// Load parses a bytecalc.toml file from the given directory.
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	c := Default()
	if err := toml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	c.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}

	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("invalid config in %s: %w", path, err)
	}

	return c, nil
}

// FindAndLoad walks up from startDir to find a bytecalc.toml file, then
// loads and returns it. Returns the defaults if no file is found.
func FindAndLoad(startDir string) (*Config, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return Default(), nil
		}
		dir = parent
	}
}

func (c *Config) validate() error {
	if c.GC.ThresholdBytes <= 0 {
		return fmt.Errorf("gc.threshold-bytes must be positive, got %d", c.GC.ThresholdBytes)
	}
	if c.GC.GrowthFactor < 1.0 {
		return fmt.Errorf("gc.growth-factor must be at least 1.0, got %v", c.GC.GrowthFactor)
	}
	return nil
}

// HistoryPath returns the history database path, resolved against the
// config file's directory when relative.
func (c *Config) HistoryPath() string {
	if filepath.IsAbs(c.History.Path) || c.Dir == "" {
		return c.History.Path
	}
	return filepath.Join(c.Dir, c.History.Path)
}
