// Package config defines process configuration and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers defaults, an optional YAML file and environment variables.
// - External errors are wrapped with this package's sentinel errors.
package config

import (
	"fmt"
	"runtime"
	"time"
)

// Simulation modes.
const (
	ModeSequential = "sequential"
	ModeParallel   = "parallel"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text, json or console.
	LogFormat string `koanf:"log_format"`

	// LeagueFile is the YAML league document to simulate.
	LeagueFile string `koanf:"league_file"`

	// Weeks limits the season length. Zero uses every recorded week.
	Weeks int `koanf:"weeks"`

	// Mode is either sequential or parallel.
	Mode string `koanf:"mode"`

	// WorkerCount sets the number of range workers in parallel mode.
	WorkerCount int `koanf:"worker_count"`

	// ChunkSize is the number of orderings per dispatched range.
	ChunkSize uint64 `koanf:"chunk_size"`

	// Addr configures the HTTP listen address, e.g. ":9080". Empty disables HTTP.
	Addr string `koanf:"addr"`

	// Linger keeps the HTTP view up after the run finishes.
	Linger time.Duration `koanf:"linger"`

	// DatabasePath selects the SQLite result store. Empty keeps results in memory.
	DatabasePath string `koanf:"database_path"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:    "info",
		LogFormat:   "text",
		Mode:        ModeSequential,
		WorkerCount: runtime.NumCPU(),
		ChunkSize:   1 << 16,
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch c.Mode {
	case ModeSequential, ModeParallel:
	default:
		return fmt.Errorf("%w: mode must be %q or %q, got %q", ErrInvalidConfig, ModeSequential, ModeParallel, c.Mode)
	}
	if c.Weeks < 0 {
		return fmt.Errorf("%w: weeks must not be negative", ErrInvalidConfig)
	}
	if c.WorkerCount <= 0 {
		return fmt.Errorf("%w: worker_count must be positive", ErrInvalidConfig)
	}
	if c.ChunkSize == 0 {
		return fmt.Errorf("%w: chunk_size must be positive", ErrInvalidConfig)
	}
	if c.Linger < 0 {
		return fmt.Errorf("%w: linger must not be negative", ErrInvalidConfig)
	}
	switch c.LogFormat {
	case "text", "json", "console":
	default:
		return fmt.Errorf("%w: unknown log_format %q", ErrInvalidConfig, c.LogFormat)
	}
	return nil
}
