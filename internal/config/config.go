// Package config resolves run settings from defaults, environment variables
// and command-line flags, in that order of precedence (later wins).
package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"
)

// Environment variables read by FromEnv.
const (
	EnvWorkers     = "TAKEOUT_EXIF_WORKERS"
	EnvExiftool    = "TAKEOUT_EXIF_EXIFTOOL"
	EnvToolTimeout = "TAKEOUT_EXIF_TOOL_TIMEOUT"
	EnvStayOpen    = "TAKEOUT_EXIF_STAY_OPEN"
)

// DefaultToolTimeout bounds each exiftool invocation.
const DefaultToolTimeout = 2 * time.Minute

// Config holds everything a run needs besides the target directory.
type Config struct {
	Workers     int
	Exiftool    string // binary name or path; empty means look up "exiftool" in PATH
	ToolTimeout time.Duration
	StayOpen    bool
	DryRun      bool
	ReportPath  string
	Verbose     bool

	// MaxDepth and Limit bound sidecar discovery. 0 means unlimited.
	MaxDepth int
	Limit    int
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Workers:     runtime.NumCPU(),
		ToolTimeout: DefaultToolTimeout,
	}
}

// FromEnv returns Default overridden by any set environment variables.
func FromEnv() (Config, error) {
	cfg := Default()
	var errs []error

	if v := strings.TrimSpace(os.Getenv(EnvWorkers)); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", EnvWorkers, err))
		} else {
			cfg.Workers = n
		}
	}

	if v := strings.TrimSpace(os.Getenv(EnvExiftool)); v != "" {
		cfg.Exiftool = v
	}

	if v := strings.TrimSpace(os.Getenv(EnvToolTimeout)); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", EnvToolTimeout, err))
		} else {
			cfg.ToolTimeout = d
		}
	}

	if v := strings.TrimSpace(os.Getenv(EnvStayOpen)); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", EnvStayOpen, err))
		} else {
			cfg.StayOpen = b
		}
	}

	return cfg, errors.Join(errs...)
}

// Validate reports settings that cannot be used.
func (c Config) Validate() error {
	var errs []error
	if c.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers must be at least 1, got %d", c.Workers))
	}
	if c.ToolTimeout <= 0 {
		errs = append(errs, fmt.Errorf("tool timeout must be positive, got %s", c.ToolTimeout))
	}
	if c.MaxDepth < 0 {
		errs = append(errs, fmt.Errorf("max depth cannot be negative, got %d", c.MaxDepth))
	}
	if c.Limit < 0 {
		errs = append(errs, fmt.Errorf("limit cannot be negative, got %d", c.Limit))
	}
	return errors.Join(errs...)
}
