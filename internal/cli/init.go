package cli

import (
	"time"

	"github.com/fpang/takeout-exif/internal/config"
	"github.com/fpang/takeout-exif/internal/exiftool"
	"github.com/rs/zerolog/log"
)

// Tools is the exiftool wiring for one run.
type Tools struct {
	Factory exiftool.Factory
	Prober  *exiftool.Prober
	Path    string // resolved binary, empty if not found
	Version string // probed version, empty if unavailable
}

// InitTools resolves and probes exiftool, then returns the per-worker factory
// and the shared write gate. A missing exiftool is logged, not fatal: images
// that already carry a date are still reported as skipped, and every write
// fails with exiftool.ErrToolUnavailable.
func InitTools(cfg config.Config) Tools {
	start := time.Now()
	t := Tools{
		Factory: exiftool.NewFactory(exiftool.Options{
			Binary:   cfg.Exiftool,
			Timeout:  cfg.ToolTimeout,
			StayOpen: cfg.StayOpen,
		}),
		Prober: exiftool.NewProber(cfg.Exiftool, cfg.ToolTimeout),
	}

	if path, err := exiftool.Resolve(cfg.Exiftool); err == nil {
		t.Path = path
	}

	version, err := t.Prober.Check()
	if err != nil {
		log.Error().Err(err).Msg("exiftool unavailable - dates cannot be written")
		return t
	}
	t.Version = version

	log.Info().
		Str("path", t.Path).
		Str("version", version).
		Bool("stayOpen", cfg.StayOpen).
		Dur("probeDuration", time.Since(start)).
		Msg("exiftool ready")
	return t
}
