package logging

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LevelEnv names the environment variable holding the log level.
const LevelEnv = "TAKEOUT_EXIF_LOG_LEVEL"

// Init initializes the global logger with configuration from environment variables.
// TAKEOUT_EXIF_LOG_LEVEL controls the log level: debug, info, warn, error (default: info).
// verbose forces debug regardless of the environment.
func Init(verbose bool) {
	level := ParseLevel(os.Getenv(LevelEnv))
	if verbose {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
}

// ParseLevel maps a level name to a zerolog level, defaulting to info.
func ParseLevel(name string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
