package logging

import (
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// StartupLogger collects run identity, tool information, configuration and
// feature flags, then emits a single structured zerolog event summarising how
// the run was configured. This makes it easy to see from a log excerpt exactly
// which settings produced a given set of results.
type StartupLogger struct {
	name         string
	runID        string
	target       string
	toolPath     string
	toolVersion  string
	initDuration time.Duration

	features map[string]bool
	config   map[string]string
}

// NewStartupLogger creates a StartupLogger for the given command name.
func NewStartupLogger(name string) *StartupLogger {
	return &StartupLogger{
		name:     name,
		features: make(map[string]bool),
		config:   make(map[string]string),
	}
}

// RunID sets the identifier shared by the log and the outcome report.
func (s *StartupLogger) RunID(id string) *StartupLogger {
	s.runID = id
	return s
}

// Target sets the directory being processed.
func (s *StartupLogger) Target(dir string) *StartupLogger {
	s.target = dir
	return s
}

// Tool records the exiftool binary and its probed version. An empty version
// means the probe failed.
func (s *StartupLogger) Tool(path, version string) *StartupLogger {
	s.toolPath = path
	s.toolVersion = version
	return s
}

// Feature registers a boolean feature flag (e.g. "dryRun", "stayOpen").
func (s *StartupLogger) Feature(name string, enabled bool) *StartupLogger {
	s.features[name] = enabled
	return s
}

// Config registers a configuration key-value pair.
func (s *StartupLogger) Config(key, value string) *StartupLogger {
	s.config[key] = value
	return s
}

// InitDuration records how long setup took before processing started.
func (s *StartupLogger) InitDuration(d time.Duration) *StartupLogger {
	s.initDuration = d
	return s
}

// Log emits a single structured INFO log event with all collected information.
func (s *StartupLogger) Log() {
	evt := log.Info()

	runDict := zerolog.Dict().
		Str("name", s.name).
		Str("goVersion", runtime.Version()).
		Str("os", runtime.GOOS).
		Str("arch", runtime.GOARCH).
		Int("cpus", runtime.NumCPU()).
		Str("logLevel", zerolog.GlobalLevel().String())

	if s.runID != "" {
		runDict = runDict.Str("runId", s.runID)
	}
	if s.target != "" {
		runDict = runDict.Str("target", s.target)
	}
	evt = evt.Dict("run", runDict)

	if s.toolPath != "" || s.toolVersion != "" {
		evt = evt.Dict("exiftool", zerolog.Dict().
			Str("path", s.toolPath).
			Str("version", s.toolVersion).
			Bool("available", s.toolVersion != ""))
	}

	if len(s.features) > 0 {
		d := zerolog.Dict()
		for k, v := range s.features {
			d = d.Bool(k, v)
		}
		evt = evt.Dict("features", d)
	}

	if len(s.config) > 0 {
		evt = evt.Dict("config", dictFromMap(s.config))
	}

	if s.initDuration > 0 {
		evt = evt.Dur("initDuration", s.initDuration)
	}

	evt.Msg("Run starting")
}

// dictFromMap converts a map[string]string into a zerolog.Event (Dict).
func dictFromMap(m map[string]string) *zerolog.Event {
	d := zerolog.Dict()
	for k, v := range m {
		d = d.Str(k, v)
	}
	return d
}
