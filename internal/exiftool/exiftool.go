// Package exiftool is the boundary to the external ExifTool program, which reads
// and writes date fields across image and video containers.
//
// Two backends implement Tool:
//   - Command runs one exiftool process per call (simple, isolated)
//   - StayOpen keeps one exiftool process alive via barasher/go-exiftool (fast for large trees)
//
// Neither backend is safe for concurrent use; callers create one Tool per worker.
package exiftool

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultBinary is the executable looked up in PATH when no explicit path is configured.
const DefaultBinary = "exiftool"

// Tag names understood by exiftool.
const (
	TagDateTimeOriginal = "DateTimeOriginal"
	TagModifyDate       = "ModifyDate" // EXIF 0x0132, "DateTime" in the EXIF standard
	TagCreateDate       = "CreateDate"
	TagMediaCreateDate  = "MediaCreateDate"
	TagMediaModifyDate  = "MediaModifyDate"
	TagTrackCreateDate  = "TrackCreateDate"
	TagTrackModifyDate  = "TrackModifyDate"
)

var (
	// ErrToolUnavailable means exiftool could not be found or started.
	ErrToolUnavailable = errors.New("exiftool not found. Please install exiftool (https://exiftool.org) or pass --exiftool")

	// ErrToolTimeout means an exiftool invocation exceeded its deadline.
	ErrToolTimeout = errors.New("exiftool invocation timed out")
)

// InvocationError is returned when exiftool ran but reported a failure.
type InvocationError struct {
	Op     string // "read" or "write"
	Path   string
	Stderr string
	Err    error
}

func (e *InvocationError) Error() string {
	detail := e.Stderr
	if detail == "" && e.Err != nil {
		detail = e.Err.Error()
	}
	return fmt.Sprintf("exiftool %s failed for %s: %s", e.Op, e.Path, detail)
}

func (e *InvocationError) Unwrap() error {
	return e.Err
}

// Field is a single tag assignment for WriteFields.
type Field struct {
	Name  string
	Value string
}

// Tool reads and writes named metadata fields on a media file.
type Tool interface {
	// ReadFields returns the raw values of the requested tags that are present in the file.
	ReadFields(ctx context.Context, path string, tags []string) (map[string]string, error)

	// WriteFields sets the given tags in place, without keeping a backup copy.
	WriteFields(ctx context.Context, path string, fields []Field) error

	Close() error
}

// Factory creates a Tool. The pipeline calls it once per worker.
type Factory func() (Tool, error)

// Options configures tool creation.
type Options struct {
	Binary   string
	Timeout  time.Duration
	StayOpen bool
}

// NewFactory returns a Factory for the backend selected by opts.
func NewFactory(opts Options) Factory {
	return func() (Tool, error) {
		if opts.StayOpen {
			return NewStayOpen(opts.Binary, opts.Timeout)
		}
		return NewCommand(opts.Binary, opts.Timeout), nil
	}
}

// Resolve looks up the exiftool executable.
func Resolve(binary string) (string, error) {
	if binary == "" {
		binary = DefaultBinary
	}
	path, err := exec.LookPath(binary)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrToolUnavailable, err)
	}
	return path, nil
}

// Probe runs "exiftool -ver" and returns the reported version.
func Probe(ctx context.Context, binary string) (string, error) {
	path, err := Resolve(binary)
	if err != nil {
		return "", err
	}

	out, err := exec.CommandContext(ctx, path, "-ver").Output()
	if err != nil {
		return "", fmt.Errorf("%w: %s -ver: %w", ErrToolUnavailable, path, err)
	}

	version := strings.TrimSpace(string(out))
	log.Debug().Str("path", path).Str("version", version).Msg("exiftool found")
	return version, nil
}

// Prober runs the version probe once per process and caches the outcome, so a
// missing exiftool is reported as ErrToolUnavailable on every write without
// re-probing.
type Prober struct {
	check func() (string, error)
}

// NewProber returns a Prober for binary. timeout bounds the single probe call.
func NewProber(binary string, timeout time.Duration) *Prober {
	return &Prober{
		check: sync.OnceValues(func() (string, error) {
			ctx := context.Background()
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}
			return Probe(ctx, binary)
		}),
	}
}

// Check returns the cached probe result.
func (p *Prober) Check() (string, error) {
	return p.check()
}

// safePath keeps file names that start with a dash from being read as options.
func safePath(path string) string {
	if strings.HasPrefix(path, "-") {
		return "./" + path
	}
	return path
}
