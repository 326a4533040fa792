package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fpang/takeout-exif/internal/exifdate"
	"github.com/fpang/takeout-exif/internal/filehandler"
	"github.com/fpang/takeout-exif/internal/sidecar"
	"github.com/rs/zerolog/log"
)

// ErrMediaNotFound means the media file named by a sidecar does not exist.
var ErrMediaNotFound = errors.New("media file not found")

// Processor runs the per-sidecar state machine with one set of handlers.
// It is owned by a single worker.
type Processor struct {
	handlers filehandler.Handlers
	locks    *pathLock
	dryRun   bool
}

// NewProcessor returns a standalone Processor with its own path lock.
func NewProcessor(handlers filehandler.Handlers, dryRun bool) *Processor {
	return &Processor{handlers: handlers, locks: newPathLock(), dryRun: dryRun}
}

// Process takes one sidecar to a terminal state:
//
//  1. resolve the media path
//  2. require the media file to exist
//  3. skip if the media already has a date
//  4. read and parse the sidecar
//  5. decode the timestamp
//  6. write the date (or report it in dry-run mode)
//
// Steps 2 through 6 hold the media path lock. Failures are returned in the
// Result, never retried.
func (p *Processor) Process(ctx context.Context, sidecarPath string) Result {
	start := time.Now()
	r := p.process(ctx, sidecarPath)
	r.Duration = time.Since(start)

	event := log.Debug()
	if r.Status == StatusFailed {
		event = log.Warn().Err(r.Err)
	}
	event.
		Str("sidecar", r.Sidecar).
		Str("media", r.Media).
		Str("status", r.Status.String()).
		Dur("duration", r.Duration).
		Msg("Sidecar processed")
	return r
}

func (p *Processor) process(ctx context.Context, sidecarPath string) Result {
	r := Result{Sidecar: sidecarPath}
	fail := func(err error) Result {
		r.Status = StatusFailed
		r.Err = err
		return r
	}

	media, err := sidecar.MediaPath(sidecarPath)
	if err != nil {
		return fail(err)
	}
	r.Media = media
	r.Class = filehandler.Classify(media)

	if err := ctx.Err(); err != nil {
		return fail(err)
	}

	key := lockKey(media)
	p.locks.Lock(key)
	defer p.locks.Unlock(key)

	info, err := os.Stat(media)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fail(fmt.Errorf("%w: %s", ErrMediaNotFound, media))
	case err != nil:
		return fail(fmt.Errorf("%w: %w", filehandler.ErrMetadataRead, err))
	case info.IsDir():
		return fail(fmt.Errorf("%w: %s is a directory", ErrMediaNotFound, media))
	}

	handler := p.handlers.For(r.Class)

	has, err := handler.HasDate(ctx, media)
	if err != nil {
		return fail(err)
	}
	if has {
		r.Status = StatusSkipped
		return r
	}

	meta, err := sidecar.Read(sidecarPath)
	if err != nil {
		return fail(err)
	}

	datetime, err := exifdate.FromEpochString(meta.PhotoTakenTime.Timestamp)
	if err != nil {
		return fail(err)
	}
	r.DateTime = datetime

	if p.dryRun {
		r.Status = StatusWouldUpdate
		return r
	}

	if err := handler.WriteDate(ctx, media, datetime); err != nil {
		return fail(err)
	}
	r.Status = StatusUpdated
	return r
}

// lockKey normalizes a media path so that differently spelled references to
// one file share a lock.
func lockKey(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}
