// Package pipeline drives the sidecar-to-media update across a bounded worker pool.
package pipeline

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/fpang/takeout-exif/internal/exiftool"
	"github.com/fpang/takeout-exif/internal/filehandler"
	"github.com/rs/zerolog/log"
)

// Options configures a Run.
type Options struct {
	// Workers is the pool size. 0 means runtime.NumCPU().
	Workers int

	// DryRun stops before writing and reports StatusWouldUpdate instead.
	DryRun bool

	// Tools creates one exiftool.Tool per worker.
	Tools exiftool.Factory

	// Prober gates every write on the cached exiftool version probe. Optional.
	Prober *exiftool.Prober

	// Observer receives every Result. Optional.
	Observer Observer
}

// Run processes every sidecar and returns the aggregated Summary. Per-file
// failures are counted, never returned. The returned error is non-nil only
// when ctx was canceled during the run.
func Run(ctx context.Context, sidecars []string, opts Options) (Summary, error) {
	start := time.Now()

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(sidecars) && len(sidecars) > 0 {
		workers = len(sidecars)
	}

	var c counters
	c.found.Add(int64(len(sidecars)))

	log.Info().
		Int("sidecars", len(sidecars)).
		Int("workers", workers).
		Bool("dry_run", opts.DryRun).
		Msg("Starting pipeline")

	locks := newPathLock()
	jobs := make(chan string)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()

			tool := newWorkerTool(opts.Tools, id)
			defer tool.Close()

			proc := &Processor{
				handlers: filehandler.NewHandlers(tool, opts.Prober),
				locks:    locks,
				dryRun:   opts.DryRun,
			}

			for path := range jobs {
				r := proc.Process(ctx, path)
				c.record(r)
				if opts.Observer != nil {
					opts.Observer.Observe(r)
				}
			}
		}(i)
	}

	var runErr error
dispatch:
	for _, path := range sidecars {
		select {
		case <-ctx.Done():
			runErr = ctx.Err()
			break dispatch
		case jobs <- path:
		}
	}
	close(jobs)
	wg.Wait()
	if runErr == nil {
		runErr = ctx.Err()
	}

	summary := c.snapshot()
	summary.Elapsed = time.Since(start)

	event := log.Info()
	if runErr != nil {
		event = log.Warn().Err(runErr)
	}
	event.
		Int64("found", summary.Found).
		Int64("updated", summary.Updated).
		Int64("skipped", summary.Skipped).
		Int64("errors", summary.Errors).
		Dur("elapsed", summary.Elapsed).
		Msg("Pipeline finished")

	return summary, runErr
}

// newWorkerTool creates the worker's Tool. If the factory fails, the worker
// still runs: every tool call then reports the startup error, so each file
// fails (or is probed as undated) individually.
func newWorkerTool(factory exiftool.Factory, id int) exiftool.Tool {
	if factory == nil {
		return brokenTool{err: fmt.Errorf("%w: no tool configured", exiftool.ErrToolUnavailable)}
	}
	tool, err := factory()
	if err != nil {
		log.Error().Err(err).Int("worker", id).Msg("Failed to start exiftool")
		return brokenTool{err: err}
	}
	return tool
}

type brokenTool struct {
	err error
}

func (b brokenTool) ReadFields(context.Context, string, []string) (map[string]string, error) {
	return nil, b.err
}

func (b brokenTool) WriteFields(context.Context, string, []exiftool.Field) error {
	return b.err
}

func (b brokenTool) Close() error { return nil }
