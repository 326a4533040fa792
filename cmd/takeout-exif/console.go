package main

import (
	"fmt"
	"io"
	"sync/atomic"

	"github.com/fpang/takeout-exif/internal/cli"
	"github.com/fpang/takeout-exif/internal/pipeline"
)

// console prints one line per processed sidecar, naming the sidecar path.
// Failures go to errOut.
type console struct {
	out    io.Writer
	errOut io.Writer
	would  atomic.Int64
}

func newConsole(out, errOut io.Writer) *console {
	return &console{out: out, errOut: errOut}
}

func (c *console) Observe(r pipeline.Result) {
	switch r.Status {
	case pipeline.StatusUpdated:
		fmt.Fprintf(c.out, "Updated: %s\n", r.Sidecar)
	case pipeline.StatusSkipped:
		fmt.Fprintf(c.out, "Skipped (already has EXIF date): %s\n", r.Sidecar)
	case pipeline.StatusWouldUpdate:
		c.would.Add(1)
		fmt.Fprintf(c.out, "Would update: %s -> %s\n", r.Sidecar, r.DateTime)
	case pipeline.StatusFailed:
		fmt.Fprintf(c.errOut, "Error processing %s: %v\n", r.Sidecar, r.Err)
	}
}

func (c *console) wouldUpdate() int64 {
	return c.would.Load()
}

func printSummary(w io.Writer, s pipeline.Summary, dryRun bool, wouldUpdate int64) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Summary:")
	fmt.Fprintf(w, "  Metadata files found: %d\n", s.Found)
	fmt.Fprintf(w, "  Media files updated: %d\n", s.Updated)
	fmt.Fprintf(w, "  Errors: %d\n", s.Errors)
	fmt.Fprintf(w, "  Already dated (skipped): %d\n", s.Skipped)
	if dryRun {
		fmt.Fprintf(w, "  Would update (dry run): %d\n", wouldUpdate)
	}
	fmt.Fprintf(w, "  Elapsed: %s\n", cli.FormatDurationShort(s.Elapsed))
}
