// Package report writes a machine-readable record of every processed sidecar
// as JSON Lines, optionally Zstandard-compressed.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fpang/takeout-exif/internal/pipeline"
	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
	"github.com/rs/zerolog/log"
)

// CompressedSuffix selects Zstandard compression in Create.
const CompressedSuffix = ".zst"

// Record is one line of the report.
type Record struct {
	Kind       string    `json:"kind"` // "file" or "summary"
	RunID      string    `json:"runId"`
	Time       time.Time `json:"time"`
	Sidecar    string    `json:"sidecar,omitempty"`
	Media      string    `json:"media,omitempty"`
	Class      string    `json:"class,omitempty"`
	Status     string    `json:"status,omitempty"`
	DateTime   string    `json:"datetime,omitempty"`
	Error      string    `json:"error,omitempty"`
	DurationMS int64     `json:"durationMs"`

	// Summary is set only on the "summary" record.
	Summary *Counts `json:"summary,omitempty"`
}

// Counts are the run totals. Zero counts are always written.
type Counts struct {
	Found   int64 `json:"found"`
	Updated int64 `json:"updated"`
	Skipped int64 `json:"skipped"`
	Errors  int64 `json:"errors"`
}

// NewRunID returns a fresh identifier for one invocation.
func NewRunID() string {
	return uuid.New().String()
}

// Writer appends Records. It implements pipeline.Observer and is safe for
// concurrent use.
type Writer struct {
	runID string

	mu     sync.Mutex
	enc    *json.Encoder
	zw     *zstd.Encoder
	closer io.Closer
	err    error
	count  int
}

var _ pipeline.Observer = (*Writer)(nil)

// Create opens path for writing. A ".zst" suffix enables compression.
func Create(path, runID string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create report file: %w", err)
	}

	w, err := NewWriter(f, runID, strings.HasSuffix(path, CompressedSuffix))
	if err != nil {
		f.Close()
		return nil, err
	}
	w.closer = f

	log.Debug().Str("path", path).Str("runId", runID).Msg("Report file opened")
	return w, nil
}

// NewWriter writes records to dst. The caller keeps ownership of dst.
func NewWriter(dst io.Writer, runID string, compress bool) (*Writer, error) {
	w := &Writer{runID: runID}
	if compress {
		zw, err := zstd.NewWriter(dst, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(12)))
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd writer: %w", err)
		}
		w.zw = zw
		dst = zw
	}
	w.enc = json.NewEncoder(dst)
	return w, nil
}

// Observe records one pipeline result.
func (w *Writer) Observe(r pipeline.Result) {
	rec := Record{
		Kind:       "file",
		Sidecar:    r.Sidecar,
		Media:      r.Media,
		Status:     r.Status.String(),
		DateTime:   r.DateTime,
		DurationMS: r.Duration.Milliseconds(),
	}
	if r.Media != "" {
		rec.Class = r.Class.String()
	}
	if r.Err != nil {
		rec.Error = r.Err.Error()
	}
	w.write(rec)
}

// WriteSummary appends the run totals.
func (w *Writer) WriteSummary(s pipeline.Summary) {
	w.write(Record{
		Kind:       "summary",
		DurationMS: s.Elapsed.Milliseconds(),
		Summary: &Counts{
			Found:   s.Found,
			Updated: s.Updated,
			Skipped: s.Skipped,
			Errors:  s.Errors,
		},
	})
}

func (w *Writer) write(rec Record) {
	rec.RunID = w.runID
	rec.Time = time.Now().UTC()

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return
	}
	if err := w.enc.Encode(rec); err != nil {
		w.err = fmt.Errorf("failed to write report record: %w", err)
		log.Error().Err(err).Msg("Report write failed, further records dropped")
		return
	}
	w.count++
}

// Close flushes compression and closes the underlying file, if Create opened
// it. It returns the first write error, if any.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	err := w.err
	if w.zw != nil {
		if zerr := w.zw.Close(); zerr != nil && err == nil {
			err = fmt.Errorf("failed to flush zstd stream: %w", zerr)
		}
	}
	if w.closer != nil {
		if cerr := w.closer.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close report file: %w", cerr)
		}
	}

	log.Debug().Int("records", w.count).Msg("Report closed")
	return err
}
