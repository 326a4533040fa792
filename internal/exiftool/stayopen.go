package exiftool

import (
	"context"
	"errors"
	"fmt"
	"time"

	goexiftool "github.com/barasher/go-exiftool"
	"github.com/rs/zerolog/log"
)

// StayOpen drives a persistent "exiftool -stay_open True -@ -" process.
//
// A call that exceeds the timeout abandons the process: the next call starts a
// new one, and the old one is closed once its pending call returns.
type StayOpen struct {
	binary  string
	timeout time.Duration

	et *goexiftool.Exiftool
}

// Ensure StayOpen implements Tool
var _ Tool = (*StayOpen)(nil)

// NewStayOpen starts a persistent exiftool process.
func NewStayOpen(binary string, timeout time.Duration) (*StayOpen, error) {
	s := &StayOpen{binary: binary, timeout: timeout}
	if err := s.start(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *StayOpen) start() error {
	path, err := Resolve(s.binary)
	if err != nil {
		return err
	}

	et, err := goexiftool.NewExiftool(
		goexiftool.SetExiftoolBinaryPath(path),
		goexiftool.NoPrintConversion(),
	)
	if err != nil {
		return fmt.Errorf("%w: starting stay-open process: %w", ErrToolUnavailable, err)
	}

	log.Debug().Str("path", path).Msg("Started stay-open exiftool process")
	s.et = et
	return nil
}

// ReadFields extracts all metadata of path and returns the requested tags.
func (s *StayOpen) ReadFields(ctx context.Context, path string, tags []string) (map[string]string, error) {
	var results []goexiftool.FileMetadata
	err := s.do(ctx, "read", path, func(et *goexiftool.Exiftool) {
		results = et.ExtractMetadata(path)
	})
	if err != nil {
		return nil, err
	}

	if len(results) == 0 {
		return nil, &InvocationError{Op: "read", Path: path, Err: errors.New("no metadata returned")}
	}
	fm := results[0]
	if fm.Err != nil {
		return nil, &InvocationError{Op: "read", Path: path, Stderr: fm.Err.Error(), Err: fm.Err}
	}

	fields := make(map[string]string, len(tags))
	for _, tag := range tags {
		if v, err := fm.GetString(tag); err == nil {
			fields[tag] = v
		}
	}
	return fields, nil
}

// WriteFields writes fields to path. go-exiftool passes -overwrite_original
// unless the BackupOriginal option is set, which it never is here.
func (s *StayOpen) WriteFields(ctx context.Context, path string, fields []Field) error {
	fm := goexiftool.EmptyFileMetadata()
	fm.File = path
	for _, f := range fields {
		fm.SetString(f.Name, f.Value)
	}
	batch := []goexiftool.FileMetadata{fm}

	err := s.do(ctx, "write", path, func(et *goexiftool.Exiftool) {
		et.WriteMetadata(batch)
	})
	if err != nil {
		return err
	}

	if batch[0].Err != nil {
		return &InvocationError{Op: "write", Path: path, Stderr: batch[0].Err.Error(), Err: batch[0].Err}
	}
	return nil
}

// Close stops the exiftool process.
func (s *StayOpen) Close() error {
	if s.et == nil {
		return nil
	}
	et := s.et
	s.et = nil
	return et.Close()
}

func (s *StayOpen) do(ctx context.Context, op, path string, call func(et *goexiftool.Exiftool)) error {
	if s.et == nil {
		if err := s.start(); err != nil {
			return err
		}
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	et := s.et
	done := make(chan struct{})
	go func() {
		defer close(done)
		call(et)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		s.et = nil
		go func() {
			<-done
			if err := et.Close(); err != nil {
				log.Debug().Err(err).Msg("Closing abandoned exiftool process")
			}
		}()

		log.Warn().Str("op", op).Str("path", path).Msg("Abandoning unresponsive exiftool process")
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("%w: %s %s after %s", ErrToolTimeout, op, path, s.timeout)
		}
		return ctx.Err()
	}
}
