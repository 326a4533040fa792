// Package exiftooltest provides an in-memory exiftool.Tool for tests.
package exiftooltest

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/fpang/takeout-exif/internal/exiftool"
)

// Write records one WriteFields call.
type Write struct {
	Path   string
	Fields []exiftool.Field
}

// Fake stores tag values per cleaned path in memory. It is safe for concurrent
// use, so a single Fake can back every worker of a pipeline run.
type Fake struct {
	// ReadErr and WriteErr, when set, are returned by every read or write.
	ReadErr  error
	WriteErr error

	mu     sync.Mutex
	files  map[string]map[string]string
	reads  []string
	writes []Write
	closed int
}

var _ exiftool.Tool = (*Fake)(nil)

// New returns an empty Fake.
func New() *Fake {
	return &Fake{files: make(map[string]map[string]string)}
}

// Factory returns an exiftool.Factory that always hands out f.
func (f *Fake) Factory() exiftool.Factory {
	return func() (exiftool.Tool, error) {
		return f, nil
	}
}

// Set stores a tag value for path.
func (f *Fake) Set(path, tag, value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.set(path, tag, value)
}

// Get returns the stored value of tag for path.
func (f *Fake) Get(path, tag string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.files[filepath.Clean(path)][tag]
}

// Reads returns the paths passed to ReadFields, in call order.
func (f *Fake) Reads() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.reads...)
}

// Writes returns every WriteFields call, in call order.
func (f *Fake) Writes() []Write {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Write(nil), f.writes...)
}

// Closed reports how many times Close was called.
func (f *Fake) Closed() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func (f *Fake) ReadFields(ctx context.Context, path string, tags []string) (map[string]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads = append(f.reads, path)
	if f.ReadErr != nil {
		return nil, f.ReadErr
	}

	out := make(map[string]string)
	for _, tag := range tags {
		if v, ok := f.files[filepath.Clean(path)][tag]; ok {
			out[tag] = v
		}
	}
	return out, nil
}

func (f *Fake) WriteFields(ctx context.Context, path string, fields []exiftool.Field) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes = append(f.writes, Write{Path: path, Fields: append([]exiftool.Field(nil), fields...)})
	if f.WriteErr != nil {
		return f.WriteErr
	}

	for _, field := range fields {
		f.set(path, field.Name, field.Value)
	}
	return nil
}

func (f *Fake) set(path, tag, value string) {
	key := filepath.Clean(path)
	if f.files[key] == nil {
		f.files[key] = make(map[string]string)
	}
	f.files[key][tag] = value
}

func (f *Fake) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed++
	return nil
}
