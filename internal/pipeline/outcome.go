package pipeline

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/fpang/takeout-exif/internal/filehandler"
)

// Status is the terminal state of one sidecar.
type Status int

const (
	StatusUpdated Status = iota
	StatusSkipped
	StatusFailed
	StatusWouldUpdate
)

func (s Status) String() string {
	switch s {
	case StatusUpdated:
		return "updated"
	case StatusSkipped:
		return "skipped"
	case StatusFailed:
		return "failed"
	case StatusWouldUpdate:
		return "would_update"
	default:
		return "unknown"
	}
}

// Result is the outcome of processing one sidecar file.
type Result struct {
	Sidecar  string
	Media    string // empty when the sidecar name could not be resolved
	Class    filehandler.MediaClass
	Status   Status
	DateTime string // the value written (or that would be written)
	Err      error  // set only for StatusFailed
	Duration time.Duration
}

// Observer receives every Result. Workers call Observe concurrently.
type Observer interface {
	Observe(Result)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Result)

func (f ObserverFunc) Observe(r Result) { f(r) }

// Observers fans a Result out to each non-nil Observer in order.
type Observers []Observer

func (o Observers) Observe(r Result) {
	for _, obs := range o {
		if obs != nil {
			obs.Observe(r)
		}
	}
}

// Serialized wraps obs so that Observe calls never overlap.
func Serialized(obs Observer) Observer {
	var mu sync.Mutex
	return ObserverFunc(func(r Result) {
		mu.Lock()
		defer mu.Unlock()
		obs.Observe(r)
	})
}

// Summary is a snapshot of run counters.
type Summary struct {
	Found   int64
	Updated int64
	Skipped int64
	Errors  int64
	Elapsed time.Duration
}

// counters are shared by all workers and only ever incremented.
type counters struct {
	found   atomic.Int64
	updated atomic.Int64
	skipped atomic.Int64
	errors  atomic.Int64
}

// record counts a Result. WouldUpdate is counted only as found.
func (c *counters) record(r Result) {
	switch r.Status {
	case StatusUpdated:
		c.updated.Add(1)
	case StatusSkipped:
		c.skipped.Add(1)
	case StatusFailed:
		c.errors.Add(1)
	}
}

func (c *counters) snapshot() Summary {
	return Summary{
		Found:   c.found.Load(),
		Updated: c.updated.Load(),
		Skipped: c.skipped.Load(),
		Errors:  c.errors.Load(),
	}
}
