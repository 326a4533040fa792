package pipeline

import (
	"sync"
	"sync/atomic"
	"testing"
)

func TestPathLockSerializesSameKey(t *testing.T) {
	l := newPathLock()
	var inside, maxInside atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.Lock("a.jpg")
			n := inside.Add(1)
			for {
				m := maxInside.Load()
				if n <= m || maxInside.CompareAndSwap(m, n) {
					break
				}
			}
			inside.Add(-1)
			l.Unlock("a.jpg")
		}()
	}
	wg.Wait()

	if maxInside.Load() != 1 {
		t.Errorf("max concurrent holders = %d, want 1", maxInside.Load())
	}
}

func TestPathLockIndependentKeys(t *testing.T) {
	l := newPathLock()
	l.Lock("a.jpg")
	defer l.Unlock("a.jpg")

	done := make(chan struct{})
	go func() {
		l.Lock("b.jpg")
		l.Unlock("b.jpg")
		close(done)
	}()
	<-done
}

func TestObservers(t *testing.T) {
	var a, b int
	obs := Observers{
		ObserverFunc(func(Result) { a++ }),
		nil,
		Serialized(ObserverFunc(func(Result) { b++ })),
	}
	obs.Observe(Result{})
	obs.Observe(Result{})

	if a != 2 || b != 2 {
		t.Errorf("observer calls = %d, %d, want 2, 2", a, b)
	}
}
