package pipeline

import "sync"

// pathLock serializes work on the same media path while letting different
// paths proceed in parallel.
type pathLock struct {
	cond *sync.Cond
	held map[string]struct{}
}

func newPathLock() *pathLock {
	return &pathLock{
		cond: sync.NewCond(new(sync.Mutex)),
		held: make(map[string]struct{}),
	}
}

func (l *pathLock) Lock(path string) {
	l.cond.L.Lock()
	defer l.cond.L.Unlock()
	for l.locked(path) {
		l.cond.Wait()
	}
	l.held[path] = struct{}{}
}

func (l *pathLock) Unlock(path string) {
	l.cond.L.Lock()
	defer l.cond.L.Unlock()
	delete(l.held, path)
	l.cond.Broadcast()
}

func (l *pathLock) locked(path string) bool {
	_, ok := l.held[path]
	return ok
}
