package fsops

import (
	"slices"
	"sync"
)

// pathLocks serialises check-then-act sequences per canonical path.
// Entries are reference counted and dropped when the last holder unlocks.
type pathLocks struct {
	mu      sync.Mutex
	entries map[string]*pathLock
}

type pathLock struct {
	mu   sync.Mutex
	refs int
}

// lock acquires the locks for all paths in sorted order, so two callers
// locking the same pair can never deadlock. The returned func releases them.
func (l *pathLocks) lock(paths ...string) func() {
	keys := slices.Clone(paths)
	slices.Sort(keys)
	keys = slices.Compact(keys)

	held := make([]*pathLock, 0, len(keys))
	for _, key := range keys {
		pl := l.acquire(key)
		pl.mu.Lock()
		held = append(held, pl)
	}

	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].mu.Unlock()
			l.release(keys[i])
		}
	}
}

func (l *pathLocks) acquire(key string) *pathLock {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.entries == nil {
		l.entries = make(map[string]*pathLock)
	}
	pl, ok := l.entries[key]
	if !ok {
		pl = &pathLock{}
		l.entries[key] = pl
	}
	pl.refs++
	return pl
}

func (l *pathLocks) release(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	pl := l.entries[key]
	pl.refs--
	if pl.refs == 0 {
		delete(l.entries, key)
	}
}

func (l *pathLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
