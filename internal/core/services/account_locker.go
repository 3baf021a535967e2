package services

import (
	"slices"
	"sync"
)

// accountLocker serializes work on individual accounts inside one process.
// Entries are reference counted so idle accounts do not pin memory.
type accountLocker struct {
	mu    sync.Mutex
	locks map[string]*accountLock
}

type accountLock struct {
	mu   sync.Mutex
	refs int
}

func newAccountLocker() *accountLocker {
	return &accountLocker{locks: make(map[string]*accountLock)}
}

// Lock blocks until every account in ids is held and returns the release func.
// IDs are acquired in sorted order so two callers never deadlock on the same pair.
func (l *accountLocker) Lock(ids ...string) (unlock func()) {
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != "" {
			keys = append(keys, id)
		}
	}
	slices.Sort(keys)
	keys = slices.Compact(keys)

	held := make([]*accountLock, len(keys))
	l.mu.Lock()
	for i, k := range keys {
		entry, ok := l.locks[k]
		if !ok {
			entry = &accountLock{}
			l.locks[k] = entry
		}
		entry.refs++
		held[i] = entry
	}
	l.mu.Unlock()

	for _, entry := range held {
		entry.mu.Lock()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			for i := len(held) - 1; i >= 0; i-- {
				held[i].mu.Unlock()
			}
			l.mu.Lock()
			for i, k := range keys {
				held[i].refs--
				if held[i].refs == 0 {
					delete(l.locks, k)
				}
			}
			l.mu.Unlock()
		})
	}
}

// size reports how many accounts currently have a lock entry.
func (l *accountLocker) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
