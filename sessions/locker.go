package sessions

import "sync"

// Locker serializes work per browser id. Credential rotation is read, call
// the authority, write back; two of those racing for one browser would leave
// a token the authority has already replaced.
type Locker struct {
	mu    sync.Mutex
	locks map[string]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func NewLocker() *Locker {
	return &Locker{locks: make(map[string]*lockEntry)}
}

// Lock blocks until browserID is free and returns the unlock function.
func (l *Locker) Lock(browserID string) (unlock func()) {
	l.mu.Lock()
	entry, ok := l.locks[browserID]
	if !ok {
		entry = &lockEntry{}
		l.locks[browserID] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			entry.mu.Unlock()

			l.mu.Lock()
			entry.refs--
			if entry.refs == 0 {
				delete(l.locks, browserID)
			}
			l.mu.Unlock()
		})
	}
}

// Len returns the number of browser ids currently locked or waiting.
func (l *Locker) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
