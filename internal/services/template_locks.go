package services

import "sync"

// templateLocks hands out one mutex per template id. Entries are dropped once no
// goroutine holds or waits for them, so deleted templates do not leak.
type templateLocks struct {
	mu    sync.Mutex
	locks map[string]*refMutex
}

type refMutex struct {
	sync.Mutex
	refs int
}

func newTemplateLocks() *templateLocks {
	return &templateLocks{locks: make(map[string]*refMutex)}
}

// Lock blocks until the id is free and returns the matching unlock.
func (l *templateLocks) Lock(id string) func() {
	l.mu.Lock()
	m, ok := l.locks[id]
	if !ok {
		m = &refMutex{}
		l.locks[id] = m
	}
	m.refs++
	l.mu.Unlock()

	m.Lock()
	return func() {
		m.Unlock()
		l.mu.Lock()
		m.refs--
		if m.refs == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}
}

func (l *templateLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
