package application

import "sync"

// accountLocks serializes writes per account. Two concurrent buys on the same
// account would otherwise race on the quantity/totalCost read-modify-write.
type accountLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newAccountLocks() *accountLocks {
	return &accountLocks{locks: make(map[string]*sync.Mutex)}
}

// acquire locks the per-account mutex and returns its unlock function.
func (l *accountLocks) acquire(accountID string) func() {
	l.mu.Lock()
	m, ok := l.locks[accountID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[accountID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
