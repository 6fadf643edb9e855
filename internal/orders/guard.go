package orders

import "sync"

// Guard serializes mutating operations per order id. Two near-simultaneous
// triggers on the same order must not both read the same pre-mutation
// progress; operations on different orders proceed independently.
type Guard struct {
	mu    sync.Mutex
	locks map[int64]*guardEntry
}

type guardEntry struct {
	mu   sync.Mutex
	refs int
}

// NewGuard returns an empty guard.
func NewGuard() *Guard {
	return &Guard{locks: map[int64]*guardEntry{}}
}

// Lock acquires the per-order lock and returns the release func. Waiters on
// the same id are admitted in lock acquisition order; entries are dropped
// once the last holder releases.
func (g *Guard) Lock(orderID int64) func() {
	g.mu.Lock()
	entry := g.locks[orderID]
	if entry == nil {
		entry = &guardEntry{}
		g.locks[orderID] = entry
	}
	entry.refs++
	g.mu.Unlock()

	entry.mu.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			entry.mu.Unlock()

			g.mu.Lock()
			entry.refs--
			if entry.refs == 0 {
				delete(g.locks, orderID)
			}
			g.mu.Unlock()
		})
	}
}

// Len reports how many order ids currently hold or await a lock.
func (g *Guard) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.locks)
}
