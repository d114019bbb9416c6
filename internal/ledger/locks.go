package ledger

import "sync"

// userLocks serializes mutating operations per user: at most one in-flight
// BUY/SELL/order mutation per user id. Without this, two concurrent sells
// can read the same stale position amount and both succeed, driving the
// position negative. Different users never contend.
type userLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newUserLocks() *userLocks {
	return &userLocks{locks: make(map[string]*sync.Mutex)}
}

// lock acquires the mutex for userID, creating it on first use. Lock entries
// are never removed; the per-user footprint is one mutex.
func (u *userLocks) lock(userID string) func() {
	u.mu.Lock()
	m, ok := u.locks[userID]
	if !ok {
		m = &sync.Mutex{}
		u.locks[userID] = m
	}
	u.mu.Unlock()

	m.Lock()
	return m.Unlock
}
