package concurrency

import (
	"sync"
)

// LockManager handles named locks. The ledger uses one lock per user so
// duplicate detection and streak mutation form a critical section per user
// while cross-user submissions proceed in parallel.
type LockManager struct {
	locks sync.Map
}

// NewLockManager creates a new LockManager
func NewLockManager() *LockManager {
	return &LockManager{}
}

// GetLock returns a mutex for the given key
func (lm *LockManager) GetLock(key string) *sync.Mutex {
	lock, _ := lm.locks.LoadOrStore(key, &sync.Mutex{})
	return lock.(*sync.Mutex)
}
