package vault

import "sync/atomic"

// openLock is a non-blocking lock held while a vault is opened and migrated.
type openLock struct {
	state atomic.Int32 // 0 = unlocked, 1 = locked
}

// TryAcquire reports whether the lock was taken.
func (l *openLock) TryAcquire() bool {
	return l.state.CompareAndSwap(0, 1)
}

// Release must only be called by the holder.
func (l *openLock) Release() {
	l.state.Store(0)
}
