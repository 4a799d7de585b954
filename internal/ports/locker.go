package ports

import "context"

// Locker is a mutual-exclusion lock shared by every process that opens the
// same store. A single Locker value is not reentrant and must not be used by
// two goroutines at once.
type Locker interface {
	// Block until the lock is held or ctx is done.
	Lock(ctx context.Context) error
	// Take the lock if it is free; ok is false when another holder has it.
	TryLock(ctx context.Context) (ok bool, err error)
	Unlock(ctx context.Context) error
}
