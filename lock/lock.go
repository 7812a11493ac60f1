// Package lock provides host-wide mutual exclusion for digest runs via an
// advisory file lock.
package lock

import (
	"fmt"

	"github.com/gofrs/flock"
)

// ErrBusy signals that another digest run currently holds the lock.
var ErrBusy = fmt.Errorf("another digest run is already in progress")

// FileLock is an exclusive, non-blocking lock on a well-known path. Only
// holder-ship matters; the file content is irrelevant.
type FileLock struct {
	flock *flock.Flock
}

func New(path string) *FileLock {
	return &FileLock{flock: flock.New(path)}
}

// TryAcquire attempts to take the lock without blocking. It returns ErrBusy
// when another process (or run) holds it.
func (l *FileLock) TryAcquire() error {
	locked, err := l.flock.TryLock()
	if err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !locked {
		return ErrBusy
	}
	return nil
}

// Release drops the lock. Safe to call on every exit path.
func (l *FileLock) Release() error {
	return l.flock.Unlock()
}
