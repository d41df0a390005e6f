// Package lock provides an in-process advisory lock serializing concurrent
// operations against the same store. It is not persistent: a crash drops
// all locks, and correctness after restart is restored by the reconciler,
// not by this package.
package lock

import (
	"context"
	"sync"

	"storeplane/internal/observability"
)

// StoreLock serializes create/delete/retry operations per store.id,
// tracking which operation kind currently holds each id.
type StoreLock struct {
	inFlight sync.Map // store.id -> string (operation kind)
}

// NewStoreLock builds an empty lock table.
func NewStoreLock() *StoreLock {
	return &StoreLock{}
}

// TryAcquire attempts to take the lock for a store id under the given
// operation kind ("provisioning" or "deleting"). It returns false if an
// operation of any kind is already in flight for that id.
func (l *StoreLock) TryAcquire(id, kind string) bool {
	_, loaded := l.inFlight.LoadOrStore(id, kind)
	if loaded {
		observability.LockContentions.Add(context.Background(), 1)
	}
	return !loaded
}

// Release frees the lock for a store id. Releasing an id that is not held
// is a no-op.
func (l *StoreLock) Release(id string) {
	l.inFlight.Delete(id)
}

// Held reports whether an operation is currently in flight for a store id.
func (l *StoreLock) Held(id string) bool {
	_, ok := l.inFlight.Load(id)
	return ok
}

// Kind returns the operation kind currently holding the lock for a store
// id, or ("", false) if none is held.
func (l *StoreLock) Kind(id string) (string, bool) {
	v, ok := l.inFlight.Load(id)
	if !ok {
		return "", false
	}
	return v.(string), true
}
