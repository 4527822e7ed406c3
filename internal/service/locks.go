package service

import "sync"

// ActivityLocks serializes mutating operations per activity.
//
// Regeneration, adjustment, settlement, and membership changes all
// read-then-write the same split collection, so each activity allows a
// single writer at a time. The split manager and the settlement engine
// must share one instance; callers outside this package never need to
// take these locks themselves.
type ActivityLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewActivityLocks creates an empty lock table.
func NewActivityLocks() *ActivityLocks {
	return &ActivityLocks{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the mutex for the given activity, creating it on first
// use. Lock entries are never removed; the table stays small because it
// grows with distinct activities touched by this process, not with
// request volume.
func (l *ActivityLocks) Lock(activityID string) {
	l.mu.Lock()
	m, ok := l.locks[activityID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[activityID] = m
	}
	l.mu.Unlock()
	m.Lock()
}

// Unlock releases the mutex for the given activity.
func (l *ActivityLocks) Unlock(activityID string) {
	l.mu.Lock()
	m := l.locks[activityID]
	l.mu.Unlock()
	m.Unlock()
}
