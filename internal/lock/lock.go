// Package lock serializes mutations of one user's tasks and progress.
package lock

import (
	"context"
	"sync"
)

// Locker hands out exclusive per-user locks. Unlock must be called exactly once.
type Locker interface {
	Lock(ctx context.Context, userID uint64) (func(), error)
}

// MemoryLocker locks users within a single process.
type MemoryLocker struct {
	mu    sync.Mutex
	users map[uint64]*userLock
}

type userLock struct {
	ch      chan struct{}
	waiters int
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{users: make(map[uint64]*userLock)}
}

// Lock blocks until the user's lock is free or ctx is done.
func (l *MemoryLocker) Lock(ctx context.Context, userID uint64) (func(), error) {
	l.mu.Lock()
	ul, ok := l.users[userID]
	if !ok {
		ul = &userLock{ch: make(chan struct{}, 1)}
		l.users[userID] = ul
	}
	ul.waiters++
	l.mu.Unlock()

	select {
	case ul.ch <- struct{}{}:
	case <-ctx.Done():
		l.release(userID, ul)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-ul.ch
			l.release(userID, ul)
		})
	}, nil
}

// release drops the entry once nobody holds or waits for it.
func (l *MemoryLocker) release(userID uint64, ul *userLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	ul.waiters--
	if ul.waiters == 0 {
		delete(l.users, userID)
	}
}
