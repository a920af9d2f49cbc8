package tracking

import (
	"sync"

	"github.com/google/uuid"
)

// userLocks serializes engine calls per user inside one process
type userLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*userLock
}

type userLock struct {
	sync.Mutex
	refs int
}

func newUserLocks() *userLocks {
	return &userLocks{locks: make(map[uuid.UUID]*userLock)}
}

// lock blocks until the user's lock is held and returns its release func
func (l *userLocks) lock(userID uuid.UUID) func() {
	l.mu.Lock()
	ul, ok := l.locks[userID]
	if !ok {
		ul = &userLock{}
		l.locks[userID] = ul
	}
	ul.refs++
	l.mu.Unlock()

	ul.Lock()
	return func() {
		ul.Unlock()
		l.mu.Lock()
		ul.refs--
		if ul.refs == 0 {
			delete(l.locks, userID)
		}
		l.mu.Unlock()
	}
}
