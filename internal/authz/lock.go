package authz

import (
	"sync"
	"time"
)

// LockState records the single holder of a content edit lock.
type LockState struct {
	HolderID   uint
	AcquiredAt time.Time
}

// LockTable is a keyed single-holder lock store for content editing.
// Locks live here rather than on the content row so their lifecycle is
// independent of entity persistence and acquire/release is a single
// compare-and-set under one mutex. Locks have no expiry; they persist
// until released by the holder or forced by an admin.
type LockTable struct {
	mu    sync.Mutex
	locks map[uint]LockState
	now   func() time.Time
}

// NewLockTable creates an empty lock table.
func NewLockTable() *LockTable {
	return &LockTable{locks: make(map[uint]LockState), now: time.Now}
}

// Acquire takes the edit lock on a post. Re-acquiring a lock already
// held by the same user succeeds; a lock held by anyone else fails with
// ErrAlreadyLocked. Ownership gating (only the post owner or an admin
// may lock) is the caller's responsibility: locking is orthogonal to
// category authority.
func (t *LockTable) Acquire(postID, userID uint) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if cur, held := t.locks[postID]; held {
		if cur.HolderID == userID {
			return nil
		}
		return ErrAlreadyLocked
	}
	t.locks[postID] = LockState{HolderID: userID, AcquiredAt: t.now()}
	return nil
}

// Release drops the edit lock on a post. Releasing an unheld lock
// fails with ErrNotLocked; releasing someone else's lock fails with
// ErrNotHolder.
func (t *LockTable) Release(postID, userID uint) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	cur, held := t.locks[postID]
	if !held {
		return ErrNotLocked
	}
	if cur.HolderID != userID {
		return ErrNotHolder
	}
	delete(t.locks, postID)
	return nil
}

// ForceRelease drops a lock regardless of holder. Admin paths only.
func (t *LockTable) ForceRelease(postID uint) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.locks, postID)
}

// CanEdit reports whether the user may mutate the post right now:
// the post is unlocked, or the user holds the lock, or the user is an
// admin (admins bypass locks). Every content mutation path consults
// this predicate before persisting.
func (t *LockTable) CanEdit(postID, userID uint, isAdmin bool) bool {
	if isAdmin {
		return true
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	cur, held := t.locks[postID]
	return !held || cur.HolderID == userID
}

// Holder returns the current lock state of a post, if locked.
func (t *LockTable) Holder(postID uint) (LockState, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	cur, held := t.locks[postID]
	return cur, held
}
