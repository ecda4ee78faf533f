// Package authz implements the authorization core of Campus: the school
// hierarchy, moderator scopes, content edit locks, block relations,
// content visibility rules, and the login lockout policy. Everything in
// this package is a synchronous computation over current state; callers
// handle persistence and transport.
package authz

import "errors"

var (
	// ErrCycle reports a malformed parent chain in the school forest.
	// It is returned instead of looping forever on corrupt data.
	ErrCycle = errors.New("cycle detected in school hierarchy")

	// ErrUnknownSchool reports an id that is not present in the tree.
	ErrUnknownSchool = errors.New("unknown school")

	// ErrDuplicateSchool reports an id already present in the tree.
	ErrDuplicateSchool = errors.New("school already exists")

	// ErrInvalidParent reports a reparent that would make a school its
	// own descendant's child, or its own parent.
	ErrInvalidParent = errors.New("invalid parent for school")

	// ErrAlreadyLocked reports an edit lock held by another user.
	ErrAlreadyLocked = errors.New("item is locked by another user")

	// ErrNotLocked reports a release of an unheld lock.
	ErrNotLocked = errors.New("item is not locked")

	// ErrNotHolder reports a release by a user who does not hold the lock.
	ErrNotHolder = errors.New("lock is held by another user")

	// ErrOutOfScope reports a moderator acting beyond their authority.
	ErrOutOfScope = errors.New("school is outside moderator scope")

	// ErrAlreadyBlocked reports a duplicate block tuple.
	ErrAlreadyBlocked = errors.New("user is already blocked")

	// ErrNotBlocked reports removal of a block that does not exist.
	ErrNotBlocked = errors.New("user is not blocked")
)
