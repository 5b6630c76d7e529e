package memoize

import "errors"

var (
	// ErrNotFound is returned by backends when no entry exists for a key.
	// Internal callers (invalidation, opportunistic cleanup) tolerate it;
	// a direct Delete propagates it to the caller.
	ErrNotFound = errors.New("memoize: entry not found")

	// ErrDuplicateKey is returned by Put when an entry already exists for
	// the key. The engine never silently overwrites.
	ErrDuplicateKey = errors.New("memoize: key already exists")

	// ErrNotImplemented is returned by Unimplemented backend methods. It
	// marks a contract violation in the backend wiring, not a runtime
	// failure, and should never be swallowed.
	ErrNotImplemented = errors.New("memoize: backend method not implemented")
)
