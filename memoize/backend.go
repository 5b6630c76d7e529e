package memoize

import (
	"context"
	"fmt"

	"github.com/goliatone/go-memoize/lock"
)

// Backend is the persistence capability the engine delegates to. It is a
// flat, byte-transparent key/value store: Fetch must return exactly the
// bytes previously passed to Store for the same key, with no metadata or
// re-encoding. Value typing lives in the engine's Codec, never in the
// backend.
//
// Implementations must be safe for concurrent use; the engine holds a
// per-key guard across its check-then-act sequences but distinct keys
// are accessed concurrently.
type Backend interface {
	// Check reports whether an entry exists for key.
	Check(ctx context.Context, key string) (bool, error)

	// Fetch reads the entry for key, returning ErrNotFound if absent.
	Fetch(ctx context.Context, key string) ([]byte, error)

	// Store creates or overwrites the entry for key.
	Store(ctx context.Context, key string, data []byte) error

	// Delete removes the entry for key, returning ErrNotFound if absent.
	Delete(ctx context.Context, key string) error
}

// GuardProvider is an optional backend capability. Backends whose medium
// is shared between processes implement it to replace the engine's
// default in-process guard with one scoped to the medium, e.g. a
// FifoMutex in the same directory tree as the cached files.
type GuardProvider interface {
	Guard(key string) lock.Guard
}

// Unimplemented is an embeddable Backend whose every method fails with
// ErrNotImplemented. Partial backends embed it so that a method the
// concrete type forgot to provide fails immediately and loudly instead
// of silently no-opping.
type Unimplemented struct{}

var _ Backend = Unimplemented{}

func (Unimplemented) Check(_ context.Context, key string) (bool, error) {
	return false, fmt.Errorf("check %q: %w", key, ErrNotImplemented)
}

func (Unimplemented) Fetch(_ context.Context, key string) ([]byte, error) {
	return nil, fmt.Errorf("fetch %q: %w", key, ErrNotImplemented)
}

func (Unimplemented) Store(_ context.Context, key string, _ []byte) error {
	return fmt.Errorf("store %q: %w", key, ErrNotImplemented)
}

func (Unimplemented) Delete(_ context.Context, key string) error {
	return fmt.Errorf("delete %q: %w", key, ErrNotImplemented)
}
