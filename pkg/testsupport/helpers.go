// Package testsupport holds helpers shared by this module's tests:
// fabricated lock files for exercising queue ordering and reclamation,
// and call counters for asserting at-most-once computation.
package testsupport

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

// WriteLockFile creates a zero-byte lock file with the given age, as if
// it had been cast that long ago. Useful for simulating crashed holders
// and pre-ordered queues.
func WriteLockFile(t *testing.T, dir, name string, age time.Duration) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("failed to write lock file %s: %v", path, err)
	}
	at := time.Now().Add(-age)
	if err := os.Chtimes(path, at, at); err != nil {
		t.Fatalf("failed to age lock file %s: %v", path, err)
	}
	return path
}

// CallCounter wraps a one-argument function and counts invocations, for
// asserting how many times a memoized function actually ran.
type CallCounter[A, T any] struct {
	mu    sync.Mutex
	calls int
	fn    func(context.Context, A) (T, error)
}

// Count creates a CallCounter around fn.
func Count[A, T any](fn func(context.Context, A) (T, error)) *CallCounter[A, T] {
	return &CallCounter[A, T]{fn: fn}
}

// Fn returns the counting wrapper to hand to the memoizer.
func (c *CallCounter[A, T]) Fn() func(context.Context, A) (T, error) {
	return func(ctx context.Context, a A) (T, error) {
		c.mu.Lock()
		c.calls++
		c.mu.Unlock()
		return c.fn(ctx, a)
	}
}

// Calls reports how many times the wrapped function ran.
func (c *CallCounter[A, T]) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}
