package di

import (
	"context"

	"github.com/goliatone/go-memoize/lock"
	"github.com/goliatone/go-memoize/memoize"
	"github.com/goliatone/go-memoize/store/memstore"
)

// Container provides dependency injection for memoization components.
// It holds the shared backend, the guard registry, and the options every
// memoizer it builds starts from, so an application configures caching
// once and derives memoizers per function.
type Container struct {
	backend memoize.Backend
	guards  *lock.KeyedMutex
	opts    []memoize.Option
}

// NewContainer creates a DI container around the given backend. The
// provided options are applied to every memoizer built from the
// container, before any per-function options.
func NewContainer(backend memoize.Backend, opts ...memoize.Option) (*Container, error) {
	guards := lock.NewKeyedMutex()
	base := append([]memoize.Option{memoize.WithGuards(guards)}, opts...)
	return &Container{
		backend: backend,
		guards:  guards,
		opts:    base,
	}, nil
}

// NewContainerWithDefaults creates a container over an in-memory backend
// with default settings. This is a convenience constructor for tests and
// single-process use where custom configuration is not required.
func NewContainerWithDefaults(opts ...memoize.Option) (*Container, error) {
	backend, err := memstore.New(memstore.DefaultConfig())
	if err != nil {
		return nil, err
	}
	return NewContainer(backend, opts...)
}

// Backend returns the shared backend instance, for advanced use cases
// that operate on entries directly.
func (c *Container) Backend() memoize.Backend {
	return c.backend
}

// Guards returns the shared guard registry. Memoizers built outside the
// container can pass it to memoize.WithGuards to contend on the same
// per-key mutexes.
func (c *Container) Guards() *lock.KeyedMutex {
	return c.guards
}

// NewMemoizer builds a memoizer for fn against the container's backend.
//
// Since Go methods cannot have type parameters, this is provided as a
// package-level function. Example: NewMemoizer[int](container, "square", fn)
func NewMemoizer[T any](c *Container, name string, fn memoize.Func[T], opts ...memoize.Option) (*memoize.Memoizer[T], error) {
	return memoize.New(name, fn, c.backend, append(append([]memoize.Option{}, c.opts...), opts...)...)
}

// Wrap1 builds a transparent one-argument memoized function against the
// container's backend.
func Wrap1[A1, T any](c *Container, name string, fn func(context.Context, A1) (T, error), opts ...memoize.Option) (func(context.Context, A1) (T, error), error) {
	return memoize.Wrap1(name, c.backend, fn, append(append([]memoize.Option{}, c.opts...), opts...)...)
}
