package lock

import "context"

// Guard provides exclusive locking semantics around a single logical key.
//
// Implementations can be in-process (KeyedMutex guards, backed by
// sync.Mutex) or cross-process (FifoMutex, backed by a shared lock
// directory). The context passed to Lock bounds the acquisition attempt;
// implementations that acquire instantly may ignore it.
type Guard interface {
	// Lock blocks until the guard is held or ctx is done.
	Lock(ctx context.Context) error

	// Unlock releases the guard. Releasing a guard whose underlying
	// resource is already gone must not fail.
	Unlock() error
}

// With runs fn while holding g, releasing it on every exit path.
func With(ctx context.Context, g Guard, fn func() error) error {
	if err := g.Lock(ctx); err != nil {
		return err
	}
	defer g.Unlock()
	return fn()
}
