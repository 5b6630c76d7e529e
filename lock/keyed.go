package lock

import (
	"context"
	"sync"

	"github.com/puzpuzpuz/xsync/v3"
)

// KeyedMutex hands out in-process guards scoped to a logical key.
// Guards for the same key share one mutex; guards for distinct keys
// never contend. It is the default lock used by the memoization engine
// when the storage backend does not provide its own guards.
type KeyedMutex struct {
	mus *xsync.MapOf[string, *sync.Mutex]
}

// NewKeyedMutex creates an empty keyed mutex registry.
func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{mus: xsync.NewMapOf[string, *sync.Mutex]()}
}

// Guard returns a guard for key. Mutexes are created lazily and retained
// for the lifetime of the registry.
func (k *KeyedMutex) Guard(key string) Guard {
	mu, _ := k.mus.LoadOrCompute(key, func() *sync.Mutex {
		return &sync.Mutex{}
	})
	return &keyedGuard{mu: mu}
}

type keyedGuard struct {
	mu *sync.Mutex
}

// Lock acquires the underlying mutex. Acquisition is not interruptible,
// so ctx is ignored; in-process hold times are bounded by the caller.
func (g *keyedGuard) Lock(_ context.Context) error {
	g.mu.Lock()
	return nil
}

func (g *keyedGuard) Unlock() error {
	g.mu.Unlock()
	return nil
}
