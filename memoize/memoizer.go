package memoize

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/goliatone/go-memoize/lock"
)

// Func is the call shape the engine memoizes: ordered positional
// arguments plus a named-argument mapping. Typed functions are adapted
// through the Wrap helpers; Func is the lowest common denominator the
// key derivation understands.
type Func[T any] func(ctx context.Context, args []any, kwargs map[string]any) (T, error)

// Memoizer makes a function's results durable across invocations,
// computed at most once per distinct argument set even when independent
// processes race on the same backend.
//
// Duplicate-key policy: Put refuses to overwrite an existing entry and
// returns ErrDuplicateKey. Overwrites are always explicit, via Delete,
// Invalidate, or the invalidate option.
type Memoizer[T any] struct {
	fn      Func[T]
	backend Backend
	keys    keyBuilder
	codec   Codec
	guards  *lock.KeyedMutex

	invalidate bool
	log        logrus.FieldLogger
}

// Option configures a Memoizer.
type Option func(*settings)

type settings struct {
	prefix       string
	delim        string
	defaults     map[string]any
	ignoreArgs   map[int]struct{}
	ignoreKwargs map[string]struct{}
	invalidate   bool
	codec        Codec
	guards       *lock.KeyedMutex
	log          logrus.FieldLogger
}

// WithPrefix sets the namespace segment prepended to every key.
func WithPrefix(prefix string) Option {
	return func(s *settings) { s.prefix = prefix }
}

// WithDelimiter sets the separator between key segments. It must not
// occur in the prefix or in the backend's path syntax. Default "_".
func WithDelimiter(delim string) Option {
	return func(s *settings) { s.delim = delim }
}

// WithDefaults declares the function's default named arguments. They are
// merged under the caller's kwargs before hashing, so omitting an
// argument and passing its default explicitly produce the same key.
func WithDefaults(defaults map[string]any) Option {
	return func(s *settings) {
		s.defaults = make(map[string]any, len(defaults))
		for k, v := range defaults {
			s.defaults[k] = v
		}
	}
}

// WithIgnoreArgs excludes positional argument indices from key hashing.
// Useful for arguments that do not affect the result (handles, loggers).
func WithIgnoreArgs(indices ...int) Option {
	return func(s *settings) {
		s.ignoreArgs = make(map[int]struct{}, len(indices))
		for _, i := range indices {
			s.ignoreArgs[i] = struct{}{}
		}
	}
}

// WithIgnoreKwargs excludes named arguments from key hashing.
func WithIgnoreKwargs(names ...string) Option {
	return func(s *settings) {
		s.ignoreKwargs = make(map[string]struct{}, len(names))
		for _, n := range names {
			s.ignoreKwargs[n] = struct{}{}
		}
	}
}

// WithInvalidate makes every Run eagerly delete any existing entry for
// the derived key before computing, so the function runs on each call
// and refreshes the cache.
func WithInvalidate() Option {
	return func(s *settings) { s.invalidate = true }
}

// WithCodec replaces the default msgpack value codec.
func WithCodec(c Codec) Option {
	return func(s *settings) { s.codec = c }
}

// WithGuards shares a guard registry between memoizers so that distinct
// memoizers over the same backend contend on the same per-key mutexes.
func WithGuards(g *lock.KeyedMutex) Option {
	return func(s *settings) { s.guards = g }
}

// WithLogger sets the sink for hit/miss/invalidate events. The default
// logger discards everything.
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *settings) { s.log = l }
}

// New creates a Memoizer for fn. The name identifies the function in
// cache keys and must be stable across processes; it is sanitized to
// snake_case so it cannot collide with key delimiters or path syntax.
func New[T any](name string, fn Func[T], backend Backend, opts ...Option) (*Memoizer[T], error) {
	if name == "" {
		return nil, errors.New("memoize: name is required")
	}
	if fn == nil {
		return nil, errors.New("memoize: fn is required")
	}
	if backend == nil {
		return nil, errors.New("memoize: backend is required")
	}

	s := settings{delim: "_"}
	for _, opt := range opts {
		opt(&s)
	}
	if s.codec == nil {
		s.codec = NewDefaultCodec()
	}
	if s.guards == nil {
		s.guards = lock.NewKeyedMutex()
	}
	if s.log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		s.log = l
	}

	return &Memoizer[T]{
		fn:      fn,
		backend: backend,
		keys: keyBuilder{
			name:         sanitizeName(name),
			prefix:       s.prefix,
			delim:        s.delim,
			defaults:     s.defaults,
			ignoreArgs:   s.ignoreArgs,
			ignoreKwargs: s.ignoreKwargs,
		},
		codec:      s.codec,
		guards:     s.guards,
		invalidate: s.invalidate,
		log:        s.log,
	}, nil
}

// Key derives the cache key for an argument set without touching the
// backend. It is pure: identical normalized inputs always yield the same
// string.
func (m *Memoizer[T]) Key(args []any, kwargs map[string]any) (string, error) {
	return m.keys.Key(args, kwargs)
}

// Run behaves like calling the wrapped function, except the result is
// served from the backend when a previous call already computed it. The
// per-key guard is held across the whole check-then-compute-then-store
// sequence, so at most one caller computes per key even across
// processes; the deadlock age on a FifoMutex-backed guard must exceed
// the function's worst-case runtime. Errors from the wrapped function
// propagate unchanged and nothing is stored.
func (m *Memoizer[T]) Run(ctx context.Context, args []any, kwargs map[string]any) (T, error) {
	var zero T

	key, err := m.Key(args, kwargs)
	if err != nil {
		return zero, err
	}

	g := m.guard(key)
	if err := g.Lock(ctx); err != nil {
		return zero, err
	}
	defer g.Unlock()

	if m.invalidate {
		if err := m.Invalidate(ctx, key); err != nil {
			return zero, err
		}
	} else {
		exists, err := m.backend.Check(ctx, key)
		if err != nil {
			return zero, err
		}
		if exists {
			cached, err := m.fetch(ctx, key)
			if err == nil {
				m.log.WithField("key", key).Debug("cache hit")
				return cached, nil
			}
			// The entry can vanish between Check and Fetch when another
			// actor deletes it directly; recompute in that case.
			if !errors.Is(err, ErrNotFound) {
				return zero, err
			}
		}
	}

	m.log.WithField("key", key).Debug("cache miss")
	out, err := m.fn(ctx, args, kwargs)
	if err != nil {
		return zero, err
	}
	if err := m.store(ctx, key, out); err != nil {
		return zero, err
	}
	return out, nil
}

// Get returns the entry for key if one exists. Existence is decided by
// the backend's Check, never by the decoded value, so a function that
// legitimately returns its zero value still registers as a hit.
func (m *Memoizer[T]) Get(ctx context.Context, key string) (T, bool, error) {
	var zero T

	exists, err := m.backend.Check(ctx, key)
	if err != nil {
		return zero, false, err
	}
	if !exists {
		return zero, false, nil
	}

	g := m.guard(key)
	if err := g.Lock(ctx); err != nil {
		return zero, false, err
	}
	defer g.Unlock()

	out, err := m.fetch(ctx, key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return zero, false, nil
		}
		return zero, false, err
	}
	return out, true, nil
}

// Put stores value under key, holding the key's guard across the
// existence check and the write. An existing entry fails with
// ErrDuplicateKey. The value is returned so Put can pass through a call
// chain.
func (m *Memoizer[T]) Put(ctx context.Context, key string, value T) (T, error) {
	var zero T

	g := m.guard(key)
	if err := g.Lock(ctx); err != nil {
		return zero, err
	}
	defer g.Unlock()

	exists, err := m.backend.Check(ctx, key)
	if err != nil {
		return zero, err
	}
	if exists {
		return zero, fmt.Errorf("put %q: %w", key, ErrDuplicateKey)
	}

	if err := m.store(ctx, key, value); err != nil {
		return zero, err
	}
	return value, nil
}

// fetch reads and decodes an entry. Callers hold the key's guard.
func (m *Memoizer[T]) fetch(ctx context.Context, key string) (T, error) {
	var out T
	data, err := m.backend.Fetch(ctx, key)
	if err != nil {
		return out, err
	}
	if err := m.codec.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("decode entry %q: %w", key, err)
	}
	return out, nil
}

// store encodes and writes an entry. Callers hold the key's guard.
func (m *Memoizer[T]) store(ctx context.Context, key string, value T) error {
	data, err := m.codec.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode entry %q: %w", key, err)
	}
	if err := m.backend.Store(ctx, key, data); err != nil {
		return err
	}
	m.log.WithField("key", key).Debug("stored entry")
	return nil
}

// Invalidate removes the entry for key, tolerating a missing entry.
func (m *Memoizer[T]) Invalidate(ctx context.Context, key string) error {
	if err := m.backend.Delete(ctx, key); err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	m.log.WithField("key", key).Debug("invalidated entry")
	return nil
}

// Delete removes the entry for key. Unlike Invalidate this is the
// direct-caller surface: a missing entry propagates as ErrNotFound.
func (m *Memoizer[T]) Delete(ctx context.Context, key string) error {
	return m.backend.Delete(ctx, key)
}

// guard returns the per-key guard, preferring the backend's own when it
// provides one (e.g. a file backend returning FifoMutex guards for
// cross-process safety).
func (m *Memoizer[T]) guard(key string) lock.Guard {
	if gp, ok := m.backend.(GuardProvider); ok {
		return gp.Guard(key)
	}
	return m.guards.Guard(key)
}
