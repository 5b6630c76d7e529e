// Package filestore persists memoized results as one file per cache key
// in a flat directory. Combined with a lock directory it is the backend
// for multi-process batch workloads: independent processes share results
// through the filesystem and coordinate through FifoMutex guards, with
// no other infrastructure.
package filestore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/goliatone/go-memoize/lock"
	"github.com/goliatone/go-memoize/memoize"
)

// Config controls where entries live and how cross-process guards are
// built.
type Config struct {
	// Dir is the directory holding one file per cache key. It is
	// created if missing.
	Dir string

	// Ext is appended to every file name. Default ".json"; pair it with
	// memoize.JSONCodec when the payloads should be readable on disk.
	Ext string

	// Lock, when set, makes the store hand out FifoMutex guards from
	// the configured lock directory, so contenders in other processes
	// are excluded too. When nil, guards are in-process only.
	Lock *lock.Config
}

// Validate checks the configuration values.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Dir, validation.Required),
	)
}

// Store is a file-per-entry memoize.Backend.
type Store struct {
	dir     string
	ext     string
	lockCfg *lock.Config
	guards  *lock.KeyedMutex
}

var (
	_ memoize.Backend       = (*Store)(nil)
	_ memoize.GuardProvider = (*Store)(nil)
)

// New creates the store, creating cfg.Dir (and the lock directory, when
// configured) if they do not exist.
func New(cfg Config) (*Store, error) {
	if cfg.Ext == "" {
		cfg.Ext = ".json"
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("filestore config: %w", err)
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir %s: %w", cfg.Dir, err)
	}

	s := &Store{dir: cfg.Dir, ext: cfg.Ext, guards: lock.NewKeyedMutex()}

	if cfg.Lock != nil {
		if err := os.MkdirAll(cfg.Lock.Dir, 0o755); err != nil {
			return nil, fmt.Errorf("create lock dir %s: %w", cfg.Lock.Dir, err)
		}
		// Probe the lock configuration now so Guard cannot fail later.
		if _, err := lock.NewFifoMutex("probe", *cfg.Lock); err != nil {
			return nil, err
		}
		lockCfg := *cfg.Lock
		s.lockCfg = &lockCfg
	}

	return s, nil
}

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, key+s.ext)
}

func (s *Store) Check(_ context.Context, key string) (bool, error) {
	if _, err := os.Stat(s.path(key)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("check %q: %w", key, err)
	}
	return true, nil
}

func (s *Store) Fetch(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("fetch %q: %w", key, memoize.ErrNotFound)
		}
		return nil, fmt.Errorf("fetch %q: %w", key, err)
	}
	return data, nil
}

// Store writes the entry through a temp file and a rename, so concurrent
// readers never observe a partially written entry.
func (s *Store) Store(_ context.Context, key string, data []byte) error {
	tmp, err := os.CreateTemp(s.dir, ".memo-*")
	if err != nil {
		return fmt.Errorf("store %q: %w", key, err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("store %q: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("store %q: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), s.path(key)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("store %q: %w", key, err)
	}
	return nil
}

func (s *Store) Delete(_ context.Context, key string) error {
	if err := os.Remove(s.path(key)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("delete %q: %w", key, memoize.ErrNotFound)
		}
		return fmt.Errorf("delete %q: %w", key, err)
	}
	return nil
}

// Guard returns the per-key guard the engine holds around its
// check-then-act sequences: a FifoMutex when a lock directory is
// configured, an in-process mutex otherwise.
func (s *Store) Guard(key string) lock.Guard {
	if s.lockCfg == nil {
		return s.guards.Guard(key)
	}
	m, err := lock.NewFifoMutex(key, *s.lockCfg)
	if err != nil {
		// Config was validated at construction; treat this as a wiring
		// bug surfaced at first use.
		return failedGuard{err: err}
	}
	return m
}

type failedGuard struct{ err error }

func (g failedGuard) Lock(context.Context) error { return g.err }
func (g failedGuard) Unlock() error              { return nil }
