package lock

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Config controls where FifoMutex lock files live and how the poll loop
// behaves. All values are supplied at construction; there is no
// environment or file coupling.
type Config struct {
	// Dir is the shared directory holding lock files. Every process
	// contending for the same key must see the same directory. The
	// protocol assumes create/list/stat/delete are individually atomic,
	// which rules out weakly consistent network filesystems.
	Dir string

	// Prefix namespaces lock files so unrelated users of the same
	// directory do not observe each other.
	Prefix string

	// DeadlockAge is the maximum tolerated age of any lock file, held or
	// waiting, before a waiter may force-remove it. Must be set well
	// above the worst-case hold time. Default: 1 hour.
	DeadlockAge time.Duration

	// PollInterval is how long a waiter sleeps between queue checks.
	// A newly eligible waiter may lag acquisition by up to one interval.
	// Default: 30 seconds.
	PollInterval time.Duration

	// Logger receives waiting/recast/reclaim events. Silent by default.
	Logger logrus.FieldLogger
}

// Validate checks the configuration values.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Dir, validation.Required),
		validation.Field(&c.Prefix, validation.Required),
		validation.Field(&c.DeadlockAge, validation.Min(time.Millisecond)),
		validation.Field(&c.PollInterval, validation.Min(time.Millisecond)),
	)
}

func (c Config) withDefaults() Config {
	if c.DeadlockAge == 0 {
		c.DeadlockAge = time.Hour
	}
	if c.PollInterval == 0 {
		c.PollInterval = 30 * time.Second
	}
	if c.Logger == nil {
		c.Logger = silentLogger()
	}
	return c
}

func silentLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// FifoMutex is a cross-process mutex built on nothing but file creation,
// listing, stat and deletion in a shared directory. Waiters announce
// themselves by casting a uniquely named lock file; the waiter owning the
// earliest file holds the mutex. Any waiter may reclaim a lock file older
// than the configured deadlock age, so a crashed holder never wedges the
// queue.
//
// Fairness is FIFO by file timestamp. Two processes casting within the
// filesystem's timestamp resolution are ordered by file name instead;
// that keeps every observer agreeing on one total order, but arrival
// order at that granularity is not meaningful.
//
// A FifoMutex instance is single-use-at-a-time: it represents one place
// in the queue and must not be shared between goroutines.
type FifoMutex struct {
	cfg        Config
	key        string
	fullPrefix string
	name       string
	path       string
	held       bool
	log        logrus.FieldLogger
}

// NewFifoMutex creates a mutex for the given logical key. The owner token
// embedded in the lock file name combines the hostname with a fresh UUID,
// so it stays unique across hosts, processes and restarts.
func NewFifoMutex(key string, cfg Config) (*FifoMutex, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("fifo mutex config: %w", err)
	}

	host, err := os.Hostname()
	if err != nil {
		host = "unknown-host"
	}

	m := &FifoMutex{
		cfg:        cfg,
		key:        key,
		fullPrefix: cfg.Prefix + "_" + key,
	}
	m.name = m.fullPrefix + "_" + host + "_" + uuid.NewString()
	m.path = filepath.Join(cfg.Dir, m.name)
	m.log = cfg.Logger.WithField("lock", m.name)
	return m, nil
}

// Held reports whether this instance currently believes it holds the mutex.
func (m *FifoMutex) Held() bool {
	return m.held
}

// cast creates this instance's lock file. Recasting after the file was
// removed produces a fresh timestamp, which re-enters the queue at the
// back rather than the front.
func (m *FifoMutex) cast() error {
	if err := os.WriteFile(m.path, nil, 0o644); err != nil {
		return fmt.Errorf("cast lock %s: %w", m.name, err)
	}
	return nil
}

// queueEntry is one lock file in the namespace, ordered by creation time.
type queueEntry struct {
	at   time.Time
	path string
}

// entries lists all lock files sharing this mutex's prefix+key, ascending
// by (timestamp, name). Files deleted between list and stat are skipped.
func (m *FifoMutex) entries() ([]queueEntry, error) {
	items, err := os.ReadDir(m.cfg.Dir)
	if err != nil {
		return nil, fmt.Errorf("list lock dir %s: %w", m.cfg.Dir, err)
	}

	var out []queueEntry
	for _, item := range items {
		if !strings.HasPrefix(item.Name(), m.fullPrefix+"_") {
			continue
		}
		info, err := os.Stat(filepath.Join(m.cfg.Dir, item.Name()))
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("stat lock %s: %w", item.Name(), err)
		}
		// Lock files are written once and never touched again, so the
		// modification time is the creation time.
		out = append(out, queueEntry{at: info.ModTime(), path: filepath.Join(m.cfg.Dir, item.Name())})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].at.Equal(out[j].at) {
			return out[i].path < out[j].path
		}
		return out[i].at.Before(out[j].at)
	})
	return out, nil
}

// Lock casts this instance's lock file and blocks until it is the oldest
// entry in the namespace. Contention is never an error; the loop only
// fails on filesystem errors or context cancellation. On cancellation the
// instance's own lock file is removed so it does not linger in the queue.
func (m *FifoMutex) Lock(ctx context.Context) error {
	if err := m.cast(); err != nil {
		return err
	}

	for {
		queue, err := m.entries()
		if err != nil {
			return err
		}

		if len(queue) > 0 && queue[0].path == m.path {
			m.held = true
			return nil
		}

		var head queueEntry
		if len(queue) > 0 {
			head = queue[0]
			m.log.WithFields(logrus.Fields{
				"holder":  filepath.Base(head.path),
				"cast_at": head.at,
				"waiters": len(queue),
			}).Debug("waiting for lock")
		}

		select {
		case <-ctx.Done():
			m.abandon()
			return ctx.Err()
		case <-time.After(m.cfg.PollInterval):
		}

		// If our file disappeared (reclaimed or removed externally),
		// rejoin the queue at the back.
		if _, err := os.Stat(m.path); errors.Is(err, fs.ErrNotExist) {
			m.log.Debug("lock file gone, recasting")
			if err := m.cast(); err != nil {
				return err
			}
		}

		// Deadlock reclamation: any waiter may remove a head entry that
		// has outlived the threshold, even one it did not create.
		if head.path != "" && time.Since(head.at) > m.cfg.DeadlockAge {
			m.log.WithField("stale", filepath.Base(head.path)).Warn("reclaiming stale lock")
			if err := os.Remove(head.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("reclaim stale lock %s: %w", head.path, err)
			}
		}
	}
}

// Unlock removes this instance's lock file. A file already removed by
// deadlock reclamation is an expected condition: it is logged and
// swallowed, never escalated.
func (m *FifoMutex) Unlock() error {
	m.held = false
	if err := os.Remove(m.path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			m.log.Warn("lock file missing on release")
			return nil
		}
		return fmt.Errorf("release lock %s: %w", m.name, err)
	}
	return nil
}

// abandon best-effort removes our own lock file when leaving the queue
// without acquiring.
func (m *FifoMutex) abandon() {
	if err := os.Remove(m.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		m.log.WithError(err).Warn("could not remove lock file on abandon")
	}
}
