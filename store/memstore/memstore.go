// Package memstore provides an in-memory storage backend for the
// memoization engine, suitable when results only need to survive within
// one process or as a fast layer in tests. Entries expire after the
// configured TTL and the cache evicts under capacity pressure, so unlike
// the file and database backends a memstore hit is best-effort.
package memstore

import (
	"time"

	"github.com/goliatone/go-memoize/internal/sturdystore"
	"github.com/goliatone/go-memoize/memoize"
)

// Config exposes the in-memory backend options for consumers of the
// store packages.
type Config struct {
	Capacity           int
	NumShards          int
	TTL                time.Duration
	EvictionPercentage int
	EvictionInterval   time.Duration
}

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() Config {
	return convertFromInternal(sturdystore.DefaultConfig())
}

// Validate checks whether the configuration values are valid.
func (c Config) Validate() error {
	return c.toInternal().Validate()
}

// New constructs the in-memory backend from the provided configuration.
func New(cfg Config) (memoize.Backend, error) {
	return sturdystore.New(cfg.toInternal())
}

func (c Config) toInternal() sturdystore.Config {
	return sturdystore.Config{
		Capacity:           c.Capacity,
		NumShards:          c.NumShards,
		TTL:                c.TTL,
		EvictionPercentage: c.EvictionPercentage,
		EvictionInterval:   c.EvictionInterval,
	}
}

func convertFromInternal(cfg sturdystore.Config) Config {
	return Config{
		Capacity:           cfg.Capacity,
		NumShards:          cfg.NumShards,
		TTL:                cfg.TTL,
		EvictionPercentage: cfg.EvictionPercentage,
		EvictionInterval:   cfg.EvictionInterval,
	}
}
