// Package sturdystore adapts a sturdyc client to the memoize.Backend
// contract. Entries are raw bytes; the engine's codec owns value typing.
package sturdystore

import (
	"context"
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/viccon/sturdyc"

	"github.com/goliatone/go-memoize/memoize"
)

// Config holds the sturdyc client settings the adapter needs.
type Config struct {
	// Capacity is the maximum number of entries the cache holds.
	Capacity int

	// NumShards controls shard count for concurrent access. Higher
	// values improve concurrency at the cost of memory.
	NumShards int

	// TTL is how long entries live before expiring.
	TTL time.Duration

	// EvictionPercentage is the share of entries evicted when the cache
	// reaches capacity, between 1 and 100.
	EvictionPercentage int

	// EvictionInterval overrides how often expired entries are collected.
	// Zero keeps sturdyc's default.
	EvictionInterval time.Duration
}

// DefaultConfig returns settings suited to memoizing batch workloads:
// a roomy cache with long-lived entries.
func DefaultConfig() Config {
	return Config{
		Capacity:           10000,
		NumShards:          256,
		TTL:                24 * time.Hour,
		EvictionPercentage: 10,
	}
}

// Validate checks the configuration values.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Capacity, validation.Required, validation.Min(1)),
		validation.Field(&c.NumShards, validation.Required, validation.Min(1)),
		validation.Field(&c.TTL, validation.Required),
		validation.Field(&c.EvictionPercentage, validation.Required, validation.Min(1), validation.Max(100)),
	)
}

func (c Config) options() []sturdyc.Option {
	var opts []sturdyc.Option
	if c.EvictionInterval > 0 {
		opts = append(opts, sturdyc.WithEvictionInterval(c.EvictionInterval))
	}
	return opts
}

// Store is an in-memory memoize.Backend over a sturdyc client.
type Store struct {
	client *sturdyc.Client[[]byte]
}

var _ memoize.Backend = (*Store)(nil)

// New creates a Store after validating cfg.
func New(cfg Config) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("sturdystore config: %w", err)
	}

	client := sturdyc.New[[]byte](
		cfg.Capacity,
		cfg.NumShards,
		cfg.TTL,
		cfg.EvictionPercentage,
		cfg.options()...,
	)
	return &Store{client: client}, nil
}

func (s *Store) Check(_ context.Context, key string) (bool, error) {
	_, ok := s.client.Get(key)
	return ok, nil
}

func (s *Store) Fetch(_ context.Context, key string) ([]byte, error) {
	data, ok := s.client.Get(key)
	if !ok {
		return nil, fmt.Errorf("fetch %q: %w", key, memoize.ErrNotFound)
	}
	return data, nil
}

func (s *Store) Store(_ context.Context, key string, data []byte) error {
	s.client.Set(key, data)
	return nil
}

func (s *Store) Delete(_ context.Context, key string) error {
	if _, ok := s.client.Get(key); !ok {
		return fmt.Errorf("delete %q: %w", key, memoize.ErrNotFound)
	}
	s.client.Delete(key)
	return nil
}

// Size reports the number of live entries, exposed for monitoring.
func (s *Store) Size() int {
	return s.client.Size()
}
