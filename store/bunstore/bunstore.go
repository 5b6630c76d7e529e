// Package bunstore persists memoized results in a relational database
// through uptrace/bun, one row per cache key. It suits deployments that
// already run a database and want cached results visible to every worker
// without a shared filesystem.
package bunstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/goliatone/go-memoize/memoize"
)

// entry is the table schema: a flat key/value row with a creation stamp.
type entry struct {
	bun.BaseModel `bun:"table:memo_entries,alias:me"`

	Key       string    `bun:"key,pk"`
	Value     []byte    `bun:"value,notnull"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

// Store is a database-backed memoize.Backend.
type Store struct {
	db bun.IDB
}

var _ memoize.Backend = (*Store)(nil)

// New wraps an existing bun handle. The caller owns the connection and
// its dialect; call ResetModel (or run equivalent migrations) before
// first use.
func New(db bun.IDB) (*Store, error) {
	if db == nil {
		return nil, errors.New("bunstore: db is required")
	}
	return &Store{db: db}, nil
}

// ResetModel creates the entries table if it does not exist.
func (s *Store) ResetModel(ctx context.Context) error {
	if _, err := s.db.NewCreateTable().Model((*entry)(nil)).IfNotExists().Exec(ctx); err != nil {
		return fmt.Errorf("create memo_entries: %w", err)
	}
	return nil
}

func (s *Store) Check(ctx context.Context, key string) (bool, error) {
	exists, err := s.db.NewSelect().Model((*entry)(nil)).Where("key = ?", key).Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("check %q: %w", key, err)
	}
	return exists, nil
}

func (s *Store) Fetch(ctx context.Context, key string) ([]byte, error) {
	e := new(entry)
	err := s.db.NewSelect().Model(e).Where("key = ?", key).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("fetch %q: %w", key, memoize.ErrNotFound)
		}
		return nil, fmt.Errorf("fetch %q: %w", key, err)
	}
	return e.Value, nil
}

func (s *Store) Store(ctx context.Context, key string, data []byte) error {
	e := &entry{Key: key, Value: data}
	_, err := s.db.NewInsert().
		Model(e).
		On("CONFLICT (key) DO UPDATE").
		Set("value = EXCLUDED.value").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("store %q: %w", key, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	res, err := s.db.NewDelete().Model((*entry)(nil)).Where("key = ?", key).Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete %q: %w", key, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete %q: %w", key, err)
	}
	if affected == 0 {
		return fmt.Errorf("delete %q: %w", key, memoize.ErrNotFound)
	}
	return nil
}
