package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/goliatone/go-memoize/lock"
	"github.com/goliatone/go-memoize/memoize"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(Config{Dir: t.TempDir()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func TestFilestore_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	ok, err := s.Check(ctx, "square_abc")
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if ok {
		t.Error("Check reported an entry in an empty store")
	}

	if err := s.Store(ctx, "square_abc", []byte(`25`)); err != nil {
		t.Fatalf("Store: %v", err)
	}

	ok, err = s.Check(ctx, "square_abc")
	if err != nil || !ok {
		t.Fatalf("Check after Store: ok=%v err=%v", ok, err)
	}

	data, err := s.Fetch(ctx, "square_abc")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if string(data) != "25" {
		t.Errorf("Fetch = %q, want 25", data)
	}

	if err := s.Delete(ctx, "square_abc"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Delete(ctx, "square_abc"); !errors.Is(err, memoize.ErrNotFound) {
		t.Errorf("Delete of missing entry err = %v, want ErrNotFound", err)
	}
}

func TestFilestore_FetchMissing(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.Fetch(context.Background(), "absent"); !errors.Is(err, memoize.ErrNotFound) {
		t.Errorf("Fetch err = %v, want ErrNotFound", err)
	}
}

func TestFilestore_EntriesSurviveReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	first, err := New(Config{Dir: dir})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := first.Store(ctx, "k", []byte("persisted")); err != nil {
		t.Fatalf("Store: %v", err)
	}

	// A fresh store over the same directory simulates a new process.
	second, err := New(Config{Dir: dir})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	data, err := second.Fetch(ctx, "k")
	if err != nil {
		t.Fatalf("Fetch after reopen: %v", err)
	}
	if string(data) != "persisted" {
		t.Errorf("Fetch = %q, want persisted", data)
	}
}

func TestFilestore_ExtensionOnDisk(t *testing.T) {
	dir := t.TempDir()
	s, err := New(Config{Dir: dir, Ext: ".cache"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := s.Store(context.Background(), "k", []byte("x")); err != nil {
		t.Fatalf("Store: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "k.cache")); err != nil {
		t.Errorf("expected k.cache on disk: %v", err)
	}
}

func TestFilestore_GuardDefaultsInProcess(t *testing.T) {
	s := newTestStore(t)

	g := s.Guard("k")
	if err := g.Lock(context.Background()); err != nil {
		t.Fatalf("Lock: %v", err)
	}
	if err := g.Unlock(); err != nil {
		t.Fatalf("Unlock: %v", err)
	}
}

func TestFilestore_GuardUsesFifoMutex(t *testing.T) {
	lockDir := t.TempDir()
	s, err := New(Config{
		Dir: t.TempDir(),
		Lock: &lock.Config{
			Dir:          lockDir,
			Prefix:       "memo",
			DeadlockAge:  time.Hour,
			PollInterval: 2 * time.Millisecond,
		},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	g := s.Guard("square_abc")
	if err := g.Lock(context.Background()); err != nil {
		t.Fatalf("Lock: %v", err)
	}

	// Holding the guard must be visible to other processes as a lock
	// file in the shared directory.
	items, err := os.ReadDir(lockDir)
	if err != nil {
		t.Fatalf("read lock dir: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("lock dir holds %d files while guard held, want 1", len(items))
	}

	if err := g.Unlock(); err != nil {
		t.Fatalf("Unlock: %v", err)
	}
	items, err = os.ReadDir(lockDir)
	if err != nil {
		t.Fatalf("read lock dir: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("lock dir holds %d files after release, want 0", len(items))
	}
}

func TestFilestore_InvalidLockConfig(t *testing.T) {
	_, err := New(Config{
		Dir:  t.TempDir(),
		Lock: &lock.Config{Dir: t.TempDir()}, // missing prefix
	})
	if err == nil {
		t.Fatal("expected error for invalid lock config")
	}
}

func TestFilestore_JSONCodecReadableOnDisk(t *testing.T) {
	dir := t.TempDir()
	s, err := New(Config{Dir: dir})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	calls := 0
	square, err := memoize.Wrap1("square", s, func(_ context.Context, x int) (int, error) {
		calls++
		return x * x, nil
	}, memoize.WithCodec(memoize.JSONCodec{}))
	if err != nil {
		t.Fatalf("Wrap1: %v", err)
	}
	ctx := context.Background()

	if _, err := square(ctx, 5); err != nil {
		t.Fatalf("square: %v", err)
	}
	got, err := square(ctx, 5)
	if err != nil {
		t.Fatalf("square again: %v", err)
	}
	if got != 25 || calls != 1 {
		t.Errorf("got %d with %d computations, want 25 with 1", got, calls)
	}

	items, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read cache dir: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("cache dir holds %d files, want 1", len(items))
	}

	raw, err := os.ReadFile(filepath.Join(dir, items[0].Name()))
	if err != nil {
		t.Fatalf("read entry: %v", err)
	}
	var v int
	if err := json.Unmarshal(raw, &v); err != nil {
		t.Fatalf("entry is not valid JSON: %v", err)
	}
	if v != 25 {
		t.Errorf("entry = %d, want 25", v)
	}
}

func TestConfig_Validate(t *testing.T) {
	if err := (Config{}).Validate(); err == nil {
		t.Error("expected error for missing dir")
	}
	if err := (Config{Dir: "/tmp/cache"}).Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}
