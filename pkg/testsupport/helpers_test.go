package testsupport

import (
	"context"
	"os"
	"testing"
	"time"
)

func TestWriteLockFile(t *testing.T) {
	dir := t.TempDir()

	path := WriteLockFile(t, dir, "memo_key_host_token", time.Hour)

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Size() != 0 {
		t.Errorf("lock file size = %d, want 0", info.Size())
	}
	age := time.Since(info.ModTime())
	if age < 59*time.Minute || age > 61*time.Minute {
		t.Errorf("lock file age = %v, want ~1h", age)
	}
}

func TestCallCounter(t *testing.T) {
	counter := Count(func(_ context.Context, x int) (int, error) {
		return x + 1, nil
	})

	fn := counter.Fn()
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		got, err := fn(ctx, i)
		if err != nil {
			t.Fatalf("fn: %v", err)
		}
		if got != i+1 {
			t.Errorf("fn(%d) = %d, want %d", i, got, i+1)
		}
	}

	if counter.Calls() != 3 {
		t.Errorf("Calls() = %d, want 3", counter.Calls())
	}
}
