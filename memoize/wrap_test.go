package memoize

import (
	"context"
	"errors"
	"testing"
)

func TestWrap1_Transparent(t *testing.T) {
	backend := newFakeBackend()
	calls := 0

	square, err := Wrap1("square", backend, func(_ context.Context, x int) (int, error) {
		calls++
		return x * x, nil
	})
	if err != nil {
		t.Fatalf("Wrap1: %v", err)
	}
	ctx := context.Background()

	got, err := square(ctx, 5)
	if err != nil {
		t.Fatalf("square(5): %v", err)
	}
	if got != 25 {
		t.Errorf("square(5) = %d, want 25", got)
	}

	got, err = square(ctx, 5)
	if err != nil {
		t.Fatalf("square(5) again: %v", err)
	}
	if got != 25 || calls != 1 {
		t.Errorf("second call: got %d with %d computations, want 25 with 1", got, calls)
	}
}

func TestWrap0_CachesSingleResult(t *testing.T) {
	backend := newFakeBackend()
	calls := 0

	version, err := Wrap0("buildVersion", backend, func(_ context.Context) (string, error) {
		calls++
		return "1.2.3", nil
	})
	if err != nil {
		t.Fatalf("Wrap0: %v", err)
	}
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		got, err := version(ctx)
		if err != nil {
			t.Fatalf("version: %v", err)
		}
		if got != "1.2.3" {
			t.Errorf("version = %q, want 1.2.3", got)
		}
	}
	if calls != 1 {
		t.Errorf("computed %d times, want 1", calls)
	}
}

func TestWrap2_StructResults(t *testing.T) {
	type report struct {
		Total int
		Label string
	}

	backend := newFakeBackend()
	calls := 0

	sum, err := Wrap2("sumReport", backend, func(_ context.Context, a, b int) (report, error) {
		calls++
		return report{Total: a + b, Label: "ok"}, nil
	})
	if err != nil {
		t.Fatalf("Wrap2: %v", err)
	}
	ctx := context.Background()

	first, err := sum(ctx, 2, 3)
	if err != nil {
		t.Fatalf("sum: %v", err)
	}
	second, err := sum(ctx, 2, 3)
	if err != nil {
		t.Fatalf("sum again: %v", err)
	}
	if first != second {
		t.Errorf("cached result %+v differs from computed %+v", second, first)
	}
	if second.Total != 5 || second.Label != "ok" {
		t.Errorf("cached result = %+v", second)
	}
	if calls != 1 {
		t.Errorf("computed %d times, want 1", calls)
	}
}

func TestWrap1_ErrorPropagates(t *testing.T) {
	backend := newFakeBackend()
	boom := errors.New("boom")

	f, err := Wrap1("failing", backend, func(_ context.Context, _ int) (int, error) {
		return 0, boom
	})
	if err != nil {
		t.Fatalf("Wrap1: %v", err)
	}

	if _, err := f(context.Background(), 1); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if backend.len() != 0 {
		t.Error("failed computation was stored")
	}
}

func TestWrap3_DistinctArgumentPositions(t *testing.T) {
	backend := newFakeBackend()
	calls := 0

	join, err := Wrap3("join", backend, func(_ context.Context, a, b, c string) (string, error) {
		calls++
		return a + b + c, nil
	})
	if err != nil {
		t.Fatalf("Wrap3: %v", err)
	}
	ctx := context.Background()

	ab, err := join(ctx, "a", "b", "c")
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	ba, err := join(ctx, "b", "a", "c")
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if ab == ba {
		t.Error("argument order was not part of the key")
	}
	if calls != 2 {
		t.Errorf("computed %d times, want 2", calls)
	}
}
