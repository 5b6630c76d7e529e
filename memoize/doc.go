// Package memoize makes expensive function results durable across
// process invocations, computed at most once per distinct argument set.
//
// # Overview
//
// The package exports three cooperating pieces:
//
//   - Backend: a byte-transparent key/value capability (Check, Fetch,
//     Store, Delete) that concrete stores implement
//   - Memoizer: derives a key from a call's arguments, consults the
//     backend, and fetches-or-computes-and-stores under a per-key guard
//   - Wrap0..Wrap3: typed adapters that return a function with the same
//     signature as the original, so memoization stays invisible at the
//     call site
//
// # Basic Usage
//
// Wrap a function against a backend and call it as before:
//
//	square, err := memoize.Wrap1("square", backend, func(ctx context.Context, x int) (int, error) {
//		return x * x, nil
//	})
//	if err != nil {
//		return err
//	}
//	v, err := square(ctx, 5) // computes and stores 25
//	v, err = square(ctx, 5)  // served from the backend
//
// For call shapes the Wrap helpers do not cover, construct a Memoizer
// directly over positional and named arguments:
//
//	m, err := memoize.New("render", fn, backend,
//		memoize.WithDefaults(map[string]any{"dpi": 300}),
//		memoize.WithIgnoreKwargs("progress"),
//	)
//	out, err := m.Run(ctx, []any{doc}, map[string]any{"dpi": 300})
//
// # Key Derivation
//
// A key is {prefix}{delim}{name}{delim}{digest}; the prefix segment is
// omitted when empty. The digest is SHA-512 over a canonical msgpack
// encoding of the normalized argument set: declared defaults are merged
// under the caller's named arguments, ignored positions and names are
// stripped, and map keys are sorted. Identical logical calls always
// produce the same key; collisions between distinct calls are bounded by
// the 512-bit digest and not detected at runtime.
//
// # Concurrency
//
// Run holds a per-key guard across the whole check-compute-store
// sequence. The default guard is an in-process mutex, correct when all
// contenders share one process. Backends whose medium is shared between
// processes implement GuardProvider to substitute a cross-process guard;
// store/filestore returns lock.FifoMutex guards for exactly that reason.
// When the guard is a FifoMutex, its deadlock age must exceed the
// wrapped function's worst-case runtime.
//
// # Duplicate-Key Policy
//
// Put refuses to overwrite and returns ErrDuplicateKey. Overwrites are
// always explicit: Delete or Invalidate first, or construct the memoizer
// with WithInvalidate to refresh on every call.
//
// # Errors
//
// Failures of the wrapped function propagate unchanged and nothing is
// stored. ErrNotFound is expected on internal cleanup paths and
// tolerated there; a direct Delete propagates it. A backend method left
// unimplemented (via the Unimplemented base) fails loudly with
// ErrNotImplemented.
package memoize
