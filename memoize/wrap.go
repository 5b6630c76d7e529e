package memoize

import "context"

// The Wrap helpers adapt typed functions to the engine so that callers
// keep the original signature and return type; the memoization is
// invisible at the call site. Arity variants cover the common cases;
// functions with more arguments or named arguments use New with a Func
// directly.

// Wrap0 memoizes a zero-argument function.
func Wrap0[T any](name string, backend Backend, fn func(context.Context) (T, error), opts ...Option) (func(context.Context) (T, error), error) {
	m, err := New(name, func(ctx context.Context, _ []any, _ map[string]any) (T, error) {
		return fn(ctx)
	}, backend, opts...)
	if err != nil {
		return nil, err
	}
	return func(ctx context.Context) (T, error) {
		return m.Run(ctx, nil, nil)
	}, nil
}

// Wrap1 memoizes a one-argument function.
func Wrap1[A1, T any](name string, backend Backend, fn func(context.Context, A1) (T, error), opts ...Option) (func(context.Context, A1) (T, error), error) {
	m, err := New(name, func(ctx context.Context, args []any, _ map[string]any) (T, error) {
		return fn(ctx, args[0].(A1))
	}, backend, opts...)
	if err != nil {
		return nil, err
	}
	return func(ctx context.Context, a1 A1) (T, error) {
		return m.Run(ctx, []any{a1}, nil)
	}, nil
}

// Wrap2 memoizes a two-argument function.
func Wrap2[A1, A2, T any](name string, backend Backend, fn func(context.Context, A1, A2) (T, error), opts ...Option) (func(context.Context, A1, A2) (T, error), error) {
	m, err := New(name, func(ctx context.Context, args []any, _ map[string]any) (T, error) {
		return fn(ctx, args[0].(A1), args[1].(A2))
	}, backend, opts...)
	if err != nil {
		return nil, err
	}
	return func(ctx context.Context, a1 A1, a2 A2) (T, error) {
		return m.Run(ctx, []any{a1, a2}, nil)
	}, nil
}

// Wrap3 memoizes a three-argument function.
func Wrap3[A1, A2, A3, T any](name string, backend Backend, fn func(context.Context, A1, A2, A3) (T, error), opts ...Option) (func(context.Context, A1, A2, A3) (T, error), error) {
	m, err := New(name, func(ctx context.Context, args []any, _ map[string]any) (T, error) {
		return fn(ctx, args[0].(A1), args[1].(A2), args[2].(A3))
	}, backend, opts...)
	if err != nil {
		return nil, err
	}
	return func(ctx context.Context, a1 A1, a2 A2, a3 A3) (T, error) {
		return m.Run(ctx, []any{a1, a2, a3}, nil)
	}, nil
}
