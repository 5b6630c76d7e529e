package memoize

import (
	"bytes"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"sort"

	"github.com/vmihailenco/msgpack/v5"
)

// keyBuilder derives deterministic cache keys from a call's arguments.
// The argument set is normalized (defaults merged in, ignored positions
// and names stripped), serialized to a canonical binary form, and hashed
// with SHA-512. Identical logical calls therefore always land on the same
// key, and distinct calls collide only within the digest's 2^-512 space.
type keyBuilder struct {
	name         string
	prefix       string
	delim        string
	defaults     map[string]any
	ignoreArgs   map[int]struct{}
	ignoreKwargs map[string]struct{}
}

// normalize applies the default-value and ignore-list rules. Defaults are
// merged under the caller's kwargs so that an omitted parameter and an
// explicitly passed default value hash identically.
func (b *keyBuilder) normalize(args []any, kwargs map[string]any) ([]any, map[string]any) {
	// Canonicalize nil to empty so f() and f(nothing) hash the same.
	outArgs := args
	if outArgs == nil {
		outArgs = []any{}
	}
	if len(b.ignoreArgs) > 0 {
		outArgs = make([]any, 0, len(args))
		for i, a := range args {
			if _, skip := b.ignoreArgs[i]; skip {
				continue
			}
			outArgs = append(outArgs, a)
		}
	}

	outKwargs := make(map[string]any, len(b.defaults)+len(kwargs))
	for k, v := range b.defaults {
		outKwargs[k] = v
	}
	for k, v := range kwargs {
		outKwargs[k] = v
	}
	for k := range b.ignoreKwargs {
		delete(outKwargs, k)
	}
	return outArgs, outKwargs
}

// digest serializes the normalized argument set and hashes it. Maps are
// encoded with sorted keys so the binary form is canonical; the kwarg
// mapping itself is flattened to a name-sorted pair list for the same
// reason.
func (b *keyBuilder) digest(args []any, kwargs map[string]any) (string, error) {
	names := make([]string, 0, len(kwargs))
	for k := range kwargs {
		names = append(names, k)
	}
	sort.Strings(names)

	pairs := make([][2]any, len(names))
	for i, k := range names {
		pairs[i] = [2]any{k, kwargs[k]}
	}

	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetSortMapKeys(true)
	if err := enc.Encode([]any{args, pairs}); err != nil {
		return "", fmt.Errorf("serialize arguments for %s: %w", b.name, err)
	}

	sum := sha512.Sum512(buf.Bytes())
	return hex.EncodeToString(sum[:]), nil
}

// Key composes {prefix}{delim}{name}{delim}{digest}. An empty prefix is
// omitted entirely rather than leaving an empty leading segment.
func (b *keyBuilder) Key(args []any, kwargs map[string]any) (string, error) {
	normArgs, normKwargs := b.normalize(args, kwargs)
	sum, err := b.digest(normArgs, normKwargs)
	if err != nil {
		return "", err
	}

	base := b.name + b.delim + sum
	if b.prefix == "" {
		return base, nil
	}
	return b.prefix + b.delim + base, nil
}
