package memoize

import (
	"strings"
	"unicode"
)

// sanitizeName converts a memoized function's name to snake_case using
// ASCII-aware rules. Names often arrive from reflection or method
// expressions ("pkg.Type.Method-fm", "ComputeV2"); punctuation left in
// the key segment would collide with the key delimiter or with path
// separators in file-backed stores, so anything that is not a letter,
// digit or underscore becomes a single underscore.
func sanitizeName(s string) string {
	if s == "" {
		return ""
	}

	runes := []rune(s)
	var b strings.Builder
	b.Grow(len(runes) + len(runes)/2)

	lastUnderscore := false
	for i, r := range runes {
		switch {
		case unicode.IsUpper(r):
			if b.Len() > 0 && !lastUnderscore {
				prev := runes[i-1]
				nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
				if unicode.IsLower(prev) || unicode.IsDigit(prev) || nextLower {
					b.WriteByte('_')
				}
			}
			b.WriteRune(unicode.ToLower(r))
			lastUnderscore = false

		case unicode.IsLower(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastUnderscore = false

		default:
			if !lastUnderscore && b.Len() > 0 {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}

	return strings.Trim(b.String(), "_")
}
