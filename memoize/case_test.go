package memoize

import "testing"

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"square", "square"},
		{"ComputeSpectrum", "compute_spectrum"},
		{"HTTPFetch", "http_fetch"},
		{"computeV2", "compute_v2"},
		{"pkg.Type.Method-fm", "pkg_type_method_fm"},
		{"already_snake", "already_snake"},
		{"  spaced out  ", "spaced_out"},
		{"", ""},
		{"___", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := sanitizeName(tt.in); got != tt.want {
				t.Errorf("sanitizeName(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
