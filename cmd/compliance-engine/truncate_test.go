// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"testing"
	"unicode/utf8"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		n    int
		want string
	}{
		{"short unchanged", "data subject rights", 60, "data subject rights"},
		{"exact length unchanged", "abcde", 5, "abcde"},
		{"long ascii", "abcdefghij", 8, "abcde..."},
		{"multi-byte runes kept whole", "données personnelles réglementées", 12, "données p..."},
		{"section signs", "§§§§§§§§§§", 8, "§§§§§..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncate(tt.in, tt.n)
			if got != tt.want {
				t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
			}
			if !utf8.ValidString(got) {
				t.Errorf("truncate(%q, %d) produced invalid UTF-8", tt.in, tt.n)
			}
		})
	}
}
