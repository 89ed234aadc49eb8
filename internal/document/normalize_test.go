package document

import (
	"errors"
	"strings"
	"testing"

	"github.com/pdiddy/compliance-engine/pkg/types"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "crlf to lf",
			raw:  "line one\r\nline two\r\n",
			want: "line one\nline two",
		},
		{
			name: "bom stripped",
			raw:  "\uFEFFThe system shall log access.",
			want: "The system shall log access.",
		},
		{
			name: "trailing space per line",
			raw:  "first   \nsecond\t\n",
			want: "first\nsecond",
		},
		{
			name: "blank runs collapsed",
			raw:  "a\n\n\n\n\nb",
			want: "a\n\nb",
		},
		{
			name: "control chars removed",
			raw:  "a\x00b\x07c",
			want: "abc",
		},
		{
			name: "tabs preserved",
			raw:  "a\tb",
			want: "a\tb",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize("srs", tt.raw, types.DocumentConfig{})
			if err != nil {
				t.Fatalf("Normalize: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNormalizeEmpty(t *testing.T) {
	for _, raw := range []string{"", "   ", "\n\n\n", "\uFEFF"} {
		_, err := Normalize("srs", raw, types.DocumentConfig{})
		var invalid *InvalidDocumentError
		if !errors.As(err, &invalid) {
			t.Fatalf("Normalize(%q): want *InvalidDocumentError, got %v", raw, err)
		}
		if invalid.Doc != "srs" {
			t.Errorf("Doc = %q, want srs", invalid.Doc)
		}
	}
}

func TestNormalizeInvalidUTF8(t *testing.T) {
	_, err := Normalize("policy", "abc\xff\xfe", types.DocumentConfig{})
	var invalid *InvalidDocumentError
	if !errors.As(err, &invalid) {
		t.Fatalf("want *InvalidDocumentError, got %v", err)
	}
}

func TestNormalizeSizeLimit(t *testing.T) {
	cfg := types.DocumentConfig{MaxBytes: 10}
	_, err := Normalize("srs", strings.Repeat("a", 11), cfg)
	var invalid *InvalidDocumentError
	if !errors.As(err, &invalid) {
		t.Fatalf("want *InvalidDocumentError, got %v", err)
	}

	if _, err := Normalize("srs", "short", cfg); err != nil {
		t.Fatalf("under limit should pass: %v", err)
	}
}

func TestNormalizeDefaultLimit(t *testing.T) {
	// A document just under the default cap is accepted.
	raw := strings.Repeat("x", DefaultMaxBytes-1)
	if _, err := Normalize("srs", raw, types.DocumentConfig{}); err != nil {
		t.Fatalf("Normalize: %v", err)
	}
}
