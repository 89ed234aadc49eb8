// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package document validates and normalizes raw SRS and policy text
// bodies before segmentation and indexing.
package document

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/pdiddy/compliance-engine/pkg/types"
)

// DefaultMaxBytes is the document size cap applied when the config does
// not set one.
const DefaultMaxBytes = 2 << 20

// InvalidDocumentError reports a document that cannot enter the
// pipeline. It is fatal to the run.
type InvalidDocumentError struct {
	// Doc names the offending document, e.g. "srs" or "policy".
	Doc    string
	Reason string
}

func (e *InvalidDocumentError) Error() string {
	return fmt.Sprintf("invalid %s document: %s", e.Doc, e.Reason)
}

// Normalize validates raw document text and returns a regularized
// plain-text body: LF line endings, no BOM or control characters,
// per-line trailing whitespace stripped, and blank-line runs collapsed
// to a single blank line. Returns *InvalidDocumentError when the input
// is empty, not valid UTF-8, or exceeds the configured maximum size.
func Normalize(doc, raw string, cfg types.DocumentConfig) (string, error) {
	maxBytes := cfg.MaxBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}

	if len(raw) > maxBytes {
		return "", &InvalidDocumentError{Doc: doc, Reason: fmt.Sprintf("size %d exceeds limit %d", len(raw), maxBytes)}
	}
	if !utf8.ValidString(raw) {
		return "", &InvalidDocumentError{Doc: doc, Reason: "not valid UTF-8"}
	}

	text := strings.TrimPrefix(raw, "\uFEFF")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = stripControl(text)

	lines := strings.Split(text, "\n")
	var out []string
	blanks := 0
	for _, line := range lines {
		line = strings.TrimRight(line, " \t")
		if line == "" {
			blanks++
			if blanks > 1 {
				continue
			}
		} else {
			blanks = 0
		}
		out = append(out, line)
	}

	normalized := strings.TrimSpace(strings.Join(out, "\n"))
	if normalized == "" {
		return "", &InvalidDocumentError{Doc: doc, Reason: "document is empty"}
	}

	return normalized, nil
}

// stripControl removes control characters other than newline and tab.
func stripControl(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, s)
}
