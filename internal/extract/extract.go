// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract segments a normalized SRS into discrete,
// independently assessable requirement units.
package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pdiddy/compliance-engine/pkg/types"
)

// ExtractionError reports an SRS with no recognizable requirement
// statements. It is fatal to the run.
type ExtractionError struct {
	Reason string
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("requirement extraction failed: %s", e.Reason)
}

// labelPattern matches explicit requirement labels at the start of a
// paragraph: "R1:", "R1.", "REQ-7:", "REQ 7)".
var labelPattern = regexp.MustCompile(`^(?:R\d+|REQ[-\s]?\d+)\s*[:.)-]\s*`)

// numberedPattern matches numbered statements like "3.2.1 The system
// shall ...". The trailing text must still carry an obligation keyword
// so numbered section headings are not mistaken for requirements.
var numberedPattern = regexp.MustCompile(`^\d+(?:\.\d+)*[.)]?\s+`)

// bulletPattern matches list items.
var bulletPattern = regexp.MustCompile(`^[-*\x{2022}]\s+`)

// obligationPattern recognizes the modal phrasing of a requirement
// statement.
var obligationPattern = regexp.MustCompile(`(?i)\b(shall|must|will|should|is required to|are required to)\b`)

// sentencePattern splits paragraph prose into sentence-like statements.
var sentencePattern = regexp.MustCompile(`[^.!?]+[.!?]*`)

// Requirements segments the normalized SRS into requirement units in
// document order and assigns ordinal IDs R1..Rn. A unit is one
// explicitly delimited statement: a labeled or numbered requirement
// paragraph, a bullet item with an obligation keyword, or an obligation
// sentence in prose. Compound statements are never sub-split; the unit
// boundary is whatever the source text delimits. Returns
// *ExtractionError when the document contains no recognizable
// requirement statements.
func Requirements(srs string) ([]types.Requirement, error) {
	var reqs []types.Requirement

	add := func(text string, start, end int) {
		text = strings.TrimSpace(text)
		if text == "" {
			return
		}
		reqs = append(reqs, types.Requirement{
			ID:   fmt.Sprintf("R%d", len(reqs)+1),
			Text: text,
			Span: types.Span{Start: start, End: end},
		})
	}

	for _, p := range paragraphs(srs) {
		flat := strings.Join(strings.Fields(p.text), " ")

		switch {
		case labelPattern.MatchString(flat):
			add(labelPattern.ReplaceAllString(flat, ""), p.start, p.end)

		case bulletPattern.MatchString(flat):
			body := bulletPattern.ReplaceAllString(flat, "")
			if obligationPattern.MatchString(body) {
				add(body, p.start, p.end)
			}

		case numberedPattern.MatchString(flat):
			body := numberedPattern.ReplaceAllString(flat, "")
			if obligationPattern.MatchString(body) {
				add(body, p.start, p.end)
			}

		default:
			for _, s := range sentencePattern.FindAllString(flat, -1) {
				if obligationPattern.MatchString(s) {
					// The span covers the whole source paragraph, the
					// closest explicitly delimited unit.
					add(s, p.start, p.end)
				}
			}
		}
	}

	if len(reqs) == 0 {
		return nil, &ExtractionError{Reason: "no requirement statements found"}
	}
	return reqs, nil
}

// paragraph is a delimited block with its byte span in the source document.
type paragraph struct {
	text  string
	start int
	end   int
}

// paragraphs splits text into blank-line delimited blocks, except that
// each bullet or labeled line starts its own block so one list does not
// collapse into a single unit.
func paragraphs(text string) []paragraph {
	var out []paragraph
	lines := strings.Split(text, "\n")

	offset := 0
	var cur []string
	var curStart, curEnd int

	flush := func() {
		body := strings.TrimSpace(strings.Join(cur, "\n"))
		if body != "" {
			out = append(out, paragraph{text: body, start: curStart, end: curEnd})
		}
		cur = nil
	}

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		startsUnit := bulletPattern.MatchString(trimmed) || labelPattern.MatchString(trimmed) || numberedPattern.MatchString(trimmed)

		if trimmed == "" || startsUnit {
			flush()
		}
		if trimmed != "" {
			if len(cur) == 0 {
				curStart = offset
			}
			cur = append(cur, line)
			curEnd = offset + len(line)
		}
		offset += len(line) + 1
	}
	flush()

	return out
}
