// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pdiddy/compliance-engine/pkg/types"
)

// requirementLinePattern matches the opening line of a requirement
// block: **Requirement R3:** text.
var requirementLinePattern = regexp.MustCompile(`^\*\*Requirement\s+(R\d+):\*\*\s*(.*)$`)

// fieldLinePattern matches a labeled field line within a block:
// *   **Status:** value.
var fieldLinePattern = regexp.MustCompile(`^\*\s*\*\*(Status|Rationale|Recommendation):\*\*\s*(.*)$`)

// ParseText deterministically parses a rendered compliance report back
// into the external contract. It is the inverse of the aggregator's
// rendering and also accepts legacy reports in the same block format.
// Empty or unrecognizable input yields parsing_success=false with a
// non-null error message.
func ParseText(raw string) *types.ParsedReport {
	if strings.TrimSpace(raw) == "" {
		return Failure(raw, fmt.Errorf("empty report text"))
	}

	var reqs []types.ParsedRequirement
	var cur *types.ParsedRequirement
	var lastField *string

	flush := func() {
		if cur != nil && cur.RequirementNumber != "" {
			reqs = append(reqs, *cur)
		}
		cur = nil
		lastField = nil
	}

	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)

		if trimmed == "---" {
			flush()
			continue
		}

		if m := requirementLinePattern.FindStringSubmatch(trimmed); m != nil {
			flush()
			cur = &types.ParsedRequirement{
				RequirementNumber: m[1],
				RequirementText:   m[2],
			}
			lastField = &cur.RequirementText
			continue
		}

		if cur == nil {
			continue
		}

		if m := fieldLinePattern.FindStringSubmatch(trimmed); m != nil {
			switch m[1] {
			case "Status":
				cur.Status = m[2]
				lastField = &cur.Status
			case "Rationale":
				cur.Rationale = m[2]
				lastField = &cur.Rationale
			case "Recommendation":
				cur.Recommendation = m[2]
				lastField = &cur.Recommendation
			}
			continue
		}

		// Wrapped continuation of the previous field.
		if lastField != nil && trimmed != "" {
			*lastField = strings.TrimSpace(*lastField + " " + trimmed)
		}
	}
	flush()

	if len(reqs) == 0 {
		return Failure(raw, fmt.Errorf("no requirement blocks found in report text"))
	}

	return &types.ParsedReport{
		Requirements:   reqs,
		RawText:        raw,
		ParsingSuccess: true,
	}
}
