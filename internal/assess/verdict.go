// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package assess

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pdiddy/compliance-engine/pkg/types"
)

// ClassificationParseError reports reasoning output that could not be
// mapped to a recognized verdict. It is retried and then degraded to a
// Failed verdict, never silently coerced to a default status.
type ClassificationParseError struct {
	Reason string
	Raw    string
}

func (e *ClassificationParseError) Error() string {
	return fmt.Sprintf("unparseable classification output: %s", e.Reason)
}

// rawVerdict is the JSON shape the classifier backend is instructed to
// return. Free-form model output is never trusted as already typed;
// ParseVerdict is the validation boundary.
type rawVerdict struct {
	Status         string   `json:"status"`
	Rationale      string   `json:"rationale"`
	Recommendation string   `json:"recommendation"`
	CitedClauses   []string `json:"cited_clauses"`
}

// ParseVerdict validates raw classifier output against the requirement
// and its retrieved clauses, returning a typed verdict or a
// *ClassificationParseError.
func ParseVerdict(raw string, req types.Requirement, retrieved types.RetrievalResult) (types.ComplianceVerdict, error) {
	var rv rawVerdict
	if err := json.Unmarshal([]byte(stripFences(raw)), &rv); err != nil {
		return types.ComplianceVerdict{}, &ClassificationParseError{Reason: fmt.Sprintf("invalid JSON: %v", err), Raw: raw}
	}

	status, ok := canonicalStatus(rv.Status)
	if !ok {
		return types.ComplianceVerdict{}, &ClassificationParseError{Reason: fmt.Sprintf("unrecognized status %q", rv.Status), Raw: raw}
	}

	if strings.TrimSpace(rv.Rationale) == "" {
		return types.ComplianceVerdict{}, &ClassificationParseError{Reason: "empty rationale", Raw: raw}
	}

	recommendation := strings.TrimSpace(rv.Recommendation)
	if recommendation == "" {
		if status != types.StatusCompliant {
			return types.ComplianceVerdict{}, &ClassificationParseError{Reason: "missing recommendation for a non-compliant finding", Raw: raw}
		}
		recommendation = "None needed."
	}

	known := make(map[string]bool, len(retrieved))
	for _, id := range retrieved.ClauseIDs() {
		known[id] = true
	}
	var cited []string
	for _, id := range rv.CitedClauses {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if !known[id] {
			return types.ComplianceVerdict{}, &ClassificationParseError{Reason: fmt.Sprintf("cited clause %q was not retrieved", id), Raw: raw}
		}
		cited = append(cited, id)
	}
	if len(cited) == 0 {
		// A verdict that cites nothing rests on all retrieved clauses.
		cited = retrieved.ClauseIDs()
	}

	return types.ComplianceVerdict{
		RequirementID:  req.ID,
		Status:         status,
		Rationale:      strings.TrimSpace(rv.Rationale),
		Recommendation: recommendation,
		CitedClauses:   cited,
	}, nil
}

// canonicalStatus maps status spellings to the recognized set. The
// hyphenated and spaced forms of "Partially Compliant" both appear in
// model output and legacy reports.
func canonicalStatus(s string) (types.Status, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "compliant":
		return types.StatusCompliant, true
	case "partially compliant", "partially-compliant", "partial":
		return types.StatusPartiallyCompliant, true
	case "non-compliant", "non compliant", "noncompliant":
		return types.StatusNonCompliant, true
	default:
		return "", false
	}
}

// stripFences removes a surrounding markdown code fence, which models
// add despite instructions to return bare JSON.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
