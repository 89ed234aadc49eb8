// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report aggregates per-requirement verdicts into the final
// compliance report and renders its fixed narrative surface.
package report

import (
	"fmt"
	"strings"

	"github.com/pdiddy/compliance-engine/pkg/types"
)

// reportHeader is the first line of every rendered report. Downstream
// renderers key on this literal structure; do not reword it.
const reportHeader = "## FINAL COMPLIANCE ASSESSMENT REPORT (RA_Agent) ##"

// Aggregate collects ordered requirement results into a report:
// verdict tallies by status (including the Failed bucket) plus the
// deterministic narrative rendering.
func Aggregate(policyName string, results []types.RequirementResult) *types.ComplianceReport {
	summary := map[types.Status]int{
		types.StatusCompliant:          0,
		types.StatusPartiallyCompliant: 0,
		types.StatusNonCompliant:       0,
		types.StatusFailed:             0,
	}
	for _, r := range results {
		summary[r.Verdict.Status]++
	}

	return &types.ComplianceReport{
		PolicyName: policyName,
		Results:    results,
		Summary:    summary,
		RawText:    render(policyName, results, summary),
	}
}

// render produces the narrative report text. The heading, header
// fields, block separator, and field labels are a compatibility
// surface consumed by the legacy report parser and any downstream
// renderer; the format is byte-for-byte deterministic.
func render(policyName string, results []types.RequirementResult, summary map[types.Status]int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n\n", reportHeader)
	fmt.Fprintf(&b, "**Governing Policy:** %s\n", policyName)
	fmt.Fprintf(&b, "**Status:** %d Non-Compliant, %d Partially Compliant Requirements Identified.\n",
		summary[types.StatusNonCompliant], summary[types.StatusPartiallyCompliant])

	for _, r := range results {
		fmt.Fprintf(&b, "\n---\n")
		fmt.Fprintf(&b, "**Requirement %s:** %s\n", r.Requirement.ID, r.Requirement.Text)
		fmt.Fprintf(&b, "*   **Status:** %s\n", r.Verdict.Status)
		fmt.Fprintf(&b, "*   **Rationale:** %s\n", r.Verdict.Rationale)
		fmt.Fprintf(&b, "*   **Recommendation:** %s\n", r.Verdict.Recommendation)
	}

	return b.String()
}

// ToParsed converts a report to the external contract: one entry per
// requirement in document order, parsing_success true, null error.
func ToParsed(r *types.ComplianceReport) *types.ParsedReport {
	reqs := make([]types.ParsedRequirement, len(r.Results))
	for i, res := range r.Results {
		reqs[i] = types.ParsedRequirement{
			RequirementNumber: res.Requirement.ID,
			RequirementText:   res.Requirement.Text,
			Status:            string(res.Verdict.Status),
			Rationale:         res.Verdict.Rationale,
			Recommendation:    res.Verdict.Recommendation,
		}
	}
	return &types.ParsedReport{
		Requirements:   reqs,
		RawText:        r.RawText,
		ParsingSuccess: true,
	}
}

// Failure builds the external contract for a run that aborted before
// producing verdicts: empty requirements, non-null error message.
func Failure(rawText string, err error) *types.ParsedReport {
	msg := err.Error()
	return &types.ParsedReport{
		Requirements:   []types.ParsedRequirement{},
		RawText:        rawText,
		ParsingSuccess: false,
		ErrorMessage:   &msg,
	}
}
