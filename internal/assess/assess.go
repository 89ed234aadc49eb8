// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package assess classifies requirements against retrieved policy
// clauses, producing a compliance verdict with rationale and an
// actionable recommendation.
package assess

import (
	"context"
	"fmt"

	"github.com/pdiddy/compliance-engine/pkg/types"
)

// Classifier abstracts the reasoning capability that classifies one
// requirement against its retrieved clauses. Implementations include
// the Claude-backed classifier and deterministic test stubs.
type Classifier interface {
	Assess(ctx context.Context, req types.Requirement, retrieved types.RetrievalResult) (types.ComplianceVerdict, error)
}

// NoApplicablePolicy is the deterministic verdict for a requirement
// whose retrieval returned no clauses above the relevance threshold.
// Absence of applicable policy text is never evidence of compliance,
// so the requirement is classified Non-Compliant without invoking the
// reasoning capability.
func NoApplicablePolicy(req types.Requirement) types.ComplianceVerdict {
	return types.ComplianceVerdict{
		RequirementID: req.ID,
		Status:        types.StatusNonCompliant,
		Rationale: fmt.Sprintf("No policy clause relevant to requirement %s was retrieved above the relevance threshold; "+
			"compliance cannot be established without applicable policy text.", req.ID),
		Recommendation: "Review the requirement against the full policy text manually and identify the governing clauses, " +
			"or rephrase the requirement so its regulatory obligations are explicit.",
	}
}

// FailedVerdict records a requirement whose assessment could not
// complete. The status is Failed, never a compliance finding, so a
// tooling outage is never conflated with substantive non-compliance.
func FailedVerdict(req types.Requirement, reason error) types.ComplianceVerdict {
	return types.ComplianceVerdict{
		RequirementID:  req.ID,
		Status:         types.StatusFailed,
		Rationale:      fmt.Sprintf("Assessment could not complete: %v", reason),
		Recommendation: "Re-run the compliance check for this requirement.",
	}
}
