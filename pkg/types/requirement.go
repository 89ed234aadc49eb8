// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Span is a byte range into a normalized source document. It lets every
// extracted requirement and indexed clause be traced back to the exact
// source text for audit.
type Span struct {
	Start int `json:"start" yaml:"start"`
	End   int `json:"end" yaml:"end"`
}

// Requirement is one independently assessable obligation extracted from
// an SRS document. Immutable once created; IDs are ordinal (R1, R2, ...)
// in document order and stable within a run.
type Requirement struct {
	// ID is the ordinal requirement identifier, e.g. "R3".
	ID string `json:"id" yaml:"id"`

	// Text is the requirement statement, verbatim from the normalized SRS.
	Text string `json:"text" yaml:"text"`

	// Span locates the statement in the normalized SRS.
	Span Span `json:"span" yaml:"span"`
}

// PolicyClause is an atomic unit of the governing regulation's text,
// keyed by structural reference when the policy has one.
type PolicyClause struct {
	// ID is the clause identifier, e.g. "Art5(1)" or "C12" for
	// unstructured policies.
	ID string `json:"id" yaml:"id"`

	// ArticleRef is the human-readable structural reference,
	// e.g. "Article 5(1)". Equal to ID's long form when present.
	ArticleRef string `json:"article_ref" yaml:"article_ref"`

	// Text is the clause body.
	Text string `json:"text" yaml:"text"`

	// Span locates the clause in the normalized policy document.
	Span Span `json:"span" yaml:"span"`
}

// RetrievedClause pairs a clause with its relevance score for one
// requirement. Higher scores are more relevant.
type RetrievedClause struct {
	Clause PolicyClause `json:"clause" yaml:"clause"`
	Score  float64      `json:"score" yaml:"score"`
}

// RetrievalResult is the ranked clause list for one requirement: score
// descending, clause ID ascending on ties. It is transient and
// recomputed per run. An empty result is valid and means no clause
// cleared the relevance threshold.
type RetrievalResult []RetrievedClause

// ClauseIDs returns the clause identifiers in rank order.
func (r RetrievalResult) ClauseIDs() []string {
	ids := make([]string, len(r))
	for i, rc := range r {
		ids[i] = rc.Clause.ID
	}
	return ids
}

// Status is the compliance classification for one requirement.
type Status string

const (
	StatusCompliant          Status = "Compliant"
	StatusPartiallyCompliant Status = "Partially Compliant"
	StatusNonCompliant       Status = "Non-Compliant"

	// StatusFailed marks a requirement whose assessment could not
	// complete. It is a tooling outcome, never a compliance finding,
	// and is reported separately from Non-Compliant.
	StatusFailed Status = "Failed"
)

// ComplianceVerdict is the assessment outcome for one requirement.
// Produced exactly once per requirement; immutable.
type ComplianceVerdict struct {
	// RequirementID matches the assessed Requirement's ID.
	RequirementID string `json:"requirement_id" yaml:"requirement_id"`

	// Status is one of the recognized classifications, or Failed.
	Status Status `json:"status" yaml:"status"`

	// Rationale explains the classification and cites the clauses that
	// justify it. For Failed verdicts it carries the failure reason.
	Rationale string `json:"rationale" yaml:"rationale"`

	// Recommendation is an actionable remediation, or "None needed."
	// for compliant requirements.
	Recommendation string `json:"recommendation" yaml:"recommendation"`

	// CitedClauses lists the IDs of the retrieved clauses the verdict
	// rests on.
	CitedClauses []string `json:"cited_clauses,omitempty" yaml:"cited_clauses,omitempty"`
}
