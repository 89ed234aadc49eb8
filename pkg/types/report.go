// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// RequirementResult pairs a requirement with its verdict. The report
// keeps these in original SRS document order.
type RequirementResult struct {
	Requirement Requirement       `json:"requirement" yaml:"requirement"`
	Verdict     ComplianceVerdict `json:"verdict" yaml:"verdict"`
}

// ComplianceReport is the aggregated outcome of one compliance run.
// Constructed once by the aggregator; read-only afterwards. Every
// requirement has exactly one verdict, including Failed verdicts for
// requirements the pipeline could not assess.
type ComplianceReport struct {
	// PolicyName labels the governing policy, e.g. "GDPR".
	PolicyName string `json:"policy_name" yaml:"policy_name"`

	// Results lists requirement/verdict pairs in SRS document order.
	Results []RequirementResult `json:"results" yaml:"results"`

	// Summary tallies verdicts by status, including the Failed bucket.
	Summary map[Status]int `json:"summary" yaml:"summary"`

	// RawText is the deterministic human-readable rendering.
	RawText string `json:"raw_text" yaml:"raw_text"`
}

// ParsedRequirement is one requirement entry on the external report
// contract consumed by downstream renderers.
type ParsedRequirement struct {
	RequirementNumber string `json:"requirement_number"`
	RequirementText   string `json:"requirement_text"`
	Status            string `json:"status"`
	Rationale         string `json:"rationale"`
	Recommendation    string `json:"recommendation"`
}

// ParsedReport is the external report contract. When ParsingSuccess is
// false, Requirements is empty and ErrorMessage is non-null; otherwise
// ErrorMessage is null and Requirements has one entry per extracted
// requirement, in original document order.
type ParsedReport struct {
	Requirements   []ParsedRequirement `json:"requirements"`
	RawText        string              `json:"raw_text"`
	ParsingSuccess bool                `json:"parsing_success"`
	ErrorMessage   *string             `json:"error_message"`
}
