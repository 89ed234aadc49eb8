package types

import "time"

// DocumentConfig holds settings for document normalization.
type DocumentConfig struct {
	// MaxBytes is the maximum accepted document size (default 2 MiB).
	MaxBytes int `json:"max_bytes" yaml:"max_bytes"`
}

// IndexConfig holds settings for the policy clause index.
type IndexConfig struct {
	// Dir is the directory for the per-run index database. Empty means
	// a temporary directory.
	Dir string `json:"dir,omitempty" yaml:"dir,omitempty"`

	// MaxResults is the default cap on retrieval results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// RetrievalConfig holds settings for per-requirement clause retrieval.
type RetrievalConfig struct {
	// TopK is the number of clauses retrieved per requirement (default 4).
	TopK int `json:"top_k" yaml:"top_k"`

	// MinScore is the minimum relevance score a clause must reach to be
	// retrieved. Clauses below it are dropped; a requirement may end up
	// with zero retrieved clauses.
	MinScore float64 `json:"min_score" yaml:"min_score"`
}

// AIConfig holds shared settings for components that call a Generative AI API.
type AIConfig struct {
	// Model is the AI model identifier (e.g. "claude-sonnet-4-5-20250929").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the AI API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxRetries is the number of retry attempts for failed API calls (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`

	// Timeout is the per-call HTTP timeout (default 2 minutes).
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// AssessmentConfig holds settings for the compliance assessment stage.
type AssessmentConfig struct {
	AIConfig `yaml:",inline"`
}

// OrchestratorConfig holds settings for the per-run pipeline driver.
type OrchestratorConfig struct {
	// Workers bounds concurrent per-requirement tasks (default 4).
	Workers int `json:"workers" yaml:"workers"`

	// MaxRetries is the number of retry attempts for per-requirement
	// retrieval or assessment failures before the requirement is
	// recorded as Failed (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// PipelineConfig groups all stage configurations for one compliance run.
type PipelineConfig struct {
	Document     DocumentConfig     `json:"document" yaml:"document"`
	Index        IndexConfig        `json:"index" yaml:"index"`
	Retrieval    RetrievalConfig    `json:"retrieval" yaml:"retrieval"`
	Assessment   AssessmentConfig   `json:"assessment" yaml:"assessment"`
	Orchestrator OrchestratorConfig `json:"orchestrator" yaml:"orchestrator"`
}
