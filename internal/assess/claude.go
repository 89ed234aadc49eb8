// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package assess

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"text/template"
	"time"

	"github.com/pdiddy/compliance-engine/internal/httputil"
	"github.com/pdiddy/compliance-engine/pkg/types"
)

// assessmentPromptTmpl is the prompt sent to the Claude API for one
// requirement and its retrieved clauses. It constrains the model to the
// three recognized statuses and to a remediation that is actionable
// rather than a restatement of the rationale.
var assessmentPromptTmpl = template.Must(template.New("assessment").Parse(`You are a software requirements compliance assessor. Classify the following requirement against the retrieved clauses of the governing policy.

Status semantics:
- "Compliant": the requirement's stated behavior satisfies every relevant clause's obligation; no behavioral change is needed.
- "Partially Compliant": the requirement satisfies at least one relevant obligation but omits or under-specifies another obligation the same clause area implies.
- "Non-Compliant": the requirement's stated behavior directly contravenes a retrieved clause, or no lawful basis or safeguard is present.

Rules:
- The rationale must explicitly cite the clause reference(s) that justify the verdict.
- The recommendation must be a specific, actionable remediation, not a restatement of the rationale. Use exactly "None needed." when the requirement is Compliant.
- cited_clauses must list the IDs of the retrieved clauses the verdict rests on.

Respond with a JSON object only, no text outside it:
{"status": "...", "rationale": "...", "recommendation": "...", "cited_clauses": ["..."]}

Requirement {{.Requirement.ID}}:
{{.Requirement.Text}}

Retrieved policy clauses:
{{range .Retrieved}}[{{.Clause.ID}}] {{.Clause.ArticleRef}}:
{{.Clause.Text}}

{{end}}`))

// claudeAPIURL is the Claude API endpoint. Package-level var for test
// substitution.
var claudeAPIURL = "https://api.anthropic.com/v1/messages"

// ClaudeClassifier classifies requirements via the Claude Messages API.
type ClaudeClassifier struct {
	APIKey     string
	Model      string
	MaxRetries int
	Client     *http.Client
}

// NewClaudeClassifier builds a classifier from the assessment config.
func NewClaudeClassifier(cfg types.AssessmentConfig) *ClaudeClassifier {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &ClaudeClassifier{
		APIKey:     cfg.APIKey,
		Model:      cfg.Model,
		MaxRetries: cfg.MaxRetries,
		Client:     &http.Client{Timeout: timeout},
	}
}

// claudeRequest is the request body for the Claude Messages API.
type claudeRequest struct {
	Model     string          `json:"model"`
	MaxTokens int             `json:"max_tokens"`
	Messages  []claudeMessage `json:"messages"`
}

// claudeMessage is a single message in the Claude API conversation.
type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// claudeResponse is the response body from the Claude Messages API.
type claudeResponse struct {
	Content []claudeContent `json:"content"`
}

// claudeContent is a content block in the Claude API response.
type claudeContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Assess renders the assessment prompt, calls the Claude API, and
// parses the reply through the strict verdict boundary.
func (c *ClaudeClassifier) Assess(ctx context.Context, req types.Requirement, retrieved types.RetrievalResult) (types.ComplianceVerdict, error) {
	prompt, err := renderPrompt(req, retrieved)
	if err != nil {
		return types.ComplianceVerdict{}, fmt.Errorf("rendering prompt: %w", err)
	}

	reqBody := claudeRequest{
		Model:     c.Model,
		MaxTokens: 2048,
		Messages: []claudeMessage{
			{Role: "user", Content: prompt},
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return types.ComplianceVerdict{}, fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, claudeAPIURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return types.ComplianceVerdict{}, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.APIKey)
	httpReq.Header.Set("anthropic-version", "2023-06-01")

	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := httputil.DoWithRetry(ctx, client, httpReq, c.MaxRetries)
	if err != nil {
		return types.ComplianceVerdict{}, fmt.Errorf("calling Claude API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return types.ComplianceVerdict{}, fmt.Errorf("Claude API returned %d: %s", resp.StatusCode, string(body))
	}

	var cResp claudeResponse
	if err := json.NewDecoder(resp.Body).Decode(&cResp); err != nil {
		return types.ComplianceVerdict{}, fmt.Errorf("decoding Claude response: %w", err)
	}

	for _, block := range cResp.Content {
		if block.Type != "text" {
			continue
		}
		return ParseVerdict(block.Text, req, retrieved)
	}

	return types.ComplianceVerdict{}, fmt.Errorf("no text content in Claude API response")
}

// renderPrompt executes the assessment prompt template.
func renderPrompt(req types.Requirement, retrieved types.RetrievalResult) (string, error) {
	var buf bytes.Buffer
	err := assessmentPromptTmpl.Execute(&buf, struct {
		Requirement types.Requirement
		Retrieved   types.RetrievalResult
	}{req, retrieved})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
