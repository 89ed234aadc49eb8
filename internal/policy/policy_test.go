package policy

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"

	"github.com/pdiddy/compliance-engine/pkg/types"
)

// --- test helpers ---

const samplePolicy = `Article 5
Principles relating to processing of personal data

1. Personal data shall be processed lawfully, fairly and in a transparent manner in relation to the data subject.
2. Personal data shall be collected for specified, explicit and legitimate purposes.

Article 7
Conditions for consent

1. Where processing is based on consent, the controller shall be able to demonstrate that the data subject has consented to processing of his or her personal data.
2. If the data subject's consent is given in the context of a written declaration which also concerns other matters, the request for consent shall be presented in a manner which is clearly distinguishable from the other matters.

Article 32
Security of processing

1. The controller and the processor shall implement appropriate technical and organisational measures to ensure a level of security appropriate to the risk, including encryption and hashing of personal data.`

func testIndex(t *testing.T, policyText string) *Index {
	t.Helper()
	idx, err := NewIndex(types.IndexConfig{Dir: t.TempDir()})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { idx.Close() })

	if _, err := idx.Build(context.Background(), policyText); err != nil {
		t.Fatal(err)
	}
	return idx
}

// --- clause parsing ---

func TestParseClausesArticles(t *testing.T) {
	clauses := ParseClauses(samplePolicy)

	wantIDs := []string{"Art5(1)", "Art5(2)", "Art7(1)", "Art7(2)", "Art32(1)"}
	if len(clauses) != len(wantIDs) {
		t.Fatalf("got %d clauses, want %d: %+v", len(clauses), len(wantIDs), clauses)
	}
	for i, want := range wantIDs {
		if clauses[i].ID != want {
			t.Errorf("clauses[%d].ID = %q, want %q", i, clauses[i].ID, want)
		}
	}
	if clauses[0].ArticleRef != "Article 5(1)" {
		t.Errorf("ArticleRef = %q, want Article 5(1)", clauses[0].ArticleRef)
	}
}

func TestParseClausesArticleWithoutSubPoints(t *testing.T) {
	text := `Article 1
Subject-matter and objectives

This Regulation lays down rules relating to the protection of natural persons.`

	clauses := ParseClauses(text)
	if len(clauses) != 1 {
		t.Fatalf("got %d clauses, want 1", len(clauses))
	}
	if clauses[0].ID != "Art1" || clauses[0].ArticleRef != "Article 1" {
		t.Errorf("unexpected clause: %+v", clauses[0])
	}
}

func TestParseClausesSections(t *testing.T) {
	text := `Section 3
Data retention limits apply to all records.`

	clauses := ParseClauses(text)
	if len(clauses) != 1 {
		t.Fatalf("got %d clauses, want 1", len(clauses))
	}
	if clauses[0].ID != "Sec3" || clauses[0].ArticleRef != "Section 3" {
		t.Errorf("unexpected clause: %+v", clauses[0])
	}
}

func TestParseClausesFallbackParagraphs(t *testing.T) {
	text := `All personal data must be stored securely.

Consent must be freely given and specific.`

	clauses := ParseClauses(text)
	if len(clauses) != 2 {
		t.Fatalf("got %d clauses, want 2", len(clauses))
	}
	if clauses[0].ID != "C1" || clauses[1].ID != "C2" {
		t.Errorf("unexpected IDs: %q, %q", clauses[0].ID, clauses[1].ID)
	}
	if clauses[1].ArticleRef != "Clause 2" {
		t.Errorf("ArticleRef = %q, want Clause 2", clauses[1].ArticleRef)
	}
}

func TestParseClausesSpansTraceable(t *testing.T) {
	clauses := ParseClauses(samplePolicy)
	for _, c := range clauses {
		if c.Span.Start < 0 || c.Span.End > len(samplePolicy) || c.Span.Start >= c.Span.End {
			t.Errorf("%s: bad span %+v", c.ID, c.Span)
			continue
		}
		src := samplePolicy[c.Span.Start:c.Span.End]
		firstLine := strings.SplitN(c.Text, "\n", 2)[0]
		if !strings.Contains(src, firstLine) {
			t.Errorf("%s: span text %q does not contain clause start %q", c.ID, src, firstLine)
		}
	}
}

// --- index build ---

func TestBuildCountsClauses(t *testing.T) {
	idx, err := NewIndex(types.IndexConfig{Dir: t.TempDir()})
	if err != nil {
		t.Fatal(err)
	}
	defer idx.Close()

	n, err := idx.Build(context.Background(), samplePolicy)
	if err != nil {
		t.Fatal(err)
	}
	if n != 5 {
		t.Errorf("Build returned %d, want 5", n)
	}
}

func TestBuildEmptyPolicyFails(t *testing.T) {
	idx, err := NewIndex(types.IndexConfig{Dir: t.TempDir()})
	if err != nil {
		t.Fatal(err)
	}
	defer idx.Close()

	if _, err := idx.Build(context.Background(), ""); err == nil {
		t.Fatal("want error for empty policy")
	}
}

func TestNewIndexTempDirCleanup(t *testing.T) {
	idx, err := NewIndex(types.IndexConfig{})
	if err != nil {
		t.Fatal(err)
	}
	dir := idx.dir
	if err := idx.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(dir); err == nil {
		t.Errorf("temp index dir %s still exists after Close", dir)
	}
}

// --- retrieval ---

func TestRetrieveRanksRelevantClauseFirst(t *testing.T) {
	idx := testIndex(t, samplePolicy)

	results, err := idx.Retrieve(context.Background(),
		"Where processing is based on consent the controller demonstrates the data subject consented", 3, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) == 0 {
		t.Fatal("no results")
	}
	if results[0].Clause.ID != "Art7(1)" {
		t.Errorf("top clause = %s, want Art7(1)", results[0].Clause.ID)
	}
	for i := 1; i < len(results); i++ {
		if results[i].Score > results[i-1].Score {
			t.Errorf("results not sorted by score: %v then %v", results[i-1].Score, results[i].Score)
		}
	}
}

func TestRetrieveRespectsTopK(t *testing.T) {
	idx := testIndex(t, samplePolicy)

	results, err := idx.Retrieve(context.Background(), "personal data processing", 2, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) > 2 {
		t.Errorf("got %d results, want at most 2", len(results))
	}
}

func TestRetrieveThresholdEmptyNotError(t *testing.T) {
	idx := testIndex(t, samplePolicy)

	results, err := idx.Retrieve(context.Background(), "blockchain quantum telemetry", 3, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 0 {
		t.Errorf("got %d results for unrelated query, want 0", len(results))
	}

	// A very high threshold filters everything; still not an error.
	results, err = idx.Retrieve(context.Background(), "personal data", 3, 1e9)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 0 {
		t.Errorf("got %d results above impossible threshold, want 0", len(results))
	}
}

func TestRetrieveTieBreakByClauseID(t *testing.T) {
	// Identical clause texts score identically; order falls back to ID.
	text := `Article 1
Records must be kept confidential at all times.

Article 2
Records must be kept confidential at all times.`

	idx := testIndex(t, text)

	results, err := idx.Retrieve(context.Background(), "records kept confidential", 2, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].Clause.ID != "Art1" || results[1].Clause.ID != "Art2" {
		t.Errorf("tie not broken by ID: %s, %s", results[0].Clause.ID, results[1].Clause.ID)
	}
}

func TestRetrieveDeterministic(t *testing.T) {
	idx := testIndex(t, samplePolicy)

	first, err := idx.Retrieve(context.Background(), "security encryption of personal data", 3, 0)
	if err != nil {
		t.Fatal(err)
	}
	second, err := idx.Retrieve(context.Background(), "security encryption of personal data", 3, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(first) != len(second) {
		t.Fatalf("lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Clause.ID != second[i].Clause.ID || first[i].Score != second[i].Score {
			t.Errorf("result %d differs between runs", i)
		}
	}
}

func TestRetrieveNoUsableTokens(t *testing.T) {
	idx := testIndex(t, samplePolicy)

	results, err := idx.Retrieve(context.Background(), "the and for", 3, 0)
	if err != nil {
		t.Fatal(err)
	}
	if results != nil {
		t.Errorf("got %v, want nil", results)
	}
}

// --- trace ---

func TestTrace(t *testing.T) {
	idx := testIndex(t, samplePolicy)

	span, text, err := idx.Trace(context.Background(), "Art32(1)")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(text, "technical and organisational measures") {
		t.Errorf("unexpected trace text: %q", text)
	}
	if span.Start <= 0 || span.End <= span.Start {
		t.Errorf("bad span: %+v", span)
	}
}

func TestTraceUnknownClause(t *testing.T) {
	idx := testIndex(t, samplePolicy)

	if _, _, err := idx.Trace(context.Background(), "Art99"); err == nil {
		t.Fatal("want error for unknown clause")
	}
}

// --- export ---

func TestExportYAML(t *testing.T) {
	idx := testIndex(t, samplePolicy)

	var buf bytes.Buffer
	if err := idx.ExportYAML(context.Background(), &buf); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, id := range []string{"Art5(1)", "Art7(2)", "Art32(1)"} {
		if !strings.Contains(out, id) {
			t.Errorf("export missing clause %s", id)
		}
	}
}

// --- ftsQuery ---

func TestFTSQuery(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"tokens quoted", "encrypt data", `"encrypt" OR "data"`},
		{"stopwords dropped", "the system shall encrypt", `"encrypt"`},
		{"short tokens dropped", "a db of records", `"records"`},
		{"dedup", "data data data", `"data"`},
		{"nothing usable", "the and", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ftsQuery(tt.in); got != tt.want {
				t.Errorf("ftsQuery(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
