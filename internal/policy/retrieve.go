// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package policy

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/pdiddy/compliance-engine/pkg/types"
)

// DefaultTopK is the number of clauses retrieved per requirement when
// the config does not set one.
const DefaultTopK = 4

// tokenPattern extracts word tokens for the FTS match query.
var tokenPattern = regexp.MustCompile(`[A-Za-z0-9]+`)

// stopwords are dropped from retrieval queries; they match everything
// in regulatory prose and drown the signal terms.
var stopwords = map[string]bool{
	"the": true, "and": true, "for": true, "that": true, "with": true,
	"shall": true, "must": true, "will": true, "should": true,
	"this": true, "are": true, "its": true, "any": true, "all": true,
	"not": true, "may": true, "has": true, "have": true, "been": true,
	"system": true, "user": true, "users": true,
}

// Retrieve returns the top-K clauses most relevant to the query text,
// ranked by bm25 relevance score descending with ties broken by clause
// ID ascending. Clauses scoring below minScore are dropped; when
// nothing clears the threshold the result is empty, not an error.
func (x *Index) Retrieve(ctx context.Context, query string, topK int, minScore float64) (types.RetrievalResult, error) {
	if topK <= 0 {
		topK = DefaultTopK
	}

	match := ftsQuery(query)
	if match == "" {
		return nil, nil
	}

	rows, err := x.db.QueryContext(ctx,
		`SELECT c.id, c.article_ref, c.text, c.span_start, c.span_end, clauses_fts.rank
		 FROM clauses_fts
		 JOIN clauses c ON c.rowid = clauses_fts.rowid
		 WHERE clauses_fts MATCH ?
		 ORDER BY clauses_fts.rank
		 LIMIT ?`,
		match, x.maxResults,
	)
	if err != nil {
		return nil, fmt.Errorf("querying clause index: %w", err)
	}
	defer rows.Close()

	var results types.RetrievalResult
	for rows.Next() {
		var rc types.RetrievedClause
		var rank float64
		if err := rows.Scan(&rc.Clause.ID, &rc.Clause.ArticleRef, &rc.Clause.Text,
			&rc.Clause.Span.Start, &rc.Clause.Span.End, &rank); err != nil {
			return nil, fmt.Errorf("scanning clause row: %w", err)
		}
		// bm25 rank is negative with better matches more negative.
		rc.Score = -rank
		if rc.Score < minScore {
			continue
		}
		results = append(results, rc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading clause rows: %w", err)
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Clause.ID < results[j].Clause.ID
	})

	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// ftsQuery converts free text into an FTS5 OR-query of quoted tokens.
// Returns "" when the text yields no usable tokens.
func ftsQuery(text string) string {
	seen := make(map[string]bool)
	var terms []string
	for _, tok := range tokenPattern.FindAllString(text, -1) {
		tok = strings.ToLower(tok)
		if len(tok) < 3 || stopwords[tok] || seen[tok] {
			continue
		}
		seen[tok] = true
		terms = append(terms, `"`+tok+`"`)
	}
	return strings.Join(terms, " OR ")
}
