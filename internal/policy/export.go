// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package policy

import (
	"context"
	"fmt"
	"io"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/compliance-engine/pkg/types"
)

// ExportYAML writes all indexed clauses to w as YAML, in index order,
// for inspection and audit.
func (x *Index) ExportYAML(ctx context.Context, w io.Writer) error {
	rows, err := x.db.QueryContext(ctx,
		`SELECT id, article_ref, text, span_start, span_end FROM clauses ORDER BY rowid`)
	if err != nil {
		return fmt.Errorf("querying clauses for export: %w", err)
	}
	defer rows.Close()

	var clauses []types.PolicyClause
	for rows.Next() {
		var c types.PolicyClause
		if err := rows.Scan(&c.ID, &c.ArticleRef, &c.Text, &c.Span.Start, &c.Span.End); err != nil {
			return fmt.Errorf("scanning clause row: %w", err)
		}
		clauses = append(clauses, c)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("reading clause rows: %w", err)
	}

	data, err := yaml.Marshal(clauses)
	if err != nil {
		return fmt.Errorf("marshaling clauses: %w", err)
	}
	_, err = w.Write(data)
	return err
}
