// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package policy parses a governing policy document into clauses and
// builds a per-run retrieval index over them. The index is written once
// during setup and is read-only afterwards, so concurrent retrievals
// need no locking.
package policy

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/compliance-engine/pkg/types"
)

const dbFile = "policy-index.db"

// Index is the queryable clause index for one compliance run.
type Index struct {
	db         *sql.DB
	dir        string
	ownsDir    bool
	maxResults int
}

// NewIndex creates an empty clause index backed by a SQLite database
// under cfg.Dir. An empty Dir uses a fresh temporary directory that
// Close removes.
func NewIndex(cfg types.IndexConfig) (*Index, error) {
	dir := cfg.Dir
	ownsDir := false
	if dir == "" {
		tmp, err := os.MkdirTemp("", "policy-index-")
		if err != nil {
			return nil, fmt.Errorf("creating index directory: %w", err)
		}
		dir = tmp
		ownsDir = true
	} else if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening index database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	idx := &Index{
		db:         db,
		dir:        dir,
		ownsDir:    ownsDir,
		maxResults: maxResults,
	}

	if err := idx.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return idx, nil
}

// Close releases the database connection and removes the index
// directory if the Index created it.
func (x *Index) Close() error {
	err := x.db.Close()
	if x.ownsDir {
		os.RemoveAll(x.dir)
	}
	return err
}

func (x *Index) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS clauses (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			article_ref TEXT NOT NULL,
			text TEXT NOT NULL,
			span_start INTEGER NOT NULL,
			span_end INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_clauses_id ON clauses(id)`,
	}

	for _, stmt := range statements {
		if _, err := x.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := x.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='clauses_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE clauses_fts USING fts5(text, content=clauses, content_rowid=rowid)`,
			`CREATE TRIGGER clauses_ai AFTER INSERT ON clauses BEGIN
				INSERT INTO clauses_fts(rowid, text) VALUES (new.rowid, new.text);
			END`,
			`CREATE TRIGGER clauses_ad AFTER DELETE ON clauses BEGIN
				INSERT INTO clauses_fts(clauses_fts, rowid, text) VALUES('delete', old.rowid, old.text);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := x.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// Build parses the normalized policy text into clauses and populates
// the index. It returns the number of clauses indexed; a policy with no
// parseable clauses is an error and aborts the run.
func (x *Index) Build(ctx context.Context, policyText string) (int, error) {
	clauses := ParseClauses(policyText)
	if len(clauses) == 0 {
		return 0, fmt.Errorf("policy document contains no parseable clauses")
	}

	tx, err := x.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO clauses (id, article_ref, text, span_start, span_end)
		 VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, c := range clauses {
		if _, err := stmt.ExecContext(ctx, c.ID, c.ArticleRef, c.Text, c.Span.Start, c.Span.End); err != nil {
			return 0, fmt.Errorf("inserting clause %s: %w", c.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing clauses: %w", err)
	}

	return len(clauses), nil
}

// Trace returns the source span and text of a clause for audit.
func (x *Index) Trace(ctx context.Context, clauseID string) (types.Span, string, error) {
	var span types.Span
	var text string

	err := x.db.QueryRowContext(ctx,
		`SELECT span_start, span_end, text FROM clauses WHERE id = ?`, clauseID,
	).Scan(&span.Start, &span.End, &text)

	if err != nil {
		if err == sql.ErrNoRows {
			return types.Span{}, "", fmt.Errorf("clause %s not found", clauseID)
		}
		return types.Span{}, "", fmt.Errorf("looking up clause: %w", err)
	}

	return span, text, nil
}
