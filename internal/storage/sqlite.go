// Package storage persists analysis results to SQLite so query commands can
// run without re-analyzing the repository.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"codeatlas/internal/depgraph"
	"codeatlas/internal/index"
	"codeatlas/internal/model"
	"codeatlas/internal/pipeline"
)

type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates or opens a SQLite database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS files (
			path TEXT PRIMARY KEY,
			language TEXT,
			symbol_count INTEGER
		)`,
		`CREATE TABLE IF NOT EXISTS symbols (
			id INTEGER PRIMARY KEY,
			file TEXT,
			name TEXT,
			category TEXT,
			scope TEXT,
			start_line INTEGER,
			end_line INTEGER,
			start_column INTEGER,
			end_column INTEGER,
			signature TEXT,
			docstring TEXT,
			exported INTEGER,
			imported INTEGER
		)`,
		`CREATE TABLE IF NOT EXISTS edges (
			from_id INTEGER,
			to_id INTEGER,
			kind TEXT,
			weight INTEGER
		)`,
		`CREATE TABLE IF NOT EXISTS analysis (
			key TEXT PRIMARY KEY,
			value JSON
		)`,
		`CREATE INDEX IF NOT EXISTS idx_symbols_name ON symbols(name)`,
		`CREATE INDEX IF NOT EXISTS idx_symbols_file ON symbols(file)`,
		`CREATE INDEX IF NOT EXISTS idx_edges_from ON edges(from_id)`,
	}
	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return err
		}
	}
	return nil
}

// SaveResult replaces any previously stored analysis with the given one.
func (s *SQLiteStore) SaveResult(ctx context.Context, result *pipeline.Result) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"files", "symbols", "edges", "analysis"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}

	fileStmt, err := tx.PrepareContext(ctx, `INSERT INTO files (path, language, symbol_count) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer fileStmt.Close()
	for _, f := range result.Files {
		if _, err := fileStmt.ExecContext(ctx, f.Path, f.Language, len(f.Symbols)); err != nil {
			return fmt.Errorf("failed to save file %s: %w", f.Path, err)
		}
	}

	symStmt, err := tx.PrepareContext(ctx, `INSERT INTO symbols
		(id, file, name, category, scope, start_line, end_line, start_column, end_column, signature, docstring, exported, imported)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer symStmt.Close()
	for _, e := range result.SymbolIndex {
		sym := e.Symbol
		if _, err := symStmt.ExecContext(ctx, e.ID, e.File, sym.Name, string(sym.Category), string(sym.Scope),
			sym.StartLine, sym.EndLine, sym.StartColumn, sym.EndColumn,
			sym.Signature, sym.Docstring, boolInt(sym.Exported), boolInt(sym.Imported)); err != nil {
			return fmt.Errorf("failed to save symbol %s: %w", sym.Name, err)
		}
	}

	edgeStmt, err := tx.PrepareContext(ctx, `INSERT INTO edges (from_id, to_id, kind, weight) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer edgeStmt.Close()
	for _, edge := range result.Dependencies.Graph.Edges {
		if _, err := edgeStmt.ExecContext(ctx, edge.From, edge.To, string(edge.Kind), edge.Weight); err != nil {
			return fmt.Errorf("failed to save edge %d->%d: %w", edge.From, edge.To, err)
		}
	}

	summary, err := json.Marshal(result.Dependencies)
	if err != nil {
		return fmt.Errorf("failed to encode analysis: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO analysis (key, value) VALUES ('dependency_analysis', ?)`, string(summary)); err != nil {
		return err
	}
	statsJSON, err := json.Marshal(result.Stats)
	if err != nil {
		return fmt.Errorf("failed to encode stats: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO analysis (key, value) VALUES ('stats', ?)`, string(statsJSON)); err != nil {
		return err
	}

	return tx.Commit()
}

// FindSymbols queries stored symbols by optional name, category and file
// filters, preserving id (insertion) order.
func (s *SQLiteStore) FindSymbols(ctx context.Context, name, category, file string, exportedOnly bool) ([]*index.Entry, error) {
	query := `SELECT id, file, name, category, scope, start_line, end_line, start_column, end_column, signature, docstring, exported, imported
		FROM symbols WHERE 1=1`
	var args []any
	if name != "" {
		query += " AND name = ?"
		args = append(args, name)
	}
	if category != "" {
		query += " AND category = ?"
		args = append(args, category)
	}
	if file != "" {
		query += " AND file = ?"
		args = append(args, file)
	}
	if exportedOnly {
		query += " AND exported = 1"
	}
	query += " ORDER BY id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*index.Entry
	for rows.Next() {
		e := &index.Entry{}
		var exported, imported int
		var category, scope string
		if err := rows.Scan(&e.ID, &e.File, &e.Symbol.Name, &category, &scope,
			&e.Symbol.StartLine, &e.Symbol.EndLine, &e.Symbol.StartColumn, &e.Symbol.EndColumn,
			&e.Symbol.Signature, &e.Symbol.Docstring, &exported, &imported); err != nil {
			return nil, err
		}
		e.Symbol.Category = model.Category(category)
		e.Symbol.Scope = model.Scope(scope)
		e.Symbol.Exported = exported == 1
		e.Symbol.Imported = imported == 1
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// LoadAnalysis restores the stored dependency analysis.
func (s *SQLiteStore) LoadAnalysis(ctx context.Context) (*depgraph.Analysis, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM analysis WHERE key = 'dependency_analysis'`).Scan(&raw)
	if err != nil {
		return nil, fmt.Errorf("no stored analysis: %w", err)
	}
	analysis := &depgraph.Analysis{Graph: depgraph.NewGraph()}
	if err := json.Unmarshal([]byte(raw), analysis); err != nil {
		return nil, fmt.Errorf("failed to decode analysis: %w", err)
	}
	return analysis, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
