// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history indexes completed runs in a SQLite database so past
// catalogs stay searchable after their run directories scroll out of mind.
// Recording is best-effort: a failed insert warns, it never fails a run.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/arxiv-digest/pkg/types"
)

// Store manages the run history SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the history database at dbPath, creating the
// schema if it does not exist.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating history schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_dir     TEXT PRIMARY KEY,
	topic       TEXT NOT NULL,
	interest    TEXT NOT NULL,
	query       TEXT NOT NULL,
	window_days INTEGER NOT NULL,
	paper_count INTEGER NOT NULL,
	created_at  TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS papers (
	run_dir      TEXT NOT NULL REFERENCES runs(run_dir) ON DELETE CASCADE,
	id           TEXT NOT NULL,
	title        TEXT NOT NULL,
	category     TEXT,
	url          TEXT,
	published_at TIMESTAMP,
	PRIMARY KEY (run_dir, id)
);
CREATE INDEX IF NOT EXISTS idx_papers_title ON papers(title);
`
	_, err := s.db.Exec(schema)
	return err
}

// RunRecord is one indexed run.
type RunRecord struct {
	RunDir     string
	Topic      string
	Interest   string
	Query      string
	WindowDays int
	PaperCount int
	CreatedAt  time.Time
}

// PaperHit is one catalog entry matched by a search.
type PaperHit struct {
	RunDir      string
	ID          string
	Title       string
	Category    string
	URL         string
	PublishedAt time.Time
}

// RecordRun indexes a prepared run and its catalog. Re-recording the same
// run directory replaces the previous rows.
func (s *Store) RecordRun(ctx context.Context, rec RunRecord, catalog types.Catalog) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO runs (run_dir, topic, interest, query, window_days, paper_count, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.RunDir, rec.Topic, rec.Interest, rec.Query, rec.WindowDays, len(catalog), rec.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM papers WHERE run_dir = ?`, rec.RunDir); err != nil {
		return fmt.Errorf("clearing papers: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO papers (run_dir, id, title, category, url, published_at) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing paper insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range catalog {
		if _, err := stmt.ExecContext(ctx, rec.RunDir, e.ID, e.Title, e.Category, e.URL, e.PublishedAt.UTC()); err != nil {
			return fmt.Errorf("inserting paper %s: %w", e.ID, err)
		}
	}

	return tx.Commit()
}

// ListRuns returns indexed runs, most recent first.
func (s *Store) ListRuns(ctx context.Context) ([]RunRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_dir, topic, interest, query, window_days, paper_count, created_at
		 FROM runs ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		var r RunRecord
		if err := rows.Scan(&r.RunDir, &r.Topic, &r.Interest, &r.Query, &r.WindowDays, &r.PaperCount, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// SearchPapers returns catalog entries whose titles contain term,
// newest first, capped at limit.
func (s *Store) SearchPapers(ctx context.Context, term string, limit int) ([]PaperHit, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_dir, id, title, COALESCE(category, ''), COALESCE(url, ''), published_at
		 FROM papers WHERE title LIKE ? ORDER BY published_at DESC LIMIT ?`,
		"%"+term+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("searching papers: %w", err)
	}
	defer rows.Close()

	var hits []PaperHit
	for rows.Next() {
		var h PaperHit
		if err := rows.Scan(&h.RunDir, &h.ID, &h.Title, &h.Category, &h.URL, &h.PublishedAt); err != nil {
			return nil, fmt.Errorf("scanning paper: %w", err)
		}
		hits = append(hits, h)
	}
	return hits, rows.Err()
}
