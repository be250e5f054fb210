// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package library persists parsed records in a SQLite database so several
// bibliographies can be searched and exported together.
// See docs/ARCHITECTURE § Library.
package library

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/pdiddy/bibcite/internal/pipeline"
	"github.com/pdiddy/bibcite/internal/source"
	"github.com/pdiddy/bibcite/pkg/types"
)

const (
	dbFile            = "library.db"
	defaultMaxResults = 20
)

// Store manages the library SQLite database.
type Store struct {
	db         *sql.DB
	dir        string
	maxResults int
	log        *zap.Logger
}

// Open opens or creates the library database at dir/library.db and creates
// the schema if it does not exist.
func Open(cfg types.LibraryConfig, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating library directory: %w", err)
	}

	dbPath := filepath.Join(cfg.Dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}

	s := &Store{db: db, dir: cfg.Dir, maxResults: maxResults, log: log}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS sources (
			name TEXT PRIMARY KEY,
			fingerprint TEXT NOT NULL,
			ingested_at TEXT NOT NULL,
			entries INTEGER NOT NULL,
			skipped INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS records (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			source TEXT NOT NULL REFERENCES sources(name) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			key TEXT NOT NULL,
			type TEXT NOT NULL,
			title TEXT,
			author TEXT,
			year TEXT,
			abstract TEXT,
			fields TEXT NOT NULL,
			UNIQUE(source, key)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_records_type ON records(type)`,
		`CREATE INDEX IF NOT EXISTS idx_records_year ON records(year)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// IngestStatus describes what Ingest did with a source.
type IngestStatus string

const (
	StatusIndexed IngestStatus = "indexed"
	StatusUpdated IngestStatus = "updated"
	StatusSkipped IngestStatus = "skipped"
)

// IngestResult holds the outcome of ingesting one source.
type IngestResult struct {
	Status IngestStatus
	Stats  types.ParseStats
}

// Ingest parses text and stores its records under name, replacing any
// records previously stored for name. A source whose fingerprint matches
// the stored one is skipped.
func (s *Store) Ingest(ctx context.Context, name, text string) (IngestResult, error) {
	fingerprint := source.Fingerprint(text)

	var stored string
	err := s.db.QueryRowContext(ctx,
		`SELECT fingerprint FROM sources WHERE name = ?`, name,
	).Scan(&stored)
	switch {
	case err == nil && stored == fingerprint:
		return IngestResult{Status: StatusSkipped}, nil
	case err != nil && err != sql.ErrNoRows:
		return IngestResult{}, fmt.Errorf("looking up source %s: %w", name, err)
	}
	isUpdate := err == nil

	records, stats := pipeline.Parse(text)
	if err := s.ingestSource(ctx, name, fingerprint, records, stats); err != nil {
		return IngestResult{}, err
	}

	status := StatusIndexed
	if isUpdate {
		status = StatusUpdated
	}
	s.log.Debug("ingested source",
		zap.String("source", name),
		zap.String("status", string(status)),
		zap.Int("entries", stats.Entries),
		zap.Int("skipped", stats.Skipped),
	)
	return IngestResult{Status: status, Stats: stats}, nil
}

func (s *Store) ingestSource(ctx context.Context, name, fingerprint string, records []types.Record, stats types.ParseStats) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO sources (name, fingerprint, ingested_at, entries, skipped)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET
			fingerprint=excluded.fingerprint, ingested_at=excluded.ingested_at,
			entries=excluded.entries, skipped=excluded.skipped`,
		name, fingerprint, time.Now().UTC().Format(time.RFC3339), stats.Entries, stats.Skipped,
	)
	if err != nil {
		return fmt.Errorf("upserting source: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM records WHERE source = ?`, name); err != nil {
		return fmt.Errorf("deleting old records: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO records (source, position, key, type, title, author, year, abstract, fields)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, rec := range records {
		fieldsJSON, err := rec.Fields.MarshalJSON()
		if err != nil {
			return fmt.Errorf("encoding fields of %s: %w", rec.Key, err)
		}
		_, err = stmt.ExecContext(ctx,
			name, i, rec.Key, rec.EntryType,
			rec.Field("title"), rec.Field("author"), rec.Field("year"), rec.Field("abstract"),
			string(fieldsJSON),
		)
		if err != nil {
			return fmt.Errorf("inserting record %s: %w", rec.Key, err)
		}
	}

	return tx.Commit()
}

// SourceSummary describes one ingested source.
type SourceSummary struct {
	Name       string `json:"name" yaml:"name"`
	Entries    int    `json:"entries" yaml:"entries"`
	Skipped    int    `json:"skipped" yaml:"skipped"`
	IngestedAt string `json:"ingested_at" yaml:"ingested_at"`
}

// Sources lists ingested sources by name.
func (s *Store) Sources(ctx context.Context) ([]SourceSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, entries, skipped, ingested_at FROM sources ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing sources: %w", err)
	}
	defer rows.Close()

	var out []SourceSummary
	for rows.Next() {
		var ss SourceSummary
		if err := rows.Scan(&ss.Name, &ss.Entries, &ss.Skipped, &ss.IngestedAt); err != nil {
			return nil, fmt.Errorf("scanning source: %w", err)
		}
		out = append(out, ss)
	}
	return out, rows.Err()
}

// IngestAll loads and ingests each location, printing one status line per
// source to w in the form "indexed pubs.bib (12 entries)". It continues
// after individual failures and returns the number of failures.
func (s *Store) IngestAll(ctx context.Context, locations []string, load func(context.Context, string) (string, error), w io.Writer) int {
	failed := 0
	for _, loc := range locations {
		select {
		case <-ctx.Done():
			return failed + 1
		default:
		}

		text, err := load(ctx, loc)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", loc, err)
			failed++
			continue
		}
		res, err := s.Ingest(ctx, loc, text)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", loc, err)
			failed++
			continue
		}
		if res.Status == StatusSkipped {
			fmt.Fprintf(w, "skipped %s\n", loc)
			continue
		}
		fmt.Fprintf(w, "%s %s (%d entries", res.Status, loc, res.Stats.Entries)
		if res.Stats.Skipped > 0 {
			fmt.Fprintf(w, ", %d malformed", res.Stats.Skipped)
		}
		fmt.Fprintln(w, ")")
	}
	return failed
}
