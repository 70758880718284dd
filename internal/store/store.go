// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store indexes extracted filings in a SQLite database with FTS5
// search over issuer, proceeds and summary text.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/formd/pkg/types"
)

const (
	extractedDir = "extracted"
	indexDir     = "index"
	metadataDir  = "metadata"
	dbFile       = "filings.db"
)

// Store manages the filings SQLite database.
type Store struct {
	db         *sql.DB
	filingsDir string
	maxResults int
}

// Open opens or creates the database at filingsDir/index/filings.db and
// creates the schema if it does not exist.
func Open(cfg types.StoreConfig) (*Store, error) {
	dbDir := filepath.Join(cfg.FilingsDir, indexDir)
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(dbDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{db: db, filingsDir: cfg.FilingsDir, maxResults: maxResults}
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

// IndexDir returns the directory holding the database and exports.
func (s *Store) IndexDir() string {
	return filepath.Join(s.filingsDir, indexDir)
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS filings (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			source TEXT NOT NULL,
			source_url TEXT,
			cik TEXT,
			issuer TEXT,
			year_of_incorporation TEXT,
			entity_type TEXT,
			total_offering TEXT,
			amount_sold TEXT,
			remaining TEXT,
			use_of_proceeds TEXT,
			valid INTEGER NOT NULL,
			deal_type TEXT NOT NULL,
			summary TEXT NOT NULL,
			fields TEXT NOT NULL,
			indexed_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_filings_cik ON filings(cik)`,
		`CREATE INDEX IF NOT EXISTS idx_filings_deal_type ON filings(deal_type)`,
		`CREATE TABLE IF NOT EXISTS indexing_status (
			result_file TEXT PRIMARY KEY,
			file_mod_time TEXT
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='filings_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}
	if ftsExists > 0 {
		return nil
	}

	ftsStatements := []string{
		`CREATE VIRTUAL TABLE filings_fts USING fts5(
			issuer, use_of_proceeds, summary, content=filings, content_rowid=rowid)`,
		`CREATE TRIGGER filings_ai AFTER INSERT ON filings BEGIN
			INSERT INTO filings_fts(rowid, issuer, use_of_proceeds, summary)
			VALUES (new.rowid, new.issuer, new.use_of_proceeds, new.summary);
		END`,
		`CREATE TRIGGER filings_ad AFTER DELETE ON filings BEGIN
			INSERT INTO filings_fts(filings_fts, rowid, issuer, use_of_proceeds, summary)
			VALUES ('delete', old.rowid, old.issuer, old.use_of_proceeds, old.summary);
		END`,
		`CREATE TRIGGER filings_au AFTER UPDATE ON filings BEGIN
			INSERT INTO filings_fts(filings_fts, rowid, issuer, use_of_proceeds, summary)
			VALUES ('delete', old.rowid, old.issuer, old.use_of_proceeds, old.summary);
			INSERT INTO filings_fts(rowid, issuer, use_of_proceeds, summary)
			VALUES (new.rowid, new.issuer, new.use_of_proceeds, new.summary);
		END`,
	}
	for _, stmt := range ftsStatements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("creating FTS infrastructure: %w", err)
		}
	}
	return nil
}

// Save upserts one filing. sourceURL may be empty.
func (s *Store) Save(ctx context.Context, f *types.Filing, sourceURL string) error {
	return s.save(ctx, s.db, f, sourceURL)
}

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Store) save(ctx context.Context, db execer, f *types.Filing, sourceURL string) error {
	fieldsJSON, err := json.Marshal(f.Record.Fields)
	if err != nil {
		return fmt.Errorf("marshaling fields: %w", err)
	}

	rec := f.Record
	_, err = db.ExecContext(ctx,
		`INSERT INTO filings (id, source, source_url, cik, issuer, year_of_incorporation,
			entity_type, total_offering, amount_sold, remaining, use_of_proceeds,
			valid, deal_type, summary, fields, indexed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			source=excluded.source, source_url=excluded.source_url, cik=excluded.cik,
			issuer=excluded.issuer, year_of_incorporation=excluded.year_of_incorporation,
			entity_type=excluded.entity_type, total_offering=excluded.total_offering,
			amount_sold=excluded.amount_sold, remaining=excluded.remaining,
			use_of_proceeds=excluded.use_of_proceeds, valid=excluded.valid,
			deal_type=excluded.deal_type, summary=excluded.summary,
			fields=excluded.fields, indexed_at=excluded.indexed_at`,
		f.ID, f.Source, nullable(sourceURL),
		column(rec, types.FieldCIK),
		column(rec, types.FieldIssuer),
		column(rec, types.FieldYearOfIncorporation),
		column(rec, types.FieldEntityType),
		column(rec, types.FieldTotalOffering),
		column(rec, types.FieldAmountSold),
		column(rec, types.FieldRemaining),
		column(rec, types.FieldUseOfProceeds),
		rec.Valid, string(rec.DealType), f.Summary, string(fieldsJSON),
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("saving filing %s: %w", f.ID, err)
	}
	return nil
}

// column stores not-found values as NULL so filters never match the
// sentinel text.
func column(rec types.FilingRecord, name types.FieldName) sql.NullString {
	v := rec.Get(name)
	return sql.NullString{String: v.Text, Valid: v.Found}
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// IngestSummary holds counts from an indexing run.
type IngestSummary struct {
	Indexed int
	Updated int
	Skipped int
	Failed  int
}

// Total returns the number of result files processed.
func (s IngestSummary) Total() int {
	return s.Indexed + s.Updated + s.Skipped + s.Failed
}

// Ingest reads extraction results from filingsDir/extracted/ and indexes
// new and changed ones. Files whose modification time matches the last
// indexing run are skipped. Acquisition metadata, when present, supplies
// the source URL. On changes it refreshes index/export.yaml.
func (s *Store) Ingest(ctx context.Context, w io.Writer) (IngestSummary, error) {
	extractDir := filepath.Join(s.filingsDir, extractedDir)
	metaDir := filepath.Join(s.filingsDir, metadataDir)

	entries, err := os.ReadDir(extractDir)
	if err != nil {
		return IngestSummary{}, fmt.Errorf("reading extraction directory %s: %w", extractDir, err)
	}

	var summary IngestSummary
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		name := entry.Name()
		stem := strings.TrimSuffix(name, ".yaml")

		info, err := entry.Info()
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", stem, err)
			summary.Failed++
			continue
		}
		modTime := info.ModTime().UTC().Format(time.RFC3339Nano)

		var storedModTime string
		err = s.db.QueryRowContext(ctx,
			`SELECT file_mod_time FROM indexing_status WHERE result_file = ?`, name,
		).Scan(&storedModTime)
		if err == nil && storedModTime == modTime {
			fmt.Fprintf(w, "skipped %s\n", stem)
			summary.Skipped++
			continue
		}
		isUpdate := err == nil

		data, err := os.ReadFile(filepath.Join(extractDir, name))
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", stem, err)
			summary.Failed++
			continue
		}
		var f types.Filing
		if err := yaml.Unmarshal(data, &f); err != nil {
			fmt.Fprintf(w, "failed  %s: parse error: %v\n", stem, err)
			summary.Failed++
			continue
		}
		if f.ID == "" {
			fmt.Fprintf(w, "failed  %s: result has no id\n", stem)
			summary.Failed++
			continue
		}

		if err := s.ingestFiling(ctx, name, &f, sourceURL(metaDir, strings.TrimSuffix(stem, filepath.Ext(stem))), modTime); err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", stem, err)
			summary.Failed++
			continue
		}

		if isUpdate {
			fmt.Fprintf(w, "updated %s (%s)\n", stem, f.ID)
			summary.Updated++
		} else {
			fmt.Fprintf(w, "indexing %s (%s)\n", stem, f.ID)
			summary.Indexed++
		}
	}

	fmt.Fprintf(w, "\nindexed: %d, updated: %d, skipped: %d, failed: %d\n",
		summary.Indexed, summary.Updated, summary.Skipped, summary.Failed)

	if summary.Indexed > 0 || summary.Updated > 0 {
		if _, err := s.Export(ctx, FormatYAML, QueryOptions{}); err != nil {
			fmt.Fprintf(w, "warning: export.yaml write failed: %v\n", err)
		}
	}
	return summary, nil
}

func (s *Store) ingestFiling(ctx context.Context, resultFile string, f *types.Filing, srcURL, modTime string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.save(ctx, tx, f, srcURL); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO indexing_status (result_file, file_mod_time) VALUES (?, ?)
		 ON CONFLICT(result_file) DO UPDATE SET file_mod_time=excluded.file_mod_time`,
		resultFile, modTime,
	)
	if err != nil {
		return fmt.Errorf("updating indexing status: %w", err)
	}
	return tx.Commit()
}

// sourceURL reads the acquisition metadata for stem, the raw file name
// without its extension. Returns "" if the
// file does not exist or cannot be parsed.
func sourceURL(metaDir, stem string) string {
	data, err := os.ReadFile(filepath.Join(metaDir, stem+".yaml"))
	if err != nil {
		return ""
	}
	var a types.Acquisition
	if err := yaml.Unmarshal(data, &a); err != nil {
		return ""
	}
	return a.SourceURL
}
