// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/pdiddy/formd/pkg/types"
)

// ErrNotFound is returned by Get for an unknown filing ID.
var ErrNotFound = errors.New("filing not found")

// QueryOptions holds parameters for filing queries.
type QueryOptions struct {
	// Query is the FTS5 full-text search string over issuer, proceeds
	// and summary.
	Query string

	// CIK filters by exact identifier.
	CIK string

	// DealType filters by deal classification.
	DealType types.DealType

	// Valid, when set, filters by the validity flag.
	Valid *bool

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// IsEmpty reports whether the query has no search terms or filters.
func (q QueryOptions) IsEmpty() bool {
	return q.Query == "" && q.CIK == "" && q.DealType == "" && q.Valid == nil
}

// Result is a stored filing plus where it was acquired from.
type Result struct {
	types.Filing `yaml:",inline"`
	SourceURL    string `json:"source_url,omitempty" yaml:"source_url,omitempty"`
}

const selectColumns = `f.id, f.source, f.source_url, f.valid, f.deal_type, f.summary, f.fields`

// Query searches the store with optional full-text search and filters.
// Full-text results are ranked by relevance; filter-only results are
// ordered by issuer, then ID.
func (s *Store) Query(ctx context.Context, opts QueryOptions) ([]Result, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var (
		qb     strings.Builder
		args   []any
		useFTS = opts.Query != ""
	)

	if useFTS {
		qb.WriteString(`SELECT ` + selectColumns + `
			FROM filings_fts
			JOIN filings f ON f.rowid = filings_fts.rowid
			WHERE filings_fts MATCH ?`)
		args = append(args, opts.Query)
	} else {
		qb.WriteString(`SELECT ` + selectColumns + ` FROM filings f WHERE 1=1`)
	}

	if opts.CIK != "" {
		qb.WriteString(` AND f.cik = ?`)
		args = append(args, opts.CIK)
	}
	if opts.DealType != "" {
		qb.WriteString(` AND f.deal_type = ?`)
		args = append(args, string(opts.DealType))
	}
	if opts.Valid != nil {
		qb.WriteString(` AND f.valid = ?`)
		args = append(args, *opts.Valid)
	}

	if useFTS {
		qb.WriteString(` ORDER BY filings_fts.rank`)
	} else {
		qb.WriteString(` ORDER BY f.issuer IS NULL, f.issuer, f.id`)
	}
	qb.WriteString(` LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying filings: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		r, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// Get returns the filing with the given ID.
func (s *Store) Get(ctx context.Context, id string) (*Result, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM filings f WHERE f.id = ?`, id)
	r, err := scanResult(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// Count returns the number of stored filings.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM filings`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting filings: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanResult(sc scanner) (Result, error) {
	var (
		r          Result
		srcURL     sql.NullString
		dealType   string
		fieldsJSON string
	)
	if err := sc.Scan(&r.ID, &r.Source, &srcURL, &r.Record.Valid, &dealType, &r.Summary, &fieldsJSON); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return r, err
		}
		return r, fmt.Errorf("scanning row: %w", err)
	}
	r.SourceURL = srcURL.String
	r.Record.DealType = types.DealType(dealType)
	if err := json.Unmarshal([]byte(fieldsJSON), &r.Record.Fields); err != nil {
		return r, fmt.Errorf("decoding fields of %s: %w", r.ID, err)
	}
	return r, nil
}
