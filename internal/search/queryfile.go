// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/formd/pkg/types"
)

// QueryFile is the on-disk representation of a search and its hits. A
// saved file can be handed to acquire without querying EDGAR again.
type QueryFile struct {
	Query   QueryParams       `yaml:"query"`
	Results []types.FilingHit `yaml:"results"`
	Summary QuerySummary      `yaml:"summary"`
}

// QueryParams stores the query parameters in a serializable form.
type QueryParams struct {
	FreeText string `yaml:"free_text,omitempty"`
	Entity   string `yaml:"entity,omitempty"`
	DateFrom string `yaml:"date_from,omitempty"`
	DateTo   string `yaml:"date_to,omitempty"`
}

// QuerySummary stores result statistics and a timestamp.
type QuerySummary struct {
	Total             int       `yaml:"total"`
	MatchingDocuments int       `yaml:"matching_documents"`
	DuplicatesRemoved int       `yaml:"duplicates_removed"`
	Timestamp         time.Time `yaml:"timestamp"`
}

// WriteQueryFile saves query parameters and hits to a YAML file.
func WriteQueryFile(path string, query Query, out SearchOutput) error {
	qf := QueryFile{
		Query: QueryParams{
			FreeText: query.FreeText,
			Entity:   query.Entity,
		},
		Results: out.Hits,
		Summary: QuerySummary{
			Total:             len(out.Hits),
			MatchingDocuments: out.Total,
			DuplicatesRemoved: out.DupsRemoved,
			Timestamp:         time.Now().UTC(),
		},
	}
	if !query.DateFrom.IsZero() {
		qf.Query.DateFrom = query.DateFrom.Format(dateFmt)
	}
	if !query.DateTo.IsZero() {
		qf.Query.DateTo = query.DateTo.Format(dateFmt)
	}

	data, err := yaml.Marshal(&qf)
	if err != nil {
		return fmt.Errorf("marshaling query file: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadQueryFile loads a previously saved query file from disk.
func ReadQueryFile(path string) (*QueryFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading query file: %w", err)
	}
	var qf QueryFile
	if err := yaml.Unmarshal(data, &qf); err != nil {
		return nil, fmt.Errorf("parsing query file: %w", err)
	}
	return &qf, nil
}

// Accessions returns the accession numbers of the saved hits.
func (qf *QueryFile) Accessions() []string {
	return SearchOutput{Hits: qf.Results}.Accessions()
}

// ToQuery converts stored QueryParams back into a Query.
func (p QueryParams) ToQuery() (Query, error) {
	q := Query{FreeText: p.FreeText, Entity: p.Entity}
	var err error
	if q.DateFrom, err = ParseDate(p.DateFrom); err != nil {
		return q, fmt.Errorf("invalid date_from: %w", err)
	}
	if q.DateTo, err = ParseDate(p.DateTo); err != nil {
		return q, fmt.Errorf("invalid date_to: %w", err)
	}
	return q, nil
}

// ParseDate parses a YYYY-MM-DD date. Empty input gives the zero time.
func ParseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(dateFmt, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%q is not YYYY-MM-DD", s)
	}
	return t, nil
}
