// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search finds Form D filings through EDGAR full-text search and
// returns deduplicated hits whose accession numbers feed the acquire stage.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/pdiddy/formd/pkg/types"
)

// Query holds the search parameters.
type Query struct {
	// FreeText is matched against the filing text ("biotech seed round").
	FreeText string

	// Entity restricts hits to filers whose name or CIK matches.
	Entity string

	DateFrom time.Time
	DateTo   time.Time
}

// IsEmpty reports whether the query contains no searchable terms.
func (q Query) IsEmpty() bool {
	return strings.TrimSpace(q.FreeText) == "" && strings.TrimSpace(q.Entity) == ""
}

// SearchOutput holds the hits and dedup statistics.
type SearchOutput struct {
	Hits []types.FilingHit

	// Total is the number of matching documents EDGAR reported.
	Total int

	// DupsRemoved counts document hits folded into an earlier hit of the
	// same filing.
	DupsRemoved int
}

// Search pages through EDGAR full-text search until cfg.MaxResults distinct
// filings are collected or the results run out. Hits are ordered newest
// first, then by accession number.
func Search(ctx context.Context, client *http.Client, query Query, cfg types.SearchConfig) (SearchOutput, error) {
	if query.IsEmpty() {
		return SearchOutput{}, fmt.Errorf("query is empty: provide search text or --entity")
	}
	if !query.DateFrom.IsZero() && !query.DateTo.IsZero() && query.DateTo.Before(query.DateFrom) {
		return SearchOutput{}, fmt.Errorf("date range is inverted: %s is after %s",
			query.DateFrom.Format(dateFmt), query.DateTo.Format(dateFmt))
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	var (
		out  SearchOutput
		seen = make(map[string]bool)
	)
	for page := 0; page < maxPages; page++ {
		resp, err := fetchPage(ctx, client, query, cfg, page*pageSize)
		if err != nil {
			return out, err
		}
		out.Total = resp.Hits.Total.Value

		for _, h := range resp.Hits.Hits {
			hit, ok := h.toFilingHit()
			if !ok {
				continue
			}
			if seen[hit.Accession] {
				out.DupsRemoved++
				continue
			}
			seen[hit.Accession] = true
			out.Hits = append(out.Hits, hit)
		}

		fetched := (page + 1) * pageSize
		if len(out.Hits) >= maxResults || len(resp.Hits.Hits) < pageSize || fetched >= out.Total {
			break
		}
	}

	sort.SliceStable(out.Hits, func(i, j int) bool {
		a, b := out.Hits[i], out.Hits[j]
		if !a.FileDate.Equal(b.FileDate) {
			return a.FileDate.After(b.FileDate)
		}
		return a.Accession < b.Accession
	})
	if len(out.Hits) > maxResults {
		out.Hits = out.Hits[:maxResults]
	}
	return out, nil
}

// Accessions returns the accession numbers of hits in order.
func (o SearchOutput) Accessions() []string {
	ids := make([]string, len(o.Hits))
	for i, h := range o.Hits {
		ids[i] = h.Accession
	}
	return ids
}

// FormatTable writes hits as a human-readable table to w.
func FormatTable(out SearchOutput, w io.Writer) {
	if len(out.Hits) == 0 {
		fmt.Fprintln(w, "No filings found.")
		return
	}

	fmt.Fprintf(w, "%-20s  %-10s  %-4s  %-10s  %-40s  %s\n",
		"Accession", "Filed", "Form", "CIK", "Issuer", "Location")
	fmt.Fprintln(w, strings.Repeat("-", 110))

	for _, h := range out.Hits {
		filed := ""
		if !h.FileDate.IsZero() {
			filed = h.FileDate.Format(dateFmt)
		}
		fmt.Fprintf(w, "%-20s  %-10s  %-4s  %-10s  %-40s  %s\n",
			h.Accession, filed, h.Form, h.CIK, truncate(h.Issuer, 40), h.Location)
	}

	fmt.Fprintf(w, "\n%d filings", len(out.Hits))
	if out.Total > 0 {
		fmt.Fprintf(w, " (%d matching documents)", out.Total)
	}
	fmt.Fprintln(w)
}

// FormatJSON writes hits as indented JSON to w.
func FormatJSON(out SearchOutput, w io.Writer) error {
	hits := out.Hits
	if hits == nil {
		hits = []types.FilingHit{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(hits)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
