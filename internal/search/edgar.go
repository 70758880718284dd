// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/formd/internal/httputil"
	"github.com/pdiddy/formd/pkg/types"
)

// edgarSearchBase is the EDGAR full-text search endpoint. Declared as a var
// so tests can substitute an httptest server.
var edgarSearchBase = "https://efts.sec.gov/LATEST/search-index"

const (
	// pageSize is the fixed number of hits EDGAR returns per page.
	pageSize = 100
	maxPages = 10
	dateFmt  = "2006-01-02"
)

type edgarResponse struct {
	Hits struct {
		Total struct {
			Value int `json:"value"`
		} `json:"total"`
		Hits []edgarHit `json:"hits"`
	} `json:"hits"`
}

type edgarHit struct {
	ID     string `json:"_id"`
	Source struct {
		ADSH         string   `json:"adsh"`
		CIKs         []string `json:"ciks"`
		DisplayNames []string `json:"display_names"`
		FileDate     string   `json:"file_date"`
		Form         string   `json:"form"`
		BizLocations []string `json:"biz_locations"`
	} `json:"_source"`
}

// cikSuffix matches the "(CIK 0001234567)" EDGAR appends to display names.
var cikSuffix = regexp.MustCompile(`\s*\(CIK \d+\)\s*$`)

func (h edgarHit) toFilingHit() (types.FilingHit, bool) {
	src := h.Source
	acc := src.ADSH
	if acc == "" {
		// _id is "<accession>:<document>".
		acc, _, _ = strings.Cut(h.ID, ":")
	}
	if acc == "" {
		return types.FilingHit{}, false
	}

	hit := types.FilingHit{Accession: acc, Form: src.Form}
	if len(src.CIKs) > 0 {
		hit.CIK = src.CIKs[0]
	}
	if len(src.DisplayNames) > 0 {
		hit.Issuer = cikSuffix.ReplaceAllString(src.DisplayNames[0], "")
	}
	if len(src.BizLocations) > 0 {
		hit.Location = src.BizLocations[0]
	}
	if t, err := time.Parse(dateFmt, src.FileDate); err == nil {
		hit.FileDate = t
	}
	return hit, true
}

func searchParams(query Query, cfg types.SearchConfig, from int) url.Values {
	forms := "D"
	if cfg.Amendments {
		forms = "D,D/A"
	}
	params := url.Values{"forms": {forms}}
	if q := strings.TrimSpace(query.FreeText); q != "" {
		params.Set("q", q)
	}
	if e := strings.TrimSpace(query.Entity); e != "" {
		params.Set("entityName", e)
	}
	if !query.DateFrom.IsZero() || !query.DateTo.IsZero() {
		params.Set("dateRange", "custom")
		if !query.DateFrom.IsZero() {
			params.Set("startdt", query.DateFrom.Format(dateFmt))
		}
		if !query.DateTo.IsZero() {
			params.Set("enddt", query.DateTo.Format(dateFmt))
		}
	}
	if from > 0 {
		params.Set("from", strconv.Itoa(from))
	}
	return params
}

func fetchPage(ctx context.Context, client *http.Client, query Query, cfg types.SearchConfig, from int) (*edgarResponse, error) {
	reqURL := edgarSearchBase + "?" + searchParams(query, cfg, from).Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if cfg.UserAgent != "" {
		req.Header.Set("User-Agent", cfg.UserAgent)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := httputil.DoWithRetry(ctx, client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("EDGAR search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("EDGAR search returned HTTP %d", resp.StatusCode)
	}

	var er edgarResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		return nil, fmt.Errorf("parsing EDGAR search response: %w", err)
	}
	return &er, nil
}
