// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/multierr"

	"github.com/pdiddy/formd/internal/export"
	"github.com/pdiddy/formd/pkg/types"
)

// Format selects an export encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// Formats lists the supported export formats.
var Formats = []Format{FormatYAML, FormatJSON, FormatCSV, FormatXLSX}

const exportLimit = 100000

// Export writes the stored filings matching opts to
// filingsDir/index/export.<format> and returns the path written.
func (s *Store) Export(ctx context.Context, format Format, opts QueryOptions) (path string, err error) {
	opts.MaxResults = exportLimit
	results, err := s.Query(ctx, opts)
	if err != nil {
		return "", fmt.Errorf("querying for export: %w", err)
	}

	path = filepath.Join(s.IndexDir(), "export."+string(format))

	switch format {
	case FormatXLSX:
		return path, export.WriteXLSXFile(path, filings(results))
	case FormatCSV:
		return path, export.WriteCSVFile(path, filings(results))
	case FormatYAML, FormatJSON:
	default:
		return "", fmt.Errorf("unsupported format %q: use yaml, json, csv or xlsx", format)
	}

	out, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", path, err)
	}
	defer func() { err = multierr.Append(err, out.Close()) }()

	if results == nil {
		results = []Result{}
	}
	if format == FormatJSON {
		return path, export.WriteJSON(out, results)
	}
	return path, export.WriteYAML(out, results)
}

func filings(results []Result) []*types.Filing {
	out := make([]*types.Filing, len(results))
	for i := range results {
		out[i] = &results[i].Filing
	}
	return out
}
