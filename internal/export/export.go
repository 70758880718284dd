// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package export renders filing records for people and spreadsheets: the
// two-column (Field, Value) table, JSON and YAML documents, and flat rows
// written as CSV, XLSX or a PDF report. Nothing here feeds back into
// extraction.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"go.uber.org/multierr"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/formd/pkg/types"
)

// LabelSummary heads the generated-summary column of a flat row.
const LabelSummary = "Summary"

// Header returns the column names of a flat row: one per field, then
// validity, deal type and summary.
func Header() []string {
	h := make([]string, 0, len(types.Fields)+3)
	for _, name := range types.Fields {
		h = append(h, name.Label())
	}
	return append(h, types.LabelValid, types.LabelDealType, LabelSummary)
}

// Row flattens a filing into the columns named by Header.
func Row(f *types.Filing) []string {
	pairs := f.Record.Pairs()
	row := make([]string, 0, len(pairs)+1)
	for _, p := range pairs {
		row = append(row, p.Value)
	}
	return append(row, f.Summary)
}

// WriteTable prints rec as an aligned two-column table.
func WriteTable(w io.Writer, rec types.FilingRecord) error {
	pairs := rec.Pairs()
	width := utf8.RuneCountInString("Field")
	for _, p := range pairs {
		if n := utf8.RuneCountInString(p.Field); n > width {
			width = n
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%-*s  %s\n", width, "Field", "Value")
	fmt.Fprintln(&b, strings.Repeat("-", width+2+40))
	for _, p := range pairs {
		fmt.Fprintf(&b, "%-*s  %s\n", width, p.Field, p.Value)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// WriteJSON writes v as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteYAML writes v as YAML.
func WriteYAML(w io.Writer, v any) (err error) {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	defer func() { err = multierr.Append(err, enc.Close()) }()
	return enc.Encode(v)
}

// Targets names the files a run should produce. Empty paths are skipped.
type Targets struct {
	XLSX string
	CSV  string
	PDF  string
}

// IsEmpty reports whether no output file was requested.
func (t Targets) IsEmpty() bool {
	return t.XLSX == "" && t.CSV == "" && t.PDF == ""
}

// WriteFiles writes filings to every requested target. A failing target
// does not stop the others; all errors are combined.
func WriteFiles(t Targets, filings []*types.Filing) error {
	var err error
	if t.XLSX != "" {
		err = multierr.Append(err, WriteXLSXFile(t.XLSX, filings))
	}
	if t.CSV != "" {
		err = multierr.Append(err, WriteCSVFile(t.CSV, filings))
	}
	if t.PDF != "" {
		err = multierr.Append(err, WritePDFFile(t.PDF, filings))
	}
	return err
}
