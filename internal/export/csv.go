// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"go.uber.org/multierr"

	"github.com/pdiddy/formd/pkg/types"
)

// WriteCSV writes a header and one row per filing.
func WriteCSV(w io.Writer, filings []*types.Filing) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header()); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	for _, f := range filings {
		if err := cw.Write(Row(f)); err != nil {
			return fmt.Errorf("writing csv row %s: %w", f.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCSVFile writes filings to path as CSV.
func WriteCSVFile(path string, filings []*types.Filing) (err error) {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer func() { err = multierr.Append(err, out.Close()) }()
	return WriteCSV(out, filings)
}
