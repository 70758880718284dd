// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"fmt"
	"io"
	"os"

	"github.com/xuri/excelize/v2"
	"go.uber.org/multierr"

	"github.com/pdiddy/formd/pkg/types"
)

const sheetName = "Filings"

// buildWorkbook lays out the header and one row per filing on a single
// sheet with a bold header row.
func buildWorkbook(filings []*types.Filing) (*excelize.File, error) {
	wb := excelize.NewFile()
	if err := wb.SetSheetName(wb.GetSheetName(0), sheetName); err != nil {
		return wb, fmt.Errorf("naming sheet: %w", err)
	}

	header := Header()
	if err := setRow(wb, 1, header); err != nil {
		return wb, err
	}
	for i, f := range filings {
		if err := setRow(wb, i+2, Row(f)); err != nil {
			return wb, err
		}
	}

	bold, err := wb.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return wb, fmt.Errorf("creating header style: %w", err)
	}
	if err := wb.SetRowStyle(sheetName, 1, 1, bold); err != nil {
		return wb, fmt.Errorf("styling header: %w", err)
	}

	last, err := excelize.ColumnNumberToName(len(header))
	if err != nil {
		return wb, err
	}
	if err := wb.SetColWidth(sheetName, "A", last, 22); err != nil {
		return wb, fmt.Errorf("setting column width: %w", err)
	}
	if err := wb.SetColWidth(sheetName, last, last, 80); err != nil {
		return wb, fmt.Errorf("setting summary width: %w", err)
	}
	return wb, nil
}

func setRow(wb *excelize.File, row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	cells := make([]any, len(values))
	for i, v := range values {
		cells[i] = v
	}
	if err := wb.SetSheetRow(sheetName, cell, &cells); err != nil {
		return fmt.Errorf("writing row %d: %w", row, err)
	}
	return nil
}

// WriteXLSX writes filings as an Excel workbook to w.
func WriteXLSX(w io.Writer, filings []*types.Filing) (err error) {
	wb, err := buildWorkbook(filings)
	defer func() { err = multierr.Append(err, wb.Close()) }()
	if err != nil {
		return err
	}
	return wb.Write(w)
}

// WriteXLSXFile writes filings as an Excel workbook at path.
func WriteXLSXFile(path string, filings []*types.Filing) (err error) {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer func() { err = multierr.Append(err, out.Close()) }()
	if err := WriteXLSX(out, filings); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
