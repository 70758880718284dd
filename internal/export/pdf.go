// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"

	"github.com/pdiddy/formd/pkg/types"
)

// buildReport renders one page per filing: the issuer as heading, the
// (Field, Value) table and the summary paragraph.
func buildReport(filings []*types.Filing) *gofpdf.Fpdf {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Form D filings", true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	for _, f := range filings {
		pdf.AddPage()

		pdf.SetFont("Helvetica", "B", 14)
		pdf.CellFormat(0, 8, tr(f.Record.Get(types.FieldIssuer).String()), "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		pdf.CellFormat(0, 5, tr(fmt.Sprintf("%s  (%s)", f.ID, f.Source)), "", 1, "L", false, 0, "")
		pdf.Ln(4)

		for _, p := range f.Record.Pairs() {
			pdf.SetFont("Helvetica", "B", 10)
			pdf.CellFormat(55, 6, tr(p.Field), "1", 0, "L", false, 0, "")
			pdf.SetFont("Helvetica", "", 10)
			pdf.MultiCell(0, 6, tr(p.Value), "1", "L", false)
		}

		pdf.Ln(6)
		pdf.SetFont("Helvetica", "I", 11)
		pdf.MultiCell(0, 5, tr(f.Summary), "", "L", false)
	}
	if len(filings) == 0 {
		pdf.AddPage()
		pdf.SetFont("Helvetica", "", 11)
		pdf.CellFormat(0, 8, "No filings.", "", 1, "L", false, 0, "")
	}
	return pdf
}

// WritePDF writes the filing report to w.
func WritePDF(w io.Writer, filings []*types.Filing) error {
	pdf := buildReport(filings)
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("rendering pdf: %w", err)
	}
	return nil
}

// WritePDFFile writes the filing report to path.
func WritePDFFile(path string, filings []*types.Filing) error {
	if err := buildReport(filings).OutputFileAndClose(path); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
