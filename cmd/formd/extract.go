// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/formd/internal/convert"
	"github.com/pdiddy/formd/internal/export"
	"github.com/pdiddy/formd/internal/extract"
	"github.com/pdiddy/formd/internal/store"
	"github.com/pdiddy/formd/pkg/types"
)

var extractCmd = &cobra.Command{
	Use:   "extract [files|globs...]",
	Short: "Extract Form D fields from filing documents",
	Long: `Extract converts each document to normalized lines, resolves every
Form D field by its keyword anchor and prints the (Field, Value) table
followed by a one-sentence summary.

Arguments may be paths or doublestar globs ("filings/**/*.docx"). With
--batch, every supported document under <filings-dir>/raw is processed
and unchanged documents are skipped. Records are indexed in the filing
store unless --no-store is given.`,
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().String("format", "table", "output format: table, json, or yaml")
	extractCmd.Flags().String("xlsx", "", "also write records to this .xlsx workbook")
	extractCmd.Flags().String("csv", "", "also write records to this CSV file")
	extractCmd.Flags().String("pdf", "", "also write a PDF report to this file")
	extractCmd.Flags().Bool("no-store", false, "do not index records in the filing store")
	extractCmd.Flags().Bool("batch", false, "process all documents in <filings-dir>/raw")
	extractCmd.Flags().Bool("force", false, "with --batch, re-extract unchanged documents")
	extractCmd.Flags().String("specs", "", "YAML file replacing the built-in field specs")
	extractCmd.Flags().String("deal-keyword", "", `keyword marking a tranche deal (default "Tranche")`)
	extractCmd.Flags().String("pdf-backend", "markitdown", "PDF converter: markitdown or none")

	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg := extractionConfig(cmd)
	p, err := newPipeline(cfg)
	if err != nil {
		return err
	}
	noStore, _ := cmd.Flags().GetBool("no-store")
	batch, _ := cmd.Flags().GetBool("batch")

	if batch {
		return runExtractBatch(cmd, p, cfg, noStore)
	}
	if len(args) == 0 {
		return fmt.Errorf("provide one or more documents, or use --batch")
	}

	paths, err := convert.Expand(args)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no supported documents matched %v", args)
	}

	var st *store.Store
	if !noStore {
		st, err = store.Open(storeConfig(cmd))
		if err != nil {
			return err
		}
		defer st.Close()
	}

	ctx := cmd.Context()
	var (
		filings []*types.Filing
		failed  int
	)
	for _, path := range paths {
		f, err := processFile(ctx, p, st, cfg.FilingsDir, path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed  %s: %v\n", path, err)
			logger.Warn("extraction failed", zap.String("source", path), zap.Error(err))
			failed++
			continue
		}
		filings = append(filings, f)
	}

	format, _ := cmd.Flags().GetString("format")
	if err := printFilings(os.Stdout, format, filings); err != nil {
		return err
	}
	if err := export.WriteFiles(exportTargets(cmd), filings); err != nil {
		return fmt.Errorf("writing outputs: %w", err)
	}
	if failed > 0 {
		return fmt.Errorf("%d document(s) failed extraction", failed)
	}
	return nil
}

func runExtractBatch(cmd *cobra.Command, p *extract.Pipeline, cfg types.ExtractionConfig, noStore bool) error {
	ctx := cmd.Context()
	sum, err := p.ExtractAll(ctx, cfg, os.Stdout)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "\nBatch summary: %d extracted, %d skipped, %d failed (total: %d)\n",
		sum.Extracted, sum.Skipped, sum.Failed, sum.Total())

	if !noStore {
		st, err := store.Open(storeConfig(cmd))
		if err != nil {
			return err
		}
		defer st.Close()
		if _, err := st.Ingest(ctx, os.Stdout); err != nil {
			return err
		}
	}

	targets := exportTargets(cmd)
	if !targets.IsEmpty() {
		var filings []*types.Filing
		paths, err := filepath.Glob(filepath.Join(cfg.FilingsDir, "extracted", "*.yaml"))
		if err != nil {
			return err
		}
		for _, path := range paths {
			f, err := extract.ReadResult(path)
			if err != nil {
				return err
			}
			filings = append(filings, f)
		}
		if err := export.WriteFiles(targets, filings); err != nil {
			return fmt.Errorf("writing outputs: %w", err)
		}
	}

	if sum.HasFailures() {
		return fmt.Errorf("%d document(s) failed extraction", sum.Failed)
	}
	return nil
}

func exportTargets(cmd *cobra.Command) export.Targets {
	xlsx, _ := cmd.Flags().GetString("xlsx")
	csv, _ := cmd.Flags().GetString("csv")
	pdf, _ := cmd.Flags().GetString("pdf")
	return export.Targets{XLSX: xlsx, CSV: csv, PDF: pdf}
}

// printFilings renders filings as aligned tables with summaries, or as a
// JSON/YAML document (a single object when there is one filing).
func printFilings(w io.Writer, format string, filings []*types.Filing) error {
	switch format {
	case "table", "":
		for i, f := range filings {
			if i > 0 {
				fmt.Fprintln(w)
			}
			fmt.Fprintf(w, "%s (%s)\n\n", f.Source, f.ID)
			if err := export.WriteTable(w, f.Record); err != nil {
				return err
			}
			fmt.Fprintf(w, "\n%s\n", f.Summary)
		}
		return nil
	case "json", "yaml":
		var v any = filings
		if len(filings) == 1 {
			v = filings[0]
		}
		if format == "json" {
			return export.WriteJSON(w, v)
		}
		return export.WriteYAML(w, v)
	default:
		return fmt.Errorf("unsupported format %q: use table, json, or yaml", format)
	}
}
