// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/pdiddy/formd/internal/export"
	"github.com/pdiddy/formd/internal/store"
	"github.com/pdiddy/formd/pkg/types"
)

var filingsCmd = &cobra.Command{
	Use:   "filings",
	Short: "Query the filing store (list, show, export, ingest)",
	Long: `Filings manages the local SQLite store of extracted filings. Use
subcommands to search it, show one record, export rows, or ingest result
files from <filings-dir>/extracted.`,
}

// --- list subcommand ---

var filingsListCmd = &cobra.Command{
	Use:   "list [query]",
	Short: "List stored filings with full-text search and filters",
	Long: `List searches issuer, use of proceeds and summary with FTS5, and
filters by --cik, --deal-type and --valid. Without a query or filter it
lists every filing, ordered by issuer.`,
	RunE: runFilingsList,
}

func runFilingsList(cmd *cobra.Command, args []string) error {
	opts, err := queryOptsFromFlags(cmd, args)
	if err != nil {
		return err
	}

	st, err := store.Open(storeConfig(cmd))
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := cmd.Context()
	results, err := st.Query(ctx, opts)
	if err != nil {
		return err
	}
	total, err := st.Count(ctx)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		if results == nil {
			results = []store.Result{}
		}
		return export.WriteJSON(os.Stdout, results)
	}
	return formatListOutput(os.Stdout, results, total)
}

func formatListOutput(w io.Writer, results []store.Result, total int) error {
	if len(results) == 0 {
		fmt.Fprintln(w, "No filings found.")
		return nil
	}

	fmt.Fprintf(w, "%-12s  %-30s  %-10s  %-7s  %-5s  %s\n",
		"ID", "Issuer", "CIK", "Deal", "Valid", "Total Offering")
	fmt.Fprintln(w, strings.Repeat("-", 90))

	for _, r := range results {
		issuer := r.Record.Get(types.FieldIssuer).String()
		if len(issuer) > 30 {
			issuer = issuer[:27] + "..."
		}
		fmt.Fprintf(w, "%-12s  %-30s  %-10s  %-7s  %-5s  %s\n",
			r.ID, issuer,
			r.Record.Get(types.FieldCIK).String(),
			r.Record.DealType.Label(),
			r.Record.ValidLabel(),
			r.Record.Get(types.FieldTotalOffering).String())
	}

	p := message.NewPrinter(language.English)
	p.Fprintf(w, "\n%d of %d filings\n", len(results), total)
	return nil
}

// --- show subcommand ---

var filingsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one stored filing",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := store.Open(storeConfig(cmd))
		if err != nil {
			return err
		}
		defer st.Close()

		r, err := st.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		format, _ := cmd.Flags().GetString("format")
		switch format {
		case "json":
			return export.WriteJSON(os.Stdout, r)
		case "yaml":
			return export.WriteYAML(os.Stdout, r)
		case "table", "":
		default:
			return fmt.Errorf("unsupported format %q: use table, json, or yaml", format)
		}

		fmt.Fprintf(os.Stdout, "ID:      %s\nSource:  %s\n", r.ID, r.Source)
		if r.SourceURL != "" {
			fmt.Fprintf(os.Stdout, "URL:     %s\n", r.SourceURL)
		}
		fmt.Fprintln(os.Stdout)
		if err := export.WriteTable(os.Stdout, r.Record); err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "\n%s\n", r.Summary)
		return nil
	},
}

// --- export subcommand ---

var filingsExportCmd = &cobra.Command{
	Use:   "export [query]",
	Short: "Export stored filings to YAML, JSON, CSV, or XLSX",
	Long: `Export writes the stored filings (or a filtered subset) to
<filings-dir>/index/export.<format>. Supports the same filters as list.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := queryOptsFromFlags(cmd, args)
		if err != nil {
			return err
		}
		format, _ := cmd.Flags().GetString("format")

		st, err := store.Open(storeConfig(cmd))
		if err != nil {
			return err
		}
		defer st.Close()

		path, err := st.Export(cmd.Context(), store.Format(format), opts)
		if err != nil {
			return err
		}
		fmt.Printf("Exported to %s\n", path)
		return nil
	},
}

// --- ingest subcommand ---

var filingsIngestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Index result files from <filings-dir>/extracted",
	Long: `Ingest reads extraction result files and indexes new or changed
ones. Unchanged files are skipped on subsequent runs.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := store.Open(storeConfig(cmd))
		if err != nil {
			return err
		}
		defer st.Close()

		sum, err := st.Ingest(cmd.Context(), os.Stdout)
		if err != nil {
			return err
		}
		if sum.Failed > 0 {
			return fmt.Errorf("%d result file(s) failed indexing", sum.Failed)
		}
		return nil
	},
}

// --- shared helpers ---

func queryOptsFromFlags(cmd *cobra.Command, args []string) (store.QueryOptions, error) {
	queryText := strings.Join(args, " ")
	cik, _ := cmd.Flags().GetString("cik")
	dealType, _ := cmd.Flags().GetString("deal-type")
	valid, _ := cmd.Flags().GetString("valid")
	limit, _ := cmd.Flags().GetInt("limit")

	opts := store.QueryOptions{
		Query:      queryText,
		CIK:        cik,
		DealType:   types.DealType(strings.ToLower(dealType)),
		MaxResults: limit,
	}
	switch opts.DealType {
	case "", types.DealNew, types.DealTranche:
	default:
		return opts, fmt.Errorf("unsupported deal type %q: use new or tranche", dealType)
	}
	switch strings.ToLower(valid) {
	case "":
	case "yes", "true":
		v := true
		opts.Valid = &v
	case "no", "false":
		v := false
		opts.Valid = &v
	default:
		return opts, fmt.Errorf("unsupported --valid value %q: use yes or no", valid)
	}
	return opts, nil
}

func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().String("cik", "", "filter by CIK")
	cmd.Flags().String("deal-type", "", "filter by deal type: new or tranche")
	cmd.Flags().String("valid", "", "filter by validity: yes or no")
	cmd.Flags().Int("limit", 0, "maximum results (0 = use default)")
}

func init() {
	filingsCmd.PersistentFlags().Int("max-results", 20, "default maximum number of query results")

	addFilterFlags(filingsListCmd)
	filingsListCmd.Flags().Bool("json", false, "output results as JSON")

	filingsShowCmd.Flags().String("format", "table", "output format: table, json, or yaml")

	addFilterFlags(filingsExportCmd)
	filingsExportCmd.Flags().String("format", "yaml", "export format: yaml, json, csv, or xlsx")

	filingsCmd.AddCommand(filingsListCmd)
	filingsCmd.AddCommand(filingsShowCmd)
	filingsCmd.AddCommand(filingsExportCmd)
	filingsCmd.AddCommand(filingsIngestCmd)

	rootCmd.AddCommand(filingsCmd)
}
