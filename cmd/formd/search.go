// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/formd/internal/acquire"
	"github.com/pdiddy/formd/internal/search"
	"github.com/pdiddy/formd/internal/secrets"
	"github.com/pdiddy/formd/pkg/types"
)

var searchCmd = &cobra.Command{
	Use:   "search [text]",
	Short: "Find Form D filings with EDGAR full-text search",
	Long: `Search queries EDGAR full-text search for Form D filings matching the
given text and/or filer (--entity), optionally within a filing date range.
Hits are deduplicated per filing and listed newest first. Their accession
numbers can be passed to acquire directly, or saved with --save and read
back with "formd acquire --from".`,
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().String("entity", "", "filer name or CIK")
	searchCmd.Flags().String("from", "", "filing date range start (YYYY-MM-DD)")
	searchCmd.Flags().String("to", "", "filing date range end (YYYY-MM-DD)")
	searchCmd.Flags().Int("max-results", 20, "maximum number of filings to return")
	searchCmd.Flags().Bool("amendments", false, "include D/A amendments")
	searchCmd.Flags().Bool("json", false, "output results as JSON")
	searchCmd.Flags().String("save", "", "write the query and hits to this YAML file")
	searchCmd.Flags().Duration("timeout", defaultTimeout, "HTTP request timeout")
	searchCmd.Flags().String("user-agent", "", "User-Agent header sent to EDGAR")

	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	entity, _ := cmd.Flags().GetString("entity")
	fromStr, _ := cmd.Flags().GetString("from")
	toStr, _ := cmd.Flags().GetString("to")

	q := search.Query{FreeText: strings.Join(args, " "), Entity: entity}
	var err error
	if q.DateFrom, err = search.ParseDate(fromStr); err != nil {
		return fmt.Errorf("--from: %w", err)
	}
	if q.DateTo, err = search.ParseDate(toStr); err != nil {
		return fmt.Errorf("--to: %w", err)
	}

	cfg := types.SearchConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout: settingDuration(cmd, "timeout", "search.timeout"),
			UserAgent: secrets.Lookup(loadedSecrets, secrets.KeyEdgarUserAgent, searchUserAgent(cmd)),
		},
		MaxResults: settingInt(cmd, "max-results", "search.max_results"),
		Amendments: settingBool(cmd, "amendments", "search.amendments"),
	}

	client := acquire.NewClient(types.AcquisitionConfig{HTTPConfig: cfg.HTTPConfig})
	out, err := search.Search(cmd.Context(), client, q, cfg)
	if err != nil {
		return err
	}

	if savePath, _ := cmd.Flags().GetString("save"); savePath != "" {
		if err := search.WriteQueryFile(savePath, q, out); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Saved %d filings to %s\n", len(out.Hits), savePath)
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		return search.FormatJSON(out, os.Stdout)
	}
	search.FormatTable(out, os.Stdout)
	return nil
}

// searchUserAgent falls back to acquire.user_agent, since both stages talk
// to EDGAR under the same declared identity.
func searchUserAgent(cmd *cobra.Command) string {
	if ua := settingString(cmd, "user-agent", "search.user_agent"); ua != "" {
		return ua
	}
	return viper.GetString("acquire.user_agent")
}
