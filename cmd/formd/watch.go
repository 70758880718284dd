// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pdiddy/formd/internal/store"
	"github.com/pdiddy/formd/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Extract documents as they land in an inbox directory",
	Long: `Watch monitors a directory (default <filings-dir>/raw) and extracts
each supported document once it has stopped changing. Results are written
to <filings-dir>/extracted and indexed unless --no-store is given. Stop
with Ctrl-C.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().Duration("settle", watch.DefaultSettle, "quiet period before a changed file is extracted")
	watchCmd.Flags().Bool("no-store", false, "do not index records in the filing store")
	watchCmd.Flags().String("specs", "", "YAML file replacing the built-in field specs")
	watchCmd.Flags().String("deal-keyword", "", `keyword marking a tranche deal (default "Tranche")`)
	watchCmd.Flags().String("pdf-backend", "markitdown", "PDF converter: markitdown or none")

	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg := extractionConfig(cmd)
	dir := filepath.Join(cfg.FilingsDir, "raw")
	if len(args) == 1 {
		dir = args[0]
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}

	p, err := newPipeline(cfg)
	if err != nil {
		return err
	}

	var st *store.Store
	if noStore, _ := cmd.Flags().GetBool("no-store"); !noStore {
		st, err = store.Open(storeConfig(cmd))
		if err != nil {
			return err
		}
		defer st.Close()
	}

	handle := func(ctx context.Context, path string) error {
		f, err := processFile(ctx, p, st, cfg.FilingsDir, path)
		if err != nil {
			fmt.Fprintf(os.Stdout, "failed  %s: %v\n", filepath.Base(path), err)
			return err
		}
		fmt.Fprintf(os.Stdout, "extracted %s (%s, valid: %s)\n",
			filepath.Base(path), f.ID, f.Record.ValidLabel())
		return nil
	}

	settle, _ := cmd.Flags().GetDuration("settle")
	fmt.Fprintf(os.Stdout, "Watching %s (Ctrl-C to stop)\n", dir)
	return watch.New(dir, handle, logger, settle).Run(cmd.Context())
}
