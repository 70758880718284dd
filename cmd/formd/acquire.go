// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/formd/internal/acquire"
	"github.com/pdiddy/formd/internal/search"
	"github.com/pdiddy/formd/internal/secrets"
	"github.com/pdiddy/formd/internal/store"
	"github.com/pdiddy/formd/pkg/types"
)

const (
	defaultTimeout = 60 * time.Second
	defaultDelay   = 1 * time.Second
)

var acquireCmd = &cobra.Command{
	Use:   "acquire [urls|accessions...]",
	Short: "Download Form D filing documents",
	Long: `Acquire downloads filing documents into <filings-dir>/raw and records
where each came from in <filings-dir>/metadata. Identifiers are direct
URLs or EDGAR accession numbers (0001234567-24-000123), or the hits of a
search saved with --save. Documents already present are skipped.

EDGAR requires a declared User-Agent naming a contact. Set it with
--user-agent, acquire.user_agent in formd.yaml, or .secrets/edgar-user-agent.

With --extract, each acquired document is extracted and indexed.`,
	RunE: runAcquire,
}

func init() {
	acquireCmd.Flags().Duration("timeout", defaultTimeout, "HTTP request timeout")
	acquireCmd.Flags().Duration("delay", defaultDelay, "delay between consecutive downloads")
	acquireCmd.Flags().String("user-agent", "", "User-Agent header sent to EDGAR")
	acquireCmd.Flags().String("from", "", "acquire the filings saved by \"formd search --save\"")
	acquireCmd.Flags().Bool("extract", false, "extract and index each acquired document")
	acquireCmd.Flags().String("pdf-backend", "markitdown", "PDF converter used with --extract: markitdown or none")

	rootCmd.AddCommand(acquireCmd)
}

func runAcquire(cmd *cobra.Command, args []string) error {
	if from, _ := cmd.Flags().GetString("from"); from != "" {
		qf, err := search.ReadQueryFile(from)
		if err != nil {
			return err
		}
		args = append(args, qf.Accessions()...)
	}
	if len(args) == 0 {
		return fmt.Errorf("provide one or more filing URLs or accession numbers, or --from")
	}

	cfg := types.AcquisitionConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout: settingDuration(cmd, "timeout", "acquire.timeout"),
			UserAgent: secrets.Lookup(loadedSecrets, secrets.KeyEdgarUserAgent,
				settingString(cmd, "user-agent", "acquire.user_agent")),
		},
		DownloadDelay: settingDuration(cmd, "delay", "acquire.delay"),
		FilingsDir:    filingsDir(cmd),
	}
	if cfg.UserAgent == "" {
		logger.Warn("no User-Agent configured; EDGAR may reject requests",
			zap.String("secret", secrets.KeyEdgarUserAgent))
	}

	ctx := cmd.Context()
	result := acquire.AcquireBatch(ctx, acquire.NewClient(cfg), args, cfg, os.Stdout)

	if doExtract, _ := cmd.Flags().GetBool("extract"); doExtract && len(result.Acquisitions) > 0 {
		if err := extractAcquired(cmd, result.Acquisitions); err != nil {
			return err
		}
	}

	if result.HasFailures() {
		return fmt.Errorf("%d filing(s) failed acquisition", result.Failed)
	}
	return nil
}

func extractAcquired(cmd *cobra.Command, acquisitions []*types.Acquisition) error {
	cfg := extractionConfig(cmd)
	p, err := newPipeline(cfg)
	if err != nil {
		return err
	}
	st, err := store.Open(storeConfig(cmd))
	if err != nil {
		return err
	}
	defer st.Close()

	var failed int
	for _, a := range acquisitions {
		f, err := processFile(cmd.Context(), p, st, cfg.FilingsDir, a.Path)
		if err != nil {
			fmt.Fprintf(os.Stdout, "failed  %s: %v\n", a.ID, err)
			failed++
			continue
		}
		fmt.Fprintf(os.Stdout, "extracted %s (%s, valid: %s)\n", a.ID, f.ID, f.Record.ValidLabel())
	}
	if failed > 0 {
		return fmt.Errorf("%d acquired filing(s) failed extraction", failed)
	}
	return nil
}
