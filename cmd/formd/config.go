// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/formd/internal/export"
	"github.com/pdiddy/formd/pkg/types"
)

// Settings resolve in order: an explicitly set flag, then the viper key
// (config file or FORMD_* environment), then the flag default.

func settingString(cmd *cobra.Command, flag, key string) string {
	f := cmd.Flags().Lookup(flag)
	if f != nil && f.Changed {
		return f.Value.String()
	}
	if viper.IsSet(key) {
		return viper.GetString(key)
	}
	if f != nil {
		return f.Value.String()
	}
	return ""
}

func settingDuration(cmd *cobra.Command, flag, key string) time.Duration {
	f := cmd.Flags().Lookup(flag)
	if f != nil && f.Changed {
		d, _ := cmd.Flags().GetDuration(flag)
		return d
	}
	if viper.IsSet(key) {
		return viper.GetDuration(key)
	}
	if f != nil {
		d, _ := cmd.Flags().GetDuration(flag)
		return d
	}
	return 0
}

func settingInt(cmd *cobra.Command, flag, key string) int {
	f := cmd.Flags().Lookup(flag)
	if f != nil && f.Changed {
		n, _ := cmd.Flags().GetInt(flag)
		return n
	}
	if viper.IsSet(key) {
		return viper.GetInt(key)
	}
	if f != nil {
		n, _ := cmd.Flags().GetInt(flag)
		return n
	}
	return 0
}

func settingBool(cmd *cobra.Command, flag, key string) bool {
	f := cmd.Flags().Lookup(flag)
	if f != nil && f.Changed {
		b, _ := cmd.Flags().GetBool(flag)
		return b
	}
	if viper.IsSet(key) {
		return viper.GetBool(key)
	}
	b, _ := cmd.Flags().GetBool(flag)
	return b
}

func filingsDir(cmd *cobra.Command) string {
	return settingString(cmd, "filings-dir", "filings_dir")
}

func conversionConfig(cmd *cobra.Command) types.ConversionConfig {
	return types.ConversionConfig{
		PDFBackend: types.PDFBackend(settingString(cmd, "pdf-backend", "convert.pdf_backend")),
	}
}

func extractionConfig(cmd *cobra.Command) types.ExtractionConfig {
	force, _ := cmd.Flags().GetBool("force")
	return types.ExtractionConfig{
		Conversion:  conversionConfig(cmd),
		FilingsDir:  filingsDir(cmd),
		SpecsFile:   settingString(cmd, "specs", "specs_file"),
		DealKeyword: settingString(cmd, "deal-keyword", "deal_keyword"),
		Force:       force,
	}
}

func storeConfig(cmd *cobra.Command) types.StoreConfig {
	return types.StoreConfig{
		FilingsDir: filingsDir(cmd),
		MaxResults: settingInt(cmd, "max-results", "store.max_results"),
	}
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration as YAML",
	Long: `Config prints the settings formd resolves from formd.yaml and FORMD_*
environment variables, plus the global flags. The output is a valid
formd.yaml; secrets from .secrets/ are never printed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := types.Config{
			Extraction: types.ExtractionConfig{
				Conversion: types.ConversionConfig{
					PDFBackend: types.PDFBackend(viper.GetString("convert.pdf_backend")),
				},
				FilingsDir:  filingsDir(cmd),
				SpecsFile:   viper.GetString("specs_file"),
				DealKeyword: viper.GetString("deal_keyword"),
			},
			Log: types.LoggingConfig{
				Level:  settingString(cmd, "log-level", "log.level"),
				Format: settingString(cmd, "log-format", "log.format"),
			},
			Search: types.SearchConfig{
				HTTPConfig: types.HTTPConfig{
					Timeout:   viper.GetDuration("search.timeout"),
					UserAgent: viper.GetString("search.user_agent"),
				},
				MaxResults: viper.GetInt("search.max_results"),
				Amendments: viper.GetBool("search.amendments"),
			},
			Acquisition: types.AcquisitionConfig{
				HTTPConfig: types.HTTPConfig{
					Timeout:   viper.GetDuration("acquire.timeout"),
					UserAgent: viper.GetString("acquire.user_agent"),
				},
				DownloadDelay: viper.GetDuration("acquire.delay"),
			},
			Store: types.StoreConfig{MaxResults: viper.GetInt("store.max_results")},
		}
		return export.WriteYAML(os.Stdout, cfg)
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}
