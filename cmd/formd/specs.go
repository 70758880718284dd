// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/formd/internal/extract"
)

var specsCmd = &cobra.Command{
	Use:   "specs",
	Short: "Print the active field specs as YAML",
	Long: `Specs prints the field specs extraction would use: the built-in set,
or the file named by --specs (or specs_file in formd.yaml) after it has
been validated. The output is itself a valid specs file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		specs, err := loadSpecs(extractionConfig(cmd))
		if err != nil {
			return err
		}
		if _, err := extract.New(specs, extract.Options{}); err != nil {
			return err
		}
		data, err := extract.MarshalSpecs(specs)
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(data)
		return err
	},
}

func init() {
	specsCmd.Flags().String("specs", "", "YAML file replacing the built-in field specs")

	rootCmd.AddCommand(specsCmd)
}
