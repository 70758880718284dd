// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/formd/internal/convert"
	"github.com/pdiddy/formd/internal/normalize"
)

var linesCmd = &cobra.Command{
	Use:   "lines <file>",
	Short: "Print the normalized line sequence of a document",
	Long: `Lines converts a document and prints the normalized lines the
extractor sees, each prefixed with its index. Use it to check anchors and
offsets when writing a custom specs file.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		set := convert.NewSet(conversionConfig(cmd))
		paras, err := set.Convert(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		doc := normalize.Normalize(paras)
		for i, line := range doc.Lines() {
			fmt.Fprintf(os.Stdout, "%4d  %s\n", i, line)
		}
		return nil
	},
}

func init() {
	linesCmd.Flags().String("pdf-backend", "markitdown", "PDF converter: markitdown or none")

	rootCmd.AddCommand(linesCmd)
}
