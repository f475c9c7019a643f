package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "schemadb",
	Short: "A schema-aware document access layer",
	Long: `schemadb fronts a document store with dynamic schema validation, a
URL-parameter query language, and portable collection backups.

Examples:

  schemadb serve
  schemadb export --out backup.sdbk
  schemadb restore --in backup.sdbk
`,
}

// Execute runs the CLI
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(restoreCmd)
}
