package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/schemadb/schemadb/pkg/backup"
	"github.com/schemadb/schemadb/pkg/config"
	"github.com/schemadb/schemadb/pkg/storage"
)

var (
	restoreDataFile    string
	restoreIn          string
	restoreCollections []string
)

var restoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Restore collections from a backup file",
	Long: `Restore replaces the contents of each selected collection with the
backup's documents. It is not atomic across collections: on failure,
collections restored before the failure stay restored.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		if restoreDataFile != "" {
			cfg.DataFile = restoreDataFile
		}

		logger := zap.NewNop().Sugar()
		engine := storage.NewEngine(storage.WithLogger(logger))
		if err := engine.LoadFromFile(cfg.DataFile); err != nil {
			return err
		}

		set, err := backup.ReadFile(restoreIn)
		if err != nil {
			return err
		}

		backups := backup.New(engine, cfg.DatabaseName, logger)
		results, restoreErr := backups.Restore(set, restoreCollections)

		for _, result := range results {
			if result.Error != "" {
				color.Red("✘ %s: %s", result.Collection, result.Error)
				continue
			}
			color.Green("✔ %s: %d documents, %d indexes",
				result.Collection, result.DocumentsRestored, result.IndexesRestored)
		}

		if err := engine.SaveToFile(cfg.DataFile); err != nil {
			return err
		}
		if restoreErr != nil {
			return restoreErr
		}
		fmt.Printf("restored %d collections from %s\n", len(results), restoreIn)
		return nil
	},
}

func init() {
	restoreCmd.Flags().StringVar(&restoreDataFile, "data-file", "", "data file path")
	restoreCmd.Flags().StringVar(&restoreIn, "in", "", "backup file to restore from")
	restoreCmd.MarkFlagRequired("in")
	restoreCmd.Flags().StringSliceVar(&restoreCollections, "collections", nil, "collections to restore (default: all in backup)")
}
