package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/schemadb/schemadb/pkg/config"
	"github.com/schemadb/schemadb/pkg/server"
)

var (
	servePort        string
	serveDataFile    string
	serveDatabase    string
	serveSchemasFile string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		if servePort != "" {
			cfg.Port = servePort
		}
		if serveDataFile != "" {
			cfg.DataFile = serveDataFile
		}
		if serveDatabase != "" {
			cfg.DatabaseName = serveDatabase
		}
		if serveSchemasFile != "" {
			cfg.SchemasFile = serveSchemasFile
		}

		zapLogger, err := zap.NewProduction()
		if err != nil {
			return err
		}
		defer zapLogger.Sync()
		logger := zapLogger.Sugar()

		srv := server.NewServer(
			server.WithLogger(logger),
			server.WithDatabaseName(cfg.DatabaseName),
		)

		logger.Infow("loading data", "file", cfg.DataFile)
		srv.InitDB(cfg.DataFile)

		if cfg.SchemasFile != "" {
			defs, err := config.LoadSchemasFile(cfg.SchemasFile)
			if err != nil {
				return err
			}
			srv.PreloadSchemas(defs)
			logger.Infow("schemas preloaded", "file", cfg.SchemasFile, "count", len(defs))
		}

		httpServer := &http.Server{
			Addr:    ":" + cfg.Port,
			Handler: srv.Router(),
		}

		go func() {
			logger.Infow("server listening", "port", cfg.Port)
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Fatalw("server failed", "error", err)
			}
		}()

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		logger.Info("shutting down")

		logger.Infow("saving data", "file", cfg.DataFile)
		srv.SaveDB(cfg.DataFile)

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(ctx); err != nil {
			return err
		}
		logger.Info("server exited")
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&servePort, "port", "", "server port (default 8080)")
	serveCmd.Flags().StringVar(&serveDataFile, "data-file", "", "data file path for persistence")
	serveCmd.Flags().StringVar(&serveDatabase, "db-name", "", "logical database name stamped on backups")
	serveCmd.Flags().StringVar(&serveSchemasFile, "schemas", "", "YAML file of schema definitions to preload")
}
