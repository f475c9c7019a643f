package api

import (
	"go.uber.org/zap"

	"github.com/schemadb/schemadb/pkg/backup"
	"github.com/schemadb/schemadb/pkg/docstore"
	"github.com/schemadb/schemadb/pkg/schema"
)

// Handler provides HTTP handlers for the access layer API
type Handler struct {
	store    *docstore.DocumentStore
	registry *schema.Registry
	backups  *backup.Engine
	logger   *zap.SugaredLogger
}

// NewHandler creates a new API handler with dependency injection
func NewHandler(store *docstore.DocumentStore, registry *schema.Registry, backups *backup.Engine, logger *zap.SugaredLogger) *Handler {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Handler{
		store:    store,
		registry: registry,
		backups:  backups,
		logger:   logger,
	}
}
