package server

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/schemadb/schemadb/pkg/api"
	"github.com/schemadb/schemadb/pkg/backup"
	"github.com/schemadb/schemadb/pkg/docstore"
	"github.com/schemadb/schemadb/pkg/domain"
	"github.com/schemadb/schemadb/pkg/model"
	"github.com/schemadb/schemadb/pkg/schema"
	"github.com/schemadb/schemadb/pkg/storage"
)

// Server wires the engine, schema registry, model cache, document store,
// and backup engine behind an HTTP router
type Server struct {
	router       *mux.Router
	engine       *storage.Engine
	registry     *schema.Registry
	models       *model.Cache
	store        *docstore.DocumentStore
	backups      *backup.Engine
	logger       *zap.SugaredLogger
	databaseName string
}

// Option configures a Server
type Option func(*Server)

// WithLogger sets the server's logger
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithDatabaseName sets the logical database name stamped on backups
func WithDatabaseName(name string) Option {
	return func(s *Server) {
		s.databaseName = name
	}
}

// NewServer creates a fully wired server
func NewServer(options ...Option) *Server {
	s := &Server{
		router:       mux.NewRouter(),
		logger:       zap.NewNop().Sugar(),
		databaseName: "schemadb",
	}
	for _, option := range options {
		option(s)
	}

	s.engine = storage.NewEngine(storage.WithLogger(s.logger))
	s.registry = schema.NewRegistry(s.engine, s.logger)
	s.models = model.NewCache(s.registry)
	// schema edits must reach validation without a process restart
	s.registry.SetOnMutate(s.models.Invalidate)
	s.store = docstore.New(s.engine, s.models, s.logger)
	s.backups = backup.New(s.engine, s.databaseName, s.logger)

	handler := api.NewHandler(s.store, s.registry, s.backups, s.logger)
	handler.RegisterRoutes(s.router)

	s.router.Use(s.requestLoggerMiddleware)
	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.logger.Warnw("no route", "method", r.Method, "path", r.URL.Path)
		http.NotFound(w, r)
	})

	return s
}

// Router exposes the HTTP handler
func (s *Server) Router() http.Handler {
	return s.router
}

// Registry exposes the schema registry for startup preloading
func (s *Server) Registry() *schema.Registry {
	return s.registry
}

// InitDB loads persisted engine state from a data file
func (s *Server) InitDB(filename string) {
	if err := s.engine.LoadFromFile(filename); err != nil {
		s.logger.Errorw("could not load data file", "file", filename, "error", err)
	}
}

// SaveDB persists the current engine state to a data file
func (s *Server) SaveDB(filename string) {
	if err := s.engine.SaveToFile(filename); err != nil {
		s.logger.Errorw("could not save data file", "file", filename, "error", err)
	}
}

// PreloadSchemas registers schema definitions at startup, skipping any
// collection that already has an active definition
func (s *Server) PreloadSchemas(defs []domain.SchemaDefinition) {
	for i := range defs {
		def := defs[i]
		if _, err := s.registry.Create(&def); err != nil {
			if domain.IsConflict(err) {
				s.logger.Debugw("schema already registered", "collection", def.CollectionName)
				continue
			}
			s.logger.Warnw("failed to preload schema",
				"collection", def.CollectionName, "error", err)
		}
	}
}
