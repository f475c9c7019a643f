package storage

import (
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/schemadb/schemadb/pkg/domain"
	"github.com/schemadb/schemadb/pkg/indexing"
)

// Engine is an in-memory document store with secondary indexes and optional
// single-file persistence. It implements domain.DatabaseEngine and backs the
// access layer when no external document database is wired in.
type Engine struct {
	mu          sync.RWMutex
	collections map[string]*domain.Collection
	indexEngine *indexing.IndexEngine
	logger      *zap.SugaredLogger
}

// Option configures an Engine
type Option func(*Engine)

// WithLogger sets the engine's logger
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// NewEngine creates a new storage engine
func NewEngine(options ...Option) *Engine {
	e := &Engine{
		collections: make(map[string]*domain.Collection),
		logger:      zap.NewNop().Sugar(),
	}
	for _, option := range options {
		option(e)
	}
	e.indexEngine = indexing.NewIndexEngine(e.logger)
	return e
}

// CreateCollection creates an empty collection. Creating an existing
// collection is a no-op.
func (e *Engine) CreateCollection(collName string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.collections[collName]; !exists {
		e.collections[collName] = domain.NewCollection(collName)
	}
	return nil
}

// CollectionNames returns every collection name in sorted order
func (e *Engine) CollectionNames() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	names := make([]string, 0, len(e.collections))
	for name := range e.collections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// EnsureIndex registers an index on a collection and builds it from the
// collection's current documents
func (e *Engine) EnsureIndex(collName string, def domain.IndexDefinition) error {
	if err := e.indexEngine.EnsureIndex(collName, def); err != nil {
		return err
	}
	e.mu.RLock()
	collection, exists := e.collections[collName]
	e.mu.RUnlock()
	if exists {
		e.indexEngine.RebuildCollection(collName, collection.Documents)
	}
	return nil
}

// DropIndex removes an index from a collection
func (e *Engine) DropIndex(collName, indexName string) error {
	return e.indexEngine.DropIndex(collName, indexName)
}

// ListIndexes returns the index descriptors for a collection
func (e *Engine) ListIndexes(collName string) []domain.IndexDefinition {
	return e.indexEngine.ListIndexes(collName)
}

// Lookup returns candidate document IDs for an equality match on an indexed
// field
func (e *Engine) Lookup(collName, field string, value interface{}) ([]string, bool) {
	return e.indexEngine.Lookup(collName, field, value)
}

// getOrCreateCollection returns the named collection, creating it on demand.
// Caller must hold the write lock.
func (e *Engine) getOrCreateCollection(collName string) *domain.Collection {
	collection, exists := e.collections[collName]
	if !exists {
		collection = domain.NewCollection(collName)
		e.collections[collName] = collection
	}
	return collection
}
