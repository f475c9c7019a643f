package model

import (
	"sync"

	"github.com/schemadb/schemadb/pkg/domain"
)

// SchemaSource looks up the active schema definition for a collection.
// Absence of a schema is not an error: it returns (nil, nil).
type SchemaSource interface {
	GetByCollectionName(name string) (*domain.SchemaDefinition, error)
}

// Cache memoizes compiled models per collection name for the process
// lifetime. Concurrent first-accesses may race to compile; compilation is
// deterministic so last-write-wins is fine.
type Cache struct {
	mu     sync.RWMutex
	source SchemaSource
	models map[string]*CompiledModel
}

// NewCache creates a model cache backed by the given schema source
func NewCache(source SchemaSource) *Cache {
	return &Cache{
		source: source,
		models: make(map[string]*CompiledModel),
	}
}

// GetOrCompile returns the cached model for a collection, compiling it from
// the active schema definition (or the schemaless model) on first access
func (c *Cache) GetOrCompile(collName string) (*CompiledModel, error) {
	name := domain.NormalizeCollectionName(collName)

	c.mu.RLock()
	if compiled, exists := c.models[name]; exists {
		c.mu.RUnlock()
		return compiled, nil
	}
	c.mu.RUnlock()

	def, err := c.source.GetByCollectionName(name)
	if err != nil {
		return nil, err
	}
	compiled := Compile(name, def)

	c.mu.Lock()
	c.models[name] = compiled
	c.mu.Unlock()
	return compiled, nil
}

// Invalidate drops the cached model for a collection so the next access
// recompiles from the current schema. Called on schema mutation.
func (c *Cache) Invalidate(collName string) {
	name := domain.NormalizeCollectionName(collName)
	c.mu.Lock()
	delete(c.models, name)
	c.mu.Unlock()
}

// InvalidateAll clears the whole cache
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	c.models = make(map[string]*CompiledModel)
	c.mu.Unlock()
}
