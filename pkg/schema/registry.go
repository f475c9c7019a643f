package schema

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/schemadb/schemadb/pkg/domain"
)

// SchemasCollection is the reserved collection holding schema definitions
const SchemasCollection = "_schemas"

// Registry is the durable store of named schema definitions. Definitions
// live in the reserved schemas collection of the underlying engine, so
// they survive restarts alongside the data they describe.
type Registry struct {
	engine   domain.DatabaseEngine
	logger   *zap.SugaredLogger
	onMutate func(collectionName string)

	// serializes the lookup-then-insert in Create so two concurrent
	// registrations cannot both pass the duplicate check
	mu sync.Mutex
}

// NewRegistry creates a schema registry on top of the given engine
func NewRegistry(engine domain.DatabaseEngine, logger *zap.SugaredLogger) *Registry {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	r := &Registry{engine: engine, logger: logger}
	// lookups by collection name are the hot path
	if err := engine.EnsureIndex(SchemasCollection, domain.IndexDefinition{
		Fields: map[string]int{"collectionName": 1},
	}); err != nil {
		logger.Warnw("failed to index schemas collection", "error", err)
	}
	return r
}

// SetOnMutate registers a hook invoked with the affected collection name
// after every schema mutation. The server wires this to the model cache's
// invalidation so edits take effect without a restart.
func (r *Registry) SetOnMutate(fn func(collectionName string)) {
	r.onMutate = fn
}

func (r *Registry) notify(collectionName string) {
	if r.onMutate != nil {
		r.onMutate(collectionName)
	}
}

// Create registers a new schema definition. Fails with ConflictError when
// an active definition already exists for the (case-normalized) collection
// name.
func (r *Registry) Create(def *domain.SchemaDefinition) (*domain.SchemaDefinition, error) {
	if err := validateDefinition(def); err != nil {
		return nil, err
	}
	name := def.NormalizedCollectionName()

	r.mu.Lock()
	defer r.mu.Unlock()

	existing, err := r.GetByCollectionName(name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.NewConflictError(
			"an active schema already exists for collection %s", name)
	}

	now := time.Now().UTC()
	def.CollectionName = name
	def.IsActive = true
	def.CreatedAt = now
	def.UpdatedAt = now

	doc, err := toDocument(def)
	if err != nil {
		return nil, err
	}
	stored, err := r.engine.Insert(SchemasCollection, doc)
	if err != nil {
		return nil, err
	}
	def.ID = stored.ID()

	r.ensureDeclaredIndexes(def)
	r.notify(name)
	r.logger.Infow("schema registered", "collection", name, "id", def.ID)
	return def, nil
}

// Get retrieves a schema definition by ID, active or not
func (r *Registry) Get(id string) (*domain.SchemaDefinition, error) {
	doc, err := r.engine.GetById(SchemasCollection, id)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, domain.NewNotFoundError("schema", id)
		}
		return nil, err
	}
	return fromDocument(doc)
}

// GetByCollectionName returns the active definition for a collection name,
// or nil when none exists. Absence is not an error: callers fall back to
// the schemaless model.
func (r *Registry) GetByCollectionName(name string) (*domain.SchemaDefinition, error) {
	name = domain.NormalizeCollectionName(name)

	if ids, ok := r.engine.Lookup(SchemasCollection, "collectionName", name); ok {
		for _, id := range ids {
			doc, err := r.engine.GetById(SchemasCollection, id)
			if err != nil {
				continue
			}
			def, err := fromDocument(doc)
			if err != nil {
				return nil, err
			}
			if def.IsActive {
				return def, nil
			}
		}
		return nil, nil
	}

	// no usable index, fall back to a scan
	docs, err := r.engine.Scan(SchemasCollection)
	if err != nil {
		return nil, err
	}
	for _, doc := range docs {
		def, err := fromDocument(doc)
		if err != nil {
			return nil, err
		}
		if def.IsActive && def.NormalizedCollectionName() == name {
			return def, nil
		}
	}
	return nil, nil
}

// ListActive returns every active schema definition, sorted by collection
// name
func (r *Registry) ListActive() ([]*domain.SchemaDefinition, error) {
	docs, err := r.engine.Scan(SchemasCollection)
	if err != nil {
		return nil, err
	}
	defs := make([]*domain.SchemaDefinition, 0, len(docs))
	for _, doc := range docs {
		def, err := fromDocument(doc)
		if err != nil {
			return nil, err
		}
		if def.IsActive {
			defs = append(defs, def)
		}
	}
	sortDefinitions(defs)
	return defs, nil
}

// updatableKeys are the definition fields a partial update may overwrite.
// The collection name is immutable after creation: attempts to change it
// are silently ignored.
var updatableKeys = map[string]bool{
	"displayName":     true,
	"description":     true,
	"fields":          true,
	"indexes":         true,
	"validationRules": true,
}

// Update applies a partial field merge to a schema definition: only keys
// present in the partial are overwritten, and updatedAt is always bumped
func (r *Registry) Update(id string, partial domain.Document) (*domain.SchemaDefinition, error) {
	updates := domain.Document{}
	for key, value := range partial {
		if updatableKeys[key] {
			updates[key] = value
		}
	}
	updates["updatedAt"] = time.Now().UTC().Format(time.RFC3339Nano)

	doc, err := r.engine.UpdateById(SchemasCollection, id, updates)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, domain.NewNotFoundError("schema", id)
		}
		return nil, err
	}
	def, err := fromDocument(doc)
	if err != nil {
		return nil, err
	}

	r.ensureDeclaredIndexes(def)
	r.notify(def.CollectionName)
	r.logger.Infow("schema updated", "collection", def.CollectionName, "id", id)
	return def, nil
}

// SoftDelete marks a definition inactive. The definition stays retrievable
// by ID for audit and export. Deleting an already-inactive definition is
// not an error.
func (r *Registry) SoftDelete(id string) (*domain.SchemaDefinition, error) {
	updates := domain.Document{
		"isActive":  false,
		"updatedAt": time.Now().UTC().Format(time.RFC3339Nano),
	}
	doc, err := r.engine.UpdateById(SchemasCollection, id, updates)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, domain.NewNotFoundError("schema", id)
		}
		return nil, err
	}
	def, err := fromDocument(doc)
	if err != nil {
		return nil, err
	}

	r.notify(def.CollectionName)
	r.logger.Infow("schema soft-deleted", "collection", def.CollectionName, "id", id)
	return def, nil
}

// ensureDeclaredIndexes provisions the indexes a definition declares, both
// per-field (index/unique flags) and schema-level index definitions
func (r *Registry) ensureDeclaredIndexes(def *domain.SchemaDefinition) {
	collName := def.NormalizedCollectionName()
	for _, field := range def.Fields {
		if !field.Index && !field.Unique {
			continue
		}
		ix := domain.IndexDefinition{
			Fields: map[string]int{field.Name: 1},
			Unique: field.Unique,
		}
		if err := r.engine.EnsureIndex(collName, ix); err != nil {
			r.logger.Warnw("failed to ensure field index",
				"collection", collName, "field", field.Name, "error", err)
		}
	}
	for _, ix := range def.Indexes {
		if err := r.engine.EnsureIndex(collName, ix); err != nil {
			r.logger.Warnw("failed to ensure schema index",
				"collection", collName, "index", ix.Name(), "error", err)
		}
	}
}

// validateDefinition checks the structural requirements of a new definition
func validateDefinition(def *domain.SchemaDefinition) error {
	var fieldErrors []domain.FieldError
	name := def.NormalizedCollectionName()
	if name == "" {
		fieldErrors = append(fieldErrors, domain.FieldError{
			Field: "collectionName", Message: "must not be empty",
		})
	} else if strings.HasPrefix(name, "_") {
		fieldErrors = append(fieldErrors, domain.FieldError{
			Field: "collectionName", Message: "names starting with _ are reserved",
		})
	}
	for i, field := range def.Fields {
		if strings.TrimSpace(field.Name) == "" {
			fieldErrors = append(fieldErrors, domain.FieldError{
				Field: "fields", Message: fmt.Sprintf("field at position %d has no name", i),
			})
		}
	}
	if len(fieldErrors) > 0 {
		return domain.NewValidationError("invalid schema definition", fieldErrors...)
	}
	return nil
}

func sortDefinitions(defs []*domain.SchemaDefinition) {
	sort.Slice(defs, func(i, j int) bool {
		return defs[i].CollectionName < defs[j].CollectionName
	})
}
