package indexing

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/schemadb/schemadb/pkg/domain"
)

// IndexEngine maintains secondary indexes for every collection. Each index
// keeps one inverted map per indexed field, plus a composite key map for
// unique enforcement.
type IndexEngine struct {
	mu      sync.RWMutex
	indexes map[string]map[string]*Index // collection name -> index name -> index
	logger  *zap.SugaredLogger
}

// NewIndexEngine creates a new index engine
func NewIndexEngine(logger *zap.SugaredLogger) *IndexEngine {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &IndexEngine{
		indexes: make(map[string]map[string]*Index),
		logger:  logger,
	}
}

// Index stores inverted mappings from field values to document IDs
type Index struct {
	Def      domain.IndexDefinition
	Inverted map[string]map[interface{}][]string // field -> value -> doc IDs
	unique   map[string]string                   // composite key -> doc ID, when Def.Unique
}

// NewIndex creates an empty index for the given definition
func NewIndex(def domain.IndexDefinition) *Index {
	idx := &Index{
		Def:      def,
		Inverted: make(map[string]map[interface{}][]string),
	}
	for _, field := range def.FieldNames() {
		idx.Inverted[field] = make(map[interface{}][]string)
	}
	if def.Unique {
		idx.unique = make(map[string]string)
	}
	return idx
}

// indexKey normalizes a document value for use as an inverted-map key.
// Numbers collapse to float64 so msgpack round trips keep matching. Values
// that cannot be map keys (arrays, nested objects) are not indexable.
func indexKey(value interface{}) (interface{}, bool) {
	switch v := value.(type) {
	case nil:
		return nil, false
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case string, bool:
		return v, true
	default:
		return nil, false
	}
}

// compositeKey builds the unique-enforcement key for a document, covering
// every indexed field. ok is false when any field is absent (the document
// does not participate in uniqueness, matching sparse semantics).
func (idx *Index) compositeKey(doc domain.Document) (string, bool) {
	key := ""
	for _, field := range idx.Def.FieldNames() {
		val, exists := doc[field]
		if !exists {
			return "", false
		}
		normalized, ok := indexKey(val)
		if !ok {
			return "", false
		}
		key += fmt.Sprintf("%v\x00", normalized)
	}
	return key, true
}

// add registers a document in the index
func (idx *Index) add(docID string, doc domain.Document) {
	for field, inverted := range idx.Inverted {
		if val, exists := doc[field]; exists {
			if key, ok := indexKey(val); ok {
				inverted[key] = append(inverted[key], docID)
			}
		}
	}
	if idx.unique != nil {
		if key, ok := idx.compositeKey(doc); ok {
			idx.unique[key] = docID
		}
	}
}

// remove deletes a document's entries from the index
func (idx *Index) remove(docID string, doc domain.Document) {
	for field, inverted := range idx.Inverted {
		val, exists := doc[field]
		if !exists {
			continue
		}
		key, ok := indexKey(val)
		if !ok {
			continue
		}
		ids := inverted[key]
		for i, id := range ids {
			if id == docID {
				inverted[key] = append(ids[:i], ids[i+1:]...)
				break
			}
		}
		if len(inverted[key]) == 0 {
			delete(inverted, key)
		}
	}
	if idx.unique != nil {
		if key, ok := idx.compositeKey(doc); ok {
			if idx.unique[key] == docID {
				delete(idx.unique, key)
			}
		}
	}
}

// EnsureIndex registers an index definition for a collection. Ensuring an
// index that already exists under the same name is a no-op.
func (ie *IndexEngine) EnsureIndex(collName string, def domain.IndexDefinition) error {
	if len(def.Fields) == 0 {
		return domain.NewValidationError("index definition has no fields")
	}
	ie.mu.Lock()
	defer ie.mu.Unlock()

	if ie.indexes[collName] == nil {
		ie.indexes[collName] = make(map[string]*Index)
	}
	name := def.Name()
	if _, exists := ie.indexes[collName][name]; exists {
		return nil
	}
	ie.indexes[collName][name] = NewIndex(def)
	ie.logger.Infow("index created", "collection", collName, "index", name)
	return nil
}

// DropIndex removes an index from a collection
func (ie *IndexEngine) DropIndex(collName, indexName string) error {
	ie.mu.Lock()
	defer ie.mu.Unlock()

	if ie.indexes[collName] == nil {
		return domain.NewNotFoundError("index", indexName)
	}
	if _, exists := ie.indexes[collName][indexName]; !exists {
		return domain.NewNotFoundError("index", indexName)
	}
	delete(ie.indexes[collName], indexName)
	return nil
}

// ListIndexes returns the index descriptors registered for a collection
func (ie *IndexEngine) ListIndexes(collName string) []domain.IndexDefinition {
	ie.mu.RLock()
	defer ie.mu.RUnlock()

	defs := make([]domain.IndexDefinition, 0, len(ie.indexes[collName]))
	for _, idx := range ie.indexes[collName] {
		defs = append(defs, idx.Def)
	}
	return defs
}

// Lookup returns candidate document IDs for an equality match on an indexed
// field. ok is false when no index covers the field.
func (ie *IndexEngine) Lookup(collName, field string, value interface{}) ([]string, bool) {
	ie.mu.RLock()
	defer ie.mu.RUnlock()

	key, keyOK := indexKey(value)
	if !keyOK {
		return nil, false
	}
	for _, idx := range ie.indexes[collName] {
		if inverted, covered := idx.Inverted[field]; covered {
			ids := inverted[key]
			out := make([]string, len(ids))
			copy(out, ids)
			return out, true
		}
	}
	return nil, false
}

// CheckUnique verifies that doc would not violate any unique index in the
// collection, ignoring entries held by docID itself
func (ie *IndexEngine) CheckUnique(collName, docID string, doc domain.Document) error {
	ie.mu.RLock()
	defer ie.mu.RUnlock()

	for _, idx := range ie.indexes[collName] {
		if idx.unique == nil {
			continue
		}
		key, ok := idx.compositeKey(doc)
		if !ok {
			continue
		}
		if holder, taken := idx.unique[key]; taken && holder != docID {
			return domain.NewConflictError(
				"unique index %s violated in collection %s", idx.Def.Name(), collName)
		}
	}
	return nil
}

// UpdateDocument maintains every index of a collection after an insert
// (oldDoc nil), update, or delete (newDoc nil)
func (ie *IndexEngine) UpdateDocument(collName, docID string, oldDoc, newDoc domain.Document) {
	ie.mu.Lock()
	defer ie.mu.Unlock()

	for _, idx := range ie.indexes[collName] {
		if oldDoc != nil {
			idx.remove(docID, oldDoc)
		}
		if newDoc != nil {
			idx.add(docID, newDoc)
		}
	}
}

// RebuildCollection re-indexes every document in a collection from scratch
func (ie *IndexEngine) RebuildCollection(collName string, docs map[string]domain.Document) {
	ie.mu.Lock()
	defer ie.mu.Unlock()

	for name, idx := range ie.indexes[collName] {
		fresh := NewIndex(idx.Def)
		for docID, doc := range docs {
			fresh.add(docID, doc)
		}
		ie.indexes[collName][name] = fresh
	}
}

// ClearCollection drops all indexed data for a collection while keeping the
// index definitions in place
func (ie *IndexEngine) ClearCollection(collName string) {
	ie.mu.Lock()
	defer ie.mu.Unlock()

	for name, idx := range ie.indexes[collName] {
		ie.indexes[collName][name] = NewIndex(idx.Def)
	}
}

// ExportDescriptors returns every collection's index definitions, used when
// persisting engine state
func (ie *IndexEngine) ExportDescriptors() map[string][]domain.IndexDefinition {
	ie.mu.RLock()
	defer ie.mu.RUnlock()

	out := make(map[string][]domain.IndexDefinition, len(ie.indexes))
	for collName, byName := range ie.indexes {
		defs := make([]domain.IndexDefinition, 0, len(byName))
		for _, idx := range byName {
			defs = append(defs, idx.Def)
		}
		out[collName] = defs
	}
	return out
}

// ImportDescriptors registers index definitions loaded from disk. Inverted
// data is rebuilt separately via RebuildCollection.
func (ie *IndexEngine) ImportDescriptors(descriptors map[string][]domain.IndexDefinition) {
	ie.mu.Lock()
	defer ie.mu.Unlock()

	for collName, defs := range descriptors {
		if ie.indexes[collName] == nil {
			ie.indexes[collName] = make(map[string]*Index)
		}
		for _, def := range defs {
			ie.indexes[collName][def.Name()] = NewIndex(def)
		}
	}
}
