package storage

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/schemadb/schemadb/pkg/domain"
)

// Insert assigns a fresh ObjectID and stores the document, creating the
// collection if needed
func (e *Engine) Insert(collName string, doc domain.Document) (domain.Document, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	collection := e.getOrCreateCollection(collName)

	stored := doc.Clone()
	docID := primitive.NewObjectID().Hex()
	stored["_id"] = docID

	if err := e.indexEngine.CheckUnique(collName, docID, stored); err != nil {
		return nil, err
	}

	e.indexEngine.UpdateDocument(collName, docID, nil, stored)
	collection.Documents[docID] = stored

	return stored.Clone(), nil
}

// InsertWithID stores a document under a caller-supplied identifier,
// used when restoring backups
func (e *Engine) InsertWithID(collName, docID string, doc domain.Document) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	collection := e.getOrCreateCollection(collName)

	if _, exists := collection.Documents[docID]; exists {
		return domain.NewConflictError(
			"document %s already exists in collection %s", docID, collName)
	}

	stored := doc.Clone()
	stored["_id"] = docID

	if err := e.indexEngine.CheckUnique(collName, docID, stored); err != nil {
		return err
	}

	e.indexEngine.UpdateDocument(collName, docID, nil, stored)
	collection.Documents[docID] = stored
	return nil
}

// GetById retrieves a specific document by its ID
func (e *Engine) GetById(collName, docID string) (domain.Document, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	collection, exists := e.collections[collName]
	if !exists {
		return nil, domain.NewNotFoundError("document", docID)
	}
	doc, exists := collection.Documents[docID]
	if !exists {
		return nil, domain.NewNotFoundError("document", docID)
	}
	return doc.Clone(), nil
}

// UpdateById merges the given fields into an existing document and returns
// the updated document
func (e *Engine) UpdateById(collName, docID string, updates domain.Document) (domain.Document, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	collection, exists := e.collections[collName]
	if !exists {
		return nil, domain.NewNotFoundError("document", docID)
	}
	doc, exists := collection.Documents[docID]
	if !exists {
		return nil, domain.NewNotFoundError("document", docID)
	}

	merged := doc.Clone()
	for key, value := range updates {
		if key == "_id" {
			continue
		}
		merged[key] = value
	}

	if err := e.indexEngine.CheckUnique(collName, docID, merged); err != nil {
		return nil, err
	}

	e.indexEngine.UpdateDocument(collName, docID, doc, merged)
	collection.Documents[docID] = merged
	return merged.Clone(), nil
}

// ReplaceById swaps the full document body, keeping its identifier
func (e *Engine) ReplaceById(collName, docID string, doc domain.Document) (domain.Document, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	collection, exists := e.collections[collName]
	if !exists {
		return nil, domain.NewNotFoundError("document", docID)
	}
	existing, exists := collection.Documents[docID]
	if !exists {
		return nil, domain.NewNotFoundError("document", docID)
	}

	replacement := doc.Clone()
	replacement["_id"] = docID

	if err := e.indexEngine.CheckUnique(collName, docID, replacement); err != nil {
		return nil, err
	}

	e.indexEngine.UpdateDocument(collName, docID, existing, replacement)
	collection.Documents[docID] = replacement
	return replacement.Clone(), nil
}

// DeleteById removes a specific document by its ID
func (e *Engine) DeleteById(collName, docID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	collection, exists := e.collections[collName]
	if !exists {
		return domain.NewNotFoundError("document", docID)
	}
	doc, exists := collection.Documents[docID]
	if !exists {
		return domain.NewNotFoundError("document", docID)
	}

	e.indexEngine.UpdateDocument(collName, docID, doc, nil)
	delete(collection.Documents, docID)
	return nil
}

// DeleteAll removes every document in a collection, returning the number
// removed. Index definitions survive, indexed data is cleared.
func (e *Engine) DeleteAll(collName string) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	collection, exists := e.collections[collName]
	if !exists {
		return 0, nil
	}
	removed := len(collection.Documents)
	collection.Documents = make(map[string]domain.Document)
	e.indexEngine.ClearCollection(collName)
	return removed, nil
}

// Scan returns a snapshot of all documents in a collection. A missing
// collection yields an empty slice, not an error.
func (e *Engine) Scan(collName string) ([]domain.Document, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	collection, exists := e.collections[collName]
	if !exists {
		return []domain.Document{}, nil
	}
	docs := make([]domain.Document, 0, len(collection.Documents))
	for _, doc := range collection.Documents {
		docs = append(docs, doc.Clone())
	}
	return docs, nil
}
