package docstore

import (
	"time"

	"github.com/schemadb/schemadb/pkg/domain"
)

// BulkInsert validates and inserts a batch of documents. Partial failures
// are itemized per document rather than collapsed into a single error.
func (s *DocumentStore) BulkInsert(collName string, docs []domain.Document) (*domain.BulkResult, error) {
	compiled, err := s.models.GetOrCompile(collName)
	if err != nil {
		return nil, err
	}

	result := &domain.BulkResult{
		Operation: "insert",
		Requested: len(docs),
		Items:     make([]domain.BulkItemResult, 0, len(docs)),
	}
	now := time.Now().UTC()

	for _, body := range docs {
		doc := body.Clone()
		delete(doc, "_id")
		compiled.ApplyDefaults(doc)
		if err := compiled.Validate(doc); err != nil {
			result.Items = append(result.Items, domain.BulkItemResult{Error: err.Error()})
			continue
		}
		doc["createdAt"] = now
		doc["updatedAt"] = now

		stored, err := s.engine.Insert(collName, doc)
		if err != nil {
			result.Items = append(result.Items, domain.BulkItemResult{Error: err.Error()})
			continue
		}
		result.Items = append(result.Items, domain.BulkItemResult{ID: stored.ID(), OK: true})
		result.Succeeded++
	}

	s.logger.Infow("bulk insert finished",
		"collection", collName, "requested", result.Requested, "succeeded", result.Succeeded)
	return result, nil
}

// BulkUpdate matches each item by its identifier and merges its remaining
// fields, validating every merged document
func (s *DocumentStore) BulkUpdate(collName string, docs []domain.Document) (*domain.BulkResult, error) {
	result := &domain.BulkResult{
		Operation: "update",
		Requested: len(docs),
		Items:     make([]domain.BulkItemResult, 0, len(docs)),
	}

	for _, item := range docs {
		id := item.ID()
		if id == "" {
			result.Items = append(result.Items, domain.BulkItemResult{Error: "item has no _id"})
			continue
		}
		partial := item.Clone()
		delete(partial, "_id")
		if _, err := s.Patch(collName, id, partial); err != nil {
			result.Items = append(result.Items, domain.BulkItemResult{ID: id, Error: err.Error()})
			continue
		}
		result.Items = append(result.Items, domain.BulkItemResult{ID: id, OK: true})
		result.Succeeded++
	}

	s.logger.Infow("bulk update finished",
		"collection", collName, "requested", result.Requested, "succeeded", result.Succeeded)
	return result, nil
}

// BulkDelete removes every document whose identifier is in ids, reporting
// the actual count removed. Missing identifiers do not abort the batch.
func (s *DocumentStore) BulkDelete(collName string, ids []string) (*domain.BulkResult, error) {
	result := &domain.BulkResult{
		Operation: "delete",
		Requested: len(ids),
		Items:     make([]domain.BulkItemResult, 0, len(ids)),
	}

	for _, id := range ids {
		if err := s.Delete(collName, id); err != nil {
			result.Items = append(result.Items, domain.BulkItemResult{ID: id, Error: err.Error()})
			continue
		}
		result.Items = append(result.Items, domain.BulkItemResult{ID: id, OK: true})
		result.Succeeded++
	}

	s.logger.Infow("bulk delete finished",
		"collection", collName, "requested", result.Requested, "succeeded", result.Succeeded)
	return result, nil
}
