package docstore

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/schemadb/schemadb/pkg/domain"
	"github.com/schemadb/schemadb/pkg/model"
	"github.com/schemadb/schemadb/pkg/query"
)

// DocumentStore provides generic, schema-aware CRUD over named collections.
// Each operation obtains the collection's compiled model from the model
// cache and validates before touching the engine.
type DocumentStore struct {
	engine domain.DatabaseEngine
	models *model.Cache
	logger *zap.SugaredLogger
}

// New creates a document store
func New(engine domain.DatabaseEngine, models *model.Cache, logger *zap.SugaredLogger) *DocumentStore {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &DocumentStore{engine: engine, models: models, logger: logger}
}

// validateID checks that id is a well-formed document identifier
func validateID(id string) error {
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return domain.NewValidationError("invalid document id",
			domain.FieldError{Field: "_id", Message: "must be a well-formed ObjectId"})
	}
	return nil
}

// List applies a parsed query's filter, sort, projection, and pagination to
// a collection. The returned total is the filtered count ignoring the
// pagination window.
func (s *DocumentStore) List(collName string, q *domain.ParsedQuery) ([]domain.Document, int, error) {
	candidates, err := s.candidateDocuments(collName, q.Filter)
	if err != nil {
		return nil, 0, err
	}

	matched := make([]domain.Document, 0, len(candidates))
	for _, doc := range candidates {
		if query.Matches(doc, q.Filter) {
			matched = append(matched, doc)
		}
	}
	total := len(matched)

	query.SortDocuments(matched, q.Sort)

	start := q.Skip
	if start > total {
		start = total
	}
	end := start + q.Limit
	if q.Limit <= 0 || end > total {
		end = total
	}
	page := matched[start:end]

	out := make([]domain.Document, len(page))
	for i, doc := range page {
		out[i] = query.Project(doc, q.Projection)
	}
	return out, total, nil
}

// candidateDocuments narrows the scan using equality indexes when possible,
// falling back to a full collection scan
func (s *DocumentStore) candidateDocuments(collName string, filter map[string][]domain.Condition) ([]domain.Document, error) {
	var indexResults [][]string
	for field, conditions := range filter {
		for _, cond := range conditions {
			if cond.Op != domain.OpEq {
				continue
			}
			if ids, ok := s.engine.Lookup(collName, field, cond.Value); ok {
				indexResults = append(indexResults, ids)
			}
		}
	}
	if len(indexResults) == 0 {
		return s.engine.Scan(collName)
	}

	candidateIDs := intersectStringSlices(indexResults...)
	docs := make([]domain.Document, 0, len(candidateIDs))
	for _, id := range candidateIDs {
		doc, err := s.engine.GetById(collName, id)
		if err != nil {
			continue
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// GetById retrieves a document by its identifier
func (s *DocumentStore) GetById(collName, id string) (domain.Document, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	return s.engine.GetById(collName, id)
}

// Create validates a document against the collection's compiled model and
// persists it with server-assigned identifier and timestamps
func (s *DocumentStore) Create(collName string, body domain.Document) (domain.Document, error) {
	compiled, err := s.models.GetOrCompile(collName)
	if err != nil {
		return nil, err
	}

	doc := body.Clone()
	delete(doc, "_id")
	compiled.ApplyDefaults(doc)
	if err := compiled.Validate(doc); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	doc["createdAt"] = now
	doc["updatedAt"] = now

	stored, err := s.engine.Insert(collName, doc)
	if err != nil {
		return nil, err
	}
	s.logger.Debugw("document created", "collection", collName, "id", stored.ID())
	return stored, nil
}

// Replace swaps the full document body, re-running model validation on the
// result. The original creation timestamp is preserved.
func (s *DocumentStore) Replace(collName, id string, body domain.Document) (domain.Document, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	compiled, err := s.models.GetOrCompile(collName)
	if err != nil {
		return nil, err
	}
	existing, err := s.engine.GetById(collName, id)
	if err != nil {
		return nil, err
	}

	doc := body.Clone()
	delete(doc, "_id")
	compiled.ApplyDefaults(doc)
	if err := compiled.Validate(doc); err != nil {
		return nil, err
	}

	if createdAt, ok := existing["createdAt"]; ok {
		doc["createdAt"] = createdAt
	}
	doc["updatedAt"] = time.Now().UTC()

	return s.engine.ReplaceById(collName, id, doc)
}

// Patch merges a partial update into an existing document, re-running model
// validation on the merged result
func (s *DocumentStore) Patch(collName, id string, partial domain.Document) (domain.Document, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	compiled, err := s.models.GetOrCompile(collName)
	if err != nil {
		return nil, err
	}
	existing, err := s.engine.GetById(collName, id)
	if err != nil {
		return nil, err
	}

	merged := existing.Clone()
	updates := domain.Document{}
	for key, value := range partial {
		if key == "_id" || key == "createdAt" {
			continue
		}
		merged[key] = value
		updates[key] = value
	}
	if err := compiled.Validate(merged); err != nil {
		return nil, err
	}
	updates["updatedAt"] = time.Now().UTC()

	return s.engine.UpdateById(collName, id, updates)
}

// Delete removes a document by its identifier. Repeated deletes after a
// success report not-found.
func (s *DocumentStore) Delete(collName, id string) error {
	if err := validateID(id); err != nil {
		return err
	}
	return s.engine.DeleteById(collName, id)
}

// intersectStringSlices returns the IDs present in every slice, used to
// combine multiple index lookups with AND semantics
func intersectStringSlices(slices ...[]string) []string {
	if len(slices) == 0 {
		return nil
	}
	if len(slices) == 1 {
		return slices[0]
	}

	countMap := make(map[string]int)
	for _, slice := range slices {
		seen := make(map[string]bool, len(slice))
		for _, id := range slice {
			if !seen[id] {
				countMap[id]++
				seen[id] = true
			}
		}
	}

	var result []string
	for id, count := range countMap {
		if count == len(slices) {
			result = append(result, id)
		}
	}
	return result
}
