package schema

import (
	"encoding/json"
	"fmt"

	"github.com/schemadb/schemadb/pkg/domain"
)

// toDocument flattens a schema definition into the document shape stored in
// the schemas collection, using the wire field names
func toDocument(def *domain.SchemaDefinition) (domain.Document, error) {
	data, err := json.Marshal(def)
	if err != nil {
		return nil, fmt.Errorf("failed to encode schema definition: %w", err)
	}
	var doc domain.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode schema definition: %w", err)
	}
	delete(doc, "id")
	return doc, nil
}

// fromDocument rebuilds a schema definition from its stored document
func fromDocument(doc domain.Document) (*domain.SchemaDefinition, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode schema document: %w", err)
	}
	var def domain.SchemaDefinition
	if err := json.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("failed to decode schema document: %w", err)
	}
	def.ID = doc.ID()
	return &def, nil
}
