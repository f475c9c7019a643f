package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// FieldType enumerates the closed set of supported field kinds
type FieldType string

const (
	FieldTypeString   FieldType = "String"
	FieldTypeNumber   FieldType = "Number"
	FieldTypeBoolean  FieldType = "Boolean"
	FieldTypeDate     FieldType = "Date"
	FieldTypeObjectID FieldType = "ObjectId"
	FieldTypeArray    FieldType = "Array"
	FieldTypeObject   FieldType = "Object"
	FieldTypeMixed    FieldType = "Mixed"
)

// FieldTypes lists every supported field type
func FieldTypes() []FieldType {
	return []FieldType{
		FieldTypeString, FieldTypeNumber, FieldTypeBoolean, FieldTypeDate,
		FieldTypeObjectID, FieldTypeArray, FieldTypeObject, FieldTypeMixed,
	}
}

// Valid reports whether ft is one of the supported field types
func (ft FieldType) Valid() bool {
	switch ft {
	case FieldTypeString, FieldTypeNumber, FieldTypeBoolean, FieldTypeDate,
		FieldTypeObjectID, FieldTypeArray, FieldTypeObject, FieldTypeMixed:
		return true
	}
	return false
}

// ParseFieldType maps a raw type name to a FieldType. Unknown names map to
// Mixed so that compilation stays total.
func ParseFieldType(s string) FieldType {
	for _, ft := range FieldTypes() {
		if strings.EqualFold(s, string(ft)) {
			return ft
		}
	}
	return FieldTypeMixed
}

// FieldDefinition describes one field's type contract within a schema
type FieldDefinition struct {
	Name      string      `json:"name" yaml:"name" msgpack:"name"`
	Type      FieldType   `json:"type" yaml:"type" msgpack:"type"`
	Required  bool        `json:"required,omitempty" yaml:"required,omitempty" msgpack:"required,omitempty"`
	Unique    bool        `json:"unique,omitempty" yaml:"unique,omitempty" msgpack:"unique,omitempty"`
	Index     bool        `json:"index,omitempty" yaml:"index,omitempty" msgpack:"index,omitempty"`
	Default   interface{} `json:"default,omitempty" yaml:"default,omitempty" msgpack:"default,omitempty"`
	Enum      []string    `json:"enum,omitempty" yaml:"enum,omitempty" msgpack:"enum,omitempty"`
	Min       *float64    `json:"min,omitempty" yaml:"min,omitempty" msgpack:"min,omitempty"`
	Max       *float64    `json:"max,omitempty" yaml:"max,omitempty" msgpack:"max,omitempty"`
	MinLength *int        `json:"minLength,omitempty" yaml:"minLength,omitempty" msgpack:"minLength,omitempty"`
	MaxLength *int        `json:"maxLength,omitempty" yaml:"maxLength,omitempty" msgpack:"maxLength,omitempty"`
	Pattern   string      `json:"pattern,omitempty" yaml:"pattern,omitempty" msgpack:"pattern,omitempty"`
	Ref       string      `json:"ref,omitempty" yaml:"ref,omitempty" msgpack:"ref,omitempty"`
}

// IndexDefinition describes a secondary index: field name to direction
// (1 ascending, -1 descending) plus options advisory to the store
type IndexDefinition struct {
	Fields     map[string]int `json:"fields" yaml:"fields" msgpack:"fields"`
	Unique     bool           `json:"unique,omitempty" yaml:"unique,omitempty" msgpack:"unique,omitempty"`
	Sparse     bool           `json:"sparse,omitempty" yaml:"sparse,omitempty" msgpack:"sparse,omitempty"`
	Background bool           `json:"background,omitempty" yaml:"background,omitempty" msgpack:"background,omitempty"`
}

// Name derives a stable index name from its fields, e.g. "age_1_name_-1"
func (ix IndexDefinition) Name() string {
	keys := make([]string, 0, len(ix.Fields))
	for field := range ix.Fields {
		keys = append(keys, field)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, field := range keys {
		parts = append(parts, fmt.Sprintf("%s_%d", field, ix.Fields[field]))
	}
	return strings.Join(parts, "_")
}

// FieldNames returns the indexed field names in sorted order
func (ix IndexDefinition) FieldNames() []string {
	keys := make([]string, 0, len(ix.Fields))
	for field := range ix.Fields {
		keys = append(keys, field)
	}
	sort.Strings(keys)
	return keys
}

// SchemaDefinition is a registered structural contract for one collection.
// At most one active definition may exist per collection name.
type SchemaDefinition struct {
	ID              string                 `json:"id" yaml:"-" msgpack:"id"`
	CollectionName  string                 `json:"collectionName" yaml:"collectionName" msgpack:"collectionName"`
	DisplayName     string                 `json:"displayName" yaml:"displayName" msgpack:"displayName"`
	Description     string                 `json:"description,omitempty" yaml:"description,omitempty" msgpack:"description,omitempty"`
	Fields          []FieldDefinition      `json:"fields" yaml:"fields" msgpack:"fields"`
	Indexes         []IndexDefinition      `json:"indexes,omitempty" yaml:"indexes,omitempty" msgpack:"indexes,omitempty"`
	ValidationRules map[string]interface{} `json:"validationRules,omitempty" yaml:"validationRules,omitempty" msgpack:"validationRules,omitempty"`
	IsActive        bool                   `json:"isActive" yaml:"-" msgpack:"isActive"`
	CreatedAt       time.Time              `json:"createdAt" yaml:"-" msgpack:"createdAt"`
	UpdatedAt       time.Time              `json:"updatedAt" yaml:"-" msgpack:"updatedAt"`
}

// NormalizedCollectionName returns the canonical (trimmed, lowercase) form
// of the schema's collection name
func (s *SchemaDefinition) NormalizedCollectionName() string {
	return NormalizeCollectionName(s.CollectionName)
}

// NormalizeCollectionName canonicalizes a collection name for lookups
func NormalizeCollectionName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
