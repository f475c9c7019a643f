package model

import (
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/schemadb/schemadb/pkg/domain"
	"github.com/schemadb/schemadb/pkg/query"
)

// CompiledModel is the runtime validator derived from a schema definition,
// or the permissive schemaless model when no schema is registered
type CompiledModel struct {
	Collection string
	Schemaless bool
	rules      []fieldRule
}

// fieldRule is one field's compiled constraints. The pattern is compiled
// once here and reused across validations.
type fieldRule struct {
	def     domain.FieldDefinition
	pattern *regexp.Regexp
}

// Compile turns a schema definition into a runtime validator. Compilation
// is pure, total, and never touches the database: unknown field types fall
// back to the unconstrained Mixed rule, and patterns that fail to compile
// are dropped rather than failing the whole model.
func Compile(collection string, def *domain.SchemaDefinition) *CompiledModel {
	if def == nil {
		return &CompiledModel{Collection: collection, Schemaless: true}
	}

	compiled := &CompiledModel{
		Collection: collection,
		rules:      make([]fieldRule, 0, len(def.Fields)),
	}
	for _, field := range def.Fields {
		if !field.Type.Valid() {
			field.Type = domain.ParseFieldType(string(field.Type))
		}
		rule := fieldRule{def: field}
		if field.Pattern != "" {
			if re, err := regexp.Compile(field.Pattern); err == nil {
				rule.pattern = re
			}
		}
		compiled.rules = append(compiled.rules, rule)
	}
	return compiled
}

// ApplyDefaults fills absent fields that declare a default value
func (m *CompiledModel) ApplyDefaults(doc domain.Document) {
	for _, rule := range m.rules {
		if rule.def.Default == nil {
			continue
		}
		if _, exists := doc[rule.def.Name]; !exists {
			doc[rule.def.Name] = rule.def.Default
		}
	}
}

// Validate checks a document against the compiled constraints. Failures
// name every violating field. Schemaless models accept any shape.
func (m *CompiledModel) Validate(doc domain.Document) error {
	if m.Schemaless {
		return nil
	}

	var fieldErrors []domain.FieldError
	for _, rule := range m.rules {
		value, exists := doc[rule.def.Name]
		if !exists || value == nil {
			if rule.def.Required {
				fieldErrors = append(fieldErrors, domain.FieldError{
					Field: rule.def.Name, Message: "is required",
				})
			}
			continue
		}
		if msg := rule.check(value); msg != "" {
			fieldErrors = append(fieldErrors, domain.FieldError{
				Field: rule.def.Name, Message: msg,
			})
		}
	}

	if len(fieldErrors) > 0 {
		return domain.NewValidationError(
			fmt.Sprintf("document does not satisfy schema for collection %s", m.Collection),
			fieldErrors...)
	}
	return nil
}

// check validates a present, non-nil value against one field's constraints,
// returning an empty string on success
func (r fieldRule) check(value interface{}) string {
	switch r.def.Type {
	case domain.FieldTypeString:
		str, ok := value.(string)
		if !ok {
			return "must be a string"
		}
		if r.def.MinLength != nil && len(str) < *r.def.MinLength {
			return fmt.Sprintf("must be at least %d characters", *r.def.MinLength)
		}
		if r.def.MaxLength != nil && len(str) > *r.def.MaxLength {
			return fmt.Sprintf("must be at most %d characters", *r.def.MaxLength)
		}
		if len(r.def.Enum) > 0 && !containsString(r.def.Enum, str) {
			return fmt.Sprintf("must be one of %v", r.def.Enum)
		}
		if r.pattern != nil && !r.pattern.MatchString(str) {
			return fmt.Sprintf("must match pattern %s", r.def.Pattern)
		}
	case domain.FieldTypeNumber:
		num, ok := query.ToFloat64(value)
		if !ok {
			return "must be a number"
		}
		if r.def.Min != nil && num < *r.def.Min {
			return fmt.Sprintf("must be at least %v", *r.def.Min)
		}
		if r.def.Max != nil && num > *r.def.Max {
			return fmt.Sprintf("must be at most %v", *r.def.Max)
		}
	case domain.FieldTypeBoolean:
		if _, ok := value.(bool); !ok {
			return "must be a boolean"
		}
	case domain.FieldTypeDate:
		if !isDate(value) {
			return "must be a date"
		}
	case domain.FieldTypeObjectID:
		str, ok := value.(string)
		if !ok {
			return "must be an ObjectId string"
		}
		if _, err := primitive.ObjectIDFromHex(str); err != nil {
			return "must be a well-formed ObjectId"
		}
	case domain.FieldTypeArray:
		if _, ok := value.([]interface{}); !ok {
			return "must be an array"
		}
	case domain.FieldTypeObject:
		switch value.(type) {
		case map[string]interface{}, domain.Document:
		default:
			return "must be an object"
		}
	case domain.FieldTypeMixed:
		// unconstrained
	}
	return ""
}

func isDate(value interface{}) bool {
	switch v := value.(type) {
	case time.Time:
		return true
	case string:
		_, err := time.Parse(time.RFC3339, v)
		return err == nil
	default:
		return false
	}
}

func containsString(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}
