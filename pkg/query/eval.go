package query

import (
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/schemadb/schemadb/pkg/domain"
)

// Matches checks whether a document satisfies every condition in the filter
func Matches(doc domain.Document, filter map[string][]domain.Condition) bool {
	for field, conditions := range filter {
		actual, exists := doc[field]
		if !exists {
			return false
		}
		for _, cond := range conditions {
			if !matchesCondition(actual, cond) {
				return false
			}
		}
	}
	return true
}

func matchesCondition(actual interface{}, cond domain.Condition) bool {
	switch cond.Op {
	case domain.OpEq:
		return equalValues(actual, cond.Value)
	case domain.OpNe:
		return !equalValues(actual, cond.Value)
	case domain.OpGt, domain.OpGte, domain.OpLt, domain.OpLte:
		actualNum, ok1 := ToFloat64(actual)
		expectedNum, ok2 := ToFloat64(cond.Value)
		if !ok1 || !ok2 {
			return false
		}
		switch cond.Op {
		case domain.OpGt:
			return actualNum > expectedNum
		case domain.OpGte:
			return actualNum >= expectedNum
		case domain.OpLt:
			return actualNum < expectedNum
		default:
			return actualNum <= expectedNum
		}
	case domain.OpIn:
		for _, candidate := range cond.Values {
			if equalValues(actual, candidate) {
				return true
			}
		}
		return false
	case domain.OpRegex:
		str, ok := actual.(string)
		if !ok {
			return false
		}
		return cond.Regex.MatchString(str)
	default:
		return false
	}
}

// equalValues compares two values for equality across the value kinds a
// document can hold, tolerating numeric type differences
func equalValues(actual, expected interface{}) bool {
	if actual == nil || expected == nil {
		return actual == nil && expected == nil
	}
	if actualNum, ok1 := ToFloat64(actual); ok1 {
		if expectedNum, ok2 := ToFloat64(expected); ok2 {
			return actualNum == expectedNum
		}
		return false
	}
	if actualStr, ok1 := actual.(string); ok1 {
		expectedStr, ok2 := expected.(string)
		return ok2 && actualStr == expectedStr
	}
	if actualBool, ok1 := actual.(bool); ok1 {
		expectedBool, ok2 := expected.(bool)
		return ok2 && actualBool == expectedBool
	}
	return reflect.DeepEqual(actual, expected)
}

// ToFloat64 converts the numeric types a document can hold to float64
func ToFloat64(value interface{}) (float64, bool) {
	switch v := value.(type) {
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
	default:
		return 0, false
	}
}

// SortDocuments stably sorts documents by the given sort specification,
// breaking remaining ties by _id for deterministic pagination
func SortDocuments(docs []domain.Document, spec []domain.SortField) {
	sort.SliceStable(docs, func(i, j int) bool {
		for _, sf := range spec {
			cmp := compareValues(docs[i][sf.Field], docs[j][sf.Field])
			if cmp == 0 {
				continue
			}
			if sf.Descending {
				return cmp > 0
			}
			return cmp < 0
		}
		return docs[i].ID() < docs[j].ID()
	})
}

// compareValues orders two document values. Missing values sort first,
// mixed kinds fall back to string comparison.
func compareValues(a, b interface{}) int {
	if a == nil && b == nil {
		return 0
	}
	if a == nil {
		return -1
	}
	if b == nil {
		return 1
	}
	if aTime, ok1 := toTime(a); ok1 {
		if bTime, ok2 := toTime(b); ok2 {
			switch {
			case aTime.Before(bTime):
				return -1
			case aTime.After(bTime):
				return 1
			default:
				return 0
			}
		}
	}
	if aNum, ok1 := ToFloat64(a); ok1 {
		if bNum, ok2 := ToFloat64(b); ok2 {
			switch {
			case aNum < bNum:
				return -1
			case aNum > bNum:
				return 1
			default:
				return 0
			}
		}
	}
	if aStr, ok1 := a.(string); ok1 {
		if bStr, ok2 := b.(string); ok2 {
			return strings.Compare(aStr, bStr)
		}
	}
	if aBool, ok1 := a.(bool); ok1 {
		if bBool, ok2 := b.(bool); ok2 {
			switch {
			case aBool == bBool:
				return 0
			case bBool:
				return -1
			default:
				return 1
			}
		}
	}
	return strings.Compare(stringify(a), stringify(b))
}

func toTime(value interface{}) (time.Time, bool) {
	switch v := value.(type) {
	case time.Time:
		return v, true
	case string:
		if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func stringify(value interface{}) string {
	if s, ok := value.(string); ok {
		return s
	}
	return reflect.TypeOf(value).String()
}

// Project copies only the requested fields from a document. The primary
// identifier is always included. A nil field list means all fields.
func Project(doc domain.Document, fields []string) domain.Document {
	if len(fields) == 0 {
		return doc
	}
	projected := make(domain.Document, len(fields)+1)
	if id, exists := doc["_id"]; exists {
		projected["_id"] = id
	}
	for _, field := range fields {
		if val, exists := doc[field]; exists {
			projected[field] = val
		}
	}
	return projected
}
