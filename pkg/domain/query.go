package domain

import "regexp"

// CompareOp identifies a filter predicate operator
type CompareOp string

const (
	OpEq    CompareOp = "eq"
	OpNe    CompareOp = "ne"
	OpGt    CompareOp = "gt"
	OpGte   CompareOp = "gte"
	OpLt    CompareOp = "lt"
	OpLte   CompareOp = "lte"
	OpIn    CompareOp = "in"
	OpRegex CompareOp = "regex"
)

// Condition is a single field predicate in a parsed filter
type Condition struct {
	Op     CompareOp
	Value  interface{}   // scalar operand for eq/ne/gt/gte/lt/lte
	Values []interface{} // operand list for in
	Regex  *regexp.Regexp
}

// SortField is one component of a sort specification
type SortField struct {
	Field      string
	Descending bool
}

// ParsedQuery is the structured result of translating a raw query string:
// filter, sort, projection, and pagination window. A field's conditions are
// conjunctive, so repeated parameters narrow the match (e.g. a range).
type ParsedQuery struct {
	Filter     map[string][]Condition
	Sort       []SortField
	Projection []string // nil means all fields
	Page       int
	Limit      int
	Skip       int
}
