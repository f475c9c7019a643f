package query

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/schemadb/schemadb/pkg/domain"
)

const (
	// DefaultLimit is the page size applied when the caller omits limit
	DefaultLimit = 10
	// MaxLimit caps the page size; larger requests are clamped
	MaxLimit = 1000
)

// reserved parameter names control pagination, sort, and projection instead
// of contributing filter conditions
var reservedParams = map[string]bool{
	"page":   true,
	"limit":  true,
	"sort":   true,
	"fields": true,
}

// Translate parses raw query parameters into a structured filter, sort
// spec, projection, and pagination window. It is a pure parse step and
// never touches the database.
func Translate(params url.Values) (*domain.ParsedQuery, error) {
	page, limit, err := parsePagination(params)
	if err != nil {
		return nil, err
	}

	parsed := &domain.ParsedQuery{
		Filter: make(map[string][]domain.Condition),
		Sort:   parseSort(params.Get("sort")),
		Page:   page,
		Limit:  limit,
		Skip:   (page - 1) * limit,
	}

	if fields := params.Get("fields"); fields != "" {
		for _, field := range strings.Split(fields, ",") {
			if field = strings.TrimSpace(field); field != "" {
				parsed.Projection = append(parsed.Projection, field)
			}
		}
	}

	for key, values := range params {
		if reservedParams[key] {
			continue
		}
		for _, raw := range values {
			cond, err := parseCondition(key, raw)
			if err != nil {
				return nil, err
			}
			parsed.Filter[key] = append(parsed.Filter[key], cond)
		}
	}

	return parsed, nil
}

// parsePagination validates page and limit, applying defaults and clamping
// limit to MaxLimit
func parsePagination(params url.Values) (page, limit int, err error) {
	page, limit = 1, DefaultLimit

	if raw := params.Get("page"); raw != "" {
		page, err = strconv.Atoi(raw)
		if err != nil {
			return 0, 0, domain.NewValidationError("invalid pagination",
				domain.FieldError{Field: "page", Message: fmt.Sprintf("not an integer: %q", raw)})
		}
		if page < 1 {
			return 0, 0, domain.NewValidationError("invalid pagination",
				domain.FieldError{Field: "page", Message: "must be at least 1"})
		}
	}

	if raw := params.Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil {
			return 0, 0, domain.NewValidationError("invalid pagination",
				domain.FieldError{Field: "limit", Message: fmt.Sprintf("not an integer: %q", raw)})
		}
		if limit < 1 {
			return 0, 0, domain.NewValidationError("invalid pagination",
				domain.FieldError{Field: "limit", Message: "must be at least 1"})
		}
		if limit > MaxLimit {
			limit = MaxLimit
		}
	}

	return page, limit, nil
}

// parseSort parses a comma-separated sort list where a leading '-' means
// descending. An empty spec falls back to newest-first by creation time.
func parseSort(raw string) []domain.SortField {
	if raw == "" {
		return []domain.SortField{{Field: "createdAt", Descending: true}}
	}
	var sort []domain.SortField
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if strings.HasPrefix(part, "-") {
			sort = append(sort, domain.SortField{Field: part[1:], Descending: true})
		} else {
			sort = append(sort, domain.SortField{Field: part, Descending: false})
		}
	}
	if len(sort) == 0 {
		return []domain.SortField{{Field: "createdAt", Descending: true}}
	}
	return sort
}

// parseCondition maps a raw parameter value onto a predicate, checking
// operator prefixes in precedence order
func parseCondition(field, raw string) (domain.Condition, error) {
	switch {
	case strings.HasPrefix(raw, ">="):
		return numericCondition(field, domain.OpGte, raw[2:])
	case strings.HasPrefix(raw, "<="):
		return numericCondition(field, domain.OpLte, raw[2:])
	case strings.HasPrefix(raw, ">"):
		return numericCondition(field, domain.OpGt, raw[1:])
	case strings.HasPrefix(raw, "<"):
		return numericCondition(field, domain.OpLt, raw[1:])
	case strings.HasPrefix(raw, "!="):
		return domain.Condition{Op: domain.OpNe, Value: parseLiteral(raw[2:])}, nil
	case strings.HasPrefix(raw, "~"):
		re, err := regexp.Compile("(?i)" + raw[1:])
		if err != nil {
			return domain.Condition{}, domain.NewValidationError("invalid filter",
				domain.FieldError{Field: field, Message: fmt.Sprintf("bad pattern: %v", err)})
		}
		return domain.Condition{Op: domain.OpRegex, Regex: re}, nil
	case strings.Contains(raw, ","):
		parts := strings.Split(raw, ",")
		values := make([]interface{}, 0, len(parts))
		for _, part := range parts {
			values = append(values, parseLiteral(part))
		}
		return domain.Condition{Op: domain.OpIn, Values: values}, nil
	default:
		return domain.Condition{Op: domain.OpEq, Value: parseLiteral(raw)}, nil
	}
}

// numericCondition parses the operand of a comparison operator
func numericCondition(field string, op domain.CompareOp, operand string) (domain.Condition, error) {
	num, err := strconv.ParseFloat(strings.TrimSpace(operand), 64)
	if err != nil {
		return domain.Condition{}, domain.NewValidationError("invalid filter",
			domain.FieldError{Field: field, Message: fmt.Sprintf("comparison needs a numeric operand, got %q", operand)})
	}
	return domain.Condition{Op: op, Value: num}, nil
}

// parseLiteral converts a raw string to a boolean, number, or string literal
func parseLiteral(raw string) interface{} {
	switch raw {
	case "true":
		return true
	case "false":
		return false
	}
	if num, err := strconv.ParseFloat(raw, 64); err == nil {
		return num
	}
	return raw
}
