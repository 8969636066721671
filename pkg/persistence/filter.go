package persistence

import (
	"fmt"
	"reflect"
	"strings"
)

// Operator compares a record field in a Condition.
type Operator string

const (
	OpEq       Operator = "eq"
	OpEmpty    Operator = "empty"
	OpNotEmpty Operator = "not_empty"
)

// Condition is one predicate on a record field.
type Condition struct {
	Field string
	Op    Operator
	Value string
}

// Filter is a conjunction of conditions. Backends render it in their own query language.
type Filter []Condition

// Eq matches records whose field equals value.
func Eq(field, value string) Condition {
	return Condition{Field: field, Op: OpEq, Value: value}
}

// IsEmpty matches records whose field is absent or blank.
func IsEmpty(field string) Condition {
	return Condition{Field: field, Op: OpEmpty}
}

// NotEmpty matches records whose field holds a value.
func NotEmpty(field string) Condition {
	return Condition{Field: field, Op: OpNotEmpty}
}

// Where builds a filter from conditions.
func Where(conditions ...Condition) Filter {
	return Filter(conditions)
}

// Match evaluates the filter against raw fields.
func (f Filter) Match(fields map[string]any) bool {
	for _, c := range f {
		if !c.Match(fields) {
			return false
		}
	}

	return true
}

// Match evaluates one condition against raw fields.
func (c Condition) Match(fields map[string]any) bool {
	value, ok := fields[c.Field]

	switch c.Op {
	case OpEq:
		return ok && FieldString(value) == c.Value
	case OpEmpty:
		return !ok || isBlank(value)
	case OpNotEmpty:
		return ok && !isBlank(value)
	default:
		return false
	}
}

// Validate rejects conditions a backend cannot render.
func (f Filter) Validate() error {
	for i, c := range f {
		if strings.TrimSpace(c.Field) == "" {
			return fmt.Errorf("filter condition %d has no field", i)
		}

		switch c.Op {
		case OpEq, OpEmpty, OpNotEmpty:
		default:
			return fmt.Errorf("filter condition %d has unsupported operator %q", i, c.Op)
		}
	}

	return nil
}

// FieldString renders a field value for comparison and sorting.
func FieldString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

func isBlank(value any) bool {
	if value == nil {
		return true
	}

	if s, ok := value.(string); ok {
		return strings.TrimSpace(s) == ""
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() == 0
	default:
		return false
	}
}
