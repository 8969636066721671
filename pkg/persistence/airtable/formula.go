package airtable

import (
	"fmt"
	"strings"

	"github.com/metaarchitect/research-engine/pkg/persistence"
)

// Formula renders a filter as an Airtable filterByFormula expression.
func Formula(filter persistence.Filter) string {
	if len(filter) == 0 {
		return ""
	}

	terms := make([]string, 0, len(filter))
	for _, c := range filter {
		terms = append(terms, term(c))
	}

	if len(terms) == 1 {
		return terms[0]
	}

	return "AND(" + strings.Join(terms, ", ") + ")"
}

func term(c persistence.Condition) string {
	field := "{" + c.Field + "}"

	switch c.Op {
	case persistence.OpEmpty:
		return field + ` = ""`
	case persistence.OpNotEmpty:
		return field + ` != ""`
	default:
		return fmt.Sprintf("%s = %s", field, quote(c.Value))
	}
}

func quote(value string) string {
	escaped := strings.ReplaceAll(value, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `"`, `\"`)

	return `"` + escaped + `"`
}
