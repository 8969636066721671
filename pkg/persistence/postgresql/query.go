package postgresql

import (
	"fmt"
	"strings"

	"github.com/metaarchitect/research-engine/pkg/persistence"
)

// listQuery renders a List call as SQL. Field names are always bound as parameters.
func listQuery(table string, opts persistence.ListOptions) (string, []any) {
	var builder strings.Builder

	args := []any{table}

	builder.WriteString("SELECT id, created_at, fields FROM records WHERE tbl = $1")

	for _, c := range opts.Filter {
		args = append(args, c.Field)
		field := len(args)

		switch c.Op {
		case persistence.OpEq:
			args = append(args, c.Value)
			fmt.Fprintf(&builder, " AND fields->>$%d::text = $%d::text", field, len(args))
		case persistence.OpEmpty:
			fmt.Fprintf(&builder, " AND %s", blank(field))
		case persistence.OpNotEmpty:
			fmt.Fprintf(&builder, " AND NOT %s", blank(field))
		}
	}

	builder.WriteString(" ORDER BY ")

	for _, s := range opts.Sort {
		args = append(args, s.Field)

		direction := "ASC"
		if s.Direction == persistence.SortDesc {
			direction = "DESC"
		}

		fmt.Fprintf(&builder, "COALESCE(fields->>$%d::text, '') %s, ", len(args), direction)
	}

	builder.WriteString("seq ASC")

	if opts.MaxRecords > 0 {
		args = append(args, opts.MaxRecords)
		fmt.Fprintf(&builder, " LIMIT $%d", len(args))
	}

	return builder.String(), args
}

// blank matches an absent field, JSON null, whitespace-only text and empty arrays or objects.
func blank(field int) string {
	return fmt.Sprintf(
		"(btrim(COALESCE(fields->>$%[1]d::text, '')) = '' OR fields->$%[1]d::text IN ('[]'::jsonb, '{}'::jsonb))",
		field,
	)
}
