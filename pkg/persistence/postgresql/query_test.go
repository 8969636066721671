package postgresql

import (
	"testing"

	"github.com/metaarchitect/research-engine/pkg/persistence"
	"github.com/stretchr/testify/assert"
)

func TestListQuery(t *testing.T) {
	query, args := listQuery("ideas", persistence.ListOptions{
		Filter: persistence.Where(
			persistence.Eq("Status", "selected"),
			persistence.IsEmpty("research_started_at"),
		),
		Sort:       []persistence.Sort{{Field: "captured_at"}},
		MaxRecords: 1,
	})

	assert.Contains(t, query, "WHERE tbl = $1")
	assert.Contains(t, query, "fields->>$2::text = $3::text")
	assert.Contains(t, query, "btrim(COALESCE(fields->>$4::text, '')) = ''")
	assert.Contains(t, query, "ORDER BY COALESCE(fields->>$5::text, '') ASC, seq ASC")
	assert.Contains(t, query, "LIMIT $6")
	assert.Equal(t, []any{"ideas", "Status", "selected", "research_started_at", "captured_at", 1}, args)
}

func TestListQuery_NoOptions(t *testing.T) {
	query, args := listQuery("logs", persistence.ListOptions{})

	assert.Equal(t, "SELECT id, created_at, fields FROM records WHERE tbl = $1 ORDER BY seq ASC", query)
	assert.Equal(t, []any{"logs"}, args)
}

func TestListQuery_NotEmptyDescending(t *testing.T) {
	query, _ := listQuery("ideas", persistence.ListOptions{
		Filter: persistence.Where(persistence.NotEmpty("content_brief")),
		Sort:   []persistence.Sort{{Field: "captured_at", Direction: persistence.SortDesc}},
	})

	assert.Contains(t, query, "AND NOT (btrim")
	assert.Contains(t, query, "DESC, seq ASC")
}
