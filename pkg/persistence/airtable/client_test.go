package airtable

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/metaarchitect/research-engine/pkg/persistence"
	"github.com/metaarchitect/research-engine/pkg/remote"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(Options{
		BaseURL: server.URL,
		BaseID:  "appBASE",
		Token:   "pat-secret",
	}, slog.Default())
	require.NoError(t, err)

	return client
}

func TestFormula(t *testing.T) {
	tests := []struct {
		name     string
		filter   persistence.Filter
		expected string
	}{
		{"no conditions", nil, ""},
		{"single equality", persistence.Where(persistence.Eq("name", "metaArchitect")), `{name} = "metaArchitect"`},
		{
			"selected and unlocked",
			persistence.Where(persistence.Eq("Status", "selected"), persistence.IsEmpty("research_started_at")),
			`AND({Status} = "selected", {research_started_at} = "")`,
		},
		{"not empty", persistence.Where(persistence.NotEmpty("content_brief")), `{content_brief} != ""`},
		{"quotes are escaped", persistence.Where(persistence.Eq("Topic", `say "hi"`)), `{Topic} = "say \"hi\""`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Formula(tt.filter))
		})
	}
}

func TestNewClient_RequiresCredentials(t *testing.T) {
	_, err := NewClient(Options{Token: "x"}, slog.Default())
	assert.Error(t, err)

	_, err = NewClient(Options{BaseID: "app"}, slog.Default())
	assert.Error(t, err)
}

func TestClient_ListFollowsPagination(t *testing.T) {
	var (
		mu      sync.Mutex
		queries []string
	)

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		queries = append(queries, r.URL.RawQuery)
		mu.Unlock()

		assert.Equal(t, "/appBASE/tblIdeas", r.URL.Path)
		assert.Equal(t, "Bearer pat-secret", r.Header.Get("Authorization"))
		assert.Equal(t, `{Status} = "selected"`, r.URL.Query().Get("filterByFormula"))
		assert.Equal(t, "captured_at", r.URL.Query().Get("sort[0][field]"))
		assert.Equal(t, "asc", r.URL.Query().Get("sort[0][direction]"))

		if r.URL.Query().Get("offset") == "" {
			_, _ = io.WriteString(w, `{"records":[{"id":"rec1","fields":{"Topic":"one"}}],"offset":"itrNEXT"}`)

			return
		}

		assert.Equal(t, "itrNEXT", r.URL.Query().Get("offset"))
		_, _ = io.WriteString(w, `{"records":[{"id":"rec2","fields":{"Topic":"two"}}]}`)
	})

	records, err := client.List(t.Context(), "tblIdeas", persistence.ListOptions{
		Filter: persistence.Where(persistence.Eq("Status", "selected")),
		Sort:   []persistence.Sort{{Field: "captured_at"}},
	})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "rec1", records[0].ID)
	assert.Equal(t, "two", records[1].Fields["Topic"])
	assert.Len(t, queries, 2)
}

func TestClient_CreateAndUpdate(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		switch r.Method {
		case http.MethodPost:
			assert.Equal(t, "/appBASE/tblLogs", r.URL.Path)
			assert.Equal(t, "lock", body["fields"]["step_name"])
			_, _ = io.WriteString(w, `{"id":"recLOG","createdTime":"2026-02-28T10:00:00.000Z","fields":{"step_name":"lock"}}`)
		case http.MethodPatch:
			assert.Equal(t, "/appBASE/tblIdeas/rec1", r.URL.Path)
			assert.Contains(t, body["fields"], "research_started_at")
			assert.Nil(t, body["fields"]["research_started_at"])
			_, _ = io.WriteString(w, `{"id":"rec1","fields":{"Status":"Proposed"}}`)
		default:
			t.Errorf("unexpected method %s", r.Method)
		}
	})

	created, err := client.Create(t.Context(), "tblLogs", map[string]any{"step_name": "lock"})
	require.NoError(t, err)
	assert.Equal(t, "recLOG", created.ID)
	assert.False(t, created.CreatedTime.IsZero())

	updated, err := client.Update(t.Context(), "tblIdeas", "rec1", map[string]any{
		"research_started_at": nil,
		"Status":              "Proposed",
	})
	require.NoError(t, err)
	assert.Equal(t, "Proposed", updated.Fields["Status"])
}

func TestClient_ErrorsBecomeRemoteErrors(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = io.WriteString(w, `{"error":{"type":"INVALID_VALUE_FOR_COLUMN","message":"bad status"}}`)
	})

	_, err := client.Create(t.Context(), "tblIdeas", map[string]any{"Status": 42})
	require.Error(t, err)
	assert.True(t, remote.IsRemote(err))

	var remoteErr *remote.Error
	require.ErrorAs(t, err, &remoteErr)
	assert.Equal(t, http.StatusUnprocessableEntity, remoteErr.StatusCode)
	assert.Contains(t, remoteErr.Detail, "INVALID_VALUE_FOR_COLUMN")
}

func TestClient_NotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"error":"NOT_FOUND"}`)
	})

	_, err := client.Get(t.Context(), "tblIdeas", "recMISSING")
	require.Error(t, err)
	assert.True(t, persistence.IsRecordNotFound(err))
	assert.True(t, remote.IsRemote(err))
}

func TestClient_Delete(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		_, _ = io.WriteString(w, `{"id":"rec9","deleted":true}`)
	})

	deleted, err := client.Delete(t.Context(), "tblHooks", "rec9")
	require.NoError(t, err)
	assert.Equal(t, "rec9", deleted.ID)
}
