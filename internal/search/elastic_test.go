package search

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docvoice/internal/storage"
)

func TestEscapeWildcard(t *testing.T) {
	assert.Equal(t, "models", escapeWildcard("models"))
	assert.Equal(t, `what\?`, escapeWildcard("what?"))
	assert.Equal(t, `\*args`, escapeWildcard("*args"))
	assert.Equal(t, `C:\\path`, escapeWildcard(`C:\path`))
}

func TestFindQuery(t *testing.T) {
	data, err := json.Marshal(findQuery("Model?", 5))
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"query": {"bool": {
			"should": [
				{"wildcard": {"title": {"value": "*Model\\?*", "case_insensitive": true}}},
				{"wildcard": {"content": {"value": "*Model\\?*", "case_insensitive": true}}}
			],
			"minimum_should_match": 1
		}},
		"sort": [{"id": "asc"}],
		"size": 5
	}`, string(data))

	_, hasSize := findQuery("x", 0)["size"]
	assert.False(t, hasSize)
}

func TestSchemaIsValidJSON(t *testing.T) {
	var v map[string]any
	require.NoError(t, json.Unmarshal(schemaJSON, &v))
	assert.Contains(t, v, "mappings")
}

// fakeES answers just enough of the Elasticsearch API for the client.
func fakeES(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	c, err := NewClient(srv.URL, "sections")
	require.NoError(t, err)
	return c
}

func TestFindSections(t *testing.T) {
	var gotPath, gotBody string
	c := fakeES(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		_, _ = io.WriteString(w, `{"hits":{"hits":[
			{"_source":{"id":1,"title":"Models","content":"A model","url":"https://docs.example.com/models/","level":"h1","language":"en"}},
			{"_source":{"id":4,"title":"Fields","content":"models have fields","url":"https://docs.example.com/models/","level":"h2","language":"en"}}
		]}}`)
	})

	sections, err := c.FindSections(context.Background(), "models", 5)
	require.NoError(t, err)
	assert.Equal(t, "/sections/_search", gotPath)
	assert.True(t, strings.Contains(gotBody, `"*models*"`))
	require.Len(t, sections, 2)
	assert.Equal(t, int64(1), sections[0].ID)
	assert.Equal(t, "Fields", sections[1].Title)
}

func TestGetSectionNotFound(t *testing.T) {
	c := fakeES(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"_index":"sections","_id":"9","found":false}`)
	})

	_, err := c.GetSection(context.Background(), 9)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestGetSection(t *testing.T) {
	c := fakeES(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/sections/_doc/3", r.URL.Path)
		_, _ = io.WriteString(w, `{"_id":"3","found":true,"_source":{"id":3,"title":"Views","content":"A view","url":"u","level":"h1","language":"en"}}`)
	})

	s, err := c.GetSection(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, "Views", s.Title)
}
