package helpers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFakeES(t *testing.T, exists bool, created *string) []string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		switch r.Method {
		case http.MethodHead:
			if exists {
				w.WriteHeader(http.StatusOK)
				return
			}
			w.WriteHeader(http.StatusNotFound)
		case http.MethodPut:
			b, _ := io.ReadAll(r.Body)
			*created = string(b)
			_, _ = io.WriteString(w, `{"acknowledged":true}`)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}))
	t.Cleanup(srv.Close)
	return []string{srv.URL}
}

func TestESEnsureIndex(t *testing.T) {
	mapping := `{"mappings":{"properties":{"name":{"type":"text"}}}}`

	t.Run("creates missing index", func(t *testing.T) {
		var body string
		es, err := NewESClient(newFakeES(t, false, &body), "", "")
		require.NoError(t, err)

		created, err := ESEnsureIndex(context.Background(), es, "profiles", mapping)
		require.NoError(t, err)
		assert.True(t, created)
		assert.JSONEq(t, mapping, body)
	})

	t.Run("existing index is left alone", func(t *testing.T) {
		var body string
		es, err := NewESClient(newFakeES(t, true, &body), "", "")
		require.NoError(t, err)

		created, err := ESEnsureIndex(context.Background(), es, "profiles", mapping)
		require.NoError(t, err)
		assert.False(t, created)
		assert.Empty(t, body)
	})
}
