package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuccessWritesEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set("request_id", "rid-1")

	Success(c, 0, gin.H{"ok": true}, "done", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "rid-1", body["request_id"])
	assert.Equal(t, "done", body["message"])
	assert.Equal(t, map[string]any{"ok": true}, body["data"])
	assert.NotContains(t, body, "error")
}

func TestErrorWritesEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	resp := Error[any](c, 0, "bad", map[string]string{"email": "is required"})

	assert.Equal(t, http.StatusBadRequest, resp.Status)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	assert.Equal(t, map[string]any{"email": "is required"}, body["error"])
	assert.NotContains(t, body, "data")
}
