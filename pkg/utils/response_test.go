package utils

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/frostdev-ops/pbi-monitor-go/pkg/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func perform(t *testing.T, handler gin.HandlerFunc, path string) (*httptest.ResponseRecorder, Response) {
	t.Helper()
	r := gin.New()
	r.GET("/api/v1/thing", handler)
	r.NoRoute(handler)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w, resp
}

func TestSendSuccess(t *testing.T) {
	w, resp := perform(t, func(c *gin.Context) { SendSuccess(c, gin.H{"n": 1}) }, "/api/v1/thing")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Success)
	assert.Equal(t, map[string]interface{}{"n": float64(1)}, resp.Data)
	assert.NotEmpty(t, resp.Timestamp)
}

func TestSendAppError(t *testing.T) {
	w, resp := perform(t, func(c *gin.Context) {
		SendAppError(c, apperrors.Wrap(http.StatusBadRequest, errors.New("no points to save")))
	}, "/api/v1/thing")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, resp.Success)
	assert.Equal(t, "no points to save", resp.Error)

	w, resp = perform(t, func(c *gin.Context) { SendAppError(c, errors.New("db locked")) }, "/api/v1/thing")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "db locked", resp.Error)
}

func TestSendError_NotFoundSuggestions(t *testing.T) {
	w, resp := perform(t, func(c *gin.Context) { SendError(c, http.StatusNotFound, "not found") }, "/api/v1/workspace")
	assert.Equal(t, http.StatusNotFound, w.Code)
	details, ok := resp.Details.(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, details["suggestions"], "/api/v1/workspaces")
}
