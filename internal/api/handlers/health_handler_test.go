package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthStatus(t *testing.T) {
	h := NewHealthHandler(t.TempDir())

	rec := httptest.NewRecorder()
	h.Status(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
	assert.Contains(t, rec.Body.String(), "usedPercent")
}

func TestGreetings(t *testing.T) {
	rec := httptest.NewRecorder()
	Index(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "hello everyone")

	rec = httptest.NewRecorder()
	Hello(rec, httptest.NewRequest(http.MethodGet, "/hello?user_name=Polina", nil))
	assert.Contains(t, rec.Body.String(), "hello Polina")

	rec = httptest.NewRecorder()
	Hello(rec, httptest.NewRequest(http.MethodGet, "/hello", nil))
	assert.Contains(t, rec.Body.String(), "hello anon")
}
