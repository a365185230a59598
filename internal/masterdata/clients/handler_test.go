package clients

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type allowAll struct{}

func (allowAll) Require(string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler { return next }
}

func newTestRouter() http.Handler {
	h := NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), NewService(newMemoryRepo(), nil), allowAll{})
	r := chi.NewRouter()
	r.Route("/api/clients", h.MountRoutes)
	return r
}

func send(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestHandlerCRUD(t *testing.T) {
	h := newTestRouter()

	rr := send(t, h, http.MethodPost, "/api/clients", `{"code":"acme","name":"Acme"}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.Contains(t, rr.Body.String(), `"code":"ACME"`)

	rr = send(t, h, http.MethodPost, "/api/clients", `{"code":"ACME","name":"Other"}`)
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.JSONEq(t, `{"error":"Already exists"}`, rr.Body.String())

	rr = send(t, h, http.MethodGet, "/api/clients?page=1&limit=10", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"pagination":{"page":1,"per_page":10,"total":1,"total_pages":1}`)

	rr = send(t, h, http.MethodPatch, "/api/clients/1", `{"status":"inactive"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"status":"inactive"`)

	rr = send(t, h, http.MethodDelete, "/api/clients/1", "")
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = send(t, h, http.MethodGet, "/api/clients/1", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.JSONEq(t, `{"error":"Not found"}`, rr.Body.String())
}

func TestHandlerValidation(t *testing.T) {
	h := newTestRouter()

	rr := send(t, h, http.MethodPost, "/api/clients", `{"code":"acme"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"error":"name is required"}`, rr.Body.String())

	rr = send(t, h, http.MethodPost, "/api/clients", `{"code":"acme","name":"Acme","status":"archived"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"error":"status must be one of: active inactive"}`, rr.Body.String())

	rr = send(t, h, http.MethodGet, "/api/clients/abc", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
