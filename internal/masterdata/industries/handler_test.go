package industries

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eapdesk/eapdesk/internal/masterdata/shared"
)

type memoryRepo struct {
	items  []Industry
	nextID int64
}

func (m *memoryRepo) List(context.Context, shared.ListFilters) ([]Industry, int, error) {
	return append([]Industry(nil), m.items...), len(m.items), nil
}

func (m *memoryRepo) Get(_ context.Context, id int64) (Industry, error) {
	for _, i := range m.items {
		if i.ID == id {
			return i, nil
		}
	}
	return Industry{}, shared.ErrNotFound
}

func (m *memoryRepo) Create(_ context.Context, name string) (Industry, error) {
	for _, i := range m.items {
		if strings.EqualFold(i.Name, name) {
			return Industry{}, shared.ErrDuplicate
		}
	}
	m.nextID++
	i := Industry{ID: m.nextID, Name: name}
	m.items = append(m.items, i)
	return i, nil
}

func (m *memoryRepo) Update(_ context.Context, id int64, name string) (Industry, error) {
	for k := range m.items {
		if m.items[k].ID == id {
			m.items[k].Name = name
			return m.items[k], nil
		}
	}
	return Industry{}, shared.ErrNotFound
}

func (m *memoryRepo) Delete(_ context.Context, id int64) error {
	for k := range m.items {
		if m.items[k].ID == id {
			m.items = append(m.items[:k], m.items[k+1:]...)
			return nil
		}
	}
	return shared.ErrNotFound
}

type allowAll struct{}

func (allowAll) Require(string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler { return next }
}

func newTestRouter() http.Handler {
	h := NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), NewService(&memoryRepo{}, nil), allowAll{})
	r := chi.NewRouter()
	r.Route("/api/industries", h.MountRoutes)
	return r
}

func do(h http.Handler, method, path, body string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestListIsCacheable(t *testing.T) {
	h := newTestRouter()
	rr := do(h, http.MethodPost, "/api/industries", `{"name":" Healthcare "}`, nil)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.Contains(t, rr.Body.String(), `"name":"Healthcare"`)

	rr = do(h, http.MethodGet, "/api/industries", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "public, max-age=300, stale-while-revalidate=60", rr.Header().Get("Cache-Control"))
	tag := rr.Header().Get("ETag")
	require.NotEmpty(t, tag)
	assert.Contains(t, rr.Body.String(), `"total":1`)

	rr = do(h, http.MethodGet, "/api/industries", "", map[string]string{"If-None-Match": tag})
	assert.Equal(t, http.StatusNotModified, rr.Code)
	assert.Empty(t, rr.Body.String())

	rr = do(h, http.MethodPut, "/api/industries/1", `{"name":"Health care"}`, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = do(h, http.MethodGet, "/api/industries", "", map[string]string{"If-None-Match": tag})
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.NotEqual(t, tag, rr.Header().Get("ETag"))
}

func TestIndustryErrors(t *testing.T) {
	h := newTestRouter()

	rr := do(h, http.MethodPost, "/api/industries", `{"name":""}`, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"error":"name is required"}`, rr.Body.String())

	rr = do(h, http.MethodPost, "/api/industries", `{"name":"   "}`, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"error":"name is required"}`, rr.Body.String())

	require.Equal(t, http.StatusCreated, do(h, http.MethodPost, "/api/industries", `{"name":"Retail"}`, nil).Code)
	rr = do(h, http.MethodPost, "/api/industries", `{"name":"retail"}`, nil)
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.JSONEq(t, `{"error":"Already exists"}`, rr.Body.String())

	assert.Equal(t, http.StatusNoContent, do(h, http.MethodDelete, "/api/industries/1", "", nil).Code)
	assert.Equal(t, http.StatusNotFound, do(h, http.MethodDelete, "/api/industries/1", "", nil).Code)
}
