package roles

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

	"github.com/eapdesk/eapdesk/internal/platform/httpx"
	"github.com/eapdesk/eapdesk/internal/shared"
)

type memoryRepo struct {
	roles   map[int64]Role
	catalog map[int64]string
	nextID  int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		roles:   map[int64]Role{},
		catalog: map[int64]string{1: "client:read", 2: "client:update", 3: "user:read"},
	}
}

func (m *memoryRepo) List(_ context.Context, _ shared.ListFilters) ([]Role, int, error) {
	var out []Role
	for _, r := range m.roles {
		out = append(out, r)
	}
	return out, len(out), nil
}

func (m *memoryRepo) Get(_ context.Context, id int64) (Role, error) {
	r, ok := m.roles[id]
	if !ok {
		return Role{}, httpx.ErrNotFound
	}
	return r, nil
}

func (m *memoryRepo) Create(_ context.Context, name, description string) (Role, error) {
	for _, r := range m.roles {
		if r.Name == name {
			return Role{}, httpx.ErrDuplicate
		}
	}
	m.nextID++
	r := Role{ID: m.nextID, Name: name, Description: description, Permissions: []string{}}
	m.roles[r.ID] = r
	return r, nil
}

func (m *memoryRepo) Update(_ context.Context, id int64, name, description string) (Role, error) {
	r, ok := m.roles[id]
	if !ok {
		return Role{}, httpx.ErrNotFound
	}
	r.Name, r.Description = name, description
	m.roles[id] = r
	return r, nil
}

func (m *memoryRepo) Delete(_ context.Context, id int64) error {
	if _, ok := m.roles[id]; !ok {
		return httpx.ErrNotFound
	}
	delete(m.roles, id)
	return nil
}

func (m *memoryRepo) ReplacePermissions(_ context.Context, id int64, ids []int64) error {
	r, ok := m.roles[id]
	if !ok {
		return httpx.ErrNotFound
	}
	names := []string{}
	for _, pid := range ids {
		name, ok := m.catalog[pid]
		if !ok {
			return httpx.ErrValidation
		}
		names = append(names, name)
	}
	r.Permissions = names
	m.roles[id] = r
	return nil
}

func TestCreateRoleNormalizesName(t *testing.T) {
	svc := NewService(newMemoryRepo(), "admin", nil)
	role, err := svc.Create(context.Background(), CreateRequest{Name: "  Counsellor "})
	require.NoError(t, err)
	assert.Equal(t, "counsellor", role.Name)

	_, err = svc.Create(context.Background(), CreateRequest{Name: "COUNSELLOR"})
	assert.ErrorIs(t, err, httpx.ErrDuplicate)
}

func TestAdminRoleIsProtected(t *testing.T) {
	svc := NewService(newMemoryRepo(), "Admin", nil)
	admin, err := svc.Create(context.Background(), CreateRequest{Name: "admin"})
	require.NoError(t, err)

	renamed := "superuser"
	_, err = svc.Update(context.Background(), admin.ID, UpdateRequest{Name: &renamed})
	assert.ErrorIs(t, err, httpx.ErrConflict)

	desc := "Full access"
	updated, err := svc.Update(context.Background(), admin.ID, UpdateRequest{Description: &desc})
	require.NoError(t, err)
	assert.Equal(t, "Full access", updated.Description)

	err = svc.Delete(context.Background(), admin.ID)
	assert.ErrorIs(t, err, httpx.ErrConflict)
}

func TestReplacePermissionsDeduplicates(t *testing.T) {
	svc := NewService(newMemoryRepo(), "admin", nil)
	role, err := svc.Create(context.Background(), CreateRequest{Name: "staff"})
	require.NoError(t, err)

	updated, err := svc.ReplacePermissions(context.Background(), role.ID, []int64{2, 1, 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"client:read", "client:update"}, updated.Permissions)

	updated, err = svc.ReplacePermissions(context.Background(), role.ID, []int64{})
	require.NoError(t, err)
	assert.Empty(t, updated.Permissions)

	_, err = svc.ReplacePermissions(context.Background(), 99, []int64{1})
	assert.ErrorIs(t, err, httpx.ErrNotFound)
}

type allowAll struct{}

func (allowAll) Require(string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler { return next }
}

func send(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestRoleHandlers(t *testing.T) {
	h := NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), NewService(newMemoryRepo(), "admin", nil), allowAll{})
	r := chi.NewRouter()
	r.Route("/api/roles", h.MountRoutes)

	rr := send(r, http.MethodPost, "/api/roles", `{"name":"staff","description":"Case workers"}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = send(r, http.MethodPut, "/api/roles/1/permissions", `{"permission_ids":[1,3]}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Contains(t, rr.Body.String(), `"permissions":["client:read","user:read"]`)

	rr = send(r, http.MethodGet, "/api/roles/1", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"name":"staff"`)

	rr = send(r, http.MethodPut, "/api/roles/1/permissions", `{"permission_ids":[0]}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = send(r, http.MethodPost, "/api/roles", `{"name":"admin"}`)
	require.Equal(t, http.StatusCreated, rr.Code)
	rr = send(r, http.MethodDelete, "/api/roles/2", "")
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.JSONEq(t, `{"error":"the admin role cannot be deleted"}`, rr.Body.String())

	rr = send(r, http.MethodDelete, "/api/roles/1", "")
	assert.Equal(t, http.StatusNoContent, rr.Code)
}
