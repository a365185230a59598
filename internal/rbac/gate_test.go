package rbac_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eapdesk/eapdesk/internal/rbac"
	"github.com/eapdesk/eapdesk/internal/shared"
	_ "github.com/eapdesk/eapdesk/testing"
)

type stubResolver struct {
	identity shared.Identity
	err      error
}

func (s stubResolver) Resolve(context.Context, *http.Request) (shared.Identity, error) {
	return s.identity, s.err
}

type stubLookup struct {
	grants map[int64][]rbac.RoleGrant
	err    error
	calls  int
	panics bool
}

func (s *stubLookup) RoleGrantsForUser(_ context.Context, userID int64) ([]rbac.RoleGrant, error) {
	s.calls++
	if s.panics {
		panic("lookup exploded")
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.grants[userID], nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func serve(t *testing.T, mw func(http.Handler) http.Handler) (*httptest.ResponseRecorder, *shared.Identity) {
	t.Helper()
	var seen *shared.Identity
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id, ok := shared.IdentityFromContext(r.Context()); ok {
			seen = &id
		}
		w.WriteHeader(http.StatusOK)
	})
	rr := httptest.NewRecorder()
	mw(next).ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/clients", nil))
	return rr, seen
}

func errorBody(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body.Error
}

func TestGateUnauthenticated(t *testing.T) {
	lookup := &stubLookup{}
	gate := rbac.NewGate(stubResolver{err: shared.ErrSessionNotFound}, lookup, "admin", quietLogger())

	rr, seen := serve(t, gate.Require(shared.PermClientCreate))

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "Unauthorized", errorBody(t, rr))
	assert.Nil(t, seen)
	assert.Zero(t, lookup.calls, "lookup must not run without a session")
}

func TestGateForbiddenWithoutPermission(t *testing.T) {
	lookup := &stubLookup{grants: map[int64][]rbac.RoleGrant{
		7: {{Role: "staff", Permissions: []string{shared.PermClientRead}}},
	}}
	gate := rbac.NewGate(stubResolver{identity: shared.Identity{UserID: 7, Via: shared.ViaCookie}}, lookup, "admin", quietLogger())

	rr, seen := serve(t, gate.Require(shared.PermClientCreate))

	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Equal(t, "Unauthorized: Insufficient permissions", errorBody(t, rr))
	assert.Nil(t, seen)
}

func TestGateAdminAllowed(t *testing.T) {
	lookup := &stubLookup{grants: map[int64][]rbac.RoleGrant{1: {{Role: "admin"}}}}
	gate := rbac.NewGate(stubResolver{identity: shared.Identity{UserID: 1, Via: shared.ViaCookie}}, lookup, "Admin", quietLogger())

	rr, seen := serve(t, gate.Require(shared.PermClientCreate))

	assert.Equal(t, http.StatusOK, rr.Code)
	require.NotNil(t, seen)
	assert.Equal(t, int64(1), seen.UserID)
}

func TestGateBearerIdentity(t *testing.T) {
	lookup := &stubLookup{grants: map[int64][]rbac.RoleGrant{
		3: {{Role: "editor", Permissions: []string{shared.PermClientCreate}}},
	}}
	gate := rbac.NewGate(stubResolver{identity: shared.Identity{UserID: 3, Via: shared.ViaBearer}}, lookup, "admin", quietLogger())

	rr, seen := serve(t, gate.Require(shared.PermClientCreate))

	assert.Equal(t, http.StatusOK, rr.Code)
	require.NotNil(t, seen)
	assert.Equal(t, shared.ViaBearer, seen.Via)
}

func TestGateLookupFailureIsInternal(t *testing.T) {
	lookup := &stubLookup{err: errors.New("connection refused")}
	gate := rbac.NewGate(stubResolver{identity: shared.Identity{UserID: 7}}, lookup, "admin", quietLogger())

	rr, _ := serve(t, gate.Require(shared.PermClientRead))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "Internal server error", errorBody(t, rr))
}

func TestGateResolverFailureIsInternal(t *testing.T) {
	gate := rbac.NewGate(stubResolver{err: errors.New("redis down")}, &stubLookup{}, "admin", quietLogger())

	rr, _ := serve(t, gate.Require(shared.PermClientRead))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestGatePanicIsInternal(t *testing.T) {
	lookup := &stubLookup{panics: true}
	var observed []rbac.Outcome
	gate := rbac.NewGate(stubResolver{identity: shared.Identity{UserID: 7}}, lookup, "admin", quietLogger(),
		rbac.WithObserver(func(o rbac.Outcome) { observed = append(observed, o) }))

	rr, _ := serve(t, gate.Require(shared.PermClientRead))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	require.Len(t, observed, 1)
	assert.Equal(t, rbac.Internal, observed[0].Decision)
	assert.Error(t, observed[0].Err)
}

func TestGateAuthenticatedSkipsLookup(t *testing.T) {
	lookup := &stubLookup{}
	gate := rbac.NewGate(stubResolver{identity: shared.Identity{UserID: 9}}, lookup, "admin", quietLogger())

	rr, seen := serve(t, gate.Authenticated())

	assert.Equal(t, http.StatusOK, rr.Code)
	require.NotNil(t, seen)
	assert.Zero(t, lookup.calls)
}

func TestGateLooksUpEveryRequest(t *testing.T) {
	lookup := &stubLookup{grants: map[int64][]rbac.RoleGrant{
		7: {{Role: "staff", Permissions: []string{shared.PermClientRead}}},
	}}
	gate := rbac.NewGate(stubResolver{identity: shared.Identity{UserID: 7}}, lookup, "admin", quietLogger())
	mw := gate.Require(shared.PermClientRead)

	rr, _ := serve(t, mw)
	require.Equal(t, http.StatusOK, rr.Code)

	lookup.grants[7] = nil
	rr, _ = serve(t, mw)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Equal(t, 2, lookup.calls)
}

func TestGateRequireAnyEmptyDeniesNonAdmin(t *testing.T) {
	lookup := &stubLookup{grants: map[int64][]rbac.RoleGrant{
		7: {{Role: "staff", Permissions: []string{shared.PermClientRead}}},
	}}
	gate := rbac.NewGate(stubResolver{identity: shared.Identity{UserID: 7}}, lookup, "admin", quietLogger())

	rr, _ := serve(t, gate.RequireAny())

	assert.Equal(t, http.StatusForbidden, rr.Code)
}
