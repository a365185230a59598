package audit

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eapdesk/eapdesk/internal/platform/httpx"
)

type stubRepo struct {
	rows []Entry
	last WindowParams
	err  error
}

func (s *stubRepo) Window(_ context.Context, arg WindowParams) ([]Entry, error) {
	s.last = arg
	if s.err != nil {
		return nil, s.err
	}
	if int(arg.Limit) < len(s.rows) {
		return s.rows[:arg.Limit], nil
	}
	return s.rows, nil
}

func entry(id int64, at string, action string) Entry {
	ts, _ := time.Parse(time.RFC3339, at)
	return Entry{ID: id, At: ts, ActorID: 1, ActorEmail: "admin@example.com", Action: action, Entity: "client", EntityID: "7", Meta: []byte(`{}`)}
}

func TestTimelinePaging(t *testing.T) {
	repo := &stubRepo{rows: []Entry{
		entry(3, "2026-03-10T10:00:00Z", "update"),
		entry(2, "2026-03-09T09:00:00Z", "update"),
		entry(1, "2026-03-08T08:00:00Z", "create"),
	}}
	svc := NewService(repo)

	result, err := svc.Timeline(context.Background(), TimelineFilters{
		From:     time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		To:       time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
		Entity:   " client ",
		Page:     1,
		PageSize: 2,
	})
	require.NoError(t, err)
	assert.Len(t, result.Data, 2)
	assert.True(t, result.Paging.HasNext)
	assert.Equal(t, 2, result.Paging.NextPage)
	assert.Zero(t, result.Paging.PrevPage)
	assert.EqualValues(t, 3, repo.last.Limit)
	assert.EqualValues(t, 0, repo.last.Offset)
	assert.True(t, repo.last.Entity.Valid)
	assert.Equal(t, "client", repo.last.Entity.String)
	assert.False(t, repo.last.Action.Valid)
	assert.False(t, repo.last.ActorID.Valid)
}

func TestTimelineClampsPageSize(t *testing.T) {
	repo := &stubRepo{}
	result, err := NewService(repo).Timeline(context.Background(), TimelineFilters{Page: 3, PageSize: 1000})
	require.NoError(t, err)
	assert.Equal(t, MaxPageSize, result.Paging.PageSize)
	assert.EqualValues(t, 2*MaxPageSize, repo.last.Offset)
	assert.NotNil(t, result.Data)
	assert.Equal(t, 2, result.Paging.PrevPage)
}

func TestTimelineRejectsBadRange(t *testing.T) {
	svc := NewService(&stubRepo{})
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	_, err := svc.Timeline(context.Background(), TimelineFilters{From: from, To: from})
	assert.ErrorIs(t, err, httpx.ErrValidation)

	_, err = svc.Timeline(context.Background(), TimelineFilters{From: from, To: from.Add(MaxRange + time.Hour)})
	assert.ErrorIs(t, err, httpx.ErrValidation)
}

type allowAll struct{}

func (allowAll) Require(string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler { return next }
}

func newTestRouter(repo Repository) http.Handler {
	h := NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), NewService(repo), allowAll{})
	h.now = func() time.Time { return time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC) }
	r := chi.NewRouter()
	r.Route("/api/audit-logs", h.MountRoutes)
	return r
}

func TestHandlerDefaultsToLastWeek(t *testing.T) {
	repo := &stubRepo{rows: []Entry{entry(1, "2026-03-10T10:00:00Z", "create")}}
	rr := httptest.NewRecorder()
	newTestRouter(repo).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/audit-logs?actor_id=1", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"actor_email":"admin@example.com"`)
	assert.Equal(t, time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC), repo.last.ToAt.Time)
	assert.Equal(t, time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC), repo.last.FromAt.Time)
	assert.True(t, repo.last.ActorID.Valid)
	assert.EqualValues(t, 1, repo.last.ActorID.Int64)
}

func TestHandlerValidation(t *testing.T) {
	router := newTestRouter(&stubRepo{})
	cases := []struct{ path, body string }{
		{"/api/audit-logs?from=yesterday", `{"error":"from must use YYYY-MM-DD"}`},
		{"/api/audit-logs?page=0", `{"error":"page must be a positive integer"}`},
		{"/api/audit-logs?from=2026-03-10&to=2026-03-01", `{"error":"to must be after from"}`},
	}
	for _, tc := range cases {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, tc.path, nil))
		assert.Equal(t, http.StatusBadRequest, rr.Code, tc.path)
		assert.JSONEq(t, tc.body, rr.Body.String(), tc.path)
	}
}

func TestHandlerRepositoryFailure(t *testing.T) {
	rr := httptest.NewRecorder()
	newTestRouter(&stubRepo{err: errors.New("db down")}).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/audit-logs", nil))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, rr.Body.String())
}
