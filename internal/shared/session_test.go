package shared_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eapdesk/eapdesk/internal/shared"
	_ "github.com/eapdesk/eapdesk/testing"
)

func newSessionManager(t *testing.T) (*shared.SessionManager, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return shared.NewSessionManager(client, "test_session", "secret", time.Hour, false), mr
}

func requestWithCookie(name, value string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: name, Value: value})
	return req
}

func TestSessionCreateAndLoad(t *testing.T) {
	sm, _ := newSessionManager(t)
	rec := httptest.NewRecorder()

	sess, err := sm.Create(context.Background(), rec, 42, "10.0.0.1", "test-agent")
	require.NoError(t, err)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "test_session", cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	loaded, err := sm.Load(context.Background(), requestWithCookie(cookies[0].Name, cookies[0].Value))
	require.NoError(t, err)
	assert.Equal(t, sess.ID, loaded.ID)
	assert.Equal(t, int64(42), loaded.UserID)
}

func TestSessionLoadRejectsTamperedCookie(t *testing.T) {
	sm, _ := newSessionManager(t)
	rec := httptest.NewRecorder()
	sess, err := sm.Create(context.Background(), rec, 7, "", "")
	require.NoError(t, err)

	cases := map[string]string{
		"bad signature": sess.ID + ".forged",
		"no signature":  sess.ID,
		"not a uuid":    "abc." + "def",
		"empty":         "",
	}
	for name, value := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := sm.Load(context.Background(), requestWithCookie("test_session", value))
			assert.ErrorIs(t, err, shared.ErrSessionNotFound)
		})
	}
}

func TestSessionLoadWithoutCookie(t *testing.T) {
	sm, _ := newSessionManager(t)
	_, err := sm.Load(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.ErrorIs(t, err, shared.ErrSessionNotFound)
}

func TestSessionExpiredInStore(t *testing.T) {
	sm, mr := newSessionManager(t)
	rec := httptest.NewRecorder()
	sess, err := sm.Create(context.Background(), rec, 9, "", "")
	require.NoError(t, err)

	mr.FastForward(2 * time.Hour)

	_, err = sm.Load(context.Background(), requestWithCookie("test_session", sm.SignedValue(sess.ID)))
	assert.ErrorIs(t, err, shared.ErrSessionNotFound)
}

func TestSessionStoreFailureIsNotNoSession(t *testing.T) {
	sm, mr := newSessionManager(t)
	rec := httptest.NewRecorder()
	sess, err := sm.Create(context.Background(), rec, 9, "", "")
	require.NoError(t, err)

	mr.Close()

	_, err = sm.Load(context.Background(), requestWithCookie("test_session", sm.SignedValue(sess.ID)))
	require.Error(t, err)
	assert.NotErrorIs(t, err, shared.ErrSessionNotFound)
}

func TestSessionDestroy(t *testing.T) {
	sm, _ := newSessionManager(t)
	sess, err := sm.Create(context.Background(), httptest.NewRecorder(), 3, "", "")
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	require.NoError(t, sm.Destroy(context.Background(), rec, sess.ID))
	assert.Equal(t, -1, rec.Result().Cookies()[0].MaxAge)

	_, err = sm.Load(context.Background(), requestWithCookie("test_session", sm.SignedValue(sess.ID)))
	assert.ErrorIs(t, err, shared.ErrSessionNotFound)
}
