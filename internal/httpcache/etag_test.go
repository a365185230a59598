package httpcache

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeader(t *testing.T) {
	cases := []struct {
		name string
		opts Options
		want string
	}{
		{"public", Options{MaxAge: time.Minute}, "public, max-age=60"},
		{"private", Options{MaxAge: 30 * time.Second, Private: true}, "private, max-age=30"},
		{"swr", Options{MaxAge: time.Minute, StaleWhileRevalidate: 5 * time.Minute}, "public, max-age=60, stale-while-revalidate=300"},
		{"zero", Options{}, "public, max-age=0"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Header(tc.opts))
		})
	}
}

func TestETagStable(t *testing.T) {
	a := ETag([]byte(`{"data":[1,2]}`))
	b := ETag([]byte(`{"data":[1,2]}`))
	c := ETag([]byte(`{"data":[1,3]}`))
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Regexp(t, `^"[0-9a-f]+"$`, a)
}

func TestJSONNotModified(t *testing.T) {
	opts := Options{MaxAge: time.Minute}
	payload := map[string]any{"data": []string{"a", "b"}}

	first := httptest.NewRecorder()
	require.NoError(t, JSON(first, httptest.NewRequest(http.MethodGet, "/", nil), http.StatusOK, payload, opts))
	require.Equal(t, http.StatusOK, first.Code)
	tag := first.Header().Get("ETag")
	require.NotEmpty(t, tag)
	assert.Equal(t, "public, max-age=60", first.Header().Get("Cache-Control"))
	assert.JSONEq(t, `{"data":["a","b"]}`, first.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("If-None-Match", `"other", `+tag)
	second := httptest.NewRecorder()
	require.NoError(t, JSON(second, req, http.StatusOK, payload, opts))
	assert.Equal(t, http.StatusNotModified, second.Code)
	assert.Empty(t, second.Body.String())
	assert.Equal(t, tag, second.Header().Get("ETag"))
}
