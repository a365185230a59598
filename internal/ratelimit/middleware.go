package ratelimit

import (
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/httprate"

	"github.com/eapdesk/eapdesk/internal/platform/httpx"
)

// KeyFunc derives the limiter identifier for a request.
type KeyFunc func(r *http.Request) (string, error)

// ClientKey uses the first X-Forwarded-For hop, falling back to the real IP
// resolution of httprate.
func ClientKey(r *http.Request) (string, error) {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first, nil
		}
	}
	return httprate.KeyByRealIP(r)
}

// Middleware rejects requests over the limit with 429 and always sets the
// X-RateLimit-* headers.
func Middleware(l *Limiter, key KeyFunc) func(http.Handler) http.Handler {
	if key == nil {
		key = ClientKey
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := key(r)
			if err != nil || id == "" {
				id = "unknown"
			}
			res := l.Allow(r.Context(), id)

			h := w.Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(res.Limit))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
			h.Set("X-RateLimit-Reset", strconv.FormatInt(res.ResetAt.Unix(), 10))
			if !res.Allowed {
				wait := math.Ceil(res.ResetAt.Sub(l.now()).Seconds())
				h.Set("Retry-After", strconv.Itoa(max(1, int(wait))))
				httpx.Error(w, http.StatusTooManyRequests, httpx.MsgTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
