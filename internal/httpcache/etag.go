// Package httpcache attaches validator and freshness headers to JSON
// responses so downstream caches can serve them.
package httpcache

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
)

// Options controls the Cache-Control header.
type Options struct {
	MaxAge               time.Duration
	StaleWhileRevalidate time.Duration
	Private              bool
}

// Header composes the Cache-Control value for opts.
func Header(opts Options) string {
	scope := "public"
	if opts.Private {
		scope = "private"
	}
	parts := []string{scope, "max-age=" + seconds(opts.MaxAge)}
	if opts.StaleWhileRevalidate > 0 {
		parts = append(parts, "stale-while-revalidate="+seconds(opts.StaleWhileRevalidate))
	}
	return strings.Join(parts, ", ")
}

// ETag returns a strong entity tag for body. Equal bodies yield equal tags.
func ETag(body []byte) string {
	return `"` + strconv.FormatUint(xxhash.Sum64(body), 16) + `"`
}

// Apply sets ETag and Cache-Control for body on w.
func Apply(w http.ResponseWriter, body []byte, opts Options) string {
	tag := ETag(body)
	w.Header().Set("ETag", tag)
	w.Header().Set("Cache-Control", Header(opts))
	return tag
}

// JSON serialises v, decorates the response and writes it. A request whose
// If-None-Match matches the computed tag receives 304 with no body.
func JSON(w http.ResponseWriter, r *http.Request, status int, v any, opts Options) error {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		return err
	}
	body := buf.Bytes()
	tag := Apply(w, body, opts)
	if status == http.StatusOK && matches(r.Header.Get("If-None-Match"), tag) {
		w.WriteHeader(http.StatusNotModified)
		return nil
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err := w.Write(body)
	return err
}

func matches(header, tag string) bool {
	if header == "" {
		return false
	}
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		candidate = strings.TrimPrefix(candidate, "W/")
		if candidate == "*" || candidate == tag {
			return true
		}
	}
	return false
}

func seconds(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	return strconv.FormatInt(int64(d/time.Second), 10)
}
