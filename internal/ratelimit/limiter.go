// Package ratelimit implements a fixed-window request limiter backed by Redis.
package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Result describes a single limiter decision.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
	// Degraded is set when the counter store failed and the request was let
	// through without being counted.
	Degraded bool
}

// Option customises a Limiter.
type Option func(*Limiter)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) { l.now = now }
}

// WithLogger sets the logger used for store failures.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Limiter) { l.logger = logger }
}

// WithRecorder registers a callback receiving the scope and outcome label
// ("allowed", "denied" or "degraded") of each decision.
func WithRecorder(fn func(scope, outcome string)) Option {
	return func(l *Limiter) { l.record = fn }
}

// Limiter counts requests per identifier in fixed windows.
type Limiter struct {
	client redis.Cmdable
	scope  string
	max    int
	window time.Duration
	now    func() time.Time
	logger *slog.Logger
	record func(scope, outcome string)
}

// New constructs a Limiter allowing limit requests per window for each
// identifier within scope.
func New(client redis.Cmdable, scope string, limit int, window time.Duration, opts ...Option) *Limiter {
	if window <= 0 {
		window = time.Minute
	}
	if limit < 1 {
		limit = 1
	}
	l := &Limiter{
		client: client,
		scope:  scope,
		max:    limit,
		window: window,
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Limit returns the configured maximum per window.
func (l *Limiter) Limit() int { return l.max }

// Allow counts one request for identifier. When the store is unreachable the
// request is allowed and the result is marked Degraded.
func (l *Limiter) Allow(ctx context.Context, identifier string) Result {
	windowMs := l.window.Milliseconds()
	bucket := l.now().UnixMilli() / windowMs
	resetAt := time.UnixMilli((bucket + 1) * windowMs)
	key := fmt.Sprintf("ratelimit:%s:%s:%d", l.scope, identifier, bucket)

	count, err := l.client.Incr(ctx, key).Result()
	if err == nil && count == 1 {
		err = l.client.PExpire(ctx, key, l.window).Err()
	}
	if err != nil {
		l.logger.Warn("rate limit store unavailable, allowing request",
			slog.String("scope", l.scope),
			slog.Any("error", err))
		l.emit("degraded")
		return Result{Allowed: true, Limit: l.max, Remaining: l.max, ResetAt: resetAt, Degraded: true}
	}

	res := Result{
		Allowed:   count <= int64(l.max),
		Limit:     l.max,
		Remaining: max(0, l.max-int(count)),
		ResetAt:   resetAt,
	}
	if res.Allowed {
		l.emit("allowed")
	} else {
		l.emit("denied")
	}
	return res
}

func (l *Limiter) emit(outcome string) {
	if l.record != nil {
		l.record(l.scope, outcome)
	}
}
