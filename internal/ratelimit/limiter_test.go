package ratelimit

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func newTestLimiter(t *testing.T, limit int, window time.Duration) (*Limiter, *miniredis.Miniredis, *fakeClock) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	clock := &fakeClock{t: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	l := New(client, "login", limit, window,
		WithClock(clock.Now),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	return l, mr, clock
}

func TestAllowDeniesAfterLimit(t *testing.T) {
	l, _, _ := newTestLimiter(t, 3, time.Minute)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		res := l.Allow(ctx, "10.0.0.1")
		require.True(t, res.Allowed, "request %d", i)
		assert.Equal(t, 3-i, res.Remaining)
	}
	res := l.Allow(ctx, "10.0.0.1")
	assert.False(t, res.Allowed)
	assert.Zero(t, res.Remaining)
	assert.False(t, res.Degraded)

	other := l.Allow(ctx, "10.0.0.2")
	assert.True(t, other.Allowed, "identifiers are counted separately")
}

func TestAllowNewWindowResets(t *testing.T) {
	l, _, clock := newTestLimiter(t, 1, time.Minute)
	ctx := context.Background()

	require.True(t, l.Allow(ctx, "ip").Allowed)
	require.False(t, l.Allow(ctx, "ip").Allowed)

	clock.t = clock.t.Add(time.Minute)
	assert.True(t, l.Allow(ctx, "ip").Allowed)
}

func TestAllowSetsExpiryOnFirstHit(t *testing.T) {
	l, mr, clock := newTestLimiter(t, 5, 30*time.Second)
	ctx := context.Background()

	res := l.Allow(ctx, "ip")
	bucket := clock.t.UnixMilli() / (30 * time.Second).Milliseconds()
	key := "ratelimit:login:ip:" + itoa(bucket)

	require.True(t, mr.Exists(key))
	assert.Equal(t, 30*time.Second, mr.TTL(key))
	assert.Equal(t, time.UnixMilli((bucket+1)*(30*time.Second).Milliseconds()), res.ResetAt)

	l.Allow(ctx, "ip")
	got, err := mr.Get(key)
	require.NoError(t, err)
	assert.Equal(t, "2", got)
}

func TestAllowFailsOpen(t *testing.T) {
	l, mr, _ := newTestLimiter(t, 1, time.Minute)
	var outcomes []string
	l.record = func(_, outcome string) { outcomes = append(outcomes, outcome) }
	mr.Close()

	for i := 0; i < 3; i++ {
		res := l.Allow(context.Background(), "ip")
		assert.True(t, res.Allowed)
		assert.True(t, res.Degraded)
		assert.Equal(t, 1, res.Remaining)
	}
	assert.Equal(t, []string{"degraded", "degraded", "degraded"}, outcomes)
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}
