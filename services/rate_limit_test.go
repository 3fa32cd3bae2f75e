package services

import (
	"context"
	"testing"
	"time"

	"github.com/inkwell-cms/inkwell_api/shared"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRateLimiter(t *testing.T) (*RateLimitService, *RedisService) {
	t.Helper()

	redisSvc, _ := newTestRedis(t)
	return &RateLimitService{
		redisSvc:     redisSvc,
		maxPerWindow: 10,
		window:       shared.EmailRateWindow,
	}, redisSvc
}

func TestRateLimitAllowWithinWindow(t *testing.T) {
	svc, _ := newTestRateLimiter(t)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		assert.True(t, svc.Allow(ctx, "user@example.com"), "send %d should be allowed", i+1)
	}

	assert.False(t, svc.Allow(ctx, "user@example.com"), "11th send should be denied")
}

func TestRateLimitIsPerIdentity(t *testing.T) {
	svc, _ := newTestRateLimiter(t)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		svc.Allow(ctx, "first@example.com")
	}

	assert.False(t, svc.Allow(ctx, "first@example.com"))
	assert.True(t, svc.Allow(ctx, "second@example.com"))
}

func TestRateLimitNormalizesIdentity(t *testing.T) {
	svc, _ := newTestRateLimiter(t)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		svc.Allow(ctx, "User@Example.com")
	}

	// Same mailbox, different casing and whitespace.
	assert.False(t, svc.Allow(ctx, "  user@example.com "))
}

func TestRateLimitWindowExpires(t *testing.T) {
	svc, redisSvc := newTestRateLimiter(t)
	ctx := context.Background()

	require.True(t, svc.Allow(ctx, "user@example.com"))

	ttl, err := redisSvc.TTL(ctx, shared.EmailRateKeyPrefix+"user@example.com")
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0), "first increment must own a TTL")
	assert.LessOrEqual(t, ttl, shared.EmailRateWindow)
}

func TestRateLimitFailsOpenOnStoreError(t *testing.T) {
	svc := &RateLimitService{
		redisSvc:     newBrokenRedis(t),
		maxPerWindow: 10,
		window:       shared.EmailRateWindow,
	}

	assert.True(t, svc.Allow(context.Background(), "user@example.com"))
}

func TestRateLimitRemaining(t *testing.T) {
	svc, _ := newTestRateLimiter(t)
	ctx := context.Background()

	assert.Equal(t, int64(10), svc.Remaining(ctx, "user@example.com"))

	svc.Allow(ctx, "user@example.com")
	svc.Allow(ctx, "user@example.com")
	svc.Allow(ctx, "user@example.com")

	assert.Equal(t, int64(7), svc.Remaining(ctx, "user@example.com"))

	for i := 0; i < 20; i++ {
		svc.Allow(ctx, "user@example.com")
	}
	assert.Equal(t, int64(0), svc.Remaining(ctx, "user@example.com"), "remaining never goes negative")
}

func TestRateLimitReset(t *testing.T) {
	svc, _ := newTestRateLimiter(t)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		svc.Allow(ctx, "user@example.com")
	}
	require.False(t, svc.Allow(ctx, "user@example.com"))

	require.NoError(t, svc.Reset(ctx, "user@example.com"))
	assert.True(t, svc.Allow(ctx, "user@example.com"))
}
