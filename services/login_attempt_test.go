package services

import (
	"context"
	"testing"
	"time"

	"github.com/inkwell-cms/inkwell_api/shared"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLoginTracker(t *testing.T) (*LoginAttemptService, *RedisService) {
	t.Helper()

	redisSvc, _ := newTestRedis(t)
	svc := &LoginAttemptService{
		redisSvc:      redisSvc,
		sqlSvc:        newTestDB(t),
		emailSvc:      &EmailService{},
		maxAttempts:   5,
		attemptWindow: 15 * time.Minute,
		lockoutBase:   15 * time.Minute,
		lockoutMax:    24 * time.Hour,
	}
	return svc, redisSvc
}

func TestLoginAttemptCountsFailures(t *testing.T) {
	svc, _ := newTestLoginTracker(t)
	ctx := context.Background()

	assert.Equal(t, int64(1), svc.RecordFailedAttempt(ctx, "user@example.com", "1.2.3.4"))
	assert.Equal(t, int64(2), svc.RecordFailedAttempt(ctx, "user@example.com", "1.2.3.4"))
	assert.Equal(t, int64(2), svc.GetFailedAttempts(ctx, "user@example.com"))
	assert.Equal(t, int64(3), svc.GetRemainingAttempts(ctx, "user@example.com"))
	assert.False(t, svc.IsBlocked(ctx, "user@example.com"))
}

func TestLoginAttemptLocksAtThreshold(t *testing.T) {
	svc, _ := newTestLoginTracker(t)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		svc.RecordFailedAttempt(ctx, "user@example.com", "1.2.3.4")
		assert.False(t, svc.IsBlocked(ctx, "user@example.com"), "attempt %d must not lock", i+1)
	}

	svc.RecordFailedAttempt(ctx, "user@example.com", "1.2.3.4")
	assert.True(t, svc.IsBlocked(ctx, "user@example.com"), "5th failure locks the account")

	remaining := svc.GetRemainingLockoutTime(ctx, "user@example.com")
	assert.Greater(t, remaining, int64(0))
	assert.LessOrEqual(t, remaining, int64((15*time.Minute).Seconds()))
}

func TestLoginAttemptProgressiveLockout(t *testing.T) {
	svc, redisSvc := newTestLoginTracker(t)
	ctx := context.Background()

	// Simulate two prior lockout episodes in the tracking window.
	_, err := redisSvc.Increment(ctx, shared.LockoutCountKeyPrefix+"user@example.com")
	require.NoError(t, err)
	_, err = redisSvc.Increment(ctx, shared.LockoutCountKeyPrefix+"user@example.com")
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		svc.RecordFailedAttempt(ctx, "user@example.com", "1.2.3.4")
	}

	// Third episode: base doubled twice.
	remaining := svc.GetRemainingLockoutTime(ctx, "user@example.com")
	assert.Greater(t, remaining, int64((30*time.Minute).Seconds()))
	assert.LessOrEqual(t, remaining, int64((60*time.Minute).Seconds()))
}

func TestLoginAttemptLockoutCapped(t *testing.T) {
	svc, redisSvc := newTestLoginTracker(t)
	ctx := context.Background()

	// Enough prior episodes to blow past any doubling schedule.
	for i := 0; i < 20; i++ {
		_, err := redisSvc.Increment(ctx, shared.LockoutCountKeyPrefix+"user@example.com")
		require.NoError(t, err)
	}

	for i := 0; i < 5; i++ {
		svc.RecordFailedAttempt(ctx, "user@example.com", "1.2.3.4")
	}

	remaining := svc.GetRemainingLockoutTime(ctx, "user@example.com")
	assert.LessOrEqual(t, remaining, int64((24*time.Hour).Seconds()))
	assert.Greater(t, remaining, int64((23*time.Hour).Seconds()))
}

func TestLoginAttemptNotificationMarkerIsOneShot(t *testing.T) {
	svc, redisSvc := newTestLoginTracker(t)
	ctx := context.Background()

	createTestUser(t, svc.sqlSvc, "user@example.com")

	for i := 0; i < 5; i++ {
		svc.RecordFailedAttempt(ctx, "user@example.com", "1.2.3.4")
	}

	exists, err := redisSvc.Exists(ctx, shared.LockoutNotifiedKeyPrefix+"user@example.com")
	require.NoError(t, err)
	assert.True(t, exists, "lockout must leave a notified marker")

	// Further failures during the same episode must not win the marker again.
	won, err := redisSvc.SetNX(ctx, shared.LockoutNotifiedKeyPrefix+"user@example.com", "1", time.Minute)
	require.NoError(t, err)
	assert.False(t, won)
}

func TestLoginAttemptClearWipesCounterAndLockout(t *testing.T) {
	svc, _ := newTestLoginTracker(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		svc.RecordFailedAttempt(ctx, "user@example.com", "1.2.3.4")
	}
	require.True(t, svc.IsBlocked(ctx, "user@example.com"))

	svc.ClearFailedAttempts(ctx, "user@example.com")

	assert.False(t, svc.IsBlocked(ctx, "user@example.com"))
	assert.Equal(t, int64(0), svc.GetFailedAttempts(ctx, "user@example.com"))
	assert.Equal(t, int64(5), svc.GetRemainingAttempts(ctx, "user@example.com"))
}

func TestLoginAttemptNormalizesIdentity(t *testing.T) {
	svc, _ := newTestLoginTracker(t)
	ctx := context.Background()

	svc.RecordFailedAttempt(ctx, "  User@Example.COM ", "1.2.3.4")
	assert.Equal(t, int64(1), svc.GetFailedAttempts(ctx, "user@example.com"))
}

func TestLoginAttemptFallbackOnStoreOutage(t *testing.T) {
	svc := &LoginAttemptService{
		redisSvc:      newBrokenRedis(t),
		sqlSvc:        newTestDB(t),
		emailSvc:      &EmailService{},
		maxAttempts:   5,
		attemptWindow: 15 * time.Minute,
		lockoutBase:   15 * time.Minute,
		lockoutMax:    24 * time.Hour,
	}
	ctx := context.Background()

	// Failures still register, but the degraded counter never locks anyone out.
	assert.Equal(t, int64(1), svc.RecordFailedAttempt(ctx, "user@example.com", "1.2.3.4"))
	assert.Equal(t, int64(1), svc.RecordFailedAttempt(ctx, "user@example.com", "1.2.3.4"))
	assert.False(t, svc.IsBlocked(ctx, "user@example.com"))
	assert.Equal(t, int64(0), svc.GetRemainingLockoutTime(ctx, "user@example.com"))

	// Clearing must not panic with the store down.
	svc.ClearFailedAttempts(ctx, "user@example.com")
}

func TestLoginAttemptServiceId(t *testing.T) {
	svc := &LoginAttemptService{}
	require.Equal(t, LOGIN_ATTEMPT_SVC, svc.Id())
}
