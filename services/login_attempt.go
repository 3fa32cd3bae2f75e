package services

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	appContext "github.com/alphabatem/common/context"
	"github.com/inkwell-cms/inkwell_api/shared"
	log "github.com/sirupsen/logrus"
)

// LoginAttemptService tracks failed logins per email and applies a progressive
// lockout. All counters live in redis with TTLs; the service itself keeps no
// authoritative state. When redis is unreachable it degrades to an in-process
// counter that is explicitly best effort and not shared between instances.
type LoginAttemptService struct {
	appContext.DefaultService

	redisSvc *RedisService
	sqlSvc   *PostgresService
	emailSvc *EmailService

	maxAttempts   int64
	attemptWindow time.Duration
	lockoutBase   time.Duration
	lockoutMax    time.Duration

	// Fallback counters for store outages. Never authoritative; cleared on
	// successful login only, since there is no TTL to expire them.
	fallback sync.Map
}

const LOGIN_ATTEMPT_SVC = "login_attempt_svc"

// Pointer receiver: the struct carries a sync.Map and must not be copied.
func (svc *LoginAttemptService) Id() string {
	return LOGIN_ATTEMPT_SVC
}

func (svc *LoginAttemptService) Configure(ctx *appContext.Context) error {
	svc.maxAttempts = envInt64("MAX_LOGIN_ATTEMPTS", 5)
	svc.attemptWindow = time.Duration(envInt64("LOGIN_ATTEMPT_WINDOW_MINUTES", 15)) * time.Minute
	svc.lockoutBase = time.Duration(envInt64("LOCKOUT_BASE_MINUTES", 15)) * time.Minute
	svc.lockoutMax = time.Duration(envInt64("LOCKOUT_MAX_MINUTES", 24*60)) * time.Minute

	return svc.DefaultService.Configure(ctx)
}

func (svc *LoginAttemptService) Start() error {
	svc.redisSvc = svc.Service(REDIS_SVC).(*RedisService)
	svc.sqlSvc = svc.Service(POSTGRES_SVC).(*PostgresService)
	svc.emailSvc = svc.Service(EMAIL_SVC).(*EmailService)
	return nil
}

func envInt64(name string, fallback int64) int64 {
	if v := os.Getenv(name); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

// IsBlocked reports whether the identity is currently locked out. A store
// error reads as not blocked: a cache outage must not lock users out.
func (svc *LoginAttemptService) IsBlocked(ctx context.Context, identity string) bool {
	identity = normalizeIdentity(identity)

	exists, err := svc.redisSvc.Exists(ctx, shared.LockoutKeyPrefix+identity)
	if err != nil {
		log.WithError(err).WithField("identity", identity).
			Warn("Lockout check store unavailable, failing open")
		return false
	}
	return exists
}

// RecordFailedAttempt bumps the failure counter and returns the new count.
// Crossing the max triggers the lockout and, once per episode, a notification
// email to the account owner.
func (svc *LoginAttemptService) RecordFailedAttempt(ctx context.Context, identity, ip string) int64 {
	identity = normalizeIdentity(identity)
	attemptKey := shared.LoginAttemptKeyPrefix + identity

	count, err := svc.redisSvc.Increment(ctx, attemptKey)
	if err != nil {
		log.WithError(err).WithField("identity", identity).
			Warn("Login attempt store unavailable, using in-process counter")
		return svc.recordFallback(identity)
	}

	if count == 1 {
		if err := svc.redisSvc.Expire(ctx, attemptKey, svc.attemptWindow); err != nil {
			log.WithError(err).Warn("Failed to set attempt window TTL")
		}
	}

	if count >= svc.maxAttempts {
		svc.lock(ctx, identity, count, ip)
	}

	return count
}

func (svc *LoginAttemptService) recordFallback(identity string) int64 {
	// Degraded mode: non-distributed, no window expiry. The caller only needs
	// a non-zero count; lockout decisions require the shared store.
	v, _ := svc.fallback.LoadOrStore(identity, new(int64))
	atomic.AddInt64(v.(*int64), 1)
	return 1
}

func (svc *LoginAttemptService) lock(ctx context.Context, identity string, count int64, ip string) {
	duration := svc.lockoutDuration(ctx, identity)

	if err := svc.redisSvc.Set(ctx, shared.LockoutKeyPrefix+identity, fmt.Sprintf("%d", count), duration); err != nil {
		log.WithError(err).WithField("identity", identity).Error("Failed to set lockout key")
		return
	}

	log.WithFields(log.Fields{
		"identity": identity,
		"attempts": count,
		"duration": duration.String(),
		"ip":       ip,
	}).Warn("Account locked out after repeated failed logins")

	accountLockoutsTotal.Inc()
	svc.notifyLockout(ctx, identity, duration, ip)
}

// lockoutDuration doubles the base for every prior lockout episode seen in the
// tracking window, capped at lockoutMax.
func (svc *LoginAttemptService) lockoutDuration(ctx context.Context, identity string) time.Duration {
	countKey := shared.LockoutCountKeyPrefix + identity

	prior, err := svc.redisSvc.Increment(ctx, countKey)
	if err != nil {
		return svc.lockoutBase
	}
	if prior == 1 {
		if err := svc.redisSvc.Expire(ctx, countKey, 24*time.Hour); err != nil {
			log.WithError(err).Warn("Failed to set lockout count TTL")
		}
	}

	duration := svc.lockoutBase
	for i := int64(1); i < prior; i++ {
		duration *= 2
		if duration >= svc.lockoutMax {
			return svc.lockoutMax
		}
	}
	return duration
}

// notifyLockout sends at most one email per lockout episode. The SetNX marker
// shares the lockout TTL, so a fresh episode gets a fresh notification.
func (svc *LoginAttemptService) notifyLockout(ctx context.Context, identity string, duration time.Duration, ip string) {
	won, err := svc.redisSvc.SetNX(ctx, shared.LockoutNotifiedKeyPrefix+identity, "1", duration)
	if err != nil || !won {
		return
	}

	user, err := svc.sqlSvc.GetUserByEmail(identity)
	if err != nil {
		// No registered account for this identity; nothing to notify.
		return
	}

	if err := svc.emailSvc.SendLockoutNotificationEmail(user.Email, user.Username, duration, ip); err != nil {
		log.WithError(err).WithField("identity", identity).Error("Failed to send lockout notification")
	}
}

// ClearFailedAttempts wipes the counter and any active lockout. Called on
// successful authentication; completes regardless of store health so the
// login flow can never fail here.
func (svc *LoginAttemptService) ClearFailedAttempts(ctx context.Context, identity string) {
	identity = normalizeIdentity(identity)
	svc.fallback.Delete(identity)

	err := svc.redisSvc.Delete(ctx,
		shared.LoginAttemptKeyPrefix+identity,
		shared.LockoutKeyPrefix+identity,
	)
	if err != nil {
		log.WithError(err).WithField("identity", identity).Warn("Failed to clear login attempts")
	}
}

// GetRemainingLockoutTime returns seconds until the lockout expires, 0 when
// the identity is not locked.
func (svc *LoginAttemptService) GetRemainingLockoutTime(ctx context.Context, identity string) int64 {
	identity = normalizeIdentity(identity)

	ttl, err := svc.redisSvc.TTL(ctx, shared.LockoutKeyPrefix+identity)
	if err != nil || ttl <= 0 {
		return 0
	}
	return int64(ttl.Seconds())
}

func (svc *LoginAttemptService) GetFailedAttempts(ctx context.Context, identity string) int64 {
	identity = normalizeIdentity(identity)

	raw, err := svc.redisSvc.Get(ctx, shared.LoginAttemptKeyPrefix+identity)
	if err != nil || raw == "" {
		return 0
	}

	count, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0
	}
	return count
}

func (svc *LoginAttemptService) GetRemainingAttempts(ctx context.Context, identity string) int64 {
	remaining := svc.maxAttempts - svc.GetFailedAttempts(ctx, identity)
	if remaining < 0 {
		return 0
	}
	return remaining
}

func (svc *LoginAttemptService) MaxAttempts() int64 {
	return svc.maxAttempts
}
