package services

import (
	"context"
	"os"
	"strconv"
	"strings"
	"time"

	appContext "github.com/alphabatem/common/context"
	"github.com/inkwell-cms/inkwell_api/shared"
	log "github.com/sirupsen/logrus"
)

// RateLimitService caps outbound email sends per recipient. It is a fixed
// window counter over redis INCR: the first increment in a window starts the
// TTL, and the count races only at the store, never in process.
//
// Enforcement is best effort. When the store is down the limiter fails open:
// a missed cap is preferred over refusing to send mail during an outage.
type RateLimitService struct {
	appContext.DefaultService

	redisSvc *RedisService

	maxPerWindow int64
	window       time.Duration
}

const RATE_LIMIT_SVC = "rate_limit_svc"

func (svc RateLimitService) Id() string {
	return RATE_LIMIT_SVC
}

func (svc *RateLimitService) Configure(ctx *appContext.Context) error {
	svc.maxPerWindow = 10
	if v := os.Getenv("EMAIL_RATE_LIMIT"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			svc.maxPerWindow = n
		}
	}

	svc.window = shared.EmailRateWindow
	if v := os.Getenv("EMAIL_RATE_WINDOW_MINUTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			svc.window = time.Duration(n) * time.Minute
		}
	}

	return svc.DefaultService.Configure(ctx)
}

func (svc *RateLimitService) Start() error {
	svc.redisSvc = svc.Service(REDIS_SVC).(*RedisService)
	return nil
}

func normalizeIdentity(identity string) string {
	return strings.ToLower(strings.TrimSpace(identity))
}

func (svc *RateLimitService) key(identity string) string {
	return shared.EmailRateKeyPrefix + normalizeIdentity(identity)
}

// Allow reports whether one more email may go to identity within the current
// window. The rejected send is not performed and never retried here.
func (svc *RateLimitService) Allow(ctx context.Context, identity string) bool {
	key := svc.key(identity)

	count, err := svc.redisSvc.Increment(ctx, key)
	if err != nil {
		log.WithError(err).WithField("identity", normalizeIdentity(identity)).
			Warn("Email rate limiter store unavailable, failing open")
		return true
	}

	if count == 1 {
		// First write in this window owns the TTL.
		if err := svc.redisSvc.Expire(ctx, key, svc.window); err != nil {
			log.WithError(err).Warn("Failed to set email rate window TTL")
		}
	}

	return count <= svc.maxPerWindow
}

// Remaining returns how many sends are left in the current window, 0 when
// exhausted. Store errors read as a full window.
func (svc *RateLimitService) Remaining(ctx context.Context, identity string) int64 {
	raw, err := svc.redisSvc.Get(ctx, svc.key(identity))
	if err != nil || raw == "" {
		return svc.maxPerWindow
	}

	count, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return svc.maxPerWindow
	}

	remaining := svc.maxPerWindow - count
	if remaining < 0 {
		remaining = 0
	}
	return remaining
}

// Reset clears the window for identity. Admin escape hatch.
func (svc *RateLimitService) Reset(ctx context.Context, identity string) error {
	return svc.redisSvc.Delete(ctx, svc.key(identity))
}

func (svc *RateLimitService) MaxPerWindow() int64 {
	return svc.maxPerWindow
}
