package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	appContext "github.com/alphabatem/common/context"
	"github.com/inkwell-cms/inkwell_api/shared"
	log "github.com/sirupsen/logrus"
)

// InteractionService keeps view/like counters honest: one count per IP per
// article per window, enforced with a SetNX marker keyed on a one-way hash of
// the client IP. The actual counter increment stays with the caller.
type InteractionService struct {
	appContext.DefaultService

	redisSvc *RedisService
}

const INTERACTION_SVC = "interaction_svc"

func (svc InteractionService) Id() string {
	return INTERACTION_SVC
}

func (svc *InteractionService) Configure(ctx *appContext.Context) error {
	return svc.DefaultService.Configure(ctx)
}

func (svc *InteractionService) Start() error {
	svc.redisSvc = svc.Service(REDIS_SVC).(*RedisService)
	return nil
}

// RecordViewIfNew returns true when this IP has not viewed the article within
// the dedup window. Unresolvable IPs never count. Store errors fail open so a
// cache outage does not freeze view counts.
func (svc *InteractionService) RecordViewIfNew(ctx context.Context, slug, ip string) bool {
	return svc.recordIfNew(ctx, shared.ArticleViewKeyPrefix, slug, ip)
}

func (svc *InteractionService) RecordLikeIfNew(ctx context.Context, slug, ip string) bool {
	return svc.recordIfNew(ctx, shared.ArticleLikeKeyPrefix, slug, ip)
}

func (svc *InteractionService) recordIfNew(ctx context.Context, prefix, slug, ip string) bool {
	if ip == "" || ip == "unknown" {
		return false
	}

	key := prefix + slug + ":" + HashIP(ip)

	won, err := svc.redisSvc.SetNX(ctx, key, "1", shared.InteractionDedupWindow)
	if err != nil {
		log.WithError(err).WithField("slug", slug).
			Warn("Interaction dedup store unavailable, failing open")
		return true
	}
	if won {
		kind := "view"
		if prefix == shared.ArticleLikeKeyPrefix {
			kind = "like"
		}
		articleInteractionsTotal.WithLabelValues(kind).Inc()
	}
	return won
}

// HashIP maps an IP to a stable opaque token. Same IP, same key; raw addresses
// never reach the store.
func HashIP(ip string) string {
	sum := sha256.Sum256([]byte(ip))
	return hex.EncodeToString(sum[:])
}
