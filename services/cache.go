package services

import (
	"context"
	"sync"
	"time"

	appContext "github.com/alphabatem/common/context"
	"github.com/inkwell-cms/inkwell_api/dto"
	"github.com/inkwell-cms/inkwell_api/shared"
	log "github.com/sirupsen/logrus"
)

// CacheService is the read-through cache facade in front of RedisService. All
// operations degrade to zero values when the store is absent or errors; a cache
// outage must never take the content API down with it.
type CacheService struct {
	appContext.DefaultService

	redisSvc *RedisService

	defaultTTL time.Duration
	opTimeout  time.Duration
}

const CACHE_SVC = "cache_svc"

func (svc CacheService) Id() string {
	return CACHE_SVC
}

func (svc *CacheService) Configure(ctx *appContext.Context) error {
	svc.defaultTTL = 10 * time.Minute
	svc.opTimeout = 2 * time.Second
	return svc.DefaultService.Configure(ctx)
}

func (svc *CacheService) Start() error {
	svc.redisSvc = svc.Service(REDIS_SVC).(*RedisService)
	return nil
}

// ==================== GENERIC OPERATIONS ====================

func (svc *CacheService) Get(ctx context.Context, key string, dest interface{}) bool {
	if svc.redisSvc == nil {
		return false
	}

	ctx, cancel := svc.withTimeout(ctx)
	defer cancel()

	raw, err := svc.redisSvc.Get(ctx, key)
	if err != nil {
		log.WithError(err).WithField("key", key).Debug("Cache get failed")
		return false
	}
	if raw == "" {
		return false
	}

	if err := svc.redisSvc.GetJSON(ctx, key, dest); err != nil {
		log.WithError(err).WithField("key", key).Warn("Cache entry unreadable")
		return false
	}
	return true
}

func (svc *CacheService) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if svc.redisSvc == nil {
		return
	}
	if ttl <= 0 {
		ttl = svc.defaultTTL
	}

	ctx, cancel := svc.withTimeout(ctx)
	defer cancel()

	if err := svc.redisSvc.Set(ctx, key, value, ttl); err != nil {
		log.WithError(err).WithField("key", key).Debug("Cache set failed")
	}
}

func (svc *CacheService) Delete(ctx context.Context, keys ...string) {
	if svc.redisSvc == nil || len(keys) == 0 {
		return
	}

	ctx, cancel := svc.withTimeout(ctx)
	defer cancel()

	if err := svc.redisSvc.Delete(ctx, keys...); err != nil {
		log.WithError(err).Debug("Cache delete failed")
	}
}

func (svc *CacheService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, svc.opTimeout)
}

// ==================== DOMAIN INVALIDATION ====================

func (svc *CacheService) invalidatePrefix(ctx context.Context, prefix string) int64 {
	if svc.redisSvc == nil {
		return 0
	}

	ctx, cancel := svc.withTimeout(ctx)
	defer cancel()

	keys, err := svc.redisSvc.Keys(ctx, prefix+"*")
	if err != nil {
		log.WithError(err).WithField("prefix", prefix).Warn("Cache scan failed")
		return 0
	}
	if len(keys) == 0 {
		return 0
	}

	if err := svc.redisSvc.Delete(ctx, keys...); err != nil {
		log.WithError(err).WithField("prefix", prefix).Warn("Cache bulk delete failed")
		return 0
	}

	cacheInvalidationsTotal.WithLabelValues(prefix).Add(float64(len(keys)))
	return int64(len(keys))
}

func (svc *CacheService) InvalidateAllArticles(ctx context.Context) int64 {
	return svc.invalidatePrefix(ctx, shared.CacheNamespaceArticles)
}

// InvalidateArticle evicts one article's entry and anything nested under it.
// The exact key plus a ":" separator bound the match so sibling slugs sharing
// a prefix ("go" vs "go-tips") are left alone.
func (svc *CacheService) InvalidateArticle(ctx context.Context, slug string) int64 {
	if svc.redisSvc == nil {
		return 0
	}

	ctx, cancel := svc.withTimeout(ctx)
	defer cancel()

	base := shared.CacheNamespaceArticles + "slug:" + slug

	keys, err := svc.redisSvc.Keys(ctx, base+":*")
	if err != nil {
		log.WithError(err).WithField("slug", slug).Warn("Cache scan failed")
		return 0
	}

	exists, err := svc.redisSvc.Exists(ctx, base)
	if err != nil {
		log.WithError(err).WithField("slug", slug).Warn("Cache lookup failed")
		return 0
	}
	if exists {
		keys = append(keys, base)
	}
	if len(keys) == 0 {
		return 0
	}

	if err := svc.redisSvc.Delete(ctx, keys...); err != nil {
		log.WithError(err).WithField("slug", slug).Warn("Cache bulk delete failed")
		return 0
	}

	cacheInvalidationsTotal.WithLabelValues(shared.CacheNamespaceArticles).Add(float64(len(keys)))
	return int64(len(keys))
}

func (svc *CacheService) InvalidateAllTags(ctx context.Context) int64 {
	return svc.invalidatePrefix(ctx, shared.CacheNamespaceTags)
}

func (svc *CacheService) InvalidateAllComments(ctx context.Context) int64 {
	return svc.invalidatePrefix(ctx, shared.CacheNamespaceComments)
}

func (svc *CacheService) InvalidateSearchCache(ctx context.Context) int64 {
	return svc.invalidatePrefix(ctx, shared.CacheNamespaceSearch)
}

func (svc *CacheService) InvalidateFeedCache(ctx context.Context) int64 {
	return svc.invalidatePrefix(ctx, shared.CacheNamespaceFeed)
}

// InvalidateAllCaches runs every domain invalidation concurrently and returns
// the summed delete count. Ordering between namespaces is irrelevant.
func (svc *CacheService) InvalidateAllCaches(ctx context.Context) int64 {
	invalidations := []func(context.Context) int64{
		svc.InvalidateAllArticles,
		svc.InvalidateAllTags,
		svc.InvalidateAllComments,
		svc.InvalidateSearchCache,
		svc.InvalidateFeedCache,
	}

	counts := make([]int64, len(invalidations))
	var wg sync.WaitGroup
	for i, fn := range invalidations {
		wg.Add(1)
		go func(i int, fn func(context.Context) int64) {
			defer wg.Done()
			counts[i] = fn(ctx)
		}(i, fn)
	}
	wg.Wait()

	var total int64
	for _, n := range counts {
		total += n
	}
	return total
}

// ==================== STATS ====================

func (svc *CacheService) countPrefix(ctx context.Context, prefix string) int64 {
	if svc.redisSvc == nil {
		return 0
	}

	ctx, cancel := svc.withTimeout(ctx)
	defer cancel()

	keys, err := svc.redisSvc.Keys(ctx, prefix+"*")
	if err != nil {
		log.WithError(err).WithField("prefix", prefix).Debug("Cache stats scan failed")
		return 0
	}
	return int64(len(keys))
}

func (svc *CacheService) GetCacheStats(ctx context.Context) *dto.CacheStatsResponse {
	stats := &dto.CacheStatsResponse{Timestamp: time.Now()}

	targets := []struct {
		prefix string
		dest   *int64
	}{
		{shared.CacheNamespaceArticles, &stats.Articles},
		{shared.CacheNamespaceTags, &stats.Tags},
		{shared.CacheNamespaceComments, &stats.Comments},
		{shared.CacheNamespaceSearch, &stats.Search},
		{shared.CacheNamespaceFeed, &stats.Feed},
	}

	var wg sync.WaitGroup
	for _, t := range targets {
		wg.Add(1)
		go func(prefix string, dest *int64) {
			defer wg.Done()
			*dest = svc.countPrefix(ctx, prefix)
		}(t.prefix, t.dest)
	}
	wg.Wait()

	stats.Total = stats.Articles + stats.Tags + stats.Comments + stats.Search + stats.Feed
	return stats
}
