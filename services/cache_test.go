package services

import (
	"context"
	"testing"
	"time"

	"github.com/inkwell-cms/inkwell_api/shared"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*CacheService, *RedisService) {
	t.Helper()

	redisSvc, _ := newTestRedis(t)
	svc := &CacheService{
		redisSvc:   redisSvc,
		defaultTTL: 10 * time.Minute,
		opTimeout:  2 * time.Second,
	}
	return svc, redisSvc
}

func seedCacheKeys(t *testing.T, redisSvc *RedisService, keys ...string) {
	t.Helper()
	ctx := context.Background()
	for _, key := range keys {
		require.NoError(t, redisSvc.Set(ctx, key, "x", time.Hour))
	}
}

func TestCacheGetSetRoundTrip(t *testing.T) {
	svc, _ := newTestCache(t)
	ctx := context.Background()

	type payload struct {
		Title string `json:"title"`
		Views int64  `json:"views"`
	}

	svc.Set(ctx, shared.CacheNamespaceArticles+"slug:hello", payload{Title: "Hello", Views: 42}, time.Minute)

	var got payload
	require.True(t, svc.Get(ctx, shared.CacheNamespaceArticles+"slug:hello", &got))
	assert.Equal(t, "Hello", got.Title)
	assert.Equal(t, int64(42), got.Views)

	assert.False(t, svc.Get(ctx, shared.CacheNamespaceArticles+"slug:missing", &got))
}

func TestCacheInvalidatePrefixCountsDeletes(t *testing.T) {
	svc, redisSvc := newTestCache(t)
	ctx := context.Background()

	seedCacheKeys(t, redisSvc,
		shared.CacheNamespaceArticles+"slug:one",
		shared.CacheNamespaceArticles+"slug:two",
		shared.CacheNamespaceArticles+"list:published:1:20",
		shared.CacheNamespaceTags+"all",
	)

	assert.Equal(t, int64(3), svc.InvalidateAllArticles(ctx))

	// Tag entries survive an article invalidation.
	var dest interface{}
	raw, err := redisSvc.Get(ctx, shared.CacheNamespaceTags+"all")
	require.NoError(t, err)
	assert.NotEmpty(t, raw)
	assert.False(t, svc.Get(ctx, shared.CacheNamespaceArticles+"slug:one", &dest))
}

func TestCacheInvalidateSingleArticle(t *testing.T) {
	svc, redisSvc := newTestCache(t)
	ctx := context.Background()

	seedCacheKeys(t, redisSvc,
		shared.CacheNamespaceArticles+"slug:target",
		shared.CacheNamespaceArticles+"slug:other",
	)

	assert.Equal(t, int64(1), svc.InvalidateArticle(ctx, "target"))

	raw, err := redisSvc.Get(ctx, shared.CacheNamespaceArticles+"slug:other")
	require.NoError(t, err)
	assert.NotEmpty(t, raw)
}

func TestCacheInvalidateAllSumsNamespaces(t *testing.T) {
	svc, redisSvc := newTestCache(t)
	ctx := context.Background()

	seedCacheKeys(t, redisSvc,
		shared.CacheNamespaceArticles+"slug:one",
		shared.CacheNamespaceTags+"all",
		shared.CacheNamespaceComments+"article:one",
		shared.CacheNamespaceSearch+"query:1:20",
		shared.CacheNamespaceFeed+"recent",
		"login_attempt:user@example.com",
	)

	assert.Equal(t, int64(5), svc.InvalidateAllCaches(ctx))

	// Abuse-tracking keys are not cache entries and must survive a full flush.
	raw, err := redisSvc.Get(ctx, "login_attempt:user@example.com")
	require.NoError(t, err)
	assert.NotEmpty(t, raw)
}

func TestCacheInvalidateEmptyNamespace(t *testing.T) {
	svc, _ := newTestCache(t)

	assert.Equal(t, int64(0), svc.InvalidateSearchCache(context.Background()))
}

func TestCacheStatsCountsPerNamespace(t *testing.T) {
	svc, redisSvc := newTestCache(t)
	ctx := context.Background()

	seedCacheKeys(t, redisSvc,
		shared.CacheNamespaceArticles+"slug:one",
		shared.CacheNamespaceArticles+"slug:two",
		shared.CacheNamespaceTags+"all",
		shared.CacheNamespaceFeed+"recent",
	)

	stats := svc.GetCacheStats(ctx)
	assert.Equal(t, int64(2), stats.Articles)
	assert.Equal(t, int64(1), stats.Tags)
	assert.Equal(t, int64(0), stats.Comments)
	assert.Equal(t, int64(0), stats.Search)
	assert.Equal(t, int64(1), stats.Feed)
	assert.Equal(t, int64(4), stats.Total)
	assert.False(t, stats.Timestamp.IsZero())
}

func TestCacheDegradesWhenStoreDown(t *testing.T) {
	svc := &CacheService{
		redisSvc:   newBrokenRedis(t),
		defaultTTL: 10 * time.Minute,
		opTimeout:  time.Second,
	}
	ctx := context.Background()

	var dest interface{}
	assert.False(t, svc.Get(ctx, shared.CacheNamespaceArticles+"slug:one", &dest))
	svc.Set(ctx, shared.CacheNamespaceArticles+"slug:one", "x", time.Minute)

	assert.Equal(t, int64(0), svc.InvalidateAllCaches(ctx))

	stats := svc.GetCacheStats(ctx)
	assert.Equal(t, int64(0), stats.Total)
}

func TestCacheInvalidateArticleLeavesSiblingSlugs(t *testing.T) {
	svc, redisSvc := newTestCache(t)
	ctx := context.Background()

	seedCacheKeys(t, redisSvc,
		shared.CacheNamespaceArticles+"slug:go",
		shared.CacheNamespaceArticles+"slug:go-tips",
		shared.CacheNamespaceArticles+"slug:go:translations",
	)

	// The exact key and its nested entries go; the longer sibling slug stays.
	assert.Equal(t, int64(2), svc.InvalidateArticle(ctx, "go"))

	raw, err := redisSvc.Get(ctx, shared.CacheNamespaceArticles+"slug:go-tips")
	require.NoError(t, err)
	assert.NotEmpty(t, raw)
}

func TestCacheInvalidateArticleMissingSlug(t *testing.T) {
	svc, _ := newTestCache(t)

	assert.Equal(t, int64(0), svc.InvalidateArticle(context.Background(), "never-cached"))
}
