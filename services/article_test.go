package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/inkwell-cms/inkwell_api/dto"
	"github.com/inkwell-cms/inkwell_api/model"
	"github.com/inkwell-cms/inkwell_api/shared"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Hello, World", "hello-world"},
		{"  Spaces   everywhere  ", "spaces-everywhere"},
		{"Go 1.24 Release Notes!", "go-1-24-release-notes"},
		{"UPPER case", "upper-case"},
		{"---punctuation only!!!---", "punctuation-only"},
		{"日本語のタイトル", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Slugify(tt.title), "title %q", tt.title)
	}

	long := Slugify(strings.Repeat("word ", 100))
	assert.LessOrEqual(t, len(long), 200)
	assert.False(t, strings.HasSuffix(long, "-"))
}

func newTestArticleService(t *testing.T) (*ArticleService, *PostgresService, *RedisService) {
	t.Helper()

	sqlSvc := newTestDB(t)
	redisSvc, _ := newTestRedis(t)

	svc := &ArticleService{
		sqlSvc: sqlSvc,
		cacheSvc: &CacheService{
			redisSvc:   redisSvc,
			defaultTTL: 10 * time.Minute,
			opTimeout:  2 * time.Second,
		},
		interactionSvc: &InteractionService{redisSvc: redisSvc},
		auditSvc:       &AuditService{sqlSvc: sqlSvc},
		siteTitle:      "Inkwell",
		siteURL:        "http://localhost:8000",
		feedSize:       20,
		cacheTTL:       10 * time.Minute,
	}
	return svc, sqlSvc, redisSvc
}

func publishTestArticle(t *testing.T, svc *ArticleService, authorID, title string) *dto.ArticleResponse {
	t.Helper()

	resp, err := svc.Create(authorID, dto.CreateArticleRequest{
		Title:   title,
		Content: "Some body text for " + title,
		Status:  model.ArticleStatusPublished,
	})
	require.NoError(t, err)
	return resp
}

func TestArticleCreateDisambiguatesSlug(t *testing.T) {
	svc, sqlSvc, _ := newTestArticleService(t)
	author := createTestUser(t, sqlSvc, "author@example.com")

	first := publishTestArticle(t, svc, author.ID, "My Article")
	second := publishTestArticle(t, svc, author.ID, "My Article")

	assert.Equal(t, "my-article", first.Slug)
	assert.NotEqual(t, first.Slug, second.Slug)
	assert.True(t, strings.HasPrefix(second.Slug, "my-article-"))
}

func TestArticleDraftHiddenFromStrangers(t *testing.T) {
	svc, sqlSvc, _ := newTestArticleService(t)
	author := createTestUser(t, sqlSvc, "author@example.com")

	draft, err := svc.Create(author.ID, dto.CreateArticleRequest{
		Title:   "Work In Progress",
		Content: "not done yet",
	})
	require.NoError(t, err)
	ctx := context.Background()

	_, err = svc.Get(ctx, draft.Slug, "", "")
	assert.Error(t, err, "anonymous readers cannot see drafts")

	got, err := svc.Get(ctx, draft.Slug, author.ID, shared.RoleAuthor)
	require.NoError(t, err)
	assert.Equal(t, draft.Slug, got.Slug)

	got, err = svc.Get(ctx, draft.Slug, "someone-else", shared.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, draft.Slug, got.Slug)
}

func TestArticleUpdateOwnership(t *testing.T) {
	svc, sqlSvc, _ := newTestArticleService(t)
	author := createTestUser(t, sqlSvc, "author@example.com")
	article := publishTestArticle(t, svc, author.ID, "Owned Article")

	_, err := svc.Update("intruder", shared.RoleAuthor, article.Slug, dto.UpdateArticleRequest{Title: "Hijacked"})
	require.Error(t, err)
	appErr, ok := shared.GetAppError(err)
	require.True(t, ok)
	assert.Equal(t, 403, appErr.StatusCode)

	updated, err := svc.Update("intruder", shared.RoleAdmin, article.Slug, dto.UpdateArticleRequest{Title: "Moderated Title"})
	require.NoError(t, err)
	assert.Equal(t, "Moderated Title", updated.Title)
}

func TestArticleWriteInvalidatesCache(t *testing.T) {
	svc, sqlSvc, redisSvc := newTestArticleService(t)
	author := createTestUser(t, sqlSvc, "author@example.com")
	article := publishTestArticle(t, svc, author.ID, "Cached Article")
	ctx := context.Background()

	_, err := svc.Get(ctx, article.Slug, "", "")
	require.NoError(t, err)

	cacheKey := shared.CacheNamespaceArticles + "slug:" + article.Slug
	raw, err := redisSvc.Get(ctx, cacheKey)
	require.NoError(t, err)
	require.NotEmpty(t, raw, "read must populate the cache")

	_, err = svc.Update(author.ID, shared.RoleAuthor, article.Slug, dto.UpdateArticleRequest{Title: "Cached Article v2"})
	require.NoError(t, err)

	raw, err = redisSvc.Get(ctx, cacheKey)
	require.NoError(t, err)
	assert.Empty(t, raw, "write must evict the cached entry")

	got, err := svc.Get(ctx, article.Slug, "", "")
	require.NoError(t, err)
	assert.Equal(t, "Cached Article v2", got.Title)
}

func TestArticleViewDedup(t *testing.T) {
	svc, sqlSvc, _ := newTestArticleService(t)
	author := createTestUser(t, sqlSvc, "author@example.com")
	article := publishTestArticle(t, svc, author.ID, "Popular Article")
	ctx := context.Background()

	first, err := svc.RecordView(ctx, article.Slug, "1.2.3.4")
	require.NoError(t, err)
	assert.True(t, first.Counted)
	assert.Equal(t, int64(1), first.Total)

	repeat, err := svc.RecordView(ctx, article.Slug, "1.2.3.4")
	require.NoError(t, err)
	assert.False(t, repeat.Counted)
	assert.Equal(t, int64(1), repeat.Total)

	other, err := svc.RecordView(ctx, article.Slug, "5.6.7.8")
	require.NoError(t, err)
	assert.True(t, other.Counted)
	assert.Equal(t, int64(2), other.Total)
}

func TestArticleLikeDedup(t *testing.T) {
	svc, sqlSvc, _ := newTestArticleService(t)
	author := createTestUser(t, sqlSvc, "author@example.com")
	article := publishTestArticle(t, svc, author.ID, "Likeable Article")
	ctx := context.Background()

	liked, err := svc.RecordLike(ctx, article.Slug, "1.2.3.4")
	require.NoError(t, err)
	assert.True(t, liked.Counted)
	assert.Equal(t, int64(1), liked.Total)

	again, err := svc.RecordLike(ctx, article.Slug, "1.2.3.4")
	require.NoError(t, err)
	assert.False(t, again.Counted)
	assert.Equal(t, int64(1), again.Total)
}

func TestArticleTagsTrackPublishedCounts(t *testing.T) {
	svc, sqlSvc, _ := newTestArticleService(t)
	author := createTestUser(t, sqlSvc, "author@example.com")
	ctx := context.Background()

	_, err := svc.Create(author.ID, dto.CreateArticleRequest{
		Title:   "Tagged Article",
		Content: "body",
		Status:  model.ArticleStatusPublished,
		Tags:    []string{"go", "testing"},
	})
	require.NoError(t, err)

	tags, err := svc.ListTags(ctx)
	require.NoError(t, err)
	require.Len(t, tags, 2)

	names := []string{tags[0].Name, tags[1].Name}
	assert.Contains(t, names, "go")
	assert.Contains(t, names, "testing")
}

func TestArticleFeed(t *testing.T) {
	svc, sqlSvc, _ := newTestArticleService(t)
	author := createTestUser(t, sqlSvc, "author@example.com")
	publishTestArticle(t, svc, author.ID, "Feed Entry One")
	publishTestArticle(t, svc, author.ID, "Feed Entry Two")

	// Drafts never surface in the feed.
	_, err := svc.Create(author.ID, dto.CreateArticleRequest{Title: "Hidden Draft", Content: "x"})
	require.NoError(t, err)

	feed, err := svc.Feed(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Inkwell", feed.Title)
	assert.Len(t, feed.Items, 2)
}

func TestArticleSearch(t *testing.T) {
	svc, sqlSvc, _ := newTestArticleService(t)
	author := createTestUser(t, sqlSvc, "author@example.com")
	publishTestArticle(t, svc, author.ID, "Concurrency Patterns")
	publishTestArticle(t, svc, author.ID, "Garbage Collection Deep Dive")

	results, err := svc.Search(context.Background(), dto.SearchRequest{Query: "concurrency"})
	require.NoError(t, err)
	require.Equal(t, 1, results.Total)
	assert.Equal(t, "concurrency-patterns", results.Articles[0].Slug)
}
