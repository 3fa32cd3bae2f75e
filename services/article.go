package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/inkwell-cms/inkwell_api/dto"
	"github.com/inkwell-cms/inkwell_api/model"
	"github.com/inkwell-cms/inkwell_api/shared"

	appContext "github.com/alphabatem/common/context"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

type ArticleService struct {
	appContext.DefaultService

	sqlSvc         *PostgresService
	cacheSvc       *CacheService
	interactionSvc *InteractionService
	auditSvc       *AuditService

	siteTitle string
	siteURL   string
	feedSize  int
	cacheTTL  time.Duration
}

const ARTICLE_SVC = "article_svc"

func (svc ArticleService) Id() string {
	return ARTICLE_SVC
}

func (svc *ArticleService) Configure(ctx *appContext.Context) error {
	svc.siteTitle = os.Getenv("SITE_TITLE")
	if svc.siteTitle == "" {
		svc.siteTitle = "Inkwell"
	}
	svc.siteURL = os.Getenv("BASE_URL")
	if svc.siteURL == "" {
		svc.siteURL = "http://localhost:8000"
	}
	svc.feedSize = int(envInt64("FEED_SIZE", 20))
	svc.cacheTTL = time.Duration(envInt64("ARTICLE_CACHE_TTL_MINUTES", 10)) * time.Minute

	return svc.DefaultService.Configure(ctx)
}

func (svc *ArticleService) Start() error {
	svc.sqlSvc = svc.Service(POSTGRES_SVC).(*PostgresService)
	svc.cacheSvc = svc.Service(CACHE_SVC).(*CacheService)
	svc.interactionSvc = svc.Service(INTERACTION_SVC).(*InteractionService)
	svc.auditSvc = svc.Service(AUDIT_SVC).(*AuditService)
	return nil
}

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify collapses a title into a URL-safe slug.
func Slugify(title string) string {
	slug := strings.ToLower(strings.TrimSpace(title))
	slug = slugPattern.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")
	if len(slug) > 200 {
		slug = slug[:200]
		slug = strings.Trim(slug, "-")
	}
	return slug
}

func (svc *ArticleService) Create(authorID string, req dto.CreateArticleRequest) (*dto.ArticleResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, shared.NewValidationError(err, dto.FormatValidationErrors(err))
	}

	slug := Slugify(req.Title)
	if slug == "" {
		return nil, shared.NewBadRequestError(nil, "Title does not produce a usable slug")
	}
	if _, err := svc.sqlSvc.GetArticleBySlug(slug); err == nil {
		// Disambiguate instead of rejecting.
		slug = fmt.Sprintf("%s-%s", slug, uuid.NewString()[:8])
	}

	status := req.Status
	if status == "" {
		status = model.ArticleStatusDraft
	}

	tags, err := encodeTags(req.Tags)
	if err != nil {
		return nil, shared.NewBadRequestError(err, "Invalid tags")
	}

	article := &model.Article{
		ID:       uuid.NewString(),
		Slug:     slug,
		Title:    req.Title,
		Summary:  req.Summary,
		Content:  req.Content,
		AuthorID: authorID,
		Status:   status,
		Tags:     tags,
	}
	if status == model.ArticleStatusPublished {
		now := time.Now()
		article.PublishedAt = &now
	}

	if err := svc.sqlSvc.CreateArticle(article); err != nil {
		return nil, shared.NewInternalError(svc.sqlSvc.HandleError(err), "Failed to create article")
	}

	svc.syncTags(nil, req.Tags)
	svc.invalidateAfterWrite(context.Background(), article.Slug)
	svc.auditSvc.Record(authorID, model.AuditActionArticleWrite, "", "", true, "created "+article.Slug)

	resp := toArticleResponse(article, true)
	return &resp, nil
}

func (svc *ArticleService) Update(authorID, authorRole, slug string, req dto.UpdateArticleRequest) (*dto.ArticleResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, shared.NewValidationError(err, dto.FormatValidationErrors(err))
	}

	article, err := svc.sqlSvc.GetArticleBySlug(slug)
	if err != nil {
		return nil, shared.NewNotFoundError(err, "Article not found")
	}
	if article.AuthorID != authorID && authorRole != shared.RoleAdmin {
		return nil, shared.NewForbiddenError(nil, "Not your article")
	}

	oldTags := decodeTags(article.Tags)

	if req.Title != "" {
		article.Title = req.Title
	}
	if req.Summary != "" {
		article.Summary = req.Summary
	}
	if req.Content != "" {
		article.Content = req.Content
	}
	if req.Tags != nil {
		tags, err := encodeTags(req.Tags)
		if err != nil {
			return nil, shared.NewBadRequestError(err, "Invalid tags")
		}
		article.Tags = tags
	}
	if req.Status != "" && req.Status != article.Status {
		article.Status = req.Status
		if req.Status == model.ArticleStatusPublished && article.PublishedAt == nil {
			now := time.Now()
			article.PublishedAt = &now
		}
	}

	if err := svc.sqlSvc.UpdateArticle(article); err != nil {
		return nil, shared.NewInternalError(svc.sqlSvc.HandleError(err), "Failed to update article")
	}

	if req.Tags != nil {
		svc.syncTags(oldTags, req.Tags)
	}
	svc.invalidateAfterWrite(context.Background(), article.Slug)
	svc.auditSvc.Record(authorID, model.AuditActionArticleWrite, "", "", true, "updated "+article.Slug)

	resp := toArticleResponse(article, true)
	return &resp, nil
}

func (svc *ArticleService) Delete(authorID, authorRole, slug string) error {
	article, err := svc.sqlSvc.GetArticleBySlug(slug)
	if err != nil {
		return shared.NewNotFoundError(err, "Article not found")
	}
	if article.AuthorID != authorID && authorRole != shared.RoleAdmin {
		return shared.NewForbiddenError(nil, "Not your article")
	}

	if err := svc.sqlSvc.SoftDeleteArticle(slug); err != nil {
		return shared.NewInternalError(svc.sqlSvc.HandleError(err), "Failed to delete article")
	}

	svc.syncTags(decodeTags(article.Tags), nil)
	svc.invalidateAfterWrite(context.Background(), slug)
	svc.auditSvc.Record(authorID, model.AuditActionArticleWrite, "", "", true, "deleted "+slug)
	return nil
}

// Get serves a single article read-through: cache first, then database.
// Unpublished articles are only visible to their author and admins.
func (svc *ArticleService) Get(ctx context.Context, slug, viewerID, viewerRole string) (*dto.ArticleResponse, error) {
	cacheKey := shared.CacheNamespaceArticles + "slug:" + slug

	var cached dto.ArticleResponse
	if svc.cacheSvc.Get(ctx, cacheKey, &cached) {
		if cached.Status == model.ArticleStatusPublished || cached.AuthorID == viewerID || viewerRole == shared.RoleAdmin {
			return &cached, nil
		}
		return nil, shared.NewNotFoundError(nil, "Article not found")
	}

	article, err := svc.sqlSvc.GetArticleBySlug(slug)
	if err != nil {
		return nil, shared.NewNotFoundError(err, "Article not found")
	}

	resp := toArticleResponse(article, true)
	svc.cacheSvc.Set(ctx, cacheKey, resp, svc.cacheTTL)

	if article.Status != model.ArticleStatusPublished && article.AuthorID != viewerID && viewerRole != shared.RoleAdmin {
		return nil, shared.NewNotFoundError(nil, "Article not found")
	}
	return &resp, nil
}

func (svc *ArticleService) List(ctx context.Context, page, limit int) (*dto.ArticleListResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 50 {
		limit = 10
	}

	cacheKey := fmt.Sprintf("%slist:published:%d:%d", shared.CacheNamespaceArticles, page, limit)
	var cached dto.ArticleListResponse
	if svc.cacheSvc.Get(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	articles, total, err := svc.sqlSvc.ListArticles(model.ArticleStatusPublished, (page-1)*limit, limit)
	if err != nil {
		return nil, shared.NewInternalError(svc.sqlSvc.HandleError(err), "Failed to list articles")
	}

	resp := &dto.ArticleListResponse{
		Articles: toArticleResponses(articles, false),
		Total:    int(total),
		Page:     page,
		Limit:    limit,
	}
	svc.cacheSvc.Set(ctx, cacheKey, resp, svc.cacheTTL)
	return resp, nil
}

func (svc *ArticleService) ListByAuthor(authorID string, page, limit int) (*dto.ArticleListResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 50 {
		limit = 10
	}

	articles, total, err := svc.sqlSvc.ListArticlesByAuthor(authorID, (page-1)*limit, limit)
	if err != nil {
		return nil, shared.NewInternalError(svc.sqlSvc.HandleError(err), "Failed to list articles")
	}

	return &dto.ArticleListResponse{
		Articles: toArticleResponses(articles, false),
		Total:    int(total),
		Page:     page,
		Limit:    limit,
	}, nil
}

func (svc *ArticleService) Search(ctx context.Context, req dto.SearchRequest) (*dto.ArticleListResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, shared.NewValidationError(err, dto.FormatValidationErrors(err))
	}
	page := req.Page
	if page < 1 {
		page = 1
	}
	limit := req.Limit
	if limit < 1 || limit > 50 {
		limit = 10
	}

	normalized := strings.ToLower(strings.TrimSpace(req.Query))
	cacheKey := fmt.Sprintf("%s%s:%d:%d", shared.CacheNamespaceSearch, normalized, page, limit)

	var cached dto.ArticleListResponse
	if svc.cacheSvc.Get(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	articles, total, err := svc.sqlSvc.SearchArticles(normalized, (page-1)*limit, limit)
	if err != nil {
		return nil, shared.NewInternalError(svc.sqlSvc.HandleError(err), "Search failed")
	}

	resp := &dto.ArticleListResponse{
		Articles: toArticleResponses(articles, false),
		Total:    int(total),
		Page:     page,
		Limit:    limit,
	}
	svc.cacheSvc.Set(ctx, cacheKey, resp, svc.cacheTTL)
	return resp, nil
}

func (svc *ArticleService) ListTags(ctx context.Context) ([]dto.TagResponse, error) {
	cacheKey := shared.CacheNamespaceTags + "all"

	var cached []dto.TagResponse
	if svc.cacheSvc.Get(ctx, cacheKey, &cached) {
		return cached, nil
	}

	tags, err := svc.sqlSvc.ListTags()
	if err != nil {
		return nil, shared.NewInternalError(svc.sqlSvc.HandleError(err), "Failed to list tags")
	}

	out := make([]dto.TagResponse, 0, len(tags))
	for _, t := range tags {
		if t.ArticleCount <= 0 {
			continue
		}
		out = append(out, dto.TagResponse{Name: t.Name, ArticleCount: t.ArticleCount})
	}

	svc.cacheSvc.Set(ctx, cacheKey, out, svc.cacheTTL)
	return out, nil
}

func (svc *ArticleService) Feed(ctx context.Context) (*dto.FeedResponse, error) {
	cacheKey := shared.CacheNamespaceFeed + "recent"

	var cached dto.FeedResponse
	if svc.cacheSvc.Get(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	articles, _, err := svc.sqlSvc.ListArticles(model.ArticleStatusPublished, 0, svc.feedSize)
	if err != nil {
		return nil, shared.NewInternalError(svc.sqlSvc.HandleError(err), "Failed to build feed")
	}

	items := make([]dto.FeedItem, 0, len(articles))
	for _, a := range articles {
		items = append(items, dto.FeedItem{
			Title:       a.Title,
			Slug:        a.Slug,
			Summary:     a.Summary,
			PublishedAt: a.PublishedAt,
		})
	}

	resp := &dto.FeedResponse{
		Title:       svc.siteTitle,
		Link:        svc.siteURL,
		Description: fmt.Sprintf("Latest writing from %s", svc.siteTitle),
		Items:       items,
		GeneratedAt: time.Now(),
	}
	svc.cacheSvc.Set(ctx, cacheKey, resp, svc.cacheTTL)
	return resp, nil
}

// RecordView counts at most one view per IP per article per day. The response
// carries the fresh total either way.
func (svc *ArticleService) RecordView(ctx context.Context, slug, ip string) (*dto.InteractionResponse, error) {
	article, err := svc.sqlSvc.GetArticleBySlug(slug)
	if err != nil {
		return nil, shared.NewNotFoundError(err, "Article not found")
	}

	counted := svc.interactionSvc.RecordViewIfNew(ctx, slug, ip)
	total := article.ViewCount
	if counted {
		if err := svc.sqlSvc.IncrementArticleViews(slug); err != nil {
			log.WithError(err).WithField("slug", slug).Error("Failed to increment view count")
		} else {
			total++
		}
	}

	return &dto.InteractionResponse{Counted: counted, Total: total}, nil
}

func (svc *ArticleService) RecordLike(ctx context.Context, slug, ip string) (*dto.InteractionResponse, error) {
	article, err := svc.sqlSvc.GetArticleBySlug(slug)
	if err != nil {
		return nil, shared.NewNotFoundError(err, "Article not found")
	}

	counted := svc.interactionSvc.RecordLikeIfNew(ctx, slug, ip)
	total := article.LikeCount
	if counted {
		if err := svc.sqlSvc.IncrementArticleLikes(slug); err != nil {
			log.WithError(err).WithField("slug", slug).Error("Failed to increment like count")
		} else {
			total++
		}
	}

	return &dto.InteractionResponse{Counted: counted, Total: total}, nil
}

// invalidateAfterWrite drops every cached view an article write can go stale
// through: the article itself, lists, search results and the feed.
func (svc *ArticleService) invalidateAfterWrite(ctx context.Context, slug string) {
	svc.cacheSvc.InvalidateArticle(ctx, slug)
	svc.cacheSvc.InvalidateAllArticles(ctx)
	svc.cacheSvc.InvalidateAllTags(ctx)
	svc.cacheSvc.InvalidateSearchCache(ctx)
	svc.cacheSvc.InvalidateFeedCache(ctx)
}

func (svc *ArticleService) syncTags(oldTags, newTags []string) {
	removed := diffTags(oldTags, newTags)
	added := diffTags(newTags, oldTags)

	for _, name := range added {
		tag := &model.Tag{ID: uuid.NewString(), Name: strings.ToLower(name), ArticleCount: 0}
		if err := svc.sqlSvc.UpsertTag(tag); err != nil {
			log.WithError(err).WithField("tag", name).Warn("Failed to upsert tag")
			continue
		}
		if err := svc.sqlSvc.AdjustTagCount(strings.ToLower(name), 1); err != nil {
			log.WithError(err).WithField("tag", name).Warn("Failed to adjust tag count")
		}
	}
	for _, name := range removed {
		if err := svc.sqlSvc.AdjustTagCount(strings.ToLower(name), -1); err != nil {
			log.WithError(err).WithField("tag", name).Warn("Failed to adjust tag count")
		}
	}
}

func diffTags(a, b []string) []string {
	seen := make(map[string]bool, len(b))
	for _, t := range b {
		seen[strings.ToLower(t)] = true
	}
	var out []string
	for _, t := range a {
		if !seen[strings.ToLower(t)] {
			out = append(out, t)
		}
	}
	return out
}

func encodeTags(tags []string) (json.RawMessage, error) {
	if tags == nil {
		tags = []string{}
	}
	return json.Marshal(tags)
}

func decodeTags(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var tags []string
	if err := json.Unmarshal(raw, &tags); err != nil {
		return nil
	}
	return tags
}

func toArticleResponse(a *model.Article, includeContent bool) dto.ArticleResponse {
	resp := dto.ArticleResponse{
		ID:          a.ID,
		Slug:        a.Slug,
		Title:       a.Title,
		Summary:     a.Summary,
		CoverURL:    a.CoverURL,
		AuthorID:    a.AuthorID,
		Status:      a.Status,
		Tags:        decodeTags(a.Tags),
		ViewCount:   a.ViewCount,
		LikeCount:   a.LikeCount,
		PublishedAt: a.PublishedAt,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
	if includeContent {
		resp.Content = a.Content
	}
	return resp
}

func toArticleResponses(articles []model.Article, includeContent bool) []dto.ArticleResponse {
	out := make([]dto.ArticleResponse, 0, len(articles))
	for i := range articles {
		out = append(out, toArticleResponse(&articles[i], includeContent))
	}
	return out
}
