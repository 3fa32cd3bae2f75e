package services

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/inkwell-cms/inkwell_api/dto"
	"github.com/inkwell-cms/inkwell_api/model"
	"github.com/inkwell-cms/inkwell_api/shared"

	appContext "github.com/alphabatem/common/context"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

type CommentService struct {
	appContext.DefaultService

	sqlSvc   *PostgresService
	cacheSvc *CacheService
	emailSvc *EmailService

	autoApprove bool
}

const COMMENT_SVC = "comment_svc"

func (svc CommentService) Id() string {
	return COMMENT_SVC
}

func (svc *CommentService) Configure(ctx *appContext.Context) error {
	svc.autoApprove = envInt64("COMMENT_AUTO_APPROVE", 0) == 1

	return svc.DefaultService.Configure(ctx)
}

func (svc *CommentService) Start() error {
	svc.sqlSvc = svc.Service(POSTGRES_SVC).(*PostgresService)
	svc.cacheSvc = svc.Service(CACHE_SVC).(*CacheService)
	svc.emailSvc = svc.Service(EMAIL_SVC).(*EmailService)
	return nil
}

// Create stores a comment for moderation. Anonymous commenters only need a
// display name. The article author gets a notification email.
func (svc *CommentService) Create(ctx context.Context, articleSlug, authorID, ip string, req dto.CreateCommentRequest) (*dto.CommentResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, shared.NewValidationError(err, dto.FormatValidationErrors(err))
	}

	article, err := svc.sqlSvc.GetArticleBySlug(articleSlug)
	if err != nil {
		return nil, shared.NewNotFoundError(err, "Article not found")
	}
	if article.Status != model.ArticleStatusPublished {
		return nil, shared.NewNotFoundError(nil, "Article not found")
	}

	status := model.CommentStatusPending
	if svc.autoApprove {
		status = model.CommentStatusApproved
	}

	comment := &model.Comment{
		ID:          uuid.NewString(),
		ArticleID:   article.ID,
		ArticleSlug: article.Slug,
		AuthorID:    authorID,
		AuthorName:  sanitizeText(req.AuthorName),
		AuthorEmail: strings.ToLower(strings.TrimSpace(req.AuthorEmail)),
		Content:     sanitizeText(req.Content),
		Status:      status,
		IP:          ip,
	}

	if err := svc.sqlSvc.CreateComment(comment); err != nil {
		return nil, shared.NewInternalError(svc.sqlSvc.HandleError(err), "Failed to post comment")
	}

	if status == model.CommentStatusApproved {
		svc.cacheSvc.InvalidateAllComments(ctx)
	}

	go svc.notifyAuthor(article, comment)

	resp := toCommentResponse(comment)
	return &resp, nil
}

// ListApproved serves the public comment thread of an article, cached.
func (svc *CommentService) ListApproved(ctx context.Context, articleSlug string) (*dto.CommentListResponse, error) {
	cacheKey := fmt.Sprintf("%sarticle:%s", shared.CacheNamespaceComments, articleSlug)

	var cached dto.CommentListResponse
	if svc.cacheSvc.Get(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	comments, total, err := svc.sqlSvc.ListCommentsForArticle(articleSlug, model.CommentStatusApproved, 0, 200)
	if err != nil {
		return nil, shared.NewInternalError(svc.sqlSvc.HandleError(err), "Failed to list comments")
	}

	resp := &dto.CommentListResponse{
		Comments: toCommentResponses(comments),
		Total:    int(total),
	}
	svc.cacheSvc.Set(ctx, cacheKey, resp, 0)
	return resp, nil
}

func (svc *CommentService) ListPending(page, limit int) (*dto.CommentListResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 25
	}

	comments, total, err := svc.sqlSvc.ListPendingComments((page-1)*limit, limit)
	if err != nil {
		return nil, shared.NewInternalError(svc.sqlSvc.HandleError(err), "Failed to list pending comments")
	}

	return &dto.CommentListResponse{
		Comments: toCommentResponses(comments),
		Total:    int(total),
	}, nil
}

func (svc *CommentService) Approve(ctx context.Context, commentID string) (*dto.CommentResponse, error) {
	comment, err := svc.sqlSvc.GetComment(commentID)
	if err != nil {
		return nil, shared.NewNotFoundError(err, "Comment not found")
	}

	if comment.Status != model.CommentStatusApproved {
		comment.Status = model.CommentStatusApproved
		if err := svc.sqlSvc.UpdateComment(comment); err != nil {
			return nil, shared.NewInternalError(svc.sqlSvc.HandleError(err), "Failed to approve comment")
		}
		svc.cacheSvc.InvalidateAllComments(ctx)
	}

	resp := toCommentResponse(comment)
	return &resp, nil
}

func (svc *CommentService) Delete(ctx context.Context, commentID string) error {
	if _, err := svc.sqlSvc.GetComment(commentID); err != nil {
		return shared.NewNotFoundError(err, "Comment not found")
	}

	if err := svc.sqlSvc.SoftDeleteComment(commentID); err != nil {
		return shared.NewInternalError(svc.sqlSvc.HandleError(err), "Failed to delete comment")
	}

	svc.cacheSvc.InvalidateAllComments(ctx)
	return nil
}

func (svc *CommentService) notifyAuthor(article *model.Article, comment *model.Comment) {
	author, err := svc.sqlSvc.GetUser(article.AuthorID)
	if err != nil {
		log.WithError(err).WithField("article", article.Slug).Warn("Comment notification: author lookup failed")
		return
	}

	excerpt := comment.Content
	if len(excerpt) > 200 {
		excerpt = excerpt[:200] + "…"
	}

	if err := svc.emailSvc.SendCommentNotificationEmail(author.Email, article.Title, article.Slug, comment.AuthorName, excerpt); err != nil {
		log.WithError(err).WithField("article", article.Slug).Warn("Failed to send comment notification")
	}
}

// sanitizeText neutralizes markup so stored comments render as plain text.
func sanitizeText(s string) string {
	return html.EscapeString(strings.TrimSpace(s))
}

func toCommentResponse(c *model.Comment) dto.CommentResponse {
	return dto.CommentResponse{
		ID:          c.ID,
		ArticleSlug: c.ArticleSlug,
		AuthorName:  c.AuthorName,
		Content:     c.Content,
		Status:      c.Status,
		CreatedAt:   c.CreatedAt,
	}
}

func toCommentResponses(comments []model.Comment) []dto.CommentResponse {
	out := make([]dto.CommentResponse, 0, len(comments))
	for i := range comments {
		out = append(out, toCommentResponse(&comments[i]))
	}
	return out
}
