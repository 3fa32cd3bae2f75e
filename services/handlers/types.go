package handlers

import (
	"context"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"
	"github.com/inkwell-cms/inkwell_api/dto"
)

type AuthServiceInterface interface {
	Register(req dto.RegisterRequest, clientIP, userAgent string) (*dto.RegisterResponse, error)
	Login(req dto.LoginRequest, clientIP, userAgent string) (*dto.LoginResponse, error)
	RefreshToken(req dto.RefreshTokenRequest, clientIP, userAgent string) (*dto.LoginResponse, error)
	Logout(userID, refreshToken, clientIP, userAgent string) error
	LogoutAllDevices(userID, clientIP, userAgent string) error
	VerifyEmail(req dto.VerifyEmailRequest) error
	ResendVerificationEmail(req dto.ResendVerificationRequest) error
	ChangePassword(userID string, req dto.ChangePasswordRequest) error
	ForgotPassword(req dto.ForgotPasswordRequest, clientIP, userAgent string) error
	ResetPassword(req dto.ResetPasswordRequest, clientIP, userAgent string) error
	GetLockoutStatus(email string) *dto.LockoutStatusResponse
	RequiredAuth() fiber.Handler
	RequireRole(role string) fiber.Handler
}

type UserServiceInterface interface {
	GetProfile(userID string) (*dto.UserInfo, error)
	UpdateProfile(userID string, req dto.UpdateProfileRequest) (*dto.UserInfo, error)
	AdminListUsers(page, limit int) (*dto.AdminUserListResponse, error)
	AdminUpdateUser(userID string, req dto.AdminUpdateUserRequest) (*dto.AdminUserInfo, error)
}

type ArticleServiceInterface interface {
	Create(authorID string, req dto.CreateArticleRequest) (*dto.ArticleResponse, error)
	Update(authorID, authorRole, slug string, req dto.UpdateArticleRequest) (*dto.ArticleResponse, error)
	Delete(authorID, authorRole, slug string) error
	Get(ctx context.Context, slug, viewerID, viewerRole string) (*dto.ArticleResponse, error)
	List(ctx context.Context, page, limit int) (*dto.ArticleListResponse, error)
	ListByAuthor(authorID string, page, limit int) (*dto.ArticleListResponse, error)
	Search(ctx context.Context, req dto.SearchRequest) (*dto.ArticleListResponse, error)
	ListTags(ctx context.Context) ([]dto.TagResponse, error)
	Feed(ctx context.Context) (*dto.FeedResponse, error)
	RecordView(ctx context.Context, slug, ip string) (*dto.InteractionResponse, error)
	RecordLike(ctx context.Context, slug, ip string) (*dto.InteractionResponse, error)
}

type CommentServiceInterface interface {
	Create(ctx context.Context, articleSlug, authorID, ip string, req dto.CreateCommentRequest) (*dto.CommentResponse, error)
	ListApproved(ctx context.Context, articleSlug string) (*dto.CommentListResponse, error)
	ListPending(page, limit int) (*dto.CommentListResponse, error)
	Approve(ctx context.Context, commentID string) (*dto.CommentResponse, error)
	Delete(ctx context.Context, commentID string) error
}

type ResumeServiceInterface interface {
	UpsertProfile(userID string, req dto.UpsertResumeProfileRequest) (*dto.ResumeProfileResponse, error)
	Get(userID string) (*dto.ResumeProfileResponse, error)
	UpsertSection(userID, sectionID string, req dto.UpsertResumeSectionRequest) (*dto.ResumeSectionResponse, error)
	DeleteSection(userID, sectionID string) error
	ExportHTML(userID string) ([]byte, error)
}

type TranslationServiceInterface interface {
	TranslateArticle(ctx context.Context, slug string, req dto.TranslateArticleRequest) (*dto.TranslateArticleResponse, error)
}

type MediaServiceInterface interface {
	UploadCover(articleSlug string, file *multipart.FileHeader) (*dto.MediaUploadResponse, error)
	UploadAttachment(articleSlug string, file *multipart.FileHeader) (*dto.MediaUploadResponse, error)
	ListForArticle(articleSlug string) ([]dto.MediaUploadResponse, error)
	DeleteAsset(assetID string) error
}

type CacheServiceInterface interface {
	GetCacheStats(ctx context.Context) *dto.CacheStatsResponse
	InvalidateAllCaches(ctx context.Context) int64
	InvalidateAllArticles(ctx context.Context) int64
	InvalidateAllTags(ctx context.Context) int64
	InvalidateAllComments(ctx context.Context) int64
	InvalidateSearchCache(ctx context.Context) int64
	InvalidateFeedCache(ctx context.Context) int64
}

type AuditServiceInterface interface {
	Record(userID, action, ip, userAgent string, success bool, details string)
	List(userID, action string, page, pageSize int) (*dto.AuditLogResponse, error)
}

type RateLimitServiceInterface interface {
	Reset(ctx context.Context, identity string) error
	Remaining(ctx context.Context, identity string) int64
}
