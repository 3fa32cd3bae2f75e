package services

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/inkwell-cms/inkwell_api/model"

	appContext "github.com/alphabatem/common/context"
	log "github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type PostgresService struct {
	appContext.DefaultService
	db *gorm.DB

	database string
}

const POSTGRES_SVC = "postgres_svc"

func (ds PostgresService) Id() string {
	return POSTGRES_SVC
}

func (ds PostgresService) Db() *gorm.DB {
	return ds.db
}

func (ds *PostgresService) Configure(ctx *appContext.Context) error {
	ds.database = os.Getenv("DATABASE_URL")
	if ds.database == "" {
		// Fallback to individual environment variables
		host := os.Getenv("DB_HOST")
		if host == "" {
			host = "localhost"
		}
		port := os.Getenv("DB_PORT")
		if port == "" {
			port = "5432"
		}
		user := os.Getenv("DB_USER")
		if user == "" {
			user = "postgres"
		}
		password := os.Getenv("DB_PASSWORD")
		if password == "" {
			password = "postgres"
		}
		dbname := os.Getenv("DB_NAME")
		if dbname == "" {
			dbname = "inkwell"
		}
		sslmode := os.Getenv("DB_SSLMODE")
		if sslmode == "" {
			sslmode = "disable"
		}
		timezone := os.Getenv("DB_TIMEZONE")
		if timezone == "" {
			timezone = "UTC"
		}

		ds.database = fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
			host, user, password, dbname, port, sslmode, timezone)
	}

	return ds.DefaultService.Configure(ctx)
}

func (ds *PostgresService) Start() (err error) {
	// Retry connection with exponential backoff
	maxRetries := 10
	retryDelay := time.Second

	for attempt := 1; attempt <= maxRetries; attempt++ {
		log.Printf("Attempting to connect to database (attempt %d/%d)...", attempt, maxRetries)

		ds.db, err = gorm.Open(postgres.Open(ds.database), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Error),
		})

		if err == nil {
			sqlDB, dbErr := ds.db.DB()
			if dbErr == nil {
				if pingErr := sqlDB.Ping(); pingErr == nil {
					break
				} else {
					err = pingErr
				}
			} else {
				err = dbErr
			}
		}

		if attempt == maxRetries {
			log.Printf("Failed to connect to database after %d attempts: %v", maxRetries, err)
			return err
		}

		log.Printf("Database connection failed: %v. Retrying in %v...", err, retryDelay)
		time.Sleep(retryDelay)

		retryDelay *= 2
		if retryDelay > 10*time.Second {
			retryDelay = 10 * time.Second
		}
	}

	models := []interface{}{
		&model.User{},
		&model.RefreshToken{},
		&model.PasswordResetCode{},
		&model.Article{},
		&model.Tag{},
		&model.Comment{},
		&model.ResumeProfile{},
		&model.ResumeSection{},
		&model.MediaAsset{},
		&model.AuditLog{},
	}

	err = ds.db.AutoMigrate(models...)
	if err != nil {
		log.Printf("Failed to migrate database: %v", err)
		return err
	}

	log.Println("Database connected and migrated successfully")
	return nil
}

func (ds *PostgresService) Shutdown() {
	sqlDB, err := ds.db.DB()
	if err == nil {
		sqlDB.Close()
	}
}

func (ds *PostgresService) HandleError(err error) error {
	if err == nil {
		return nil
	}

	var statusCode int
	var errorType string

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		statusCode = http.StatusNotFound // 404
		errorType = "NOT_FOUND"
	case errors.Is(err, gorm.ErrDuplicatedKey):
		statusCode = http.StatusConflict // 409
		errorType = "CONFLICT"
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		statusCode = http.StatusBadRequest // 400
		errorType = "FOREIGN_KEY_VIOLATION"
	case errors.Is(err, gorm.ErrInvalidTransaction):
		statusCode = http.StatusInternalServerError // 500
		errorType = "TRANSACTION_ERROR"
	default:
		if strings.Contains(err.Error(), "duplicate key value violates unique constraint") {
			statusCode = http.StatusConflict // 409
			errorType = "UNIQUE_CONSTRAINT"
		} else if strings.Contains(err.Error(), "connection refused") {
			statusCode = http.StatusServiceUnavailable // 503
			errorType = "DATABASE_CONNECTION_ERROR"
		} else {
			statusCode = http.StatusInternalServerError // 500
			errorType = "INTERNAL_ERROR"
		}
	}

	logEntry := log.WithFields(log.Fields{
		"status_code": statusCode,
		"error_type":  errorType,
		"error":       err.Error(),
	})

	if statusCode >= 500 {
		logEntry.Error("Database error occurred")
	} else {
		logEntry.Warn("Database operation failed")
	}

	return fmt.Errorf("%s: %w", errorType, err)
}

// -- Users --

func (ds *PostgresService) GetUser(userID string) (*model.User, error) {
	var user model.User
	if err := ds.db.Where("id = ?", userID).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (ds *PostgresService) GetUserByEmail(email string) (*model.User, error) {
	var user model.User
	if err := ds.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (ds *PostgresService) GetUserByUsername(username string) (*model.User, error) {
	var user model.User
	if err := ds.db.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (ds *PostgresService) GetUserByEmailOrUsername(emailOrUsername string) (*model.User, error) {
	var user model.User
	if err := ds.db.Where("email = ? OR username = ?", emailOrUsername, emailOrUsername).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (ds *PostgresService) CreateUser(user *model.User) error {
	return ds.db.Create(user).Error
}

func (ds *PostgresService) UpdateUser(user *model.User) error {
	return ds.db.Save(user).Error
}

func (ds *PostgresService) ListUsers(offset, limit int) ([]model.User, int64, error) {
	var users []model.User
	var total int64

	if err := ds.db.Model(&model.User{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := ds.db.Order("created_at DESC").Offset(offset).Limit(limit).Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// -- Refresh tokens --

func (ds *PostgresService) CreateRefreshToken(token *model.RefreshToken) error {
	return ds.db.Create(token).Error
}

func (ds *PostgresService) GetRefreshToken(tokenString string) (*model.RefreshToken, error) {
	var token model.RefreshToken
	if err := ds.db.Where("token = ?", tokenString).First(&token).Error; err != nil {
		return nil, err
	}
	return &token, nil
}

func (ds *PostgresService) RevokeRefreshToken(id string) error {
	return ds.db.Model(&model.RefreshToken{}).
		Where("id = ?", id).
		Update("revoked", true).Error
}

// RevokeAllRefreshTokens marks every token of the user revoked, including the
// ones already revoked. Safe to call repeatedly.
func (ds *PostgresService) RevokeAllRefreshTokens(userID string) error {
	return ds.db.Model(&model.RefreshToken{}).
		Where("user_id = ?", userID).
		Update("revoked", true).Error
}

func (ds *PostgresService) CountActiveRefreshTokens(userID string) (int64, error) {
	var count int64
	err := ds.db.Model(&model.RefreshToken{}).
		Where("user_id = ? AND revoked = ? AND expires_at > ?", userID, false, time.Now()).
		Count(&count).Error
	return count, err
}

// -- Password reset codes --

func (ds *PostgresService) CreatePasswordResetCode(code *model.PasswordResetCode) error {
	return ds.db.Create(code).Error
}

func (ds *PostgresService) GetPasswordResetCode(code string) (*model.PasswordResetCode, error) {
	var reset model.PasswordResetCode
	if err := ds.db.Where("code = ?", code).First(&reset).Error; err != nil {
		return nil, err
	}
	return &reset, nil
}

func (ds *PostgresService) InvalidatePasswordResetCode(code string) error {
	return ds.db.Model(&model.PasswordResetCode{}).
		Where("code = ?", code).
		Update("used", true).Error
}

func (ds *PostgresService) DeleteExpiredPasswordResetCodes() error {
	return ds.db.Where("expires_at < ?", time.Now()).
		Delete(&model.PasswordResetCode{}).Error
}

// -- Articles --

func (ds *PostgresService) CreateArticle(article *model.Article) error {
	return ds.db.Create(article).Error
}

func (ds *PostgresService) GetArticleBySlug(slug string) (*model.Article, error) {
	var article model.Article
	if err := ds.db.Where("slug = ? AND deleted_at IS NULL", slug).First(&article).Error; err != nil {
		return nil, err
	}
	return &article, nil
}

func (ds *PostgresService) UpdateArticle(article *model.Article) error {
	return ds.db.Save(article).Error
}

func (ds *PostgresService) SoftDeleteArticle(slug string) error {
	now := time.Now()
	return ds.db.Model(&model.Article{}).
		Where("slug = ? AND deleted_at IS NULL", slug).
		Update("deleted_at", &now).Error
}

func (ds *PostgresService) ListArticles(status string, offset, limit int) ([]model.Article, int64, error) {
	var articles []model.Article
	var total int64

	query := ds.db.Model(&model.Article{}).Where("deleted_at IS NULL")
	if status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Order("COALESCE(published_at, created_at) DESC").
		Offset(offset).Limit(limit).Find(&articles).Error
	if err != nil {
		return nil, 0, err
	}
	return articles, total, nil
}

func (ds *PostgresService) ListArticlesByAuthor(authorID string, offset, limit int) ([]model.Article, int64, error) {
	var articles []model.Article
	var total int64

	query := ds.db.Model(&model.Article{}).
		Where("author_id = ? AND deleted_at IS NULL", authorID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&articles).Error
	if err != nil {
		return nil, 0, err
	}
	return articles, total, nil
}

func (ds *PostgresService) SearchArticles(query string, offset, limit int) ([]model.Article, int64, error) {
	var articles []model.Article
	var total int64

	pattern := "%" + strings.ToLower(query) + "%"
	q := ds.db.Model(&model.Article{}).
		Where("deleted_at IS NULL AND status = ?", model.ArticleStatusPublished).
		Where("LOWER(title) LIKE ? OR LOWER(summary) LIKE ? OR LOWER(content) LIKE ?", pattern, pattern, pattern)

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Order("COALESCE(published_at, created_at) DESC").
		Offset(offset).Limit(limit).Find(&articles).Error
	if err != nil {
		return nil, 0, err
	}
	return articles, total, nil
}

func (ds *PostgresService) IncrementArticleViews(slug string) error {
	return ds.db.Model(&model.Article{}).
		Where("slug = ?", slug).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error
}

func (ds *PostgresService) IncrementArticleLikes(slug string) error {
	return ds.db.Model(&model.Article{}).
		Where("slug = ?", slug).
		UpdateColumn("like_count", gorm.Expr("like_count + 1")).Error
}

func (ds *PostgresService) GetArticleCounters(slug string) (views int64, likes int64, err error) {
	var article model.Article
	err = ds.db.Select("view_count", "like_count").Where("slug = ?", slug).First(&article).Error
	if err != nil {
		return 0, 0, err
	}
	return article.ViewCount, article.LikeCount, nil
}

// -- Tags --

// UpsertTag creates the tag when missing. An existing tag keeps its count;
// counts only move through AdjustTagCount.
func (ds *PostgresService) UpsertTag(tag *model.Tag) error {
	var existing model.Tag
	err := ds.db.Where("name = ?", tag.Name).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ds.db.Create(tag).Error
	}
	return err
}

func (ds *PostgresService) ListTags() ([]model.Tag, error) {
	var tags []model.Tag
	err := ds.db.Order("article_count DESC, name ASC").Find(&tags).Error
	return tags, err
}

func (ds *PostgresService) AdjustTagCount(name string, delta int) error {
	return ds.db.Model(&model.Tag{}).
		Where("name = ?", name).
		UpdateColumn("article_count", gorm.Expr("article_count + ?", delta)).Error
}

// -- Comments --

func (ds *PostgresService) CreateComment(comment *model.Comment) error {
	return ds.db.Create(comment).Error
}

func (ds *PostgresService) GetComment(id string) (*model.Comment, error) {
	var comment model.Comment
	if err := ds.db.Where("id = ? AND deleted_at IS NULL", id).First(&comment).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

func (ds *PostgresService) UpdateComment(comment *model.Comment) error {
	return ds.db.Save(comment).Error
}

func (ds *PostgresService) SoftDeleteComment(id string) error {
	now := time.Now()
	return ds.db.Model(&model.Comment{}).
		Where("id = ? AND deleted_at IS NULL", id).
		Update("deleted_at", &now).Error
}

func (ds *PostgresService) ListCommentsForArticle(slug, status string, offset, limit int) ([]model.Comment, int64, error) {
	var comments []model.Comment
	var total int64

	query := ds.db.Model(&model.Comment{}).
		Where("article_slug = ? AND deleted_at IS NULL", slug)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Order("created_at ASC").Offset(offset).Limit(limit).Find(&comments).Error
	if err != nil {
		return nil, 0, err
	}
	return comments, total, nil
}

func (ds *PostgresService) ListPendingComments(offset, limit int) ([]model.Comment, int64, error) {
	var comments []model.Comment
	var total int64

	query := ds.db.Model(&model.Comment{}).
		Where("status = ? AND deleted_at IS NULL", model.CommentStatusPending)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Order("created_at ASC").Offset(offset).Limit(limit).Find(&comments).Error
	if err != nil {
		return nil, 0, err
	}
	return comments, total, nil
}

// -- Resume --

func (ds *PostgresService) GetResumeProfile(userID string) (*model.ResumeProfile, error) {
	var profile model.ResumeProfile
	if err := ds.db.Where("user_id = ? AND deleted_at IS NULL", userID).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (ds *PostgresService) SaveResumeProfile(profile *model.ResumeProfile) error {
	return ds.db.Save(profile).Error
}

func (ds *PostgresService) GetResumeSections(profileID string) ([]model.ResumeSection, error) {
	var sections []model.ResumeSection
	err := ds.db.Where("profile_id = ?", profileID).
		Order("position ASC, created_at ASC").Find(&sections).Error
	return sections, err
}

func (ds *PostgresService) GetResumeSection(id string) (*model.ResumeSection, error) {
	var section model.ResumeSection
	if err := ds.db.Where("id = ?", id).First(&section).Error; err != nil {
		return nil, err
	}
	return &section, nil
}

func (ds *PostgresService) SaveResumeSection(section *model.ResumeSection) error {
	return ds.db.Save(section).Error
}

func (ds *PostgresService) DeleteResumeSection(id string) error {
	return ds.db.Where("id = ?", id).Delete(&model.ResumeSection{}).Error
}

// -- Media --

func (ds *PostgresService) CreateMediaAsset(asset *model.MediaAsset) error {
	return ds.db.Create(asset).Error
}

func (ds *PostgresService) GetMediaAsset(id string) (*model.MediaAsset, error) {
	var asset model.MediaAsset
	if err := ds.db.Where("id = ?", id).First(&asset).Error; err != nil {
		return nil, err
	}
	return &asset, nil
}

func (ds *PostgresService) ListMediaForArticle(articleID string) ([]model.MediaAsset, error) {
	var assets []model.MediaAsset
	err := ds.db.Where("article_id = ?", articleID).Order("created_at ASC").Find(&assets).Error
	return assets, err
}

func (ds *PostgresService) DeleteMediaAsset(id string) error {
	return ds.db.Where("id = ?", id).Delete(&model.MediaAsset{}).Error
}

// -- Audit log --

func (ds *PostgresService) CreateAuditLog(entry *model.AuditLog) error {
	return ds.db.Create(entry).Error
}

func (ds *PostgresService) ListAuditLogs(userID, action string, offset, limit int) ([]model.AuditLog, int64, error) {
	var entries []model.AuditLog
	var total int64

	query := ds.db.Model(&model.AuditLog{})
	if userID != "" {
		query = query.Where("user_id = ?", userID)
	}
	if action != "" {
		query = query.Where("action = ?", action)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Order("timestamp DESC").Offset(offset).Limit(limit).Find(&entries).Error
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

func (ds *PostgresService) PurgeAuditLogsBefore(cutoff time.Time) (int64, error) {
	result := ds.db.Where("timestamp < ?", cutoff).Delete(&model.AuditLog{})
	return result.RowsAffected, result.Error
}
