package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/inkwell-cms/inkwell_api/dto"
	"github.com/inkwell-cms/inkwell_api/model"
	"github.com/inkwell-cms/inkwell_api/shared"

	appContext "github.com/alphabatem/common/context"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const (
	MediaKindCover      = "cover"
	MediaKindAttachment = "attachment"
)

// MediaService stores article images in object storage and tracks them in the
// database. Covers additionally update the article row.
type MediaService struct {
	appContext.DefaultService

	sqlSvc   *PostgresService
	minioSvc *MinIOService
	cacheSvc *CacheService

	urlExpiry time.Duration
}

const MEDIA_SVC = "media_svc"

func (svc MediaService) Id() string {
	return MEDIA_SVC
}

func (svc *MediaService) Configure(ctx *appContext.Context) error {
	svc.urlExpiry = 24 * time.Hour

	return svc.DefaultService.Configure(ctx)
}

func (svc *MediaService) Start() error {
	svc.sqlSvc = svc.Service(POSTGRES_SVC).(*PostgresService)
	svc.minioSvc = svc.Service(MINIO_SVC).(*MinIOService)
	svc.cacheSvc = svc.Service(CACHE_SVC).(*CacheService)
	return nil
}

func (svc *MediaService) UploadCover(articleSlug string, file *multipart.FileHeader) (*dto.MediaUploadResponse, error) {
	article, err := svc.sqlSvc.GetArticleBySlug(articleSlug)
	if err != nil {
		return nil, shared.NewNotFoundError(err, "Article not found")
	}
	if !isValidImageFile(file.Filename) {
		return nil, shared.NewBadRequestError(nil, "Cover must be a jpg, png, gif or webp image")
	}

	resp, err := svc.uploadFile(article.ID, MediaKindCover, file)
	if err != nil {
		return nil, err
	}

	article.CoverURL = resp.URL
	if err := svc.sqlSvc.UpdateArticle(article); err != nil {
		log.WithError(err).WithField("slug", articleSlug).Error("Failed to store cover URL")
	}
	svc.cacheSvc.InvalidateArticle(context.Background(), articleSlug)

	return resp, nil
}

func (svc *MediaService) UploadAttachment(articleSlug string, file *multipart.FileHeader) (*dto.MediaUploadResponse, error) {
	article, err := svc.sqlSvc.GetArticleBySlug(articleSlug)
	if err != nil {
		return nil, shared.NewNotFoundError(err, "Article not found")
	}

	return svc.uploadFile(article.ID, MediaKindAttachment, file)
}

func (svc *MediaService) uploadFile(articleID, kind string, file *multipart.FileHeader) (*dto.MediaUploadResponse, error) {
	src, err := file.Open()
	if err != nil {
		return nil, shared.NewBadRequestError(err, "Failed to read uploaded file")
	}
	defer src.Close()

	assetID := uuid.NewString()
	ext := strings.ToLower(filepath.Ext(file.Filename))
	objectName := fmt.Sprintf("articles/%s/%s/%s%s", articleID, kind, assetID, ext)

	if _, err := svc.minioSvc.UploadFile(objectName, src, file.Size, file.Header.Get("Content-Type")); err != nil {
		return nil, shared.NewInternalError(err, "Upload failed")
	}

	fileURL, err := svc.minioSvc.GetFileURL(objectName, svc.urlExpiry)
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to generate file URL")
	}

	asset := &model.MediaAsset{
		ID:          assetID,
		ArticleID:   articleID,
		Kind:        kind,
		ObjectName:  objectName,
		FileName:    file.Filename,
		ContentType: file.Header.Get("Content-Type"),
		Size:        file.Size,
	}
	if err := svc.sqlSvc.CreateMediaAsset(asset); err != nil {
		// Orphaned objects are worse than missing rows.
		if delErr := svc.minioSvc.DeleteFile(objectName); delErr != nil {
			log.WithError(delErr).WithField("object", objectName).Error("Failed to clean up orphaned upload")
		}
		return nil, shared.NewInternalError(svc.sqlSvc.HandleError(err), "Failed to record upload")
	}

	return &dto.MediaUploadResponse{
		AssetID:     assetID,
		URL:         fileURL,
		FileName:    file.Filename,
		ContentType: asset.ContentType,
		Size:        file.Size,
	}, nil
}

func (svc *MediaService) ListForArticle(articleSlug string) ([]dto.MediaUploadResponse, error) {
	article, err := svc.sqlSvc.GetArticleBySlug(articleSlug)
	if err != nil {
		return nil, shared.NewNotFoundError(err, "Article not found")
	}

	assets, err := svc.sqlSvc.ListMediaForArticle(article.ID)
	if err != nil {
		return nil, shared.NewInternalError(svc.sqlSvc.HandleError(err), "Failed to list media")
	}

	out := make([]dto.MediaUploadResponse, 0, len(assets))
	for _, a := range assets {
		fileURL, err := svc.minioSvc.GetFileURL(a.ObjectName, svc.urlExpiry)
		if err != nil {
			log.WithError(err).WithField("object", a.ObjectName).Warn("Failed to presign media URL")
			continue
		}
		out = append(out, dto.MediaUploadResponse{
			AssetID:     a.ID,
			URL:         fileURL,
			FileName:    a.FileName,
			ContentType: a.ContentType,
			Size:        a.Size,
		})
	}
	return out, nil
}

func (svc *MediaService) DeleteAsset(assetID string) error {
	asset, err := svc.sqlSvc.GetMediaAsset(assetID)
	if err != nil {
		return shared.NewNotFoundError(err, "Media asset not found")
	}

	if err := svc.minioSvc.DeleteFile(asset.ObjectName); err != nil {
		log.WithError(err).WithField("object", asset.ObjectName).Warn("Failed to delete object from storage")
	}

	if err := svc.sqlSvc.DeleteMediaAsset(assetID); err != nil {
		return shared.NewInternalError(svc.sqlSvc.HandleError(err), "Failed to delete media asset")
	}
	return nil
}

func isValidImageFile(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp":
		return true
	}
	return false
}
