package model

import (
	"encoding/json"
	"time"
)

const (
	ArticleStatusDraft     = "draft"
	ArticleStatusPublished = "published"
)

type Article struct {
	ID          string          `json:"id" gorm:"primaryKey;type:text;not null"`
	Slug        string          `json:"slug" gorm:"uniqueIndex;not null;size:255"`
	Title       string          `json:"title" gorm:"not null;size:255"`
	Summary     string          `json:"summary" gorm:"type:text"`
	Content     string          `json:"content" gorm:"type:text;not null"`
	CoverURL    string          `json:"cover_url" gorm:"size:512"`
	AuthorID    string          `json:"author_id" gorm:"not null;index"`
	Status      string          `json:"status" gorm:"not null;default:draft;size:20;index"`
	Tags        json.RawMessage `json:"tags" gorm:"type:text"`
	ViewCount   int64           `json:"view_count" gorm:"default:0;not null"`
	LikeCount   int64           `json:"like_count" gorm:"default:0;not null"`
	PublishedAt *time.Time      `json:"published_at,omitempty" gorm:"index"`
	CreatedAt   time.Time       `json:"created_at" gorm:"not null"`
	UpdatedAt   time.Time       `json:"updated_at" gorm:"not null"`
	DeletedAt   *time.Time      `json:"-" gorm:"index"`
}

type Tag struct {
	ID           string    `json:"id" gorm:"primaryKey;type:text;not null"`
	Name         string    `json:"name" gorm:"uniqueIndex;not null;size:64"`
	ArticleCount int       `json:"article_count" gorm:"default:0;not null"`
	CreatedAt    time.Time `json:"created_at" gorm:"not null"`
}
