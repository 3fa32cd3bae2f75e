package model

import "time"

const (
	CommentStatusPending  = "pending"
	CommentStatusApproved = "approved"
)

type Comment struct {
	ID          string     `json:"id" gorm:"primaryKey;type:text;not null"`
	ArticleID   string     `json:"article_id" gorm:"not null;index"`
	ArticleSlug string     `json:"article_slug" gorm:"not null;index;size:255"`
	AuthorID    string     `json:"author_id" gorm:"index"`
	AuthorName  string     `json:"author_name" gorm:"not null;size:100"`
	AuthorEmail string     `json:"-" gorm:"size:255"`
	Content     string     `json:"content" gorm:"type:text;not null"`
	Status      string     `json:"status" gorm:"not null;default:pending;size:20;index"`
	IP          string     `json:"-" gorm:"size:64"`
	CreatedAt   time.Time  `json:"created_at" gorm:"not null"`
	UpdatedAt   time.Time  `json:"updated_at" gorm:"not null"`
	DeletedAt   *time.Time `json:"-" gorm:"index"`
}
