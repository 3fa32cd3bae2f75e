package model

import "time"

type MediaAsset struct {
	ID          string    `json:"id" gorm:"primaryKey;type:text;not null"`
	ArticleID   string    `json:"article_id" gorm:"not null;index"`
	Kind        string    `json:"kind" gorm:"not null;size:20"`
	ObjectName  string    `json:"object_name" gorm:"not null;size:512"`
	FileName    string    `json:"file_name" gorm:"not null;size:255"`
	ContentType string    `json:"content_type" gorm:"size:100"`
	Size        int64     `json:"size" gorm:"not null"`
	CreatedAt   time.Time `json:"created_at" gorm:"not null"`
}
