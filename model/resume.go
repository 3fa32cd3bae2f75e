package model

import (
	"encoding/json"
	"time"
)

const (
	ResumeSectionExperience = "experience"
	ResumeSectionEducation  = "education"
	ResumeSectionSkills     = "skills"
	ResumeSectionLinks      = "links"
)

type ResumeProfile struct {
	ID        string     `json:"id" gorm:"primaryKey;type:text;not null"`
	UserID    string     `json:"user_id" gorm:"uniqueIndex;not null"`
	FullName  string     `json:"full_name" gorm:"not null;size:100"`
	Headline  string     `json:"headline" gorm:"size:255"`
	Summary   string     `json:"summary" gorm:"type:text"`
	Location  string     `json:"location" gorm:"size:100"`
	Website   string     `json:"website" gorm:"size:255"`
	CreatedAt time.Time  `json:"created_at" gorm:"not null"`
	UpdatedAt time.Time  `json:"updated_at" gorm:"not null"`
	DeletedAt *time.Time `json:"-" gorm:"index"`
}

type ResumeSection struct {
	ID        string          `json:"id" gorm:"primaryKey;type:text;not null"`
	ProfileID string          `json:"profile_id" gorm:"not null;index"`
	Kind      string          `json:"kind" gorm:"not null;size:20;index"`
	Position  int             `json:"position" gorm:"default:0;not null"`
	Entries   json.RawMessage `json:"entries" gorm:"type:text"`
	CreatedAt time.Time       `json:"created_at" gorm:"not null"`
	UpdatedAt time.Time       `json:"updated_at" gorm:"not null"`
}
