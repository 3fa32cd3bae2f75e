package model

import "time"

type User struct {
	ID               string     `json:"id" gorm:"primaryKey;type:text;not null"`
	Email            string     `json:"email" gorm:"uniqueIndex;not null;size:255"`
	Username         string     `json:"username" gorm:"uniqueIndex;not null;size:50"`
	Password         string     `json:"-" gorm:"not null"`
	Role             string     `json:"role" gorm:"not null;default:user;size:20"`
	Bio              string     `json:"bio" gorm:"type:text"`
	AvatarURL        string     `json:"avatar_url" gorm:"size:512"`
	EmailVerified    bool       `json:"email_verified" gorm:"default:false;not null"`
	VerificationCode string     `json:"-" gorm:"size:64"`
	IsActive         bool       `json:"is_active" gorm:"default:true;not null"`
	LastLoginAt      *time.Time `json:"last_login_at,omitempty"`
	LastLoginIP      string     `json:"last_login_ip,omitempty" gorm:"size:64"`
	CreatedAt        time.Time  `json:"created_at" gorm:"not null"`
	UpdatedAt        time.Time  `json:"updated_at" gorm:"not null"`
	DeletedAt        *time.Time `json:"-" gorm:"index"`
}
