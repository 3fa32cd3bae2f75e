package model

import "time"

const (
	AuditActionLogin         = "login"
	AuditActionLoginFailed   = "login_failed"
	AuditActionLockout       = "lockout"
	AuditActionLogout        = "logout"
	AuditActionTokenRefresh  = "token_refresh"
	AuditActionTokenReuse    = "token_reuse_detected"
	AuditActionRegister      = "register"
	AuditActionPasswordReset = "password_reset"
	AuditActionArticleWrite  = "article_write"
	AuditActionCacheFlush    = "cache_flush"
)

type AuditLog struct {
	ID        string    `json:"id" gorm:"primaryKey;type:text;not null"`
	UserID    string    `json:"user_id" gorm:"index;size:64"`
	Action    string    `json:"action" gorm:"not null;index;size:50"`
	IP        string    `json:"ip" gorm:"size:64"`
	Location  string    `json:"location" gorm:"size:128"`
	UserAgent string    `json:"user_agent" gorm:"size:512"`
	Success   bool      `json:"success" gorm:"not null"`
	Details   string    `json:"details" gorm:"type:text"`
	Timestamp time.Time `json:"timestamp" gorm:"not null;index"`
}
