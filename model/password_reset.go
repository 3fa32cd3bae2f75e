package model

import "time"

// PasswordResetCode rows work once. Used rows are kept until expiry so a
// replayed code is rejected as used rather than reported as unknown.
type PasswordResetCode struct {
	ID        string    `json:"id" gorm:"primaryKey;type:text;not null"`
	UserID    string    `json:"user_id" gorm:"not null;index"`
	Code      string    `json:"-" gorm:"uniqueIndex;not null;size:16"`
	ExpiresAt time.Time `json:"expires_at" gorm:"not null"`
	Used      bool      `json:"used" gorm:"default:false;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"not null"`
}

func (c *PasswordResetCode) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}
