package model

import "time"

// RefreshToken rows are never physically deleted. Revoked rows stay around so a
// re-presented token string can be recognized as reuse instead of a miss.
type RefreshToken struct {
	ID        string    `json:"id" gorm:"primaryKey;type:text;not null"`
	UserID    string    `json:"user_id" gorm:"not null;index"`
	Token     string    `json:"-" gorm:"uniqueIndex;not null;size:128"`
	ExpiresAt time.Time `json:"expires_at" gorm:"not null"`
	Revoked   bool      `json:"revoked" gorm:"default:false;not null;index"`
	CreatedAt time.Time `json:"created_at" gorm:"not null"`
}

func (t *RefreshToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

func (t *RefreshToken) Active(now time.Time) bool {
	return !t.Revoked && !t.Expired(now)
}
