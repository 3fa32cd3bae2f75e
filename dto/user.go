package dto

import "time"

type UserInfo struct {
	ID            string     `json:"id"`
	Username      string     `json:"username"`
	Email         string     `json:"email"`
	Role          string     `json:"role"`
	Bio           string     `json:"bio,omitempty"`
	AvatarURL     string     `json:"avatar_url,omitempty"`
	EmailVerified bool       `json:"email_verified"`
	CreatedAt     time.Time  `json:"created_at"`
	LastLoginAt   *time.Time `json:"last_login_at,omitempty"`
}

type UpdateProfileRequest struct {
	Username  string `json:"username,omitempty" validate:"omitempty,min=3,max=30,alphanum"`
	Bio       string `json:"bio,omitempty" validate:"omitempty,max=500"`
	AvatarURL string `json:"avatar_url,omitempty" validate:"omitempty,url"`
}

func (u UpdateProfileRequest) Validate() error {
	return GetValidator().Struct(u)
}

type AdminUserInfo struct {
	ID            string     `json:"id"`
	Username      string     `json:"username"`
	Email         string     `json:"email"`
	Role          string     `json:"role"`
	EmailVerified bool       `json:"email_verified"`
	IsActive      bool       `json:"is_active"`
	CreatedAt     time.Time  `json:"created_at"`
	LastLoginAt   *time.Time `json:"last_login_at,omitempty"`
}

type AdminUserListResponse struct {
	Users []AdminUserInfo `json:"users"`
	Total int             `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

type AdminUpdateUserRequest struct {
	Role     *string `json:"role,omitempty" validate:"omitempty,oneof=user author admin"`
	IsActive *bool   `json:"is_active,omitempty"`
}

func (a AdminUpdateUserRequest) Validate() error {
	return GetValidator().Struct(a)
}

type AuditLogEntry struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Action    string    `json:"action"`
	IP        string    `json:"ip"`
	Location  string    `json:"location,omitempty"`
	UserAgent string    `json:"user_agent"`
	Success   bool      `json:"success"`
	Details   string    `json:"details,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type AuditLogResponse struct {
	Logs  []AuditLogEntry `json:"logs"`
	Total int             `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}
