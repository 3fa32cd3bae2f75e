package dto

import "time"

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email" example:"author@example.com"`
	Username string `json:"username" validate:"required,min=3,max=30,alphanum" example:"janedoe"`
	Password string `json:"password" validate:"required,strong_password" example:"SecurePass123"`
}

func (r RegisterRequest) Validate() error {
	return GetValidator().Struct(r)
}

type RegisterResponse struct {
	UserID  string `json:"user_id"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email" example:"author@example.com"`
	Password string `json:"password" validate:"required" example:"SecurePass123"`
}

func (l LoginRequest) Validate() error {
	return GetValidator().Struct(l)
}

type LoginResponse struct {
	AccessToken      string    `json:"access_token"`
	RefreshToken     string    `json:"refresh_token"`
	ExpiresIn        int64     `json:"expires_in"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
	User             UserInfo  `json:"user"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

func (r RefreshTokenRequest) Validate() error {
	return GetValidator().Struct(r)
}

type VerifyEmailRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,len=6"`
}

func (v VerifyEmailRequest) Validate() error {
	return GetValidator().Struct(v)
}

type ResendVerificationRequest struct {
	Email string `json:"email" validate:"required,email"`
}

func (r ResendVerificationRequest) Validate() error {
	return GetValidator().Struct(r)
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

func (f ForgotPasswordRequest) Validate() error {
	return GetValidator().Struct(f)
}

type ResetPasswordRequest struct {
	Code        string `json:"code" validate:"required,len=6,numeric"`
	NewPassword string `json:"new_password" validate:"required,strong_password"`
}

func (r ResetPasswordRequest) Validate() error {
	return GetValidator().Struct(r)
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,strong_password"`
}

func (c ChangePasswordRequest) Validate() error {
	return GetValidator().Struct(c)
}

type LockoutStatusResponse struct {
	Blocked           bool  `json:"blocked"`
	FailedAttempts    int64 `json:"failed_attempts"`
	RemainingAttempts int64 `json:"remaining_attempts"`
	RetryAfterSeconds int64 `json:"retry_after_seconds,omitempty"`
}
