package shared

import (
	"errors"
	"net/http"
)

// Sentinel errors for the abuse-mitigation core. Handlers translate these into
// HTTP rejections; the layer that detected the condition never retries.
var (
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
	ErrAccountLocked     = errors.New("account temporarily locked")

	ErrRefreshTokenNotFound = errors.New("refresh token not found")
	ErrRefreshTokenExpired  = errors.New("refresh token expired")
	ErrRefreshTokenReuse    = errors.New("refresh token reuse detected")

	ErrInvalidCredentials = errors.New("invalid credentials")
)

type AppError struct {
	StatusCode int
	Message    string
	Data       interface{}
	Err        error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewAppError(statusCode int, err error, message string) *AppError {
	return &AppError{StatusCode: statusCode, Message: message, Err: err}
}

func NewBadRequestError(err error, message string) *AppError {
	return NewAppError(http.StatusBadRequest, err, message)
}

// NewValidationError carries the per-field validation failures as response
// data alongside the 400.
func NewValidationError(err error, fieldErrors interface{}) *AppError {
	return &AppError{
		StatusCode: http.StatusBadRequest,
		Message:    "Validation failed",
		Data:       fieldErrors,
		Err:        err,
	}
}

func NewUnauthorizedError(err error, message string) *AppError {
	return NewAppError(http.StatusUnauthorized, err, message)
}

func NewForbiddenError(err error, message string) *AppError {
	return NewAppError(http.StatusForbidden, err, message)
}

func NewNotFoundError(err error, message string) *AppError {
	return NewAppError(http.StatusNotFound, err, message)
}

func NewConflictError(err error, message string) *AppError {
	return NewAppError(http.StatusConflict, err, message)
}

func NewTooManyRequestsError(err error, message string) *AppError {
	return NewAppError(http.StatusTooManyRequests, err, message)
}

func NewLockedError(err error, message string) *AppError {
	return NewAppError(http.StatusLocked, err, message)
}

func NewInternalError(err error, message string) *AppError {
	return NewAppError(http.StatusInternalServerError, err, message)
}

func GetAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
