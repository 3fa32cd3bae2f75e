package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"os"
	"time"

	"github.com/inkwell-cms/inkwell_api/dto"
	"github.com/inkwell-cms/inkwell_api/model"
	"github.com/inkwell-cms/inkwell_api/shared"

	appContext "github.com/alphabatem/common/context"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

type AuthService struct {
	appContext.DefaultService

	sqlSvc          *PostgresService
	jwtSvc          *JWTService
	tokenSvc        *RefreshTokenService
	emailSvc        *EmailService
	rateLimitSvc    *RateLimitService
	loginAttemptSvc *LoginAttemptService
	auditSvc        *AuditService
	geoSvc          *GeolocationService

	loginNotify bool
}

const AUTH_SVC = "auth_svc"

func (svc AuthService) Id() string {
	return AUTH_SVC
}

func (svc *AuthService) Configure(ctx *appContext.Context) error {
	svc.loginNotify = os.Getenv("LOGIN_NOTIFY") == "true"
	return svc.DefaultService.Configure(ctx)
}

func (svc *AuthService) Start() error {
	svc.sqlSvc = svc.Service(POSTGRES_SVC).(*PostgresService)
	svc.jwtSvc = svc.Service(JWT_SVC).(*JWTService)
	svc.tokenSvc = svc.Service(REFRESH_TOKEN_SVC).(*RefreshTokenService)
	svc.emailSvc = svc.Service(EMAIL_SVC).(*EmailService)
	svc.rateLimitSvc = svc.Service(RATE_LIMIT_SVC).(*RateLimitService)
	svc.loginAttemptSvc = svc.Service(LOGIN_ATTEMPT_SVC).(*LoginAttemptService)
	svc.auditSvc = svc.Service(AUDIT_SVC).(*AuditService)
	svc.geoSvc = svc.Service(GEOLOCATION_SVC).(*GeolocationService)
	return nil
}

func (svc *AuthService) Register(req dto.RegisterRequest, clientIP, userAgent string) (*dto.RegisterResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, shared.NewValidationError(err, dto.FormatValidationErrors(err))
	}

	email := normalizeIdentity(req.Email)

	if _, err := svc.sqlSvc.GetUserByEmail(email); err == nil {
		return nil, shared.NewConflictError(nil, "Email already registered")
	}
	if _, err := svc.sqlSvc.GetUserByUsername(req.Username); err == nil {
		return nil, shared.NewConflictError(nil, "Username already taken")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to process password")
	}

	code, err := generateVerificationCode()
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to generate verification code")
	}

	user := &model.User{
		ID:               uuid.NewString(),
		Email:            email,
		Username:         req.Username,
		Password:         string(hashed),
		Role:             shared.RoleUser,
		VerificationCode: code,
		IsActive:         true,
	}

	if err := svc.sqlSvc.CreateUser(user); err != nil {
		return nil, shared.NewInternalError(svc.sqlSvc.HandleError(err), "Failed to create account")
	}

	svc.auditSvc.Record(user.ID, model.AuditActionRegister, clientIP, userAgent, true, "")

	svc.sendVerificationEmail(context.Background(), user)

	return &dto.RegisterResponse{
		UserID:  user.ID,
		Email:   user.Email,
		Message: "Account created. Check your email for a verification code.",
	}, nil
}

func (svc *AuthService) Login(req dto.LoginRequest, clientIP, userAgent string) (*dto.LoginResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, shared.NewValidationError(err, dto.FormatValidationErrors(err))
	}

	ctx := context.Background()
	email := normalizeIdentity(req.Email)

	if svc.loginAttemptSvc.IsBlocked(ctx, email) {
		retryAfter := svc.loginAttemptSvc.GetRemainingLockoutTime(ctx, email)
		svc.auditSvc.Record("", model.AuditActionLoginFailed, clientIP, userAgent, false, "account locked")
		appErr := shared.NewLockedError(shared.ErrAccountLocked,
			fmt.Sprintf("Account temporarily locked. Try again in %d seconds.", retryAfter))
		appErr.Data = dto.LockoutStatusResponse{
			Blocked:           true,
			RetryAfterSeconds: retryAfter,
		}
		return nil, appErr
	}

	user, err := svc.sqlSvc.GetUserByEmail(email)
	if err != nil {
		// Burn a failed attempt even for unknown emails so enumeration
		// attempts hit the same lockout wall as password guessing.
		svc.loginAttemptSvc.RecordFailedAttempt(ctx, email, clientIP)
		svc.auditSvc.Record("", model.AuditActionLoginFailed, clientIP, userAgent, false, "unknown email")
		return nil, shared.NewUnauthorizedError(shared.ErrInvalidCredentials, "Invalid email or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		count := svc.loginAttemptSvc.RecordFailedAttempt(ctx, email, clientIP)
		svc.auditSvc.Record(user.ID, model.AuditActionLoginFailed, clientIP, userAgent, false,
			fmt.Sprintf("failed attempt %d", count))
		return nil, shared.NewUnauthorizedError(shared.ErrInvalidCredentials, "Invalid email or password")
	}

	if !user.IsActive {
		svc.auditSvc.Record(user.ID, model.AuditActionLoginFailed, clientIP, userAgent, false, "account disabled")
		return nil, shared.NewForbiddenError(nil, "Account is disabled")
	}

	svc.loginAttemptSvc.ClearFailedAttempts(ctx, email)

	response, err := svc.issueTokens(user)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user.LastLoginAt = &now
	user.LastLoginIP = clientIP
	if err := svc.sqlSvc.UpdateUser(user); err != nil {
		log.WithError(err).WithField("user_id", user.ID).Warn("Failed to update last login")
	}

	svc.auditSvc.Record(user.ID, model.AuditActionLogin, clientIP, userAgent, true, "")

	if svc.loginNotify {
		go svc.notifyLogin(user, now, clientIP, userAgent)
	}

	return response, nil
}

func (svc *AuthService) RefreshToken(req dto.RefreshTokenRequest, clientIP, userAgent string) (*dto.LoginResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, shared.NewValidationError(err, dto.FormatValidationErrors(err))
	}

	rotated, err := svc.tokenSvc.VerifyAndRotate(req.RefreshToken, clientIP, userAgent)
	if err != nil {
		switch {
		case errors.Is(err, shared.ErrRefreshTokenReuse):
			return nil, shared.NewUnauthorizedError(err, "Session revoked. Please sign in again.")
		case errors.Is(err, shared.ErrRefreshTokenExpired):
			return nil, shared.NewUnauthorizedError(err, "Session expired. Please sign in again.")
		case errors.Is(err, shared.ErrRefreshTokenNotFound):
			return nil, shared.NewUnauthorizedError(err, "Invalid refresh token")
		default:
			return nil, shared.NewInternalError(err, "Failed to refresh session")
		}
	}

	user, err := svc.sqlSvc.GetUser(rotated.UserID)
	if err != nil {
		return nil, shared.NewUnauthorizedError(err, "Account no longer exists")
	}
	if !user.IsActive {
		return nil, shared.NewForbiddenError(nil, "Account is disabled")
	}

	accessToken, err := svc.jwtSvc.ToJWT(user.ID, user.Role)
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to issue access token")
	}

	return &dto.LoginResponse{
		AccessToken:      accessToken,
		RefreshToken:     rotated.Token,
		ExpiresIn:        int64(svc.jwtSvc.AccessTokenDuration.Seconds()),
		RefreshExpiresAt: rotated.ExpiresAt,
		User:             toUserInfo(user),
	}, nil
}

func (svc *AuthService) Logout(userID, refreshToken, clientIP, userAgent string) error {
	if refreshToken != "" {
		if err := svc.tokenSvc.Revoke(refreshToken); err != nil {
			log.WithError(err).WithField("user_id", userID).Warn("Failed to revoke refresh token on logout")
		}
	}
	svc.auditSvc.Record(userID, model.AuditActionLogout, clientIP, userAgent, true, "")
	return nil
}

func (svc *AuthService) LogoutAllDevices(userID, clientIP, userAgent string) error {
	if err := svc.tokenSvc.RevokeAllForUser(userID); err != nil {
		return shared.NewInternalError(err, "Failed to revoke sessions")
	}
	svc.auditSvc.Record(userID, model.AuditActionLogout, clientIP, userAgent, true, "all devices")
	return nil
}

func (svc *AuthService) VerifyEmail(req dto.VerifyEmailRequest) error {
	if err := req.Validate(); err != nil {
		return shared.NewValidationError(err, dto.FormatValidationErrors(err))
	}

	user, err := svc.sqlSvc.GetUserByEmail(normalizeIdentity(req.Email))
	if err != nil {
		return shared.NewBadRequestError(nil, "Invalid verification code")
	}

	if user.EmailVerified {
		return nil
	}
	if user.VerificationCode == "" || user.VerificationCode != req.Code {
		return shared.NewBadRequestError(nil, "Invalid verification code")
	}

	user.EmailVerified = true
	user.VerificationCode = ""
	if err := svc.sqlSvc.UpdateUser(user); err != nil {
		return shared.NewInternalError(svc.sqlSvc.HandleError(err), "Failed to verify email")
	}
	return nil
}

func (svc *AuthService) ResendVerificationEmail(req dto.ResendVerificationRequest) error {
	if err := req.Validate(); err != nil {
		return shared.NewValidationError(err, dto.FormatValidationErrors(err))
	}

	user, err := svc.sqlSvc.GetUserByEmail(normalizeIdentity(req.Email))
	if err != nil || user.EmailVerified {
		// Same response whether the account exists or not.
		return nil
	}

	code, err := generateVerificationCode()
	if err != nil {
		return shared.NewInternalError(err, "Failed to generate verification code")
	}
	user.VerificationCode = code
	if err := svc.sqlSvc.UpdateUser(user); err != nil {
		return shared.NewInternalError(svc.sqlSvc.HandleError(err), "Failed to update verification code")
	}

	if !svc.sendVerificationEmail(context.Background(), user) {
		return shared.NewTooManyRequestsError(shared.ErrRateLimitExceeded,
			"Too many verification emails requested. Try again later.")
	}
	return nil
}

func (svc *AuthService) ChangePassword(userID string, req dto.ChangePasswordRequest) error {
	if err := req.Validate(); err != nil {
		return shared.NewValidationError(err, dto.FormatValidationErrors(err))
	}

	user, err := svc.sqlSvc.GetUser(userID)
	if err != nil {
		return shared.NewNotFoundError(err, "User not found")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.CurrentPassword)); err != nil {
		return shared.NewUnauthorizedError(shared.ErrInvalidCredentials, "Current password is incorrect")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return shared.NewInternalError(err, "Failed to process password")
	}

	user.Password = string(hashed)
	if err := svc.sqlSvc.UpdateUser(user); err != nil {
		return shared.NewInternalError(svc.sqlSvc.HandleError(err), "Failed to change password")
	}

	// Every open session dies with the old password.
	if err := svc.tokenSvc.RevokeAllForUser(userID); err != nil {
		log.WithError(err).WithField("user_id", userID).Error("Failed to revoke sessions after password change")
	}

	svc.auditSvc.Record(userID, model.AuditActionPasswordReset, "", "", true, "password changed")
	return nil
}

// ForgotPassword answers the same way whether the email is registered or not.
// Sends for known accounts share the verification-email rate limit, so an
// attacker cannot use the reset endpoint to flood an inbox.
func (svc *AuthService) ForgotPassword(req dto.ForgotPasswordRequest, clientIP, userAgent string) error {
	if err := req.Validate(); err != nil {
		return shared.NewValidationError(err, dto.FormatValidationErrors(err))
	}

	email := normalizeIdentity(req.Email)

	user, err := svc.sqlSvc.GetUserByEmail(email)
	if err != nil {
		return nil
	}

	if !svc.rateLimitSvc.Allow(context.Background(), email) {
		return shared.NewTooManyRequestsError(shared.ErrRateLimitExceeded,
			"Too many reset emails requested. Try again later.")
	}

	code, err := generateVerificationCode()
	if err != nil {
		return shared.NewInternalError(err, "Failed to generate reset code")
	}

	reset := &model.PasswordResetCode{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Code:      code,
		ExpiresAt: time.Now().Add(time.Hour),
	}
	if err := svc.sqlSvc.CreatePasswordResetCode(reset); err != nil {
		return shared.NewInternalError(svc.sqlSvc.HandleError(err), "Failed to create reset code")
	}

	if err := svc.emailSvc.SendPasswordResetEmail(user.Email, user.Username, code); err != nil {
		log.WithError(err).WithField("email", user.Email).Error("Failed to send password reset email")
	}

	svc.auditSvc.Record(user.ID, model.AuditActionPasswordReset, clientIP, userAgent, true, "reset requested")
	return nil
}

func (svc *AuthService) ResetPassword(req dto.ResetPasswordRequest, clientIP, userAgent string) error {
	if err := req.Validate(); err != nil {
		return shared.NewValidationError(err, dto.FormatValidationErrors(err))
	}

	reset, err := svc.sqlSvc.GetPasswordResetCode(req.Code)
	if err != nil {
		return shared.NewBadRequestError(nil, "Invalid or expired reset code")
	}
	if reset.Used || reset.Expired(time.Now()) {
		return shared.NewBadRequestError(nil, "Invalid or expired reset code")
	}

	user, err := svc.sqlSvc.GetUser(reset.UserID)
	if err != nil {
		return shared.NewBadRequestError(nil, "Invalid or expired reset code")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return shared.NewInternalError(err, "Failed to process password")
	}

	user.Password = string(hashed)
	if err := svc.sqlSvc.UpdateUser(user); err != nil {
		return shared.NewInternalError(svc.sqlSvc.HandleError(err), "Failed to reset password")
	}

	if err := svc.sqlSvc.InvalidatePasswordResetCode(req.Code); err != nil {
		log.WithError(err).WithField("user_id", user.ID).Error("Failed to invalidate reset code")
	}

	// A reset implies the old password may be compromised.
	if err := svc.tokenSvc.RevokeAllForUser(user.ID); err != nil {
		log.WithError(err).WithField("user_id", user.ID).Error("Failed to revoke sessions after password reset")
	}

	svc.loginAttemptSvc.ClearFailedAttempts(context.Background(), user.Email)

	svc.auditSvc.Record(user.ID, model.AuditActionPasswordReset, clientIP, userAgent, true, "password reset")
	return nil
}

func (svc *AuthService) GetLockoutStatus(email string) *dto.LockoutStatusResponse {
	ctx := context.Background()
	identity := normalizeIdentity(email)

	if svc.loginAttemptSvc.IsBlocked(ctx, identity) {
		return &dto.LockoutStatusResponse{
			Blocked:           true,
			RetryAfterSeconds: svc.loginAttemptSvc.GetRemainingLockoutTime(ctx, identity),
		}
	}

	failed := svc.loginAttemptSvc.GetFailedAttempts(ctx, identity)
	return &dto.LockoutStatusResponse{
		Blocked:           false,
		FailedAttempts:    failed,
		RemainingAttempts: svc.loginAttemptSvc.GetRemainingAttempts(ctx, identity),
	}
}

// sendVerificationEmail reports false when the per-address send allowance is
// exhausted. A downstream SMTP failure still counts as sent.
func (svc *AuthService) sendVerificationEmail(ctx context.Context, user *model.User) bool {
	if !svc.rateLimitSvc.Allow(ctx, user.Email) {
		log.WithField("email", user.Email).Warn("Verification email rate limit exceeded")
		return false
	}

	if err := svc.emailSvc.SendVerificationEmail(user.Email, user.Username, user.VerificationCode); err != nil {
		log.WithError(err).WithField("email", user.Email).Error("Failed to send verification email")
	}
	return true
}

// notifyLogin runs on its own goroutine. The geolocation lookup can take
// seconds and must never delay the login response.
func (svc *AuthService) notifyLogin(user *model.User, loginTime time.Time, clientIP, userAgent string) {
	location := "Unknown"
	if svc.geoSvc != nil {
		location = svc.geoSvc.Lookup(clientIP)
	}

	if err := svc.emailSvc.SendLoginNotificationEmail(user.Email, user.Username, loginTime, clientIP, userAgent, location); err != nil {
		log.WithError(err).WithField("user_id", user.ID).Warn("Failed to send login notification")
	}
}

func (svc *AuthService) issueTokens(user *model.User) (*dto.LoginResponse, error) {
	refresh, err := svc.tokenSvc.Create(user.ID)
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to create session")
	}

	accessToken, err := svc.jwtSvc.ToJWT(user.ID, user.Role)
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to issue access token")
	}

	return &dto.LoginResponse{
		AccessToken:      accessToken,
		RefreshToken:     refresh.Token,
		ExpiresIn:        int64(svc.jwtSvc.AccessTokenDuration.Seconds()),
		RefreshExpiresAt: refresh.ExpiresAt,
		User:             toUserInfo(user),
	}, nil
}

// RequiredAuth gates a route on a valid access token. User ID and role land in
// c.Locals for the handlers downstream.
func (svc *AuthService) RequiredAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, err := svc.jwtSvc.ExtractTokenFromHeader(c.Get("Authorization"))
		if err != nil {
			return shared.ResponseUnauthorized(c)
		}

		userID, role, err := svc.jwtSvc.VerifyJWTToken(token)
		if err != nil || userID == "" {
			return shared.ResponseUnauthorized(c)
		}

		c.Locals(shared.UserID, userID)
		c.Locals(shared.UserRole, role)
		return c.Next()
	}
}

// RequireRole must run after RequiredAuth. Admins pass every role check.
func (svc *AuthService) RequireRole(role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		current, _ := c.Locals(shared.UserRole).(string)
		if current == shared.RoleAdmin || current == role {
			return c.Next()
		}
		return shared.ResponseForbidden(c)
	}
}

func toUserInfo(user *model.User) dto.UserInfo {
	return dto.UserInfo{
		ID:            user.ID,
		Username:      user.Username,
		Email:         user.Email,
		Role:          user.Role,
		Bio:           user.Bio,
		AvatarURL:     user.AvatarURL,
		EmailVerified: user.EmailVerified,
		CreatedAt:     user.CreatedAt,
		LastLoginAt:   user.LastLoginAt,
	}
}

func generateVerificationCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
