package services

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/inkwell-cms/inkwell_api/dto"
	"github.com/inkwell-cms/inkwell_api/model"
	"github.com/inkwell-cms/inkwell_api/shared"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestAuthService(t *testing.T) (*AuthService, *PostgresService) {
	t.Helper()

	sqlSvc := newTestDB(t)
	redisSvc, _ := newTestRedis(t)
	auditSvc := &AuditService{sqlSvc: sqlSvc}

	svc := &AuthService{
		sqlSvc:       sqlSvc,
		tokenSvc:     &RefreshTokenService{sqlSvc: sqlSvc, auditSvc: auditSvc, lifetime: 7 * 24 * time.Hour},
		emailSvc:     &EmailService{},
		rateLimitSvc: &RateLimitService{redisSvc: redisSvc, maxPerWindow: 10, window: time.Hour},
		loginAttemptSvc: &LoginAttemptService{
			redisSvc:      redisSvc,
			sqlSvc:        sqlSvc,
			emailSvc:      &EmailService{},
			maxAttempts:   5,
			attemptWindow: 15 * time.Minute,
			lockoutBase:   15 * time.Minute,
			lockoutMax:    24 * time.Hour,
		},
		auditSvc: auditSvc,
	}
	return svc, sqlSvc
}

func latestResetCode(t *testing.T, sqlSvc *PostgresService, userID string) *model.PasswordResetCode {
	t.Helper()

	var reset model.PasswordResetCode
	err := sqlSvc.Db().Where("user_id = ?", userID).Order("created_at DESC").First(&reset).Error
	require.NoError(t, err)
	return &reset
}

func TestForgotPasswordCreatesCode(t *testing.T) {
	svc, sqlSvc := newTestAuthService(t)
	user := createTestUser(t, sqlSvc, "reset@example.com")

	err := svc.ForgotPassword(dto.ForgotPasswordRequest{Email: "reset@example.com"}, "1.2.3.4", "test-agent")
	require.NoError(t, err)

	reset := latestResetCode(t, sqlSvc, user.ID)
	require.Len(t, reset.Code, 6)
	require.False(t, reset.Used)
	require.WithinDuration(t, time.Now().Add(time.Hour), reset.ExpiresAt, time.Minute)
}

func TestForgotPasswordUnknownEmailIsSilent(t *testing.T) {
	svc, sqlSvc := newTestAuthService(t)

	err := svc.ForgotPassword(dto.ForgotPasswordRequest{Email: "nobody@example.com"}, "1.2.3.4", "test-agent")
	require.NoError(t, err)

	var count int64
	require.NoError(t, sqlSvc.Db().Model(&model.PasswordResetCode{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestForgotPasswordRateLimited(t *testing.T) {
	svc, sqlSvc := newTestAuthService(t)
	svc.rateLimitSvc.maxPerWindow = 1
	createTestUser(t, sqlSvc, "limited@example.com")

	req := dto.ForgotPasswordRequest{Email: "limited@example.com"}
	require.NoError(t, svc.ForgotPassword(req, "1.2.3.4", "test-agent"))

	err := svc.ForgotPassword(req, "1.2.3.4", "test-agent")
	require.Error(t, err)
	appErr, ok := shared.GetAppError(err)
	require.True(t, ok)
	require.Equal(t, http.StatusTooManyRequests, appErr.StatusCode)
}

func TestResetPassword(t *testing.T) {
	svc, sqlSvc := newTestAuthService(t)
	user := createTestUser(t, sqlSvc, "owner@example.com")

	// An open session that the reset must kill.
	_, err := svc.tokenSvc.Create(user.ID)
	require.NoError(t, err)

	require.NoError(t, svc.ForgotPassword(dto.ForgotPasswordRequest{Email: "owner@example.com"}, "1.2.3.4", "test-agent"))
	reset := latestResetCode(t, sqlSvc, user.ID)

	err = svc.ResetPassword(dto.ResetPasswordRequest{
		Code:        reset.Code,
		NewPassword: "FreshPass123",
	}, "1.2.3.4", "test-agent")
	require.NoError(t, err)

	updated, err := sqlSvc.GetUser(user.ID)
	require.NoError(t, err)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(updated.Password), []byte("FreshPass123")))

	used := latestResetCode(t, sqlSvc, user.ID)
	require.True(t, used.Used)

	active, err := sqlSvc.CountActiveRefreshTokens(user.ID)
	require.NoError(t, err)
	require.Zero(t, active)
}

func TestResetPasswordCodeWorksOnce(t *testing.T) {
	svc, sqlSvc := newTestAuthService(t)
	user := createTestUser(t, sqlSvc, "once@example.com")

	require.NoError(t, svc.ForgotPassword(dto.ForgotPasswordRequest{Email: "once@example.com"}, "1.2.3.4", "test-agent"))
	reset := latestResetCode(t, sqlSvc, user.ID)

	req := dto.ResetPasswordRequest{Code: reset.Code, NewPassword: "FreshPass123"}
	require.NoError(t, svc.ResetPassword(req, "1.2.3.4", "test-agent"))

	req.NewPassword = "OtherPass456"
	err := svc.ResetPassword(req, "1.2.3.4", "test-agent")
	require.Error(t, err)
	appErr, ok := shared.GetAppError(err)
	require.True(t, ok)
	require.Equal(t, http.StatusBadRequest, appErr.StatusCode)
}

func TestResetPasswordExpiredCode(t *testing.T) {
	svc, sqlSvc := newTestAuthService(t)
	user := createTestUser(t, sqlSvc, "stale@example.com")

	require.NoError(t, svc.ForgotPassword(dto.ForgotPasswordRequest{Email: "stale@example.com"}, "1.2.3.4", "test-agent"))
	reset := latestResetCode(t, sqlSvc, user.ID)
	reset.ExpiresAt = time.Now().Add(-time.Minute)
	require.NoError(t, sqlSvc.Db().Save(reset).Error)

	err := svc.ResetPassword(dto.ResetPasswordRequest{
		Code:        reset.Code,
		NewPassword: "FreshPass123",
	}, "1.2.3.4", "test-agent")
	require.Error(t, err)
	appErr, ok := shared.GetAppError(err)
	require.True(t, ok)
	require.Equal(t, http.StatusBadRequest, appErr.StatusCode)
}

func TestResetPasswordUnknownCode(t *testing.T) {
	svc, _ := newTestAuthService(t)

	err := svc.ResetPassword(dto.ResetPasswordRequest{
		Code:        "000000",
		NewPassword: "FreshPass123",
	}, "1.2.3.4", "test-agent")
	require.Error(t, err)
	appErr, ok := shared.GetAppError(err)
	require.True(t, ok)
	require.Equal(t, http.StatusBadRequest, appErr.StatusCode)
}

func TestResetPasswordClearsLockout(t *testing.T) {
	svc, sqlSvc := newTestAuthService(t)
	user := createTestUser(t, sqlSvc, "locked@example.com")
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		svc.loginAttemptSvc.RecordFailedAttempt(ctx, user.Email, "9.9.9.9")
	}
	require.Equal(t, int64(3), svc.loginAttemptSvc.GetFailedAttempts(ctx, user.Email))

	require.NoError(t, svc.ForgotPassword(dto.ForgotPasswordRequest{Email: user.Email}, "1.2.3.4", "test-agent"))
	reset := latestResetCode(t, sqlSvc, user.ID)

	require.NoError(t, svc.ResetPassword(dto.ResetPasswordRequest{
		Code:        reset.Code,
		NewPassword: "FreshPass123",
	}, "1.2.3.4", "test-agent"))

	require.Zero(t, svc.loginAttemptSvc.GetFailedAttempts(ctx, user.Email))
}
