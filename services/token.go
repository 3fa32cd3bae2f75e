package services

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	appContext "github.com/alphabatem/common/context"
	"github.com/google/uuid"
	"github.com/inkwell-cms/inkwell_api/model"
	"github.com/inkwell-cms/inkwell_api/shared"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// RefreshTokenService issues one-time-use rotating refresh tokens. A token can
// be redeemed exactly once; presenting a revoked token is treated as a
// compromise signal and burns the whole session chain for that user.
type RefreshTokenService struct {
	appContext.DefaultService

	sqlSvc   *PostgresService
	auditSvc *AuditService

	lifetime time.Duration
}

const REFRESH_TOKEN_SVC = "refresh_token_svc"

func (svc RefreshTokenService) Id() string {
	return REFRESH_TOKEN_SVC
}

func (svc *RefreshTokenService) Configure(ctx *appContext.Context) error {
	svc.lifetime = 7 * 24 * time.Hour
	if v := os.Getenv("REFRESH_TOKEN_LIFETIME_HOURS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			svc.lifetime = time.Duration(n) * time.Hour
		}
	}
	return svc.DefaultService.Configure(ctx)
}

func (svc *RefreshTokenService) Start() error {
	svc.sqlSvc = svc.Service(POSTGRES_SVC).(*PostgresService)
	svc.auditSvc = svc.Service(AUDIT_SVC).(*AuditService)
	return nil
}

func generateOpaqueToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate refresh token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// Create revokes every prior token for the user and persists a fresh one.
// At most one active token per user at any time.
func (svc *RefreshTokenService) Create(userID string) (*model.RefreshToken, error) {
	if err := svc.sqlSvc.RevokeAllRefreshTokens(userID); err != nil {
		return nil, err
	}

	opaque, err := generateOpaqueToken()
	if err != nil {
		return nil, err
	}

	id, _ := uuid.NewV7()
	token := &model.RefreshToken{
		ID:        id.String(),
		UserID:    userID,
		Token:     opaque,
		ExpiresAt: time.Now().Add(svc.lifetime),
		Revoked:   false,
		CreatedAt: time.Now(),
	}

	if err := svc.sqlSvc.CreateRefreshToken(token); err != nil {
		return nil, err
	}

	return token, nil
}

// VerifyAndRotate redeems a token string. Each successful call consumes the
// presented token and yields exactly one successor.
func (svc *RefreshTokenService) VerifyAndRotate(tokenString, ip, userAgent string) (*model.RefreshToken, error) {
	token, err := svc.sqlSvc.GetRefreshToken(tokenString)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrRefreshTokenNotFound
		}
		// A store outage is not an invalid token.
		return nil, err
	}

	if token.Revoked {
		// Reuse of a consumed token. Assume the chain is compromised and
		// revoke everything this user holds before failing.
		log.WithFields(log.Fields{
			"user_id": token.UserID,
			"ip":      ip,
		}).Warn("Refresh token reuse detected, revoking all sessions")

		if err := svc.sqlSvc.RevokeAllRefreshTokens(token.UserID); err != nil {
			log.WithError(err).WithField("user_id", token.UserID).
				Error("Failed to revoke tokens after reuse detection")
		}

		tokenReuseDetectedTotal.Inc()
		svc.auditSvc.Record(token.UserID, model.AuditActionTokenReuse, ip, userAgent, false,
			"revoked refresh token presented again; all sessions revoked")

		return nil, shared.ErrRefreshTokenReuse
	}

	if token.Expired(time.Now()) {
		return nil, shared.ErrRefreshTokenExpired
	}

	fresh, err := svc.Create(token.UserID)
	if err != nil {
		return nil, err
	}

	svc.auditSvc.Record(token.UserID, model.AuditActionTokenRefresh, ip, userAgent, true, "")
	return fresh, nil
}

// Revoke marks one token revoked. No-op when the string is unknown; store
// failures propagate so a logout during an outage is not reported as done.
func (svc *RefreshTokenService) Revoke(tokenString string) error {
	token, err := svc.sqlSvc.GetRefreshToken(tokenString)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	if token.Revoked {
		return nil
	}
	return svc.sqlSvc.RevokeRefreshToken(token.ID)
}

// RevokeAllForUser revokes the user's entire chain. Idempotent.
func (svc *RefreshTokenService) RevokeAllForUser(userID string) error {
	return svc.sqlSvc.RevokeAllRefreshTokens(userID)
}

func (svc *RefreshTokenService) Lifetime() time.Duration {
	return svc.lifetime
}
