package services

import (
	"testing"
	"time"

	"github.com/inkwell-cms/inkwell_api/model"
	"github.com/inkwell-cms/inkwell_api/shared"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTokenService(t *testing.T) (*RefreshTokenService, *PostgresService) {
	t.Helper()

	sqlSvc := newTestDB(t)
	svc := &RefreshTokenService{
		sqlSvc:   sqlSvc,
		auditSvc: &AuditService{sqlSvc: sqlSvc},
		lifetime: 7 * 24 * time.Hour,
	}
	return svc, sqlSvc
}

func TestRefreshTokenCreate(t *testing.T) {
	svc, sqlSvc := newTestTokenService(t)
	user := createTestUser(t, sqlSvc, "user@example.com")

	token, err := svc.Create(user.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, token.Token)
	assert.False(t, token.Revoked)
	assert.True(t, token.ExpiresAt.After(time.Now()))
}

func TestRefreshTokenSingleActivePerUser(t *testing.T) {
	svc, sqlSvc := newTestTokenService(t)
	user := createTestUser(t, sqlSvc, "user@example.com")

	first, err := svc.Create(user.ID)
	require.NoError(t, err)
	second, err := svc.Create(user.ID)
	require.NoError(t, err)
	assert.NotEqual(t, first.Token, second.Token)

	count, err := sqlSvc.CountActiveRefreshTokens(user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	stale, err := sqlSvc.GetRefreshToken(first.Token)
	require.NoError(t, err)
	assert.True(t, stale.Revoked, "issuing a new token revokes the prior one")
}

func TestRefreshTokenRotation(t *testing.T) {
	svc, sqlSvc := newTestTokenService(t)
	user := createTestUser(t, sqlSvc, "user@example.com")

	original, err := svc.Create(user.ID)
	require.NoError(t, err)

	rotated, err := svc.VerifyAndRotate(original.Token, "1.2.3.4", "test-agent")
	require.NoError(t, err)
	assert.NotEqual(t, original.Token, rotated.Token)

	consumed, err := sqlSvc.GetRefreshToken(original.Token)
	require.NoError(t, err)
	assert.True(t, consumed.Revoked, "a redeemed token is consumed")
}

func TestRefreshTokenReuseRevokesEverything(t *testing.T) {
	svc, sqlSvc := newTestTokenService(t)
	user := createTestUser(t, sqlSvc, "user@example.com")

	original, err := svc.Create(user.ID)
	require.NoError(t, err)

	rotated, err := svc.VerifyAndRotate(original.Token, "1.2.3.4", "test-agent")
	require.NoError(t, err)

	// Presenting the consumed token again is a compromise signal.
	_, err = svc.VerifyAndRotate(original.Token, "5.6.7.8", "test-agent")
	assert.ErrorIs(t, err, shared.ErrRefreshTokenReuse)

	// The legitimately rotated token burns with the rest of the chain.
	count, err := sqlSvc.CountActiveRefreshTokens(user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	_, err = svc.VerifyAndRotate(rotated.Token, "1.2.3.4", "test-agent")
	assert.ErrorIs(t, err, shared.ErrRefreshTokenReuse)
}

func TestRefreshTokenReuseIsAudited(t *testing.T) {
	svc, sqlSvc := newTestTokenService(t)
	user := createTestUser(t, sqlSvc, "user@example.com")

	original, err := svc.Create(user.ID)
	require.NoError(t, err)
	_, err = svc.VerifyAndRotate(original.Token, "1.2.3.4", "test-agent")
	require.NoError(t, err)

	_, err = svc.VerifyAndRotate(original.Token, "5.6.7.8", "test-agent")
	require.ErrorIs(t, err, shared.ErrRefreshTokenReuse)

	logs, total, err := sqlSvc.ListAuditLogs(user.ID, model.AuditActionTokenReuse, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, logs, 1)
	assert.False(t, logs[0].Success)
	assert.Equal(t, "5.6.7.8", logs[0].IP)
}

func TestRefreshTokenExpired(t *testing.T) {
	svc, sqlSvc := newTestTokenService(t)
	user := createTestUser(t, sqlSvc, "user@example.com")

	token, err := svc.Create(user.ID)
	require.NoError(t, err)

	token.ExpiresAt = time.Now().Add(-time.Minute)
	require.NoError(t, sqlSvc.Db().Save(token).Error)

	_, err = svc.VerifyAndRotate(token.Token, "1.2.3.4", "test-agent")
	assert.ErrorIs(t, err, shared.ErrRefreshTokenExpired)
}

func TestRefreshTokenUnknown(t *testing.T) {
	svc, _ := newTestTokenService(t)

	_, err := svc.VerifyAndRotate("no-such-token", "1.2.3.4", "test-agent")
	assert.ErrorIs(t, err, shared.ErrRefreshTokenNotFound)
}

func TestRefreshTokenRevokeIdempotent(t *testing.T) {
	svc, sqlSvc := newTestTokenService(t)
	user := createTestUser(t, sqlSvc, "user@example.com")

	token, err := svc.Create(user.ID)
	require.NoError(t, err)

	require.NoError(t, svc.Revoke(token.Token))
	require.NoError(t, svc.Revoke(token.Token))
	require.NoError(t, svc.Revoke("no-such-token"))

	count, err := sqlSvc.CountActiveRefreshTokens(user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestRevokeAllForUserIdempotent(t *testing.T) {
	svc, sqlSvc := newTestTokenService(t)
	user := createTestUser(t, sqlSvc, "user@example.com")

	_, err := svc.Create(user.ID)
	require.NoError(t, err)

	require.NoError(t, svc.RevokeAllForUser(user.ID))
	require.NoError(t, svc.RevokeAllForUser(user.ID))
	require.NoError(t, svc.RevokeAllForUser("no-such-user"))
}

func TestRevokePropagatesStoreFailure(t *testing.T) {
	svc, sqlSvc := newTestTokenService(t)
	user := createTestUser(t, sqlSvc, "user@example.com")

	token, err := svc.Create(user.ID)
	require.NoError(t, err)

	sqlDB, err := sqlSvc.Db().DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	// A logout during a store outage must not report success while the row
	// is still active.
	require.Error(t, svc.Revoke(token.Token))

	_, err = svc.VerifyAndRotate(token.Token, "1.2.3.4", "test-agent")
	require.Error(t, err)
	assert.NotErrorIs(t, err, shared.ErrRefreshTokenNotFound)
}
