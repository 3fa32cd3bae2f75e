package services

import (
	"testing"
	"time"

	"github.com/inkwell-cms/inkwell_api/model"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestRedis returns a RedisService backed by an in-process miniredis.
func newTestRedis(t *testing.T) (*RedisService, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
		mr.Close()
	})

	return &RedisService{redis: client}, mr
}

// newBrokenRedis returns a RedisService whose backing store is gone, so every
// operation errors. Used to exercise the fail-open paths.
func newBrokenRedis(t *testing.T) *RedisService {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	mr.Close()
	t.Cleanup(func() { _ = client.Close() })

	return &RedisService{redis: client}
}

// newTestDB returns a PostgresService backed by an in-memory sqlite database
// with the full schema migrated.
func newTestDB(t *testing.T) *PostgresService {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("sqlite open failed: %v", err)
	}

	err = db.AutoMigrate(
		&model.User{},
		&model.RefreshToken{},
		&model.PasswordResetCode{},
		&model.Article{},
		&model.Tag{},
		&model.Comment{},
		&model.AuditLog{},
	)
	if err != nil {
		t.Fatalf("migrate failed: %v", err)
	}

	return &PostgresService{db: db}
}

func createTestUser(t *testing.T, sqlSvc *PostgresService, email string) *model.User {
	t.Helper()

	user := &model.User{
		ID:            uuid.NewString(),
		Email:         email,
		Username:      "user-" + uuid.NewString()[:8],
		Password:      "not-a-real-hash",
		Role:          "user",
		EmailVerified: true,
		IsActive:      true,
		CreatedAt:     time.Now(),
	}
	if err := sqlSvc.CreateUser(user); err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	return user
}
