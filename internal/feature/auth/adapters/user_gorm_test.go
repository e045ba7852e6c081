package adapters

import (
	"context"
	"testing"
	"time"

	"fiflow_backend/internal/feature/auth/domain/entity"
	"fiflow_backend/internal/feature/auth/usecase"

	"github.com/guregu/null/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&entity.User{}))
	return db
}

func newUser(externalID string) *entity.User {
	return &entity.User{
		ExternalID: externalID,
		Nickname:   "홍길동",
		Email:      null.StringFrom("hong@example.com"),
		LoginType:  entity.LoginTypeKakao,
		IsActive:   true,
	}
}

func TestUserGorm_CreateAndFind(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	u := newUser("1234567890")
	require.NoError(t, repo.Create(ctx, u))
	assert.NotZero(t, u.ID)

	got, err := repo.FindByExternalID(ctx, "1234567890")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, "hong@example.com", got.Email.String)

	got, err = repo.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "1234567890", got.ExternalID)
}

func TestUserGorm_CreateDuplicate(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newUser("dup")))
	err := repo.Create(ctx, newUser("dup"))
	assert.ErrorIs(t, err, usecase.ErrExternalIDAlreadyExists)
}

func TestUserGorm_NotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	_, err := repo.FindByExternalID(ctx, "missing")
	assert.ErrorIs(t, err, usecase.ErrUserNotFound)

	_, err = repo.FindByID(ctx, 999)
	assert.ErrorIs(t, err, usecase.ErrUserNotFound)

	err = repo.Update(ctx, &entity.User{ID: 999, Nickname: "x"})
	assert.ErrorIs(t, err, usecase.ErrUserNotFound)
}

func TestUserGorm_Update(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	u := newUser("42")
	require.NoError(t, repo.Create(ctx, u))

	login := time.Date(2025, 8, 5, 10, 0, 0, 0, time.UTC)
	u.Nickname = "새이름"
	u.LastLoginAt = null.TimeFrom(login)
	u.LoginType = "ignored"
	require.NoError(t, repo.Update(ctx, u))

	got, err := repo.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "새이름", got.Nickname)
	assert.True(t, got.LastLoginAt.Valid)
	assert.True(t, got.LastLoginAt.Time.Equal(login))
	assert.Equal(t, entity.LoginTypeKakao, got.LoginType, "login type is not updated")
}
