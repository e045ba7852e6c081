// Package adapters はauthフィーチャーの永続化を gorm で実装します。
package adapters

import (
	"context"
	"errors"

	"fiflow_backend/internal/feature/auth/domain/entity"
	"fiflow_backend/internal/feature/auth/usecase"
	"fiflow_backend/internal/platform/db"

	"gorm.io/gorm"
)

// userGorm は gorm を使った UserRepository の実装です。
type userGorm struct {
	db *gorm.DB
}

var _ usecase.UserRepository = (*userGorm)(nil)

// NewUserRepository は UserRepository を生成します。
func NewUserRepository(db *gorm.DB) *userGorm {
	return &userGorm{db: db}
}

// Create は新しいユーザーを作成します。external_id の一意制約違反は ErrExternalIDAlreadyExists に変換します。
func (r *userGorm) Create(ctx context.Context, u *entity.User) error {
	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		if db.IsUniqueViolation(err) {
			return usecase.ErrExternalIDAlreadyExists
		}
		return err
	}
	return nil
}

func (r *userGorm) FindByExternalID(ctx context.Context, externalID string) (*entity.User, error) {
	var u entity.User
	if err := r.db.WithContext(ctx).Where("external_id = ?", externalID).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *userGorm) FindByID(ctx context.Context, id uint) (*entity.User, error) {
	var u entity.User
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// Update はプロフィールと最終ログイン時刻のみを更新します。
func (r *userGorm) Update(ctx context.Context, u *entity.User) error {
	res := r.db.WithContext(ctx).Model(u).Select("nickname", "email", "last_login_at", "updated_at").Updates(u)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return usecase.ErrUserNotFound
	}
	return nil
}
