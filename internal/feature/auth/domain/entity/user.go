// Package entity defines the domain entities for the auth feature.
package entity

import (
	"time"

	"github.com/guregu/null/v6"
)

// LoginTypeKakao は Kakao ログインで作成されたユーザーを表します。
const LoginTypeKakao = "kakao"

// DefaultNickname は IdP がニックネームを返さない場合の表示名です。
const DefaultNickname = "사용자"

// User represents a user identified by an external identity provider.
type User struct {
	// ID is the unique identifier for the user.
	ID uint `gorm:"primaryKey"`

	// ExternalID is the identity provider's member id (Kakao user id). Unique.
	ExternalID string `gorm:"uniqueIndex;size:64;not null"`

	Nickname string `gorm:"size:100;not null"`

	// Email is optional; Kakao returns it only with the account_email consent.
	Email null.String `gorm:"size:255"`

	LoginType   string `gorm:"size:20;not null"`
	IsActive    bool   `gorm:"not null"`
	LastLoginAt null.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}
