// Package usecase は Kakao ログインとセッショントークン発行を実装します。
package usecase

import (
	"errors"

	"fiflow_backend/internal/shared/apperr"
)

var (
	// ErrUserNotFound is returned when a user cannot be found by external id or ID.
	ErrUserNotFound = apperr.NotFound("사용자를 찾을 수 없습니다.")

	// ErrExternalIDAlreadyExists is returned when creating a user whose external id is taken.
	ErrExternalIDAlreadyExists = errors.New("external id already exists")

	ErrCodeRequired        = apperr.Validation("인증 코드가 필요합니다.")
	ErrAccessTokenRequired = apperr.Validation("카카오 액세스 토큰이 필요합니다.")

	// ErrIdentityMismatch is returned when the client-supplied kakaoId differs from the verified profile.
	ErrIdentityMismatch = apperr.New(apperr.KindAuth, "kakao identity mismatch")

	// ErrInactiveUser is returned when a deactivated user tries to log in.
	ErrInactiveUser = apperr.New(apperr.KindAuth, "user is inactive")
)
