package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"fiflow_backend/internal/feature/auth/domain/entity"
	"fiflow_backend/internal/platform/logging"

	"github.com/guregu/null/v6"
)

// UserRepository はユーザーエンティティの永続化層を抽象化します。
// Goの慣例に従い、インターフェースはプロバイダー（adapters）ではなくコンシューマー（usecase）が定義します。
type UserRepository interface {
	// Create は新しいユーザーを永続化します。ExternalID が重複する場合は ErrExternalIDAlreadyExists を返します。
	Create(ctx context.Context, user *entity.User) error

	// FindByExternalID は IdP の会員番号でユーザーを取得します。存在しない場合は ErrUserNotFound を返します。
	FindByExternalID(ctx context.Context, externalID string) (*entity.User, error)

	// FindByID はIDでユーザーを取得します。存在しない場合は ErrUserNotFound を返します。
	FindByID(ctx context.Context, id uint) (*entity.User, error)

	// Update はプロフィールと最終ログイン時刻を保存します。
	Update(ctx context.Context, user *entity.User) error
}

// Profile は IdP から取得したユーザー情報です。
type Profile struct {
	ExternalID string
	Nickname   string      // empty when the provider did not return one
	Email      null.String // invalid when the provider did not return one
}

// IdentityProvider は外部IdP（Kakao）です。
type IdentityProvider interface {
	// ExchangeCode exchanges an authorization code and fetches the profile.
	ExchangeCode(ctx context.Context, code string) (*Profile, error)
	// FetchProfile fetches the profile for a provider access token.
	FetchProfile(ctx context.Context, accessToken string) (*Profile, error)
}

// JWTGenerator はJWTトークン生成のインターフェースを定義します。
// Goの慣例に従い、インターフェースはプロバイダー（platform/jwt）ではなくコンシューマー（usecase）が定義します。
type JWTGenerator interface {
	GenerateToken(userID uint, externalID, nickname string) (string, error)
}

// ClientLogin はモバイルクライアントから送られるログイン情報です。
// AccessToken は必須で、KakaoID は送られた場合のみ検証に使います。
type ClientLogin struct {
	KakaoID     string
	AccessToken string
}

// LoginResult はログイン成功時の結果です。
type LoginResult struct {
	Token   string
	User    entity.User
	Created bool
}

// authUsecase は認証ビジネスロジックを実装します。
type authUsecase struct {
	users        UserRepository
	idp          IdentityProvider
	jwtGenerator JWTGenerator
	now          func() time.Time
}

// NewAuthUsecase はauthUsecaseの新しいインスタンスを生成します。
func NewAuthUsecase(users UserRepository, idp IdentityProvider, jwtGenerator JWTGenerator) *authUsecase {
	return &authUsecase{
		users:        users,
		idp:          idp,
		jwtGenerator: jwtGenerator,
		now:          time.Now,
	}
}

// LoginWithCode は Web の認可コードフローでログインします。
func (u *authUsecase) LoginWithCode(ctx context.Context, code string) (*LoginResult, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, ErrCodeRequired
	}
	p, err := u.idp.ExchangeCode(ctx, code)
	if err != nil {
		return nil, err
	}
	return u.login(ctx, p)
}

// LoginWithClientProfile はモバイルクライアントのログインです。
// クライアントが送った ID は信用せず、アクセストークンでサーバー側からプロフィールを取得して照合します。
func (u *authUsecase) LoginWithClientProfile(ctx context.Context, in ClientLogin) (*LoginResult, error) {
	token := strings.TrimSpace(in.AccessToken)
	if token == "" {
		return nil, ErrAccessTokenRequired
	}
	p, err := u.idp.FetchProfile(ctx, token)
	if err != nil {
		return nil, err
	}
	if claimed := strings.TrimSpace(in.KakaoID); claimed != "" && claimed != p.ExternalID {
		logging.FromContext(ctx).Warn("client kakao id does not match verified profile", "claimed", claimed, "verified", p.ExternalID)
		return nil, ErrIdentityMismatch
	}
	return u.login(ctx, p)
}

// GetCurrentUser returns the user of a verified session.
func (u *authUsecase) GetCurrentUser(ctx context.Context, userID uint) (*entity.User, error) {
	return u.users.FindByID(ctx, userID)
}

// login は初回ならユーザーを作成し、2回目以降はプロフィールを更新してトークンを発行します。
// IdP が値を返さない項目は既存の値を維持します。
func (u *authUsecase) login(ctx context.Context, p *Profile) (*LoginResult, error) {
	now := u.now()
	created := false

	user, err := u.users.FindByExternalID(ctx, p.ExternalID)
	switch {
	case err == nil:
		if !user.IsActive {
			return nil, ErrInactiveUser
		}
		if p.Nickname != "" {
			user.Nickname = p.Nickname
		}
		if p.Email.Valid && p.Email.String != "" {
			user.Email = p.Email
		}
		user.LastLoginAt = null.TimeFrom(now)
		if err := u.users.Update(ctx, user); err != nil {
			return nil, err
		}
	case errors.Is(err, ErrUserNotFound):
		user, created, err = u.createUser(ctx, p, now)
		if err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	token, err := u.jwtGenerator.GenerateToken(user.ID, user.ExternalID, user.Nickname)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	logging.FromContext(ctx).Info("user login successful", "user_id", user.ID, "created", created)
	return &LoginResult{Token: token, User: *user, Created: created}, nil
}

func (u *authUsecase) createUser(ctx context.Context, p *Profile, now time.Time) (*entity.User, bool, error) {
	nickname := p.Nickname
	if nickname == "" {
		nickname = entity.DefaultNickname
	}
	user := &entity.User{
		ExternalID:  p.ExternalID,
		Nickname:    nickname,
		Email:       p.Email,
		LoginType:   entity.LoginTypeKakao,
		IsActive:    true,
		LastLoginAt: null.TimeFrom(now),
	}
	err := u.users.Create(ctx, user)
	if err == nil {
		return user, true, nil
	}
	if !errors.Is(err, ErrExternalIDAlreadyExists) {
		return nil, false, err
	}
	// 同時ログインで先に作成された
	existing, err := u.users.FindByExternalID(ctx, p.ExternalID)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}
