package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"fiflow_backend/internal/feature/auth/domain/entity"
	"fiflow_backend/internal/shared/apperr"

	"github.com/guregu/null/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockUserRepository is a mock implementation of UserRepository.
type mockUserRepository struct {
	CreateFunc           func(ctx context.Context, user *entity.User) error
	FindByExternalIDFunc func(ctx context.Context, externalID string) (*entity.User, error)
	FindByIDFunc         func(ctx context.Context, id uint) (*entity.User, error)
	UpdateFunc           func(ctx context.Context, user *entity.User) error
}

func (m *mockUserRepository) Create(ctx context.Context, user *entity.User) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	user.ID = 1
	return nil
}

func (m *mockUserRepository) FindByExternalID(ctx context.Context, externalID string) (*entity.User, error) {
	if m.FindByExternalIDFunc != nil {
		return m.FindByExternalIDFunc(ctx, externalID)
	}
	return nil, ErrUserNotFound
}

func (m *mockUserRepository) FindByID(ctx context.Context, id uint) (*entity.User, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, ErrUserNotFound
}

func (m *mockUserRepository) Update(ctx context.Context, user *entity.User) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, user)
	}
	return nil
}

// mockIdentityProvider is a mock implementation of IdentityProvider.
type mockIdentityProvider struct {
	ExchangeCodeFunc func(ctx context.Context, code string) (*Profile, error)
	FetchProfileFunc func(ctx context.Context, accessToken string) (*Profile, error)
}

func (m *mockIdentityProvider) ExchangeCode(ctx context.Context, code string) (*Profile, error) {
	return m.ExchangeCodeFunc(ctx, code)
}

func (m *mockIdentityProvider) FetchProfile(ctx context.Context, accessToken string) (*Profile, error) {
	return m.FetchProfileFunc(ctx, accessToken)
}

// mockJWTGenerator is a mock implementation of JWTGenerator.
type mockJWTGenerator struct {
	GenerateTokenFunc func(userID uint, externalID, nickname string) (string, error)
}

func (m *mockJWTGenerator) GenerateToken(userID uint, externalID, nickname string) (string, error) {
	if m.GenerateTokenFunc != nil {
		return m.GenerateTokenFunc(userID, externalID, nickname)
	}
	return "mock.jwt.token", nil
}

var fixedNow = time.Date(2025, 8, 5, 10, 0, 0, 0, time.UTC)

func newTestUsecase(repo UserRepository, idp IdentityProvider) *authUsecase {
	uc := NewAuthUsecase(repo, idp, &mockJWTGenerator{})
	uc.now = func() time.Time { return fixedNow }
	return uc
}

func profileIDP(p *Profile) *mockIdentityProvider {
	return &mockIdentityProvider{
		ExchangeCodeFunc: func(ctx context.Context, code string) (*Profile, error) { return p, nil },
		FetchProfileFunc: func(ctx context.Context, accessToken string) (*Profile, error) { return p, nil },
	}
}

func TestLoginWithCode_FirstLoginCreatesUser(t *testing.T) {
	t.Parallel()

	var created *entity.User
	repo := &mockUserRepository{CreateFunc: func(ctx context.Context, user *entity.User) error {
		user.ID = 10
		created = user
		return nil
	}}
	uc := newTestUsecase(repo, profileIDP(&Profile{ExternalID: "123"}))

	res, err := uc.LoginWithCode(context.Background(), "code")
	require.NoError(t, err)
	assert.True(t, res.Created)
	assert.Equal(t, "mock.jwt.token", res.Token)

	require.NotNil(t, created)
	assert.Equal(t, "123", created.ExternalID)
	assert.Equal(t, entity.DefaultNickname, created.Nickname)
	assert.Equal(t, entity.LoginTypeKakao, created.LoginType)
	assert.True(t, created.IsActive)
	assert.False(t, created.Email.Valid)
	assert.True(t, created.LastLoginAt.Time.Equal(fixedNow))
}

func TestLoginWithCode_ReturningUserKeepsMissingFields(t *testing.T) {
	t.Parallel()

	existing := &entity.User{
		ID: 3, ExternalID: "123", Nickname: "old", Email: null.StringFrom("old@example.com"),
		LoginType: entity.LoginTypeKakao, IsActive: true,
	}
	var updated *entity.User
	repo := &mockUserRepository{
		FindByExternalIDFunc: func(ctx context.Context, externalID string) (*entity.User, error) { return existing, nil },
		CreateFunc: func(ctx context.Context, user *entity.User) error {
			t.Fatal("create must not be called for a returning user")
			return nil
		},
		UpdateFunc: func(ctx context.Context, user *entity.User) error {
			updated = user
			return nil
		},
	}
	uc := newTestUsecase(repo, profileIDP(&Profile{ExternalID: "123", Nickname: "new"}))

	res, err := uc.LoginWithCode(context.Background(), "code")
	require.NoError(t, err)
	assert.False(t, res.Created)
	require.NotNil(t, updated)
	assert.Equal(t, "new", updated.Nickname)
	assert.Equal(t, "old@example.com", updated.Email.String)
	assert.True(t, updated.LastLoginAt.Time.Equal(fixedNow))
}

func TestLoginWithCode_Validation(t *testing.T) {
	t.Parallel()

	uc := newTestUsecase(&mockUserRepository{}, &mockIdentityProvider{})
	_, err := uc.LoginWithCode(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrCodeRequired)
}

func TestLoginWithCode_ProviderError(t *testing.T) {
	t.Parallel()

	upstream := apperr.Upstream("kakao token exchange failed", errors.New("invalid_grant"))
	idp := &mockIdentityProvider{ExchangeCodeFunc: func(ctx context.Context, code string) (*Profile, error) {
		return nil, upstream
	}}
	uc := newTestUsecase(&mockUserRepository{}, idp)

	_, err := uc.LoginWithCode(context.Background(), "code")
	assert.Equal(t, apperr.KindUpstream, apperr.KindOf(err))
}

func TestLoginWithCode_InactiveUser(t *testing.T) {
	t.Parallel()

	repo := &mockUserRepository{FindByExternalIDFunc: func(ctx context.Context, externalID string) (*entity.User, error) {
		return &entity.User{ID: 1, ExternalID: externalID, IsActive: false}, nil
	}}
	uc := newTestUsecase(repo, profileIDP(&Profile{ExternalID: "123"}))

	_, err := uc.LoginWithCode(context.Background(), "code")
	assert.ErrorIs(t, err, ErrInactiveUser)
}

func TestLoginWithCode_ConcurrentCreateFallsBackToExisting(t *testing.T) {
	t.Parallel()

	calls := 0
	repo := &mockUserRepository{
		FindByExternalIDFunc: func(ctx context.Context, externalID string) (*entity.User, error) {
			calls++
			if calls == 1 {
				return nil, ErrUserNotFound
			}
			return &entity.User{ID: 9, ExternalID: externalID, Nickname: "race", IsActive: true}, nil
		},
		CreateFunc: func(ctx context.Context, user *entity.User) error { return ErrExternalIDAlreadyExists },
	}
	uc := newTestUsecase(repo, profileIDP(&Profile{ExternalID: "123"}))

	res, err := uc.LoginWithCode(context.Background(), "code")
	require.NoError(t, err)
	assert.False(t, res.Created)
	assert.Equal(t, uint(9), res.User.ID)
}

func TestLoginWithCode_TokenFailure(t *testing.T) {
	t.Parallel()

	uc := NewAuthUsecase(&mockUserRepository{}, profileIDP(&Profile{ExternalID: "1"}), &mockJWTGenerator{
		GenerateTokenFunc: func(userID uint, externalID, nickname string) (string, error) {
			return "", errors.New("sign failed")
		},
	})

	_, err := uc.LoginWithCode(context.Background(), "code")
	assert.ErrorContains(t, err, "failed to generate token")
}

func TestLoginWithClientProfile(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		in      ClientLogin
		wantErr error
	}{
		{"matching id", ClientLogin{KakaoID: "123", AccessToken: "tok"}, nil},
		{"id omitted", ClientLogin{AccessToken: "tok"}, nil},
		{"mismatched id", ClientLogin{KakaoID: "999", AccessToken: "tok"}, ErrIdentityMismatch},
		{"missing token", ClientLogin{KakaoID: "123"}, ErrAccessTokenRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idp := &mockIdentityProvider{FetchProfileFunc: func(ctx context.Context, accessToken string) (*Profile, error) {
				assert.Equal(t, "tok", accessToken)
				return &Profile{ExternalID: "123", Nickname: "홍길동"}, nil
			}}
			uc := newTestUsecase(&mockUserRepository{}, idp)

			res, err := uc.LoginWithClientProfile(context.Background(), tt.in)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "123", res.User.ExternalID)
			assert.Equal(t, "홍길동", res.User.Nickname)
		})
	}
}

func TestGetCurrentUser(t *testing.T) {
	t.Parallel()

	repo := &mockUserRepository{FindByIDFunc: func(ctx context.Context, id uint) (*entity.User, error) {
		if id == 5 {
			return &entity.User{ID: 5, ExternalID: "123"}, nil
		}
		return nil, ErrUserNotFound
	}}
	uc := newTestUsecase(repo, &mockIdentityProvider{})

	u, err := uc.GetCurrentUser(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, "123", u.ExternalID)

	_, err = uc.GetCurrentUser(context.Background(), 6)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
