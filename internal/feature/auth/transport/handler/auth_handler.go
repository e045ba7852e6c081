// Package handler はauthフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"net/http"
	"strings"

	"fiflow_backend/internal/api"
	"fiflow_backend/internal/feature/auth/domain/entity"
	"fiflow_backend/internal/feature/auth/transport/http/dto"
	"fiflow_backend/internal/feature/auth/usecase"
	jwtmw "fiflow_backend/internal/platform/jwt"
	"fiflow_backend/internal/platform/logging"

	"github.com/gin-gonic/gin"
)

const msgKakaoIDRequired = "카카오 ID가 필요합니다."

// AuthUsecase は認証操作のユースケースを定義します。
// Goの慣例に従い、インターフェースはプロバイダー（usecase）ではなくコンシューマー（handler）が定義します。
type AuthUsecase interface {
	// LoginWithCode は Kakao の認可コードでログインし、JWTを発行します。
	LoginWithCode(ctx context.Context, code string) (*usecase.LoginResult, error)
	// LoginWithClientProfile はモバイルクライアントのアクセストークンを検証してログインします。
	LoginWithClientProfile(ctx context.Context, in usecase.ClientLogin) (*usecase.LoginResult, error)
	// GetCurrentUser はログイン中のユーザーを返します。
	GetCurrentUser(ctx context.Context, userID uint) (*entity.User, error)
}

// AuthHandler は認証操作のHTTPリクエストを処理します。
type AuthHandler struct {
	auth AuthUsecase
}

// NewAuthHandler はAuthHandlerの新しいインスタンスを生成します。
func NewAuthHandler(auth AuthUsecase) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// KakaoCallback は Web の認可コードフローのコールバックです。
//
// GET /auth/kakao/callback?code=...
func (h *AuthHandler) KakaoCallback(c *gin.Context) {
	code := c.Query("code")
	if strings.TrimSpace(code) == "" {
		api.WriteError(c, usecase.ErrCodeRequired)
		return
	}
	res, err := h.auth.LoginWithCode(c.Request.Context(), code)
	if err != nil {
		logging.FromContext(c.Request.Context()).Warn("kakao login failed", "error", err, "remote_addr", c.ClientIP())
		api.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, loginResponse(res))
}

// MobileLogin はモバイルアプリからのログインです。
//
// POST /auth/kakao/callback {"kakaoId":"...","accessToken":"..."}
func (h *AuthHandler) MobileLogin(c *gin.Context) {
	var req dto.MobileLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.KakaoID) == "" {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: msgKakaoIDRequired})
		return
	}
	res, err := h.auth.LoginWithClientProfile(c.Request.Context(), usecase.ClientLogin{
		KakaoID:     req.KakaoID,
		AccessToken: req.AccessToken,
	})
	if err != nil {
		logging.FromContext(c.Request.Context()).Warn("mobile login failed", "error", err, "remote_addr", c.ClientIP())
		api.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, loginResponse(res))
}

// Me はログイン中のユーザー情報を返します。
//
// GET /auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := jwtmw.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "unauthorized"})
		return
	}
	u, err := h.auth.GetCurrentUser(c.Request.Context(), userID)
	if err != nil {
		api.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MeResponse{User: userResponse(u)})
}

func loginResponse(res *usecase.LoginResult) dto.LoginResponse {
	return dto.LoginResponse{Token: res.Token, User: userResponse(&res.User)}
}

func userResponse(u *entity.User) dto.UserResponse {
	return dto.UserResponse{
		KakaoID:  u.ExternalID,
		Nickname: u.Nickname,
		Email:    u.Email.Ptr(),
	}
}
