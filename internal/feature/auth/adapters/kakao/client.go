// Package kakao は Kakao OAuth の認可コード交換とユーザー情報取得を行うクライアントです。
package kakao

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"fiflow_backend/internal/feature/auth/usecase"
	"fiflow_backend/internal/shared/apperr"

	"github.com/guregu/null/v6"
)

const (
	tokenPath   = "/oauth/token"
	profilePath = "/v2/user/me"

	// maxBodyBytes はエラーログに残すレスポンス本文の上限です。
	maxBodyBytes = 512
)

// Config は Kakao アプリの設定です。
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	AuthBaseURL  string // https://kauth.kakao.com
	APIBaseURL   string // https://kapi.kakao.com
}

// Client は usecase.IdentityProvider の Kakao 実装です。
type Client struct {
	cfg  Config
	http *http.Client
}

var _ usecase.IdentityProvider = (*Client)(nil)

// NewClient は Client を生成します。httpClient にはタイムアウト付きのクライアントを渡してください。
func NewClient(cfg Config, httpClient *http.Client) *Client {
	cfg.AuthBaseURL = strings.TrimRight(cfg.AuthBaseURL, "/")
	cfg.APIBaseURL = strings.TrimRight(cfg.APIBaseURL, "/")
	return &Client{cfg: cfg, http: httpClient}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type profileResponse struct {
	ID         json.Number `json:"id"`
	Properties struct {
		Nickname string `json:"nickname"`
	} `json:"properties"`
	KakaoAccount struct {
		Email string `json:"email"`
	} `json:"kakao_account"`
}

// ExchangeCode は認可コードをアクセストークンに交換し、そのままプロフィールを取得します。
func (c *Client) ExchangeCode(ctx context.Context, code string) (*usecase.Profile, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("client_id", c.cfg.ClientID)
	if c.cfg.ClientSecret != "" {
		form.Set("client_secret", c.cfg.ClientSecret)
	}
	form.Set("redirect_uri", c.cfg.RedirectURI)
	form.Set("code", code)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.AuthBaseURL+tokenPath, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build kakao token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded;charset=utf-8")

	var tok tokenResponse
	if err := c.do(req, &tok); err != nil {
		return nil, apperr.Upstream("kakao token exchange failed", err)
	}
	if tok.AccessToken == "" {
		return nil, apperr.Upstream("kakao token exchange failed", errors.New("empty access token"))
	}
	return c.FetchProfile(ctx, tok.AccessToken)
}

// FetchProfile はアクセストークンでユーザー情報を取得します。
// トークンが拒否された場合は認証エラー、それ以外の失敗は上流エラーになります。
func (c *Client) FetchProfile(ctx context.Context, accessToken string) (*usecase.Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.APIBaseURL+profilePath, nil)
	if err != nil {
		return nil, fmt.Errorf("build kakao profile request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	var p profileResponse
	if err := c.do(req, &p); err != nil {
		var se *statusError
		if errors.As(err, &se) && se.code == http.StatusUnauthorized {
			return nil, apperr.Wrap(apperr.KindAuth, "invalid kakao access token", err)
		}
		return nil, apperr.Upstream("kakao profile request failed", err)
	}

	id := p.ID.String()
	if _, err := strconv.ParseInt(id, 10, 64); err != nil || id == "0" {
		return nil, apperr.Upstream("kakao profile request failed", fmt.Errorf("invalid user id %q", id))
	}
	profile := &usecase.Profile{ExternalID: id, Nickname: p.Properties.Nickname}
	if p.KakaoAccount.Email != "" {
		profile.Email = null.StringFrom(p.KakaoAccount.Email)
	}
	return profile, nil
}

type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("kakao responded %d: %s", e.code, e.body)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		return &statusError{code: resp.StatusCode, body: string(b)}
	}
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("decode kakao response: %w", err)
	}
	return nil
}
