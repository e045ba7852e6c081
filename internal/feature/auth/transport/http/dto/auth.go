// Package dto はauthフィーチャーのリクエスト/レスポンスDTOです。
package dto

// MobileLoginRequest はモバイルアプリからのログイン要求です。
// accessToken は Kakao SDK で取得したトークンで、サーバー側でプロフィールを検証します。
type MobileLoginRequest struct {
	KakaoID     string `json:"kakaoId"`
	AccessToken string `json:"accessToken"`
	// Nickname and Email are accepted for compatibility; the verified profile wins.
	Nickname string `json:"nickname,omitempty"`
	Email    string `json:"email,omitempty"`
}

// UserResponse はクライアントに返すユーザー情報です。
type UserResponse struct {
	KakaoID  string  `json:"kakaoId"`
	Nickname string  `json:"nickname"`
	Email    *string `json:"email"`
}

// LoginResponse はログイン成功時のレスポンスです。
type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// MeResponse は GET /auth/me のレスポンスです。
type MeResponse struct {
	User UserResponse `json:"user"`
}
