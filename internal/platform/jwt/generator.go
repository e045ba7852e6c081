// Package jwtmw はセッショントークンの発行・検証と gin の認証ミドルウェアを提供します。
package jwtmw

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned by Verify for any malformed, tampered or expired token.
var ErrInvalidToken = errors.New("invalid token")

// Claims はセッショントークンから取り出した利用者情報です。
type Claims struct {
	UserID     uint
	ExternalID string // Kakao の会員番号
	Nickname   string
	ExpiresAt  time.Time
}

// Generator defines the interface for JWT token generation.
type Generator interface {
	// GenerateToken creates a signed JWT token for the given user.
	GenerateToken(userID uint, externalID, nickname string) (string, error)
}

// Verifier validates a token and returns its claims.
type Verifier interface {
	Verify(token string) (*Claims, error)
}

// generator implements Generator and Verifier with HS256.
type generator struct {
	secret     []byte
	expiration time.Duration
	now        func() time.Time
}

// NewGenerator creates a new JWT generator with the provided secret and expiration duration.
func NewGenerator(secret string, expiration time.Duration) *generator {
	return &generator{
		secret:     []byte(secret),
		expiration: expiration,
		now:        time.Now,
	}
}

// GenerateToken creates a signed JWT token with standard claims.
func (g *generator) GenerateToken(userID uint, externalID, nickname string) (string, error) {
	now := g.now()
	claims := jwt.MapClaims{
		"sub":      userID,
		"kid":      externalID,
		"nickname": nickname,
		"exp":      now.Add(g.expiration).Unix(),
		"iat":      now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(g.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

// Verify parses tokenStr, checks the HMAC signature and expiry, and extracts the claims.
func (g *generator) Verify(tokenStr string) (*Claims, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		// HMAC 以外のアルゴリズム（none を含む）は拒否
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return g.secret, nil
	}, jwt.WithExpirationRequired(), jwt.WithTimeFunc(g.now))
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	sub, ok := mc["sub"].(float64) // JWT numbers are decoded as float64
	if !ok || sub <= 0 {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	c := &Claims{UserID: uint(sub)}
	c.ExternalID, _ = mc["kid"].(string)
	c.Nickname, _ = mc["nickname"].(string)
	if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
		c.ExpiresAt = exp.Time
	}
	return c, nil
}
