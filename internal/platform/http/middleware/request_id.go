// Package middleware は全リクエスト共通の gin ミドルウェアです。
package middleware

import (
	"log/slog"

	"fiflow_backend/internal/platform/logging"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// HeaderRequestID はリクエストIDのヘッダー名です。
const HeaderRequestID = "X-Request-ID"

// maxRequestIDLen を超えるクライアント指定のIDは採用しません。
const maxRequestIDLen = 128

// RequestID はリクエストIDを採番（またはクライアント指定を採用）してレスポンスに返し、
// そのIDを持つロガーをリクエストの context に載せます。
func RequestID(base *slog.Logger) gin.HandlerFunc {
	if base == nil {
		base = slog.Default()
	}
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" || len(id) > maxRequestIDLen {
			id = uuid.NewString()
		}
		c.Header(HeaderRequestID, id)
		c.Set(HeaderRequestID, id)

		l := base.With("request_id", id)
		c.Request = c.Request.WithContext(logging.WithLogger(c.Request.Context(), l))
		c.Next()
	}
}
