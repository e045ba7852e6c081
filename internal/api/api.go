// Package api は各フィーチャーで共有するレスポンスDTOとエラー応答のヘルパーを提供します。
package api

import (
	"net/http"

	"fiflow_backend/internal/platform/logging"
	"fiflow_backend/internal/shared/apperr"

	"github.com/gin-gonic/gin"
)

// ErrorResponse はエラー時の共通レスポンスです。
type ErrorResponse struct {
	Error string `json:"error"`
}

// NotFoundResponse echoes the requested key back to the client.
type NotFoundResponse struct {
	Error string `json:"error"`
	Key   string `json:"key"`
}

// MessageResponse は成功時のメッセージのみのレスポンスです。
type MessageResponse struct {
	Message string `json:"message"`
}

// WriteError maps err to a status and a client-safe message.
// Server-side failures are logged with their cause.
func WriteError(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		logging.FromContext(c.Request.Context()).Error("request failed",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", status,
			"error", err,
		)
	}
	c.JSON(status, ErrorResponse{Error: apperr.PublicMessage(err)})
}

// WriteNotFound writes a 404 with key echoed.
func WriteNotFound(c *gin.Context, err error, key string) {
	c.JSON(http.StatusNotFound, NotFoundResponse{Error: apperr.PublicMessage(err), Key: key})
}
