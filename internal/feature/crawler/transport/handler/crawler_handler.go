// Package handler はcrawlerフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"fiflow_backend/internal/api"
	"fiflow_backend/internal/feature/crawler/domain/entity"
	"fiflow_backend/internal/feature/crawler/transport/http/dto"
	"fiflow_backend/internal/shared/apperr"

	"github.com/gin-gonic/gin"
)

const msgTriggered = "크롤러 실행 요청됨"

// CrawlerUsecase はクローラーの起動と状態取得です。
type CrawlerUsecase interface {
	Trigger(ctx context.Context, symbols []string) error
	Status() []entity.RunStatus
}

// CrawlerHandler はクローラー操作のHTTPリクエストを処理します。
type CrawlerHandler struct {
	uc CrawlerUsecase
}

// NewCrawlerHandler は新しい CrawlerHandler を作成します。
func NewCrawlerHandler(uc CrawlerUsecase) *CrawlerHandler {
	return &CrawlerHandler{uc: uc}
}

// Trigger はクローラーを起動します。本文は省略可能です。
//
// POST /crawler/trigger {"symbols":["005930"]}
func (h *CrawlerHandler) Trigger(c *gin.Context) {
	var req dto.TriggerRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		api.WriteError(c, apperr.Validation("invalid request"))
		return
	}
	symbols := make([]string, 0, len(req.Symbols))
	for _, s := range req.Symbols {
		if s = strings.TrimSpace(s); s != "" {
			symbols = append(symbols, s)
		}
	}

	if err := h.uc.Trigger(c.Request.Context(), symbols); err != nil {
		api.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, api.MessageResponse{Message: msgTriggered})
}

// Status は実行状態を返します。
//
// GET /crawler/status
func (h *CrawlerHandler) Status(c *gin.Context) {
	states := h.uc.Status()
	out := make([]dto.StatusResponse, 0, len(states))
	for _, s := range states {
		out = append(out, dto.StatusResponse{
			Kind:           string(s.Kind),
			Running:        s.Running,
			ActiveRuns:     s.ActiveRuns,
			LastStartedAt:  s.LastStartedAt,
			LastFinishedAt: s.LastFinishedAt,
			LastError:      s.LastError,
		})
	}
	c.JSON(http.StatusOK, out)
}
