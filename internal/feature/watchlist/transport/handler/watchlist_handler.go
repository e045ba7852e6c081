// Package handler はwatchlistフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"net/http"
	"strings"

	"fiflow_backend/internal/api"
	"fiflow_backend/internal/feature/watchlist/domain/entity"
	"fiflow_backend/internal/feature/watchlist/transport/http/dto"
	"fiflow_backend/internal/feature/watchlist/usecase"
	jwtmw "fiflow_backend/internal/platform/jwt"

	"github.com/gin-gonic/gin"
)

const (
	msgAdded         = "주식 정보가 성공적으로 추가되었습니다."
	msgAlreadyExists = "이미 존재하는 종목입니다."
	msgRemoved       = "주식과 관련된 모든 데이터가 성공적으로 삭제되었습니다."
)

// WatchlistUsecase はハンドラーが利用するウォッチリスト操作です。
// Following Go convention: interfaces are defined by the consumer (handler), not the provider (usecase).
type WatchlistUsecase interface {
	List(ctx context.Context, userID uint) ([]entity.Entry, error)
	Add(ctx context.Context, userID uint, symbol string) (usecase.AddOutcome, error)
	RemoveSymbol(ctx context.Context, userID uint, symbol string) (usecase.RemoveResult, error)
}

// WatchlistHandler はウォッチリストのHTTPリクエストを処理します。
type WatchlistHandler struct {
	uc WatchlistUsecase
}

// NewWatchlistHandler は新しい WatchlistHandler を作成します。
func NewWatchlistHandler(uc WatchlistUsecase) *WatchlistHandler {
	return &WatchlistHandler{uc: uc}
}

// List はログインユーザーのウォッチリストを返します。
//
// GET /stocks
func (h *WatchlistHandler) List(c *gin.Context) {
	userID, ok := jwtmw.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "unauthorized"})
		return
	}
	entries, err := h.uc.List(c.Request.Context(), userID)
	if err != nil {
		api.WriteError(c, err)
		return
	}
	out := make([]dto.StockItem, 0, len(entries))
	for _, e := range entries {
		out = append(out, dto.StockItem{Symbol: e.Symbol, Name: e.Name, UserID: e.UserID})
	}
	c.JSON(http.StatusOK, out)
}

// Add は銘柄名を解決してウォッチリストに追加します。既に登録済みの場合も成功（200）です。
//
// POST /stock/add {"symbol":"005930"}
func (h *WatchlistHandler) Add(c *gin.Context) {
	userID, ok := jwtmw.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "unauthorized"})
		return
	}
	var req dto.AddStockRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Symbol) == "" {
		api.WriteError(c, usecase.ErrSymbolRequired)
		return
	}

	out, err := h.uc.Add(c.Request.Context(), userID, req.Symbol)
	if err != nil {
		api.WriteError(c, err)
		return
	}

	resp := dto.AddStockResponse{
		StockName: out.Entry.Name,
		Symbol:    out.Entry.Symbol,
		Created:   out.Created,
	}
	if !out.Created {
		resp.Message = msgAlreadyExists
		c.JSON(http.StatusOK, resp)
		return
	}
	resp.Message = msgAdded
	switch {
	case out.CrawlTriggered:
		resp.Crawl = "started"
	case out.TriggerErr != nil:
		resp.Crawl = "failed"
	default:
		resp.Crawl = "skipped"
	}
	c.JSON(http.StatusCreated, resp)
}

// Remove はエントリを削除します。存在しない場合は要求された銘柄コードを添えて404を返します。
//
// DELETE /stock/:symbol
func (h *WatchlistHandler) Remove(c *gin.Context) {
	userID, ok := jwtmw.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "unauthorized"})
		return
	}
	symbol := strings.TrimSpace(c.Param("symbol"))

	res, err := h.uc.RemoveSymbol(c.Request.Context(), userID, symbol)
	if err != nil {
		api.WriteError(c, err)
		return
	}
	if !res.Removed {
		api.WriteNotFound(c, usecase.ErrEntryNotFound, symbol)
		return
	}
	c.JSON(http.StatusOK, dto.RemoveStockResponse{
		Message:               msgRemoved,
		Symbol:                symbol,
		CascadedSnapshotCount: res.CascadedSnapshotCount,
	})
}
