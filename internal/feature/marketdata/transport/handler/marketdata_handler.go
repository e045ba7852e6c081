// Package handler はmarketdataフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"fiflow_backend/internal/api"
	"fiflow_backend/internal/feature/marketdata/transport/http/dto"
	"fiflow_backend/internal/feature/marketdata/usecase"
	jwtmw "fiflow_backend/internal/platform/jwt"
	"fiflow_backend/internal/shared/apperr"

	"github.com/gin-gonic/gin"
)

// ProjectorUsecase はハンドラーが利用する読み出し操作です。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type ProjectorUsecase interface {
	ProjectUserStocks(ctx context.Context, userID uint, asOfDate string) ([]usecase.StockView, error)
	ProjectSymbol(ctx context.Context, symbol, date string) (usecase.SymbolView, error)
	ProjectIndices(ctx context.Context, date string) ([]usecase.IndexView, error)
}

// MarketDataHandler は市場データのHTTPリクエストを処理します。
type MarketDataHandler struct {
	uc  ProjectorUsecase
	now func() time.Time
}

// NewMarketDataHandler は MarketDataHandler を生成します。
func NewMarketDataHandler(uc ProjectorUsecase) *MarketDataHandler {
	return &MarketDataHandler{uc: uc, now: time.Now}
}

// ListUserStocks はログインユーザーのウォッチリストに当日のスナップショットを付けて返します。
//
// GET /stocks/marketdata?date=2025-08-05
func (h *MarketDataHandler) ListUserStocks(c *gin.Context) {
	userID, ok := jwtmw.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "unauthorized"})
		return
	}
	date, err := api.DateQuery(c, h.now())
	if err != nil {
		api.WriteError(c, err)
		return
	}

	views, err := h.uc.ProjectUserStocks(c.Request.Context(), userID, date)
	if err != nil {
		api.WriteError(c, err)
		return
	}

	out := make([]dto.StockMarketDataResponse, 0, len(views))
	for _, v := range views {
		r := dto.StockMarketDataResponse{Symbol: v.Symbol, Name: v.Name, UserID: v.UserID}
		if v.MarketData != nil {
			md := toMarketDataResponse(*v.MarketData)
			r.MarketData = &md
		}
		out = append(out, r)
	}
	c.JSON(http.StatusOK, out)
}

// GetForeign は銘柄の外国人純買い越しを返します。
//
// GET /stock/:symbol/foreign?date=2025-08-05
func (h *MarketDataHandler) GetForeign(c *gin.Context) {
	symbol := strings.TrimSpace(c.Param("symbol"))
	date, err := api.DateQuery(c, h.now())
	if err != nil {
		api.WriteError(c, err)
		return
	}

	v, err := h.uc.ProjectSymbol(c.Request.Context(), symbol, date)
	if err != nil {
		if errors.Is(err, usecase.ErrSnapshotNotFound) {
			api.WriteNotFound(c, err, symbol)
			return
		}
		api.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ForeignResponse{
		Symbol:             v.Symbol,
		StockName:          v.StockName,
		MarketDataResponse: toMarketDataResponse(v.MarketDataView),
	})
}

// ListIndices は追跡対象の指数を返します。
//
// GET /indices?date=2025-08-05
func (h *MarketDataHandler) ListIndices(c *gin.Context) {
	date, err := api.DateQuery(c, h.now())
	if err != nil {
		api.WriteError(c, err)
		return
	}

	views, err := h.uc.ProjectIndices(c.Request.Context(), date)
	if err != nil {
		api.WriteError(c, apperr.Persistence("list indices", err))
		return
	}

	out := make([]dto.IndexResponse, 0, len(views))
	for _, v := range views {
		out = append(out, dto.IndexResponse{
			Name:       v.Name,
			Value:      v.Value,
			Change:     v.Change,
			ChangeRate: v.ChangeRate,
			IsUp:       v.IsUp,
		})
	}
	c.JSON(http.StatusOK, out)
}

func toMarketDataResponse(v usecase.MarketDataView) dto.MarketDataResponse {
	nb := make([]dto.NetBuyResponse, 0, len(v.ForeignNetBuy))
	for _, n := range v.ForeignNetBuy {
		nb = append(nb, dto.NetBuyResponse{Date: n.Date, NetBuy: n.NetBuy})
	}
	return dto.MarketDataResponse{
		Price:           v.Price,
		Change:          v.Change,
		ChangeRate:      v.ChangeRate,
		Date:            v.Date,
		ForeignerNetBuy: nb,
	}
}
