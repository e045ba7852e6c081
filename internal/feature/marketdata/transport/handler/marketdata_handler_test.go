package handler_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fiflow_backend/internal/feature/marketdata/transport/handler"
	"fiflow_backend/internal/feature/marketdata/usecase"
	jwtmw "fiflow_backend/internal/platform/jwt"
	"fiflow_backend/internal/platform/marketclock"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

// mockProjector はProjectorUsecaseインターフェースのモック実装です。
type mockProjector struct {
	ProjectUserStocksFunc func(ctx context.Context, userID uint, asOfDate string) ([]usecase.StockView, error)
	ProjectSymbolFunc     func(ctx context.Context, symbol, date string) (usecase.SymbolView, error)
	ProjectIndicesFunc    func(ctx context.Context, date string) ([]usecase.IndexView, error)
}

func (m *mockProjector) ProjectUserStocks(ctx context.Context, userID uint, asOfDate string) ([]usecase.StockView, error) {
	return m.ProjectUserStocksFunc(ctx, userID, asOfDate)
}

func (m *mockProjector) ProjectSymbol(ctx context.Context, symbol, date string) (usecase.SymbolView, error) {
	return m.ProjectSymbolFunc(ctx, symbol, date)
}

func (m *mockProjector) ProjectIndices(ctx context.Context, date string) ([]usecase.IndexView, error) {
	return m.ProjectIndicesFunc(ctx, date)
}

func setupRouter(uc handler.ProjectorUsecase, userID uint) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := handler.NewMarketDataHandler(uc)
	withUser := func(c *gin.Context) {
		if userID != 0 {
			c.Set(jwtmw.ContextUserID, userID)
		}
		c.Next()
	}
	r.GET("/stocks/marketdata", withUser, h.ListUserStocks)
	r.GET("/stock/:symbol/foreign", h.GetForeign)
	r.GET("/indices", h.ListIndices)
	return r
}

func TestMarketDataHandler_ListUserStocks(t *testing.T) {
	tests := []struct {
		name           string
		url            string
		userID         uint
		mock           func(ctx context.Context, userID uint, asOfDate string) ([]usecase.StockView, error)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:   "success: snapshot present and absent",
			url:    "/stocks/marketdata?date=2025-08-05",
			userID: 7,
			mock: func(ctx context.Context, userID uint, asOfDate string) ([]usecase.StockView, error) {
				assert.Equal(t, uint(7), userID)
				assert.Equal(t, "2025-08-05", asOfDate)
				return []usecase.StockView{
					{Symbol: "005930", Name: "삼성전자", UserID: 7, MarketData: &usecase.MarketDataView{
						Price: 70000, Change: -500, ChangeRate: "-0.71", Date: "2025-08-05",
						ForeignNetBuy: []usecase.NetBuyView{{Date: "2025-08-04", NetBuy: 1200}},
					}},
					{Symbol: "000660", Name: "SK하이닉스", UserID: 7},
				}, nil
			},
			expectedStatus: http.StatusOK,
			expectedBody: `[
				{"symbol":"005930","name":"삼성전자","userId":7,"marketData":{"price":70000,"change":-500,"changeRate":"-0.71","date":"2025-08-05","foreignerNetBuy":[{"date":"2025-08-04","net_buy":1200}]}},
				{"symbol":"000660","name":"SK하이닉스","userId":7,"marketData":null}
			]`,
		},
		{
			name:   "default date is today in Seoul",
			url:    "/stocks/marketdata",
			userID: 7,
			mock: func(ctx context.Context, userID uint, asOfDate string) ([]usecase.StockView, error) {
				assert.Equal(t, marketclock.Today(time.Now()), asOfDate)
				return nil, nil
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `[]`,
		},
		{
			name:           "error: malformed date",
			url:            "/stocks/marketdata?date=08-05",
			userID:         7,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"date must be YYYY-MM-DD"}`,
		},
		{
			name:           "error: no user in context",
			url:            "/stocks/marketdata",
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `{"error":"unauthorized"}`,
		},
		{
			name:   "error: store failure",
			url:    "/stocks/marketdata?date=2025-08-05",
			userID: 7,
			mock: func(ctx context.Context, userID uint, asOfDate string) ([]usecase.StockView, error) {
				return nil, errors.New("db down")
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"error":"internal server error"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &mockProjector{ProjectUserStocksFunc: tt.mock}
			if m.ProjectUserStocksFunc == nil {
				m.ProjectUserStocksFunc = func(ctx context.Context, userID uint, asOfDate string) ([]usecase.StockView, error) {
					t.Fatal("usecase must not be called")
					return nil, nil
				}
			}
			router := setupRouter(m, tt.userID)

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.url, nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.JSONEq(t, tt.expectedBody, w.Body.String())
		})
	}
}

func TestMarketDataHandler_GetForeign(t *testing.T) {
	m := &mockProjector{
		ProjectSymbolFunc: func(ctx context.Context, symbol, date string) (usecase.SymbolView, error) {
			if symbol != "005930" {
				return usecase.SymbolView{}, usecase.ErrSnapshotNotFound
			}
			return usecase.SymbolView{
				Symbol: "005930", StockName: "삼성전자",
				MarketDataView: usecase.MarketDataView{
					Price: 70000, Change: -500, ChangeRate: "-0.71", Date: date,
					ForeignNetBuy: []usecase.NetBuyView{},
				},
			}, nil
		},
	}
	router := setupRouter(m, 0)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/stock/005930/foreign?date=2025-08-05", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"symbol":"005930","stockName":"삼성전자","price":70000,"change":-500,"changeRate":"-0.71","date":"2025-08-05","foreignerNetBuy":[]}`, w.Body.String())

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/stock/999999/foreign?date=2025-08-05", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"market data not found","key":"999999"}`, w.Body.String())
}

func TestMarketDataHandler_ListIndices(t *testing.T) {
	m := &mockProjector{
		ProjectIndicesFunc: func(ctx context.Context, date string) ([]usecase.IndexView, error) {
			assert.Equal(t, "2025-08-05", date)
			return []usecase.IndexView{
				{Name: "KOSPI", Value: "3198.00", Change: "51.10", ChangeRate: "1.62", IsUp: true},
			}, nil
		},
	}
	router := setupRouter(m, 0)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/indices?date=2025-08-05", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"name":"KOSPI","value":"3198.00","change":"51.10","changeRate":"1.62","isUp":true}]`, w.Body.String())
}
