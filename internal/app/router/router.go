// Package router は gin エンジンを組み立て、公開ルートと JWT 必須ルートを登録します。
package router

import (
	"log/slog"
	"time"

	authhandler "fiflow_backend/internal/feature/auth/transport/handler"
	crawlerhandler "fiflow_backend/internal/feature/crawler/transport/handler"
	mdhandler "fiflow_backend/internal/feature/marketdata/transport/handler"
	wlhandler "fiflow_backend/internal/feature/watchlist/transport/handler"
	healthhandler "fiflow_backend/internal/platform/http/handler"
	"fiflow_backend/internal/platform/http/middleware"
	jwtmw "fiflow_backend/internal/platform/jwt"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Handlers は登録するハンドラー一式です。
type Handlers struct {
	Health     *healthhandler.HealthHandler
	Auth       *authhandler.AuthHandler
	Watchlist  *wlhandler.WatchlistHandler
	MarketData *mdhandler.MarketDataHandler
	Crawler    *crawlerhandler.CrawlerHandler
}

// Options はルーター全体の設定です。
type Options struct {
	// CORSOrigin が空の場合 CORS ミドルウェアは登録しません（モバイルアプリのみの場合）。
	CORSOrigin string
	Logger     *slog.Logger
	Verifier   jwtmw.Verifier
}

func NewRouter(opts Options, h Handlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery(), middleware.RequestID(opts.Logger))

	if opts.CORSOrigin != "" {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     []string{opts.CORSOrigin},
			AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.HeaderRequestID},
			ExposeHeaders:    []string{middleware.HeaderRequestID},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	// 認証不要
	// 導通確認用
	r.GET("/healthz", h.Health.Health)
	r.HEAD("/healthz", h.Health.Health)
	// Kakao ログイン（Web: 認可コード / モバイル: アクセストークン）
	r.GET("/auth/kakao/callback", h.Auth.KakaoCallback)
	r.POST("/auth/kakao/callback", h.Auth.MobileLogin)
	r.GET("/stock/:symbol/foreign", h.MarketData.GetForeign)
	r.GET("/indices", h.MarketData.ListIndices)
	r.GET("/crawler/status", h.Crawler.Status)

	// 認証必須のルート
	auth := r.Group("/")
	auth.Use(jwtmw.AuthRequired(opts.Verifier))
	{
		auth.GET("/auth/me", h.Auth.Me)
		auth.GET("/stocks", h.Watchlist.List)
		auth.GET("/stocks/marketdata", h.MarketData.ListUserStocks)
		auth.POST("/stock/add", h.Watchlist.Add)
		auth.DELETE("/stock/:symbol", h.Watchlist.Remove)
		auth.POST("/crawler/trigger", h.Crawler.Trigger)
	}

	return r
}
