package di

import (
	"fmt"
	"time"

	authadapters "fiflow_backend/internal/feature/auth/adapters"
	"fiflow_backend/internal/feature/auth/adapters/kakao"
	authhandler "fiflow_backend/internal/feature/auth/transport/handler"
	authusecase "fiflow_backend/internal/feature/auth/usecase"
	"fiflow_backend/internal/feature/crawler/adapters/naver"
	"fiflow_backend/internal/feature/crawler/adapters/process"
	crawlerhandler "fiflow_backend/internal/feature/crawler/transport/handler"
	crawlerusecase "fiflow_backend/internal/feature/crawler/usecase"
	mdadapters "fiflow_backend/internal/feature/marketdata/adapters"
	mdhandler "fiflow_backend/internal/feature/marketdata/transport/handler"
	mdusecase "fiflow_backend/internal/feature/marketdata/usecase"
	wladapters "fiflow_backend/internal/feature/watchlist/adapters"
	wlhandler "fiflow_backend/internal/feature/watchlist/transport/handler"
	wlusecase "fiflow_backend/internal/feature/watchlist/usecase"
	"fiflow_backend/internal/platform/cache"
	"fiflow_backend/internal/platform/config"
	infrahttp "fiflow_backend/internal/platform/http"
	healthhandler "fiflow_backend/internal/platform/http/handler"
	jwtmw "fiflow_backend/internal/platform/jwt"
	"fiflow_backend/internal/shared/ratelimiter"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Container holds the assembled usecases and handlers.
type Container struct {
	Reconciler   *mdusecase.Reconciler
	Watchlist    *wlusecase.Manager
	StockCrawler *crawlerusecase.StockCrawler
	IndexCrawler *crawlerusecase.IndexCrawler
	Status       *crawlerusecase.StatusTracker

	Verifier jwtmw.Verifier

	AuthHandler       *authhandler.AuthHandler
	WatchlistHandler  *wlhandler.WatchlistHandler
	MarketDataHandler *mdhandler.MarketDataHandler
	CrawlerHandler    *crawlerhandler.CrawlerHandler
	HealthHandler     *healthhandler.HealthHandler
}

// NewNaverClient creates a Naver Finance scraper paced by NAVER_REQUESTS_PER_MINUTE.
func NewNaverClient(cfg *config.Config) *naver.Client {
	httpClient := infrahttp.NewHTTPClient(cfg.UpstreamTimeout,
		infrahttp.WithUserAgent(naver.UserAgent),
		infrahttp.WithMaxConnsPerHost(4),
	)
	limiter := ratelimiter.NewRateLimiter(cfg.Naver.RequestsPerMinute, time.Minute)
	return naver.NewClient(naver.Config{
		BaseURL:        cfg.Naver.BaseURL,
		PollingBaseURL: cfg.Naver.PollingBaseURL,
	}, httpClient, limiter)
}

// NewKakaoClient creates the Kakao identity provider.
func NewKakaoClient(cfg *config.Config) *kakao.Client {
	return kakao.NewClient(kakao.Config{
		ClientID:     cfg.Kakao.ClientID,
		ClientSecret: cfg.Kakao.ClientSecret,
		RedirectURI:  cfg.Kakao.RedirectURI,
		AuthBaseURL:  cfg.Kakao.AuthBaseURL,
		APIBaseURL:   cfg.Kakao.APIBaseURL,
	}, infrahttp.NewHTTPClient(cfg.UpstreamTimeout))
}

// Build wires repositories, usecases and handlers. rdb may be nil.
func Build(cfg *config.Config, gdb *gorm.DB, rdb *redis.Client) (*Container, error) {
	// Repository
	userRepo := authadapters.NewUserRepository(gdb)
	watchRepo := wladapters.NewWatchlistRepository(gdb)
	indexRepo := mdadapters.NewIndexRepository(gdb)
	snapshotRepo := cache.NewCachingSnapshotRepository(rdb, cfg.CacheTTL, mdadapters.NewSnapshotRepository(gdb), "snapshots")

	// External
	naverClient := NewNaverClient(cfg)
	runner, err := process.NewRunner(cfg.Crawler.Binary, cfg.Crawler.MaxRuntime)
	if err != nil {
		return nil, fmt.Errorf("crawler runner: %w", err)
	}
	tokens := jwtmw.NewGenerator(cfg.JWT.Secret, cfg.JWT.TTL)

	// Usecase
	status := crawlerusecase.NewStatusTracker()
	trigger := crawlerusecase.NewTriggerUsecase(runner, status)
	reconciler := mdusecase.NewReconciler(snapshotRepo, indexRepo)
	manager := wlusecase.NewManager(watchRepo, snapshotRepo,
		wlusecase.WithSnapshotCache(snapshotRepo),
		wlusecase.WithSymbolLookup(naverClient),
		wlusecase.WithCrawlTrigger(trigger),
	)
	projector := mdusecase.NewProjector(watchRepo, snapshotRepo, indexRepo, cfg.TrackedIndices)
	authUC := authusecase.NewAuthUsecase(userRepo, NewKakaoClient(cfg), tokens)

	return &Container{
		Reconciler:   reconciler,
		Watchlist:    manager,
		StockCrawler: crawlerusecase.NewStockCrawler(naverClient, manager, reconciler, status),
		IndexCrawler: crawlerusecase.NewIndexCrawler(naverClient, reconciler, status, cfg.TrackedIndices),
		Status:       status,
		Verifier:     tokens,

		AuthHandler:       authhandler.NewAuthHandler(authUC),
		WatchlistHandler:  wlhandler.NewWatchlistHandler(manager),
		MarketDataHandler: mdhandler.NewMarketDataHandler(projector),
		CrawlerHandler:    crawlerhandler.NewCrawlerHandler(trigger),
		HealthHandler:     healthhandler.NewHealthHandler(sqlDB(gdb)),
	}, nil
}

func sqlDB(gdb *gorm.DB) healthhandler.Pinger {
	s, err := gdb.DB()
	if err != nil {
		return nil
	}
	return s
}
