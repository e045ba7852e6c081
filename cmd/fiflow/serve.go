package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"fiflow_backend/internal/app/di"
	"fiflow_backend/internal/app/router"

	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

var serveCMD = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start the HTTP API server. When CRAWL_SCHEDULE is set, the stock and
index crawls also run in-process on that cron schedule during market hours.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := bootstrap(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		if di.InMemoryDatabase(a.cfg) {
			slog.Warn("SQLite is in-memory: crawler processes started by /crawler/trigger cannot see this database; set SQLITE_PATH to share it")
		}

		c := a.container
		r := router.NewRouter(router.Options{
			CORSOrigin: a.cfg.CORSOrigin,
			Logger:     a.logger,
			Verifier:   c.Verifier,
		}, router.Handlers{
			Health:     c.HealthHandler,
			Auth:       c.AuthHandler,
			Watchlist:  c.WatchlistHandler,
			MarketData: c.MarketDataHandler,
			Crawler:    c.CrawlerHandler,
		})

		if a.cfg.Crawler.Schedule != "" {
			s, err := newCrawlScheduler(a, a.cfg.Crawler.Schedule)
			if err != nil {
				return err
			}
			// DB を閉じる前に停止し、実行中のクロールの終了を待つ
			stopScheduler := startBackground(ctx, s.Start)
			defer stopScheduler()
		}

		srv := &http.Server{
			Addr:              ":" + a.cfg.HTTPPort,
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		}
		errCh := make(chan error, 1)
		go func() {
			slog.Info("starting server", "addr", srv.Addr, "env", a.cfg.AppEnv)
			errCh <- srv.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		case <-ctx.Done():
		}

		slog.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}
