package main

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"

	"fiflow_backend/internal/feature/crawler/usecase"
	"fiflow_backend/internal/platform/config"

	"github.com/spf13/cobra"
)

var (
	crawlSymbols  string
	crawlSchedule string
	crawlIndices  string
)

var crawlCMD = &cobra.Command{
	Use:   "crawl",
	Short: "Crawl stock snapshots from Naver Finance",
	Long: `Crawl price, change and foreign net-buy for the given symbols, or for every
watched symbol when --symbols is omitted. With --schedule the stock and index
crawls run on a cron schedule (Asia/Seoul) during market hours until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := bootstrap(ctx)
		if err != nil {
			return err
		}
		defer a.close()
		if err := requireSharedStore(a.cfg); err != nil {
			return err
		}

		if crawlSchedule != "" {
			s, err := newCrawlScheduler(a, crawlSchedule)
			if err != nil {
				return err
			}
			s.Start(ctx)
			return nil
		}

		report, err := a.container.StockCrawler.Run(ctx, config.SplitList(crawlSymbols))
		if err != nil {
			return err
		}
		slog.Info("crawl done", "succeeded", len(report.Succeeded), "failed", len(report.Failed))
		return nil
	},
}

var crawlIndexCMD = &cobra.Command{
	Use:   "crawl-index",
	Short: "Crawl market indices (KOSPI, KOSDAQ, KPI200)",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := bootstrap(ctx)
		if err != nil {
			return err
		}
		defer a.close()
		if err := requireSharedStore(a.cfg); err != nil {
			return err
		}

		report, err := a.container.IndexCrawler.Run(ctx, config.SplitList(crawlIndices))
		if err != nil {
			return err
		}
		slog.Info("index crawl done", "succeeded", len(report.Succeeded), "failed", len(report.Failed))
		return nil
	},
}

func init() {
	crawlCMD.Flags().StringVar(&crawlSymbols, "symbols", "", "comma-separated symbols (default: every watched symbol)")
	crawlCMD.Flags().StringVar(&crawlSchedule, "schedule", "", `cron expression, e.g. "*/10 9-15 * * 1-5"`)
	crawlIndexCMD.Flags().StringVar(&crawlIndices, "indices", "", "comma-separated index names (default: TRACKED_INDICES)")
}

func newCrawlScheduler(a *app, spec string) (*usecase.Scheduler, error) {
	c := a.container
	return usecase.NewScheduler(spec,
		usecase.Job{Name: "stock", Run: func(ctx context.Context) error {
			_, err := c.StockCrawler.Run(ctx, nil)
			return err
		}},
		usecase.Job{Name: "index", Run: func(ctx context.Context) error {
			_, err := c.IndexCrawler.Run(ctx, nil)
			return err
		}},
	)
}
