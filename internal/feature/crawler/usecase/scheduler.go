package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"fiflow_backend/internal/platform/marketclock"

	"github.com/robfig/cron/v3"
)

// Job はスケジュール実行されるクロール処理です。
type Job struct {
	Name string
	Run  func(ctx context.Context) error
}

// Scheduler は cron 式に従ってクロールを実行します。
// 各実行は取引時間内の場合のみ行われます。
type Scheduler struct {
	cron *cron.Cron
	jobs []Job
	now  func() time.Time

	// runCtx は Start の ctx です。停止時に実行中のジョブへキャンセルを伝えます。
	runCtx context.Context
}

// NewScheduler は Asia/Seoul のタイムゾーンで cron 式を解釈するスケジューラを生成します。
func NewScheduler(spec string, jobs ...Job) (*Scheduler, error) {
	s := &Scheduler{
		cron:   cron.New(cron.WithLocation(marketclock.Location())),
		jobs:   jobs,
		now:    time.Now,
		runCtx: context.Background(),
	}
	if _, err := s.cron.AddFunc(spec, func() { s.tick(s.runCtx) }); err != nil {
		return nil, fmt.Errorf("invalid crawl schedule %q: %w", spec, err)
	}
	return s, nil
}

// Start runs the schedule until ctx is done, then waits for a running tick to finish.
// Jobs receive ctx, so a crawl in flight is canceled on shutdown.
// Start must be called at most once.
func (s *Scheduler) Start(ctx context.Context) {
	s.runCtx = ctx
	s.cron.Start()
	slog.Info("crawl scheduler started", "jobs", len(s.jobs))
	<-ctx.Done()
	<-s.cron.Stop().Done()
	slog.Info("crawl scheduler stopped")
}

// tick は取引時間外なら何もしません。
func (s *Scheduler) tick(ctx context.Context) {
	if !marketclock.IsMarketOpen(s.now()) {
		slog.Debug("market closed, skipping scheduled crawl")
		return
	}
	for _, j := range s.jobs {
		if ctx.Err() != nil {
			return
		}
		if err := j.Run(ctx); err != nil {
			slog.Error("scheduled crawl failed", "job", j.Name, "error", err)
		}
	}
}
