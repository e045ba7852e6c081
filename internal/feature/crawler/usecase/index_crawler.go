package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"fiflow_backend/internal/feature/crawler/domain/entity"
	mdusecase "fiflow_backend/internal/feature/marketdata/usecase"
	"fiflow_backend/internal/platform/logging"
	"fiflow_backend/internal/platform/marketclock"
)

// indexAttempts は1回のクロールで指数APIを呼び出す最大回数です。
const indexAttempts = 3

// IndexSource は指数のリアルタイム値を取得します。
type IndexSource interface {
	FetchIndices(ctx context.Context, names []string) ([]entity.IndexQuote, error)
}

// IndexReconciler は指数スナップショットをストアに反映します。
type IndexReconciler interface {
	ReconcileIndex(ctx context.Context, in mdusecase.IncomingIndex) (mdusecase.IndexReconcileResult, error)
}

// IndexCrawler は指数をクロールします。
type IndexCrawler struct {
	source     IndexSource
	reconciler IndexReconciler
	status     *StatusTracker
	defaults   []string
	retryWait  time.Duration
	now        func() time.Time
}

// NewIndexCrawler は IndexCrawler を生成します。defaults は names が空のときの対象です。
func NewIndexCrawler(source IndexSource, reconciler IndexReconciler, status *StatusTracker, defaults []string) *IndexCrawler {
	return &IndexCrawler{
		source:     source,
		reconciler: reconciler,
		status:     status,
		defaults:   defaults,
		retryWait:  time.Second,
		now:        time.Now,
	}
}

// Run は names の指数を取得して保存します。取得は最大3回まで試行します。
func (c *IndexCrawler) Run(ctx context.Context, names []string) (CrawlReport, error) {
	report := CrawlReport{Failed: map[string]error{}}
	log := logging.FromContext(ctx)

	if len(names) == 0 {
		names = c.defaults
	}
	upper := make([]string, 0, len(names))
	for _, n := range names {
		if n = strings.ToUpper(strings.TrimSpace(n)); n != "" {
			upper = append(upper, n)
		}
	}
	if len(upper) == 0 {
		return report, nil
	}

	if c.status != nil {
		c.status.Start(entity.KindIndex)
	}
	quotes, err := c.fetchWithRetry(ctx, upper)
	if err != nil {
		for _, n := range upper {
			report.Failed[n] = err
		}
		if c.status != nil {
			c.status.Finish(entity.KindIndex, err)
		}
		return report, err
	}

	byName := make(map[string]entity.IndexQuote, len(quotes))
	for _, q := range quotes {
		byName[q.Name] = q
	}
	date := marketclock.Today(c.now())
	for _, n := range upper {
		q, ok := byName[n]
		if !ok {
			log.Warn("index missing from polling response", "name", n)
			report.Failed[n] = ErrNoIndexData
			continue
		}
		if _, err := c.reconciler.ReconcileIndex(ctx, mdusecase.IncomingIndex{
			Name:       q.Name,
			Date:       date,
			Value:      q.Value,
			Change:     q.Change,
			ChangeRate: q.ChangeRate,
		}); err != nil {
			log.Error("failed to store index", "name", n, "error", err)
			report.Failed[n] = err
			continue
		}
		report.Succeeded = append(report.Succeeded, n)
	}

	var runErr error
	if len(report.Failed) > 0 {
		runErr = fmt.Errorf("%d of %d indices failed", len(report.Failed), len(upper))
	}
	if c.status != nil {
		c.status.Finish(entity.KindIndex, runErr)
	}
	log.Info("index crawl finished", "succeeded", len(report.Succeeded), "failed", len(report.Failed))
	return report, nil
}

func (c *IndexCrawler) fetchWithRetry(ctx context.Context, names []string) ([]entity.IndexQuote, error) {
	var lastErr error
	for attempt := 1; attempt <= indexAttempts; attempt++ {
		quotes, err := c.source.FetchIndices(ctx, names)
		if err == nil {
			return quotes, nil
		}
		lastErr = err
		logging.FromContext(ctx).Warn("index fetch failed", "attempt", attempt, "max_attempts", indexAttempts, "error", err)
		if attempt == indexAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.retryWait):
		}
	}
	return nil, fmt.Errorf("index fetch failed after %d attempts: %w", indexAttempts, lastErr)
}
