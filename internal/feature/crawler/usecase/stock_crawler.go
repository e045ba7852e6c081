package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"fiflow_backend/internal/feature/crawler/domain/entity"
	mdentity "fiflow_backend/internal/feature/marketdata/domain/entity"
	mdusecase "fiflow_backend/internal/feature/marketdata/usecase"
	"fiflow_backend/internal/platform/logging"
	"fiflow_backend/internal/platform/marketclock"
)

// MarketSource は銘柄ページから現在値・銘柄名・外国人純買いを取得します。
type MarketSource interface {
	FetchQuote(ctx context.Context, symbol string) (*entity.Quote, error)
	ResolveDisplayName(ctx context.Context, symbol string) (name string, ok bool, err error)
	// FetchForeignNetBuy returns the trailing window, most recent first.
	FetchForeignNetBuy(ctx context.Context, symbol string) ([]mdentity.NetBuy, error)
}

// WatchedSymbols は全ユーザーのウォッチリストに含まれる銘柄一覧を返します。
type WatchedSymbols interface {
	WatchedSymbols(ctx context.Context) ([]string, error)
}

// SnapshotReconciler はクロール結果をストアに反映します。
type SnapshotReconciler interface {
	Reconcile(ctx context.Context, in mdusecase.IncomingSnapshot) (mdusecase.ReconcileResult, error)
}

// CrawlReport はクロール1回分の結果です。
type CrawlReport struct {
	Succeeded []string
	Failed    map[string]error
}

// StockCrawler は銘柄ごとにスナップショットを取得して Reconcile します。
type StockCrawler struct {
	source     MarketSource
	watched    WatchedSymbols
	reconciler SnapshotReconciler
	status     *StatusTracker
	now        func() time.Time
}

// NewStockCrawler は StockCrawler を生成します。status は nil でも構いません。
func NewStockCrawler(source MarketSource, watched WatchedSymbols, reconciler SnapshotReconciler, status *StatusTracker) *StockCrawler {
	return &StockCrawler{
		source:     source,
		watched:    watched,
		reconciler: reconciler,
		status:     status,
		now:        time.Now,
	}
}

// Run は symbols をクロールします。symbols が空の場合はウォッチ中の全銘柄が対象です。
// 1銘柄の失敗はログに残して次の銘柄へ進みます。
func (c *StockCrawler) Run(ctx context.Context, symbols []string) (CrawlReport, error) {
	report := CrawlReport{Failed: map[string]error{}}
	log := logging.FromContext(ctx)

	if len(symbols) == 0 {
		all, err := c.watched.WatchedSymbols(ctx)
		if err != nil {
			return report, fmt.Errorf("failed to list watched symbols: %w", err)
		}
		symbols = all
	}
	if len(symbols) == 0 {
		log.Info("no symbols to crawl")
		return report, nil
	}

	if c.status != nil {
		c.status.Start(entity.KindStock)
	}
	date := marketclock.Today(c.now())
	log.Info("stock crawl started", "symbols", len(symbols), "date", date)

	for _, symbol := range symbols {
		if err := ctx.Err(); err != nil {
			report.Failed[symbol] = err
			continue
		}
		symbol = strings.TrimSpace(symbol)
		if symbol == "" {
			continue
		}
		res, err := c.crawlOne(ctx, symbol, date)
		if err != nil {
			log.Error("failed to crawl symbol", "symbol", symbol, "error", err)
			report.Failed[symbol] = err
			continue
		}
		log.Info("snapshot reconciled", "symbol", symbol, "outcome", res.Outcome.String())
		report.Succeeded = append(report.Succeeded, symbol)
	}

	var runErr error
	if len(report.Failed) > 0 {
		runErr = fmt.Errorf("%d of %d symbols failed", len(report.Failed), len(symbols))
	}
	if c.status != nil {
		c.status.Finish(entity.KindStock, runErr)
	}
	log.Info("stock crawl finished", "succeeded", len(report.Succeeded), "failed", len(report.Failed))
	return report, ctx.Err()
}

func (c *StockCrawler) crawlOne(ctx context.Context, symbol, date string) (mdusecase.ReconcileResult, error) {
	quote, err := c.source.FetchQuote(ctx, symbol)
	if err != nil {
		return mdusecase.ReconcileResult{}, fmt.Errorf("fetch quote: %w", err)
	}

	name, ok, err := c.source.ResolveDisplayName(ctx, symbol)
	if err != nil {
		return mdusecase.ReconcileResult{}, fmt.Errorf("resolve display name: %w", err)
	}
	if !ok {
		return mdusecase.ReconcileResult{}, ErrUnknownSymbol
	}

	// 外国人純買いが取れなくても現在値は保存する（空スロットで埋める）
	window, err := c.source.FetchForeignNetBuy(ctx, symbol)
	if err != nil {
		logging.FromContext(ctx).Warn("foreign net-buy unavailable, storing empty window", "symbol", symbol, "error", err)
		window = nil
	}

	return c.reconciler.Reconcile(ctx, mdusecase.IncomingSnapshot{
		Symbol:        symbol,
		Date:          date,
		StockName:     name,
		Price:         quote.Price,
		Change:        quote.Change,
		ChangeRate:    quote.ChangeRate,
		ForeignNetBuy: window,
	})
}
