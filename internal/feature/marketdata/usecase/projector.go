package usecase

import (
	"context"
	"errors"
	"sort"

	"fiflow_backend/internal/feature/marketdata/domain/entity"
	watchlistentity "fiflow_backend/internal/feature/watchlist/domain/entity"
)

// WatchlistReader は Projector が必要とするウォッチリストの読み取り操作です。
type WatchlistReader interface {
	ListByUser(ctx context.Context, userID uint) ([]watchlistentity.Entry, error)
}

// NetBuyView は描画用の (date, netBuy) ペアです。
type NetBuyView struct {
	Date   string
	NetBuy int64
}

// MarketDataView は1日分のスナップショットの描画用表現です。
type MarketDataView struct {
	Price         int64
	Change        int64
	ChangeRate    string // always two decimal places, e.g. "-0.71"
	Date          string
	ForeignNetBuy []NetBuyView
}

// StockView is one watchlist entry with the snapshot for the requested date, if any.
type StockView struct {
	Symbol     string
	Name       string
	UserID     uint
	MarketData *MarketDataView // nil when no snapshot exists for the date
}

// SymbolView is the per-symbol foreign net-buy view.
type SymbolView struct {
	Symbol    string
	StockName string
	MarketDataView
}

// IndexView is one index value rendered for clients.
type IndexView struct {
	Name       string
	Value      string
	Change     string
	ChangeRate string
	IsUp       bool
}

// Projector はストアの時系列をクライアント向けのビューに整形します。
type Projector struct {
	watchlist WatchlistReader
	snapshots SnapshotRepository
	indices   IndexRepository
	tracked   []string
}

// NewProjector は Projector を生成します。tracked は /indices に返す指数名とその順序です。
func NewProjector(watchlist WatchlistReader, snapshots SnapshotRepository, indices IndexRepository, tracked []string) *Projector {
	return &Projector{watchlist: watchlist, snapshots: snapshots, indices: indices, tracked: tracked}
}

// ProjectUserStocks はユーザーのウォッチリスト順に asOfDate のスナップショットを付与して返します。
// スナップショットがない銘柄は MarketData が nil になります（エラーではありません）。
func (p *Projector) ProjectUserStocks(ctx context.Context, userID uint, asOfDate string) ([]StockView, error) {
	entries, err := p.watchlist.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	views := make([]StockView, 0, len(entries))
	for _, e := range entries {
		v := StockView{Symbol: e.Symbol, Name: e.Name, UserID: e.UserID}
		snap, err := p.snapshots.Find(ctx, e.Symbol, asOfDate)
		switch {
		case err == nil:
			md := toMarketDataView(snap)
			v.MarketData = &md
		case errors.Is(err, ErrSnapshotNotFound):
		default:
			return nil, err
		}
		views = append(views, v)
	}
	return views, nil
}

// ProjectSymbol returns the snapshot of one symbol on date, or ErrSnapshotNotFound.
func (p *Projector) ProjectSymbol(ctx context.Context, symbol, date string) (SymbolView, error) {
	snap, err := p.snapshots.Find(ctx, symbol, date)
	if err != nil {
		return SymbolView{}, err
	}
	return SymbolView{
		Symbol:         snap.Symbol,
		StockName:      snap.StockName,
		MarketDataView: toMarketDataView(snap),
	}, nil
}

// ProjectIndices は date の指数を追跡対象の順序で返します。スナップショットのない指数は含みません。
// 追跡対象が未設定の場合は保存されているすべての指数を名前順で返します。
func (p *Projector) ProjectIndices(ctx context.Context, date string) ([]IndexView, error) {
	rows, err := p.indices.ListByDate(ctx, date)
	if err != nil {
		return nil, err
	}

	byName := make(map[string]entity.IndexSnapshot, len(rows))
	for _, r := range rows {
		byName[r.Name] = r
	}

	names := p.tracked
	if len(names) == 0 {
		names = make([]string, 0, len(byName))
		for n := range byName {
			names = append(names, n)
		}
		sort.Strings(names)
	}

	views := make([]IndexView, 0, len(names))
	for _, n := range names {
		idx, ok := byName[n]
		if !ok {
			continue
		}
		views = append(views, IndexView{
			Name:       idx.Name,
			Value:      idx.Value.StringFixed(2),
			Change:     idx.Change.StringFixed(2),
			ChangeRate: idx.ChangeRate.StringFixed(2),
			IsUp:       idx.IsUp(),
		})
	}
	return views, nil
}

func toMarketDataView(s *entity.MarketSnapshot) MarketDataView {
	days := s.TradingDays()
	nb := make([]NetBuyView, 0, len(days))
	for _, d := range days {
		nb = append(nb, NetBuyView{Date: d.Date, NetBuy: d.Volume})
	}
	return MarketDataView{
		Price:         s.Price,
		Change:        s.Change,
		ChangeRate:    s.ChangeRate.StringFixed(2),
		Date:          s.Date,
		ForeignNetBuy: nb,
	}
}
