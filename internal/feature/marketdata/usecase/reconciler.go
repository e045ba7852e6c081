package usecase

import (
	"context"
	"errors"
	"strings"

	"fiflow_backend/internal/feature/marketdata/domain/entity"
	"fiflow_backend/internal/platform/marketclock"

	"github.com/shopspring/decimal"
)

// changeRatePlaces は騰落率の小数点以下の桁数です。
const changeRatePlaces = 2

// SnapshotRepository はスナップショットの永続化を抽象化します。
// インターフェースは利用者（usecase）側で定義します。
type SnapshotRepository interface {
	// Find returns ErrSnapshotNotFound when no row exists for (symbol, date).
	Find(ctx context.Context, symbol, date string) (*entity.MarketSnapshot, error)
	// Upsert writes s atomically, replacing every column of an existing (symbol, date) row.
	Upsert(ctx context.Context, s *entity.MarketSnapshot) error
}

// IndexRepository は指数スナップショットの永続化を抽象化します。
type IndexRepository interface {
	Find(ctx context.Context, name, date string) (*entity.IndexSnapshot, error)
	Upsert(ctx context.Context, s *entity.IndexSnapshot) error
	ListByDate(ctx context.Context, date string) ([]entity.IndexSnapshot, error)
}

// IncomingSnapshot is a crawler result with numerics already normalized.
type IncomingSnapshot struct {
	Symbol     string
	Date       string
	StockName  string
	Price      int64
	Change     int64
	ChangeRate decimal.Decimal
	// ForeignNetBuy is most-recent-first, at most TrailingWindowSize entries.
	ForeignNetBuy []entity.NetBuy
}

// IncomingIndex is one polled index value.
type IncomingIndex struct {
	Name       string
	Date       string
	Value      decimal.Decimal
	Change     decimal.Decimal
	ChangeRate decimal.Decimal
}

// Outcome は Reconcile の結果種別です。
type Outcome int

const (
	OutcomeInserted Outcome = iota + 1
	OutcomeReplaced
)

func (o Outcome) String() string {
	switch o {
	case OutcomeInserted:
		return "inserted"
	case OutcomeReplaced:
		return "replaced"
	default:
		return "unknown"
	}
}

// ReconcileResult reports what a reconcile did to storage.
type ReconcileResult struct {
	Outcome  Outcome
	Snapshot entity.MarketSnapshot
}

// IndexReconcileResult reports what ReconcileIndex did to storage.
type IndexReconcileResult struct {
	Outcome Outcome
	Index   entity.IndexSnapshot
}

// Reconciler はクローラの出力を (symbol, date) 単位の置き換えとして保存します。
// 内部リトライは行わず、永続化エラーはそのまま呼び出し元に返します。
type Reconciler struct {
	snapshots SnapshotRepository
	indices   IndexRepository
}

// NewReconciler は Reconciler を生成します。
func NewReconciler(snapshots SnapshotRepository, indices IndexRepository) *Reconciler {
	return &Reconciler{snapshots: snapshots, indices: indices}
}

// Reconcile は (symbol, date) の既存スナップショットを確認し、1回の書き込みで挿入または全置換します。
// 検証エラーの場合はストレージに一切触れません。
func (r *Reconciler) Reconcile(ctx context.Context, in IncomingSnapshot) (ReconcileResult, error) {
	snap, err := buildSnapshot(in)
	if err != nil {
		return ReconcileResult{}, err
	}

	outcome := OutcomeInserted
	switch _, err := r.snapshots.Find(ctx, snap.Symbol, snap.Date); {
	case err == nil:
		outcome = OutcomeReplaced
	case errors.Is(err, ErrSnapshotNotFound):
	default:
		return ReconcileResult{}, err
	}

	if err := r.snapshots.Upsert(ctx, snap); err != nil {
		return ReconcileResult{}, err
	}
	return ReconcileResult{Outcome: outcome, Snapshot: *snap}, nil
}

// ReconcileIndex applies the same replace-by-key rule to an index value.
func (r *Reconciler) ReconcileIndex(ctx context.Context, in IncomingIndex) (IndexReconcileResult, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return IndexReconcileResult{}, ErrIndexNameRequired
	}
	if !marketclock.ValidDate(in.Date) {
		return IndexReconcileResult{}, ErrInvalidDate
	}
	idx := &entity.IndexSnapshot{
		Name:       name,
		Date:       in.Date,
		Value:      in.Value.Round(changeRatePlaces),
		Change:     in.Change.Round(changeRatePlaces),
		ChangeRate: in.ChangeRate.Round(changeRatePlaces),
	}

	outcome := OutcomeInserted
	switch _, err := r.indices.Find(ctx, idx.Name, idx.Date); {
	case err == nil:
		outcome = OutcomeReplaced
	case errors.Is(err, ErrIndexNotFound):
	default:
		return IndexReconcileResult{}, err
	}

	if err := r.indices.Upsert(ctx, idx); err != nil {
		return IndexReconcileResult{}, err
	}
	return IndexReconcileResult{Outcome: outcome, Index: *idx}, nil
}

func buildSnapshot(in IncomingSnapshot) (*entity.MarketSnapshot, error) {
	symbol := strings.TrimSpace(in.Symbol)
	if symbol == "" {
		return nil, ErrSymbolRequired
	}
	if !marketclock.ValidDate(in.Date) {
		return nil, ErrInvalidDate
	}
	if len(in.ForeignNetBuy) > entity.TrailingWindowSize {
		return nil, ErrWindowTooLong
	}
	window := make([]entity.NetBuy, len(in.ForeignNetBuy))
	for i, n := range in.ForeignNetBuy {
		if n.Date == "" {
			// 日付のないスロットは「データなし」
			continue
		}
		if !marketclock.ValidDate(n.Date) {
			return nil, ErrInvalidWindowDate
		}
		window[i] = n
	}

	return &entity.MarketSnapshot{
		Symbol:        symbol,
		StockName:     strings.TrimSpace(in.StockName),
		Date:          in.Date,
		Price:         in.Price,
		Change:        in.Change,
		ChangeRate:    in.ChangeRate.Round(changeRatePlaces),
		ForeignNetBuy: entity.PadWindow(window),
	}, nil
}
