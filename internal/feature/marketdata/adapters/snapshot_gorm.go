// Package adapters は marketdata の永続化を gorm で実装します。
package adapters

import (
	"context"
	"errors"
	"time"

	"fiflow_backend/internal/feature/marketdata/domain/entity"
	"fiflow_backend/internal/feature/marketdata/usecase"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type snapshotGorm struct {
	db *gorm.DB
}

var _ usecase.SnapshotRepository = (*snapshotGorm)(nil)

func NewSnapshotRepository(db *gorm.DB) *snapshotGorm {
	return &snapshotGorm{db: db}
}

// SnapshotModel は market_snapshots テーブルの行です。
// ネット買い越しの窓は 8 スロット固定の JSON 配列として保存します。
type SnapshotModel struct {
	ID            uint                               `gorm:"primaryKey"`
	Symbol        string                             `gorm:"size:20;not null;uniqueIndex:snapshot_symbol_date,priority:1"`
	Date          string                             `gorm:"column:trade_date;size:10;not null;uniqueIndex:snapshot_symbol_date,priority:2"`
	StockName     string                             `gorm:"size:255;not null;default:''"`
	Price         int64                              `gorm:"not null"`
	Change        int64                              `gorm:"column:change_amount;not null"`
	ChangeRate    decimal.Decimal                    `gorm:"type:numeric(8,2);not null"`
	ForeignNetBuy datatypes.JSONSlice[entity.NetBuy] `gorm:"not null"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (SnapshotModel) TableName() string {
	return "market_snapshots"
}

func toSnapshotModel(e *entity.MarketSnapshot) SnapshotModel {
	return SnapshotModel{
		Symbol:        e.Symbol,
		Date:          e.Date,
		StockName:     e.StockName,
		Price:         e.Price,
		Change:        e.Change,
		ChangeRate:    e.ChangeRate,
		ForeignNetBuy: datatypes.JSONSlice[entity.NetBuy](entity.PadWindow(e.ForeignNetBuy)),
	}
}

func (m *SnapshotModel) toEntity() *entity.MarketSnapshot {
	return &entity.MarketSnapshot{
		Symbol:        m.Symbol,
		StockName:     m.StockName,
		Date:          m.Date,
		Price:         m.Price,
		Change:        m.Change,
		ChangeRate:    m.ChangeRate,
		ForeignNetBuy: entity.PadWindow(m.ForeignNetBuy),
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

// Upsert は (symbol, trade_date) の行を1文で挿入または全カラム上書きします。
func (r *snapshotGorm) Upsert(ctx context.Context, s *entity.MarketSnapshot) error {
	m := toSnapshotModel(s)
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "symbol"}, {Name: "trade_date"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"stock_name", "price", "change_amount", "change_rate", "foreign_net_buy", "updated_at",
		}),
	}).Create(&m).Error
	if err != nil {
		return err
	}
	s.UpdatedAt = m.UpdatedAt
	return nil
}

func (r *snapshotGorm) Find(ctx context.Context, symbol, date string) (*entity.MarketSnapshot, error) {
	var m SnapshotModel
	err := r.db.WithContext(ctx).
		Where("symbol = ? AND trade_date = ?", symbol, date).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrSnapshotNotFound
		}
		return nil, err
	}
	return m.toEntity(), nil
}

// DeleteBySymbol は銘柄のすべてのスナップショットを削除し、削除件数を返します。
func (r *snapshotGorm) DeleteBySymbol(ctx context.Context, symbol string) (int64, error) {
	res := r.db.WithContext(ctx).Where("symbol = ?", symbol).Delete(&SnapshotModel{})
	return res.RowsAffected, res.Error
}

// ListDates returns the stored dates of symbol, newest first.
func (r *snapshotGorm) ListDates(ctx context.Context, symbol string) ([]string, error) {
	var dates []string
	err := r.db.WithContext(ctx).Model(&SnapshotModel{}).
		Where("symbol = ?", symbol).
		Order("trade_date DESC").
		Pluck("trade_date", &dates).Error
	return dates, err
}

// Delete removes one (symbol, date) row. Deleting a missing row is not an error.
func (r *snapshotGorm) Delete(ctx context.Context, symbol, date string) error {
	return r.db.WithContext(ctx).
		Where("symbol = ? AND trade_date = ?", symbol, date).
		Delete(&SnapshotModel{}).Error
}
