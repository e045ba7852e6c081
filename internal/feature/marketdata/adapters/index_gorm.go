package adapters

import (
	"context"
	"errors"
	"time"

	"fiflow_backend/internal/feature/marketdata/domain/entity"
	"fiflow_backend/internal/feature/marketdata/usecase"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type indexGorm struct {
	db *gorm.DB
}

var _ usecase.IndexRepository = (*indexGorm)(nil)

func NewIndexRepository(db *gorm.DB) *indexGorm {
	return &indexGorm{db: db}
}

type IndexModel struct {
	ID         uint            `gorm:"primaryKey"`
	Name       string          `gorm:"size:20;not null;uniqueIndex:index_name_date,priority:1"`
	Date       string          `gorm:"column:trade_date;size:10;not null;uniqueIndex:index_name_date,priority:2;index"`
	Value      decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Change     decimal.Decimal `gorm:"column:change_amount;type:numeric(12,2);not null"`
	ChangeRate decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (IndexModel) TableName() string {
	return "index_snapshots"
}

func (m *IndexModel) toEntity() entity.IndexSnapshot {
	return entity.IndexSnapshot{
		Name:       m.Name,
		Date:       m.Date,
		Value:      m.Value,
		Change:     m.Change,
		ChangeRate: m.ChangeRate,
		UpdatedAt:  m.UpdatedAt,
	}
}

func (r *indexGorm) Upsert(ctx context.Context, s *entity.IndexSnapshot) error {
	m := IndexModel{
		Name:       s.Name,
		Date:       s.Date,
		Value:      s.Value,
		Change:     s.Change,
		ChangeRate: s.ChangeRate,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}, {Name: "trade_date"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "change_amount", "change_rate", "updated_at"}),
	}).Create(&m).Error
}

func (r *indexGorm) Find(ctx context.Context, name, date string) (*entity.IndexSnapshot, error) {
	var m IndexModel
	err := r.db.WithContext(ctx).Where("name = ? AND trade_date = ?", name, date).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrIndexNotFound
		}
		return nil, err
	}
	e := m.toEntity()
	return &e, nil
}

func (r *indexGorm) ListByDate(ctx context.Context, date string) ([]entity.IndexSnapshot, error) {
	var rows []IndexModel
	if err := r.db.WithContext(ctx).Where("trade_date = ?", date).Order("name").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]entity.IndexSnapshot, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toEntity())
	}
	return out, nil
}
