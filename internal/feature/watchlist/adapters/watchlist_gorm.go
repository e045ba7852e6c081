// Package adapters は watchlist の永続化を gorm で実装します。
package adapters

import (
	"context"
	"errors"
	"time"

	mdadapters "fiflow_backend/internal/feature/marketdata/adapters"
	"fiflow_backend/internal/feature/watchlist/domain/entity"
	"fiflow_backend/internal/feature/watchlist/usecase"
	"fiflow_backend/internal/platform/db"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type watchlistGorm struct {
	db *gorm.DB
}

var (
	_ usecase.WatchlistRepository = (*watchlistGorm)(nil)
	_ usecase.Transactor          = (*watchlistGorm)(nil)
)

func NewWatchlistRepository(db *gorm.DB) *watchlistGorm {
	return &watchlistGorm{db: db}
}

// WatchlistModel は watchlist_entries テーブルの行です。
type WatchlistModel struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"not null;uniqueIndex:watchlist_user_symbol,priority:1"`
	Symbol    string    `gorm:"size:20;not null;uniqueIndex:watchlist_user_symbol,priority:2;index"`
	Name      string    `gorm:"size:255;not null;default:''"`
	CreatedAt time.Time `gorm:"not null"`
}

func (WatchlistModel) TableName() string {
	return "watchlist_entries"
}

func (m *WatchlistModel) toEntity() entity.Entry {
	return entity.Entry{
		ID:        m.ID,
		UserID:    m.UserID,
		Symbol:    m.Symbol,
		Name:      m.Name,
		CreatedAt: m.CreatedAt,
	}
}

// Create は条件付き書き込みです。一意制約違反は ErrDuplicateEntry になり、リトライしません。
func (r *watchlistGorm) Create(ctx context.Context, e *entity.Entry) error {
	m := WatchlistModel{UserID: e.UserID, Symbol: e.Symbol, Name: e.Name}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		if db.IsUniqueViolation(err) {
			return usecase.ErrDuplicateEntry
		}
		return err
	}
	*e = m.toEntity()
	return nil
}

func (r *watchlistGorm) Find(ctx context.Context, userID uint, symbol string) (*entity.Entry, error) {
	var m WatchlistModel
	err := r.db.WithContext(ctx).Where("user_id = ? AND symbol = ?", userID, symbol).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrEntryNotFound
		}
		return nil, err
	}
	e := m.toEntity()
	return &e, nil
}

func (r *watchlistGorm) Delete(ctx context.Context, userID uint, symbol string) (bool, error) {
	res := r.db.WithContext(ctx).Where("user_id = ? AND symbol = ?", userID, symbol).Delete(&WatchlistModel{})
	return res.RowsAffected > 0, res.Error
}

func (r *watchlistGorm) ListByUser(ctx context.Context, userID uint) ([]entity.Entry, error) {
	var rows []WatchlistModel
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at, id").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]entity.Entry, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toEntity())
	}
	return out, nil
}

func (r *watchlistGorm) CountWatchers(ctx context.Context, symbol string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&WatchlistModel{}).Where("symbol = ?", symbol).Count(&n).Error
	return n, err
}

// ListSymbols returns every distinct watched symbol, sorted.
func (r *watchlistGorm) ListSymbols(ctx context.Context) ([]string, error) {
	var symbols []string
	err := r.db.WithContext(ctx).Model(&WatchlistModel{}).
		Distinct("symbol").
		Order("symbol").
		Pluck("symbol", &symbols).Error
	return symbols, err
}

// RemoveWithCascade はエントリ削除・監視者数の確認・スナップショット削除を1トランザクションで行います。
// postgres では削除より先に、その銘柄の監視者の行を id 順に FOR UPDATE でロックします。
// ロック順を固定しないと、同じ銘柄を同時に削除した2つのトランザクションがデッドロックします。
func (r *watchlistGorm) RemoveWithCascade(ctx context.Context, userID uint, symbol string) (usecase.RemoveResult, error) {
	var res usecase.RemoveResult
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var watchers []WatchlistModel
		q := tx.Select("id", "user_id").Where("symbol = ?", symbol).Order("id")
		if db.SupportsRowLocking(tx) {
			q = q.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		if err := q.Find(&watchers).Error; err != nil {
			return err
		}

		del := tx.Where("user_id = ? AND symbol = ?", userID, symbol).Delete(&WatchlistModel{})
		if del.Error != nil {
			return del.Error
		}
		if del.RowsAffected == 0 {
			return nil
		}
		res.Removed = true

		if remainingWatchers(watchers, userID) > 0 {
			return nil
		}

		snaps := tx.Where("symbol = ?", symbol).Delete(&mdadapters.SnapshotModel{})
		if snaps.Error != nil {
			return snaps.Error
		}
		res.CascadedSnapshotCount = snaps.RowsAffected
		return nil
	})
	if err != nil {
		return usecase.RemoveResult{}, err
	}
	return res, nil
}

// remainingWatchers は userID 以外の監視者数を返します。
func remainingWatchers(watchers []WatchlistModel, userID uint) int {
	n := 0
	for _, w := range watchers {
		if w.UserID != userID {
			n++
		}
	}
	return n
}
