package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"fiflow_backend/internal/feature/watchlist/domain/entity"
	"fiflow_backend/internal/platform/logging"
	"fiflow_backend/internal/platform/marketclock"
)

// WatchlistRepository はウォッチリストの永続化を抽象化します。
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type WatchlistRepository interface {
	// Create fails with ErrDuplicateEntry when (UserID, Symbol) exists.
	Create(ctx context.Context, e *entity.Entry) error
	Find(ctx context.Context, userID uint, symbol string) (*entity.Entry, error)
	// Delete reports whether a row was removed.
	Delete(ctx context.Context, userID uint, symbol string) (bool, error)
	ListByUser(ctx context.Context, userID uint) ([]entity.Entry, error)
	CountWatchers(ctx context.Context, symbol string) (int64, error)
	ListSymbols(ctx context.Context) ([]string, error)
}

// Transactor is implemented by stores that can run the entry delete and the
// snapshot deletes as one all-or-nothing unit.
type Transactor interface {
	RemoveWithCascade(ctx context.Context, userID uint, symbol string) (RemoveResult, error)
}

// SnapshotStore is the per-row snapshot access used by the non-transactional cascade.
type SnapshotStore interface {
	ListDates(ctx context.Context, symbol string) ([]string, error)
	Delete(ctx context.Context, symbol, date string) error
}

// SnapshotCache is notified after a cascade so cached reads do not outlive the rows.
type SnapshotCache interface {
	InvalidateSymbol(ctx context.Context, symbol string) error
}

// SymbolLookup resolves a symbol to its display name. ok is false for unknown symbols.
type SymbolLookup interface {
	ResolveDisplayName(ctx context.Context, symbol string) (name string, ok bool, err error)
}

// CrawlTrigger starts an asynchronous crawl for symbols.
type CrawlTrigger interface {
	Trigger(ctx context.Context, symbols []string) error
}

// AddResult は addSymbol の結果です。
type AddResult struct {
	Created bool
	Entry   entity.Entry
}

// RemoveResult は removeSymbol の結果です。
type RemoveResult struct {
	Removed               bool
	CascadedSnapshotCount int64
}

// AddOutcome is the result of the full add flow (lookup, add, crawl trigger).
type AddOutcome struct {
	AddResult
	CrawlTriggered bool
	// TriggerErr is set when the crawl could not be started; the entry is kept.
	TriggerErr error
}

// Manager はウォッチリストの追加・削除を管理します。
type Manager struct {
	repo      WatchlistRepository
	snapshots SnapshotStore
	cache     SnapshotCache
	lookup    SymbolLookup
	trigger   CrawlTrigger
	now       func() time.Time
}

// Option configures optional collaborators of Manager.
type Option func(*Manager)

func WithSnapshotCache(c SnapshotCache) Option { return func(m *Manager) { m.cache = c } }

func WithSymbolLookup(l SymbolLookup) Option { return func(m *Manager) { m.lookup = l } }

func WithCrawlTrigger(t CrawlTrigger) Option { return func(m *Manager) { m.trigger = t } }

func WithClock(now func() time.Time) Option { return func(m *Manager) { m.now = now } }

// NewManager は Manager を生成します。
func NewManager(repo WatchlistRepository, snapshots SnapshotStore, opts ...Option) *Manager {
	m := &Manager{repo: repo, snapshots: snapshots, now: time.Now}
	for _, o := range opts {
		o(m)
	}
	return m
}

// AddSymbol は (user, symbol) を登録します。既に存在する場合は Created=false を返し、
// 保存済みの表示名は変更しません（最初の書き込みが優先）。
func (m *Manager) AddSymbol(ctx context.Context, userID uint, symbol, resolvedName string) (AddResult, error) {
	if userID == 0 {
		return AddResult{}, ErrUserRequired
	}
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return AddResult{}, ErrSymbolRequired
	}

	e := &entity.Entry{UserID: userID, Symbol: symbol, Name: strings.TrimSpace(resolvedName)}
	err := m.repo.Create(ctx, e)
	if err == nil {
		return AddResult{Created: true, Entry: *e}, nil
	}
	if !errors.Is(err, ErrDuplicateEntry) {
		return AddResult{}, err
	}

	existing, err := m.repo.Find(ctx, userID, symbol)
	if err != nil {
		return AddResult{}, err
	}
	return AddResult{Created: false, Entry: *existing}, nil
}

// Add resolves the display name, adds the entry and, when the market is open,
// starts a crawl for a newly created entry.
func (m *Manager) Add(ctx context.Context, userID uint, symbol string) (AddOutcome, error) {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return AddOutcome{}, ErrSymbolRequired
	}

	name := ""
	if m.lookup != nil {
		n, ok, err := m.lookup.ResolveDisplayName(ctx, symbol)
		if err != nil {
			return AddOutcome{}, err
		}
		if !ok {
			return AddOutcome{}, ErrUnknownSymbol
		}
		name = n
	}

	res, err := m.AddSymbol(ctx, userID, symbol, name)
	if err != nil {
		return AddOutcome{}, err
	}
	out := AddOutcome{AddResult: res}
	if !res.Created || m.trigger == nil {
		return out, nil
	}

	log := logging.FromContext(ctx)
	if !marketclock.IsMarketOpen(m.now()) {
		log.Info("market closed, crawler trigger skipped", "symbol", symbol)
		return out, nil
	}
	if err := m.trigger.Trigger(ctx, []string{symbol}); err != nil {
		// 登録は取り消さない
		log.Warn("crawler trigger failed", "symbol", symbol, "error", err)
		out.TriggerErr = err
		return out, nil
	}
	out.CrawlTriggered = true
	return out, nil
}

// List returns the user's entries in insertion order.
func (m *Manager) List(ctx context.Context, userID uint) ([]entity.Entry, error) {
	if userID == 0 {
		return nil, ErrUserRequired
	}
	return m.repo.ListByUser(ctx, userID)
}

// WatchedSymbols returns every symbol watched by at least one user.
func (m *Manager) WatchedSymbols(ctx context.Context) ([]string, error) {
	return m.repo.ListSymbols(ctx)
}

// RemoveSymbol はエントリを削除し、その銘柄を監視するユーザーがいなくなった場合は
// 銘柄のスナップショットも削除します。スナップショットは全ユーザー共有のデータです。
func (m *Manager) RemoveSymbol(ctx context.Context, userID uint, symbol string) (RemoveResult, error) {
	if userID == 0 {
		return RemoveResult{}, ErrUserRequired
	}
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return RemoveResult{}, ErrSymbolRequired
	}

	var (
		res RemoveResult
		err error
	)
	if tx, ok := m.repo.(Transactor); ok {
		res, err = tx.RemoveWithCascade(ctx, userID, symbol)
	} else {
		res, err = m.removeSequential(ctx, userID, symbol)
	}
	if err != nil {
		return RemoveResult{}, err
	}

	if res.CascadedSnapshotCount > 0 && m.cache != nil {
		if err := m.cache.InvalidateSymbol(ctx, symbol); err != nil {
			logging.FromContext(ctx).Warn("snapshot cache invalidation failed", "symbol", symbol, "error", err)
		}
	}
	return res, nil
}

// removeSequential はトランザクションを持たないストア向けの連鎖削除です。
// エントリ削除をコミット点とし、その後スナップショットを1件ずつ削除します。
// 途中で失敗した場合はスナップショットが残り得ますが、次回同じ銘柄の連鎖削除で回収されます。
func (m *Manager) removeSequential(ctx context.Context, userID uint, symbol string) (RemoveResult, error) {
	removed, err := m.repo.Delete(ctx, userID, symbol)
	if err != nil {
		return RemoveResult{}, err
	}
	if !removed {
		return RemoveResult{}, nil
	}
	res := RemoveResult{Removed: true}

	watchers, err := m.repo.CountWatchers(ctx, symbol)
	if err != nil {
		// エントリは既に削除済み。孤立したスナップショットは次回回収する
		logging.FromContext(ctx).Warn("cascade skipped: watcher count failed", "symbol", symbol, "error", err)
		return res, nil
	}
	if watchers > 0 {
		return res, nil
	}

	dates, err := m.snapshots.ListDates(ctx, symbol)
	if err != nil {
		logging.FromContext(ctx).Warn("cascade skipped: snapshot listing failed", "symbol", symbol, "error", err)
		return res, nil
	}
	for _, d := range dates {
		if err := m.snapshots.Delete(ctx, symbol, d); err != nil {
			logging.FromContext(ctx).Error("snapshot delete failed, continuing", "symbol", symbol, "date", d, "error", err)
			continue
		}
		res.CascadedSnapshotCount++
	}
	return res, nil
}
