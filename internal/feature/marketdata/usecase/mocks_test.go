package usecase

import (
	"context"
	"errors"

	"fiflow_backend/internal/feature/marketdata/domain/entity"
	watchlistentity "fiflow_backend/internal/feature/watchlist/domain/entity"
)

// mockSnapshotRepository is a function-field mock of SnapshotRepository.
type mockSnapshotRepository struct {
	FindFunc    func(ctx context.Context, symbol, date string) (*entity.MarketSnapshot, error)
	UpsertFunc  func(ctx context.Context, s *entity.MarketSnapshot) error
	UpsertCalls int
}

func (m *mockSnapshotRepository) Find(ctx context.Context, symbol, date string) (*entity.MarketSnapshot, error) {
	if m.FindFunc != nil {
		return m.FindFunc(ctx, symbol, date)
	}
	return nil, errors.New("FindFunc is not implemented")
}

func (m *mockSnapshotRepository) Upsert(ctx context.Context, s *entity.MarketSnapshot) error {
	m.UpsertCalls++
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, s)
	}
	return errors.New("UpsertFunc is not implemented")
}

// memorySnapshots is a map-backed SnapshotRepository keyed by symbol|date.
type memorySnapshots struct {
	rows map[string]entity.MarketSnapshot
}

func newMemorySnapshots() *memorySnapshots {
	return &memorySnapshots{rows: map[string]entity.MarketSnapshot{}}
}

func (m *memorySnapshots) Find(_ context.Context, symbol, date string) (*entity.MarketSnapshot, error) {
	s, ok := m.rows[symbol+"|"+date]
	if !ok {
		return nil, ErrSnapshotNotFound
	}
	return &s, nil
}

func (m *memorySnapshots) Upsert(_ context.Context, s *entity.MarketSnapshot) error {
	m.rows[s.Symbol+"|"+s.Date] = *s
	return nil
}

// mockIndexRepository is a function-field mock of IndexRepository.
type mockIndexRepository struct {
	FindFunc       func(ctx context.Context, name, date string) (*entity.IndexSnapshot, error)
	UpsertFunc     func(ctx context.Context, s *entity.IndexSnapshot) error
	ListByDateFunc func(ctx context.Context, date string) ([]entity.IndexSnapshot, error)
}

func (m *mockIndexRepository) Find(ctx context.Context, name, date string) (*entity.IndexSnapshot, error) {
	if m.FindFunc != nil {
		return m.FindFunc(ctx, name, date)
	}
	return nil, ErrIndexNotFound
}

func (m *mockIndexRepository) Upsert(ctx context.Context, s *entity.IndexSnapshot) error {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, s)
	}
	return errors.New("UpsertFunc is not implemented")
}

func (m *mockIndexRepository) ListByDate(ctx context.Context, date string) ([]entity.IndexSnapshot, error) {
	if m.ListByDateFunc != nil {
		return m.ListByDateFunc(ctx, date)
	}
	return nil, errors.New("ListByDateFunc is not implemented")
}

// mockWatchlistReader is a function-field mock of WatchlistReader.
type mockWatchlistReader struct {
	ListByUserFunc func(ctx context.Context, userID uint) ([]watchlistentity.Entry, error)
}

func (m *mockWatchlistReader) ListByUser(ctx context.Context, userID uint) ([]watchlistentity.Entry, error) {
	if m.ListByUserFunc != nil {
		return m.ListByUserFunc(ctx, userID)
	}
	return nil, errors.New("ListByUserFunc is not implemented")
}
