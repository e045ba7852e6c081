// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"fiflow_backend/internal/feature/marketdata/domain/entity"
	mdusecase "fiflow_backend/internal/feature/marketdata/usecase"
	wlusecase "fiflow_backend/internal/feature/watchlist/usecase"
)

// SnapshotRepository is the store decorated by CachingSnapshotRepository.
type SnapshotRepository interface {
	Find(ctx context.Context, symbol, date string) (*entity.MarketSnapshot, error)
	Upsert(ctx context.Context, s *entity.MarketSnapshot) error
	DeleteBySymbol(ctx context.Context, symbol string) (int64, error)
	ListDates(ctx context.Context, symbol string) ([]string, error)
	Delete(ctx context.Context, symbol, date string) error
}

// CachingSnapshotRepository decorates a SnapshotRepository with Redis read-through caching.
// Writes go to the inner repository first; cache entries are invalidated afterwards (best effort).
type CachingSnapshotRepository struct {
	inner     SnapshotRepository
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

var (
	_ mdusecase.SnapshotRepository = (*CachingSnapshotRepository)(nil)
	_ wlusecase.SnapshotStore      = (*CachingSnapshotRepository)(nil)
	_ wlusecase.SnapshotCache      = (*CachingSnapshotRepository)(nil)
)

// NewCachingSnapshotRepository decorates inner with Redis caching.
// If ttl is 0, it defaults to 5 minutes. If namespace is empty, it uses "snapshots".
// A nil rdb makes every method a pass-through.
func NewCachingSnapshotRepository(rdb *redis.Client, ttl time.Duration, inner SnapshotRepository, namespace string) *CachingSnapshotRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if namespace == "" {
		namespace = "snapshots"
	}
	return &CachingSnapshotRepository{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

// Find retrieves a snapshot, checking cache first then falling back to the database.
// Misses (ErrSnapshotNotFound) are not cached.
func (c *CachingSnapshotRepository) Find(ctx context.Context, symbol, date string) (*entity.MarketSnapshot, error) {
	if c.rdb == nil {
		return c.inner.Find(ctx, symbol, date)
	}

	key := c.cacheKey(symbol, date)

	// 1) Check cache
	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var out entity.MarketSnapshot
		if err := json.Unmarshal(b, &out); err == nil {
			return &out, nil
		}
		// Delete corrupted cache entry
		_ = c.rdb.Del(ctx, key).Err()
	}

	// 2) Fallback to database
	out, err := c.inner.Find(ctx, symbol, date)
	if err != nil {
		return nil, err
	}

	// 3) Store in cache (best effort)
	if b, err := json.Marshal(out); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.ttl).Err()
	}
	return out, nil
}

// Upsert writes through to the database and drops the cached row.
func (c *CachingSnapshotRepository) Upsert(ctx context.Context, s *entity.MarketSnapshot) error {
	if err := c.inner.Upsert(ctx, s); err != nil {
		return err
	}
	c.del(ctx, c.cacheKey(s.Symbol, s.Date))
	return nil
}

// Delete removes one row and its cache entry.
func (c *CachingSnapshotRepository) Delete(ctx context.Context, symbol, date string) error {
	if err := c.inner.Delete(ctx, symbol, date); err != nil {
		return err
	}
	c.del(ctx, c.cacheKey(symbol, date))
	return nil
}

// DeleteBySymbol removes every row of symbol and the matching cache entries.
func (c *CachingSnapshotRepository) DeleteBySymbol(ctx context.Context, symbol string) (int64, error) {
	n, err := c.inner.DeleteBySymbol(ctx, symbol)
	if err != nil {
		return n, err
	}
	_ = c.InvalidateSymbol(ctx, symbol)
	return n, nil
}

// ListDates is not cached.
func (c *CachingSnapshotRepository) ListDates(ctx context.Context, symbol string) ([]string, error) {
	return c.inner.ListDates(ctx, symbol)
}

// InvalidateSymbol drops every cached snapshot of symbol. It is called after a
// transactional cascade that deleted rows without going through this decorator.
func (c *CachingSnapshotRepository) InvalidateSymbol(ctx context.Context, symbol string) error {
	if c.rdb == nil {
		return nil
	}
	if err := c.deleteByPattern(ctx, c.cacheKeyPrefix(symbol)+"*"); err != nil {
		slog.Warn("failed to invalidate snapshot cache", "symbol", symbol, "error", err)
		return err
	}
	return nil
}

func (c *CachingSnapshotRepository) del(ctx context.Context, key string) {
	if c.rdb == nil {
		return
	}
	_ = c.rdb.Del(ctx, key).Err() // Best effort: don't fail if cache deletion fails
}

// cacheKey generates a cache key for one (symbol, date) row.
func (c *CachingSnapshotRepository) cacheKey(symbol, date string) string {
	return fmt.Sprintf("%s:%s:%s", c.namespace, safe(symbol), safe(date))
}

// cacheKeyPrefix generates a prefix for invalidating every date of a symbol.
func (c *CachingSnapshotRepository) cacheKeyPrefix(symbol string) string {
	return fmt.Sprintf("%s:%s:", c.namespace, safe(symbol))
}

// deleteByPattern deletes all cache keys matching a given pattern using SCAN.
func (c *CachingSnapshotRepository) deleteByPattern(ctx context.Context, pattern string) error {
	var cursor uint64
	for {
		keys, cur, err := c.rdb.Scan(ctx, cursor, pattern, 200).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = cur
		if cursor == 0 {
			break
		}
	}
	return nil
}

// safe escapes characters that are problematic for Redis keys.
func safe(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, ":", "_")
	s = strings.ReplaceAll(s, "*", "_")
	return s
}
