// Package di provides dependency injection factories for creating application components.
package di

import (
	"context"
	"log/slog"

	authentity "fiflow_backend/internal/feature/auth/domain/entity"
	mdadapters "fiflow_backend/internal/feature/marketdata/adapters"
	wladapters "fiflow_backend/internal/feature/watchlist/adapters"
	"fiflow_backend/internal/platform/config"
	"fiflow_backend/internal/platform/db"
	infraredis "fiflow_backend/internal/platform/redis"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Models returns every gorm model migrated by the application.
func Models() []any {
	return []any{
		&authentity.User{},
		&wladapters.WatchlistModel{},
		&mdadapters.SnapshotModel{},
		&mdadapters.IndexModel{},
	}
}

// OpenDatabase opens the configured database and migrates it when RUN_MIGRATIONS is set.
func OpenDatabase(cfg *config.Config) (*gorm.DB, error) {
	return db.OpenDB(dbConfig(cfg, cfg.DB.RunMigrations), Models()...)
}

// MigrateDatabase opens the database and always runs AutoMigrate.
func MigrateDatabase(cfg *config.Config) error {
	_, err := db.OpenDB(dbConfig(cfg, true), Models()...)
	return err
}

// InMemoryDatabase reports whether cfg opens a SQLite database private to this process.
func InMemoryDatabase(cfg *config.Config) bool {
	return db.IsInMemory(dbConfig(cfg, false))
}

func dbConfig(cfg *config.Config, migrate bool) db.Config {
	return db.Config{
		Driver:        cfg.DB.Driver,
		User:          cfg.DB.User,
		Password:      cfg.DB.Password,
		Name:          cfg.DB.Name,
		Host:          cfg.DB.Host,
		Port:          cfg.DB.Port,
		SSLMode:       cfg.DB.SSLMode,
		SQLitePath:    cfg.DB.SQLitePath,
		RunMigrations: migrate,
	}
}

// NewRedis returns a connected client, or nil when Redis is not configured or unreachable.
// Callers treat nil as "run without cache".
func NewRedis(ctx context.Context, cfg *config.Config) *redis.Client {
	if !cfg.Redis.Enabled() {
		slog.Info("REDIS_HOST not set; running without cache")
		return nil
	}
	rdb, err := infraredis.NewRedisClient(ctx, infraredis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
	})
	if err != nil {
		slog.Warn("Redis unavailable; running without cache", "error", err)
		return nil
	}
	return rdb
}
