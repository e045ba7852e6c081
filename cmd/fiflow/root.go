package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"fiflow_backend/internal/app/di"
	"fiflow_backend/internal/platform/config"
	"fiflow_backend/internal/platform/logging"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var rootCMD = &cobra.Command{
	Use:   "fiflow",
	Short: "FiFlow stock watchlist backend",
	Long: `FiFlow serves per-user stock watchlists with Korean market data
(price, change, foreign net-buy) and crawls Naver Finance for snapshots.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCMD.Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func init() {
	rootCMD.AddCommand(serveCMD, crawlCMD, crawlIndexCMD, ingestCMD, migrateCMD)
}

// app は各コマンドで共有する依存関係です。
type app struct {
	cfg       *config.Config
	db        *gorm.DB
	rdb       *redis.Client
	container *di.Container
	logger    *slog.Logger
}

// bootstrap は設定の読み込み、ロガー初期化、DB・Redis 接続、DI を行います。
func bootstrap(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := logging.Setup(os.Stdout, cfg.LogLevel, cfg.LogFormat)

	gdb, err := di.OpenDatabase(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	rdb := di.NewRedis(ctx, cfg)

	c, err := di.Build(cfg, gdb, rdb)
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, db: gdb, rdb: rdb, container: c, logger: logger}, nil
}

func (a *app) close() {
	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			slog.Error("failed to close Redis client", "error", err)
		}
	}
	if sqlDB, err := a.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

var errSharedStoreRequired = errors.New("this command needs a shared database: set SQLITE_PATH or use DB_DRIVER=postgres (in-memory SQLite is private to one process)")

// requireSharedStore は別プロセスから書き込むコマンド用のチェックです。
// インメモリの SQLite はプロセスごとに別のDBになるため、書き込みが失われます。
func requireSharedStore(cfg *config.Config) error {
	if di.InMemoryDatabase(cfg) {
		return errSharedStoreRequired
	}
	return nil
}

// startBackground は fn を別 goroutine で実行します。返り値の stop は
// fn の ctx をキャンセルし、fn が戻るまで待ちます。
func startBackground(ctx context.Context, fn func(ctx context.Context)) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		fn(ctx)
	}()
	return func() {
		cancel()
		wg.Wait()
	}
}
