package usecase

import (
	"context"
	"log/slog"
	"time"

	"fiflow_backend/internal/feature/crawler/domain/entity"
	"fiflow_backend/internal/platform/logging"
	"fiflow_backend/internal/platform/marketclock"
	"fiflow_backend/internal/shared/apperr"
)

// ProcessRunner はクローラーを別プロセスとして起動します。
// onExit はプロセス終了時に別の goroutine から呼ばれます。
type ProcessRunner interface {
	Start(ctx context.Context, symbols []string, onExit func(error)) error
}

// TriggerUsecase は取引時間内に限りクローラーを非同期で起動します。
type TriggerUsecase struct {
	runner ProcessRunner
	status *StatusTracker
	now    func() time.Time
}

// NewTriggerUsecase は TriggerUsecase を生成します。
func NewTriggerUsecase(runner ProcessRunner, status *StatusTracker) *TriggerUsecase {
	return &TriggerUsecase{runner: runner, status: status, now: time.Now}
}

// Trigger はクローラーを起動して即座に戻ります（fire-and-forget）。
// symbols が空の場合はウォッチ中の全銘柄がクロール対象になります。
func (u *TriggerUsecase) Trigger(ctx context.Context, symbols []string) error {
	if !marketclock.IsMarketOpen(u.now()) {
		return ErrMarketClosed
	}

	u.status.Start(entity.KindStock)
	err := u.runner.Start(ctx, symbols, func(exitErr error) {
		u.status.Finish(entity.KindStock, exitErr)
		if exitErr != nil {
			slog.Warn("crawler process exited with error", "symbols", symbols, "error", exitErr)
		}
	})
	if err != nil {
		u.status.Finish(entity.KindStock, err)
		return apperr.Upstream("failed to start crawler", err)
	}
	logging.FromContext(ctx).Info("crawler triggered", "symbols", symbols)
	return nil
}

// Status returns the current run states.
func (u *TriggerUsecase) Status() []entity.RunStatus {
	return u.status.Snapshot()
}
