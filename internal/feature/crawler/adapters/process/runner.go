// Package process はクローラーを子プロセスとして起動します。
package process

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"fiflow_backend/internal/feature/crawler/usecase"
)

const defaultMaxRuntime = 10 * time.Minute

// Runner は `<binary> crawl --symbols a,b` を起動し、終了を待たずに戻ります。
type Runner struct {
	binary     string
	baseArgs   []string
	maxRuntime time.Duration
}

var _ usecase.ProcessRunner = (*Runner)(nil)

// NewRunner は Runner を生成します。binary が空の場合は実行中のバイナリ自身を使います。
func NewRunner(binary string, maxRuntime time.Duration, baseArgs ...string) (*Runner, error) {
	if binary == "" {
		self, err := os.Executable()
		if err != nil {
			return nil, fmt.Errorf("resolve crawler binary: %w", err)
		}
		binary = self
	}
	if maxRuntime <= 0 {
		maxRuntime = defaultMaxRuntime
	}
	return &Runner{binary: binary, baseArgs: baseArgs, maxRuntime: maxRuntime}, nil
}

// Start はプロセスを起動します。起動に失敗した場合のみエラーを返します。
// プロセスはリクエストの ctx から切り離され、maxRuntime を超えると kill されます。
func (r *Runner) Start(ctx context.Context, symbols []string, onExit func(error)) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	args := append(append([]string{}, r.baseArgs...), "crawl")
	if len(symbols) > 0 {
		args = append(args, "--symbols", strings.Join(symbols, ","))
	}

	runCtx, cancel := context.WithTimeout(context.Background(), r.maxRuntime)
	cmd := exec.CommandContext(runCtx, r.binary, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		cancel()
		return fmt.Errorf("start %s: %w", r.binary, err)
	}
	pid := cmd.Process.Pid
	slog.Info("crawler process started", "pid", pid, "symbols", symbols)

	go func() {
		defer cancel()
		err := cmd.Wait()
		if runCtx.Err() == context.DeadlineExceeded {
			err = fmt.Errorf("crawler exceeded max runtime %s: %w", r.maxRuntime, runCtx.Err())
		}
		slog.Info("crawler process exited", "pid", pid, "error", err)
		if onExit != nil {
			onExit(err)
		}
	}()
	return nil
}
