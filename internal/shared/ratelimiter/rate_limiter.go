// Package ratelimiter paces outbound requests to scraped sites.
package ratelimiter

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiterInterface は、外部サイトへのリクエスト頻度を制限するインターフェースです。
type RateLimiterInterface interface {
	// Wait blocks until the next request is allowed or ctx is done.
	Wait(ctx context.Context) error
}

// RateLimiter は interval あたり limit 回までリクエストを許可します。
type RateLimiter struct {
	limiter *rate.Limiter
	limit   int
}

// NewRateLimiter は新しいRateLimiterのインスタンスを生成します。
// limit が 0 以下の場合は制限なしになります。
func NewRateLimiter(limit int, interval time.Duration) *RateLimiter {
	if limit <= 0 || interval <= 0 {
		return &RateLimiter{limiter: rate.NewLimiter(rate.Inf, 1)}
	}
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Every(interval/time.Duration(limit)), 1),
		limit:   limit,
	}
}

// Wait はトークンが得られるまで待機します。
func (rl *RateLimiter) Wait(ctx context.Context) error {
	if r := rl.limiter.Reserve(); r.OK() {
		delay := r.Delay()
		if delay <= 0 {
			return nil
		}
		if delay > time.Second {
			slog.Debug("rate limit reached, waiting", "limit", rl.limit, "delay", delay)
		}
		t := time.NewTimer(delay)
		defer t.Stop()
		select {
		case <-t.C:
			return nil
		case <-ctx.Done():
			r.Cancel()
			return ctx.Err()
		}
	}
	return rl.limiter.Wait(ctx)
}
