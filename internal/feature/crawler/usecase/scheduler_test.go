package usecase

import (
	"context"
	"testing"
	"time"

	"fiflow_backend/internal/platform/marketclock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewScheduler_InvalidSpec(t *testing.T) {
	t.Parallel()

	_, err := NewScheduler("not a cron")
	assert.Error(t, err)
}

func TestScheduler_TickGatedByMarketHours(t *testing.T) {
	t.Parallel()

	runs := 0
	s, err := NewScheduler("*/5 * * * *", Job{Name: "stock", Run: func(ctx context.Context) error {
		runs++
		return nil
	}})
	require.NoError(t, err)

	s.now = func() time.Time { return time.Date(2025, 8, 9, 10, 0, 0, 0, marketclock.Location()) }
	s.tick(context.Background())
	assert.Equal(t, 0, runs)

	s.now = func() time.Time { return marketNow }
	s.tick(context.Background())
	assert.Equal(t, 1, runs)
}

// 停止時は実行中のジョブに ctx のキャンセルが伝わり、ジョブの終了後に Start が戻る
func TestScheduler_StartWaitsForRunningJob(t *testing.T) {
	t.Parallel()

	started := make(chan struct{})
	finished := make(chan struct{})
	s, err := NewScheduler("@every 1s", Job{Name: "stock", Run: func(ctx context.Context) error {
		select {
		case started <- struct{}{}:
		default:
			return nil
		}
		<-ctx.Done()
		close(finished)
		return ctx.Err()
	}})
	require.NoError(t, err)
	s.now = func() time.Time { return marketNow }

	ctx, cancel := context.WithCancel(context.Background())
	returned := make(chan struct{})
	go func() {
		s.Start(ctx)
		close(returned)
	}()

	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("scheduled job did not start")
	}
	cancel()

	select {
	case <-returned:
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return after cancel")
	}
	select {
	case <-finished:
	default:
		t.Fatal("Start returned before the running job finished")
	}
}

func TestScheduler_TickStopsWhenCanceled(t *testing.T) {
	t.Parallel()

	runs := 0
	job := Job{Name: "stock", Run: func(ctx context.Context) error {
		runs++
		return nil
	}}
	s, err := NewScheduler("*/5 * * * *", job, job)
	require.NoError(t, err)
	s.now = func() time.Time { return marketNow }

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s.tick(ctx)
	assert.Zero(t, runs)
}
