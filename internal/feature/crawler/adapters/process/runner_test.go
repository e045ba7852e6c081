package process

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sh -c '<script>' crawl --symbols ... : the crawl args become $0 and positional parameters.
func shRunner(t *testing.T, script string, maxRuntime time.Duration) *Runner {
	t.Helper()
	r, err := NewRunner("/bin/sh", maxRuntime, "-c", script)
	require.NoError(t, err)
	return r
}

func waitExit(t *testing.T, ch <-chan error) error {
	t.Helper()
	select {
	case err := <-ch:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("process did not exit")
		return nil
	}
}

func TestRunner_StartPassesSymbols(t *testing.T) {
	t.Parallel()

	// $0=crawl $1=--symbols $2=005930,000660
	r := shRunner(t, `[ "$0" = crawl ] && [ "$1" = --symbols ] && [ "$2" = 005930,000660 ]`, time.Minute)
	done := make(chan error, 1)

	err := r.Start(context.Background(), []string{"005930", "000660"}, func(err error) { done <- err })
	require.NoError(t, err)
	assert.NoError(t, waitExit(t, done))
}

func TestRunner_ReportsNonZeroExit(t *testing.T) {
	t.Parallel()

	r := shRunner(t, "exit 3", time.Minute)
	done := make(chan error, 1)

	require.NoError(t, r.Start(context.Background(), nil, func(err error) { done <- err }))
	assert.Error(t, waitExit(t, done))
}

func TestRunner_KillsAfterMaxRuntime(t *testing.T) {
	t.Parallel()

	r := shRunner(t, "sleep 10", 50*time.Millisecond)
	done := make(chan error, 1)

	require.NoError(t, r.Start(context.Background(), nil, func(err error) { done <- err }))
	err := waitExit(t, done)
	assert.ErrorContains(t, err, "max runtime")
}

func TestRunner_DetachedFromRequestContext(t *testing.T) {
	t.Parallel()

	r := shRunner(t, "sleep 0.2", time.Minute)
	done := make(chan error, 1)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, r.Start(ctx, nil, func(err error) { done <- err }))
	cancel()
	assert.NoError(t, waitExit(t, done))
}

func TestRunner_StartFailure(t *testing.T) {
	t.Parallel()

	r, err := NewRunner("/nonexistent/crawler", time.Minute)
	require.NoError(t, err)

	err = r.Start(context.Background(), nil, func(error) { t.Fatal("onExit must not run") })
	assert.Error(t, err)
}
