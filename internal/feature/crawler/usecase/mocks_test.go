package usecase

import (
	"context"
	"errors"
	"sync"

	"fiflow_backend/internal/feature/crawler/domain/entity"
	mdentity "fiflow_backend/internal/feature/marketdata/domain/entity"
	mdusecase "fiflow_backend/internal/feature/marketdata/usecase"
)

// mockMarketSource is a mock implementation of MarketSource.
type mockMarketSource struct {
	FetchQuoteFunc         func(ctx context.Context, symbol string) (*entity.Quote, error)
	ResolveDisplayNameFunc func(ctx context.Context, symbol string) (string, bool, error)
	FetchForeignNetBuyFunc func(ctx context.Context, symbol string) ([]mdentity.NetBuy, error)
}

func (m *mockMarketSource) FetchQuote(ctx context.Context, symbol string) (*entity.Quote, error) {
	return m.FetchQuoteFunc(ctx, symbol)
}

func (m *mockMarketSource) ResolveDisplayName(ctx context.Context, symbol string) (string, bool, error) {
	return m.ResolveDisplayNameFunc(ctx, symbol)
}

func (m *mockMarketSource) FetchForeignNetBuy(ctx context.Context, symbol string) ([]mdentity.NetBuy, error) {
	if m.FetchForeignNetBuyFunc == nil {
		return nil, errors.New("not configured")
	}
	return m.FetchForeignNetBuyFunc(ctx, symbol)
}

type staticSymbols struct {
	symbols []string
	err     error
}

func (s staticSymbols) WatchedSymbols(context.Context) ([]string, error) {
	return s.symbols, s.err
}

// recordingReconciler keeps every reconciled input.
type recordingReconciler struct {
	mu      sync.Mutex
	stocks  []mdusecase.IncomingSnapshot
	indices []mdusecase.IncomingIndex
	err     error
}

func (r *recordingReconciler) Reconcile(_ context.Context, in mdusecase.IncomingSnapshot) (mdusecase.ReconcileResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return mdusecase.ReconcileResult{}, r.err
	}
	r.stocks = append(r.stocks, in)
	return mdusecase.ReconcileResult{Outcome: mdusecase.OutcomeInserted}, nil
}

func (r *recordingReconciler) ReconcileIndex(_ context.Context, in mdusecase.IncomingIndex) (mdusecase.IndexReconcileResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return mdusecase.IndexReconcileResult{}, r.err
	}
	r.indices = append(r.indices, in)
	return mdusecase.IndexReconcileResult{Outcome: mdusecase.OutcomeInserted}, nil
}

// mockIndexSource is a mock implementation of IndexSource.
type mockIndexSource struct {
	FetchIndicesFunc func(ctx context.Context, names []string) ([]entity.IndexQuote, error)
}

func (m *mockIndexSource) FetchIndices(ctx context.Context, names []string) ([]entity.IndexQuote, error) {
	return m.FetchIndicesFunc(ctx, names)
}

// mockProcessRunner is a mock implementation of ProcessRunner.
type mockProcessRunner struct {
	StartFunc func(ctx context.Context, symbols []string, onExit func(error)) error
}

func (m *mockProcessRunner) Start(ctx context.Context, symbols []string, onExit func(error)) error {
	return m.StartFunc(ctx, symbols, onExit)
}
