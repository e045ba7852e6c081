// Package usecase は市場データの取り込み（Reconciler）と読み出し（Projector）を実装します。
package usecase

import "fiflow_backend/internal/shared/apperr"

var (
	// ErrSnapshotNotFound is returned when no snapshot exists for (symbol, date).
	ErrSnapshotNotFound = apperr.NotFound("market data not found")

	// ErrIndexNotFound is returned when no index snapshot exists for (name, date).
	ErrIndexNotFound = apperr.NotFound("index data not found")

	ErrSymbolRequired    = apperr.Validation("symbol is required")
	ErrInvalidDate       = apperr.Validation("date must be YYYY-MM-DD")
	ErrWindowTooLong     = apperr.Validation("foreign net-buy window exceeds 8 entries")
	ErrInvalidWindowDate = apperr.Validation("foreign net-buy date must be empty or YYYY-MM-DD")
	ErrIndexNameRequired = apperr.Validation("index name is required")
	ErrInvalidNumber     = apperr.Validation("numeric field is not a number")
	ErrNumberRequired    = apperr.Validation("numeric field is required")
	ErrWindowMismatch    = apperr.Validation("foreignerNetBuy and foreignerNetBuyDate lengths differ")
)
