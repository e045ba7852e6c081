// Package usecase はウォッチリストの追加・削除（スナップショットの連鎖削除を含む）を実装します。
package usecase

import (
	"errors"

	"fiflow_backend/internal/shared/apperr"
)

var (
	// ErrDuplicateEntry is returned by a repository when (user, symbol) already exists.
	// Manager turns it into an idempotent success.
	ErrDuplicateEntry = errors.New("watchlist entry already exists")

	// ErrEntryNotFound is returned when no entry exists for (user, symbol).
	ErrEntryNotFound = apperr.NotFound("watchlist entry not found")

	ErrSymbolRequired = apperr.Validation("종목 코드를 입력해주세요.")
	ErrUserRequired   = apperr.New(apperr.KindAuth, "user is required")
	ErrUnknownSymbol  = apperr.Validation("unknown symbol")
)
