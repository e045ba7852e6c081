// Package usecase は銘柄と指数のクロール、クローラー起動、実行状態の管理を実装します。
package usecase

import (
	"errors"

	"fiflow_backend/internal/shared/apperr"
)

var (
	// ErrMarketClosed は取引時間外にクロールを起動しようとした場合のエラーです。
	ErrMarketClosed = apperr.Validation("주식 시장 시간(평일 09:00~16:00 KST) 외에는 크롤러를 실행할 수 없습니다.")

	// ErrUnknownSymbol is returned by a crawl when the display name cannot be resolved.
	ErrUnknownSymbol = errors.New("display name not found")

	// ErrNoIndexData is returned when the polling API did not contain a requested index.
	ErrNoIndexData = errors.New("index data not found")
)
