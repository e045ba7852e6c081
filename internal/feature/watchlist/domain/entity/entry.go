// Package entity defines the watchlist domain model.
package entity

import "time"

// Entry は「ユーザーがこの銘柄をウォッチしている」ことを表します。
// (UserID, Symbol) は一意です。
type Entry struct {
	ID        uint
	UserID    uint
	Symbol    string
	Name      string // 追加時に解決した表示名（最初の書き込みが優先）
	CreatedAt time.Time
}
