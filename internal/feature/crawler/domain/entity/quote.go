// Package entity はクローラーが外部サイトから取得する値と実行状態を定義します。
package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Quote は銘柄の現在値です。Change と ChangeRate は下落時に負になります。
type Quote struct {
	Price      int64
	Change     int64
	ChangeRate decimal.Decimal
}

// IndexQuote は指数の現在値です（例: KOSPI 3151.23）。
type IndexQuote struct {
	Name       string
	Value      decimal.Decimal
	Change     decimal.Decimal
	ChangeRate decimal.Decimal
}

// Kind はクロールの種類です。
type Kind string

const (
	KindStock Kind = "stock"
	KindIndex Kind = "index"
)

// RunStatus はクロール種別ごとの実行状態です。
type RunStatus struct {
	Kind           Kind       `json:"kind"`
	Running        bool       `json:"running"`
	ActiveRuns     int        `json:"activeRuns"`
	LastStartedAt  *time.Time `json:"lastStartedAt"`
	LastFinishedAt *time.Time `json:"lastFinishedAt"`
	LastError      string     `json:"lastError,omitempty"`
}
