// Package dto はcrawlerフィーチャーのリクエスト/レスポンスDTOです。
package dto

import "time"

// TriggerRequest は POST /crawler/trigger の本文です。symbols が空の場合は全銘柄です。
type TriggerRequest struct {
	Symbols []string `json:"symbols"`
}

// StatusResponse はクロール種別ごとの実行状態です。
type StatusResponse struct {
	Kind           string     `json:"kind"`
	Running        bool       `json:"running"`
	ActiveRuns     int        `json:"activeRuns"`
	LastStartedAt  *time.Time `json:"lastStartedAt"`
	LastFinishedAt *time.Time `json:"lastFinishedAt"`
	LastError      string     `json:"lastError,omitempty"`
}
