package dto

// AddStockRequest は POST /stock/add のリクエストです。
type AddStockRequest struct {
	Symbol string `json:"symbol"`
}

// StockItem は GET /stocks の要素です。
type StockItem struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
	UserID uint   `json:"userId"`
}

// AddStockResponse は追加結果です。Crawl は "started" / "skipped" / "failed" のいずれかです。
type AddStockResponse struct {
	Message   string `json:"message"`
	StockName string `json:"stockName"`
	Symbol    string `json:"symbol"`
	Created   bool   `json:"created"`
	Crawl     string `json:"crawl,omitempty"`
}

// RemoveStockResponse は削除結果です。
type RemoveStockResponse struct {
	Message               string `json:"message"`
	Symbol                string `json:"symbol"`
	CascadedSnapshotCount int64  `json:"cascadedSnapshotCount"`
}
