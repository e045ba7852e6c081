package dto

// NetBuyResponse は外国人純買い越しの1日分です。
type NetBuyResponse struct {
	Date   string `json:"date"`
	NetBuy int64  `json:"net_buy"`
}

// MarketDataResponse はスナップショットのレスポンスDTOです。
type MarketDataResponse struct {
	Price           int64            `json:"price"`
	Change          int64            `json:"change"`
	ChangeRate      string           `json:"changeRate"`
	Date            string           `json:"date"`
	ForeignerNetBuy []NetBuyResponse `json:"foreignerNetBuy"`
}

// StockMarketDataResponse は GET /stocks/marketdata の要素です。
type StockMarketDataResponse struct {
	Symbol     string              `json:"symbol"`
	Name       string              `json:"name"`
	UserID     uint                `json:"userId"`
	MarketData *MarketDataResponse `json:"marketData"`
}

// ForeignResponse は GET /stock/:symbol/foreign のレスポンスです。
type ForeignResponse struct {
	Symbol    string `json:"symbol"`
	StockName string `json:"stockName"`
	MarketDataResponse
}

// IndexResponse は GET /indices の要素です。
type IndexResponse struct {
	Name       string `json:"name"`
	Value      string `json:"value"`
	Change     string `json:"change"`
	ChangeRate string `json:"changeRate"`
	IsUp       bool   `json:"isUp"`
}
