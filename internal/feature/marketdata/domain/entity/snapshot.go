// Package entity defines the domain models for the marketdata feature.
package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// TrailingWindowSize is the number of prior trading days carried by a snapshot.
const TrailingWindowSize = 8

// NetBuy is one slot of the foreign-investor net-buy window.
// An empty Date means the crawler had no data for the slot.
type NetBuy struct {
	Date   string `json:"date"`
	Volume int64  `json:"netBuy"`
}

// HasData reports whether the slot carries a trading day.
func (n NetBuy) HasData() bool {
	return n.Date != ""
}

// MarketSnapshot is one day's market data for one symbol, keyed by (Symbol, Date).
type MarketSnapshot struct {
	Symbol     string          `json:"symbol"`     // KRX code (e.g. "005930")
	StockName  string          `json:"stockName"`  // display name at crawl time
	Date       string          `json:"date"`       // YYYY-MM-DD, Asia/Seoul
	Price      int64           `json:"price"`      // close / current price
	Change     int64           `json:"change"`     // signed change vs. previous close
	ChangeRate decimal.Decimal `json:"changeRate"` // signed percentage, 2 decimal places

	// ForeignNetBuy holds exactly TrailingWindowSize slots, most recent first.
	ForeignNetBuy []NetBuy `json:"foreignNetBuy"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TradingDays returns the window slots that carry data, order preserved.
func (s *MarketSnapshot) TradingDays() []NetBuy {
	out := make([]NetBuy, 0, len(s.ForeignNetBuy))
	for _, n := range s.ForeignNetBuy {
		if n.HasData() {
			out = append(out, n)
		}
	}
	return out
}

// PadWindow returns w extended with empty slots up to TrailingWindowSize.
func PadWindow(w []NetBuy) []NetBuy {
	out := make([]NetBuy, TrailingWindowSize)
	copy(out, w)
	return out
}
