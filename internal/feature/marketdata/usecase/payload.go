package usecase

import (
	"fmt"
	"strings"

	"fiflow_backend/internal/feature/marketdata/domain/entity"
)

// SnapshotPayload はクローラが書き出すスナップショットの形です。
// 数値は文字列・数値のどちらでもよく、ネット買い越しは日付と数量の並列配列です。
type SnapshotPayload struct {
	Symbol              string    `json:"symbol"`
	Date                string    `json:"date"`
	StockName           string    `json:"stockName"`
	Price               Numeric   `json:"price"`
	Change              Numeric   `json:"change"`
	ChangeRate          Numeric   `json:"changeRate"`
	ForeignerNetBuy     []Numeric `json:"foreignerNetBuy"`
	ForeignerNetBuyDate []string  `json:"foreignerNetBuyDate"`
}

// Normalize は数値を固定表現に変換し、IncomingSnapshot を返します。
// 並列配列の長さが一致しない場合、price / change / changeRate が欠損・null の場合は ValidationError です。
func (p SnapshotPayload) Normalize() (IncomingSnapshot, error) {
	var in IncomingSnapshot
	if len(p.ForeignerNetBuy) != len(p.ForeignerNetBuyDate) {
		return in, ErrWindowMismatch
	}

	// 取引値は必須。欠損を 0 として保存すると実在の相場と区別できない
	for _, f := range []struct {
		name string
		v    Numeric
	}{{"price", p.Price}, {"change", p.Change}, {"changeRate", p.ChangeRate}} {
		if f.v.Empty() {
			return in, fmt.Errorf("%s: %w", f.name, ErrNumberRequired)
		}
	}

	price, err := p.Price.Int64()
	if err != nil {
		return in, fmt.Errorf("price: %w", err)
	}
	change, err := p.Change.Int64()
	if err != nil {
		return in, fmt.Errorf("change: %w", err)
	}
	rate, err := p.ChangeRate.Decimal()
	if err != nil {
		return in, fmt.Errorf("changeRate: %w", err)
	}

	window := make([]entity.NetBuy, 0, len(p.ForeignerNetBuy))
	for i, raw := range p.ForeignerNetBuy {
		date := NormalizeDate(p.ForeignerNetBuyDate[i])
		var vol int64
		if date != "" {
			if vol, err = raw.Int64(); err != nil {
				return in, fmt.Errorf("foreignerNetBuy[%d]: %w", i, err)
			}
		}
		window = append(window, entity.NetBuy{Date: date, Volume: vol})
	}

	return IncomingSnapshot{
		Symbol:        p.Symbol,
		Date:          NormalizeDate(p.Date),
		StockName:     p.StockName,
		Price:         price,
		Change:        change,
		ChangeRate:    rate,
		ForeignNetBuy: window,
	}, nil
}

// NormalizeDate converts the scraped "YYYY.MM.DD" form to "YYYY-MM-DD".
func NormalizeDate(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), ".", "-")
}
