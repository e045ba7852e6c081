package entity

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestMarketSnapshot_TradingDays(t *testing.T) {
	t.Parallel()

	s := &MarketSnapshot{ForeignNetBuy: []NetBuy{
		{Date: "2025-08-04", Volume: 100},
		{Date: "", Volume: 0},
		{Date: "2025-08-01", Volume: -50},
		{},
	}}

	assert.Equal(t, []NetBuy{
		{Date: "2025-08-04", Volume: 100},
		{Date: "2025-08-01", Volume: -50},
	}, s.TradingDays())
}

func TestPadWindow(t *testing.T) {
	t.Parallel()

	w := PadWindow([]NetBuy{{Date: "2025-08-04", Volume: 1200}})

	assert.Len(t, w, TrailingWindowSize)
	assert.Equal(t, NetBuy{Date: "2025-08-04", Volume: 1200}, w[0])
	for _, slot := range w[1:] {
		assert.False(t, slot.HasData())
	}
}

func TestIndexSnapshot_IsUp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		change string
		want   bool
	}{
		{"12.34", true},
		{"0", false},
		{"0.00", false},
		{"-3.1", false},
	}
	for _, tt := range tests {
		t.Run(tt.change, func(t *testing.T) {
			i := &IndexSnapshot{Change: decimal.RequireFromString(tt.change)}
			assert.Equal(t, tt.want, i.IsUp())
		})
	}
}
