package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// IndexSnapshot is one day's value of a market index (KOSPI, KOSDAQ, KPI200), keyed by (Name, Date).
type IndexSnapshot struct {
	Name       string
	Date       string
	Value      decimal.Decimal
	Change     decimal.Decimal
	ChangeRate decimal.Decimal
	UpdatedAt  time.Time
}

// IsUp is true only for a strictly positive change.
func (i *IndexSnapshot) IsUp() bool {
	return i.Change.IsPositive()
}
