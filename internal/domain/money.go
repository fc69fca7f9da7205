package domain

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

type Money struct {
	Amount   decimal.Decimal
	Currency currency.Unit
}

// Float64 drops precision deliberately: it is only for JSON boundary output,
// never for arithmetic.
func (m Money) Float64() float64 {
	f, _ := m.Amount.Float64()
	return f
}
