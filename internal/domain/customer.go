package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Customer struct {
	ID    string
	Email string
	Name  *string
	Role  Role

	// Computed at read time from orders, never stored.
	OrderCount int
	TotalSpent decimal.Decimal

	CreatedAt time.Time
}

// CustomerFilter matches name or email, case-insensitive.
type CustomerFilter struct {
	Search string
}
