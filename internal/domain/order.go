package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

type Order struct {
	ID          uuid.UUID
	OrderNumber string
	OwnerID     string

	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Shipping decimal.Decimal
	Total    decimal.Decimal
	Currency currency.Unit

	// Address snapshots taken at placement time; they must survive later
	// edits to the customer's saved addresses.
	ShippingAddress json.RawMessage
	BillingAddress  json.RawMessage

	PaymentMethod string
	Notes         *string
	Status        OrderStatus
	Items         []OrderItem

	CreatedAt time.Time
	UpdatedAt time.Time
}

type OrderItem struct {
	OrderID   uuid.UUID
	ProductID uuid.UUID
	Quantity  int

	// Unit price frozen at placement time, decoupled from the product's
	// current price.
	Price Money

	Product *ProductSummary

	CreatedAt time.Time
}
