package domain

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// DefaultPaymentMethod is applied when a placement omits the payment method.
const DefaultPaymentMethod = "credit_card"

type PlacementItem struct {
	ProductID uuid.UUID
	Quantity  int
	// Unit price as declared by the client; frozen into the order item.
	Price decimal.Decimal
}

// PlacementRequest is the client-declared purchase. The monetary breakdown
// is accepted at face value and not recomputed from catalog prices.
type PlacementRequest struct {
	Items           []PlacementItem
	ShippingAddress json.RawMessage
	BillingAddress  json.RawMessage
	PaymentMethod   string
	Subtotal        decimal.Decimal
	Tax             decimal.Decimal
	Shipping        decimal.Decimal
	Total           decimal.Decimal
	Currency        currency.Unit
	Notes           *string
}

// OrderPlaced is the post-commit notification payload.
type OrderPlaced struct {
	OrderID       uuid.UUID       `json:"orderId"`
	OrderNumber   string          `json:"orderNumber"`
	Total         decimal.Decimal `json:"total"`
	CustomerName  string          `json:"customerName"`
	CustomerEmail string          `json:"customerEmail"`
}
