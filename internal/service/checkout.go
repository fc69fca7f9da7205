package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
	"github.com/nikolayk812/storefront/internal/repository"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// orderNumberAttempts bounds regeneration when the generated order number
// collides with an existing one.
const orderNumberAttempts = 3

// Checkout turns a validated placement request into a committed order:
// order and item inserts, conditional stock decrements and the total cart
// clear all happen in one transaction, followed by a best-effort
// notification.
type Checkout struct {
	pool      *pgxpool.Pool
	customers port.CustomerRepository
	notifier  port.Notifier
	log       *slog.Logger
}

func NewCheckout(pool *pgxpool.Pool, notifier port.Notifier, log *slog.Logger) *Checkout {
	return &Checkout{
		pool:      pool,
		customers: repository.NewCustomer(pool),
		notifier:  notifier,
		log:       log,
	}
}

func (s *Checkout) PlaceOrder(ctx context.Context, identity domain.Identity, req domain.PlacementRequest) (domain.Order, error) {
	var o domain.Order

	if identity.UserID == "" {
		return o, domain.ErrUnauthorized
	}

	if err := validateRequest(req); err != nil {
		return o, err
	}

	// order_items carries one row per product, so duplicate lines for the
	// same product are combined before anything touches the database.
	req.Items = mergeLines(req.Items)

	if req.PaymentMethod == "" {
		req.PaymentMethod = domain.DefaultPaymentMethod
	}
	if (req.Currency == currency.Unit{}) {
		req.Currency = currency.USD
	}

	s.materializeCustomer(ctx, identity)

	// Pre-mutation validation against current catalog state. The
	// conditional decrement inside the transaction remains the
	// authoritative check under concurrency.
	products, err := s.checkAvailability(ctx, req.Items)
	if err != nil {
		return o, err
	}

	placed, err := s.commit(ctx, identity, req, products)
	if err != nil {
		return o, err
	}

	event := domain.OrderPlaced{
		OrderID:       placed.ID,
		OrderNumber:   placed.OrderNumber,
		Total:         placed.Total,
		CustomerName:  customerName(identity),
		CustomerEmail: identity.Email,
	}
	if !s.notifier.Enqueue(event) {
		s.log.Warn("order notification dropped", "order_id", placed.ID, "order_number", placed.OrderNumber)
	}

	return placed, nil
}

func validateRequest(req domain.PlacementRequest) error {
	if len(req.Items) == 0 {
		return fmt.Errorf("order items are required: %w", domain.ErrValidation)
	}

	for _, item := range req.Items {
		if item.Quantity < 1 {
			return fmt.Errorf("quantity for product %s must be positive: %w", item.ProductID, domain.ErrValidation)
		}
	}

	if emptyJSON(req.ShippingAddress) {
		return fmt.Errorf("shipping address is required: %w", domain.ErrValidation)
	}

	for name, amount := range map[string]decimal.Decimal{
		"subtotal": req.Subtotal, "tax": req.Tax, "shipping": req.Shipping, "total": req.Total,
	} {
		if amount.IsNegative() {
			return fmt.Errorf("%s must not be negative: %w", name, domain.ErrValidation)
		}
	}

	return nil
}

// mergeLines combines lines referencing the same product into one, summing
// quantities. The first line's unit price wins.
func mergeLines(items []domain.PlacementItem) []domain.PlacementItem {
	merged := make([]domain.PlacementItem, 0, len(items))
	index := make(map[uuid.UUID]int, len(items))

	for _, item := range items {
		if i, ok := index[item.ProductID]; ok {
			merged[i].Quantity += item.Quantity
			continue
		}

		index[item.ProductID] = len(merged)
		merged = append(merged, item)
	}

	return merged
}

func (s *Checkout) checkAvailability(ctx context.Context, items []domain.PlacementItem) (map[uuid.UUID]domain.Product, error) {
	catalog := repository.NewProduct(s.pool)
	products := make(map[uuid.UUID]domain.Product, len(items))

	for _, item := range items {
		product, err := catalog.GetProduct(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, fmt.Errorf("product with ID %s not found: %w", item.ProductID, domain.ErrNotFound)
			}
			return nil, fmt.Errorf("catalog.GetProduct: %w", err)
		}

		if product.Stock < item.Quantity {
			return nil, fmt.Errorf("insufficient stock for product: %s: %w", product.Name, domain.ErrInsufficientStock)
		}

		products[item.ProductID] = product
	}

	return products, nil
}

func (s *Checkout) commit(ctx context.Context, identity domain.Identity, req domain.PlacementRequest, products map[uuid.UUID]domain.Product) (domain.Order, error) {
	var (
		placed domain.Order
		err    error
	)

	for attempt := 0; attempt < orderNumberAttempts; attempt++ {
		order := buildOrder(identity, req, NewOrderNumber())

		err = repository.InTx(ctx, s.pool, func(tx pgx.Tx) error {
			orders := repository.NewOrderWithTx(tx)
			catalog := repository.NewProductWithTx(tx)
			carts := repository.NewCartWithTx(tx)

			orderID, err := orders.InsertOrder(ctx, order)
			if err != nil {
				return fmt.Errorf("orders.InsertOrder: %w", err)
			}

			for _, item := range req.Items {
				ok, err := catalog.DecrementStock(ctx, item.ProductID, item.Quantity)
				if err != nil {
					return fmt.Errorf("catalog.DecrementStock: %w", err)
				}
				if !ok {
					// A concurrent placement won the race since the
					// pre-mutation check; roll everything back.
					return fmt.Errorf("insufficient stock for product: %s: %w",
						products[item.ProductID].Name, domain.ErrInsufficientStock)
				}
			}

			// Total clear, not just the purchased items.
			if _, err := carts.ClearCart(ctx, identity.UserID); err != nil {
				return fmt.Errorf("carts.ClearCart: %w", err)
			}

			placed, err = orders.GetOrder(ctx, orderID)
			if err != nil {
				return fmt.Errorf("orders.GetOrder: %w", err)
			}

			return nil
		})

		if err != nil && repository.IsUniqueViolation(err, "orders_order_number_key") {
			s.log.Info("order number collision, regenerating", "order_number", order.OrderNumber)
			continue
		}

		break
	}
	if err != nil {
		return domain.Order{}, fmt.Errorf("commit: %w", err)
	}

	return placed, nil
}

func buildOrder(identity domain.Identity, req domain.PlacementRequest, orderNumber string) domain.Order {
	items := make([]domain.OrderItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, domain.OrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price: domain.Money{
				Amount:   item.Price,
				Currency: req.Currency,
			},
		})
	}

	return domain.Order{
		OrderNumber:     orderNumber,
		OwnerID:         identity.UserID,
		Subtotal:        req.Subtotal,
		Tax:             req.Tax,
		Shipping:        req.Shipping,
		Total:           req.Total,
		Currency:        req.Currency,
		ShippingAddress: req.ShippingAddress,
		BillingAddress:  req.BillingAddress,
		PaymentMethod:   req.PaymentMethod,
		Notes:           req.Notes,
		Status:          domain.OrderStatusPending,
		Items:           items,
	}
}

// materializeCustomer keeps the admin views in sync with the external
// identity provider. Failures never block a purchase.
func (s *Checkout) materializeCustomer(ctx context.Context, identity domain.Identity) {
	if identity.Email == "" {
		return
	}

	customer := domain.Customer{
		ID:    identity.UserID,
		Email: identity.Email,
		Role:  identity.Role,
	}
	if identity.Name != "" {
		customer.Name = &identity.Name
	}

	if err := s.customers.UpsertCustomer(ctx, customer); err != nil {
		s.log.Warn("customer upsert failed", "customer_id", identity.UserID, "err", err)
	}
}

func customerName(identity domain.Identity) string {
	if identity.Name != "" {
		return identity.Name
	}
	return "Customer"
}

func emptyJSON(j []byte) bool {
	trimmed := bytes.TrimSpace(j)
	switch string(trimmed) {
	case "", "null", "{}", `""`:
		return true
	}
	return false
}
