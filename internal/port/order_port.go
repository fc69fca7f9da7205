package port

import (
	"context"

	"github.com/google/uuid"
	"github.com/nikolayk812/storefront/internal/domain"
)

type OrderRepository interface {
	// GetOrder returns the order expanded with items and product summaries.
	GetOrder(ctx context.Context, orderID uuid.UUID) (domain.Order, error)

	// ListOrders returns a page of expanded orders, newest first, plus the
	// total match count.
	ListOrders(ctx context.Context, filter domain.OrderFilter, page domain.Page) ([]domain.Order, int64, error)

	// InsertOrder inserts the order together with its items.
	InsertOrder(ctx context.Context, order domain.Order) (uuid.UUID, error)

	UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, status domain.OrderStatus) error
}

// OrderPlacer is the checkout entrypoint used by the HTTP layer.
type OrderPlacer interface {
	PlaceOrder(ctx context.Context, identity domain.Identity, req domain.PlacementRequest) (domain.Order, error)
}
