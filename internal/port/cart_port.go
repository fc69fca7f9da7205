package port

import (
	"context"

	"github.com/google/uuid"
	"github.com/nikolayk812/storefront/internal/domain"
)

type CartRepository interface {
	GetCart(ctx context.Context, ownerID string) (domain.Cart, error)

	// UpsertItem inserts the item or replaces its quantity and price.
	UpsertItem(ctx context.Context, ownerID string, item domain.CartItem) error

	DeleteItem(ctx context.Context, ownerID string, productID uuid.UUID) (bool, error)

	// ClearCart deletes every item of the owner and returns the count.
	ClearCart(ctx context.Context, ownerID string) (int64, error)
}
