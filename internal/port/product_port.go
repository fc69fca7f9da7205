package port

import (
	"context"

	"github.com/google/uuid"
	"github.com/nikolayk812/storefront/internal/domain"
)

type ProductRepository interface {
	GetProduct(ctx context.Context, productID uuid.UUID) (domain.Product, error)

	// ListProducts returns a page of ACTIVE products plus the total match
	// count. Rating aggregates are computed from reviews at read time.
	ListProducts(ctx context.Context, filter domain.ProductFilter, page domain.Page) ([]domain.Product, int64, error)

	InsertProduct(ctx context.Context, product domain.Product) (uuid.UUID, error)

	// DecrementStock conditionally subtracts quantity from the product's
	// stock. It reports false when current stock is below quantity, which
	// is the serialization point for concurrent placements.
	DecrementStock(ctx context.Context, productID uuid.UUID, quantity int) (bool, error)
}
