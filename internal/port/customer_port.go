package port

import (
	"context"

	"github.com/nikolayk812/storefront/internal/domain"
)

type CustomerRepository interface {
	GetCustomer(ctx context.Context, customerID string) (domain.Customer, error)

	// UpsertCustomer materializes or refreshes the row for an authenticated
	// identity. Role is never downgraded by an upsert.
	UpsertCustomer(ctx context.Context, customer domain.Customer) error

	// ListCustomers returns a page of customers with order-count and
	// lifetime-spend aggregates, plus the total match count.
	ListCustomers(ctx context.Context, filter domain.CustomerFilter, page domain.Page) ([]domain.Customer, int64, error)
}
