package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
)

type customerRepository struct {
	db DBTX
}

func NewCustomer(pool *pgxpool.Pool) port.CustomerRepository {
	return &customerRepository{db: pool}
}

func NewCustomerWithTx(tx pgx.Tx) port.CustomerRepository {
	return &customerRepository{db: tx}
}

func (r *customerRepository) GetCustomer(ctx context.Context, customerID string) (domain.Customer, error) {
	var (
		c    domain.Customer
		role string
	)

	err := r.db.QueryRow(ctx, `
		SELECT id, email, name, role, created_at
		FROM customers
		WHERE id = $1`, customerID).
		Scan(&c.ID, &c.Email, &c.Name, &role, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c, fmt.Errorf("customer[%s]: %w", customerID, domain.ErrNotFound)
		}
		return c, fmt.Errorf("select customer: %w", err)
	}

	c.Role = domain.Role(role)

	return c, nil
}

func (r *customerRepository) UpsertCustomer(ctx context.Context, customer domain.Customer) error {
	if customer.ID == "" || customer.Email == "" {
		return fmt.Errorf("customer id and email are required: %w", domain.ErrValidation)
	}

	role := customer.Role
	if role == "" {
		role = domain.RoleCustomer
	}

	// Role is left untouched on conflict so an upsert from a plain request
	// can never downgrade an admin.
	_, err := r.db.Exec(ctx, `
		INSERT INTO customers (id, email, name, role)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id)
		DO UPDATE SET email = EXCLUDED.email,
			name = COALESCE(EXCLUDED.name, customers.name)`,
		customer.ID, customer.Email, customer.Name, string(role))
	if err != nil {
		return fmt.Errorf("upsert customer: %w", err)
	}

	return nil
}

func (r *customerRepository) ListCustomers(ctx context.Context, filter domain.CustomerFilter, page domain.Page) ([]domain.Customer, int64, error) {
	page = page.Normalize()

	rows, err := r.db.Query(ctx, `
		SELECT c.id, c.email, c.name, c.role, c.created_at,
			COUNT(o.id),
			COALESCE(SUM(o.total), 0),
			COUNT(*) OVER()
		FROM customers c
		LEFT JOIN orders o ON o.owner_id = c.id
		WHERE $1 = '' OR c.email ILIKE '%' || $1 || '%' OR c.name ILIKE '%' || $1 || '%'
		GROUP BY c.id
		ORDER BY c.created_at DESC
		LIMIT $2 OFFSET $3`,
		filter.Search, page.Limit, page.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("db.Query: %w", err)
	}
	defer rows.Close()

	var (
		customers []domain.Customer
		total     int64
	)

	for rows.Next() {
		var (
			c    domain.Customer
			role string
		)

		err := rows.Scan(&c.ID, &c.Email, &c.Name, &role, &c.CreatedAt,
			&c.OrderCount, &c.TotalSpent, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("rows.Scan: %w", err)
		}

		c.Role = domain.Role(role)
		customers = append(customers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows.Err: %w", err)
	}

	return customers, total, nil
}
