package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
)

type cartRepository struct {
	db DBTX
}

func NewCart(pool *pgxpool.Pool) port.CartRepository {
	return &cartRepository{db: pool}
}

func NewCartWithTx(tx pgx.Tx) port.CartRepository {
	return &cartRepository{db: tx}
}

func (r *cartRepository) GetCart(ctx context.Context, ownerID string) (domain.Cart, error) {
	var c domain.Cart

	rows, err := r.db.Query(ctx, `
		SELECT product_id, quantity, price_amount, price_currency, created_at
		FROM cart_items
		WHERE owner_id = $1
		ORDER BY created_at`, ownerID)
	if err != nil {
		return c, fmt.Errorf("db.Query: %w", err)
	}
	defer rows.Close()

	var items []domain.CartItem

	for rows.Next() {
		var (
			item         domain.CartItem
			currencyCode string
		)

		if err := rows.Scan(&item.ProductID, &item.Quantity, &item.Price.Amount, &currencyCode, &item.CreatedAt); err != nil {
			return c, fmt.Errorf("rows.Scan: %w", err)
		}

		item.Price.Currency, err = parseCurrency(currencyCode)
		if err != nil {
			return c, fmt.Errorf("parseCurrency: %w", err)
		}

		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return c, fmt.Errorf("rows.Err: %w", err)
	}

	return domain.Cart{
		OwnerID: ownerID,
		Items:   items,
	}, nil
}

func (r *cartRepository) UpsertItem(ctx context.Context, ownerID string, item domain.CartItem) error {
	if item.Quantity < 1 {
		return fmt.Errorf("quantity must be positive: %w", domain.ErrValidation)
	}

	_, err := r.db.Exec(ctx, `
		INSERT INTO cart_items (owner_id, product_id, quantity, price_amount, price_currency)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (owner_id, product_id)
		DO UPDATE SET quantity = EXCLUDED.quantity,
			price_amount = EXCLUDED.price_amount,
			price_currency = EXCLUDED.price_currency`,
		ownerID, item.ProductID, item.Quantity,
		item.Price.Amount, item.Price.Currency.String())
	if err != nil {
		return fmt.Errorf("upsert cart item: %w", err)
	}

	return nil
}

func (r *cartRepository) DeleteItem(ctx context.Context, ownerID string, productID uuid.UUID) (bool, error) {
	cmdTag, err := r.db.Exec(ctx, `
		DELETE FROM cart_items
		WHERE owner_id = $1 AND product_id = $2`,
		ownerID, productID)
	if err != nil {
		return false, fmt.Errorf("delete cart item: %w", err)
	}

	return cmdTag.RowsAffected() > 0, nil
}

// ClearCart removes every item of the owner, purchased or not. Checkout
// relies on this being total.
func (r *cartRepository) ClearCart(ctx context.Context, ownerID string) (int64, error) {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM cart_items WHERE owner_id = $1`, ownerID)
	if err != nil {
		return 0, fmt.Errorf("clear cart: %w", err)
	}

	return cmdTag.RowsAffected(), nil
}
