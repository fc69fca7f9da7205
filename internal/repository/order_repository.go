package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
	"github.com/samber/lo"
)

type orderRepository struct {
	db DBTX
}

func NewOrder(pool *pgxpool.Pool) port.OrderRepository {
	return &orderRepository{db: pool}
}

func NewOrderWithTx(tx pgx.Tx) port.OrderRepository {
	return &orderRepository{db: tx}
}

const orderColumns = `o.id, o.order_number, o.owner_id,
		o.subtotal, o.tax, o.shipping, o.total, o.currency,
		o.shipping_address, o.billing_address, o.payment_method, o.notes,
		o.status, o.created_at, o.updated_at`

const orderItemColumns = `i.product_id, i.quantity, i.price_amount, i.price_currency, i.created_at,
		p.name, p.slug, p.images, p.price_amount, p.compare_price_amount`

func (r *orderRepository) InsertOrder(ctx context.Context, order domain.Order) (uuid.UUID, error) {
	if len(order.Items) == 0 {
		return uuid.Nil, errors.New("no items in order")
	}

	orderID, err := withTx(ctx, r.db, func(tx pgx.Tx) (uuid.UUID, error) {
		var orderID uuid.UUID

		err := tx.QueryRow(ctx, `
			INSERT INTO orders (order_number, owner_id, subtotal, tax, shipping, total, currency,
				shipping_address, billing_address, payment_method, notes, status)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			RETURNING id`,
			order.OrderNumber, order.OwnerID,
			order.Subtotal, order.Tax, order.Shipping, order.Total, order.Currency.String(),
			order.ShippingAddress, nilIfEmptyJSON(order.BillingAddress),
			order.PaymentMethod, order.Notes, defaultStatus(order.Status),
		).Scan(&orderID)
		if err != nil {
			return uuid.Nil, fmt.Errorf("insert order: %w", err)
		}

		for _, item := range order.Items {
			_, err := tx.Exec(ctx, `
				INSERT INTO order_items (order_id, product_id, quantity, price_amount, price_currency)
				VALUES ($1, $2, $3, $4, $5)`,
				orderID, item.ProductID, item.Quantity,
				item.Price.Amount, item.Price.Currency.String())
			if err != nil {
				return uuid.Nil, fmt.Errorf("insert order item: %w", err)
			}
		}

		return orderID, nil
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("withTx: %w", err)
	}

	return orderID, nil
}

func (r *orderRepository) GetOrder(ctx context.Context, orderID uuid.UUID) (domain.Order, error) {
	var o domain.Order

	rows, err := r.db.Query(ctx, `
		SELECT `+orderColumns+`, `+orderItemColumns+`
		FROM orders o
		JOIN order_items i ON i.order_id = o.id
		JOIN products p ON p.id = i.product_id
		WHERE o.id = $1
		ORDER BY i.created_at`, orderID)
	if err != nil {
		return o, fmt.Errorf("db.Query: %w", err)
	}
	defer rows.Close()

	orders, err := collectOrders(rows)
	if err != nil {
		return o, fmt.Errorf("collectOrders: %w", err)
	}

	if len(orders) == 0 {
		return o, fmt.Errorf("order[%s]: %w", orderID, domain.ErrNotFound)
	}

	return orders[0], nil
}

func (r *orderRepository) ListOrders(ctx context.Context, filter domain.OrderFilter, page domain.Page) ([]domain.Order, int64, error) {
	if err := filter.Validate(); err != nil {
		return nil, 0, fmt.Errorf("filter.Validate: %w", err)
	}

	page = page.Normalize()

	conditions := []string{"TRUE"}
	var args []any

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.OwnerID != "" {
		conditions = append(conditions, "o.owner_id = "+arg(filter.OwnerID))
	}
	if filter.Status != "" {
		conditions = append(conditions, "o.status = "+arg(string(filter.Status)))
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		conditions = append(conditions, fmt.Sprintf(`(o.order_number ILIKE %s OR EXISTS (
			SELECT 1 FROM order_items si
			JOIN products sp ON sp.id = si.product_id
			WHERE si.order_id = o.id AND sp.name ILIKE %s))`,
			arg(pattern), arg(pattern)))
	}

	query := fmt.Sprintf(`
		SELECT o.id, COUNT(*) OVER()
		FROM orders o
		WHERE %s
		ORDER BY o.created_at DESC
		LIMIT %s OFFSET %s`,
		strings.Join(conditions, " AND "), arg(page.Limit), arg(page.Offset()))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("db.Query: %w", err)
	}
	defer rows.Close()

	var (
		orderIDs []uuid.UUID
		total    int64
	)

	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id, &total); err != nil {
			return nil, 0, fmt.Errorf("rows.Scan: %w", err)
		}
		orderIDs = append(orderIDs, id)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows.Err: %w", err)
	}

	if len(orderIDs) == 0 {
		return nil, total, nil
	}

	expandedRows, err := r.db.Query(ctx, `
		SELECT `+orderColumns+`, `+orderItemColumns+`
		FROM orders o
		JOIN order_items i ON i.order_id = o.id
		JOIN products p ON p.id = i.product_id
		WHERE o.id = ANY($1)
		ORDER BY o.created_at DESC, i.created_at`, orderIDs)
	if err != nil {
		return nil, 0, fmt.Errorf("db.Query expanded: %w", err)
	}
	defer expandedRows.Close()

	orders, err := collectOrders(expandedRows)
	if err != nil {
		return nil, 0, fmt.Errorf("collectOrders: %w", err)
	}

	return orders, total, nil
}

func (r *orderRepository) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, status domain.OrderStatus) error {
	if orderID == uuid.Nil {
		return fmt.Errorf("orderID is empty")
	}

	if _, err := domain.ToOrderStatus(string(status)); err != nil {
		return fmt.Errorf("%s: %w", err, domain.ErrValidation)
	}

	err := InTxDB(ctx, r.db, func(tx pgx.Tx) error {
		var current string

		err := tx.QueryRow(ctx, `SELECT status FROM orders WHERE id = $1 FOR UPDATE`, orderID).Scan(&current)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("order[%s]: %w", orderID, domain.ErrNotFound)
			}
			return fmt.Errorf("select status: %w", err)
		}

		currentStatus, err := domain.ToOrderStatus(current)
		if err != nil {
			return fmt.Errorf("domain.ToOrderStatus[%s]: %w", current, err)
		}

		if !currentStatus.CanTransitionTo(status) {
			return fmt.Errorf("cannot transition order from %s to %s: %w", currentStatus, status, domain.ErrValidation)
		}

		_, err = tx.Exec(ctx, `UPDATE orders SET status = $2, updated_at = now() WHERE id = $1`, orderID, string(status))
		if err != nil {
			return fmt.Errorf("update status: %w", err)
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("withTx: %w", err)
	}

	return nil
}

// InTxDB mirrors InTx for a DBTX that may already be a transaction.
func InTxDB(ctx context.Context, db DBTX, fn func(tx pgx.Tx) error) error {
	_, err := withTx(ctx, db, func(tx pgx.Tx) (struct{}, error) {
		return struct{}{}, fn(tx)
	})
	return err
}

func collectOrders(rows pgx.Rows) ([]domain.Order, error) {
	var (
		orders []domain.Order
		index  = make(map[uuid.UUID]int)
	)

	for rows.Next() {
		var (
			o            domain.Order
			currencyCode string
			status       string
			item         domain.OrderItem
			itemCurrency string
			product      domain.ProductSummary
		)

		err := rows.Scan(&o.ID, &o.OrderNumber, &o.OwnerID,
			&o.Subtotal, &o.Tax, &o.Shipping, &o.Total, &currencyCode,
			&o.ShippingAddress, &o.BillingAddress, &o.PaymentMethod, &o.Notes,
			&status, &o.CreatedAt, &o.UpdatedAt,
			&item.ProductID, &item.Quantity, &item.Price.Amount, &itemCurrency, &item.CreatedAt,
			&product.Name, &product.Slug, &product.Images, &product.Price, &product.ComparePrice)
		if err != nil {
			return nil, fmt.Errorf("rows.Scan: %w", err)
		}

		o.Currency, err = parseCurrency(currencyCode)
		if err != nil {
			return nil, fmt.Errorf("parseCurrency: %w", err)
		}

		o.Status, err = domain.ToOrderStatus(status)
		if err != nil {
			return nil, fmt.Errorf("domain.ToOrderStatus[%s]: %w", status, err)
		}

		item.Price.Currency, err = parseCurrency(itemCurrency)
		if err != nil {
			return nil, fmt.Errorf("parseCurrency item: %w", err)
		}

		item.OrderID = o.ID
		product.ID = item.ProductID
		item.Product = lo.ToPtr(product)

		i, ok := index[o.ID]
		if !ok {
			orders = append(orders, o)
			i = len(orders) - 1
			index[o.ID] = i
		}
		orders[i].Items = append(orders[i].Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows.Err: %w", err)
	}

	return orders, nil
}

func defaultStatus(s domain.OrderStatus) string {
	if s == "" {
		return string(domain.OrderStatusPending)
	}
	return string(s)
}

func nilIfEmptyJSON(j []byte) []byte {
	if len(j) == 0 {
		return nil
	}
	return j
}
