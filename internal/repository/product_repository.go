package repository

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
	"golang.org/x/text/currency"
)

type productRepository struct {
	db DBTX
}

func NewProduct(pool *pgxpool.Pool) port.ProductRepository {
	return &productRepository{db: pool}
}

func NewProductWithTx(tx pgx.Tx) port.ProductRepository {
	return &productRepository{db: tx}
}

const productColumns = `p.id, p.name, p.slug, p.description, p.sku,
		p.price_amount, p.price_currency, p.compare_price_amount,
		p.stock, p.status, p.featured, p.images, p.category_id,
		c.name, c.slug, p.created_at, p.updated_at`

func (r *productRepository) GetProduct(ctx context.Context, productID uuid.UUID) (domain.Product, error) {
	var p domain.Product

	row := r.db.QueryRow(ctx, `
		SELECT `+productColumns+`
		FROM products p
		LEFT JOIN categories c ON c.id = p.category_id
		WHERE p.id = $1`, productID)

	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return p, fmt.Errorf("product[%s]: %w", productID, domain.ErrNotFound)
		}
		return p, fmt.Errorf("scanProduct: %w", err)
	}

	return p, nil
}

func (r *productRepository) ListProducts(ctx context.Context, filter domain.ProductFilter, page domain.Page) ([]domain.Product, int64, error) {
	if err := filter.Validate(); err != nil {
		return nil, 0, fmt.Errorf("filter.Validate: %w", err)
	}

	page = page.NormalizeBulk()

	conditions := []string{"p.status = 'ACTIVE'"}
	var args []any

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.CategorySlug != "" {
		conditions = append(conditions, "c.slug = "+arg(filter.CategorySlug))
	}
	if filter.Featured != nil {
		conditions = append(conditions, "p.featured = "+arg(*filter.Featured))
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		conditions = append(conditions, fmt.Sprintf("(p.name ILIKE %s OR p.description ILIKE %s)", arg(pattern), arg(pattern)))
	}
	if filter.MinPrice != nil {
		conditions = append(conditions, "p.price_amount >= "+arg(*filter.MinPrice))
	}
	if filter.MaxPrice != nil {
		conditions = append(conditions, "p.price_amount <= "+arg(*filter.MaxPrice))
	}

	sortOrder := "DESC"
	if filter.SortOrder == "asc" {
		sortOrder = "ASC"
	}

	// The sort column comes from the filter's whitelist, safe to interpolate.
	query := fmt.Sprintf(`
		SELECT `+productColumns+`,
			COALESCE(AVG(r.rating), 0)::float8,
			COUNT(r.id),
			COUNT(*) OVER()
		FROM products p
		LEFT JOIN categories c ON c.id = p.category_id
		LEFT JOIN reviews r ON r.product_id = p.id
		WHERE %s
		GROUP BY p.id, c.id
		ORDER BY p.%s %s
		LIMIT %s OFFSET %s`,
		strings.Join(conditions, " AND "), filter.SortColumn(), sortOrder,
		arg(page.Limit), arg(page.Offset()))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("db.Query: %w", err)
	}
	defer rows.Close()

	var (
		products []domain.Product
		total    int64
	)

	for rows.Next() {
		p, avg, count, rowTotal, err := scanProductWithAggregates(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scanProductWithAggregates: %w", err)
		}

		p.AverageRating = math.Round(avg*10) / 10
		p.ReviewCount = count
		total = rowTotal

		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows.Err: %w", err)
	}

	return products, total, nil
}

func (r *productRepository) InsertProduct(ctx context.Context, product domain.Product) (uuid.UUID, error) {
	if product.Name == "" {
		return uuid.Nil, fmt.Errorf("product name is empty: %w", domain.ErrValidation)
	}

	slug := product.Slug
	if slug == "" {
		slug = domain.Slugify(product.Name)
	}

	status := product.Status
	if status == "" {
		status = domain.ProductStatusActive
	}

	var productID uuid.UUID

	err := r.db.QueryRow(ctx, `
		INSERT INTO products (name, slug, description, sku, price_amount, price_currency,
			compare_price_amount, stock, status, featured, images, category_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id`,
		product.Name, slug, product.Description, product.SKU,
		product.Price.Amount, product.Price.Currency.String(),
		product.ComparePrice, product.Stock, status, product.Featured,
		product.Images, product.CategoryID,
	).Scan(&productID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert product: %w", err)
	}

	return productID, nil
}

func (r *productRepository) DecrementStock(ctx context.Context, productID uuid.UUID, quantity int) (bool, error) {
	if quantity < 1 {
		return false, fmt.Errorf("quantity must be positive: %w", domain.ErrValidation)
	}

	// Conditional decrement: the WHERE clause is what serializes concurrent
	// placements against the same product, never a prior read.
	cmdTag, err := r.db.Exec(ctx, `
		UPDATE products
		SET stock = stock - $2, updated_at = now()
		WHERE id = $1 AND stock >= $2`,
		productID, quantity)
	if err != nil {
		return false, fmt.Errorf("update stock: %w", err)
	}

	return cmdTag.RowsAffected() > 0, nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanProduct(row scannable) (domain.Product, error) {
	var (
		p             domain.Product
		currencyCode  string
		categoryName  *string
		categorySlug  *string
	)

	err := row.Scan(&p.ID, &p.Name, &p.Slug, &p.Description, &p.SKU,
		&p.Price.Amount, &currencyCode, &p.ComparePrice,
		&p.Stock, &p.Status, &p.Featured, &p.Images, &p.CategoryID,
		&categoryName, &categorySlug, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return p, err
	}

	p.Price.Currency, err = parseCurrency(currencyCode)
	if err != nil {
		return p, err
	}

	if p.CategoryID != nil && categoryName != nil && categorySlug != nil {
		p.Category = &domain.Category{
			ID:   *p.CategoryID,
			Name: *categoryName,
			Slug: *categorySlug,
		}
	}

	return p, nil
}

func scanProductWithAggregates(rows pgx.Rows) (domain.Product, float64, int, int64, error) {
	var (
		p            domain.Product
		currencyCode string
		categoryName *string
		categorySlug *string
		avgRating    float64
		reviewCount  int
		total        int64
	)

	err := rows.Scan(&p.ID, &p.Name, &p.Slug, &p.Description, &p.SKU,
		&p.Price.Amount, &currencyCode, &p.ComparePrice,
		&p.Stock, &p.Status, &p.Featured, &p.Images, &p.CategoryID,
		&categoryName, &categorySlug, &p.CreatedAt, &p.UpdatedAt,
		&avgRating, &reviewCount, &total)
	if err != nil {
		return p, 0, 0, 0, err
	}

	p.Price.Currency, err = parseCurrency(currencyCode)
	if err != nil {
		return p, 0, 0, 0, err
	}

	if p.CategoryID != nil && categoryName != nil && categorySlug != nil {
		p.Category = &domain.Category{
			ID:   *p.CategoryID,
			Name: *categoryName,
			Slug: *categorySlug,
		}
	}

	return p, avgRating, reviewCount, total, nil
}

func parseCurrency(code string) (currency.Unit, error) {
	parsed, err := currency.ParseISO(strings.TrimSpace(code))
	if err != nil {
		return currency.Unit{}, fmt.Errorf("currency[%s] is not valid: %w", code, err)
	}
	return parsed, nil
}
