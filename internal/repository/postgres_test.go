package repository_test

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"golang.org/x/text/currency"
)

func startPostgres(ctx context.Context) (testcontainers.Container, string, error) {
	container, err := tcpostgres.Run(ctx, "postgres:17-alpine",
		tcpostgres.WithInitScripts(filepath.Join("..", "..", "migrations", "init.sql")),
		tcpostgres.WithDatabase("storefront"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		return nil, "", fmt.Errorf("postgres.Run: %w", err)
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return container, "", fmt.Errorf("container.ConnectionString: %w", err)
	}

	return container, connStr, nil
}

func fakeProduct() domain.Product {
	return domain.Product{
		Name:        gofakeit.ProductName(),
		Description: gofakeit.ProductDescription(),
		SKU:         uuid.NewString(),
		Price: domain.Money{
			Amount:   decimal.NewFromFloat(gofakeit.Price(1, 100)),
			Currency: currency.USD,
		},
		Stock:  gofakeit.Number(1, 100),
		Status: domain.ProductStatusActive,
		Images: []string{gofakeit.URL()},
	}
}

func insertFakeProduct(ctx context.Context, pool *pgxpool.Pool, product domain.Product) (domain.Product, error) {
	err := pool.QueryRow(ctx, `
		INSERT INTO products (name, slug, description, sku, price_amount, price_currency, stock, status, featured, images)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`,
		product.Name, domain.Slugify(product.Name)+"-"+uuid.NewString()[:8],
		product.Description, product.SKU,
		product.Price.Amount, product.Price.Currency.String(),
		product.Stock, string(product.Status), product.Featured, product.Images,
	).Scan(&product.ID)

	return product, err
}
