package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "ACTIVE"
	ProductStatusInactive ProductStatus = "INACTIVE"
)

type Category struct {
	ID   uuid.UUID
	Name string
	Slug string
}

type Product struct {
	ID           uuid.UUID
	Name         string
	Slug         string
	Description  string
	SKU          string
	Price        Money
	ComparePrice *decimal.Decimal
	Stock        int
	Status       ProductStatus
	Featured     bool
	Images       []string
	CategoryID   *uuid.UUID
	Category     *Category

	// Computed at read time from reviews, never stored.
	AverageRating float64
	ReviewCount   int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ProductSummary is the slice of product fields embedded into order items
// when orders are expanded for the API.
type ProductSummary struct {
	ID           uuid.UUID
	Name         string
	Slug         string
	Images       []string
	Price        decimal.Decimal
	ComparePrice *decimal.Decimal
}

// ProductFilter has AND semantics across fields.
type ProductFilter struct {
	CategorySlug string
	Search       string
	Featured     *bool
	MinPrice     *decimal.Decimal
	MaxPrice     *decimal.Decimal
	SortBy       string
	SortOrder    string
}

// API-facing sort fields mapped to their columns.
var productSortColumns = map[string]string{
	"createdAt": "created_at",
	"name":      "name",
	"price":     "price_amount",
	"stock":     "stock",
}

func (f ProductFilter) Validate() error {
	if f.SortBy != "" {
		if _, ok := productSortColumns[f.SortBy]; !ok {
			return fmt.Errorf("unknown sort field: %w", ErrValidation)
		}
	}

	if f.SortOrder != "" && f.SortOrder != "asc" && f.SortOrder != "desc" {
		return fmt.Errorf("sort order must be asc or desc: %w", ErrValidation)
	}

	return nil
}

// SortColumn resolves the API-facing sort field to its column, defaulting
// to newest first.
func (f ProductFilter) SortColumn() string {
	if column, ok := productSortColumns[f.SortBy]; ok {
		return column
	}
	return "created_at"
}
