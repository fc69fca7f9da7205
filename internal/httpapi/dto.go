package httpapi

import (
	"encoding/json"
	"time"

	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/samber/lo"
)

// All monetary fields leave the boundary as plain JSON numbers; the decimal
// wrapper type never leaks to clients.

type paginationDTO struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

func toPaginationDTO(page domain.Page, total int64) paginationDTO {
	return paginationDTO{
		Page:  page.Number,
		Limit: page.Limit,
		Total: total,
		Pages: page.Pages(total),
	}
}

type categoryDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type productDTO struct {
	ID            string       `json:"id"`
	Name          string       `json:"name"`
	Slug          string       `json:"slug"`
	Description   string       `json:"description"`
	SKU           string       `json:"sku"`
	Price         float64      `json:"price"`
	ComparePrice  *float64     `json:"comparePrice"`
	Currency      string       `json:"currency"`
	Stock         int          `json:"stock"`
	Status        string       `json:"status"`
	Featured      bool         `json:"featured"`
	Images        []string     `json:"images"`
	Category      *categoryDTO `json:"category,omitempty"`
	AverageRating float64      `json:"averageRating"`
	ReviewCount   int          `json:"reviewCount"`
	CreatedAt     time.Time    `json:"createdAt"`
	UpdatedAt     time.Time    `json:"updatedAt"`
}

func toProductDTO(p domain.Product) productDTO {
	dto := productDTO{
		ID:            p.ID.String(),
		Name:          p.Name,
		Slug:          p.Slug,
		Description:   p.Description,
		SKU:           p.SKU,
		Price:         p.Price.Float64(),
		Currency:      p.Price.Currency.String(),
		Stock:         p.Stock,
		Status:        string(p.Status),
		Featured:      p.Featured,
		Images:        emptyIfNil(p.Images),
		AverageRating: p.AverageRating,
		ReviewCount:   p.ReviewCount,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}

	if p.ComparePrice != nil {
		dto.ComparePrice = lo.ToPtr(p.ComparePrice.InexactFloat64())
	}

	if p.Category != nil {
		dto.Category = &categoryDTO{
			ID:   p.Category.ID.String(),
			Name: p.Category.Name,
			Slug: p.Category.Slug,
		}
	}

	return dto
}

type productSummaryDTO struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Slug         string   `json:"slug"`
	Images       []string `json:"images"`
	Price        float64  `json:"price"`
	ComparePrice *float64 `json:"comparePrice"`
}

type orderItemDTO struct {
	ProductID string             `json:"productId"`
	Quantity  int                `json:"quantity"`
	Price     float64            `json:"price"`
	Product   *productSummaryDTO `json:"product,omitempty"`
}

type orderDTO struct {
	ID              string          `json:"id"`
	OrderNumber     string          `json:"orderNumber"`
	Subtotal        float64         `json:"subtotal"`
	Tax             float64         `json:"tax"`
	Shipping        float64         `json:"shipping"`
	Total           float64         `json:"total"`
	Currency        string          `json:"currency"`
	ShippingAddress json.RawMessage `json:"shippingAddress"`
	BillingAddress  json.RawMessage `json:"billingAddress,omitempty"`
	PaymentMethod   string          `json:"paymentMethod"`
	Notes           *string         `json:"notes"`
	Status          string          `json:"status"`
	OrderItems      []orderItemDTO  `json:"orderItems"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

func toOrderDTO(o domain.Order) orderDTO {
	items := make([]orderItemDTO, 0, len(o.Items))
	for _, item := range o.Items {
		dto := orderItemDTO{
			ProductID: item.ProductID.String(),
			Quantity:  item.Quantity,
			Price:     item.Price.Float64(),
		}

		if item.Product != nil {
			summary := productSummaryDTO{
				ID:     item.Product.ID.String(),
				Name:   item.Product.Name,
				Slug:   item.Product.Slug,
				Images: emptyIfNil(item.Product.Images),
				Price:  item.Product.Price.InexactFloat64(),
			}
			if item.Product.ComparePrice != nil {
				summary.ComparePrice = lo.ToPtr(item.Product.ComparePrice.InexactFloat64())
			}
			dto.Product = &summary
		}

		items = append(items, dto)
	}

	return orderDTO{
		ID:              o.ID.String(),
		OrderNumber:     o.OrderNumber,
		Subtotal:        o.Subtotal.InexactFloat64(),
		Tax:             o.Tax.InexactFloat64(),
		Shipping:        o.Shipping.InexactFloat64(),
		Total:           o.Total.InexactFloat64(),
		Currency:        o.Currency.String(),
		ShippingAddress: o.ShippingAddress,
		BillingAddress:  o.BillingAddress,
		PaymentMethod:   o.PaymentMethod,
		Notes:           o.Notes,
		Status:          string(o.Status),
		OrderItems:      items,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}

type customerDTO struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	Name       *string   `json:"name"`
	Role       string    `json:"role"`
	OrderCount int       `json:"orderCount"`
	TotalSpent float64   `json:"totalSpent"`
	CreatedAt  time.Time `json:"createdAt"`
}

func toCustomerDTO(c domain.Customer) customerDTO {
	return customerDTO{
		ID:         c.ID,
		Email:      c.Email,
		Name:       c.Name,
		Role:       string(c.Role),
		OrderCount: c.OrderCount,
		TotalSpent: c.TotalSpent.InexactFloat64(),
		CreatedAt:  c.CreatedAt,
	}
}

type cartItemDTO struct {
	ProductID string    `json:"productId"`
	Quantity  int       `json:"quantity"`
	Price     float64   `json:"price"`
	CreatedAt time.Time `json:"createdAt"`
}

type cartDTO struct {
	Items []cartItemDTO `json:"items"`
}

func toCartDTO(c domain.Cart) cartDTO {
	items := make([]cartItemDTO, 0, len(c.Items))
	for _, item := range c.Items {
		items = append(items, cartItemDTO{
			ProductID: item.ProductID.String(),
			Quantity:  item.Quantity,
			Price:     item.Price.Float64(),
			CreatedAt: item.CreatedAt,
		})
	}

	return cartDTO{Items: items}
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
