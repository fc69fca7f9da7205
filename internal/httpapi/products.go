package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := domain.ProductFilter{
		CategorySlug: q.Get("category"),
		Search:       q.Get("search"),
		SortBy:       q.Get("sortBy"),
		SortOrder:    q.Get("sortOrder"),
	}

	if q.Get("featured") == "true" {
		filter.Featured = lo.ToPtr(true)
	}
	if v, err := decimal.NewFromString(q.Get("minPrice")); err == nil {
		filter.MinPrice = &v
	}
	if v, err := decimal.NewFromString(q.Get("maxPrice")); err == nil {
		filter.MaxPrice = &v
	}

	// The products endpoint allows oversized limits for bulk export;
	// the page itself caps them.
	page := parsePage(r, 12).NormalizeBulk()

	products, total, err := h.products.ListProducts(r.Context(), filter, page)
	if err != nil {
		h.log.Error("list products failed", "err", err)
		writeDomainError(w, err, "Failed to fetch products")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"products": lo.Map(products, func(p domain.Product, _ int) productDTO {
			return toProductDTO(p)
		}),
		"pagination": toPaginationDTO(page, total),
	})
}

type createProductRequest struct {
	Name         string           `json:"name"`
	Description  string           `json:"description"`
	Price        decimal.Decimal  `json:"price"`
	ComparePrice *decimal.Decimal `json:"comparePrice"`
	SKU          string           `json:"sku"`
	Stock        int              `json:"stock"`
	Images       []string         `json:"images"`
	CategoryID   *uuid.UUID       `json:"categoryId"`
	Featured     bool             `json:"featured"`
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	product := domain.Product{
		Name:        req.Name,
		Description: req.Description,
		SKU:         req.SKU,
		Price: domain.Money{
			Amount:   req.Price,
			Currency: currency.USD,
		},
		ComparePrice: req.ComparePrice,
		Stock:        req.Stock,
		Featured:     req.Featured,
		Images:       emptyIfNil(req.Images),
		CategoryID:   req.CategoryID,
	}

	productID, err := h.products.InsertProduct(r.Context(), product)
	if err != nil {
		h.log.Error("create product failed", "err", err)
		writeDomainError(w, err, "Failed to create product")
		return
	}

	created, err := h.products.GetProduct(r.Context(), productID)
	if err != nil {
		h.log.Error("get product failed", "product_id", productID, "err", err)
		writeDomainError(w, err, "Failed to fetch product")
		return
	}

	writeJSON(w, http.StatusCreated, toProductDTO(created))
}
