package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFromContext(r.Context())

	cart, err := h.carts.GetCart(r.Context(), identity.UserID)
	if err != nil {
		h.log.Error("get cart failed", "customer_id", identity.UserID, "err", err)
		writeDomainError(w, err, "Failed to fetch cart")
		return
	}

	writeJSON(w, http.StatusOK, toCartDTO(cart))
}

type upsertCartItemRequest struct {
	ProductID uuid.UUID       `json:"productId"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

func (h *Handler) upsertCartItem(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFromContext(r.Context())

	var req upsertCartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Quantity < 1 {
		WriteJSONError(w, http.StatusBadRequest, "quantity must be positive")
		return
	}

	// Validates the product exists before it lands in the cart.
	if _, err := h.products.GetProduct(r.Context(), req.ProductID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			WriteJSONError(w, http.StatusBadRequest, fmt.Sprintf("Product %s not found", req.ProductID))
			return
		}
		h.log.Error("get product failed", "product_id", req.ProductID, "err", err)
		writeDomainError(w, err, "Failed to fetch product")
		return
	}

	item := domain.CartItem{
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
		Price: domain.Money{
			Amount:   req.Price,
			Currency: currency.USD,
		},
	}

	if err := h.carts.UpsertItem(r.Context(), identity.UserID, item); err != nil {
		h.log.Error("upsert cart item failed", "customer_id", identity.UserID, "err", err)
		writeDomainError(w, err, "Failed to update cart")
		return
	}

	cart, err := h.carts.GetCart(r.Context(), identity.UserID)
	if err != nil {
		writeDomainError(w, err, "Failed to fetch cart")
		return
	}

	writeJSON(w, http.StatusOK, toCartDTO(cart))
}

func (h *Handler) deleteCartItem(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFromContext(r.Context())

	productID, err := uuid.Parse(chi.URLParam(r, "productID"))
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	found, err := h.carts.DeleteItem(r.Context(), identity.UserID, productID)
	if err != nil {
		h.log.Error("delete cart item failed", "customer_id", identity.UserID, "err", err)
		writeDomainError(w, err, "Failed to update cart")
		return
	}
	if !found {
		WriteJSONError(w, http.StatusNotFound, "Cart item not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
