package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

type placeOrderItem struct {
	ProductID uuid.UUID       `json:"productId"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

type placeOrderRequest struct {
	Items           []placeOrderItem `json:"items"`
	ShippingAddress json.RawMessage  `json:"shippingAddress"`
	BillingAddress  json.RawMessage  `json:"billingAddress"`
	PaymentMethod   string           `json:"paymentMethod"`
	Subtotal        decimal.Decimal  `json:"subtotal"`
	Tax             decimal.Decimal  `json:"tax"`
	Shipping        decimal.Decimal  `json:"shipping"`
	Total           decimal.Decimal  `json:"total"`
	Notes           *string          `json:"notes"`
}

func (h *Handler) placeOrder(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		WriteJSONError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req placeOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	placement := domain.PlacementRequest{
		Items: lo.Map(req.Items, func(item placeOrderItem, _ int) domain.PlacementItem {
			return domain.PlacementItem{
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				Price:     item.Price,
			}
		}),
		ShippingAddress: req.ShippingAddress,
		BillingAddress:  req.BillingAddress,
		PaymentMethod:   req.PaymentMethod,
		Subtotal:        req.Subtotal,
		Tax:             req.Tax,
		Shipping:        req.Shipping,
		Total:           req.Total,
		Notes:           req.Notes,
	}

	order, err := h.placer.PlaceOrder(r.Context(), identity, placement)
	if err != nil {
		h.log.Error("order placement failed", "customer_id", identity.UserID, "err", err)
		writeDomainError(w, err, "Failed to create order. Please try again.")
		return
	}

	writeJSON(w, http.StatusCreated, toOrderDTO(order))
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		WriteJSONError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	h.listOrdersFiltered(w, r, identity.UserID)
}

func (h *Handler) listAllOrders(w http.ResponseWriter, r *http.Request) {
	h.listOrdersFiltered(w, r, r.URL.Query().Get("ownerId"))
}

func (h *Handler) listOrdersFiltered(w http.ResponseWriter, r *http.Request, ownerID string) {
	filter := domain.OrderFilter{
		OwnerID: ownerID,
		Search:  r.URL.Query().Get("search"),
		Status:  domain.OrderStatus(r.URL.Query().Get("status")),
	}

	page := parsePage(r, 10).Normalize()

	orders, total, err := h.orders.ListOrders(r.Context(), filter, page)
	if err != nil {
		h.log.Error("list orders failed", "err", err)
		writeDomainError(w, err, "Failed to fetch orders")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"orders": lo.Map(orders, func(o domain.Order, _ int) orderDTO {
			return toOrderDTO(o)
		}),
		"pagination": toPaginationDTO(page, total),
	})
}

type updateOrderStatusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "orderID"))
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	var req updateOrderStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	status, err := domain.ToOrderStatus(req.Status)
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.orders.UpdateOrderStatus(r.Context(), orderID, status); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			WriteJSONError(w, http.StatusNotFound, "Order not found")
			return
		}
		h.log.Error("update order status failed", "order_id", orderID, "err", err)
		writeDomainError(w, err, "Failed to update order")
		return
	}

	order, err := h.orders.GetOrder(r.Context(), orderID)
	if err != nil {
		h.log.Error("get order failed", "order_id", orderID, "err", err)
		writeDomainError(w, err, "Failed to fetch order")
		return
	}

	writeJSON(w, http.StatusOK, toOrderDTO(order))
}
