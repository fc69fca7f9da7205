package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
)

type Handler struct {
	log       *slog.Logger
	placer    port.OrderPlacer
	orders    port.OrderRepository
	products  port.ProductRepository
	carts     port.CartRepository
	customers port.CustomerRepository
}

func NewHandler(log *slog.Logger, placer port.OrderPlacer,
	orders port.OrderRepository, products port.ProductRepository,
	carts port.CartRepository, customers port.CustomerRepository,
) *Handler {
	return &Handler{
		log:       log,
		placer:    placer,
		orders:    orders,
		products:  products,
		carts:     carts,
		customers: customers,
	}
}

// Routes wires up the API. Administrative paths require an admin tier,
// user-scoped paths any identity, everything else is open.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(WithRequestID)
	r.Use(WithLogging(h.log))
	r.Use(WithIdentity)

	r.Get("/healthz", h.health)

	r.Route("/api", func(r chi.Router) {
		r.Get("/products", h.listProducts)
		r.With(RequireAdmin).Post("/products", h.createProduct)

		r.Group(func(r chi.Router) {
			r.Use(RequireUser)

			r.Post("/orders", h.placeOrder)
			r.Get("/orders", h.listOrders)

			r.Get("/cart", h.getCart)
			r.Post("/cart/items", h.upsertCartItem)
			r.Delete("/cart/items/{productID}", h.deleteCartItem)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(RequireAdmin)

			r.Get("/customers", h.listCustomers)
			r.Get("/orders", h.listAllOrders)
			r.Patch("/orders/{orderID}", h.updateOrderStatus)
		})
	})

	return r
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func parsePage(r *http.Request, defaultLimit int) domain.Page {
	page := domain.Page{Number: 1, Limit: defaultLimit}

	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && v > 0 {
		page.Number = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		page.Limit = v
	}

	return page
}
