package httpapi

import (
	"net/http"

	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/samber/lo"
)

func (h *Handler) listCustomers(w http.ResponseWriter, r *http.Request) {
	filter := domain.CustomerFilter{
		Search: r.URL.Query().Get("search"),
	}

	page := parsePage(r, 10).Normalize()

	customers, total, err := h.customers.ListCustomers(r.Context(), filter, page)
	if err != nil {
		h.log.Error("list customers failed", "err", err)
		writeDomainError(w, err, "Failed to fetch customers")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"customers": lo.Map(customers, func(c domain.Customer, _ int) customerDTO {
			return toCustomerDTO(c)
		}),
		"pagination": toPaginationDTO(page, total),
	})
}
