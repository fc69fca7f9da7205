package port

import "github.com/nikolayk812/storefront/internal/domain"

// Notifier dispatches post-commit events best-effort. Enqueue must never
// block and its outcome must never affect the committed order.
type Notifier interface {
	Enqueue(event domain.OrderPlaced) bool
}
