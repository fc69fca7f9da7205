package domain

import "fmt"

// OrderFilter has AND semantics across fields. An empty OwnerID means all
// owners (admin listings). Search matches the order number or the name of
// any purchased product, case-insensitive.
type OrderFilter struct {
	OwnerID string
	Search  string
	Status  OrderStatus
}

func (f OrderFilter) Validate() error {
	if f.Status != "" {
		if _, err := ToOrderStatus(string(f.Status)); err != nil {
			return fmt.Errorf("%s: %w", err, ErrValidation)
		}
	}

	return nil
}
