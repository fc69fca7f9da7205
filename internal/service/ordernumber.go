package service

import (
	"fmt"
	"math/rand/v2"
	"time"
)

const orderNumberAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// NewOrderNumber returns a human-legible token, e.g. ORD-1735689600000-4F7K2M9QX.
// The time and random parts make collisions unlikely, but the unique
// constraint on orders.order_number is the authoritative guard.
func NewOrderNumber() string {
	suffix := make([]byte, 9)
	for i := range suffix {
		suffix[i] = orderNumberAlphabet[rand.IntN(len(orderNumberAlphabet))]
	}

	return fmt.Sprintf("ORD-%d-%s", time.Now().UnixMilli(), suffix)
}
