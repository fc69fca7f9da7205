// Package notify delivers post-commit order events to an external
// notification endpoint, best-effort. Nothing here may ever fail a
// committed order.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/nikolayk812/storefront/internal/domain"
)

type Dispatcher struct {
	log      *slog.Logger
	client   *http.Client
	endpoint string

	ch chan domain.OrderPlaced
	wg sync.WaitGroup
}

func NewDispatcher(log *slog.Logger, endpoint string, buffer int) *Dispatcher {
	if buffer <= 0 {
		buffer = 64
	}

	return &Dispatcher{
		log:      log,
		client:   &http.Client{Timeout: 5 * time.Second},
		endpoint: endpoint,
		ch:       make(chan domain.OrderPlaced, buffer),
	}
}

// Start runs the delivery worker until the context is cancelled and the
// buffer is drained.
func (d *Dispatcher) Start(ctx context.Context) {
	d.wg.Add(1)

	go func() {
		defer d.wg.Done()

		for {
			select {
			case event := <-d.ch:
				d.deliver(event)
			case <-ctx.Done():
				d.drain()
				return
			}
		}
	}()
}

// Enqueue hands an event to the worker without blocking. It reports false
// when the buffer is full and the event was dropped.
func (d *Dispatcher) Enqueue(event domain.OrderPlaced) bool {
	select {
	case d.ch <- event:
		return true
	default:
		return false
	}
}

// Wait blocks until the worker has stopped. Call after cancelling the
// context passed to Start.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) drain() {
	for {
		select {
		case event := <-d.ch:
			d.deliver(event)
		default:
			return
		}
	}
}

func (d *Dispatcher) deliver(event domain.OrderPlaced) {
	if d.endpoint == "" {
		return
	}

	body, err := json.Marshal(event)
	if err != nil {
		d.log.Error("notification marshal failed", "order_id", event.OrderID, "err", err)
		return
	}

	resp, err := d.client.Post(d.endpoint, "application/json", bytes.NewReader(body))
	if err != nil {
		d.log.Error("notification delivery failed", "order_id", event.OrderID, "err", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		d.log.Error("notification rejected", "order_id", event.OrderID, "status", resp.StatusCode)
		return
	}

	d.log.Info("notification delivered", "order_id", event.OrderID, "order_number", event.OrderNumber)
}
