package notify_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/notify"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fakeEvent() domain.OrderPlaced {
	return domain.OrderPlaced{
		OrderID:       uuid.New(),
		OrderNumber:   "ORD-1735689600000-4F7K2M9QX",
		Total:         decimal.NewFromInt(27),
		CustomerName:  "Test Customer",
		CustomerEmail: "customer@example.com",
	}
}

// receiver collects webhook payloads delivered to an httptest server.
type receiver struct {
	mu     sync.Mutex
	events []domain.OrderPlaced
	status int
}

func (r *receiver) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		var event domain.OrderPlaced
		_ = json.NewDecoder(req.Body).Decode(&event)

		r.mu.Lock()
		r.events = append(r.events, event)
		status := r.status
		r.mu.Unlock()

		if status != 0 {
			w.WriteHeader(status)
		}
	}
}

func (r *receiver) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

func TestDispatcherDelivers(t *testing.T) {
	defer goleak.VerifyNone(t)

	rec := &receiver{}
	srv := httptest.NewServer(rec.handler())
	defer srv.Close()

	d := notify.NewDispatcher(discardLogger(), srv.URL, 8)

	ctx, cancel := context.WithCancel(t.Context())
	d.Start(ctx)

	event := fakeEvent()
	require.True(t, d.Enqueue(event))

	require.Eventually(t, func() bool { return rec.count() == 1 },
		5*time.Second, 10*time.Millisecond)

	cancel()
	d.Wait()

	assert.Equal(t, event.OrderID, rec.events[0].OrderID)
	assert.Equal(t, event.OrderNumber, rec.events[0].OrderNumber)
	assert.True(t, event.Total.Equal(rec.events[0].Total))
}

func TestDispatcherEnqueueDropsWhenFull(t *testing.T) {
	// Worker never started, so the buffer fills up.
	d := notify.NewDispatcher(discardLogger(), "http://localhost:0", 1)

	assert.True(t, d.Enqueue(fakeEvent()))
	assert.False(t, d.Enqueue(fakeEvent()))
}

func TestDispatcherDrainsOnShutdown(t *testing.T) {
	defer goleak.VerifyNone(t)

	rec := &receiver{}
	srv := httptest.NewServer(rec.handler())
	defer srv.Close()

	d := notify.NewDispatcher(discardLogger(), srv.URL, 8)

	for i := 0; i < 3; i++ {
		require.True(t, d.Enqueue(fakeEvent()))
	}

	ctx, cancel := context.WithCancel(t.Context())
	d.Start(ctx)
	cancel()
	d.Wait()

	assert.Equal(t, 3, rec.count())
}

func TestDispatcherSwallowsDeliveryFailures(t *testing.T) {
	defer goleak.VerifyNone(t)

	rec := &receiver{status: http.StatusInternalServerError}
	srv := httptest.NewServer(rec.handler())
	defer srv.Close()

	d := notify.NewDispatcher(discardLogger(), srv.URL, 8)

	ctx, cancel := context.WithCancel(t.Context())
	d.Start(ctx)

	require.True(t, d.Enqueue(fakeEvent()))
	require.True(t, d.Enqueue(fakeEvent()))

	// Rejected deliveries never stop the worker.
	require.Eventually(t, func() bool { return rec.count() == 2 },
		5*time.Second, 10*time.Millisecond)

	cancel()
	d.Wait()
}

func TestDispatcherNoEndpoint(t *testing.T) {
	defer goleak.VerifyNone(t)

	d := notify.NewDispatcher(discardLogger(), "", 8)

	ctx, cancel := context.WithCancel(t.Context())
	d.Start(ctx)

	require.True(t, d.Enqueue(fakeEvent()))

	cancel()
	d.Wait()
}
