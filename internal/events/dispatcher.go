// Package events fans order and payment events out to a publisher from a
// small pool of workers so request handlers never wait on the broker.
package events

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/antonminaichev/foodorder/internal/logger"
)

const (
	OrderCreated       = "order.created"
	OrderStatusChanged = "order.status_changed"
	OrderCancelled     = "order.cancelled"
	OrderReadyTimeSet  = "order.ready_time_set"
	PaymentPaid        = "payment.paid"
	PaymentFailed      = "payment.failed"
	PaymentRefunded    = "payment.refunded"
)

type Event struct {
	Type          string    `json:"type"`
	OrderID       string    `json:"orderId"`
	OrderNumber   string    `json:"orderNumber"`
	UserID        int64     `json:"userId"`
	Status        string    `json:"status"`
	PaymentStatus string    `json:"paymentStatus"`
	Note          string    `json:"note,omitempty"`
	OccurredAt    time.Time `json:"occurredAt"`
}

type Publisher interface {
	Publish(ctx context.Context, evt Event) error
}

// Notifier is what services depend on.
type Notifier interface {
	Notify(evt Event)
}

type discard struct{}

func (discard) Notify(Event) {}

// Discard drops every event.
var Discard Notifier = discard{}

type Dispatcher struct {
	pub     Publisher
	jobs    chan Event
	workers int
}

func NewDispatcher(pub Publisher, workers, buffer int) *Dispatcher {
	if workers < 1 {
		workers = 1
	}
	if buffer < workers {
		buffer = workers * 3
	}
	return &Dispatcher{
		pub:     pub,
		jobs:    make(chan Event, buffer),
		workers: workers,
	}
}

// Notify queues evt without blocking; when the queue is full the event is
// dropped and logged.
func (d *Dispatcher) Notify(evt Event) {
	select {
	case d.jobs <- evt:
	default:
		logger.Log.Warn("event queue full, dropping event",
			zap.String("type", evt.Type),
			zap.String("order_id", evt.OrderID),
		)
	}
}

// Run starts the workers and blocks until ctx is cancelled and every worker
// has returned.
func (d *Dispatcher) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for i := 1; i <= d.workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			workerLoop(ctx, id, d.pub, d.jobs)
		}(i)
	}
	logger.Log.Info("event dispatcher started", zap.Int("workers", d.workers))
	wg.Wait()
	logger.Log.Info("event dispatcher stopped")
}

func workerLoop(ctx context.Context, id int, pub Publisher, jobs <-chan Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-jobs:
			if !ok {
				return
			}
			if err := pub.Publish(ctx, evt); err != nil {
				logger.Log.Error("publish event",
					zap.Int("worker", id),
					zap.String("type", evt.Type),
					zap.String("order_id", evt.OrderID),
					zap.Error(err),
				)
				continue
			}
			logger.Log.Debug("event published",
				zap.Int("worker", id),
				zap.String("type", evt.Type),
				zap.String("order_id", evt.OrderID),
			)
		}
	}
}

// LogPublisher writes events to the process log. It stands in for a broker
// when none is configured.
type LogPublisher struct{}

func (LogPublisher) Publish(_ context.Context, evt Event) error {
	logger.Log.Info("event",
		zap.String("type", evt.Type),
		zap.String("order_id", evt.OrderID),
		zap.String("order_number", evt.OrderNumber),
		zap.String("status", evt.Status),
		zap.String("payment_status", evt.PaymentStatus),
	)
	return nil
}
