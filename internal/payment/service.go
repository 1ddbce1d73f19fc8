// Package payment connects orders to the card/UPI processor: it opens
// processor orders, verifies checkout signatures and applies webhooks.
package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/antonminaichev/foodorder/internal/apperr"
	"github.com/antonminaichev/foodorder/internal/events"
	"github.com/antonminaichev/foodorder/internal/logger"
	ordersvc "github.com/antonminaichev/foodorder/internal/order"
	"github.com/antonminaichev/foodorder/internal/types/order"
	"github.com/antonminaichev/foodorder/internal/types/payment"
)

type Config struct {
	KeyID    string
	Currency string
}

type Service struct {
	repo     OrderRepository
	gateway  Gateway
	verifier *Verifier
	events   events.Notifier
	cfg      Config
	now      func() time.Time
}

func NewService(r OrderRepository, g Gateway, v *Verifier, n events.Notifier, cfg Config) *Service {
	if cfg.Currency == "" {
		cfg.Currency = "INR"
	}
	if n == nil {
		n = events.Discard
	}
	return &Service{repo: r, gateway: g, verifier: v, events: n, cfg: cfg, now: time.Now}
}

func (s *Service) KeyID() string { return s.cfg.KeyID }

func (s *Service) owned(ctx context.Context, userID int64, orderID string) (*order.Order, error) {
	o, err := s.repo.FindOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.UserID != userID {
		return nil, apperr.ErrForbidden
	}
	return o, nil
}

// CreatePayment opens a processor order for the full order total. Each call
// starts a new attempt with a new gateway order id.
func (s *Service) CreatePayment(ctx context.Context, userID int64, orderID string) (*payment.GatewayOrder, error) {
	o, err := s.owned(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	if o.PaymentMethod == order.MethodCash {
		return nil, apperr.Validation("cash orders are paid at the counter")
	}
	if o.Status == order.StatusCancelled {
		return nil, fmt.Errorf("%w: order is cancelled", apperr.ErrInvalidTransition)
	}
	if !payable(o.PaymentStatus) {
		return nil, fmt.Errorf("%w: payment is already %s", apperr.ErrInvalidTransition, o.PaymentStatus)
	}

	g, err := s.gateway.CreateOrder(ctx, payment.GatewayOrderRequest{
		Amount:         ordersvc.MinorUnits(o.Total),
		Currency:       s.cfg.Currency,
		Receipt:        "receipt_" + o.ID,
		PaymentCapture: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("create gateway order: %w", err)
	}

	now := s.now().UTC()
	o.Payment = &order.PaymentDetails{
		GatewayOrderID: g.ID,
		Provider:       Provider,
		Method:         string(o.PaymentMethod),
		Timestamp:      now,
	}
	// A failed attempt is final; the new gateway order starts a fresh one.
	if err := ordersvc.SetPaymentStatus(o, order.PaymentPending, now); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateOrder(ctx, o); err != nil {
		return nil, err
	}
	logger.Log.Info("payment started",
		zap.String("order_id", o.ID),
		zap.String("gateway_order_id", g.ID),
		zap.Int64("amount", g.Amount),
	)
	return g, nil
}

// Verify checks a checkout confirmation for the caller's order. A bad
// signature marks the payment Failed and returns apperr.ErrPaymentVerification;
// the attempt cannot be verified again, a new one starts with CreatePayment.
func (s *Service) Verify(ctx context.Context, userID int64, req payment.VerifyRequest) (*order.Order, error) {
	o, err := s.owned(ctx, userID, req.OrderID)
	if err != nil {
		return nil, err
	}
	if o.Status == order.StatusCancelled {
		return nil, fmt.Errorf("%w: order is cancelled", apperr.ErrInvalidTransition)
	}
	if o.PaymentStatus != order.PaymentPending {
		return nil, fmt.Errorf("%w: payment is %s", apperr.ErrInvalidTransition, o.PaymentStatus)
	}
	if o.Payment == nil || o.Payment.GatewayOrderID == "" {
		return nil, apperr.Validation("no payment was started for this order")
	}

	now := s.now().UTC()
	if o.Payment.GatewayOrderID != req.GatewayOrderID || !s.verifier.Verify(req.GatewayOrderID, req.PaymentID, req.Signature) {
		if err := s.settle(ctx, o, order.PaymentFailed, now); err != nil {
			return nil, err
		}
		logger.Log.Warn("payment verification failed",
			zap.String("order_id", o.ID),
			zap.String("gateway_order_id", req.GatewayOrderID),
		)
		return nil, fmt.Errorf("%w: signature does not match", apperr.ErrPaymentVerification)
	}

	o.Payment.PaymentID = req.PaymentID
	o.Payment.Timestamp = now
	if err := s.settle(ctx, o, order.PaymentPaid, now); err != nil {
		return nil, err
	}
	logger.Log.Info("payment verified", zap.String("order_id", o.ID), zap.String("payment_id", req.PaymentID))
	return o, nil
}

// HandleWebhook applies a signed processor notification. Unknown events and
// orders are ignored so the processor stops retrying them.
func (s *Service) HandleWebhook(ctx context.Context, evt payment.WebhookEvent) error {
	entity := evt.Payload.Payment.Entity
	if evt.Event != payment.EventCaptured && evt.Event != payment.EventFailed {
		logger.Log.Debug("webhook ignored", zap.String("event", evt.Event))
		return nil
	}
	if entity.OrderID == "" {
		return apperr.Validation("webhook carries no order id")
	}
	o, err := s.repo.FindOrderByGatewayOrderID(ctx, entity.OrderID)
	if errors.Is(err, apperr.ErrNotFound) {
		logger.Log.Warn("webhook for unknown gateway order", zap.String("gateway_order_id", entity.OrderID))
		return nil
	}
	if err != nil {
		return err
	}

	now := s.now().UTC()
	switch evt.Event {
	case payment.EventCaptured:
		if !payable(o.PaymentStatus) {
			return nil
		}
		o.Payment.PaymentID = entity.ID
		if entity.Method != "" {
			o.Payment.Method = entity.Method
		}
		o.Payment.Timestamp = now
		if o.Status == order.StatusCancelled {
			logger.Log.Warn("payment captured for cancelled order, refunding",
				zap.String("order_id", o.ID),
				zap.String("payment_id", entity.ID),
			)
			return s.settle(ctx, o, order.PaymentRefunded, now)
		}
		return s.settle(ctx, o, order.PaymentPaid, now)
	default:
		if o.PaymentStatus != order.PaymentPending {
			return nil
		}
		return s.settle(ctx, o, order.PaymentFailed, now)
	}
}

func (s *Service) settle(ctx context.Context, o *order.Order, status order.PaymentStatus, now time.Time) error {
	if err := ordersvc.SetPaymentStatus(o, status, now); err != nil {
		return err
	}
	if err := s.repo.UpdateOrder(ctx, o); err != nil {
		return err
	}
	typ := events.PaymentPaid
	switch status {
	case order.PaymentFailed:
		typ = events.PaymentFailed
	case order.PaymentRefunded:
		typ = events.PaymentRefunded
	}
	s.events.Notify(events.Event{
		Type:          typ,
		OrderID:       o.ID,
		OrderNumber:   o.Number,
		UserID:        o.UserID,
		Status:        string(o.Status),
		PaymentStatus: string(o.PaymentStatus),
		OccurredAt:    now,
	})
	return nil
}

// payable reports whether the order may still be paid, by a new attempt or
// a late capture.
func payable(s order.PaymentStatus) bool {
	return s == order.PaymentPending || s == order.PaymentFailed
}
