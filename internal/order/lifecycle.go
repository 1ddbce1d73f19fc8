package order

import (
	"fmt"
	"time"

	"github.com/antonminaichev/foodorder/internal/apperr"
	"github.com/antonminaichev/foodorder/internal/types/order"
)

const defaultCancelReason = "Cancelled by customer"

// Transition moves o to status next and records it in the history.
//
// Any status may follow any other except Cancelled, which is only reachable
// from Processing and Preparing. Completing or delivering an order with a
// pending payment settles it; cancelling a paid order refunds it.
func Transition(o *order.Order, next order.Status, note string, now time.Time) error {
	if !next.Valid() {
		return fmt.Errorf("%w: %q", apperr.ErrInvalidStatus, next)
	}
	if next == order.StatusCancelled && !o.Status.Cancellable() {
		return fmt.Errorf("%w: only orders in Processing or Preparing status can be cancelled, order is %s",
			apperr.ErrInvalidTransition, o.Status)
	}

	o.Status = next
	o.History = append(o.History, order.StatusEntry{Status: next, Timestamp: now, Note: note})
	o.UpdatedAt = now

	switch {
	case (next == order.StatusCompleted || next == order.StatusDelivered) && o.PaymentStatus == order.PaymentPending:
		o.PaymentStatus = order.PaymentPaid
	case next == order.StatusCancelled && o.PaymentStatus == order.PaymentPaid:
		o.PaymentStatus = order.PaymentRefunded
	}
	return nil
}

// SetPaymentStatus validates and applies a payment status. Which edges are
// allowed is left to the caller.
func SetPaymentStatus(o *order.Order, next order.PaymentStatus, now time.Time) error {
	if !next.Valid() {
		return fmt.Errorf("%w: %q", apperr.ErrInvalidPaymentStatus, next)
	}
	o.PaymentStatus = next
	o.UpdatedAt = now
	return nil
}

// Cancel cancels o, refunding it if it was paid.
func Cancel(o *order.Order, reason string, now time.Time) error {
	if !o.Status.Cancellable() {
		return fmt.Errorf("%w: only orders in Processing or Preparing status can be cancelled, order is %s",
			apperr.ErrInvalidTransition, o.Status)
	}
	if reason == "" {
		reason = defaultCancelReason
	}
	return Transition(o, order.StatusCancelled, reason, now)
}

// SetEstimatedReady moves the estimated ready time to now plus minutes.
func SetEstimatedReady(o *order.Order, minutes int, now time.Time) error {
	if minutes <= 0 {
		return apperr.Validation("minutes must be a positive integer")
	}
	o.EstimatedReadyAt = now.Add(time.Duration(minutes) * time.Minute)
	o.UpdatedAt = now
	return nil
}
