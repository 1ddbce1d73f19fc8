package order

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/antonminaichev/foodorder/internal/apperr"
	"github.com/antonminaichev/foodorder/internal/types/order"
)

var t0 = time.Date(2024, 3, 14, 12, 0, 0, 0, time.UTC)

func newOrder(status order.Status, pay order.PaymentStatus) *order.Order {
	return &order.Order{
		ID:            "o-1",
		UserID:        7,
		Status:        status,
		PaymentStatus: pay,
		History:       []order.StatusEntry{{Status: status, Timestamp: t0}},
	}
}

var allStatuses = []order.Status{
	order.StatusProcessing,
	order.StatusPreparing,
	order.StatusReady,
	order.StatusCompleted,
	order.StatusDelivered,
	order.StatusCancelled,
}

func TestTransition_AppendsOneEntryPerChange(t *testing.T) {
	o := newOrder(order.StatusProcessing, order.PaymentPending)
	path := []order.Status{order.StatusPreparing, order.StatusReady, order.StatusPreparing, order.StatusReady, order.StatusDelivered}

	for i, s := range path {
		now := t0.Add(time.Duration(i+1) * time.Minute)
		require.NoError(t, Transition(o, s, "step", now))
		assert.Len(t, o.History, i+2)
		last := o.History[len(o.History)-1]
		assert.Equal(t, s, last.Status)
		assert.Equal(t, now, last.Timestamp)
		assert.Equal(t, "step", last.Note)
	}
	assert.Equal(t, order.StatusDelivered, o.Status)
}

func TestTransition_UnknownStatus(t *testing.T) {
	o := newOrder(order.StatusProcessing, order.PaymentPending)

	err := Transition(o, order.Status("Shipped"), "", t0)

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrInvalidStatus))
	assert.True(t, errors.Is(err, apperr.ErrInvalidTransition))
	assert.Len(t, o.History, 1)
	assert.Equal(t, order.StatusProcessing, o.Status)
}

func TestTransition_SettlesPendingPayment(t *testing.T) {
	for _, s := range []order.Status{order.StatusCompleted, order.StatusDelivered} {
		t.Run(string(s), func(t *testing.T) {
			o := newOrder(order.StatusReady, order.PaymentPending)
			require.NoError(t, Transition(o, s, "", t0))
			assert.Equal(t, order.PaymentPaid, o.PaymentStatus)
		})
	}

	o := newOrder(order.StatusReady, order.PaymentFailed)
	require.NoError(t, Transition(o, order.StatusCompleted, "", t0))
	assert.Equal(t, order.PaymentFailed, o.PaymentStatus)

	o = newOrder(order.StatusPreparing, order.PaymentPending)
	require.NoError(t, Transition(o, order.StatusReady, "", t0))
	assert.Equal(t, order.PaymentPending, o.PaymentStatus)
}

func TestCancel_AllowedOnlyBeforeReady(t *testing.T) {
	for _, s := range allStatuses {
		t.Run(string(s), func(t *testing.T) {
			o := newOrder(s, order.PaymentPending)
			err := Cancel(o, "", t0)

			if s == order.StatusProcessing || s == order.StatusPreparing {
				require.NoError(t, err)
				assert.Equal(t, order.StatusCancelled, o.Status)
				assert.Len(t, o.History, 2)
				assert.Equal(t, "Cancelled by customer", o.History[1].Note)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperr.ErrInvalidTransition))
			assert.Equal(t, s, o.Status)
			assert.Len(t, o.History, 1)
		})
	}
}

func TestCancel_RefundsPaidOrder(t *testing.T) {
	o := newOrder(order.StatusPreparing, order.PaymentPaid)

	require.NoError(t, Cancel(o, "changed my mind", t0))

	assert.Equal(t, order.PaymentRefunded, o.PaymentStatus)
	assert.Equal(t, "changed my mind", o.History[1].Note)
}

func TestCancel_PendingPaymentUntouched(t *testing.T) {
	o := newOrder(order.StatusProcessing, order.PaymentPending)

	require.NoError(t, Cancel(o, "", t0))

	assert.Equal(t, order.PaymentPending, o.PaymentStatus)
}

func TestTransition_ToCancelledFollowsCancelRule(t *testing.T) {
	o := newOrder(order.StatusReady, order.PaymentPaid)

	err := Transition(o, order.StatusCancelled, "kitchen closed", t0)

	assert.True(t, errors.Is(err, apperr.ErrInvalidTransition))
	assert.Equal(t, order.PaymentPaid, o.PaymentStatus)
}

func TestSetPaymentStatus(t *testing.T) {
	o := newOrder(order.StatusProcessing, order.PaymentPending)

	require.NoError(t, SetPaymentStatus(o, order.PaymentFailed, t0))
	assert.Equal(t, order.PaymentFailed, o.PaymentStatus)

	err := SetPaymentStatus(o, order.PaymentStatus("Chargeback"), t0)
	assert.True(t, errors.Is(err, apperr.ErrInvalidPaymentStatus))
	assert.Equal(t, order.PaymentFailed, o.PaymentStatus)
}

func TestSetEstimatedReady(t *testing.T) {
	o := newOrder(order.StatusPreparing, order.PaymentPending)

	require.NoError(t, SetEstimatedReady(o, 45, t0))
	assert.Equal(t, t0.Add(45*time.Minute), o.EstimatedReadyAt)

	for _, m := range []int{0, -5} {
		err := SetEstimatedReady(o, m, t0)
		assert.True(t, errors.Is(err, apperr.ErrValidation))
	}
	assert.Equal(t, t0.Add(45*time.Minute), o.EstimatedReadyAt)
}
