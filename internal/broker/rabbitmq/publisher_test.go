package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/antonminaichev/foodorder/internal/events"
)

type mockChannel struct {
	mock.Mock
}

func (m *mockChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	args := m.Called(ctx, exchange, key, mandatory, immediate, msg)
	return args.Error(0)
}

func (m *mockChannel) Close() error {
	return m.Called().Error(0)
}

func TestPublisher_Publish(t *testing.T) {
	ch := new(mockChannel)
	evt := events.Event{
		Type:        events.OrderCreated,
		OrderID:     "7f1b",
		OrderNumber: "MC-20240101-1234",
		Status:      "Processing",
		OccurredAt:  time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
	}

	ch.On("PublishWithContext", mock.Anything, "orders", events.OrderCreated, false, false,
		mock.MatchedBy(func(msg amqp.Publishing) bool {
			var got events.Event
			if err := json.Unmarshal(msg.Body, &got); err != nil {
				return false
			}
			return msg.DeliveryMode == amqp.Persistent &&
				msg.ContentType == "application/json" &&
				msg.MessageId != "" &&
				got.OrderNumber == evt.OrderNumber
		})).Return(nil)

	p := newPublisherWithChannel(ch, "orders")
	require.NoError(t, p.Publish(context.Background(), evt))
	ch.AssertExpectations(t)
}

func TestPublisher_PublishError(t *testing.T) {
	ch := new(mockChannel)
	ch.On("PublishWithContext", mock.Anything, "orders", events.PaymentPaid, false, false, mock.Anything).
		Return(errors.New("channel/connection is not open"))

	p := newPublisherWithChannel(ch, "orders")
	err := p.Publish(context.Background(), events.Event{Type: events.PaymentPaid})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "payment.paid")
}
