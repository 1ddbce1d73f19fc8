//go:build integration

package storage

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/antonminaichev/foodorder/internal/apperr"
	"github.com/antonminaichev/foodorder/internal/types/order"
	"github.com/antonminaichev/foodorder/internal/types/user"
)

// Run with: DATABASE_URI=postgres://... go test -tags integration ./internal/storage/postgres
func newIntegrationStorage(t *testing.T) *PostgresStorage {
	t.Helper()
	dsn := os.Getenv("DATABASE_URI")
	if dsn == "" {
		t.Skip("DATABASE_URI is not set")
	}
	s, err := NewPostgresStorage(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOrderLifecycleRoundTrip(t *testing.T) {
	s := newIntegrationStorage(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	u := &user.User{Login: "it-" + uuid.NewString(), PasswordHash: "x", CreatedAt: now}
	require.NoError(t, s.Create(ctx, u))

	o := &order.Order{
		ID:               uuid.NewString(),
		UserID:           u.ID,
		Number:           "MC-20240314-4821",
		Lines:            []order.Line{{MenuItemID: uuid.NewString(), Name: "Fries", Quantity: 1, UnitPrice: decimal.NewFromInt(99), Total: decimal.NewFromInt(99), Options: []string{}}},
		Subtotal:         decimal.NewFromInt(99),
		Tax:              decimal.RequireFromString("17.82"),
		DeliveryFee:      decimal.Zero,
		Discount:         decimal.Zero,
		Total:            decimal.RequireFromString("116.82"),
		Type:             order.TypeDineIn,
		PaymentMethod:    order.MethodCard,
		PaymentStatus:    order.PaymentPending,
		Status:           order.StatusProcessing,
		History:          []order.StatusEntry{{Status: order.StatusProcessing, Timestamp: now, Note: "Order placed"}},
		EstimatedReadyAt: now.Add(30 * time.Minute),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	require.NoError(t, s.CreateOrder(ctx, o))

	o.Status = order.StatusPreparing
	o.History = append(o.History, order.StatusEntry{Status: order.StatusPreparing, Timestamp: now, Note: "cooking"})
	o.Payment = &order.PaymentDetails{GatewayOrderID: "order_" + o.ID[:8], Provider: "razorpay", Method: "Card", Timestamp: now}
	require.NoError(t, s.UpdateOrder(ctx, o))

	got, err := s.FindOrderByGatewayOrderID(ctx, o.Payment.GatewayOrderID)
	require.NoError(t, err)
	assert.Equal(t, o.ID, got.ID)
	assert.Equal(t, order.StatusPreparing, got.Status)
	require.Len(t, got.History, 2)
	assert.Equal(t, "cooking", got.History[1].Note)
	assert.True(t, got.Total.Equal(o.Total))

	page, total, err := s.ListOrders(ctx, order.Filter{UserID: u.ID, Status: order.StatusPreparing, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, page, 1)

	_, err = s.FindOrderByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
