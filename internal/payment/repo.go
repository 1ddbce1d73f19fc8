package payment

import (
	"context"

	"github.com/antonminaichev/foodorder/internal/types/order"
)

// OrderRepository is the slice of order storage payments need.
type OrderRepository interface {
	FindOrderByID(ctx context.Context, id string) (*order.Order, error)
	FindOrderByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*order.Order, error)
	UpdateOrder(ctx context.Context, o *order.Order) error
}
