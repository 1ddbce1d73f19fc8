package order

import (
	"context"

	"github.com/antonminaichev/foodorder/internal/types/order"
)

// OrderRepository stores orders. Lookups of absent orders report
// apperr.ErrNotFound. UpdateOrder overwrites the whole record.
type OrderRepository interface {
	CreateOrder(ctx context.Context, o *order.Order) error
	FindOrderByID(ctx context.Context, id string) (*order.Order, error)
	FindOrderByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*order.Order, error)
	UpdateOrder(ctx context.Context, o *order.Order) error
	ListOrders(ctx context.Context, f order.Filter) ([]order.Order, int, error)
}

// CartStore keeps one pending cart per user.
type CartStore interface {
	SaveCart(ctx context.Context, c *order.Cart) error
	GetCart(ctx context.Context, userID int64) (*order.Cart, error)
}
