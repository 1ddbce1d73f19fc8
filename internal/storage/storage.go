package storage

import (
	"context"

	"github.com/antonminaichev/foodorder/internal/menu"
	"github.com/antonminaichev/foodorder/internal/order"
	"github.com/antonminaichev/foodorder/internal/user"
)

// Storage is the durable store behind every service.
type Storage interface {
	user.UserRepository
	menu.MenuRepository
	order.OrderRepository

	Ping(ctx context.Context) error
	Close() error
}
