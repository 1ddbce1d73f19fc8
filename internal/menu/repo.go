package menu

import (
	"context"

	"github.com/antonminaichev/foodorder/internal/types/menu"
)

// MenuRepository is the durable catalog. Absent items are reported with
// apperr.ErrNotFound.
type MenuRepository interface {
	CreateMenuItem(ctx context.Context, it *menu.Item) error
	FindMenuItem(ctx context.Context, id string) (*menu.Item, error)
	ListMenuItems(ctx context.Context, f menu.Filter) ([]menu.Item, error)
	ListCategories(ctx context.Context) ([]string, error)
	UpdateMenuItem(ctx context.Context, it *menu.Item) error
	DeleteMenuItem(ctx context.Context, id string) error
}

// Cache holds single items by id. A miss is reported with apperr.ErrNotFound.
type Cache interface {
	GetMenuItem(ctx context.Context, id string) (*menu.Item, error)
	SetMenuItem(ctx context.Context, it *menu.Item) error
	InvalidateMenuItem(ctx context.Context, id string) error
}
