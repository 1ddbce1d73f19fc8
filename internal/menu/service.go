// Package menu serves the catalog: public listings and lookups backed by a
// read-through cache, and staff maintenance of items.
package menu

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/antonminaichev/foodorder/internal/apperr"
	"github.com/antonminaichev/foodorder/internal/logger"
	"github.com/antonminaichev/foodorder/internal/types/menu"
	"github.com/antonminaichev/foodorder/internal/validate"
)

// ItemInput is the editable part of a menu item. IsAvailable defaults to
// true when omitted.
type ItemInput struct {
	Name         string          `json:"name" validate:"required,max=120"`
	Description  string          `json:"description" validate:"required,max=2000"`
	Price        decimal.Decimal `json:"price"`
	Category     string          `json:"category" validate:"required,max=60"`
	Image        string          `json:"image" validate:"required,max=500"`
	Size         string          `json:"size" validate:"max=60"`
	Allergens    string          `json:"allergens" validate:"max=500"`
	Ingredients  string          `json:"ingredients" validate:"max=2000"`
	IsVegetarian bool            `json:"isVegetarian"`
	IsSpicy      bool            `json:"isSpicy"`
	IsPopular    bool            `json:"isPopular"`
	IsAvailable  *bool           `json:"isAvailable"`
}

func (in ItemInput) validate() error {
	if err := validate.Struct(in); err != nil {
		return err
	}
	if !in.Price.IsPositive() {
		return apperr.Validation("Price must be greater than 0")
	}
	if in.Price.Exponent() < -2 {
		return apperr.Validation("Price must have at most 2 decimal places")
	}
	return nil
}

func (in ItemInput) applyTo(it *menu.Item) {
	it.Name = in.Name
	it.Description = in.Description
	it.Price = in.Price
	it.Category = in.Category
	it.Image = in.Image
	it.Size = in.Size
	it.Allergens = in.Allergens
	it.Ingredients = in.Ingredients
	it.IsVegetarian = in.IsVegetarian
	it.IsSpicy = in.IsSpicy
	it.IsPopular = in.IsPopular
	it.IsAvailable = in.IsAvailable == nil || *in.IsAvailable
}

type Service struct {
	repo  MenuRepository
	cache Cache
	now   func() time.Time
}

// NewService wires the catalog. cache may be nil.
func NewService(repo MenuRepository, cache Cache) *Service {
	if cache == nil {
		cache = noCache{}
	}
	return &Service{repo: repo, cache: cache, now: time.Now}
}

// FindByID returns any item, available or not. Cache failures are logged
// and fall through to the repository.
func (s *Service) FindByID(ctx context.Context, id string) (*menu.Item, error) {
	it, err := s.cache.GetMenuItem(ctx, id)
	if err == nil {
		return it, nil
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		logger.Log.Warn("menu cache read failed", zap.String("item_id", id), zap.Error(err))
	}

	it, err = s.repo.FindMenuItem(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.cache.SetMenuItem(ctx, it); err != nil {
		logger.Log.Warn("menu cache write failed", zap.String("item_id", id), zap.Error(err))
	}
	return it, nil
}

// FindAvailable lists available items matching f, by category then name.
func (s *Service) FindAvailable(ctx context.Context, f menu.Filter) ([]menu.Item, error) {
	items, err := s.repo.ListMenuItems(ctx, f)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []menu.Item{}
	}
	return items, nil
}

func (s *Service) Categories(ctx context.Context) ([]string, error) {
	cats, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	if cats == nil {
		cats = []string{}
	}
	return cats, nil
}

func (s *Service) Create(ctx context.Context, in ItemInput) (*menu.Item, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	it := &menu.Item{ID: uuid.NewString(), CreatedAt: s.now().UTC()}
	in.applyTo(it)
	if err := s.repo.CreateMenuItem(ctx, it); err != nil {
		return nil, err
	}
	logger.Log.Info("menu item created", zap.String("item_id", it.ID), zap.String("name", it.Name))
	return it, nil
}

func (s *Service) Update(ctx context.Context, id string, in ItemInput) (*menu.Item, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	it, err := s.repo.FindMenuItem(ctx, id)
	if err != nil {
		return nil, err
	}
	in.applyTo(it)
	if err := s.repo.UpdateMenuItem(ctx, it); err != nil {
		return nil, err
	}
	s.invalidate(ctx, id)
	logger.Log.Info("menu item updated", zap.String("item_id", id), zap.Bool("available", it.IsAvailable))
	return it, nil
}

// Delete removes the item for good. Orders keep their own snapshot of it.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.DeleteMenuItem(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	logger.Log.Info("menu item deleted", zap.String("item_id", id))
	return nil
}

func (s *Service) invalidate(ctx context.Context, id string) {
	if err := s.cache.InvalidateMenuItem(ctx, id); err != nil {
		logger.Log.Warn("menu cache invalidation failed", zap.String("item_id", id), zap.Error(err))
	}
}

type noCache struct{}

func (noCache) GetMenuItem(context.Context, string) (*menu.Item, error) {
	return nil, apperr.ErrNotFound
}
func (noCache) SetMenuItem(context.Context, *menu.Item) error    { return nil }
func (noCache) InvalidateMenuItem(context.Context, string) error { return nil }
