package order

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/antonminaichev/foodorder/internal/apperr"
	"github.com/antonminaichev/foodorder/internal/logger"
	"github.com/antonminaichev/foodorder/internal/types/order"
)

// Reorder replaces the caller's cart with the lines of a previous order,
// priced at today's menu. Nothing is stored unless every item can still be
// ordered.
func (s *Service) Reorder(ctx context.Context, userID int64, orderID string) (*order.Cart, error) {
	orig, err := s.GetOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}

	cart := &order.Cart{
		UserID:      userID,
		Type:        orig.Type,
		Lines:       make([]order.CartLine, 0, len(orig.Lines)),
		Subtotal:    decimal.Zero,
		DeliveryFee: s.policy.DeliveryFee(orig.Type),
		Discount:    decimal.Zero,
		UpdatedAt:   s.now().UTC(),
	}
	for _, l := range orig.Lines {
		item, err := s.catalog.FindByID(ctx, l.MenuItemID)
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, &apperr.ItemError{Kind: apperr.ErrItemUnavailable, ItemID: l.MenuItemID, Name: l.Name, Reason: "no longer on the menu"}
		}
		if err != nil {
			return nil, err
		}
		if !item.IsAvailable {
			return nil, &apperr.ItemError{Kind: apperr.ErrItemUnavailable, ItemID: item.ID, Name: item.Name, Reason: "currently unavailable"}
		}

		mods := make([]order.Modifier, 0, len(l.Options))
		for _, opt := range l.Options {
			mods = append(mods, parseModifier(opt))
		}
		cart.Lines = append(cart.Lines, order.CartLine{
			MenuItemID:   item.ID,
			Name:         item.Name,
			Quantity:     l.Quantity,
			UnitPrice:    item.Price,
			Modifiers:    mods,
			Instructions: l.Instructions,
		})
		cart.Subtotal = cart.Subtotal.Add(item.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	if orig.PromoCode != "" {
		cart.PromoCode = orig.PromoCode
		cart.Discount = orig.Discount
	}

	if err := s.carts.SaveCart(ctx, cart); err != nil {
		return nil, err
	}
	logger.Log.Info("cart rebuilt from order",
		zap.String("order_id", orig.ID),
		zap.Int64("user_id", userID),
		zap.Int("lines", len(cart.Lines)),
	)
	return cart, nil
}

// parseModifier reads a "name: choice" option string. The price adjustment
// is not kept on orders and comes back as zero.
func parseModifier(opt string) order.Modifier {
	name, choice, _ := strings.Cut(opt, ":")
	return order.Modifier{
		Name:            strings.TrimSpace(name),
		Choice:          strings.TrimSpace(choice),
		PriceAdjustment: decimal.Zero,
	}
}
