package order

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/antonminaichev/foodorder/internal/apperr"
	"github.com/antonminaichev/foodorder/internal/types/menu"
	"github.com/antonminaichev/foodorder/internal/types/order"
)

var (
	DefaultTaxRate     = decimal.RequireFromString("0.18")
	DefaultTakeawayFee = decimal.NewFromInt(40)
)

// Policy holds the pricing constants applied to every order.
type Policy struct {
	TaxRate     decimal.Decimal
	TakeawayFee decimal.Decimal
}

func DefaultPolicy() Policy {
	return Policy{TaxRate: DefaultTaxRate, TakeawayFee: DefaultTakeawayFee}
}

// Catalog resolves menu items by id. Absent items are reported with
// apperr.ErrNotFound.
type Catalog interface {
	FindByID(ctx context.Context, id string) (*menu.Item, error)
}

type LineRequest struct {
	MenuItemID   string   `json:"menuItemId" validate:"required"`
	Quantity     int      `json:"quantity"`
	Options      []string `json:"options,omitempty" validate:"max=20"`
	Instructions string   `json:"specialInstructions,omitempty" validate:"max=500"`
}

// PriceLines resolves each request against the catalog and snapshots the
// current name and price into the line.
func PriceLines(ctx context.Context, catalog Catalog, reqs []LineRequest) ([]order.Line, error) {
	if len(reqs) == 0 {
		return nil, apperr.Validation("order items are required")
	}
	lines := make([]order.Line, 0, len(reqs))
	for _, req := range reqs {
		if req.Quantity < 1 {
			return nil, &apperr.ItemError{Kind: apperr.ErrValidation, ItemID: req.MenuItemID, Reason: "quantity must be a positive integer"}
		}
		item, err := catalog.FindByID(ctx, req.MenuItemID)
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, &apperr.ItemError{Kind: apperr.ErrValidation, ItemID: req.MenuItemID, Reason: "menu item not found"}
		}
		if err != nil {
			return nil, err
		}
		if !item.IsAvailable {
			return nil, &apperr.ItemError{Kind: apperr.ErrValidation, ItemID: item.ID, Name: item.Name, Reason: "menu item is not available"}
		}

		options := req.Options
		if options == nil {
			options = []string{}
		}
		lines = append(lines, order.Line{
			MenuItemID:   item.ID,
			Name:         item.Name,
			Quantity:     req.Quantity,
			UnitPrice:    item.Price,
			Total:        item.Price.Mul(decimal.NewFromInt(int64(req.Quantity))),
			Options:      options,
			Instructions: req.Instructions,
		})
	}
	return lines, nil
}

// DeliveryFee is the flat fee for takeaway orders and zero otherwise.
func (p Policy) DeliveryFee(t order.Type) decimal.Decimal {
	if t == order.TypeTakeaway {
		return p.TakeawayFee
	}
	return decimal.Zero
}

// Totals prices a set of lines. It has no side effects.
func (p Policy) Totals(lines []order.Line, t order.Type, discount decimal.Decimal) order.Totals {
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.Total)
	}
	return p.totals(subtotal, p.DeliveryFee(t), discount)
}

func (p Policy) totals(subtotal, fee, discount decimal.Decimal) order.Totals {
	tax := subtotal.Mul(p.TaxRate).Round(2)
	total := subtotal.Add(tax).Add(fee).Sub(discount).Round(2)
	return order.Totals{
		Subtotal:    subtotal.Round(2),
		Tax:         tax,
		DeliveryFee: fee,
		Discount:    discount,
		Total:       total,
	}
}

// Apply stores t on o. Every pricing field of an order is written here and
// nowhere else.
func Apply(o *order.Order, t order.Totals) {
	o.Subtotal = t.Subtotal
	o.Tax = t.Tax
	o.DeliveryFee = t.DeliveryFee
	o.Discount = t.Discount
	o.Total = t.Total
}

// MinorUnits converts an amount to the smallest currency unit (paise, cents).
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}
