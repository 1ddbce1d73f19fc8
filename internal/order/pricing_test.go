package order

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/antonminaichev/foodorder/internal/apperr"
	"github.com/antonminaichev/foodorder/internal/types/menu"
	"github.com/antonminaichev/foodorder/internal/types/order"
)

type stubCatalog struct {
	items map[string]*menu.Item
	err   error
}

func newStubCatalog(items ...menu.Item) *stubCatalog {
	c := &stubCatalog{items: make(map[string]*menu.Item)}
	for i := range items {
		c.items[items[i].ID] = &items[i]
	}
	return c
}

func (c *stubCatalog) FindByID(ctx context.Context, id string) (*menu.Item, error) {
	if c.err != nil {
		return nil, c.err
	}
	it, ok := c.items[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	cp := *it
	return &cp, nil
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

var (
	burger = menu.Item{ID: "burger", Name: "McAloo Tikki", Price: dec("129"), Category: "Burgers", IsAvailable: true}
	wrap   = menu.Item{ID: "wrap", Name: "Chicken Wrap", Price: dec("199"), Category: "Wraps", IsAvailable: true}
	shake  = menu.Item{ID: "shake", Name: "Mango Shake", Price: dec("99.50"), Category: "Drinks", IsAvailable: false}
)

func TestPriceLines_SnapshotsCatalogPrice(t *testing.T) {
	cat := newStubCatalog(burger, wrap)

	lines, err := PriceLines(context.Background(), cat, []LineRequest{
		{MenuItemID: "burger", Quantity: 2, Options: []string{"Size: Large"}},
		{MenuItemID: "wrap", Quantity: 1, Instructions: "no onions"},
	})
	require.NoError(t, err)
	require.Len(t, lines, 2)

	assert.Equal(t, "McAloo Tikki", lines[0].Name)
	assert.True(t, lines[0].UnitPrice.Equal(dec("129")))
	assert.True(t, lines[0].Total.Equal(dec("258")))
	assert.Equal(t, []string{"Size: Large"}, lines[0].Options)
	assert.Equal(t, "no onions", lines[1].Instructions)
	assert.NotNil(t, lines[1].Options)

	cat.items["burger"].Price = dec("500")
	assert.True(t, lines[0].UnitPrice.Equal(dec("129")))
}

func TestPriceLines_Errors(t *testing.T) {
	cat := newStubCatalog(burger, shake)

	tests := []struct {
		name     string
		reqs     []LineRequest
		wantItem string
	}{
		{"empty", nil, ""},
		{"unknown item", []LineRequest{{MenuItemID: "ghost", Quantity: 1}}, "ghost"},
		{"unavailable item", []LineRequest{{MenuItemID: "shake", Quantity: 1}}, "Mango Shake"},
		{"zero quantity", []LineRequest{{MenuItemID: "burger", Quantity: 0}}, "burger"},
		{"negative quantity", []LineRequest{{MenuItemID: "burger", Quantity: -3}}, "burger"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines, err := PriceLines(context.Background(), cat, tt.reqs)
			assert.Nil(t, lines)
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperr.ErrValidation))
			assert.Contains(t, err.Error(), tt.wantItem)
		})
	}
}

func TestPriceLines_CatalogFailure(t *testing.T) {
	cat := &stubCatalog{err: errors.New("redis: connection pool timeout")}

	_, err := PriceLines(context.Background(), cat, []LineRequest{{MenuItemID: "burger", Quantity: 1}})
	assert.Error(t, err)
	assert.False(t, errors.Is(err, apperr.ErrValidation))
}

func TestTotals_TakeawayScenario(t *testing.T) {
	lines, err := PriceLines(context.Background(), newStubCatalog(burger, wrap), []LineRequest{
		{MenuItemID: "burger", Quantity: 2},
		{MenuItemID: "wrap", Quantity: 1},
	})
	require.NoError(t, err)

	got := DefaultPolicy().Totals(lines, order.TypeTakeaway, decimal.Zero)

	assert.Equal(t, "457", got.Subtotal.String())
	assert.Equal(t, "82.26", got.Tax.String())
	assert.Equal(t, "40", got.DeliveryFee.String())
	assert.Equal(t, "579.26", got.Total.String())
}

func TestTotals_DineInHasNoFee(t *testing.T) {
	lines := []order.Line{{Quantity: 1, UnitPrice: dec("100"), Total: dec("100")}}

	got := DefaultPolicy().Totals(lines, order.TypeDineIn, dec("10"))

	assert.True(t, got.DeliveryFee.IsZero())
	assert.Equal(t, "18", got.Tax.String())
	assert.Equal(t, "108", got.Total.String())
}

func TestTotals_Properties(t *testing.T) {
	policy := DefaultPolicy()
	prices := []string{"0.01", "1.99", "12.345", "129", "199.99", "1000"}

	for qty := 1; qty <= 5; qty++ {
		for _, p := range prices {
			for _, typ := range []order.Type{order.TypeDineIn, order.TypeTakeaway} {
				price := dec(p)
				lines := []order.Line{
					{Quantity: qty, UnitPrice: price, Total: price.Mul(decimal.NewFromInt(int64(qty)))},
					{Quantity: 1, UnitPrice: dec("49"), Total: dec("49")},
				}
				discount := dec("5")
				got := policy.Totals(lines, typ, discount)

				sum := decimal.Zero
				for _, l := range lines {
					sum = sum.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
				}
				assert.True(t, got.Subtotal.Equal(sum.Round(2)), "subtotal %s != %s", got.Subtotal, sum)

				want := got.Subtotal.Add(got.Tax).Sub(discount).Add(got.DeliveryFee).Round(2)
				assert.True(t, got.Total.Equal(want), "total %s != %s", got.Total, want)
			}
		}
	}
}

func TestMinorUnits(t *testing.T) {
	assert.Equal(t, int64(57926), MinorUnits(dec("579.26")))
	assert.Equal(t, int64(4000), MinorUnits(dec("40")))
	assert.Equal(t, int64(13), MinorUnits(dec("0.125")))
}

func TestPriceLines_MalformedItemID(t *testing.T) {
	_, err := PriceLines(context.Background(), newStubCatalog(burger), []LineRequest{
		{MenuItemID: "burger", Quantity: 1},
		{MenuItemID: "abc", Quantity: 1},
	})

	var itemErr *apperr.ItemError
	require.True(t, errors.As(err, &itemErr))
	assert.Equal(t, "abc", itemErr.ItemID)
	assert.ErrorIs(t, err, apperr.ErrValidation)
	assert.Contains(t, err.Error(), "abc")
}
