package menu

import (
	"time"

	"github.com/shopspring/decimal"
)

type Item struct {
	ID           string          `db:"id" json:"id"`
	Name         string          `db:"name" json:"name"`
	Description  string          `db:"description" json:"description"`
	Price        decimal.Decimal `db:"price" json:"price"`
	Category     string          `db:"category" json:"category"`
	Image        string          `db:"image" json:"image"`
	Size         string          `db:"size" json:"size,omitempty"`
	Allergens    string          `db:"allergens" json:"allergens,omitempty"`
	Ingredients  string          `db:"ingredients" json:"ingredients,omitempty"`
	IsVegetarian bool            `db:"is_vegetarian" json:"isVegetarian"`
	IsSpicy      bool            `db:"is_spicy" json:"isSpicy"`
	IsPopular    bool            `db:"is_popular" json:"isPopular"`
	IsAvailable  bool            `db:"is_available" json:"isAvailable"`
	CreatedAt    time.Time       `db:"created_at" json:"createdAt"`
}

// Filter narrows a listing of available items. Zero values match everything.
type Filter struct {
	Category       string
	VegetarianOnly bool
	PopularOnly    bool
}
