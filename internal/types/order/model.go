package order

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusProcessing Status = "Processing"
	StatusPreparing  Status = "Preparing"
	StatusReady      Status = "Ready"
	StatusCompleted  Status = "Completed"
	StatusDelivered  Status = "Delivered"
	StatusCancelled  Status = "Cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusProcessing, StatusPreparing, StatusReady, StatusCompleted, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// Cancellable reports whether an order in status s may still be cancelled.
func (s Status) Cancellable() bool {
	return s == StatusProcessing || s == StatusPreparing
}

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "Pending"
	PaymentPaid     PaymentStatus = "Paid"
	PaymentFailed   PaymentStatus = "Failed"
	PaymentRefunded PaymentStatus = "Refunded"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentPaid, PaymentFailed, PaymentRefunded:
		return true
	}
	return false
}

type Type string

const (
	TypeDineIn   Type = "Dine-In"
	TypeTakeaway Type = "Takeaway"
)

func (t Type) Valid() bool { return t == TypeDineIn || t == TypeTakeaway }

type PaymentMethod string

const (
	MethodCard PaymentMethod = "Card"
	MethodUPI  PaymentMethod = "UPI"
	MethodCash PaymentMethod = "Cash"
)

func (m PaymentMethod) Valid() bool {
	return m == MethodCard || m == MethodUPI || m == MethodCash
}

// Line is a priced order line. Name and UnitPrice are copied from the
// catalog when the order is created and never refreshed.
type Line struct {
	MenuItemID   string          `json:"menuItemId"`
	Name         string          `json:"name"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"price"`
	Total        decimal.Decimal `json:"totalPrice"`
	Options      []string        `json:"options"`
	Instructions string          `json:"specialInstructions"`
}

type StatusEntry struct {
	Status    Status    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Note      string    `json:"note"`
}

type PaymentDetails struct {
	GatewayOrderID string    `json:"gatewayOrderId"`
	PaymentID      string    `json:"paymentId,omitempty"`
	Provider       string    `json:"provider"`
	Method         string    `json:"method"`
	Timestamp      time.Time `json:"timestamp"`
}

type Order struct {
	ID               string          `db:"id" json:"id"`
	UserID           int64           `db:"user_id" json:"userId"`
	Number           string          `db:"number" json:"orderNumber"`
	Lines            []Line          `db:"items" json:"items"`
	Subtotal         decimal.Decimal `db:"subtotal" json:"subtotal"`
	Tax              decimal.Decimal `db:"tax" json:"tax"`
	DeliveryFee      decimal.Decimal `db:"delivery_fee" json:"deliveryFee"`
	Discount         decimal.Decimal `db:"discount" json:"discount"`
	Total            decimal.Decimal `db:"total" json:"total"`
	PromoCode        string          `db:"promo_code" json:"promoCodeUsed,omitempty"`
	Type             Type            `db:"order_type" json:"orderType"`
	PaymentMethod    PaymentMethod   `db:"payment_method" json:"paymentMethod"`
	PaymentStatus    PaymentStatus   `db:"payment_status" json:"paymentStatus"`
	Status           Status          `db:"status" json:"status"`
	History          []StatusEntry   `db:"status_history" json:"statusHistory"`
	Address          string          `db:"address" json:"address"`
	Notes            string          `db:"customer_notes" json:"customerNotes"`
	Payment          *PaymentDetails `db:"payment" json:"paymentDetails,omitempty"`
	EstimatedReadyAt time.Time       `db:"estimated_ready_at" json:"estimatedDeliveryTime"`
	CreatedAt        time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt        time.Time       `db:"updated_at" json:"updatedAt"`
}

// Totals is the priced summary of a set of lines.
type Totals struct {
	Subtotal    decimal.Decimal `json:"subtotal"`
	Tax         decimal.Decimal `json:"tax"`
	DeliveryFee decimal.Decimal `json:"deliveryFee"`
	Discount    decimal.Decimal `json:"discount"`
	Total       decimal.Decimal `json:"total"`
}

// Filter selects orders for listing. Zero values match everything. From is
// inclusive and To exclusive; results are ordered by creation time, newest
// first.
type Filter struct {
	UserID int64
	Number string
	Status Status
	From   time.Time
	To     time.Time
	Limit  int
	Offset int
}

type Modifier struct {
	Name            string          `json:"name"`
	Choice          string          `json:"choice"`
	PriceAdjustment decimal.Decimal `json:"priceAdjustment"`
}

type CartLine struct {
	MenuItemID   string          `json:"menuItemId"`
	Name         string          `json:"name"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"price"`
	Modifiers    []Modifier      `json:"options"`
	Instructions string          `json:"specialInstructions"`
}

// Cart is a user's pending, not yet submitted selection.
type Cart struct {
	UserID      int64           `json:"userId"`
	Type        Type            `json:"orderType"`
	Lines       []CartLine      `json:"items"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	DeliveryFee decimal.Decimal `json:"deliveryFee"`
	Discount    decimal.Decimal `json:"discount"`
	PromoCode   string          `json:"promoCode,omitempty"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}
