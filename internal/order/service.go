package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/antonminaichev/foodorder/internal/apperr"
	"github.com/antonminaichev/foodorder/internal/events"
	"github.com/antonminaichev/foodorder/internal/logger"
	"github.com/antonminaichev/foodorder/internal/types/order"
	"github.com/antonminaichev/foodorder/internal/util/ordernum"
	"github.com/antonminaichev/foodorder/internal/validate"
)

const (
	DefaultReadyIn     = 30 * time.Minute
	defaultPageLimit   = 10
	maxPageLimit       = 100
	defaultRecentLimit = 5
)

type CreateRequest struct {
	Type          order.Type          `json:"orderType" validate:"required,oneof=Dine-In Takeaway"`
	PaymentMethod order.PaymentMethod `json:"paymentMethod" validate:"required,oneof=Card UPI Cash"`
	Address       string              `json:"address" validate:"max=500"`
	Notes         string              `json:"customerNotes" validate:"max=1000"`
	Items         []LineRequest       `json:"items" validate:"required,min=1,dive"`
}

// ListQuery selects a page of orders. Page is 1-based.
type ListQuery struct {
	Status order.Status
	Number string
	From   time.Time
	To     time.Time
	Page   int
	Limit  int
}

type Pagination struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Pages int `json:"pages"`
}

type Page struct {
	Orders     []order.Order `json:"orders"`
	Pagination Pagination    `json:"pagination"`
}

type Config struct {
	Policy  Policy
	ReadyIn time.Duration
}

type Service struct {
	repo    OrderRepository
	catalog Catalog
	carts   CartStore
	events  events.Notifier
	policy  Policy
	readyIn time.Duration
	now     func() time.Time
}

func NewService(r OrderRepository, catalog Catalog, carts CartStore, n events.Notifier, cfg Config) *Service {
	if cfg.ReadyIn <= 0 {
		cfg.ReadyIn = DefaultReadyIn
	}
	if n == nil {
		n = events.Discard
	}
	return &Service{
		repo:    r,
		catalog: catalog,
		carts:   carts,
		events:  n,
		policy:  cfg.Policy,
		readyIn: cfg.ReadyIn,
		now:     time.Now,
	}
}

func (s *Service) CreateOrder(ctx context.Context, userID int64, req CreateRequest) (*order.Order, error) {
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	lines, err := PriceLines(ctx, s.catalog, req.Items)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	o := &order.Order{
		ID:               uuid.NewString(),
		UserID:           userID,
		Number:           ordernum.Generate(now),
		Lines:            lines,
		Type:             req.Type,
		PaymentMethod:    req.PaymentMethod,
		PaymentStatus:    order.PaymentPending,
		Status:           order.StatusProcessing,
		History:          []order.StatusEntry{{Status: order.StatusProcessing, Timestamp: now, Note: "Order placed"}},
		Address:          req.Address,
		Notes:            req.Notes,
		EstimatedReadyAt: now.Add(s.readyIn),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	Apply(o, s.policy.Totals(lines, req.Type, decimal.Zero))

	if err := s.repo.CreateOrder(ctx, o); err != nil {
		return nil, err
	}
	logger.Log.Info("order created",
		zap.String("order_id", o.ID),
		zap.String("number", o.Number),
		zap.Int64("user_id", userID),
		zap.String("total", o.Total.String()),
	)
	s.emit(events.OrderCreated, o, "")
	return o, nil
}

// GetOrder returns the caller's order.
func (s *Service) GetOrder(ctx context.Context, userID int64, id string) (*order.Order, error) {
	o, err := s.repo.FindOrderByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.UserID != userID {
		return nil, apperr.ErrForbidden
	}
	return o, nil
}

func (s *Service) ListOrders(ctx context.Context, userID int64, q ListQuery) (*Page, error) {
	if q.Status != "" && !q.Status.Valid() {
		return nil, apperr.Validation("unknown order status %q", q.Status)
	}
	return s.list(ctx, order.Filter{UserID: userID, Status: q.Status}, q.Page, q.Limit)
}

func (s *Service) RecentOrders(ctx context.Context, userID int64, limit int) ([]order.Order, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	orders, _, err := s.repo.ListOrders(ctx, order.Filter{UserID: userID, Limit: limit})
	return orders, err
}

// ListAll lists every user's orders for staff.
func (s *Service) ListAll(ctx context.Context, q ListQuery) (*Page, error) {
	if q.Status != "" && !q.Status.Valid() {
		return nil, apperr.Validation("unknown order status %q", q.Status)
	}
	if q.Number != "" && !ordernum.Validate(q.Number) {
		return nil, apperr.Validation("malformed order number %q", q.Number)
	}
	if !q.From.IsZero() && !q.To.IsZero() && q.To.Before(q.From) {
		return nil, apperr.Validation("date range ends before it starts")
	}
	return s.list(ctx, order.Filter{Status: q.Status, Number: q.Number, From: q.From, To: q.To}, q.Page, q.Limit)
}

func (s *Service) list(ctx context.Context, f order.Filter, page, limit int) (*Page, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	f.Limit = limit
	f.Offset = (page - 1) * limit

	orders, total, err := s.repo.ListOrders(ctx, f)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []order.Order{}
	}
	return &Page{
		Orders: orders,
		Pagination: Pagination{
			Total: total,
			Page:  page,
			Limit: limit,
			Pages: (total + limit - 1) / limit,
		},
	}, nil
}

// CancelOrder cancels the caller's order. An empty reason gets a default
// note in the history.
func (s *Service) CancelOrder(ctx context.Context, userID int64, id, reason string) (*order.Order, error) {
	o, err := s.GetOrder(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	prev := o.PaymentStatus
	if err := Cancel(o, reason, s.now().UTC()); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateOrder(ctx, o); err != nil {
		return nil, err
	}
	logger.Log.Info("order cancelled", zap.String("order_id", o.ID), zap.Int64("user_id", userID))
	s.emit(events.OrderCancelled, o, o.History[len(o.History)-1].Note)
	s.emitPayment(prev, o)
	return o, nil
}

// UpdateStatus is the staff-facing transition.
func (s *Service) UpdateStatus(ctx context.Context, id string, status order.Status, note string) (*order.Order, error) {
	o, err := s.repo.FindOrderByID(ctx, id)
	if err != nil {
		return nil, err
	}
	prev := o.PaymentStatus
	if err := Transition(o, status, note, s.now().UTC()); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateOrder(ctx, o); err != nil {
		return nil, err
	}
	logger.Log.Info("order status changed",
		zap.String("order_id", o.ID),
		zap.String("status", string(o.Status)),
		zap.String("payment_status", string(o.PaymentStatus)),
	)
	if status == order.StatusCancelled {
		s.emit(events.OrderCancelled, o, note)
	} else {
		s.emit(events.OrderStatusChanged, o, note)
	}
	s.emitPayment(prev, o)
	return o, nil
}

func (s *Service) UpdateDeliveryTime(ctx context.Context, id string, minutes int) (*order.Order, error) {
	o, err := s.repo.FindOrderByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := SetEstimatedReady(o, minutes, s.now().UTC()); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateOrder(ctx, o); err != nil {
		return nil, err
	}
	logger.Log.Info("order ready time changed",
		zap.String("order_id", o.ID),
		zap.Time("estimated_ready_at", o.EstimatedReadyAt),
	)
	s.emit(events.OrderReadyTimeSet, o, fmt.Sprintf("ready in %d minutes", minutes))
	return o, nil
}

// Cart returns the caller's pending cart, empty if none is stored.
func (s *Service) Cart(ctx context.Context, userID int64) (*order.Cart, error) {
	c, err := s.carts.GetCart(ctx, userID)
	if errors.Is(err, apperr.ErrNotFound) {
		return &order.Cart{UserID: userID, Lines: []order.CartLine{}}, nil
	}
	return c, err
}

func (s *Service) emit(typ string, o *order.Order, note string) {
	s.events.Notify(events.Event{
		Type:          typ,
		OrderID:       o.ID,
		OrderNumber:   o.Number,
		UserID:        o.UserID,
		Status:        string(o.Status),
		PaymentStatus: string(o.PaymentStatus),
		Note:          note,
		OccurredAt:    o.UpdatedAt,
	})
}

// emitPayment reports a payment status change caused by a fulfillment
// transition.
func (s *Service) emitPayment(prev order.PaymentStatus, o *order.Order) {
	if prev == o.PaymentStatus {
		return
	}
	switch o.PaymentStatus {
	case order.PaymentPaid:
		s.emit(events.PaymentPaid, o, "settled on completion")
	case order.PaymentRefunded:
		s.emit(events.PaymentRefunded, o, "refunded on cancellation")
	}
}
