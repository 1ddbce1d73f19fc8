package router

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/antonminaichev/foodorder/internal/logger"
	"github.com/antonminaichev/foodorder/internal/menu"
	"github.com/antonminaichev/foodorder/internal/middleware"
	"github.com/antonminaichev/foodorder/internal/order"
	"github.com/antonminaichev/foodorder/internal/payment"
	"github.com/antonminaichev/foodorder/internal/user"
)

type Handlers struct {
	User    *user.Handler
	Menu    *menu.Handler
	Order   *order.Handler
	Payment *payment.Handler
}

func NewRouter(
	h Handlers,
	jwtSecret []byte,
	webhookSecret string,
	userRepo user.UserRepository,
) chi.Router {
	r := chi.NewRouter()

	r.Use(logger.WithLogging)
	r.Use(chiMiddleware.Recoverer)

	r.Use(middleware.GzipHandler)

	r.Route("/api/user", func(r chi.Router) {
		r.Post("/register", h.User.Register)
		r.Post("/login", h.User.Login)
	})

	r.Get("/api/menu", h.Menu.List)
	r.Get("/api/menu/categories", h.Menu.Categories)
	r.Get("/api/menu/{id}", h.Menu.Get)

	r.With(middleware.WebhookSignature(webhookSecret)).Post("/api/payments/webhook", h.Payment.Webhook)

	r.Group(func(r chi.Router) {
		r.Use(middleware.JWTMiddleware(jwtSecret, userRepo))

		r.Post("/api/orders", h.Order.CreateOrder)
		r.Get("/api/orders", h.Order.ListOrders)
		r.Get("/api/orders/recent", h.Order.RecentOrders)
		r.Get("/api/orders/recent/{limit}", h.Order.RecentOrders)
		r.Post("/api/orders/reorder", h.Order.Reorder)
		r.Get("/api/orders/{id}", h.Order.GetOrder)
		r.Put("/api/orders/{id}/cancel", h.Order.CancelOrder)
		r.Get("/api/cart", h.Order.GetCart)

		r.Post("/api/payments/create-order", h.Payment.CreateOrder)
		r.Post("/api/payments/verify", h.Payment.Verify)
		r.Get("/api/payments/key", h.Payment.Key)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin)

			r.Post("/api/menu", h.Menu.Create)
			r.Put("/api/menu/{id}", h.Menu.Update)
			r.Delete("/api/menu/{id}", h.Menu.Delete)

			r.Put("/api/orders/{id}/status", h.Order.UpdateStatus)
			r.Put("/api/orders/{id}/delivery-time", h.Order.UpdateDeliveryTime)
			r.Get("/api/admin/orders", h.Order.ListAll)
		})
	})

	return r
}
