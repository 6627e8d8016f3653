package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"pawmart-be/internal/logger"
	"pawmart-be/internal/metrics"
	"pawmart-be/internal/middleware"
	"pawmart-be/internal/user"
)

// Handlers bundles the transport handlers the router mounts.
type Handlers struct {
	Auth         *AuthHandler
	Product      *ProductHandler
	Cart         *CartHandler
	Order        *OrderHandler
	Delivery     *DeliveryHandler
	Notification *NotificationHandler
}

// NewRouter wires the full HTTP surface. Route groups are gated by
// role: carts and checkout are customer-only, fulfillment transitions
// are seller/admin, delivery progress is rider/admin. The users store
// backs the per-request banned-account check.
func NewRouter(h Handlers, users middleware.StatusReader) http.Handler {
	r := chi.NewRouter()

	r.Use(logger.RequestIDMiddleware)
	r.Use(logger.LoggingMiddleware)
	r.Use(middleware.RateLimitMiddleware)
	r.Use(middleware.AuthMiddleware(users))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Auth.Register)
		r.Post("/login", h.Auth.Login)
	})

	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.Product.List)
		r.Get("/{productID}", h.Product.Get)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(user.RoleSeller, user.RoleAdmin))
			r.Post("/", h.Product.Create)
			r.Put("/{productID}", h.Product.Update)
		})
	})

	r.Route("/cart", func(r chi.Router) {
		r.Use(middleware.RequireRole(user.RoleCustomer))
		r.Get("/", h.Cart.Get)
		r.Post("/items", h.Cart.AddItem)
		r.Put("/items/{productID}", h.Cart.UpdateItem)
		r.Delete("/items/{productID}", h.Cart.RemoveItem)
		r.Delete("/", h.Cart.Clear)
	})

	r.Route("/orders", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(user.RoleCustomer))
			r.Post("/checkout", h.Order.Checkout)
			r.Get("/", h.Order.ListMine)
			r.Post("/{orderID}/cancel", h.Order.Cancel)
			r.Post("/{orderID}/confirm-delivery", h.Order.ConfirmDelivery)
			r.Get("/{orderID}/review-eligibility", h.Order.ReviewEligibility)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(user.RoleSeller, user.RoleAdmin))
			r.Get("/seller", h.Order.ListForSeller)
			r.Post("/{orderID}/status", h.Order.UpdateStatus)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(user.RoleCustomer, user.RoleSeller, user.RoleAdmin, user.RoleRider))
			r.Get("/{orderID}", h.Order.Get)
		})
	})

	r.Route("/deliveries", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(user.RoleSeller, user.RoleAdmin))
			r.Post("/", h.Delivery.Assign)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(user.RoleRider, user.RoleAdmin))
			r.Get("/{deliveryID}", h.Delivery.Get)
			r.Post("/{deliveryID}/status", h.Delivery.UpdateStatus)
		})
	})

	r.Route("/riders", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(user.RoleRider))
			r.Get("/deliveries", h.Delivery.ListMine)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(user.RoleSeller, user.RoleAdmin))
			r.Get("/availability", h.Delivery.RiderAvailability)
		})
	})

	r.Route("/notifications", func(r chi.Router) {
		r.Use(middleware.RequireRole(user.RoleCustomer, user.RoleSeller, user.RoleAdmin, user.RoleRider))
		r.Get("/", h.Notification.ListUnread)
		r.Post("/{notificationID}/read", h.Notification.MarkRead)
	})

	return r
}
