// Package httpapi exposes the storefront engine over HTTP.
package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/urikhaimov/storefront/internal/cart"
	"github.com/urikhaimov/storefront/internal/catalog"
	"github.com/urikhaimov/storefront/internal/checkout"
	"github.com/urikhaimov/storefront/internal/order"
)

// NewRouter wires the storefront and admin routes.
func NewRouter(
	carts *cart.Manager,
	catalogProvider catalog.Provider,
	checkoutService *checkout.Service,
	orderService *order.Service,
	pricing checkout.Pricing,
) http.Handler {
	cartHandler := NewCartHandler(carts, catalogProvider)
	checkoutHandler := NewCheckoutHandler(checkoutService, carts, pricing)
	ordersHandler := NewOrdersHandler(orderService)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(RequestIDMiddleware)
	r.Use(AuthMiddleware)
	r.Use(SessionMiddleware)

	r.Route("/cart", func(r chi.Router) {
		r.Get("/", cartHandler.GetCart)
		r.Delete("/", cartHandler.ClearCart)
		r.Post("/items", cartHandler.AddItem)
		r.Put("/items/{productID}", cartHandler.UpdateQuantity)
		r.Delete("/items/{productID}", cartHandler.RemoveItem)
	})

	r.Route("/checkout", func(r chi.Router) {
		r.Post("/", checkoutHandler.Begin)
		r.Post("/complete", checkoutHandler.Complete)
	})

	r.Route("/orders", func(r chi.Router) {
		r.Get("/", ordersHandler.ListMyOrders)
		r.Get("/{orderID}", ordersHandler.GetOrder)
	})

	r.Route("/admin/orders", func(r chi.Router) {
		r.Get("/", ordersHandler.ListAllOrders)
		r.Put("/{orderID}/status", ordersHandler.UpdateStatus)
	})

	return r
}
