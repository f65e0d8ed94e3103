package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter wires the storefront routes onto a chi router.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/products", h.ListProducts)
	r.Get("/products/{id}", h.GetProduct)

	r.Route("/cart", func(r chi.Router) {
		r.Get("/", h.GetCart)
		r.Delete("/", h.ClearCart)
		r.Post("/items", h.AddCartItem)
		r.Put("/items/{productID}", h.UpdateCartItem)
		r.Delete("/items/{productID}", h.RemoveCartItem)
		r.Post("/coupon", h.ApplyCoupon)
	})

	r.Route("/checkout", func(r chi.Router) {
		r.Post("/", h.StartCheckout)
		r.Get("/", h.GetCheckout)
		r.Post("/next", h.CheckoutNext)
		r.Post("/back", h.CheckoutBack)
		r.Put("/shipping", h.SetShippingAddress)
		r.Put("/payment", h.SetPaymentMethod)
	})

	r.Get("/orders", h.ListOrders)
	r.Get("/orders/{id}", h.GetOrder)

	r.Route("/admin", func(r chi.Router) {
		r.Get("/orders", h.ListAllOrders)
		r.Post("/products", h.CreateProduct)
		r.Put("/products/{id}", h.UpdateProduct)
		r.Delete("/products/{id}", h.DeleteProduct)
		r.Put("/orders/{id}/status", h.UpdateOrderStatus)
	})

	return r
}
