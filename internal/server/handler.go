package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ecomcore/storefront/internal/catalog"
	"github.com/ecomcore/storefront/internal/checkout"
	"github.com/ecomcore/storefront/internal/domain"
	"github.com/ecomcore/storefront/internal/port"
	"github.com/ecomcore/storefront/internal/pricing"
	"github.com/ecomcore/storefront/internal/repository"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

const (
	sessionHeader = "X-Session-ID"
	userHeader    = "X-User-ID"
)

// Handler serves the storefront HTTP API consumed by the UI layer.
type Handler struct {
	catalog  *catalog.Service
	orders   port.OrderRepository
	sessions *sessionRegistry
	cfg      pricing.Config
}

func NewHandler(catalogSvc *catalog.Service, orders port.OrderRepository, cfg pricing.Config) *Handler {
	return &Handler{
		catalog:  catalogSvc,
		orders:   orders,
		sessions: newSessionRegistry(orders, cfg),
		cfg:      cfg,
	}
}

// session resolves the visitor's session, issuing an id on first contact.
func (h *Handler) session(w http.ResponseWriter, r *http.Request) *session {
	id, s := h.sessions.get(r.Header.Get(sessionHeader), r.Header.Get(userHeader))
	w.Header().Set(sessionHeader, id)

	return s
}

// ListProducts serves the browse views: the full catalog by default,
// narrowed by ?category= or ?featured=true.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	var (
		products []domain.Product
		err      error
	)

	switch {
	case r.URL.Query().Get("category") != "":
		products, err = h.catalog.ListProductsByCategory(r.Context(), r.URL.Query().Get("category"))
	case r.URL.Query().Get("featured") == "true":
		products, err = h.catalog.ListFeatured(r.Context(), 8)
	default:
		products, err = h.catalog.ListProducts(r.Context())
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "catalog_error", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, mapProductsToResponse(products))
}

func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_product_id", err.Error())
		return
	}

	product, err := h.catalog.GetProduct(r.Context(), id)
	if errors.Is(err, repository.ErrProductNotFound) {
		writeError(w, http.StatusNotFound, "product_not_found", "")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "catalog_error", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, mapProductToResponse(product))
}

// AddCartItem fetches the authoritative price and stock from the catalog and
// adds the product to the session's cart.
func (h *Handler) AddCartItem(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)

	var req AddCartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_product_id", err.Error())
		return
	}

	product, err := h.catalog.GetProduct(r.Context(), productID)
	if errors.Is(err, repository.ErrProductNotFound) {
		writeError(w, http.StatusNotFound, "product_not_found", "")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "catalog_error", err.Error())
		return
	}

	quantity := req.Quantity
	if quantity == 0 {
		quantity = 1
	}

	s.cart.AddItem(product, quantity)

	slog.InfoContext(r.Context(), "item added to cart",
		"product_id", productID, "quantity", quantity)

	h.writeCart(w, s)
}

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	h.writeCart(w, s)
}

func (h *Handler) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)

	productID, err := uuid.Parse(chi.URLParam(r, "productID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_product_id", err.Error())
		return
	}

	var req UpdateCartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	// Out-of-range quantities are ignored by the ledger, not an API error.
	s.cart.UpdateQuantity(productID, req.Quantity)

	h.writeCart(w, s)
}

func (h *Handler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)

	productID, err := uuid.Parse(chi.URLParam(r, "productID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_product_id", err.Error())
		return
	}

	s.cart.RemoveItem(productID)

	h.writeCart(w, s)
}

func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	s.cart.Clear()

	h.writeCart(w, s)
}

// ApplyCoupon records the coupon code for the session. Unknown codes are
// accepted and simply discount nothing.
func (h *Handler) ApplyCoupon(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)

	var req ApplyCouponRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	s.coupon = req.Code
	if s.machine != nil {
		s.machine.SetCoupon(req.Code)
	}

	h.writeCart(w, s)
}

func (h *Handler) StartCheckout(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	m := h.sessions.startCheckout(s)

	writeJSON(w, http.StatusOK, h.checkoutResponse(m))
}

func (h *Handler) CheckoutNext(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	m := s.machine
	if m == nil {
		writeError(w, http.StatusConflict, "checkout_not_started", "")
		return
	}

	if err := m.Next(r.Context()); err != nil {
		var validationErr *checkout.ValidationError
		if errors.As(err, &validationErr) {
			writeError(w, http.StatusUnprocessableEntity, "validation_failed", validationErr.Reason)
			return
		}

		slog.ErrorContext(r.Context(), "order placement failed", "error", err)
		writeError(w, http.StatusBadGateway, "order_placement_failed",
			"failed to place order, please try again")
		return
	}

	writeJSON(w, http.StatusOK, h.checkoutResponse(m))
}

func (h *Handler) CheckoutBack(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	m := s.machine
	if m == nil {
		writeError(w, http.StatusConflict, "checkout_not_started", "")
		return
	}

	m.Back()

	writeJSON(w, http.StatusOK, h.checkoutResponse(m))
}

func (h *Handler) SetShippingAddress(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	m := s.machine
	if m == nil {
		writeError(w, http.StatusConflict, "checkout_not_started", "")
		return
	}

	var req ShippingAddressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	m.SetShippingAddress(domain.ShippingAddress{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Address:   req.Address,
		City:      req.City,
		State:     req.State,
		ZipCode:   req.ZipCode,
		Country:   req.Country,
		Phone:     req.Phone,
	})

	writeJSON(w, http.StatusOK, h.checkoutResponse(m))
}

func (h *Handler) SetPaymentMethod(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	m := s.machine
	if m == nil {
		writeError(w, http.StatusConflict, "checkout_not_started", "")
		return
	}

	var req PaymentMethodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	method := domain.PaymentMethod(req.Method)
	if !method.Valid() {
		writeError(w, http.StatusBadRequest, "invalid_payment_method", req.Method)
		return
	}

	m.SetPaymentMethod(method)

	writeJSON(w, http.StatusOK, h.checkoutResponse(m))
}

func (h *Handler) GetCheckout(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	m := s.machine
	if m == nil {
		writeError(w, http.StatusConflict, "checkout_not_started", "")
		return
	}

	writeJSON(w, http.StatusOK, h.checkoutResponse(m))
}

// ListOrders returns the authenticated user's order history, newest first.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get(userHeader)
	if userID == "" {
		writeError(w, http.StatusBadRequest, "user_required", "")
		return
	}

	orders, err := h.orders.ListOrdersByUser(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "orders_error", err.Error())
		return
	}

	out := make([]OrderResponse, len(orders))
	for i, order := range orders {
		out[i] = mapOrderToResponse(order)
	}

	writeJSON(w, http.StatusOK, out)
}

// GetOrder serves the order confirmation view.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.orders.GetOrder(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, repository.ErrOrderNotFound) {
		writeError(w, http.StatusNotFound, "order_not_found", "")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "orders_error", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, mapOrderToResponse(order))
}

// ListAllOrders serves the admin dashboard's order table.
func (h *Handler) ListAllOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListAllOrders(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "orders_error", err.Error())
		return
	}

	out := make([]OrderResponse, len(orders))
	for i, order := range orders {
		out[i] = mapOrderToResponse(order)
	}

	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	product, ok := decodeProduct(w, r)
	if !ok {
		return
	}

	created, err := h.catalog.CreateProduct(r.Context(), product)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "catalog_error", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, mapProductToResponse(created))
}

func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_product_id", err.Error())
		return
	}

	product, ok := decodeProduct(w, r)
	if !ok {
		return
	}
	product.ID = id

	err = h.catalog.UpdateProduct(r.Context(), product)
	if errors.Is(err, repository.ErrProductNotFound) {
		writeError(w, http.StatusNotFound, "product_not_found", "")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "catalog_error", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, mapProductToResponse(product))
}

func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_product_id", err.Error())
		return
	}

	deleted, err := h.catalog.DeleteProduct(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "catalog_error", err.Error())
		return
	}

	if !deleted {
		writeError(w, http.StatusNotFound, "product_not_found", "")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")

	var req UpdateOrderStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	status := domain.OrderStatus(req.Status)
	if !status.Valid() {
		writeError(w, http.StatusBadRequest, "invalid_status", req.Status)
		return
	}

	err := h.orders.UpdateOrderStatus(r.Context(), orderID, status)
	if errors.Is(err, repository.ErrOrderNotFound) {
		writeError(w, http.StatusNotFound, "order_not_found", "")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "orders_error", err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeCart(w http.ResponseWriter, s *session) {
	snapshot := pricing.Compute(h.cfg, s.cart.Lines(), s.coupon)
	writeJSON(w, http.StatusOK, mapCartToResponse(s.cart, snapshot))
}

func (h *Handler) checkoutResponse(m *checkout.Machine) CheckoutResponse {
	return CheckoutResponse{
		Stage:   m.Stage().String(),
		OrderID: m.OrderID(),
		Pricing: mapPricingToResponse(m.Pricing()),
	}
}

func decodeProduct(w http.ResponseWriter, r *http.Request) (domain.Product, bool) {
	var req CreateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return domain.Product{}, false
	}

	amount, err := decimal.NewFromString(req.Price)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_price", err.Error())
		return domain.Product{}, false
	}

	code := req.Currency
	if code == "" {
		code = "USD"
	}

	unit, err := currency.ParseISO(code)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_currency", err.Error())
		return domain.Product{}, false
	}

	return domain.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       domain.Money{Amount: amount, Currency: unit},
		Category:    req.Category,
		ImageURL:    req.ImageURL,
		Stock:       req.Stock,
		Rating:      req.Rating,
		Featured:    req.Featured,
	}, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, ErrorResponse{
		Error:   code,
		Message: msg,
	})
}
