package server

import (
	"time"

	"github.com/ecomcore/storefront/internal/cart"
	"github.com/ecomcore/storefront/internal/domain"
	"github.com/ecomcore/storefront/internal/pricing"
)

type ProductResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       string  `json:"price"`
	Currency    string  `json:"currency"`
	Category    string  `json:"category"`
	ImageURL    string  `json:"image_url"`
	Stock       int     `json:"stock"`
	Rating      float64 `json:"rating"`
	Featured    bool    `json:"featured"`
}

type CreateProductRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       string  `json:"price"`
	Currency    string  `json:"currency"`
	Category    string  `json:"category"`
	ImageURL    string  `json:"image_url"`
	Stock       int     `json:"stock"`
	Rating      float64 `json:"rating"`
	Featured    bool    `json:"featured"`
}

type AddCartItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

type ApplyCouponRequest struct {
	Code string `json:"code"`
}

type CartLineResponse struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	ImageURL  string `json:"image_url"`
	UnitPrice string `json:"unit_price"`
	Quantity  int    `json:"quantity"`
}

type CartResponse struct {
	Lines     []CartLineResponse `json:"lines"`
	ItemCount int                `json:"item_count"`
	Pricing   PricingResponse    `json:"pricing"`
}

type PricingResponse struct {
	Subtotal    string `json:"subtotal"`
	ShippingFee string `json:"shipping_fee"`
	Tax         string `json:"tax"`
	Discount    string `json:"discount"`
	Total       string `json:"total"`
	Currency    string `json:"currency"`
}

type ShippingAddressRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Address   string `json:"address"`
	City      string `json:"city"`
	State     string `json:"state"`
	ZipCode   string `json:"zip_code"`
	Country   string `json:"country"`
	Phone     string `json:"phone"`
}

type PaymentMethodRequest struct {
	Method string `json:"method"`
}

type CheckoutResponse struct {
	Stage   string          `json:"stage"`
	OrderID string          `json:"order_id,omitempty"`
	Pricing PricingResponse `json:"pricing"`
}

type OrderItemResponse struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	UnitPrice string `json:"unit_price"`
	Quantity  int    `json:"quantity"`
}

type OrderResponse struct {
	ID            string              `json:"id"`
	UserID        string              `json:"user_id"`
	Items         []OrderItemResponse `json:"items"`
	PaymentMethod string              `json:"payment_method"`
	TotalAmount   string              `json:"total_amount"`
	Currency      string              `json:"currency"`
	Status        string              `json:"status"`
	CreatedAt     time.Time           `json:"created_at"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func mapProductToResponse(p domain.Product) ProductResponse {
	return ProductResponse{
		ID:          p.ID.String(),
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price.Amount.String(),
		Currency:    p.Price.Currency.String(),
		Category:    p.Category,
		ImageURL:    p.ImageURL,
		Stock:       p.Stock,
		Rating:      p.Rating,
		Featured:    p.Featured,
	}
}

func mapProductsToResponse(products []domain.Product) []ProductResponse {
	out := make([]ProductResponse, len(products))
	for i, p := range products {
		out[i] = mapProductToResponse(p)
	}

	return out
}

func mapCartToResponse(c *cart.Cart, snapshot pricing.Snapshot) CartResponse {
	lines := c.Lines()

	out := make([]CartLineResponse, len(lines))
	for i, line := range lines {
		out[i] = CartLineResponse{
			ProductID: line.ProductID.String(),
			Name:      line.Name,
			ImageURL:  line.ImageURL,
			UnitPrice: line.UnitPrice.Amount.String(),
			Quantity:  line.Quantity,
		}
	}

	return CartResponse{
		Lines:     out,
		ItemCount: c.TotalItemCount(),
		Pricing:   mapPricingToResponse(snapshot),
	}
}

func mapPricingToResponse(s pricing.Snapshot) PricingResponse {
	return PricingResponse{
		Subtotal:    s.Subtotal.Amount.String(),
		ShippingFee: s.ShippingFee.Amount.String(),
		Tax:         s.Tax.Amount.String(),
		Discount:    s.Discount.Amount.String(),
		Total:       s.Total.Amount.String(),
		Currency:    s.Total.Currency.String(),
	}
}

func mapOrderToResponse(order domain.Order) OrderResponse {
	items := make([]OrderItemResponse, len(order.Items))
	for i, item := range order.Items {
		items[i] = OrderItemResponse{
			ProductID: item.ProductID.String(),
			Name:      item.Name,
			UnitPrice: item.UnitPrice.Amount.String(),
			Quantity:  item.Quantity,
		}
	}

	return OrderResponse{
		ID:            order.ID,
		UserID:        order.UserID,
		Items:         items,
		PaymentMethod: string(order.PaymentMethod),
		TotalAmount:   order.TotalAmount.Amount.String(),
		Currency:      order.TotalAmount.Currency.String(),
		Status:        string(order.Status),
		CreatedAt:     order.CreatedAt,
	}
}
