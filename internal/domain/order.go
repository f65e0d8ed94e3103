package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// GuestUserID marks orders placed without an authenticated user.
const GuestUserID = "guest"

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

type PaymentMethod string

const (
	PaymentMethodCreditCard     PaymentMethod = "creditCard"
	PaymentMethodPayPal         PaymentMethod = "paypal"
	PaymentMethodCashOnDelivery PaymentMethod = "cashOnDelivery"
)

func (p PaymentMethod) Valid() bool {
	switch p {
	case PaymentMethodCreditCard, PaymentMethodPayPal, PaymentMethodCashOnDelivery:
		return true
	}
	return false
}

type ShippingAddress struct {
	FirstName string
	LastName  string
	Address   string
	City      string
	State     string
	ZipCode   string
	Country   string
	Phone     string
}

// MissingFields reports which mandatory fields are blank.
// Phone is the only optional field.
func (a ShippingAddress) MissingFields() []string {
	var missing []string

	required := []struct {
		name  string
		value string
	}{
		{"firstName", a.FirstName},
		{"lastName", a.LastName},
		{"address", a.Address},
		{"city", a.City},
		{"state", a.State},
		{"zipCode", a.ZipCode},
		{"country", a.Country},
	}

	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}

	return missing
}

// Order is an immutable snapshot taken at checkout completion.
// Only Status is mutated afterwards, by an administrative actor.
type Order struct {
	ID              string
	UserID          string
	Items           []OrderItem
	ShippingAddress ShippingAddress
	PaymentMethod   PaymentMethod
	TotalAmount     Money
	Status          OrderStatus
	CreatedAt       time.Time
}

// OrderItem captures the cart line as it was at placement time.
type OrderItem struct {
	ProductID uuid.UUID
	Name      string
	UnitPrice Money
	Quantity  int
}
