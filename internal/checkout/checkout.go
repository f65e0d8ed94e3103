// Package checkout drives the linear review -> shipping -> payment ->
// confirmed flow. Forward transitions are guarded; backward transitions are
// always permitted. Order creation fires exactly once per successful forward
// transition out of the payment stage.
package checkout

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ecomcore/storefront/internal/cart"
	"github.com/ecomcore/storefront/internal/domain"
	"github.com/ecomcore/storefront/internal/port"
	"github.com/ecomcore/storefront/internal/pricing"
)

// Machine owns one checkout attempt over one session's cart. It is safe for
// concurrent use, though a session drives it from a single event loop; the
// mutex mainly backs the in-flight placement guard.
type Machine struct {
	mu sync.Mutex

	stage      Stage
	cart       *cart.Cart
	address    domain.ShippingAddress
	payment    domain.PaymentMethod
	couponCode string

	userID string
	orders port.OrderCreator
	cfg    pricing.Config

	placing bool
	orderID string
}

func NewMachine(userID string, c *cart.Cart, orders port.OrderCreator, cfg pricing.Config) *Machine {
	if userID == "" {
		userID = domain.GuestUserID
	}

	return &Machine{
		stage:   StageCartReview,
		cart:    c,
		payment: domain.PaymentMethodCreditCard,
		userID:  userID,
		orders:  orders,
		cfg:     cfg,
	}
}

func (m *Machine) Stage() Stage {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.stage
}

// OrderID returns the backend-issued identifier once the machine is confirmed.
func (m *Machine) OrderID() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.orderID
}

func (m *Machine) SetShippingAddress(addr domain.ShippingAddress) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stage.IsTerminal() {
		return
	}

	m.address = addr
}

func (m *Machine) ShippingAddress() domain.ShippingAddress {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.address
}

func (m *Machine) SetPaymentMethod(p domain.PaymentMethod) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stage.IsTerminal() || !p.Valid() {
		return
	}

	m.payment = p
}

func (m *Machine) SetCoupon(code string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stage.IsTerminal() {
		return
	}

	m.couponCode = code
}

// Pricing recomputes the snapshot for the current cart and coupon.
func (m *Machine) Pricing() pricing.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	return pricing.Compute(m.cfg, m.cart.Lines(), m.couponCode)
}

// Back steps to the previous stage. It has no guard and no-ops at the edges:
// there is nothing before review and nothing after confirmation.
func (m *Machine) Back() {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.stage {
	case StageShippingInfo:
		m.stage = StageCartReview
	case StagePaymentMethod:
		m.stage = StageShippingInfo
	}
}

// Next attempts the forward transition from the current stage. Guard
// failures return a *ValidationError and leave the stage unchanged. From the
// payment stage Next places the order; a second call while a placement is in
// flight is ignored, not queued.
func (m *Machine) Next(ctx context.Context) error {
	m.mu.Lock()

	switch m.stage {
	case StageCartReview:
		defer m.mu.Unlock()

		if m.cart.IsEmpty() {
			return &ValidationError{Reason: "your cart is empty"}
		}
		m.stage = StageShippingInfo

		return nil

	case StageShippingInfo:
		defer m.mu.Unlock()

		if missing := m.address.MissingFields(); len(missing) > 0 {
			return &ValidationError{
				Reason: fmt.Sprintf("missing required fields: %s", strings.Join(missing, ", ")),
			}
		}
		m.stage = StagePaymentMethod

		return nil

	case StagePaymentMethod:
		if m.placing {
			// A placement is already in flight.
			m.mu.Unlock()
			return nil
		}

		m.placing = true
		order := m.buildOrder()
		m.mu.Unlock()

		return m.placeOrder(ctx, order)

	default:
		m.mu.Unlock()
		return nil
	}
}

// buildOrder snapshots the cart, address and payment method. Caller holds the lock.
func (m *Machine) buildOrder() domain.Order {
	lines := m.cart.Lines()

	items := make([]domain.OrderItem, len(lines))
	for i, line := range lines {
		items[i] = domain.OrderItem{
			ProductID: line.ProductID,
			Name:      line.Name,
			UnitPrice: line.UnitPrice,
			Quantity:  line.Quantity,
		}
	}

	snapshot := pricing.Compute(m.cfg, lines, m.couponCode)

	return domain.Order{
		UserID:          m.userID,
		Items:           items,
		ShippingAddress: m.address,
		PaymentMethod:   m.payment,
		TotalAmount:     snapshot.Total,
		Status:          domain.OrderStatusPending,
		CreatedAt:       time.Now(),
	}
}

func (m *Machine) placeOrder(ctx context.Context, order domain.Order) error {
	created, err := m.orders.CreateOrder(ctx, order)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.placing = false

	if err != nil {
		// Cart and captured inputs stay intact for a retry.
		return &CollaboratorError{Err: err}
	}

	m.orderID = created.ID
	m.stage = StageConfirmed
	m.cart.Clear()

	return nil
}
