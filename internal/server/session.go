package server

import (
	"sync"

	"github.com/ecomcore/storefront/internal/cart"
	"github.com/ecomcore/storefront/internal/checkout"
	"github.com/ecomcore/storefront/internal/port"
	"github.com/ecomcore/storefront/internal/pricing"
	"github.com/google/uuid"
)

// session owns one visitor's cart and, once started, their checkout attempt.
// Sessions never share state with each other.
type session struct {
	cart    *cart.Cart
	machine *checkout.Machine
	coupon  string
	userID  string
}

type sessionRegistry struct {
	mu       sync.Mutex
	sessions map[string]*session

	orders port.OrderCreator
	cfg    pricing.Config
}

func newSessionRegistry(orders port.OrderCreator, cfg pricing.Config) *sessionRegistry {
	return &sessionRegistry{
		sessions: make(map[string]*session),
		orders:   orders,
		cfg:      cfg,
	}
}

// get returns the session for the given id, creating it on first contact.
// An empty id gets a fresh one issued.
func (r *sessionRegistry) get(id, userID string) (string, *session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if id == "" {
		id = uuid.NewString()
	}

	s, ok := r.sessions[id]
	if !ok {
		s = &session{cart: cart.New(), userID: userID}
		r.sessions[id] = s
	}

	if userID != "" {
		s.userID = userID
	}

	return id, s
}

// startCheckout begins a checkout attempt over the session's cart. A
// finished (confirmed) machine is replaced by a fresh one; an attempt in
// progress is kept as-is so captured inputs survive.
func (r *sessionRegistry) startCheckout(s *session) *checkout.Machine {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s.machine == nil || s.machine.Stage().IsTerminal() {
		s.machine = checkout.NewMachine(s.userID, s.cart, r.orders, r.cfg)
		s.machine.SetCoupon(s.coupon)
	}

	return s.machine
}
