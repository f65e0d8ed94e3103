package port

import (
	"context"

	"github.com/ecomcore/storefront/internal/domain"
)

// OrderCreator is the one capability checkout needs from the storage
// collaborator. The returned order carries the backend-issued ID.
type OrderCreator interface {
	CreateOrder(ctx context.Context, order domain.Order) (domain.Order, error)
}

type OrderRepository interface {
	OrderCreator

	GetOrder(ctx context.Context, id string) (domain.Order, error)
	ListOrdersByUser(ctx context.Context, userID string) ([]domain.Order, error)
	ListAllOrders(ctx context.Context) ([]domain.Order, error)
	UpdateOrderStatus(ctx context.Context, id string, status domain.OrderStatus) error
}
