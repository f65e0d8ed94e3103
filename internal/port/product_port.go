package port

import (
	"context"

	"github.com/ecomcore/storefront/internal/domain"
	"github.com/google/uuid"
)

type ProductRepository interface {
	GetProduct(ctx context.Context, id uuid.UUID) (domain.Product, error)
	ListProducts(ctx context.Context) ([]domain.Product, error)
	ListProductsByCategory(ctx context.Context, category string) ([]domain.Product, error)
	ListFeatured(ctx context.Context, limit int) ([]domain.Product, error)

	CreateProduct(ctx context.Context, p domain.Product) (domain.Product, error)
	UpdateProduct(ctx context.Context, p domain.Product) error
	DeleteProduct(ctx context.Context, id uuid.UUID) (bool, error)
}
