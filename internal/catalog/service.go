// Package catalog serves product reads for the storefront, fronting the
// product repository with a cache so hot product pages do not hammer the
// database. Writes go straight through and invalidate.
package catalog

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/ecomcore/storefront/internal/domain"
	"github.com/ecomcore/storefront/internal/port"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

type Service struct {
	repo  port.ProductRepository
	cache ProductCache // nil disables caching
	sfg   singleflight.Group
}

func NewService(repo port.ProductRepository, cache ProductCache) *Service {
	return &Service{
		repo:  repo,
		cache: cache,
	}
}

// GetProduct returns the authoritative product record, from cache when
// possible. Concurrent misses for the same product collapse into a single
// repository read.
func (s *Service) GetProduct(ctx context.Context, id uuid.UUID) (domain.Product, error) {
	if s.cache == nil {
		return s.repo.GetProduct(ctx, id)
	}

	v, err, _ := s.sfg.Do(id.String(), func() (interface{}, error) {
		p, err := s.cache.Get(ctx, id)
		if err == nil {
			return p, nil
		}

		if !errors.Is(err, ErrCacheMiss) {
			slog.WarnContext(ctx, "product cache get failed", "product_id", id, "error", err)
		}

		p, err = s.repo.GetProduct(ctx, id)
		if err != nil {
			return domain.Product{}, err
		}

		if err := s.cache.Set(ctx, p); err != nil {
			slog.WarnContext(ctx, "product cache set failed", "product_id", id, "error", err)
		}

		return p, nil
	})
	if err != nil {
		return domain.Product{}, err
	}

	return v.(domain.Product), nil
}

func (s *Service) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return s.repo.ListProducts(ctx)
}

func (s *Service) ListProductsByCategory(ctx context.Context, category string) ([]domain.Product, error) {
	return s.repo.ListProductsByCategory(ctx, category)
}

func (s *Service) ListFeatured(ctx context.Context, limit int) ([]domain.Product, error) {
	return s.repo.ListFeatured(ctx, limit)
}

func (s *Service) CreateProduct(ctx context.Context, p domain.Product) (domain.Product, error) {
	return s.repo.CreateProduct(ctx, p)
}

func (s *Service) UpdateProduct(ctx context.Context, p domain.Product) error {
	if err := s.repo.UpdateProduct(ctx, p); err != nil {
		return err
	}

	s.invalidate(p.ID)
	return nil
}

func (s *Service) DeleteProduct(ctx context.Context, id uuid.UUID) (bool, error) {
	deleted, err := s.repo.DeleteProduct(ctx, id)
	if err != nil {
		return false, err
	}

	if deleted {
		s.invalidate(id)
	}

	return deleted, nil
}

func (s *Service) invalidate(id uuid.UUID) {
	if s.cache == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := s.cache.Delete(ctx, id); err != nil {
		slog.Warn("product cache invalidation failed", "product_id", id, "error", err)
	}
}
