package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ecomcore/storefront/internal/domain"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

var ErrCacheMiss = errors.New("product not found in cache")

type ProductCache interface {
	Get(ctx context.Context, id uuid.UUID) (domain.Product, error)
	Set(ctx context.Context, p domain.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{
		client:  client,
		baseTTL: 15 * time.Minute,
	}
}

type RedisCache struct {
	client  *redis.Client
	baseTTL time.Duration
}

// cachedProduct is the wire form: currency.Unit does not marshal on its own.
type cachedProduct struct {
	ID            uuid.UUID       `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	PriceAmount   decimal.Decimal `json:"price_amount"`
	PriceCurrency string          `json:"price_currency"`
	Category      string          `json:"category"`
	ImageURL      string          `json:"image_url"`
	Stock         int             `json:"stock"`
	Rating        float64         `json:"rating"`
	Featured      bool            `json:"featured"`
	CreatedAt     time.Time       `json:"created_at"`
}

func (r *RedisCache) Get(ctx context.Context, id uuid.UUID) (domain.Product, error) {
	data, err := r.client.Get(ctx, cacheKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Product{}, ErrCacheMiss
	}
	if err != nil {
		return domain.Product{}, fmt.Errorf("redis get failed: %w", err)
	}

	var cached cachedProduct
	if err := json.Unmarshal(data, &cached); err != nil {
		return domain.Product{}, fmt.Errorf("unmarshal product failed: %w", err)
	}

	unit, err := currency.ParseISO(cached.PriceCurrency)
	if err != nil {
		return domain.Product{}, fmt.Errorf("currency[%s] is not valid: %w", cached.PriceCurrency, err)
	}

	return domain.Product{
		ID:          cached.ID,
		Name:        cached.Name,
		Description: cached.Description,
		Price:       domain.Money{Amount: cached.PriceAmount, Currency: unit},
		Category:    cached.Category,
		ImageURL:    cached.ImageURL,
		Stock:       cached.Stock,
		Rating:      cached.Rating,
		Featured:    cached.Featured,
		CreatedAt:   cached.CreatedAt,
	}, nil
}

func (r *RedisCache) Set(ctx context.Context, p domain.Product) error {
	data, err := json.Marshal(cachedProduct{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		PriceAmount:   p.Price.Amount,
		PriceCurrency: p.Price.Currency.String(),
		Category:      p.Category,
		ImageURL:      p.ImageURL,
		Stock:         p.Stock,
		Rating:        p.Rating,
		Featured:      p.Featured,
		CreatedAt:     p.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("marshal product failed: %w", err)
	}

	if err := r.client.Set(ctx, cacheKey(p.ID), data, r.baseTTL).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}

	return nil
}

func (r *RedisCache) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.client.Del(ctx, cacheKey(id)).Err(); err != nil {
		return fmt.Errorf("redis del failed: %w", err)
	}

	return nil
}

func cacheKey(id uuid.UUID) string {
	return "catalog:product:" + id.String()
}
