package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/ecomcore/storefront/internal/domain"
	"github.com/ecomcore/storefront/internal/port"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

var ErrProductNotFound = errors.New("product not found")

type productRepository struct {
	pool *pgxpool.Pool
}

func NewProduct(pool *pgxpool.Pool) port.ProductRepository {
	return &productRepository{pool: pool}
}

const productColumns = `id, name, description, price_amount, price_currency,
       category, image_url, stock, rating, featured, created_at`

func (r *productRepository) GetProduct(ctx context.Context, id uuid.UUID) (domain.Product, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1`, id)

	p, err := scanProduct(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Product{}, ErrProductNotFound
	}
	if err != nil {
		return domain.Product{}, fmt.Errorf("scanProduct: %w", err)
	}

	return p, nil
}

// ListProducts returns the whole catalog, newest first.
func (r *productRepository) ListProducts(ctx context.Context) ([]domain.Product, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+productColumns+` FROM products ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("pool.Query: %w", err)
	}
	defer rows.Close()

	return collectProducts(rows)
}

func (r *productRepository) ListProductsByCategory(ctx context.Context, category string) ([]domain.Product, error) {
	if category == "" {
		return nil, fmt.Errorf("category is empty")
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+productColumns+` FROM products WHERE category = $1 ORDER BY created_at DESC`,
		category)
	if err != nil {
		return nil, fmt.Errorf("pool.Query: %w", err)
	}
	defer rows.Close()

	return collectProducts(rows)
}

func (r *productRepository) ListFeatured(ctx context.Context, limit int) ([]domain.Product, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive")
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+productColumns+` FROM products WHERE featured ORDER BY rating DESC LIMIT $1`,
		limit)
	if err != nil {
		return nil, fmt.Errorf("pool.Query: %w", err)
	}
	defer rows.Close()

	return collectProducts(rows)
}

func (r *productRepository) CreateProduct(ctx context.Context, p domain.Product) (domain.Product, error) {
	if p.Name == "" {
		return domain.Product{}, fmt.Errorf("name is empty")
	}

	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO products (id, name, description, price_amount, price_currency,
		                      category, image_url, stock, rating, featured)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		p.ID, p.Name, p.Description, p.Price.Amount, p.Price.Currency.String(),
		p.Category, p.ImageURL, p.Stock, p.Rating, p.Featured)
	if err != nil {
		return domain.Product{}, fmt.Errorf("pool.Exec: %w", err)
	}

	return p, nil
}

func (r *productRepository) UpdateProduct(ctx context.Context, p domain.Product) error {
	if p.ID == uuid.Nil {
		return fmt.Errorf("id is empty")
	}

	tag, err := r.pool.Exec(ctx, `
		UPDATE products
		SET name = $2, description = $3, price_amount = $4, price_currency = $5,
		    category = $6, image_url = $7, stock = $8, rating = $9, featured = $10
		WHERE id = $1`,
		p.ID, p.Name, p.Description, p.Price.Amount, p.Price.Currency.String(),
		p.Category, p.ImageURL, p.Stock, p.Rating, p.Featured)
	if err != nil {
		return fmt.Errorf("pool.Exec: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrProductNotFound
	}

	return nil
}

func (r *productRepository) DeleteProduct(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("pool.Exec: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

func scanProduct(row pgx.Row) (domain.Product, error) {
	var (
		p            domain.Product
		amount       decimal.Decimal
		currencyCode string
	)

	err := row.Scan(&p.ID, &p.Name, &p.Description, &amount, &currencyCode,
		&p.Category, &p.ImageURL, &p.Stock, &p.Rating, &p.Featured, &p.CreatedAt)
	if err != nil {
		return domain.Product{}, err
	}

	unit, err := currency.ParseISO(currencyCode)
	if err != nil {
		return domain.Product{}, fmt.Errorf("currency[%s] is not valid: %w", currencyCode, err)
	}

	p.Price = domain.Money{Amount: amount, Currency: unit}

	return p, nil
}

func collectProducts(rows pgx.Rows) ([]domain.Product, error) {
	var products []domain.Product

	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scanProduct: %w", err)
		}

		products = append(products, p)
	}

	return products, rows.Err()
}
