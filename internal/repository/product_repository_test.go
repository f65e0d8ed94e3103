package repository_test

import (
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/ecomcore/storefront/internal/domain"
	"github.com/ecomcore/storefront/internal/port"
	"github.com/ecomcore/storefront/internal/repository"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"golang.org/x/text/currency"
)

type productRepositorySuite struct {
	suite.Suite

	repo port.ProductRepository
	pool *pgxpool.Pool
}

func TestProductRepositorySuite(t *testing.T) {
	suite.Run(t, new(productRepositorySuite))
}

func (suite *productRepositorySuite) SetupSuite() {
	ctx := suite.T().Context()

	_, connStr, err := startPostgres(ctx)
	suite.NoError(err)

	suite.pool, err = pgxpool.New(ctx, connStr)
	suite.NoError(err)

	suite.repo = repository.NewProduct(suite.pool)
}

func (suite *productRepositorySuite) TearDownSuite() {
	if suite.pool != nil {
		suite.pool.Close()
	}
}

func (suite *productRepositorySuite) TestCreateAndGetProduct() {
	defer suite.deleteAll()

	tests := []struct {
		name      string
		product   domain.Product
		wantError string
	}{
		{
			name:    "create product: ok",
			product: randomProduct("Electronics"),
		},
		{
			name: "create product with empty name: error",
			product: func() domain.Product {
				p := randomProduct("Electronics")
				p.Name = ""
				return p
			}(),
			wantError: "name is empty",
		},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			t := suite.T()
			ctx := t.Context()

			created, err := suite.repo.CreateProduct(ctx, tt.product)
			if tt.wantError != "" {
				require.EqualError(t, err, tt.wantError)
				return
			}
			require.NoError(t, err)
			require.NotEqual(t, uuid.Nil, created.ID)

			got, err := suite.repo.GetProduct(ctx, created.ID)
			require.NoError(t, err)

			assertProduct(t, tt.product, got)
		})
	}
}

func (suite *productRepositorySuite) TestGetProductNotFound() {
	t := suite.T()

	_, err := suite.repo.GetProduct(t.Context(), uuid.New())
	require.ErrorIs(t, err, repository.ErrProductNotFound)
}

func (suite *productRepositorySuite) TestListProducts() {
	defer suite.deleteAll()

	t := suite.T()
	ctx := t.Context()

	for _, category := range []string{"Books", "Clothing", "Electronics"} {
		_, err := suite.repo.CreateProduct(ctx, randomProduct(category))
		require.NoError(t, err)
	}

	// No filter: the whole catalog
	products, err := suite.repo.ListProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, products, 3)
}

func (suite *productRepositorySuite) TestListProductsByCategory() {
	defer suite.deleteAll()

	t := suite.T()
	ctx := t.Context()

	for range 3 {
		_, err := suite.repo.CreateProduct(ctx, randomProduct("Books"))
		require.NoError(t, err)
	}
	_, err := suite.repo.CreateProduct(ctx, randomProduct("Clothing"))
	require.NoError(t, err)

	books, err := suite.repo.ListProductsByCategory(ctx, "Books")
	require.NoError(t, err)
	assert.Len(t, books, 3)
	for _, p := range books {
		assert.Equal(t, "Books", p.Category)
	}

	_, err = suite.repo.ListProductsByCategory(ctx, "")
	require.EqualError(t, err, "category is empty")
}

func (suite *productRepositorySuite) TestListFeatured() {
	defer suite.deleteAll()

	t := suite.T()
	ctx := t.Context()

	featured := randomProduct("Electronics")
	featured.Featured = true
	_, err := suite.repo.CreateProduct(ctx, featured)
	require.NoError(t, err)

	plain := randomProduct("Electronics")
	plain.Featured = false
	_, err = suite.repo.CreateProduct(ctx, plain)
	require.NoError(t, err)

	got, err := suite.repo.ListFeatured(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].Featured)

	_, err = suite.repo.ListFeatured(ctx, 0)
	require.EqualError(t, err, "limit must be positive")
}

func (suite *productRepositorySuite) TestUpdateProduct() {
	defer suite.deleteAll()

	t := suite.T()
	ctx := t.Context()

	created, err := suite.repo.CreateProduct(ctx, randomProduct("Electronics"))
	require.NoError(t, err)

	created.Stock = 7
	created.Price = domain.Money{Amount: decimal.RequireFromString("19.99"), Currency: created.Price.Currency}
	require.NoError(t, suite.repo.UpdateProduct(ctx, created))

	got, err := suite.repo.GetProduct(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, got.Stock)
	assert.True(t, got.Price.Amount.Equal(decimal.RequireFromString("19.99")))

	missing := randomProduct("Electronics")
	missing.ID = uuid.New()
	err = suite.repo.UpdateProduct(ctx, missing)
	require.ErrorIs(t, err, repository.ErrProductNotFound)
}

func (suite *productRepositorySuite) TestDeleteProduct() {
	defer suite.deleteAll()

	t := suite.T()
	ctx := t.Context()

	created, err := suite.repo.CreateProduct(ctx, randomProduct("Electronics"))
	require.NoError(t, err)

	deleted, err := suite.repo.DeleteProduct(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = suite.repo.DeleteProduct(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func (suite *productRepositorySuite) deleteAll() {
	_, err := suite.pool.Exec(suite.T().Context(), "TRUNCATE TABLE products CASCADE")
	suite.NoError(err)
}

func randomProduct(category string) domain.Product {
	return domain.Product{
		Name:        gofakeit.ProductName(),
		Description: gofakeit.Sentence(8),
		Price: domain.Money{
			Amount:   decimal.NewFromFloat(gofakeit.Price(1, 500)),
			Currency: randomCurrency(),
		},
		Category: category,
		ImageURL: gofakeit.URL(),
		Stock:    gofakeit.Number(1, 100),
		Rating:   float64(gofakeit.Number(10, 50)) / 10,
		Featured: false,
	}
}

func assertProduct(t *testing.T, expected, actual domain.Product) {
	t.Helper()

	currencyComparer := cmp.Comparer(func(x, y currency.Unit) bool {
		return x.String() == y.String()
	})

	opts := cmp.Options{
		cmpopts.IgnoreFields(domain.Product{}, "ID", "CreatedAt"),
		currencyComparer,
	}

	diff := cmp.Diff(expected, actual, opts)
	assert.Empty(t, diff)

	assert.False(t, actual.CreatedAt.IsZero())
}
