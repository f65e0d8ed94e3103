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

var ErrOrderNotFound = errors.New("order not found")

type orderRepository struct {
	pool *pgxpool.Pool
}

func NewOrder(pool *pgxpool.Pool) port.OrderRepository {
	return &orderRepository{pool: pool}
}

// CreateOrder persists the order and its items in one transaction and
// returns the order bearing the issued identifier.
func (r *orderRepository) CreateOrder(ctx context.Context, order domain.Order) (domain.Order, error) {
	if order.UserID == "" {
		return domain.Order{}, fmt.Errorf("userID is empty")
	}

	if len(order.Items) == 0 {
		return domain.Order{}, fmt.Errorf("order has no items")
	}

	order.ID = uuid.NewString()

	return withTx(ctx, r.pool, func(tx pgx.Tx) (domain.Order, error) {
		_, err := tx.Exec(ctx, `
			INSERT INTO orders (id, user_id,
			                    ship_first_name, ship_last_name, ship_address, ship_city,
			                    ship_state, ship_zip_code, ship_country, ship_phone,
			                    payment_method, total_amount, total_currency, status, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
			order.ID, order.UserID,
			order.ShippingAddress.FirstName, order.ShippingAddress.LastName,
			order.ShippingAddress.Address, order.ShippingAddress.City,
			order.ShippingAddress.State, order.ShippingAddress.ZipCode,
			order.ShippingAddress.Country, order.ShippingAddress.Phone,
			string(order.PaymentMethod), order.TotalAmount.Amount,
			order.TotalAmount.Currency.String(), string(order.Status), order.CreatedAt)
		if err != nil {
			return domain.Order{}, fmt.Errorf("insert order: %w", err)
		}

		for i, item := range order.Items {
			_, err := tx.Exec(ctx, `
				INSERT INTO order_items (order_id, product_id, name,
				                         unit_price_amount, unit_price_currency, quantity, position)
				VALUES ($1, $2, $3, $4, $5, $6, $7)`,
				order.ID, item.ProductID, item.Name,
				item.UnitPrice.Amount, item.UnitPrice.Currency.String(), item.Quantity, i)
			if err != nil {
				return domain.Order{}, fmt.Errorf("insert order item: %w", err)
			}
		}

		return order, nil
	})
}

func (r *orderRepository) GetOrder(ctx context.Context, id string) (domain.Order, error) {
	if id == "" {
		return domain.Order{}, fmt.Errorf("id is empty")
	}

	row := r.pool.QueryRow(ctx, `
		SELECT id, user_id,
		       ship_first_name, ship_last_name, ship_address, ship_city,
		       ship_state, ship_zip_code, ship_country, ship_phone,
		       payment_method, total_amount, total_currency, status, created_at
		FROM orders
		WHERE id = $1`, id)

	order, err := scanOrder(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Order{}, ErrOrderNotFound
	}
	if err != nil {
		return domain.Order{}, fmt.Errorf("scanOrder: %w", err)
	}

	order.Items, err = r.orderItems(ctx, order.ID)
	if err != nil {
		return domain.Order{}, fmt.Errorf("orderItems: %w", err)
	}

	return order, nil
}

// ListOrdersByUser returns the user's orders, newest first.
func (r *orderRepository) ListOrdersByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	if userID == "" {
		return nil, fmt.Errorf("userID is empty")
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id,
		       ship_first_name, ship_last_name, ship_address, ship_city,
		       ship_state, ship_zip_code, ship_country, ship_phone,
		       payment_method, total_amount, total_currency, status, created_at
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("pool.Query: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scanOrder: %w", err)
		}

		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows.Err: %w", err)
	}

	for i := range orders {
		orders[i].Items, err = r.orderItems(ctx, orders[i].ID)
		if err != nil {
			return nil, fmt.Errorf("orderItems: %w", err)
		}
	}

	return orders, nil
}

// ListAllOrders returns every order, newest first, for the admin dashboard.
func (r *orderRepository) ListAllOrders(ctx context.Context) ([]domain.Order, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id,
		       ship_first_name, ship_last_name, ship_address, ship_city,
		       ship_state, ship_zip_code, ship_country, ship_phone,
		       payment_method, total_amount, total_currency, status, created_at
		FROM orders
		ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("pool.Query: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scanOrder: %w", err)
		}

		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows.Err: %w", err)
	}

	for i := range orders {
		orders[i].Items, err = r.orderItems(ctx, orders[i].ID)
		if err != nil {
			return nil, fmt.Errorf("orderItems: %w", err)
		}
	}

	return orders, nil
}

func (r *orderRepository) UpdateOrderStatus(ctx context.Context, id string, status domain.OrderStatus) error {
	if id == "" {
		return fmt.Errorf("id is empty")
	}

	if !status.Valid() {
		return fmt.Errorf("status[%s] is not valid", status)
	}

	tag, err := r.pool.Exec(ctx, `UPDATE orders SET status = $2 WHERE id = $1`, id, string(status))
	if err != nil {
		return fmt.Errorf("pool.Exec: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrOrderNotFound
	}

	return nil
}

func (r *orderRepository) orderItems(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT product_id, name, unit_price_amount, unit_price_currency, quantity
		FROM order_items
		WHERE order_id = $1
		ORDER BY position`, orderID)
	if err != nil {
		return nil, fmt.Errorf("pool.Query: %w", err)
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var (
			item         domain.OrderItem
			amount       decimal.Decimal
			currencyCode string
		)

		if err := rows.Scan(&item.ProductID, &item.Name, &amount, &currencyCode, &item.Quantity); err != nil {
			return nil, fmt.Errorf("rows.Scan: %w", err)
		}

		unit, err := currency.ParseISO(currencyCode)
		if err != nil {
			return nil, fmt.Errorf("currency[%s] is not valid: %w", currencyCode, err)
		}

		item.UnitPrice = domain.Money{Amount: amount, Currency: unit}
		items = append(items, item)
	}

	return items, rows.Err()
}

func scanOrder(row pgx.Row) (domain.Order, error) {
	var (
		order        domain.Order
		payment      string
		status       string
		amount       decimal.Decimal
		currencyCode string
	)

	err := row.Scan(&order.ID, &order.UserID,
		&order.ShippingAddress.FirstName, &order.ShippingAddress.LastName,
		&order.ShippingAddress.Address, &order.ShippingAddress.City,
		&order.ShippingAddress.State, &order.ShippingAddress.ZipCode,
		&order.ShippingAddress.Country, &order.ShippingAddress.Phone,
		&payment, &amount, &currencyCode, &status, &order.CreatedAt)
	if err != nil {
		return domain.Order{}, err
	}

	unit, err := currency.ParseISO(currencyCode)
	if err != nil {
		return domain.Order{}, fmt.Errorf("currency[%s] is not valid: %w", currencyCode, err)
	}

	order.PaymentMethod = domain.PaymentMethod(payment)
	order.Status = domain.OrderStatus(status)
	order.TotalAmount = domain.Money{Amount: amount, Currency: unit}

	return order, nil
}
