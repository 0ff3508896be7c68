package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/navalhaclub/loyalty-api/internal/model"
	"github.com/navalhaclub/loyalty-api/pkg/database"
)

// OrderRepository provides data access for orders using pgx.
type OrderRepository struct {
	pool PoolInterface
}

// NewOrderRepository creates a new OrderRepository with the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// NewOrderRepositoryWithPool creates a new OrderRepository with a custom pool interface.
// This is primarily used for testing.
func NewOrderRepositoryWithPool(pool PoolInterface) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Insert persists an order and its line items within a transaction.
// Line items snapshot the product at checkout time.
func (r *OrderRepository) Insert(ctx context.Context, tx database.TxQuerier, order *model.Order) error {
	orderQuery := `INSERT INTO orders
		(id, user_id, shipping_name, shipping_email, shipping_phone, shipping_cep, shipping_address,
		 shipping_number, shipping_complement, shipping_city, shipping_state,
		 subtotal, shipping_cost, total, payment_method, status, delivery_method, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`

	_, err := tx.Exec(ctx, orderQuery,
		order.ID, order.UserID,
		order.Shipping.Name, order.Shipping.Email, order.Shipping.Phone, order.Shipping.CEP,
		order.Shipping.Address, order.Shipping.Number, order.Shipping.Complement,
		order.Shipping.City, order.Shipping.State,
		order.Subtotal, order.ShippingCost, order.Total,
		order.PaymentMethod, order.Status, order.DeliveryMethod, order.Date)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	itemQuery := `INSERT INTO order_items
		(order_id, product_id, product_name, product_description, product_category, unit_price, quantity)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	for _, item := range order.Items {
		_, err := tx.Exec(ctx, itemQuery,
			order.ID, item.Product.ID, item.Product.Name, item.Product.Description,
			item.Product.Category, item.Product.Price, item.Quantity)
		if err != nil {
			return fmt.Errorf("insert order item %s: %w", item.Product.ID, err)
		}
	}
	return nil
}

const orderColumns = `id, user_id, shipping_name, shipping_email, shipping_phone, shipping_cep,
	shipping_address, shipping_number, shipping_complement, shipping_city, shipping_state,
	subtotal, shipping_cost, total, payment_method, status, delivery_method, created_at`

func scanOrder(row pgx.Row) (*model.Order, error) {
	var o model.Order
	err := row.Scan(
		&o.ID, &o.UserID,
		&o.Shipping.Name, &o.Shipping.Email, &o.Shipping.Phone, &o.Shipping.CEP,
		&o.Shipping.Address, &o.Shipping.Number, &o.Shipping.Complement,
		&o.Shipping.City, &o.Shipping.State,
		&o.Subtotal, &o.ShippingCost, &o.Total,
		&o.PaymentMethod, &o.Status, &o.DeliveryMethod, &o.Date,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// GetByID retrieves an order with its line items.
// Returns nil, nil if the order is not found (service layer handles this).
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	order, err := scanOrder(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Not found - let service handle
		}
		return nil, fmt.Errorf("get order by id %s: %w", id, err)
	}

	items, err := r.listItems(ctx, id)
	if err != nil {
		return nil, err
	}
	order.Items = items
	return order, nil
}

// ListByUser returns all orders of a user, most recent first.
func (r *OrderRepository) ListByUser(ctx context.Context, userID string) ([]model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list orders for user %s: %w", userID, err)
	}
	defer rows.Close()

	orders := []model.Order{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, *order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders rows: %w", err)
	}

	for i := range orders {
		items, err := r.listItems(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Items = items
	}
	return orders, nil
}

// UpdateStatus sets the fulfillment status of an order.
// Returns false when the order doesn't exist.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, status model.OrderStatus) (bool, error) {
	query := `UPDATE orders SET status = $2 WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id, status)
	if err != nil {
		return false, fmt.Errorf("update status for order %s: %w", id, err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *OrderRepository) listItems(ctx context.Context, orderID string) ([]model.CartItem, error) {
	query := `SELECT product_id, product_name, product_description, product_category, unit_price, quantity
		FROM order_items WHERE order_id = $1 ORDER BY product_id`

	rows, err := r.pool.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("list items for order %s: %w", orderID, err)
	}
	defer rows.Close()

	items := []model.CartItem{}
	for rows.Next() {
		var item model.CartItem
		if err := rows.Scan(
			&item.Product.ID, &item.Product.Name, &item.Product.Description,
			&item.Product.Category, &item.Product.Price, &item.Quantity,
		); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order items rows: %w", err)
	}
	return items, nil
}
