package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/Sherryli112/HatGiveMe/internal/domain"
)

// OrderRepository defines persistence access for orders and their items.
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	GetByIDForUpdate(ctx context.Context, id string) (*domain.Order, error)
	List(ctx context.Context, filter OrderFilter) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error
}

// OrderFilter defines query params for order listing.
type OrderFilter struct {
	UserID *string
	Status *domain.OrderStatus
	Limit  int
	Offset int
}

type orderRepository struct {
	q Querier
}

// NewOrderRepository returns a Postgres-backed implementation.
func NewOrderRepository(q Querier) OrderRepository {
	return &orderRepository{q: q}
}

const orderColumns = "id, user_id, status, total_amount::text, shipping_address, receiver_name, receiver_phone, created_at, updated_at"

// Create inserts the order and all of its items. Callers run this inside a
// transaction; items never exist without their order row.
func (r *orderRepository) Create(ctx context.Context, order *domain.Order) error {
	const orderQuery = `
        INSERT INTO orders (user_id, status, total_amount, shipping_address, receiver_name, receiver_phone)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, created_at, updated_at`

	if err := r.q.QueryRow(ctx, orderQuery,
		order.UserID,
		order.Status,
		order.TotalAmount.String(),
		order.ShippingAddress,
		order.ReceiverName,
		order.ReceiverPhone,
	).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt); err != nil {
		return err
	}

	const itemQuery = `
        INSERT INTO order_items (order_id, product_id, quantity, price)
        VALUES ($1, $2, $3, $4)
        RETURNING id`

	for i := range order.Items {
		item := &order.Items[i]
		item.OrderID = order.ID
		if err := r.q.QueryRow(ctx, itemQuery,
			item.OrderID,
			item.ProductID,
			item.Quantity,
			item.Price.String(),
		).Scan(&item.ID); err != nil {
			return err
		}
	}
	return nil
}

func (r *orderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	const query = `SELECT ` + orderColumns + ` FROM orders WHERE id=$1`
	order, err := r.scanOrder(r.q.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}
	items, err := r.listItems(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	order.Items = items
	return order, nil
}

// GetByIDForUpdate locks the order row for the enclosing transaction. Items
// are immutable after placement and are not loaded here.
func (r *orderRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.Order, error) {
	const query = `SELECT ` + orderColumns + ` FROM orders WHERE id=$1 FOR UPDATE`
	return r.scanOrder(r.q.QueryRow(ctx, query, id))
}

func (r *orderRepository) List(ctx context.Context, filter OrderFilter) ([]domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders`
	args := []any{}
	clauses := []string{}

	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		clauses = append(clauses, fmt.Sprintf("user_id=$%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}

	query += " ORDER BY created_at DESC"
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	query += fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Order
	for rows.Next() {
		order, err := r.scanOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range result {
		items, err := r.listItems(ctx, result[i].ID)
		if err != nil {
			return nil, err
		}
		result[i].Items = items
	}
	return result, nil
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error {
	const query = `UPDATE orders SET status=$1, updated_at=NOW() WHERE id=$2`

	cmd, err := r.q.Exec(ctx, query, status, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *orderRepository) listItems(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	const query = `
        SELECT id, order_id, product_id, quantity, price::text
        FROM order_items WHERE order_id=$1
        ORDER BY id`

	rows, err := r.q.Query(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var item domain.OrderItem
		var price string
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &price); err != nil {
			return nil, err
		}
		parsed, err := decimal.NewFromString(price)
		if err != nil {
			return nil, err
		}
		item.Price = parsed
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *orderRepository) scanOrder(row pgx.Row) (*domain.Order, error) {
	var order domain.Order
	var total string
	if err := row.Scan(
		&order.ID,
		&order.UserID,
		&order.Status,
		&total,
		&order.ShippingAddress,
		&order.ReceiverName,
		&order.ReceiverPhone,
		&order.CreatedAt,
		&order.UpdatedAt,
	); err != nil {
		return nil, err
	}
	parsed, err := decimal.NewFromString(total)
	if err != nil {
		return nil, err
	}
	order.TotalAmount = parsed
	return &order, nil
}
