package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/Sherryli112/HatGiveMe/internal/domain"
)

// ProductRepository defines persistence access for catalog entries.
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, product *domain.Product) error
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	List(ctx context.Context, filter ProductFilter) ([]domain.Product, error)
	DecrementStock(ctx context.Context, id string, quantity int) (bool, error)
}

// ProductFilter defines query params for catalog listing.
type ProductFilter struct {
	InStockOnly bool
	Limit       int
	Offset      int
}

type productRepository struct {
	q Querier
}

// NewProductRepository returns a Postgres-backed implementation.
func NewProductRepository(q Querier) ProductRepository {
	return &productRepository{q: q}
}

// Money columns travel as text so the exact decimal representation survives
// the round trip.
const productColumns = "id, name, description, price::text, stock, created_at, updated_at"

func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	const query = `
        INSERT INTO products (name, description, price, stock)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at, updated_at`

	return r.q.QueryRow(ctx, query,
		product.Name,
		product.Description,
		product.Price.String(),
		product.Stock,
	).Scan(&product.ID, &product.CreatedAt, &product.UpdatedAt)
}

// Update edits catalog fields only. Stock is deliberately excluded; the
// placement transaction is the single stock mutation path.
func (r *productRepository) Update(ctx context.Context, product *domain.Product) error {
	const query = `
        UPDATE products SET name=$1, description=$2, price=$3, updated_at=NOW()
        WHERE id=$4`

	cmd, err := r.q.Exec(ctx, query,
		product.Name,
		product.Description,
		product.Price.String(),
		product.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *productRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	const query = `SELECT ` + productColumns + ` FROM products WHERE id=$1`
	return r.scanProduct(r.q.QueryRow(ctx, query, id))
}

func (r *productRepository) List(ctx context.Context, filter ProductFilter) ([]domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products`
	if filter.InStockOnly {
		query += " WHERE stock > 0"
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

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Product
	for rows.Next() {
		var product domain.Product
		var price string
		if err := rows.Scan(
			&product.ID,
			&product.Name,
			&product.Description,
			&price,
			&product.Stock,
			&product.CreatedAt,
			&product.UpdatedAt,
		); err != nil {
			return nil, err
		}
		parsed, err := decimal.NewFromString(price)
		if err != nil {
			return nil, err
		}
		product.Price = parsed
		result = append(result, product)
	}
	return result, rows.Err()
}

// DecrementStock atomically reduces stock only when enough remains. The
// condition re-checks availability at write time, so two concurrent orders
// can never drive the counter negative.
func (r *productRepository) DecrementStock(ctx context.Context, id string, quantity int) (bool, error) {
	const query = `
        UPDATE products SET stock = stock - $1, updated_at=NOW()
        WHERE id=$2 AND stock >= $1`

	cmd, err := r.q.Exec(ctx, query, quantity, id)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() == 1, nil
}

func (r *productRepository) scanProduct(row pgx.Row) (*domain.Product, error) {
	var product domain.Product
	var price string
	if err := row.Scan(
		&product.ID,
		&product.Name,
		&product.Description,
		&price,
		&product.Stock,
		&product.CreatedAt,
		&product.UpdatedAt,
	); err != nil {
		return nil, err
	}
	parsed, err := decimal.NewFromString(price)
	if err != nil {
		return nil, err
	}
	product.Price = parsed
	return &product, nil
}
