package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Sherryli112/HatGiveMe/internal/domain"
)

// ProductRequest payload for creating or updating a catalog entry. Price
// travels as a string to keep exact decimal semantics on the wire.
type ProductRequest struct {
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description" validate:"max=2000"`
	Price       string `json:"price" validate:"required"`
	Stock       int    `json:"stock" validate:"gte=0"`
}

// ParsePrice converts the wire price into a decimal, rejecting negatives.
func (r ProductRequest) ParsePrice() (decimal.Decimal, error) {
	price, err := decimal.NewFromString(r.Price)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if price.IsNegative() {
		return decimal.Decimal{}, errNegativePrice
	}
	return price, nil
}

// ProductResponse is the public catalog representation.
type ProductResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       string    `json:"price"`
	Stock       int       `json:"stock"`
	CreatedAt   time.Time `json:"created_at"`
}

// FromProduct maps a domain product to its response shape.
func FromProduct(product *domain.Product) ProductResponse {
	return ProductResponse{
		ID:          product.ID,
		Name:        product.Name,
		Description: product.Description,
		Price:       product.Price.StringFixed(2),
		Stock:       product.Stock,
		CreatedAt:   product.CreatedAt,
	}
}

// FromProducts maps a slice of domain products.
func FromProducts(products []domain.Product) []ProductResponse {
	result := make([]ProductResponse, 0, len(products))
	for i := range products {
		result = append(result, FromProduct(&products[i]))
	}
	return result
}
