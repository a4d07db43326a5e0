package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a catalog entry with finite stock. Stock is only ever
// decremented by order placement; there is no restocking path.
type Product struct {
	ID          string
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
