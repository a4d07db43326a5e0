package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus enumerates lifecycle states for orders.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusPaid      OrderStatus = "PAID"
	OrderStatusShipped   OrderStatus = "SHIPPED"
	OrderStatusCompleted OrderStatus = "COMPLETED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// ValidOrderStatus reports whether s is a known status value.
func ValidOrderStatus(s OrderStatus) bool {
	switch s {
	case OrderStatusPending, OrderStatusPaid, OrderStatusShipped, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

// allowedTransitions is the order status graph. COMPLETED and CANCELLED
// are terminal; cancellation is only reachable before shipping.
var allowedTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:   {OrderStatusPaid, OrderStatusCancelled},
	OrderStatusPaid:      {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:   {OrderStatusCompleted},
	OrderStatusCompleted: {},
	OrderStatusCancelled: {},
}

// CanTransition reports whether an order may move from current to next.
func CanTransition(current, next OrderStatus) bool {
	for _, candidate := range allowedTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}

// Order is the aggregate for placed orders. TotalAmount is derived from the
// item price snapshots at placement time and never client-supplied.
type Order struct {
	ID              string
	UserID          string
	Status          OrderStatus
	TotalAmount     decimal.Decimal
	ShippingAddress string
	ReceiverName    string
	ReceiverPhone   string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	Items           []OrderItem
}

// OrderItem is a line of an order. Price is the unit price captured when the
// order was placed and does not follow later catalog price changes.
type OrderItem struct {
	ID        string
	OrderID   string
	ProductID string
	Quantity  int
	Price     decimal.Decimal
}
