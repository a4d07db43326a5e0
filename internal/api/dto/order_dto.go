package dto

import (
	"errors"
	"time"

	"github.com/Sherryli112/HatGiveMe/internal/domain"
)

var errNegativePrice = errors.New("price must not be negative")

// OrderItemRequest is one requested line of an order.
type OrderItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
}

// CreateOrderRequest payload for order placement.
type CreateOrderRequest struct {
	Items           []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
	ShippingAddress string             `json:"shipping_address" validate:"required"`
	ReceiverName    string             `json:"receiver_name" validate:"required"`
	ReceiverPhone   string             `json:"receiver_phone" validate:"required"`
}

// UpdateOrderStatusRequest payload for status transitions.
type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=PENDING PAID SHIPPED COMPLETED CANCELLED"`
}

// OrderItemResponse is a line of a placed order.
type OrderItemResponse struct {
	ID        string `json:"id"`
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Price     string `json:"price"`
}

// OrderResponse is the order representation.
type OrderResponse struct {
	ID              string              `json:"id"`
	UserID          string              `json:"user_id"`
	Status          string              `json:"status"`
	TotalAmount     string              `json:"total_amount"`
	ShippingAddress string              `json:"shipping_address"`
	ReceiverName    string              `json:"receiver_name"`
	ReceiverPhone   string              `json:"receiver_phone"`
	CreatedAt       time.Time           `json:"created_at"`
	Items           []OrderItemResponse `json:"items"`
}

// FromOrder maps a domain order to its response shape.
func FromOrder(order *domain.Order) OrderResponse {
	items := make([]OrderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, OrderItemResponse{
			ID:        item.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price.StringFixed(2),
		})
	}
	return OrderResponse{
		ID:              order.ID,
		UserID:          order.UserID,
		Status:          string(order.Status),
		TotalAmount:     order.TotalAmount.StringFixed(2),
		ShippingAddress: order.ShippingAddress,
		ReceiverName:    order.ReceiverName,
		ReceiverPhone:   order.ReceiverPhone,
		CreatedAt:       order.CreatedAt,
		Items:           items,
	}
}

// FromOrders maps a slice of domain orders.
func FromOrders(orders []domain.Order) []OrderResponse {
	result := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		result = append(result, FromOrder(&orders[i]))
	}
	return result
}
