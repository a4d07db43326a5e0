package events

import (
	"time"

	"github.com/Sherryli112/HatGiveMe/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventOrderPlaced        EventType = "order_placed"
	EventOrderStatusChanged EventType = "order_status_changed"
	EventUserDeactivated    EventType = "user_deactivated"
	EventUserActivated      EventType = "user_activated"
	EventProductCreated     EventType = "product_created"
	EventProductUpdated     EventType = "product_updated"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	ActorID   string      `json:"actor_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// OrderPlacedPayload payload.
type OrderPlacedPayload struct {
	OrderID     string `json:"order_id"`
	UserID      string `json:"user_id"`
	ItemCount   int    `json:"item_count"`
	TotalAmount string `json:"total_amount"`
}

// OrderStatusChangedPayload payload.
type OrderStatusChangedPayload struct {
	OrderID   string             `json:"order_id"`
	OldStatus domain.OrderStatus `json:"old_status"`
	NewStatus domain.OrderStatus `json:"new_status"`
}

// UserLifecyclePayload payload for activation and deactivation events.
type UserLifecyclePayload struct {
	UserID string      `json:"user_id"`
	Email  string      `json:"email"`
	Role   domain.Role `json:"role"`
}

// ProductChangedPayload payload for catalog events.
type ProductChangedPayload struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
}
