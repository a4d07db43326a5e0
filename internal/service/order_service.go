package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/Sherryli112/HatGiveMe/internal/domain"
	"github.com/Sherryli112/HatGiveMe/internal/events"
	"github.com/Sherryli112/HatGiveMe/internal/repository"
	apperrors "github.com/Sherryli112/HatGiveMe/pkg/util"
)

// OrderService coordinates order placement and lifecycle.
type OrderService struct {
	orders      repository.OrderRepository
	uow         repository.UnitOfWork
	dispatcher  events.Dispatcher
	maxAttempts int
}

// OrderDependencies bundles requirements for the order service.
type OrderDependencies struct {
	OrderRepo   repository.OrderRepository
	UnitOfWork  repository.UnitOfWork
	Dispatcher  events.Dispatcher
	MaxAttempts int
}

// OrderLineInput is a requested (product, quantity) pair.
type OrderLineInput struct {
	ProductID string
	Quantity  int
}

// PlaceOrderInput describes the order placement payload.
type PlaceOrderInput struct {
	Items           []OrderLineInput
	ShippingAddress string
	ReceiverName    string
	ReceiverPhone   string
}

// OrderListFilter describes admin order listing filters.
type OrderListFilter struct {
	UserID *string
	Status *domain.OrderStatus
	Limit  int
	Offset int
}

// NewOrderService constructs the service.
func NewOrderService(deps OrderDependencies) *OrderService {
	attempts := deps.MaxAttempts
	if attempts <= 0 {
		attempts = 3
	}
	return &OrderService{
		orders:      deps.OrderRepo,
		uow:         deps.UnitOfWork,
		dispatcher:  deps.Dispatcher,
		maxAttempts: attempts,
	}
}

// PlaceOrder materializes an order and its stock decrements as one atomic
// unit. Every line is validated against the current product row, the unit
// price is snapshotted into the item, and stock is reduced through a
// conditional update so a failed line leaves no partial work behind.
// Serialization conflicts are retried a bounded number of times before the
// conflict is surfaced to the caller.
func (s *OrderService) PlaceOrder(ctx context.Context, userID string, input PlaceOrderInput) (*domain.Order, error) {
	var placed *domain.Order

	for attempt := 1; ; attempt++ {
		err := s.uow.RunSerializable(ctx, func(ctx context.Context, r repository.TxRepos) error {
			order := &domain.Order{
				UserID:          userID,
				Status:          domain.OrderStatusPending,
				ShippingAddress: input.ShippingAddress,
				ReceiverName:    input.ReceiverName,
				ReceiverPhone:   input.ReceiverPhone,
			}

			total := decimal.Zero
			for _, line := range input.Items {
				product, err := r.Products.GetByID(ctx, line.ProductID)
				if err != nil {
					if err == pgx.ErrNoRows {
						return apperrors.NewNotFound("product", map[string]any{"product_id": line.ProductID})
					}
					return err
				}
				if product.Stock < line.Quantity {
					return apperrors.NewInsufficientStock(product.ID, product.Stock, line.Quantity)
				}

				ok, err := r.Products.DecrementStock(ctx, product.ID, line.Quantity)
				if err != nil {
					return err
				}
				if !ok {
					// Another transaction took the stock between the read
					// and the decrement; re-read so the reported available
					// count is current, not the stale pre-check value.
					current, rerr := r.Products.GetByID(ctx, product.ID)
					if rerr != nil {
						return rerr
					}
					return apperrors.NewInsufficientStock(product.ID, current.Stock, line.Quantity)
				}

				total = total.Add(product.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
				order.Items = append(order.Items, domain.OrderItem{
					ProductID: product.ID,
					Quantity:  line.Quantity,
					Price:     product.Price,
				})
			}

			order.TotalAmount = total
			if err := r.Orders.Create(ctx, order); err != nil {
				return err
			}
			placed = order
			return nil
		})
		if err == nil {
			break
		}
		if apperrors.IsConflict(err) && attempt < s.maxAttempts {
			continue
		}
		return nil, err
	}

	s.publishEvent(ctx, events.Event{
		Type:    events.EventOrderPlaced,
		ActorID: userID,
		Payload: events.OrderPlacedPayload{
			OrderID:     placed.ID,
			UserID:      placed.UserID,
			ItemCount:   len(placed.Items),
			TotalAmount: placed.TotalAmount.String(),
		},
	})
	return placed, nil
}

// GetOrderForUser fetches an order ensuring ownership.
func (s *OrderService) GetOrderForUser(ctx context.Context, userID, orderID string) (*domain.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("order", map[string]any{"order_id": orderID})
		}
		return nil, err
	}
	if order.UserID != userID {
		return nil, apperrors.NewForbidden("order belongs to another account")
	}
	return order, nil
}

// GetOrder fetches any order; administrator operation.
func (s *OrderService) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("order", map[string]any{"order_id": orderID})
		}
		return nil, err
	}
	return order, nil
}

// ListUserOrders returns paginated orders for an account.
func (s *OrderService) ListUserOrders(ctx context.Context, userID string, limit, offset int) ([]domain.Order, error) {
	return s.orders.List(ctx, repository.OrderFilter{
		UserID: &userID,
		Limit:  limit,
		Offset: offset,
	})
}

// ListOrders returns paginated orders across accounts; administrator operation.
func (s *OrderService) ListOrders(ctx context.Context, filter OrderListFilter) ([]domain.Order, error) {
	return s.orders.List(ctx, repository.OrderFilter{
		UserID: filter.UserID,
		Status: filter.Status,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	})
}

// TransitionStatus moves an order along the status graph; administrator
// operation. The transition table is checked against the locked row inside
// the same transaction as the write.
func (s *OrderService) TransitionStatus(ctx context.Context, actorID, orderID string, next domain.OrderStatus) (*domain.Order, error) {
	if !domain.ValidOrderStatus(next) {
		return nil, apperrors.NewValidationError("unknown order status", map[string]any{"status": string(next)})
	}

	var oldStatus domain.OrderStatus
	err := s.uow.Run(ctx, func(ctx context.Context, r repository.TxRepos) error {
		order, err := r.Orders.GetByIDForUpdate(ctx, orderID)
		if err != nil {
			if err == pgx.ErrNoRows {
				return apperrors.NewNotFound("order", map[string]any{"order_id": orderID})
			}
			return err
		}
		if !domain.CanTransition(order.Status, next) {
			return apperrors.NewInvalidTransition(string(order.Status), string(next))
		}
		oldStatus = order.Status
		return r.Orders.UpdateStatus(ctx, orderID, next)
	})
	if err != nil {
		return nil, err
	}

	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	s.publishEvent(ctx, events.Event{
		Type:    events.EventOrderStatusChanged,
		ActorID: actorID,
		Payload: events.OrderStatusChangedPayload{
			OrderID:   order.ID,
			OldStatus: oldStatus,
			NewStatus: order.Status,
		},
	})
	return order, nil
}

func (s *OrderService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
