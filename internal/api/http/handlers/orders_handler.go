package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/Sherryli112/HatGiveMe/internal/api/dto"
	"github.com/Sherryli112/HatGiveMe/internal/auth"
	"github.com/Sherryli112/HatGiveMe/internal/domain"
	"github.com/Sherryli112/HatGiveMe/internal/service"
	apperrors "github.com/Sherryli112/HatGiveMe/pkg/util"
)

// OrdersHandler exposes order endpoints.
type OrdersHandler struct {
	orders *service.OrderService
}

// NewOrdersHandler constructs handler.
func NewOrdersHandler(orderService *service.OrderService) *OrdersHandler {
	return &OrdersHandler{orders: orderService}
}

// Create handles POST /orders.
func (h *OrdersHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.CreateOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	input := service.PlaceOrderInput{
		ShippingAddress: req.ShippingAddress,
		ReceiverName:    req.ReceiverName,
		ReceiverPhone:   req.ReceiverPhone,
	}
	for _, item := range req.Items {
		input.Items = append(input.Items, service.OrderLineInput{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}

	order, err := h.orders.PlaceOrder(c.Context(), principal.ID, input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.FromOrder(order)})
}

// ListMine handles GET /orders/my.
func (h *OrdersHandler) ListMine(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	orders, err := h.orders.ListUserOrders(c.Context(), principal.ID, parseIntQuery(c, "limit", 50), parseIntQuery(c, "offset", 0))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromOrders(orders)})
}

// List handles GET /orders (admin).
func (h *OrdersHandler) List(c *fiber.Ctx) error {
	filter := service.OrderListFilter{
		Limit:  parseIntQuery(c, "limit", 50),
		Offset: parseIntQuery(c, "offset", 0),
	}
	if userID := c.Query("user_id"); userID != "" {
		filter.UserID = &userID
	}
	if status := c.Query("status"); status != "" {
		parsed := domain.OrderStatus(status)
		if !domain.ValidOrderStatus(parsed) {
			return apperrors.NewValidationError("unknown order status", map[string]any{"status": status})
		}
		filter.Status = &parsed
	}

	orders, err := h.orders.ListOrders(c.Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromOrders(orders)})
}

// Get handles GET /orders/:id. Owners see their own orders, administrators
// see any.
func (h *OrdersHandler) Get(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	orderID := c.Params("id")
	var (
		order *domain.Order
		err   error
	)
	if principal.IsAdmin() {
		order, err = h.orders.GetOrder(c.Context(), orderID)
	} else {
		order, err = h.orders.GetOrderForUser(c.Context(), principal.ID, orderID)
	}
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromOrder(order)})
}

// UpdateStatus handles PATCH /orders/:id/status (admin).
func (h *OrdersHandler) UpdateStatus(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.UpdateOrderStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	order, err := h.orders.TransitionStatus(c.Context(), principal.ID, c.Params("id"), domain.OrderStatus(req.Status))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromOrder(order)})
}
