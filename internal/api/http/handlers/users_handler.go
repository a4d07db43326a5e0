package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/Sherryli112/HatGiveMe/internal/api/dto"
	"github.com/Sherryli112/HatGiveMe/internal/auth"
	"github.com/Sherryli112/HatGiveMe/internal/domain"
	"github.com/Sherryli112/HatGiveMe/internal/service"
	apperrors "github.com/Sherryli112/HatGiveMe/pkg/util"
)

// UsersHandler exposes profile and account administration endpoints.
type UsersHandler struct {
	users *service.UserService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(userService *service.UserService) *UsersHandler {
	return &UsersHandler{users: userService}
}

// Profile handles GET /users/profile.
func (h *UsersHandler) Profile(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	return c.JSON(fiber.Map{"data": dto.FromUser(principal)})
}

// UpdateProfile handles PATCH /users/profile.
func (h *UsersHandler) UpdateProfile(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	user, err := h.users.UpdateProfile(c.Context(), principal.ID, req.Name)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromUser(user)})
}

// DeactivateSelf handles DELETE /users/me.
func (h *UsersHandler) DeactivateSelf(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	user, err := h.users.DeactivateSelf(c.Context(), principal.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromUser(user)})
}

// List handles GET /users (admin).
func (h *UsersHandler) List(c *fiber.Ctx) error {
	filter := service.UserListFilter{
		Limit:  parseIntQuery(c, "limit", 50),
		Offset: parseIntQuery(c, "offset", 0),
	}
	if role := c.Query("role"); role != "" {
		parsed := domain.Role(role)
		filter.Role = &parsed
	}
	if active := c.Query("active"); active != "" {
		parsed, err := strconv.ParseBool(active)
		if err != nil {
			return apperrors.NewValidationError("invalid active filter", map[string]any{"active": active})
		}
		filter.Active = &parsed
	}

	users, err := h.users.ListUsers(c.Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromUsers(users)})
}

// CreateAdmin handles POST /users/admins (admin).
func (h *UsersHandler) CreateAdmin(c *fiber.Ctx) error {
	var req dto.CreateAdminRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	admin, err := h.users.CreateAdmin(c.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.FromUser(admin)})
}

// UpdateStatus handles PATCH /users/:id/status (admin). Active=true
// activates the account, active=false runs the deactivation rules.
func (h *UsersHandler) UpdateStatus(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	targetID := c.Params("id")

	var req dto.UpdateUserStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	var (
		user *domain.User
		err  error
	)
	if *req.Active {
		user, err = h.users.ActivateUser(c.Context(), targetID)
	} else {
		user, err = h.users.DeactivateUser(c.Context(), targetID, principal.ID)
	}
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromUser(user)})
}

func parseIntQuery(c *fiber.Ctx, key string, fallback int) int {
	val := c.Query(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}
