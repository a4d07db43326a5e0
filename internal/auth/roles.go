package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Sherryli112/HatGiveMe/internal/domain"
	apperrors "github.com/Sherryli112/HatGiveMe/pkg/util"
)

// RequireAuthenticated ensures a caller is logged in.
func RequireAuthenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := PrincipalFromContext(c); !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		return c.Next()
	}
}

// RequireAdmin ensures the caller holds the administrator role.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if principal.Role != domain.RoleAdmin {
			return apperrors.NewForbidden("administrator role required")
		}
		return c.Next()
	}
}
