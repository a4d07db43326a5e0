package auth

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/Sherryli112/HatGiveMe/pkg/util"
)

// RequireAPIKey guards public auth endpoints with a deployment-wide key
// supplied in the X-API-Key header.
func RequireAPIKey(expected string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if expected == "" {
			return apperrors.NewUnauthorized("API key not configured on server")
		}
		provided := c.Get("X-API-Key")
		if provided == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(expected)) != 1 {
			return apperrors.NewUnauthorized("invalid API key")
		}
		return c.Next()
	}
}
