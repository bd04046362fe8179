package auth

import (
	"github.com/gofiber/fiber/v2"

	apperrors "github.com/restaurantos/restaurant-service/pkg/util/errorutil"
)

// RequireAuthenticated ensures a principal was attached by AuthMiddleware.
func RequireAuthenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := PrincipalFromContext(c); !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		return c.Next()
	}
}

// RequirePermission ensures the caller holds at least one of the allowed permissions.
// Calling it without permissions only checks authentication.
func RequirePermission(allowed ...Permission) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if len(allowed) == 0 {
			return c.Next()
		}
		if !principal.Can(allowed...) {
			return apperrors.NewForbidden("access denied")
		}
		return c.Next()
	}
}
