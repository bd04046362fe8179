package observability

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"go.uber.org/zap"

	"github.com/restaurantos/restaurant-service/internal/auth"
)

// unmatchedRoute labels requests that no registered route served.
const unmatchedRoute = "unmatched"

// RouteLabel returns the registered pattern that served the request. Fiber
// reuses its request buffers, so the label is always a private copy.
func RouteLabel(c *fiber.Ctx) string {
	if r := c.Route(); r != nil && r.Path != "" && r.Path != "/" {
		return utils.CopyString(r.Path)
	}
	return unmatchedRoute
}

// MethodLabel returns a private copy of the request method.
func MethodLabel(c *fiber.Ctx) string {
	return utils.CopyString(c.Method())
}

// RequestLogger logs each request and records it on metrics. Authenticated
// requests carry the caller's user and restaurant.
func RequestLogger(logger *zap.Logger, metrics *Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		duration := time.Since(start)

		status := c.Response().StatusCode()
		metrics.RecordRequest(RouteLabel(c), MethodLabel(c), status, duration)

		fields := []zap.Field{
			zap.String("method", c.Method()),
			zap.String("path", utils.CopyString(c.Path())),
			zap.Int("status", status),
			zap.Duration("duration", duration),
			zap.String("ip", c.IP()),
		}
		if principal, ok := auth.PrincipalFromContext(c); ok {
			fields = append(fields, IdentityFields(principal.Identity)...)
		}
		logger.Info("request", fields...)
		return err
	}
}
