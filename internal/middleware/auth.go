package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/example/gamezone/internal/config"
	"github.com/example/gamezone/internal/identity"
	"github.com/example/gamezone/internal/utils"
)

const (
	mobileContextKey = "currentMobile"
	roleContextKey   = "currentRole"
)

// AuthMiddleware validates JWT tokens and loads the caller's mobile and
// role into context.
func AuthMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing authorization header")
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid authorization header")
		}

		mobile, role, err := utils.ParseToken(cfg.JWTSecret, parts[1])
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid token")
		}

		c.Locals(mobileContextKey, mobile)
		c.Locals(roleContextKey, role)
		return c.Next()
	}
}

// RequireAdmin gates a route to admin callers. The role is re-checked
// against the identity store so a demoted admin's token stops working.
func RequireAdmin(ids *identity.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		mobile, ok := GetCurrentMobile(c)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
		}

		isAdmin, err := ids.IsAdmin(mobile)
		if err != nil {
			return err
		}
		if !isAdmin {
			return fiber.NewError(fiber.StatusForbidden, "admin privileges required")
		}

		return c.Next()
	}
}

// GetCurrentMobile extracts the authenticated caller's mobile from context.
func GetCurrentMobile(c *fiber.Ctx) (string, bool) {
	value := c.Locals(mobileContextKey)
	if value == nil {
		return "", false
	}

	if mobile, ok := value.(string); ok && mobile != "" {
		return mobile, true
	}

	return "", false
}
