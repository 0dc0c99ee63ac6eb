package middleware

import (
	"log"

	"github.com/gofiber/fiber/v2"
)

// UserContextMiddleware extracts the authenticated identity the Gateway
// forwards on every secured request: user id, username and the user's
// current network id.
func UserContextMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Get("X-User-ID")
		username := c.Get("X-Username")
		networkID := c.Get("X-Network-ID")

		if userID == "" || networkID == "" {
			log.Printf("[USER_CTX] missing identity headers on secured route: %s", c.Path())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing identity — request must come through gateway with auth context",
			})
		}

		c.Locals("user_id", userID)
		c.Locals("username", username)
		c.Locals("network_id", networkID)

		return c.Next()
	}
}
