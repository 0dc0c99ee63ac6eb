package middleware

import (
	"log"
	"strings"

	"gamer-network-system/services"

	"github.com/gofiber/fiber/v2"
)

// SessionCookie is where clients carry their live-connection credential.
const SessionCookie = "session_token"

// WSAuthMiddleware validates the session token from the connection's
// cookie header before the websocket upgrade. Absent or invalid tokens are
// rejected with 401 right here, so nothing unauthenticated ever reaches
// the connection registry.
//
// Usage:
//
//	app.Get("/realtime", middleware.WSAuthMiddleware(authClient), realtime.UpgradeRequired, realtime.Handler(reg))
func WSAuthMiddleware(authClient *services.AuthServiceClient) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := strings.TrimSpace(c.Cookies(SessionCookie))
		if token == "" {
			log.Printf("[WSAuth] missing %s cookie for %s", SessionCookie, c.IP())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing session token",
			})
		}

		identity, err := authClient.ValidateSession(token)
		if err != nil {
			log.Printf("[WSAuth] validation failed for %s: %v", c.IP(), err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "unauthorized",
			})
		}

		c.Locals("user_id", identity.UserID)
		c.Locals("username", identity.Username)
		c.Locals("network_id", identity.NetworkID)

		return c.Next()
	}
}
