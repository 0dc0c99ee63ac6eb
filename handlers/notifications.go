package handlers

import (
	"gamer-network-system/middleware"
	"gamer-network-system/services"

	"github.com/gofiber/fiber/v2"
)

// SetupNotificationRoutes wires the recipient-owned notification surface.
func SetupNotificationRoutes(app *fiber.App, notifications *services.NotificationService) {
	secured := app.Group("/", middleware.UserContextMiddleware())

	secured.Get("/notifications", notifications.GetUserNotifications)
	secured.Patch("/notifications/:id/read", notifications.MarkNotificationRead)
	secured.Delete("/notifications/:id", notifications.DeleteNotification)
}
