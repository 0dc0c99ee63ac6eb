package handlers

import (
	"gamer-network-system/middleware"
	"gamer-network-system/services"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// SetupXPRoutes wires the ledger surface: snapshots, standings, admin
// grants and the roster/match CRUD that drives network-wide credit.
func SetupXPRoutes(app *fiber.App, ledger *services.LedgerService, roster *services.RosterService) {
	secured := app.Group("/", middleware.UserContextMiddleware())

	secured.Get("/user/xp", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		snap, err := ledger.GetXpSnapshot(userID)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(snap)
	})

	secured.Get("/network/standings", func(c *fiber.Ctx) error {
		networkID := c.Locals("network_id").(string)

		entries, err := ledger.NetworkStandings(networkID, c.QueryInt("limit", 50))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(entries)
	})

	// Roster and match CRUD — shared-credit events for the whole network.
	secured.Post("/players", roster.CreatePlayer)
	secured.Get("/players", roster.GetPlayers)
	secured.Delete("/players/:id", roster.DeletePlayer)
	secured.Post("/matches", roster.CreateMatch)
	secured.Get("/matches", roster.GetMatches)
	secured.Post("/matches/:id/share", roster.ShareTeam)

	// Admin grant: direct ledger append for one user.
	admin := app.Group("/admin", middleware.UserContextMiddleware())
	admin.Post("/xp/events", func(c *fiber.Ctx) error {
		var req struct {
			UserID    string                `json:"user_id"`
			Events    []services.EventInput `json:"events"`
			Broadcast bool                  `json:"broadcast"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON", "cause": err.Error()})
		}
		if _, err := uuid.Parse(req.UserID); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid user_id"})
		}
		if len(req.Events) == 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "events is required"})
		}

		apply := ledger.ApplyEvents
		if req.Broadcast {
			apply = ledger.ApplyNetworkEvents
		}
		summary, err := apply(req.UserID, req.Events)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(summary)
	})
}
