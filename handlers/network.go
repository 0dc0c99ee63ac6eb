package handlers

import (
	"path/filepath"

	"gamer-network-system/middleware"
	"gamer-network-system/models"
	"gamer-network-system/services"
	"gamer-network-system/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// SetupNetworkRoutes wires the social graph surface: friend requests,
// network state, search, kick/leave and avatar upload.
func SetupNetworkRoutes(app *fiber.App, graph *services.GraphService, merge *services.MergeService, ledger *services.LedgerService) {
	secured := app.Group("/", middleware.UserContextMiddleware())

	secured.Post("/friend-requests", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		var req struct {
			TargetID string `json:"target_id"`
		}
		if err := c.BodyParser(&req); err != nil || req.TargetID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "target_id is required"})
		}
		if _, err := uuid.Parse(req.TargetID); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid target_id"})
		}

		view, err := graph.SendFriendRequest(userID, req.TargetID)
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(view)
	})

	secured.Post("/friend-requests/:id/accept", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request ID"})
		}

		result, err := merge.AcceptFriendRequest(id, userID)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(result)
	})

	secured.Delete("/friend-requests/:id", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request ID"})
		}

		counterpart, err := graph.DeleteFriendRequest(id, userID)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"message": "Request deleted", "counterpart_id": counterpart})
	})

	secured.Get("/network", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		networkID := c.Locals("network_id").(string)

		state, err := graph.GetNetworkState(networkID, userID)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(state)
	})

	secured.Get("/users/search", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		networkID := c.Locals("network_id").(string)

		query := c.Query("q", "")
		if query == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "q is required"})
		}

		results, err := graph.SearchCandidates(query, userID, networkID)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(results)
	})

	secured.Post("/network/kick", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		var req struct {
			TargetID string `json:"target_id"`
		}
		if err := c.BodyParser(&req); err != nil || req.TargetID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "target_id is required"})
		}

		if err := merge.Kick(req.TargetID, userID); err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"message": "Member removed"})
	})

	secured.Post("/network/leave", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		nw, err := merge.LeaveNetwork(userID)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"message": "Left network", "network_id": nw.ID})
	})

	secured.Post("/referrals", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		var req struct {
			ReferredID string `json:"referred_id"`
		}
		if err := c.BodyParser(&req); err != nil || req.ReferredID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "referred_id is required"})
		}

		ref, err := graph.RecordReferral(userID, req.ReferredID)
		if err != nil {
			return fail(c, err)
		}

		// One credit per referred user ever — the context key matches the
		// referral's own uniqueness.
		summary, err := ledger.ApplyEvents(userID, []services.EventInput{{
			Type:    models.XPEventReferral,
			Context: "referral:" + req.ReferredID,
			Amount:  services.ReferralXP,
		}})
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"referral": ref, "xp": summary})
	})

	// Avatar upload → R2 (small public asset), URL stored on the user row.
	secured.Post("/users/me/avatar", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		networkID := c.Locals("network_id").(string)

		file, err := c.FormFile("avatar")
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "avatar file is required"})
		}
		if file.Size > 5*1024*1024 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "file too large (max 5MB)"})
		}

		ext := filepath.Ext(file.Filename)
		if ext == "" {
			ext = ".png"
		}
		key := "avatars/" + uuid.NewString() + ext

		url, err := utils.UploadFileToR2(file, key)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to upload avatar"})
		}
		if err := graph.UpdateAvatar(userID, url); err != nil {
			return fail(c, err)
		}

		if graph.RT != nil {
			graph.RT.EmitNetworkSync(networkID, "network", fiber.Map{"avatar_updated": userID})
		}
		return c.JSON(fiber.Map{"avatar": url})
	})
}
