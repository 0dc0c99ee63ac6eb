package services

import (
	"errors"
	"log"

	"gamer-network-system/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// XP amounts for network-wide credit events.
const (
	MatchCompletedXP = 50
	RosterUpdatedXP  = 10
	TeamSharedXP     = 25
	ReferralXP       = 100
)

// RosterService is the network-scoped player and match CRUD. Every
// mutation here is a shared-credit event: the ledger credits all current
// members and the coordinator re-syncs them live.
type RosterService struct {
	DB     *gorm.DB
	Ledger *LedgerService
	RT     Pusher
}

func NewRosterService(db *gorm.DB, ledger *LedgerService, rt Pusher) *RosterService {
	return &RosterService{DB: db, Ledger: ledger, RT: rt}
}

// CreatePlayer adds a roster entry to the actor's network.
func (s *RosterService) CreatePlayer(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	networkID := c.Locals("network_id").(string)

	var req struct {
		Name   string `json:"name"`
		Avatar string `json:"avatar"`
	}
	if err := c.BodyParser(&req); err != nil || req.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "name is required"})
	}

	player := models.Player{
		ID:        uuid.NewString(),
		NetworkID: networkID,
		Name:      req.Name,
		Slug:      slug.Make(req.Name),
		Avatar:    req.Avatar,
		CreatedBy: userID,
	}
	if err := s.DB.Create(&player).Error; err != nil {
		log.Printf("DB Error creating player: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create player"})
	}

	s.creditNetwork(userID, models.XPEventRosterUpdated, "player:"+player.ID+":add", RosterUpdatedXP)
	if s.RT != nil {
		s.RT.EmitNetworkSync(networkID, "players", fiber.Map{"player_id": player.ID})
	}
	return c.Status(fiber.StatusCreated).JSON(player)
}

// GetPlayers lists the network's roster.
func (s *RosterService) GetPlayers(c *fiber.Ctx) error {
	networkID := c.Locals("network_id").(string)

	var players []models.Player
	if err := s.DB.Where("network_id = ?", networkID).Order("created_at ASC").Find(&players).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch players"})
	}
	return c.JSON(players)
}

// DeletePlayer removes a roster entry from the actor's network.
func (s *RosterService) DeletePlayer(c *fiber.Ctx) error {
	networkID := c.Locals("network_id").(string)
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid player ID"})
	}

	res := s.DB.Where("id = ? AND network_id = ?", id, networkID).Delete(&models.Player{})
	if res.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete player"})
	}
	if res.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Player not found"})
	}

	if s.RT != nil {
		s.RT.EmitNetworkSync(networkID, "players", fiber.Map{"deleted": id})
	}
	return c.JSON(fiber.Map{"message": "Player deleted"})
}

// CreateMatch records a completed match and credits the whole network with
// the shared match XP (context "match:<id>:base" — retry-safe).
func (s *RosterService) CreateMatch(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	networkID := c.Locals("network_id").(string)

	var req struct {
		GameKey string `json:"game_key"`
		Map     string `json:"map"`
		Teams   string `json:"teams"`
		Scores  string `json:"scores"`
	}
	if err := c.BodyParser(&req); err != nil || req.GameKey == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "game_key is required"})
	}

	match := models.Match{
		ID:        uuid.NewString(),
		NetworkID: networkID,
		GameKey:   req.GameKey,
		Map:       req.Map,
		Teams:     orEmptyJSON(req.Teams),
		Scores:    orEmptyJSON(req.Scores),
		CreatedBy: userID,
	}
	if err := s.DB.Create(&match).Error; err != nil {
		log.Printf("DB Error creating match: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create match"})
	}

	summary := s.creditNetwork(userID, models.XPEventMatchCompleted, "match:"+match.ID+":base", MatchCompletedXP)
	if s.RT != nil {
		s.RT.EmitNetworkSync(networkID, "matches", fiber.Map{"match_id": match.ID})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"match": match, "xp": summary})
}

// GetMatches lists the network's match history, newest first.
func (s *RosterService) GetMatches(c *fiber.Ctx) error {
	networkID := c.Locals("network_id").(string)

	limit := c.QueryInt("limit", 50)
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	var matches []models.Match
	if err := s.DB.Where("network_id = ?", networkID).
		Order("created_at DESC").Limit(limit).Find(&matches).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch matches"})
	}
	return c.JSON(matches)
}

// ShareTeam credits the network for a team share (one credit per match).
func (s *RosterService) ShareTeam(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	networkID := c.Locals("network_id").(string)
	matchID := c.Params("id")
	if _, err := uuid.Parse(matchID); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid match ID"})
	}

	var match models.Match
	if err := s.DB.Where("id = ? AND network_id = ?", matchID, networkID).First(&match).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Match not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	summary := s.creditNetwork(userID, models.XPEventTeamShared, "match:"+matchID+":share", TeamSharedXP)
	return c.JSON(fiber.Map{"message": "OK", "xp": summary})
}

// creditNetwork runs the shared-credit ledger call. Ledger failures are
// surfaced in logs but do not fail the CRUD that triggered them; the
// context key keeps a retried request from double-crediting.
func (s *RosterService) creditNetwork(actorID, eventType, context string, amount int64) *LedgerSummary {
	summary, err := s.Ledger.ApplyNetworkEvents(actorID, []EventInput{
		{Type: eventType, Context: context, Amount: amount},
	})
	if err != nil {
		log.Printf("[Roster] network credit failed (%s %s): %v", eventType, context, err)
		return nil
	}
	return summary
}

func orEmptyJSON(s string) string {
	if s == "" {
		return "{}"
	}
	return s
}
