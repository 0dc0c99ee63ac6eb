package services

import (
	"context"
	"fmt"
	"log"

	"gamer-network-system/cache"
	"gamer-network-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EventInput is one reward event to append. Context is the dedup key: the
// same (user, type, context) is credited at most once no matter how often
// a client retries (e.g. "match:42:base").
type EventInput struct {
	Type    string `json:"type"`
	Context string `json:"context"`
	Amount  int64  `json:"amount"`
}

// AppliedEvent is a (type, applied amount) breakdown entry. Only nonzero
// applications are reported.
type AppliedEvent struct {
	Type   string `json:"type"`
	Amount int64  `json:"amount"`
}

// LedgerSummary describes what one ApplyEvents call actually did.
type LedgerSummary struct {
	UserID    string         `json:"user_id"`
	Total     int64          `json:"total"`
	Delta     int64          `json:"delta"`
	Breakdown []AppliedEvent `json:"breakdown"`
}

// LedgerService owns the xp_events table and the cached users.xp_total
// column. No other component writes either.
type LedgerService struct {
	DB        *gorm.DB
	Standings *cache.StandingsCache
	RT        Pusher
}

func NewLedgerService(db *gorm.DB, standings *cache.StandingsCache, rt Pusher) *LedgerService {
	return &LedgerService{DB: db, Standings: standings, RT: rt}
}

// applyFloor computes the next cached total and the applied delta for one
// event. The total never goes below zero, so the delta can be 0 even when
// the raw amount is not.
func applyFloor(total, amount int64) (next, delta int64) {
	next = total + amount
	if next < 0 {
		next = 0
	}
	return next, next - total
}

// ApplyEvents appends events to the user's ledger inside one transaction.
// Duplicate (user, type, context) rows are silent no-ops that do not stop
// the remaining events; any other storage error rolls the call back. When
// the aggregate delta is nonzero an xp:update push goes out exactly once.
func (s *LedgerService) ApplyEvents(userID string, events []EventInput) (*LedgerSummary, error) {
	summary := &LedgerSummary{UserID: userID}
	var networkID string

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, "id = ?", userID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("%w: user %s", ErrNotFound, userID)
			}
			return err
		}
		networkID = user.NetworkID

		total := user.XPTotal
		for _, ev := range events {
			next, delta := applyFloor(total, ev.Amount)

			row := models.XPEvent{
				ID:      uuid.NewString(),
				UserID:  userID,
				Type:    ev.Type,
				Context: ev.Context,
				Amount:  delta,
			}
			res := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "user_id"}, {Name: "type"}, {Name: "context"}},
				DoNothing: true,
			}).Create(&row)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				// Already credited — idempotent no-op for this event.
				continue
			}

			if delta != 0 {
				total = next
				summary.Breakdown = append(summary.Breakdown, AppliedEvent{Type: ev.Type, Amount: delta})
			}
		}

		summary.Delta = total - user.XPTotal
		summary.Total = total

		if summary.Delta != 0 {
			if err := tx.Model(&models.User{}).Where("id = ?", userID).
				Update("xp_total", total).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if summary.Delta != 0 {
		s.writeThroughStandings(networkID, userID, summary.Total)
		if s.RT != nil {
			s.RT.EmitXpUpdate(userID, summary)
		}
	}
	return summary, nil
}

// ApplyNetworkEvents applies the events to every current member of the
// actor's network — the shared-credit pool for match completion, roster
// changes and team shares. If the member list resolves empty the actor is
// credited alone. The returned summary is the actor's.
func (s *LedgerService) ApplyNetworkEvents(actorID string, events []EventInput) (*LedgerSummary, error) {
	var actor models.User
	if err := s.DB.First(&actor, "id = ?", actorID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: user %s", ErrNotFound, actorID)
		}
		return nil, err
	}

	var memberIDs []string
	if err := s.DB.Model(&models.User{}).
		Where("network_id = ?", actor.NetworkID).
		Pluck("id", &memberIDs).Error; err != nil {
		return nil, err
	}
	if len(memberIDs) == 0 {
		memberIDs = []string{actorID}
	}

	var actorSummary *LedgerSummary
	for _, memberID := range memberIDs {
		sum, err := s.ApplyEvents(memberID, events)
		if err != nil {
			return nil, err
		}
		if memberID == actorID {
			actorSummary = sum
		}
	}
	if actorSummary == nil {
		// Actor not in the resolved list (raced with a membership change);
		// credit them directly.
		return s.ApplyEvents(actorID, events)
	}
	return actorSummary, nil
}

// XpSnapshot is the read-side view of a user's ledger.
type XpSnapshot struct {
	UserID string           `json:"user_id"`
	Total  int64            `json:"total"`
	Rank   int              `json:"rank,omitempty"`
	Recent []models.XPEvent `json:"recent"`
}

// GetXpSnapshot returns the cached total, the user's standings rank and
// their most recent ledger entries.
func (s *LedgerService) GetXpSnapshot(userID string) (*XpSnapshot, error) {
	var user models.User
	if err := s.DB.First(&user, "id = ?", userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: user %s", ErrNotFound, userID)
		}
		return nil, err
	}

	var recent []models.XPEvent
	if err := s.DB.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(20).
		Find(&recent).Error; err != nil {
		return nil, err
	}

	snap := &XpSnapshot{UserID: userID, Total: user.XPTotal, Recent: recent}
	if s.Standings != nil {
		if rank, err := s.Standings.Rank(context.Background(), user.NetworkID, userID); err == nil {
			snap.Rank = rank
		}
	}
	return snap, nil
}

// NetworkStandings lists a network's members by XP, highest first. Served
// from the redis set, rebuilt from the users table when the set is cold.
func (s *LedgerService) NetworkStandings(networkID string, limit int) ([]cache.Entry, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	if s.Standings != nil {
		entries, err := s.Standings.Standings(context.Background(), networkID, limit)
		if err != nil {
			log.Printf("[Ledger] standings cache read failed for %s: %v", networkID, err)
		} else if entries != nil {
			return entries, nil
		}
	}

	var members []models.User
	if err := s.DB.Where("network_id = ?", networkID).
		Order("xp_total DESC").
		Find(&members).Error; err != nil {
		return nil, err
	}

	entries := make([]cache.Entry, 0, len(members))
	for i, m := range members {
		entries = append(entries, cache.Entry{UserID: m.ID, Total: m.XPTotal, Rank: i + 1})
		s.writeThroughStandings(networkID, m.ID, m.XPTotal)
	}
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// writeThroughStandings is best-effort: the cache never fails the ledger.
func (s *LedgerService) writeThroughStandings(networkID, userID string, total int64) {
	if s.Standings == nil || networkID == "" {
		return
	}
	if err := s.Standings.SetMemberScore(context.Background(), networkID, userID, total); err != nil {
		log.Printf("[Ledger] standings write failed for %s: %v", userID, err)
	}
}
