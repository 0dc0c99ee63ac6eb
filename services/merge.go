package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"gamer-network-system/cache"
	"gamer-network-system/models"

	"gorm.io/gorm"
)

// MergeService is the merge/split engine. Merging two networks is the one
// operation in the system that needs an explicit transactional boundary:
// a concurrent reader must never observe players re-parented to the target
// while users still hang off the source.
type MergeService struct {
	DB            *gorm.DB
	Graph         *GraphService
	Eligibility   *EligibilityService
	Notifications *NotificationService
	Standings     *cache.StandingsCache
	RT            Pusher
}

func NewMergeService(db *gorm.DB, graph *GraphService, eligibility *EligibilityService, notifications *NotificationService, standings *cache.StandingsCache, rt Pusher) *MergeService {
	return &MergeService{
		DB:            db,
		Graph:         graph,
		Eligibility:   eligibility,
		Notifications: notifications,
		Standings:     standings,
		RT:            rt,
	}
}

// AcceptResult reports the outcome of a friend-request acceptance.
type AcceptResult struct {
	NetworkID    string `json:"network_id"`
	JoinedUserID string `json:"joined_user_id,omitempty"`
}

// pickMergeTarget chooses merge direction: the larger network absorbs the
// smaller one, a tie favors the recipient's network.
func pickMergeTarget(recipientNet string, recipientCount int64, senderNet string, senderCount int64) (target, source string) {
	if senderCount > recipientCount {
		return senderNet, recipientNet
	}
	return recipientNet, senderNet
}

// AcceptFriendRequest consumes a pending request addressed to recipientID
// and merges the two parties' networks. If another acceptance merged them
// in the interim, the shared network comes back with no further action.
func (s *MergeService) AcceptFriendRequest(requestID, recipientID string) (*AcceptResult, error) {
	var req models.FriendRequest
	err := s.DB.First(&req, "id = ? AND recipient_id = ?", requestID, recipientID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: request %s", ErrNotFound, requestID)
	}
	if err != nil {
		return nil, err
	}

	sender, err := s.Graph.getUser(req.SenderID)
	if err != nil {
		return nil, err
	}
	recipient, err := s.Graph.getUser(req.RecipientID)
	if err != nil {
		return nil, err
	}

	if err := s.DB.Delete(&models.FriendRequest{}, "id = ?", requestID).Error; err != nil {
		return nil, err
	}

	if sender.NetworkID == recipient.NetworkID {
		return &AcceptResult{NetworkID: recipient.NetworkID}, nil
	}

	var recipientCount, senderCount int64
	if err := s.DB.Model(&models.User{}).Where("network_id = ?", recipient.NetworkID).Count(&recipientCount).Error; err != nil {
		return nil, err
	}
	if err := s.DB.Model(&models.User{}).Where("network_id = ?", sender.NetworkID).Count(&senderCount).Error; err != nil {
		return nil, err
	}

	target, source := pickMergeTarget(recipient.NetworkID, recipientCount, sender.NetworkID, senderCount)
	joined := sender.ID
	if source == recipient.NetworkID {
		joined = recipient.ID
	}

	if err := s.mergeNetworks(target, source); err != nil {
		return nil, err
	}

	if s.Notifications != nil {
		msg := fmt.Sprintf("%s accepted your request — your networks merged", recipient.Username)
		s.Notifications.Notify(sender.ID, models.NotificationRequestAccept, &msg, map[string]interface{}{
			"network_id": target,
		})
	}
	if s.RT != nil {
		s.RT.EmitNetworkSync(target, "network", map[string]interface{}{"merged_from": source})
		s.RT.EmitSocialUpdate([]string{sender.ID, recipient.ID}, map[string]interface{}{"event": "request:accepted"})
	}

	return &AcceptResult{NetworkID: target, JoinedUserID: joined}, nil
}

// mergeNetworks re-parents everything the source network scopes onto the
// target and deletes the source row, all inside one transaction. Any
// failure rolls the whole merge back — a partial merge is never
// observable. Merged members keep their original network_joined_at.
func (s *MergeService) mergeNetworks(targetID, sourceID string) error {
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Player{}).Where("network_id = ?", sourceID).
			Update("network_id", targetID).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Match{}).Where("network_id = ?", sourceID).
			Update("network_id", targetID).Error; err != nil {
			return err
		}

		if err := mergePreferences(tx, targetID, sourceID); err != nil {
			return err
		}

		if err := tx.Model(&models.User{}).Where("network_id = ?", sourceID).
			Update("network_id", targetID).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Network{}, "id = ?", sourceID).Error
	})
	if err != nil {
		return err
	}

	// A request between two users who are now co-members is no longer a
	// pending handshake — membership supersedes it.
	memberIDs := s.DB.Model(&models.User{}).Select("id").Where("network_id = ?", targetID)
	if err := s.DB.Where("sender_id IN (?) AND recipient_id IN (?)", memberIDs, memberIDs).
		Delete(&models.FriendRequest{}).Error; err != nil {
		log.Printf("[Merge] internal request cleanup failed for %s: %v", targetID, err)
	}

	if s.Standings != nil {
		ctx := context.Background()
		if err := s.Standings.DropNetwork(ctx, sourceID); err != nil {
			log.Printf("[Merge] standings drop failed for %s: %v", sourceID, err)
		}
		if err := s.Standings.DropNetwork(ctx, targetID); err != nil {
			log.Printf("[Merge] standings drop failed for %s: %v", targetID, err)
		}
	}
	return nil
}

// mergePreferences union-merges the source's map/ban sets into the target
// per game key and deletes the source rows.
func mergePreferences(tx *gorm.DB, targetID, sourceID string) error {
	var sourcePrefs []models.NetworkPreference
	if err := tx.Where("network_id = ?", sourceID).Find(&sourcePrefs).Error; err != nil {
		return err
	}

	for _, src := range sourcePrefs {
		var dst models.NetworkPreference
		err := tx.Where("network_id = ? AND game_key = ?", targetID, src.GameKey).First(&dst).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := tx.Model(&models.NetworkPreference{}).Where("id = ?", src.ID).
				Update("network_id", targetID).Error; err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			dst.MapPool = unionStrings(dst.MapPool, src.MapPool)
			dst.Bans = unionStrings(dst.Bans, src.Bans)
			if err := tx.Save(&dst).Error; err != nil {
				return err
			}
			if err := tx.Delete(&models.NetworkPreference{}, "id = ?", src.ID).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

// unionStrings merges b into a, collapsing duplicates and keeping order.
func unionStrings(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, s := range append(append([]string{}, a...), b...) {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

// LeaveNetwork splits one user out into a brand-new isolated network:
// create the network, move the user, clear their pending requests, then
// tear down the vacated network if it emptied. The order matters — the
// departing user never transiently has zero networks.
func (s *MergeService) LeaveNetwork(userID string) (*models.Network, error) {
	user, err := s.Graph.getUser(userID)
	if err != nil {
		return nil, err
	}
	oldNetwork := user.NetworkID

	nw, err := s.Graph.CreateIsolatedNetwork()
	if err != nil {
		return nil, err
	}
	if err := s.Graph.MoveUserToNetwork(userID, nw.ID); err != nil {
		return nil, err
	}
	if err := s.Graph.ClearUserFriendRequests(userID); err != nil {
		return nil, err
	}
	if err := s.Graph.DeleteNetworkIfEmpty(oldNetwork); err != nil {
		return nil, err
	}

	if s.Standings != nil {
		ctx := context.Background()
		if err := s.Standings.RemoveMember(ctx, oldNetwork, userID); err != nil {
			log.Printf("[Split] standings remove failed for %s: %v", userID, err)
		}
		if err := s.Standings.SetMemberScore(ctx, nw.ID, userID, user.XPTotal); err != nil {
			log.Printf("[Split] standings seed failed for %s: %v", userID, err)
		}
	}

	if s.RT != nil {
		s.RT.EmitNetworkSync(oldNetwork, "network", map[string]interface{}{"left": userID})
		s.RT.EmitSocialUpdate([]string{userID}, map[string]interface{}{"event": "network:left", "network_id": nw.ID})
	}
	return nw, nil
}

// Kick splits a non-eligible co-member out of the actor's network. Only
// OG-eligible members may kick, nobody kicks themselves, and the target
// must currently share the actor's network.
func (s *MergeService) Kick(targetID, actorID string) error {
	if targetID == actorID {
		return fmt.Errorf("%w: cannot kick yourself", ErrValidation)
	}

	actor, err := s.Graph.getUser(actorID)
	if err != nil {
		return err
	}
	target, err := s.Graph.getUser(targetID)
	if err != nil {
		return err
	}
	if actor.NetworkID != target.NetworkID {
		return fmt.Errorf("%w: target is not in your network", ErrValidation)
	}

	members, err := s.Graph.NetworkMembers(actor.NetworkID)
	if err != nil {
		return err
	}
	og := OGSet(members)
	if !og[actorID] {
		return fmt.Errorf("%w: only eligible members may kick", ErrUnauthorized)
	}
	if og[targetID] {
		return fmt.Errorf("%w: eligible members cannot be kicked", ErrUnauthorized)
	}

	if _, err := s.LeaveNetwork(targetID); err != nil {
		return err
	}

	if s.Notifications != nil {
		msg := "You were removed from your network"
		s.Notifications.Notify(targetID, models.NotificationKicked, &msg, map[string]interface{}{
			"network_id": actor.NetworkID,
		})
	}
	return nil
}
