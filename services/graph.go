package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gamer-network-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GraphService exclusively owns the network, membership and friend-request
// rows. The merge engine builds on these primitives.
type GraphService struct {
	DB            *gorm.DB
	Eligibility   *EligibilityService
	Notifications *NotificationService
	RT            Pusher
}

func NewGraphService(db *gorm.DB, eligibility *EligibilityService, notifications *NotificationService, rt Pusher) *GraphService {
	return &GraphService{DB: db, Eligibility: eligibility, Notifications: notifications, RT: rt}
}

// UserSummary is the display info attached to request views and search
// results.
type UserSummary struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar,omitempty"`
}

func summarize(u models.User) UserSummary {
	return UserSummary{ID: u.ID, Username: u.Username, Avatar: u.Avatar}
}

// FriendRequestView is a pending request with both parties resolved.
type FriendRequestView struct {
	models.FriendRequest
	Sender    UserSummary `json:"sender"`
	Recipient UserSummary `json:"recipient"`
}

func (s *GraphService) getUser(id string) (*models.User, error) {
	var u models.User
	if err := s.DB.First(&u, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %s", ErrNotFound, id)
		}
		return nil, err
	}
	return &u, nil
}

// pendingBetween finds a pending request between the pair in either
// direction.
func (s *GraphService) pendingBetween(a, b string) (*models.FriendRequest, error) {
	var req models.FriendRequest
	err := s.DB.Where(
		"(sender_id = ? AND recipient_id = ?) OR (sender_id = ? AND recipient_id = ?)",
		a, b, b, a,
	).First(&req).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// SendFriendRequest persists a pending request from sender to target.
// Fails on self-requests, missing users, co-members and an existing
// pending request for the pair (either direction).
//
// The duplicate check is check-then-insert without a serializable
// guarantee; two simultaneous requests for the same pair can race. Known
// and accepted — last write wins.
func (s *GraphService) SendFriendRequest(senderID, targetID string) (*FriendRequestView, error) {
	if senderID == targetID {
		return nil, fmt.Errorf("%w: cannot send a request to yourself", ErrValidation)
	}

	sender, err := s.getUser(senderID)
	if err != nil {
		return nil, err
	}
	target, err := s.getUser(targetID)
	if err != nil {
		return nil, err
	}

	if sender.NetworkID == target.NetworkID {
		return nil, fmt.Errorf("%w: already in the same network", ErrConflict)
	}

	existing, err := s.pendingBetween(senderID, targetID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: a pending request already exists", ErrConflict)
	}

	req := models.FriendRequest{
		ID:          uuid.NewString(),
		SenderID:    senderID,
		RecipientID: targetID,
		Status:      models.FriendRequestStatusPending,
	}
	if err := s.DB.Create(&req).Error; err != nil {
		return nil, err
	}

	if s.Notifications != nil {
		msg := fmt.Sprintf("%s wants to join networks with you", sender.Username)
		s.Notifications.Notify(targetID, models.NotificationFriendRequest, &msg, map[string]interface{}{
			"request_id": req.ID,
			"sender_id":  senderID,
		})
	}
	if s.RT != nil {
		s.RT.EmitSocialUpdate([]string{targetID}, map[string]interface{}{"event": "request:received", "request_id": req.ID})
	}

	return &FriendRequestView{FriendRequest: req, Sender: summarize(*sender), Recipient: summarize(*target)}, nil
}

// DeleteFriendRequest removes a pending request. Only the sender or the
// recipient may do so; the counterpart's id comes back for notification.
func (s *GraphService) DeleteFriendRequest(requestID, userID string) (counterpartID string, err error) {
	var req models.FriendRequest
	if err := s.DB.First(&req, "id = ?", requestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", fmt.Errorf("%w: request %s", ErrNotFound, requestID)
		}
		return "", err
	}

	switch userID {
	case req.SenderID:
		counterpartID = req.RecipientID
	case req.RecipientID:
		counterpartID = req.SenderID
	default:
		return "", fmt.Errorf("%w: not a party to this request", ErrUnauthorized)
	}

	if err := s.DB.Delete(&models.FriendRequest{}, "id = ?", requestID).Error; err != nil {
		return "", err
	}

	if s.RT != nil {
		s.RT.EmitSocialUpdate([]string{counterpartID, userID}, map[string]interface{}{"event": "request:deleted", "request_id": requestID})
	}
	return counterpartID, nil
}

// ClearUserFriendRequests removes all pending requests involving the user,
// either direction. Runs before a user is isolated into a new network.
func (s *GraphService) ClearUserFriendRequests(userID string) error {
	return s.DB.Where("sender_id = ? OR recipient_id = ?", userID, userID).
		Delete(&models.FriendRequest{}).Error
}

// CreateIsolatedNetwork makes a fresh empty network row.
func (s *GraphService) CreateIsolatedNetwork() (*models.Network, error) {
	nw := models.Network{ID: uuid.NewString()}
	if err := s.DB.Create(&nw).Error; err != nil {
		return nil, err
	}
	return &nw, nil
}

// MoveUserToNetwork re-parents one user, making sure the destination row
// exists first and stamping a fresh network_joined_at. Bulk re-parenting
// during a merge bypasses this on purpose: merged members keep their
// original seniority.
func (s *GraphService) MoveUserToNetwork(userID, networkID string) error {
	nw := models.Network{ID: networkID}
	if err := s.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(&nw).Error; err != nil {
		return err
	}

	res := s.DB.Model(&models.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"network_id":        networkID,
		"network_joined_at": time.Now().UTC(),
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: user %s", ErrNotFound, userID)
	}
	return nil
}

// DeleteNetworkIfEmpty tears a network down once its member count reaches
// zero, along with the rows it scopes.
func (s *GraphService) DeleteNetworkIfEmpty(networkID string) error {
	var count int64
	if err := s.DB.Model(&models.User{}).Where("network_id = ?", networkID).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	if err := s.DB.Where("network_id = ?", networkID).Delete(&models.NetworkPreference{}).Error; err != nil {
		return err
	}
	if err := s.DB.Where("network_id = ?", networkID).Delete(&models.Player{}).Error; err != nil {
		return err
	}
	if err := s.DB.Where("network_id = ?", networkID).Delete(&models.Match{}).Error; err != nil {
		return err
	}
	return s.DB.Delete(&models.Network{}, "id = ?", networkID).Error
}

// NetworkMembers returns the current members, earliest joiner first.
func (s *GraphService) NetworkMembers(networkID string) ([]models.User, error) {
	var members []models.User
	err := s.DB.Where("network_id = ?", networkID).
		Order("network_joined_at ASC").
		Find(&members).Error
	return members, err
}

// NetworkMemberIDs is the resolver the fan-out coordinator uses at push
// time — always fresh, never cached.
func (s *GraphService) NetworkMemberIDs(networkID string) ([]string, error) {
	var ids []string
	err := s.DB.Model(&models.User{}).Where("network_id = ?", networkID).Pluck("id", &ids).Error
	return ids, err
}

// NetworkState is the full view a member sees of their own network.
type NetworkState struct {
	NetworkID string              `json:"network_id"`
	Members   []MemberBadges      `json:"members"`
	Incoming  []FriendRequestView `json:"incoming"`
	Outgoing  []FriendRequestView `json:"outgoing"`
}

// GetNetworkState resolves members with live badges plus the user's
// pending requests in both directions.
func (s *GraphService) GetNetworkState(networkID, userID string) (*NetworkState, error) {
	members, err := s.NetworkMembers(networkID)
	if err != nil {
		return nil, err
	}
	decorated, err := s.Eligibility.DecorateMembers(members)
	if err != nil {
		return nil, err
	}

	incoming, err := s.requestViews("recipient_id = ?", userID)
	if err != nil {
		return nil, err
	}
	outgoing, err := s.requestViews("sender_id = ?", userID)
	if err != nil {
		return nil, err
	}

	return &NetworkState{
		NetworkID: networkID,
		Members:   decorated,
		Incoming:  incoming,
		Outgoing:  outgoing,
	}, nil
}

func (s *GraphService) requestViews(cond, userID string) ([]FriendRequestView, error) {
	var reqs []models.FriendRequest
	if err := s.DB.Where(cond, userID).Order("created_at DESC").Find(&reqs).Error; err != nil {
		return nil, err
	}

	views := make([]FriendRequestView, 0, len(reqs))
	for _, r := range reqs {
		view := FriendRequestView{FriendRequest: r}
		var sender, recipient models.User
		if err := s.DB.First(&sender, "id = ?", r.SenderID).Error; err == nil {
			view.Sender = summarize(sender)
		}
		if err := s.DB.First(&recipient, "id = ?", r.RecipientID).Error; err == nil {
			view.Recipient = summarize(recipient)
		}
		views = append(views, view)
	}
	return views, nil
}

// SearchResult is a cross-network candidate with visibility-masked badges.
type SearchResult struct {
	MemberBadges
	CoMember bool `json:"co_member"`
}

// SearchCandidates finds users by username for the friend-request UI.
// Badge fields honor each candidate's badges_visible_in_search flag.
func (s *GraphService) SearchCandidates(query, userID, networkID string) ([]SearchResult, error) {
	term := "%" + strings.ToLower(strings.TrimSpace(query)) + "%"

	var candidates []models.User
	if err := s.DB.Where("LOWER(username) LIKE ? AND id <> ?", term, userID).
		Limit(20).
		Find(&candidates).Error; err != nil {
		return nil, err
	}

	badges, err := s.Eligibility.SearchBadges(candidates)
	if err != nil {
		return nil, err
	}

	results := make([]SearchResult, 0, len(candidates))
	for _, u := range candidates {
		results = append(results, SearchResult{
			MemberBadges: badges[u.ID],
			CoMember:     u.NetworkID == networkID,
		})
	}
	return results, nil
}

// RecordReferral credits a referred signup to a referrer. A referred user
// may ever be credited once; the uniqueness-constrained insert backs the
// pre-check.
func (s *GraphService) RecordReferral(referrerID, referredID string) (*models.Referral, error) {
	if referrerID == referredID {
		return nil, fmt.Errorf("%w: cannot refer yourself", ErrValidation)
	}
	if _, err := s.getUser(referrerID); err != nil {
		return nil, err
	}
	if _, err := s.getUser(referredID); err != nil {
		return nil, err
	}

	var count int64
	if err := s.DB.Model(&models.Referral{}).Where("referred_id = ?", referredID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, fmt.Errorf("%w: user already credited to a referrer", ErrConflict)
	}

	ref := models.Referral{ID: uuid.NewString(), ReferrerID: referrerID, ReferredID: referredID}
	res := s.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "referred_id"}},
		DoNothing: true,
	}).Create(&ref)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("%w: user already credited to a referrer", ErrConflict)
	}
	return &ref, nil
}

// UpdateAvatar stores a new avatar URL for the user.
func (s *GraphService) UpdateAvatar(userID, url string) error {
	res := s.DB.Model(&models.User{}).Where("id = ?", userID).Update("avatar", url)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: user %s", ErrNotFound, userID)
	}
	return nil
}
