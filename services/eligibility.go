package services

import (
	"sort"
	"time"

	"gamer-network-system/models"

	"gorm.io/gorm"
)

// EligibilityService derives OG/admin and referral badges from the live
// graph. It owns no storage: everything is recomputed from membership rows
// on every query, so badges shift automatically after merges and splits.
type EligibilityService struct {
	DB *gorm.DB
}

func NewEligibilityService(db *gorm.DB) *EligibilityService {
	return &EligibilityService{DB: db}
}

// OGCount is the size of the OG/kick-eligible set for a network of n
// members: the earliest-joining quarter, rounded up, never below 1.
func OGCount(n int) int {
	if n <= 0 {
		return 0
	}
	count := (n + 3) / 4 // ceil(n * 0.25)
	if count < 1 {
		count = 1
	}
	return count
}

// OGSet returns the ids of the OG members among the given snapshot, sorted
// by network_joined_at ascending. Ties break on id so the set is stable.
func OGSet(members []models.User) map[string]bool {
	sorted := make([]models.User, len(members))
	copy(sorted, members)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].NetworkJoinedAt.Equal(sorted[j].NetworkJoinedAt) {
			return sorted[i].ID < sorted[j].ID
		}
		return sorted[i].NetworkJoinedAt.Before(sorted[j].NetworkJoinedAt)
	})

	og := make(map[string]bool, len(sorted))
	for i := 0; i < OGCount(len(sorted)); i++ {
		og[sorted[i].ID] = true
	}
	return og
}

// IsEligible reports whether userID is in the OG set of networkID. This is
// the kick-authorization rule as well as the OG badge rule.
func (s *EligibilityService) IsEligible(networkID, userID string) (bool, error) {
	var members []models.User
	if err := s.DB.Where("network_id = ?", networkID).Find(&members).Error; err != nil {
		return false, err
	}
	return OGSet(members)[userID], nil
}

// ReferrerSet returns which of the given user ids appear as referrer in at
// least one referral row.
func (s *EligibilityService) ReferrerSet(userIDs []string) (map[string]bool, error) {
	out := make(map[string]bool, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}
	var referrers []string
	err := s.DB.Model(&models.Referral{}).
		Distinct("referrer_id").
		Where("referrer_id IN ?", userIDs).
		Pluck("referrer_id", &referrers).Error
	if err != nil {
		return nil, err
	}
	for _, id := range referrers {
		out[id] = true
	}
	return out, nil
}

// MemberBadges is a member row decorated with the computed badges.
type MemberBadges struct {
	ID              string `json:"id"`
	Username        string `json:"username"`
	Avatar          string `json:"avatar,omitempty"`
	NetworkJoinedAt string `json:"network_joined_at"`
	OG              bool   `json:"og"`
	Referral        bool   `json:"referral"`
}

// DecorateMembers computes OG and referral badges for a network's member
// snapshot. Used for same-network views, so no visibility masking applies.
func (s *EligibilityService) DecorateMembers(members []models.User) ([]MemberBadges, error) {
	og := OGSet(members)

	ids := make([]string, len(members))
	for i, m := range members {
		ids[i] = m.ID
	}
	referrers, err := s.ReferrerSet(ids)
	if err != nil {
		return nil, err
	}

	out := make([]MemberBadges, len(members))
	for i, m := range members {
		out[i] = MemberBadges{
			ID:              m.ID,
			Username:        m.Username,
			Avatar:          m.Avatar,
			NetworkJoinedAt: m.NetworkJoinedAt.UTC().Format(time.RFC3339),
			OG:              og[m.ID],
			Referral:        referrers[m.ID],
		}
	}
	return out, nil
}

// SearchBadges resolves badges for cross-network search results. A
// candidate's badges are disclosed only if they opted in via
// badges_visible_in_search; otherwise both fields come back false without
// revealing the underlying computation.
func (s *EligibilityService) SearchBadges(candidates []models.User) (map[string]MemberBadges, error) {
	// Group opted-in candidates by network so each OG set is computed once.
	byNetwork := make(map[string][]string)
	var visibleIDs []string
	for _, u := range candidates {
		if u.BadgesVisibleInSearch {
			byNetwork[u.NetworkID] = append(byNetwork[u.NetworkID], u.ID)
			visibleIDs = append(visibleIDs, u.ID)
		}
	}

	ogByUser := make(map[string]bool)
	for networkID, ids := range byNetwork {
		var members []models.User
		if err := s.DB.Where("network_id = ?", networkID).Find(&members).Error; err != nil {
			return nil, err
		}
		og := OGSet(members)
		for _, id := range ids {
			ogByUser[id] = og[id]
		}
	}

	referrers, err := s.ReferrerSet(visibleIDs)
	if err != nil {
		return nil, err
	}

	out := make(map[string]MemberBadges, len(candidates))
	for _, u := range candidates {
		b := MemberBadges{ID: u.ID, Username: u.Username, Avatar: u.Avatar}
		if u.BadgesVisibleInSearch {
			b.OG = ogByUser[u.ID]
			b.Referral = referrers[u.ID]
		}
		out[u.ID] = b
	}
	return out, nil
}
