package models

import "time"

// User is the local member record. Identity (credentials, sessions) lives in
// the auth service; this row carries everything the network core needs:
// membership, the cached XP total and the search opt-in flag.
//
// XPTotal is owned by the ledger — nothing else writes it. It must always
// equal SUM(xp_events.amount) for the user; the reconcile job repairs drift.
type User struct {
	ID       string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	Username string `gorm:"index;not null" json:"username"`
	Avatar   string `gorm:"type:text" json:"avatar,omitempty"`

	// Network membership — exactly one, never null.
	NetworkID       string    `gorm:"index;not null" json:"network_id"`
	NetworkJoinedAt time.Time `gorm:"not null" json:"network_joined_at"`

	XPTotal      int64 `json:"xp_total" gorm:"default:0"`
	TokenVersion int   `json:"-" gorm:"default:0"`

	// Opt-in: disclose badges in cross-network search results.
	BadgesVisibleInSearch bool `json:"badges_visible_in_search" gorm:"default:false"`

	Timestamps
}
