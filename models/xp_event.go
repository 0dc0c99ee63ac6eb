package models

import "time"

// XP event types. Network* types are credited to every current member of
// the actor's network, the rest to the actor alone.
const (
	XPEventMatchCompleted = "match:completed"
	XPEventRosterUpdated  = "roster:updated"
	XPEventTeamShared     = "team:shared"
	XPEventReferral       = "referral:credited"
	XPEventAdminGrant     = "admin:grant"
)

// XPEvent is an append-only ledger entry. The (user_id, type, context)
// composite unique index makes re-submission of the same logical event a
// no-op: exactly one insert wins, duplicates observe the constraint.
//
// Amount is the *applied* delta after the zero floor, so a user's cached
// XPTotal always equals the sum of their rows.
type XPEvent struct {
	ID        string    `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	UserID    string    `gorm:"not null;uniqueIndex:ux_user_type_context,priority:1" json:"user_id"`
	Type      string    `gorm:"not null;uniqueIndex:ux_user_type_context,priority:2" json:"type"`
	Context   string    `gorm:"not null;uniqueIndex:ux_user_type_context,priority:3" json:"context"`
	Amount    int64     `json:"amount"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}
