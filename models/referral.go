package models

import "time"

// Referral credits a referred signup to a referrer. A given ReferredID may
// be credited to at most one referrer ever — enforced by the unique index,
// checked before insert so callers get a conflict instead of a DB error.
type Referral struct {
	ID         string    `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	ReferrerID string    `gorm:"index;not null" json:"referrer_id"`
	ReferredID string    `gorm:"uniqueIndex;not null" json:"referred_id"`
	CreatedAt  time.Time `json:"created_at" gorm:"autoCreateTime"`
}
