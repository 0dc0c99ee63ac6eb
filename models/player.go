package models

// Player is a roster entry scoped to a network. Rosters follow their
// network through merges — the merge engine re-parents NetworkID in the
// same transaction as everything else.
type Player struct {
	ID        string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	NetworkID string `gorm:"index;not null" json:"network_id"`
	Name      string `gorm:"not null" json:"name"`
	Slug      string `gorm:"index" json:"slug"`
	Avatar    string `gorm:"type:text" json:"avatar,omitempty"`
	CreatedBy string `gorm:"index" json:"created_by"`

	Timestamps
}
