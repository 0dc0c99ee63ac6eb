package models

// Match records a single gameplay session scoped to a network. Completing
// a match drives the network-wide XP broadcast (context "match:<id>:base").
type Match struct {
	ID        string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	NetworkID string `gorm:"index;not null" json:"network_id"`
	GameKey   string `gorm:"index;not null" json:"game_key"`
	Map       string `json:"map,omitempty"`

	// Team rosters and per-player scores, free-form for the client.
	Teams  string `gorm:"type:jsonb;default:'{}'" json:"teams"`
	Scores string `gorm:"type:jsonb;default:'{}'" json:"scores"`

	CreatedBy string `gorm:"index" json:"created_by"`

	Timestamps
}
