package models

// NetworkPreference holds a network's map pool and ban list for one game
// key. On merge the two networks' sets are union-merged per game key
// (duplicates collapsed) and the source row is deleted.
type NetworkPreference struct {
	ID        string   `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	NetworkID string   `gorm:"not null;uniqueIndex:ux_network_game,priority:1" json:"network_id"`
	GameKey   string   `gorm:"not null;uniqueIndex:ux_network_game,priority:2" json:"game_key"`
	MapPool   []string `gorm:"type:jsonb;serializer:json" json:"map_pool"`
	Bans      []string `gorm:"type:jsonb;serializer:json" json:"bans"`

	Timestamps
}
