package models

import "time"

// Notification types written by the graph and ledger services.
const (
	NotificationFriendRequest  = "friend_request"
	NotificationRequestAccept  = "friend_request_accepted"
	NotificationRequestDeleted = "friend_request_deleted"
	NotificationKicked         = "kicked_from_network"
)

// Notification is a persisted message owned by its recipient; only the
// recipient may delete it. Data is free-form JSON for the client.
type Notification struct {
	ID        string    `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	UserID    string    `gorm:"index;not null" json:"user_id"`
	Type      string    `gorm:"not null" json:"type"`
	Message   *string   `json:"message,omitempty"`
	Data      string    `gorm:"type:jsonb;default:'{}'" json:"data"`
	IsRead    bool      `gorm:"default:false;index" json:"is_read"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}
