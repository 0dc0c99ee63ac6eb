package models

import "time"

const FriendRequestStatusPending = "pending"

// FriendRequest is the handshake between two users in different networks.
// "pending" is the only persisted status — acceptance or deletion removes
// the row. At most one pending request may exist for an unordered pair of
// users (checked before insert, either direction).
type FriendRequest struct {
	ID          string    `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	SenderID    string    `gorm:"index;not null" json:"sender_id"`
	RecipientID string    `gorm:"index;not null" json:"recipient_id"`
	Status      string    `gorm:"type:varchar(20);default:'pending'" json:"status"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
}
