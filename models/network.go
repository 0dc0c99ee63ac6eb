package models

import (
	"time"

	"gorm.io/gorm"
)

// Network is the social cluster that scopes players, matches and map bans.
// A network exists iff at least one user currently references it: rows are
// created on first-login and on every split, and deleted when the last
// member leaves.
type Network struct {
	ID        string    `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// Timestamps adds GORM auto-times
type Timestamps struct {
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}
