package models

import (
	"time"

	"gorm.io/gorm"
)

// LeagueUser is a local snapshot of user data needed by the league.
// Owned solely by this service; populated by the sync worker from the
// profile service. Identity and sessions live elsewhere.
type LeagueUser struct {
	ID             string     `json:"id" gorm:"primaryKey"`
	ExternalUserID string     `json:"external_user_id" gorm:"uniqueIndex;not null"` // the profile service's UUID
	Username       string     `json:"username" gorm:"index;not null"`
	Email          string     `json:"email,omitempty"`
	AvatarURL      *string    `json:"avatar_url,omitempty"`
	CreatedAt      time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt      time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
	LastSeen       *time.Time `json:"last_seen,omitempty"`

	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
