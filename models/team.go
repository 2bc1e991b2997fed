package models

import (
	"time"
)

// Team is a player squad of at most two users within one season. Members join
// with the team's code; the slug is the URL-safe handle used in invite links.
type Team struct {
	ID       string `json:"id" gorm:"primaryKey"`
	SeasonID string `json:"season_id" gorm:"not null;index"`
	Name     string `json:"name" gorm:"not null"`
	Slug     string `json:"slug" gorm:"not null;index"`
	JoinCode string `json:"join_code" gorm:"uniqueIndex;not null"` // e.g. "X9A-2B1"

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`

	Members []TeamMember `json:"members,omitempty" gorm:"foreignKey:TeamID"`
}

// MaxTeamSize caps squads at two players; the finale squad comparison assumes it.
const MaxTeamSize = 2

// TeamMember links a user to a team — at most one team per user per season.
type TeamMember struct {
	ID       string    `json:"id" gorm:"primaryKey"`
	TeamID   string    `json:"team_id" gorm:"not null;index"`
	UserID   string    `json:"user_id" gorm:"not null;uniqueIndex:idx_member_season"`
	SeasonID string    `json:"season_id" gorm:"not null;uniqueIndex:idx_member_season"`
	JoinedAt time.Time `json:"joined_at" gorm:"autoCreateTime"`

	Team Team `json:"team,omitempty" gorm:"foreignKey:TeamID"`
}
