package models

import (
	"time"
)

const (
	GPStatusScheduled = "scheduled" // predictions open
	GPStatusLocked    = "locked"    // race started, predictions frozen
)

// GrandPrix is one scored round of a season. RaceDatetime doubles as the
// strictly-increasing sequence key that orders corrections.
type GrandPrix struct {
	ID           string     `json:"id" gorm:"primaryKey"`
	SeasonID     string     `json:"season_id" gorm:"not null;index"`
	Name         string     `json:"name" gorm:"not null"`
	Country      string     `json:"country"` // home-race coupling for constructors
	RaceDatetime time.Time  `json:"race_datetime" gorm:"not null;index"`
	Status       string     `json:"status" gorm:"default:'scheduled'"`
	ScoredAt     *time.Time `json:"scored_at,omitempty" gorm:"index"` // cleared when the result is replaced; the sweep worker picks up nulls

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	// Relationships
	Season      Season       `json:"season,omitempty" gorm:"foreignKey:SeasonID"`
	RaceResult  *RaceResult  `json:"race_result,omitempty" gorm:"foreignKey:GrandPrixID"`
	Predictions []Prediction `json:"predictions,omitempty" gorm:"foreignKey:GrandPrixID"`
}
