package models

import (
	"time"
)

// Season groups grand prix rounds, team rosters and multiplier configs for one year.
type Season struct {
	ID       string     `json:"id" gorm:"primaryKey"`
	Year     int        `json:"year" gorm:"not null"`
	Name     string     `json:"name" gorm:"not null"`
	IsActive bool       `json:"is_active" gorm:"default:false"`
	ClosedAt *time.Time `json:"closed_at,omitempty"` // set by the finale pass; closed seasons re-run their finale on rebuild

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	// Relationships
	GrandPrixes []GrandPrix        `json:"grand_prixes,omitempty" gorm:"foreignKey:SeasonID"`
	Multipliers []MultiplierConfig `json:"multipliers,omitempty" gorm:"foreignKey:SeasonID"`
	Teams       []Team             `json:"teams,omitempty" gorm:"foreignKey:SeasonID"`
}

// MultiplierConfig maps one outcome type to its season multiplier.
// Outcome types without a config default to a neutral 1.0 at scoring time.
type MultiplierConfig struct {
	ID          string  `json:"id" gorm:"primaryKey"`
	SeasonID    string  `json:"season_id" gorm:"not null;uniqueIndex:idx_season_outcome"`
	OutcomeType string  `json:"outcome_type" gorm:"not null;uniqueIndex:idx_season_outcome"` // e.g. FASTEST_LAP
	Multiplier  float64 `json:"multiplier" gorm:"default:1.0"`
}

// Named outcome types carried by results and predictions. PODIUM_* are derived
// from the position lists at scoring time, never submitted by users.
const (
	OutcomeFastestLap    = "FASTEST_LAP"
	OutcomeSafetyCar     = "SAFETY_CAR"
	OutcomePolePosition  = "POLE_POSITION"
	OutcomeDNFCount      = "DNFS"
	OutcomeDNFDriver     = "DNF_DRIVER"
	OutcomePodiumTotal   = "PODIUM_TOTAL"
	OutcomePodiumPartial = "PODIUM_PARTIAL"
)
