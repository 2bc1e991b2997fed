package models

import (
	"time"
)

// RaceResult is the authoritative outcome of one grand prix. Replacing its
// positions/outcomes wholesale is how corrections enter the system; the engine
// then re-scores the round and the stats cache subtracts the stale contribution.
type RaceResult struct {
	ID          string    `json:"id" gorm:"primaryKey"`
	GrandPrixID string    `json:"grand_prix_id" gorm:"not null;uniqueIndex"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	Positions []RacePosition `json:"positions,omitempty" gorm:"foreignKey:RaceResultID;constraint:OnDelete:CASCADE"`
	Outcomes  []RaceOutcome  `json:"outcomes,omitempty" gorm:"foreignKey:RaceResultID;constraint:OnDelete:CASCADE"`
}

// RacePosition: final classification, position 1..N -> driver code.
type RacePosition struct {
	ID           string `json:"id" gorm:"primaryKey"`
	RaceResultID string `json:"race_result_id" gorm:"not null;uniqueIndex:idx_result_position"`
	Position     int    `json:"position" gorm:"not null;uniqueIndex:idx_result_position"`
	DriverCode   string `json:"driver_code" gorm:"not null"`
}

// RaceOutcome: one named outcome of the race, e.g. FASTEST_LAP -> "VER" or
// DNF_DRIVER -> "SAI,HAM" (comma-separated list for multi-valued outcomes).
type RaceOutcome struct {
	ID           string `json:"id" gorm:"primaryKey"`
	RaceResultID string `json:"race_result_id" gorm:"not null;uniqueIndex:idx_result_outcome"`
	OutcomeType  string `json:"outcome_type" gorm:"not null;uniqueIndex:idx_result_outcome"`
	Value        string `json:"value" gorm:"not null"`
}
