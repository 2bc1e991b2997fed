package models

import (
	"time"
)

// Prediction is a user's forecast for one grand prix — unique per (user, gp).
// It is fully overwritten on resubmission while the round is open and becomes
// read-only once an official result exists. The points columns are filled in
// by the scoring engine.
type Prediction struct {
	ID          string    `json:"id" gorm:"primaryKey"`
	UserID      string    `json:"user_id" gorm:"not null;uniqueIndex:idx_user_gp"`
	GrandPrixID string    `json:"grand_prix_id" gorm:"not null;uniqueIndex:idx_user_gp"`
	BasePoints  int       `json:"base_points" gorm:"default:0"`
	Multiplier  float64   `json:"multiplier" gorm:"default:1.0"`
	Points      int       `json:"points" gorm:"default:0"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	GrandPrix GrandPrix             `json:"grand_prix,omitempty" gorm:"foreignKey:GrandPrixID"`
	Positions []PredictionPosition  `json:"positions,omitempty" gorm:"foreignKey:PredictionID;constraint:OnDelete:CASCADE"`
	Outcomes  []PredictionOutcome   `json:"outcomes,omitempty" gorm:"foreignKey:PredictionID;constraint:OnDelete:CASCADE"`
}

// PredictionPosition: predicted slot 1..10 -> driver code, one row per slot.
type PredictionPosition struct {
	ID           string `json:"id" gorm:"primaryKey"`
	PredictionID string `json:"prediction_id" gorm:"not null;uniqueIndex:idx_prediction_position"`
	Position     int    `json:"position" gorm:"not null;uniqueIndex:idx_prediction_position"`
	DriverCode   string `json:"driver_code" gorm:"not null"`
}

// PredictionOutcome: predicted value for one named outcome type.
type PredictionOutcome struct {
	ID           string `json:"id" gorm:"primaryKey"`
	PredictionID string `json:"prediction_id" gorm:"not null;uniqueIndex:idx_prediction_outcome"`
	OutcomeType  string `json:"outcome_type" gorm:"not null;uniqueIndex:idx_prediction_outcome"`
	Value        string `json:"value" gorm:"not null"`
}
