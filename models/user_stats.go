package models

import (
	"time"
)

// UserStats is the denormalized rolling aggregate per user — one row, updated
// incrementally by the stats cache. Lifetime fields always equal the sum of the
// user's UserGPStats rows; the season fields cover the season identified by
// CurrentSeasonID and are rederived from the snapshots on season rollover.
type UserStats struct {
	UserID string `json:"user_id" gorm:"primaryKey"`

	// Career totals
	TotalPoints     int `json:"total_points" gorm:"default:0"`
	TotalGPsPlayed  int `json:"total_gps_played" gorm:"default:0"`
	ExactPositions  int `json:"exact_positions" gorm:"default:0"`
	ExactPodiums    int `json:"exact_podiums" gorm:"default:0"`
	FastestLapHits  int `json:"fastest_lap_hits" gorm:"default:0"`
	SafetyCarHits   int `json:"safety_car_hits" gorm:"default:0"`
	DNFCountHits    int `json:"dnf_count_hits" gorm:"default:0"`
	DNFDriverHits   int `json:"dnf_driver_hits" gorm:"default:0"`

	// Current season
	CurrentSeasonID     string `json:"current_season_id"`
	CurrentSeasonPoints int    `json:"current_season_points" gorm:"default:0"`

	// Last-processed pointer: grand prix whose race datetime is the newest this
	// user's aggregates have absorbed. Older deliveries are skipped silently.
	LastGPID *string    `json:"last_gp_id,omitempty"`
	LastGPAt *time.Time `json:"last_gp_at,omitempty"`

	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// UserGPStats freezes what one grand prix contributed to a user's rolling
// totals at last processing time. A correction subtracts exactly these values
// before re-adding the fresh ones; the row is mutated in place, never duplicated.
type UserGPStats struct {
	ID          string `json:"id" gorm:"primaryKey"`
	UserID      string `json:"user_id" gorm:"not null;uniqueIndex:idx_user_gp_stats"`
	GrandPrixID string `json:"grand_prix_id" gorm:"not null;uniqueIndex:idx_user_gp_stats"`
	SeasonID    string `json:"season_id" gorm:"not null;index"`

	Points         int  `json:"points" gorm:"default:0"`
	ExactPositions int  `json:"exact_positions" gorm:"default:0"`
	ExactPodium    bool `json:"exact_podium" gorm:"default:false"`
	FastestLapHit  bool `json:"fastest_lap_hit" gorm:"default:false"`
	SafetyCarHit   bool `json:"safety_car_hit" gorm:"default:false"`
	DNFCountHit    bool `json:"dnf_count_hit" gorm:"default:false"`
	DNFDriverHit   bool `json:"dnf_driver_hit" gorm:"default:false"`

	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}
