package models

import (
	"time"
)

// BingoTile is one admin-written season event card, e.g. "Alonso finally gets
// the 33". Completed tiles pay out to every user who had them marked.
type BingoTile struct {
	ID          string `json:"id" gorm:"primaryKey"`
	SeasonID    string `json:"season_id" gorm:"not null;index"`
	Description string `json:"description" gorm:"not null"`
	IsCompleted bool   `json:"is_completed" gorm:"default:false"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// MaxBingoSelections is the hard per-season cap on marked tiles per user.
const MaxBingoSelections = 20

// BingoSelection marks one tile on one user's board.
type BingoSelection struct {
	ID          string    `json:"id" gorm:"primaryKey"`
	UserID      string    `json:"user_id" gorm:"not null;uniqueIndex:idx_bingo_selection"`
	BingoTileID string    `json:"bingo_tile_id" gorm:"not null;uniqueIndex:idx_bingo_selection"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`

	Tile BingoTile `json:"tile,omitempty" gorm:"foreignKey:BingoTileID"`
}
