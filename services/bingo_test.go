package services

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"prediction-league-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

func makeTile(t *testing.T, db *gorm.DB, seasonID, description string) *models.BingoTile {
	t.Helper()
	tile := models.BingoTile{ID: uuid.NewString(), SeasonID: seasonID, Description: description}
	if err := db.Create(&tile).Error; err != nil {
		t.Fatalf("create tile: %v", err)
	}
	return &tile
}

func TestTileValueScalesWithRarity(t *testing.T) {
	cases := []struct {
		participants int
		selections   int
		want         int
	}{
		{0, 0, 10},   // nobody plays yet
		{4, 0, 100},  // untouched tile pays maximum
		{4, 4, 10},   // everyone has it, floor value
		{4, 2, 55},   // half the field
		{4, 1, 77},   // rare pick
	}
	for _, tc := range cases {
		if got := tileValue(tc.participants, tc.selections); got != tc.want {
			t.Errorf("tileValue(%d, %d) = %d, want %d", tc.participants, tc.selections, got, tc.want)
		}
	}
}

func TestToggleRespectsSelectionCap(t *testing.T) {
	db := openTestDB(t)
	bingo := NewBingoService(db)
	season := makeSeason(t, db, 2025)
	makeGrandPrix(t, db, season.ID, "Opener", time.Now().UTC().Add(48*time.Hour))

	tiles := make([]*models.BingoTile, 0, models.MaxBingoSelections+1)
	for i := 0; i < models.MaxBingoSelections+1; i++ {
		tiles = append(tiles, makeTile(t, db, season.ID, fmt.Sprintf("event %d", i)))
	}

	for i := 0; i < models.MaxBingoSelections; i++ {
		added, err := bingo.toggle("u1", tiles[i].ID)
		if err != nil || !added {
			t.Fatalf("toggle %d: added=%v err=%v", i, added, err)
		}
	}
	if _, err := bingo.toggle("u1", tiles[models.MaxBingoSelections].ID); !errors.Is(err, errBingoFull) {
		t.Fatalf("expected the cap to reject tile %d, got %v", models.MaxBingoSelections+1, err)
	}

	// Unmarking is always possible and frees a slot.
	if added, err := bingo.toggle("u1", tiles[0].ID); err != nil || added {
		t.Fatalf("unmark: added=%v err=%v", added, err)
	}
	if added, err := bingo.toggle("u1", tiles[models.MaxBingoSelections].ID); err != nil || !added {
		t.Fatalf("mark after freeing a slot: added=%v err=%v", added, err)
	}
}

func TestToggleLockedAfterSeasonStart(t *testing.T) {
	db := openTestDB(t)
	bingo := NewBingoService(db)
	season := makeSeason(t, db, 2025)
	tile := makeTile(t, db, season.ID, "red flag at the opener")

	// Season not started yet: marking works.
	makeGrandPrix(t, db, season.ID, "Opener", time.Now().UTC().Add(48*time.Hour))
	if _, err := bingo.toggle("u1", tile.ID); err != nil {
		t.Fatalf("toggle before the opener: %v", err)
	}

	// Once the first race has started the board freezes, removals included.
	past := makeSeason(t, db, 2024)
	pastTile := makeTile(t, db, past.ID, "already racing")
	makeGrandPrix(t, db, past.ID, "Opener", time.Now().UTC().Add(-48*time.Hour))
	if _, err := bingo.toggle("u1", pastTile.ID); !errors.Is(err, errBingoLocked) {
		t.Fatalf("expected a locked board, got %v", err)
	}
}

func TestBoardPricesByRarity(t *testing.T) {
	db := openTestDB(t)
	bingo := NewBingoService(db)
	season := makeSeason(t, db, 2025)
	makeGrandPrix(t, db, season.ID, "Opener", time.Now().UTC().Add(48*time.Hour))
	a := makeTile(t, db, season.ID, "first lap crash")
	b := makeTile(t, db, season.ID, "rookie podium")
	c := makeTile(t, db, season.ID, "rain in Bahrain")

	for _, pick := range []struct{ user, tile string }{
		{"u1", a.ID}, {"u2", a.ID}, {"u1", b.ID},
	} {
		if _, err := bingo.toggle(pick.user, pick.tile); err != nil {
			t.Fatalf("toggle %s/%s: %v", pick.user, pick.tile, err)
		}
	}

	board, err := bingo.boardFor(season.ID, "u1")
	if err != nil {
		t.Fatalf("boardFor: %v", err)
	}
	byID := make(map[string]bingoBoardEntry, len(board))
	for _, e := range board {
		byID[e.ID] = e
	}

	// Two participants: a full-field tile bottoms out, an untouched one peaks.
	if e := byID[a.ID]; e.SelectionCount != 2 || e.CurrentValue != 10 || !e.SelectedByMe {
		t.Fatalf("tile a entry wrong: %+v", e)
	}
	if e := byID[b.ID]; e.SelectionCount != 1 || e.CurrentValue != 55 || !e.SelectedByMe {
		t.Fatalf("tile b entry wrong: %+v", e)
	}
	if e := byID[c.ID]; e.SelectionCount != 0 || e.CurrentValue != 100 || e.SelectedByMe {
		t.Fatalf("tile c entry wrong: %+v", e)
	}
}

func TestBingoStandingsScoresCompletedPicks(t *testing.T) {
	db := openTestDB(t)
	bingo := NewBingoService(db)
	season := makeSeason(t, db, 2025)
	makeGrandPrix(t, db, season.ID, "Opener", time.Now().UTC().Add(48*time.Hour))
	a := makeTile(t, db, season.ID, "driver swap mid-season")
	b := makeTile(t, db, season.ID, "double DNF for a squad")

	for _, pick := range []struct{ user, tile string }{
		{"u1", a.ID}, {"u1", b.ID}, {"u2", b.ID},
	} {
		if _, err := bingo.toggle(pick.user, pick.tile); err != nil {
			t.Fatalf("toggle: %v", err)
		}
	}

	// Both events happen. a was u1's solo pick (55), b everyone had (10).
	for _, tile := range []*models.BingoTile{a, b} {
		if err := db.Model(tile).Update("is_completed", true).Error; err != nil {
			t.Fatalf("complete tile: %v", err)
		}
	}

	rows, err := bingo.standingsFor(season.ID)
	if err != nil {
		t.Fatalf("standingsFor: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("standings rows = %d, want 2", len(rows))
	}
	if rows[0].UserID != "u1" || rows[0].TotalPoints != 65 || rows[0].Hits != 2 || rows[0].Missed != 0 {
		t.Fatalf("leader row wrong: %+v", rows[0])
	}
	if rows[1].UserID != "u2" || rows[1].TotalPoints != 10 || rows[1].Hits != 1 || rows[1].Missed != 1 {
		t.Fatalf("second row wrong: %+v", rows[1])
	}
	if rows[1].Selections != 1 {
		t.Fatalf("selections = %d, want 1", rows[1].Selections)
	}
}
