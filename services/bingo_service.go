package services

import (
	"errors"
	"log"
	"sort"
	"strings"
	"time"

	"prediction-league-system/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BingoService struct {
	DB *gorm.DB
}

func NewBingoService(db *gorm.DB) *BingoService {
	return &BingoService{DB: db}
}

var (
	errBingoLocked = errors.New("bingo board is locked, the season has started")
	errBingoFull   = errors.New("selection limit reached")
	errNoSuchTile  = errors.New("tile not found")
)

// tileValue prices a tile by rarity: the fewer players marked it, the more it
// pays. Scale is fixed at [10, 100] regardless of how many users play.
func tileValue(totalParticipants, selections int) int {
	if totalParticipants == 0 {
		return 10
	}
	if selections == 0 {
		return 100
	}
	ratio := float64(selections) / float64(totalParticipants)
	return 10 + int(90*(1-ratio))
}

type createTilePayload struct {
	SeasonID    string `json:"season_id"`
	Description string `json:"description"`
}

// CreateTile adds one card to a season's bingo board. Admin only.
func (s *BingoService) CreateTile(c *fiber.Ctx) error {
	var payload createTilePayload
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}
	if payload.SeasonID == "" || strings.TrimSpace(payload.Description) == "" {
		return c.Status(400).JSON(fiber.Map{"error": "season_id and description are required"})
	}

	var season models.Season
	if err := s.DB.First(&season, "id = ?", payload.SeasonID).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "season not found"})
	}
	if season.ClosedAt != nil {
		return c.Status(409).JSON(fiber.Map{"error": "season is closed"})
	}

	tile := models.BingoTile{
		ID:          uuid.NewString(),
		SeasonID:    season.ID,
		Description: strings.TrimSpace(payload.Description),
	}
	if err := s.DB.Create(&tile).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to create tile"})
	}
	log.Printf("✅ [BINGO] tile created for season %s: %s", season.ID, tile.Description)
	return c.Status(201).JSON(tile)
}

type updateTilePayload struct {
	Description *string `json:"description"`
	IsCompleted *bool   `json:"is_completed"`
}

// UpdateTile edits a card's text or marks the event as having happened.
func (s *BingoService) UpdateTile(c *fiber.Ctx) error {
	var payload updateTilePayload
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}

	var tile models.BingoTile
	if err := s.DB.First(&tile, "id = ?", c.Params("tile_id")).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "tile not found"})
	}

	updates := map[string]interface{}{}
	if payload.Description != nil {
		updates["description"] = strings.TrimSpace(*payload.Description)
	}
	if payload.IsCompleted != nil {
		updates["is_completed"] = *payload.IsCompleted
	}
	if len(updates) == 0 {
		return c.JSON(tile)
	}
	if err := s.DB.Model(&tile).Updates(updates).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to update tile"})
	}
	if payload.IsCompleted != nil && *payload.IsCompleted {
		log.Printf("🎯 [BINGO] tile completed: %s", tile.Description)
	}
	return c.JSON(tile)
}

// DeleteTile removes a card and every selection pointing at it.
func (s *BingoService) DeleteTile(c *fiber.Ctx) error {
	tileID := c.Params("tile_id")

	var tile models.BingoTile
	if err := s.DB.First(&tile, "id = ?", tileID).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "tile not found"})
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("bingo_tile_id = ?", tileID).Delete(&models.BingoSelection{}).Error; err != nil {
			return err
		}
		return tx.Delete(&tile).Error
	})
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to delete tile"})
	}
	return c.JSON(fiber.Map{"message": "tile deleted"})
}

type bingoBoardEntry struct {
	ID             string `json:"id"`
	Description    string `json:"description"`
	IsCompleted    bool   `json:"is_completed"`
	SelectionCount int    `json:"selection_count"`
	CurrentValue   int    `json:"current_value"`
	SelectedByMe   bool   `json:"selected_by_me"`
}

// GetBoard returns the season's full board with rarity pricing and the
// caller's marks.
func (s *BingoService) GetBoard(c *fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return c.Status(401).JSON(fiber.Map{"error": "missing user context"})
	}

	board, err := s.boardFor(c.Params("season_id"), userID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to load board"})
	}
	return c.JSON(board)
}

func (s *BingoService) boardFor(seasonID, userID string) ([]bingoBoardEntry, error) {
	var tiles []models.BingoTile
	if err := s.DB.Where("season_id = ?", seasonID).Order("created_at ASC").Find(&tiles).Error; err != nil {
		return nil, err
	}

	counts, participants, err := s.selectionCounts(seasonID)
	if err != nil {
		return nil, err
	}

	var mine []string
	err = s.DB.Model(&models.BingoSelection{}).
		Joins("JOIN bingo_tiles ON bingo_tiles.id = bingo_selections.bingo_tile_id").
		Where("bingo_selections.user_id = ? AND bingo_tiles.season_id = ?", userID, seasonID).
		Pluck("bingo_selections.bingo_tile_id", &mine).Error
	if err != nil {
		return nil, err
	}
	selectedByMe := make(map[string]bool, len(mine))
	for _, id := range mine {
		selectedByMe[id] = true
	}

	board := make([]bingoBoardEntry, 0, len(tiles))
	for _, t := range tiles {
		board = append(board, bingoBoardEntry{
			ID:             t.ID,
			Description:    t.Description,
			IsCompleted:    t.IsCompleted,
			SelectionCount: counts[t.ID],
			CurrentValue:   tileValue(participants, counts[t.ID]),
			SelectedByMe:   selectedByMe[t.ID],
		})
	}
	return board, nil
}

// ToggleTile marks or unmarks a tile on the caller's board. The board freezes
// once the season's first race has started.
func (s *BingoService) ToggleTile(c *fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return c.Status(401).JSON(fiber.Map{"error": "missing user context"})
	}

	added, err := s.toggle(userID, c.Params("tile_id"))
	switch {
	case errors.Is(err, errNoSuchTile):
		return c.Status(404).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, errBingoLocked):
		return c.Status(403).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, errBingoFull):
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	case err != nil:
		return c.Status(500).JSON(fiber.Map{"error": "failed to toggle tile"})
	}

	if added {
		return c.JSON(fiber.Map{"status": "added"})
	}
	return c.JSON(fiber.Map{"status": "removed"})
}

func (s *BingoService) toggle(userID, tileID string) (bool, error) {
	var tile models.BingoTile
	if err := s.DB.First(&tile, "id = ?", tileID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return false, errNoSuchTile
		}
		return false, err
	}

	// Picks close at lights-out of the season opener.
	var opener models.GrandPrix
	err := s.DB.Where("season_id = ?", tile.SeasonID).Order("race_datetime ASC").First(&opener).Error
	if err != nil && err != gorm.ErrRecordNotFound {
		return false, err
	}
	if err == nil && time.Now().UTC().After(opener.RaceDatetime) {
		return false, errBingoLocked
	}

	added := false
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		var existing models.BingoSelection
		err := tx.Where("user_id = ? AND bingo_tile_id = ?", userID, tileID).First(&existing).Error
		if err == nil {
			return tx.Delete(&existing).Error
		}
		if err != gorm.ErrRecordNotFound {
			return err
		}

		var marked int64
		err = tx.Model(&models.BingoSelection{}).
			Joins("JOIN bingo_tiles ON bingo_tiles.id = bingo_selections.bingo_tile_id").
			Where("bingo_selections.user_id = ? AND bingo_tiles.season_id = ?", userID, tile.SeasonID).
			Count(&marked).Error
		if err != nil {
			return err
		}
		if marked >= models.MaxBingoSelections {
			return errBingoFull
		}

		added = true
		return tx.Create(&models.BingoSelection{
			ID:          uuid.NewString(),
			UserID:      userID,
			BingoTileID: tileID,
		}).Error
	})
	return added, err
}

type bingoStandingRow struct {
	Rank        int    `json:"rank"`
	UserID      string `json:"user_id"`
	Username    string `json:"username,omitempty"`
	Selections  int    `json:"selections"`
	Hits        int    `json:"hits"`
	Missed      int    `json:"missed"`
	TotalPoints int    `json:"total_points"`
}

// GetStandings ranks the season's bingo players by the rarity-priced value of
// their completed picks.
func (s *BingoService) GetStandings(c *fiber.Ctx) error {
	rows, err := s.standingsFor(c.Params("season_id"))
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to load bingo standings"})
	}
	return c.JSON(rows)
}

func (s *BingoService) standingsFor(seasonID string) ([]bingoStandingRow, error) {
	var tiles []models.BingoTile
	if err := s.DB.Where("season_id = ?", seasonID).Find(&tiles).Error; err != nil {
		return nil, err
	}

	counts, participants, err := s.selectionCounts(seasonID)
	if err != nil {
		return nil, err
	}

	completed := make(map[string]bool)
	values := make(map[string]int, len(tiles))
	totalCompleted := 0
	for _, t := range tiles {
		if t.IsCompleted {
			completed[t.ID] = true
			totalCompleted++
		}
		values[t.ID] = tileValue(participants, counts[t.ID])
	}

	var selections []models.BingoSelection
	err = s.DB.Model(&models.BingoSelection{}).
		Select("bingo_selections.*").
		Joins("JOIN bingo_tiles ON bingo_tiles.id = bingo_selections.bingo_tile_id").
		Where("bingo_tiles.season_id = ?", seasonID).
		Find(&selections).Error
	if err != nil {
		return nil, err
	}

	byUser := make(map[string][]string)
	for _, sel := range selections {
		byUser[sel.UserID] = append(byUser[sel.UserID], sel.BingoTileID)
	}

	rows := make([]bingoStandingRow, 0, len(byUser))
	ids := make([]string, 0, len(byUser))
	for userID, picked := range byUser {
		hits, points := 0, 0
		for _, tileID := range picked {
			if completed[tileID] {
				hits++
				points += values[tileID]
			}
		}
		rows = append(rows, bingoStandingRow{
			UserID:      userID,
			Selections:  len(picked),
			Hits:        hits,
			Missed:      totalCompleted - hits,
			TotalPoints: points,
		})
		ids = append(ids, userID)
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].TotalPoints != rows[j].TotalPoints {
			return rows[i].TotalPoints > rows[j].TotalPoints
		}
		return rows[i].UserID < rows[j].UserID
	})
	names := usernamesFor(s.DB, ids)
	for i := range rows {
		rows[i].Rank = i + 1
		rows[i].Username = names[rows[i].UserID]
	}
	return rows, nil
}

// selectionCounts returns per-tile selection counts and the number of distinct
// users playing this season's board.
func (s *BingoService) selectionCounts(seasonID string) (map[string]int, int, error) {
	type countRow struct {
		BingoTileID string
		Total       int
	}
	var perTile []countRow
	err := s.DB.Model(&models.BingoSelection{}).
		Select("bingo_selections.bingo_tile_id, COUNT(*) AS total").
		Joins("JOIN bingo_tiles ON bingo_tiles.id = bingo_selections.bingo_tile_id").
		Where("bingo_tiles.season_id = ?", seasonID).
		Group("bingo_selections.bingo_tile_id").
		Scan(&perTile).Error
	if err != nil {
		return nil, 0, err
	}
	counts := make(map[string]int, len(perTile))
	for _, r := range perTile {
		counts[r.BingoTileID] = r.Total
	}

	var participants int64
	err = s.DB.Model(&models.BingoSelection{}).
		Joins("JOIN bingo_tiles ON bingo_tiles.id = bingo_selections.bingo_tile_id").
		Where("bingo_tiles.season_id = ?", seasonID).
		Distinct("bingo_selections.user_id").
		Count(&participants).Error
	if err != nil {
		return nil, 0, err
	}
	return counts, int(participants), nil
}
