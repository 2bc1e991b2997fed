package services

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"prediction-league-system/models"
)

type careerStats struct {
	models.UserStats
	Username  string  `json:"username,omitempty"`
	AvgPoints float64 `json:"avg_points"`
}

// GetUserStats returns one user's rolling career aggregates.
func (s *StandingsService) GetUserStats(c *fiber.Ctx) error {
	return s.careerStatsResponse(c, c.Params("user_id"))
}

// GetMyStats is the authenticated variant of GetUserStats.
func (s *StandingsService) GetMyStats(c *fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return c.Status(401).JSON(fiber.Map{"error": "missing user context"})
	}
	return s.careerStatsResponse(c, userID)
}

func (s *StandingsService) careerStatsResponse(c *fiber.Ctx, userID string) error {
	out, err := s.careerStatsFor(userID)
	if err == gorm.ErrRecordNotFound {
		return c.Status(404).JSON(fiber.Map{"error": "no stats recorded for this user yet"})
	}
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to load stats"})
	}
	return c.JSON(out)
}

func (s *StandingsService) careerStatsFor(userID string) (*careerStats, error) {
	var stats models.UserStats
	if err := s.DB.First(&stats, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}

	out := careerStats{UserStats: stats}
	if stats.TotalGPsPlayed > 0 {
		out.AvgPoints = float64(stats.TotalPoints) / float64(stats.TotalGPsPlayed)
	}
	var user models.LeagueUser
	if err := s.DB.First(&user, "external_user_id = ?", userID).Error; err == nil {
		out.Username = user.Username
	}
	return &out, nil
}

type evolutionPoint struct {
	GrandPrixID string `json:"gp_id"`
	GPName      string `json:"gp_name"`
	Points      int    `json:"points"`
	Cumulative  int    `json:"cumulative"`
}

// GetSeasonEvolution returns each participant's cumulative points series over
// the season's scored rounds, in race order. An optional user_id query param
// narrows the series to one user.
func (s *StandingsService) GetSeasonEvolution(c *fiber.Ctx) error {
	series, err := s.seasonEvolution(c.Params("season_id"), c.Query("user_id"))
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to load evolution"})
	}
	return c.JSON(series)
}

func (s *StandingsService) seasonEvolution(seasonID, onlyUserID string) (map[string][]evolutionPoint, error) {
	type evolutionRow struct {
		UserID      string
		GrandPrixID string
		GPName      string `gorm:"column:gp_name"`
		Points      int
	}

	q := s.DB.Table("user_gp_stats").
		Select("user_gp_stats.user_id, user_gp_stats.grand_prix_id, grand_prixes.name AS gp_name, user_gp_stats.points").
		Joins("JOIN grand_prixes ON grand_prixes.id = user_gp_stats.grand_prix_id").
		Where("user_gp_stats.season_id = ?", seasonID).
		Order("grand_prixes.race_datetime ASC, user_gp_stats.user_id ASC")
	if onlyUserID != "" {
		q = q.Where("user_gp_stats.user_id = ?", onlyUserID)
	}

	var rows []evolutionRow
	if err := q.Scan(&rows).Error; err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	ids := make([]string, 0)
	for _, r := range rows {
		if !seen[r.UserID] {
			seen[r.UserID] = true
			ids = append(ids, r.UserID)
		}
	}
	names := usernamesFor(s.DB, ids)

	series := make(map[string][]evolutionPoint)
	running := make(map[string]int)
	for _, r := range rows {
		running[r.UserID] += r.Points
		key := names[r.UserID]
		if key == "" {
			key = r.UserID
		}
		series[key] = append(series[key], evolutionPoint{
			GrandPrixID: r.GrandPrixID,
			GPName:      r.GPName,
			Points:      r.Points,
			Cumulative:  running[r.UserID],
		})
	}
	return series, nil
}

func usernamesFor(db *gorm.DB, ids []string) map[string]string {
	byID := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return byID
	}
	var users []models.LeagueUser
	if err := db.Where("external_user_id IN ?", ids).Find(&users).Error; err != nil {
		return byID
	}
	for _, u := range users {
		byID[u.ExternalUserID] = u.Username
	}
	return byID
}
