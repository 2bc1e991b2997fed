package services

import (
	"sort"

	"prediction-league-system/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type StandingsService struct {
	DB *gorm.DB
}

func NewStandingsService(db *gorm.DB) *StandingsService {
	return &StandingsService{DB: db}
}

type standingRow struct {
	Rank           int    `json:"rank"`
	UserID         string `json:"user_id"`
	Username       string `json:"username,omitempty"`
	Points         int    `json:"points"`
	GPsPlayed      int    `json:"gps_played" gorm:"column:gps_played"`
	ExactPositions int    `json:"exact_positions"`
}

// GetSeasonStandings ranks every participant of a season by the sum of their
// frozen per-round snapshots. This is the same ranking the finale pass uses.
func (s *StandingsService) GetSeasonStandings(c *fiber.Ctx) error {
	seasonID := c.Params("season_id")

	var rows []standingRow
	err := s.DB.Model(&models.UserGPStats{}).
		Select("user_id, SUM(points) AS points, COUNT(*) AS gps_played, SUM(exact_positions) AS exact_positions").
		Where("season_id = ?", seasonID).
		Group("user_id").
		Scan(&rows).Error
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to load standings"})
	}

	rankRows(rows)
	s.attachUsernames(rows)
	return c.JSON(rows)
}

// GetGPStandings ranks one round by final prediction points.
func (s *StandingsService) GetGPStandings(c *fiber.Ctx) error {
	gpID := c.Params("gp_id")

	var rows []standingRow
	err := s.DB.Model(&models.UserGPStats{}).
		Select("user_id, points, exact_positions, 1 AS gps_played").
		Where("grand_prix_id = ?", gpID).
		Scan(&rows).Error
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to load standings"})
	}

	rankRows(rows)
	s.attachUsernames(rows)
	return c.JSON(rows)
}

type teamStandingRow struct {
	Rank     int    `json:"rank"`
	TeamID   string `json:"team_id"`
	TeamName string `json:"team_name"`
	Points   int    `json:"points"`
	Members  int    `json:"members"`
}

// GetTeamStandings ranks the season's squads by their members' combined points.
func (s *StandingsService) GetTeamStandings(c *fiber.Ctx) error {
	seasonID := c.Params("season_id")

	var rows []teamStandingRow
	err := s.DB.Table("team_members").
		Select("team_members.team_id, teams.name AS team_name, COUNT(DISTINCT team_members.user_id) AS members, COALESCE(SUM(user_gp_stats.points), 0) AS points").
		Joins("JOIN teams ON teams.id = team_members.team_id").
		Joins("LEFT JOIN user_gp_stats ON user_gp_stats.user_id = team_members.user_id AND user_gp_stats.season_id = team_members.season_id").
		Where("team_members.season_id = ?", seasonID).
		Group("team_members.team_id, teams.name").
		Scan(&rows).Error
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to load team standings"})
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Points != rows[j].Points {
			return rows[i].Points > rows[j].Points
		}
		return rows[i].TeamID < rows[j].TeamID
	})
	for i := range rows {
		rows[i].Rank = i + 1
	}
	return c.JSON(rows)
}

func rankRows(rows []standingRow) {
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Points != rows[j].Points {
			return rows[i].Points > rows[j].Points
		}
		return rows[i].UserID < rows[j].UserID
	})
	for i := range rows {
		rows[i].Rank = i + 1
	}
}

func (s *StandingsService) attachUsernames(rows []standingRow) {
	if len(rows) == 0 {
		return
	}
	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.UserID)
	}
	byID := usernamesFor(s.DB, ids)
	for i := range rows {
		rows[i].Username = byID[rows[i].UserID]
	}
}
