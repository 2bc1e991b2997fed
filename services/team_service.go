package services

import (
	"fmt"
	"log"
	"strings"

	"prediction-league-system/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

type TeamService struct {
	DB *gorm.DB
}

func NewTeamService(db *gorm.DB) *TeamService {
	return &TeamService{DB: db}
}

type createTeamPayload struct {
	SeasonID string `json:"season_id"`
	Name     string `json:"name"`
}

// CreateTeam creates a squad for the season with the caller as first member.
// A user belongs to at most one squad per season.
func (s *TeamService) CreateTeam(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	if userID == "" {
		return c.Status(401).JSON(fiber.Map{"error": "missing user context"})
	}

	var payload createTeamPayload
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON body"})
	}
	if payload.SeasonID == "" || strings.TrimSpace(payload.Name) == "" {
		return c.Status(400).JSON(fiber.Map{"error": "season_id and name are required"})
	}

	var season models.Season
	if err := s.DB.First(&season, "id = ?", payload.SeasonID).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "season not found"})
	}
	if season.ClosedAt != nil {
		return c.Status(409).JSON(fiber.Map{"error": "season is closed"})
	}

	var existing int64
	s.DB.Model(&models.TeamMember{}).
		Where("user_id = ? AND season_id = ?", userID, payload.SeasonID).
		Count(&existing)
	if existing > 0 {
		return c.Status(409).JSON(fiber.Map{"error": "already in a squad this season"})
	}

	team := models.Team{
		ID:       uuid.NewString(),
		SeasonID: payload.SeasonID,
		Name:     strings.TrimSpace(payload.Name),
		Slug:     slug.Make(payload.Name),
		JoinCode: newJoinCode(),
	}
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&team).Error; err != nil {
			return err
		}
		member := models.TeamMember{
			ID:       uuid.NewString(),
			TeamID:   team.ID,
			UserID:   userID,
			SeasonID: payload.SeasonID,
		}
		return tx.Create(&member).Error
	})
	if err != nil {
		log.Printf("❌ [TEAM] create failed for user %s: %v", userID, err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to create squad"})
	}

	log.Printf("✅ [TEAM] %s created squad '%s' (%s)", userID, team.Name, team.JoinCode)
	return c.Status(201).JSON(team)
}

type joinTeamPayload struct {
	JoinCode string `json:"join_code"`
}

// JoinTeam adds the caller to the squad behind a join code, capped at two.
func (s *TeamService) JoinTeam(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	if userID == "" {
		return c.Status(401).JSON(fiber.Map{"error": "missing user context"})
	}

	var payload joinTeamPayload
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON body"})
	}

	var team models.Team
	if err := s.DB.First(&team, "join_code = ?", strings.ToUpper(strings.TrimSpace(payload.JoinCode))).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "no squad with that join code"})
	}

	var existing int64
	s.DB.Model(&models.TeamMember{}).
		Where("user_id = ? AND season_id = ?", userID, team.SeasonID).
		Count(&existing)
	if existing > 0 {
		return c.Status(409).JSON(fiber.Map{"error": "already in a squad this season"})
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var members int64
		if err := tx.Model(&models.TeamMember{}).Where("team_id = ?", team.ID).Count(&members).Error; err != nil {
			return err
		}
		if members >= models.MaxTeamSize {
			return fmt.Errorf("squad is full")
		}
		member := models.TeamMember{
			ID:       uuid.NewString(),
			TeamID:   team.ID,
			UserID:   userID,
			SeasonID: team.SeasonID,
		}
		return tx.Create(&member).Error
	})
	if err != nil {
		if err.Error() == "squad is full" {
			return c.Status(409).JSON(fiber.Map{"error": "squad is full"})
		}
		log.Printf("❌ [TEAM] join failed for user %s: %v", userID, err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to join squad"})
	}

	log.Printf("✅ [TEAM] %s joined squad '%s'", userID, team.Name)
	return c.JSON(team)
}

// GetMyTeam returns the caller's squad for a season with both members loaded.
func (s *TeamService) GetMyTeam(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	if userID == "" {
		return c.Status(401).JSON(fiber.Map{"error": "missing user context"})
	}
	seasonID := c.Params("season_id")

	var member models.TeamMember
	err := s.DB.Where("user_id = ? AND season_id = ?", userID, seasonID).First(&member).Error
	if err == gorm.ErrRecordNotFound {
		return c.Status(404).JSON(fiber.Map{"error": "not in a squad this season"})
	}
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to load squad"})
	}

	var team models.Team
	if err := s.DB.Preload("Members").First(&team, "id = ?", member.TeamID).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to load squad"})
	}
	return c.JSON(team)
}

// newJoinCode builds a short shareable code like "X9A-2B1".
func newJoinCode() string {
	raw := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return raw[:3] + "-" + raw[3:6]
}
