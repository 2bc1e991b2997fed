package services

import (
	"log"
	"strings"
	"time"

	"prediction-league-system/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LeagueService owns the admin surface of the league: seasons, the race
// calendar, the driver roster, multiplier configuration and the scoring
// entry points that delegate to the engine.
type LeagueService struct {
	DB     *gorm.DB
	Engine *EngineService
}

func NewLeagueService(db *gorm.DB, engine *EngineService) *LeagueService {
	return &LeagueService{DB: db, Engine: engine}
}

// --- Seasons ---

type seasonPayload struct {
	Year int    `json:"year"`
	Name string `json:"name"`
}

func (s *LeagueService) CreateSeason(c *fiber.Ctx) error {
	var payload seasonPayload
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON body"})
	}
	if payload.Year == 0 || strings.TrimSpace(payload.Name) == "" {
		return c.Status(400).JSON(fiber.Map{"error": "year and name are required"})
	}

	season := models.Season{
		ID:   uuid.NewString(),
		Year: payload.Year,
		Name: strings.TrimSpace(payload.Name),
	}
	if err := s.DB.Create(&season).Error; err != nil {
		log.Printf("❌ [LEAGUE] season create failed: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to create season"})
	}
	return c.Status(201).JSON(season)
}

func (s *LeagueService) GetAllSeasons(c *fiber.Ctx) error {
	var seasons []models.Season
	if err := s.DB.Order("year DESC").Find(&seasons).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to load seasons"})
	}
	return c.JSON(seasons)
}

// --- Calendar ---

type grandPrixPayload struct {
	SeasonID     string `json:"season_id"`
	Name         string `json:"name"`
	Country      string `json:"country"`
	RaceDatetime string `json:"race_datetime"` // RFC3339
}

func (s *LeagueService) CreateGrandPrix(c *fiber.Ctx) error {
	var payload grandPrixPayload
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON body"})
	}
	if payload.SeasonID == "" || payload.Name == "" || payload.RaceDatetime == "" {
		return c.Status(400).JSON(fiber.Map{"error": "season_id, name and race_datetime are required"})
	}

	raceAt, err := time.Parse(time.RFC3339, payload.RaceDatetime)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid race_datetime (use RFC3339)"})
	}

	var season models.Season
	if err := s.DB.First(&season, "id = ?", payload.SeasonID).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "season not found"})
	}
	if season.ClosedAt != nil {
		return c.Status(409).JSON(fiber.Map{"error": "season is closed"})
	}

	gp := models.GrandPrix{
		ID:           uuid.NewString(),
		SeasonID:     season.ID,
		Name:         payload.Name,
		Country:      payload.Country,
		RaceDatetime: raceAt.UTC(),
		Status:       models.GPStatusScheduled,
	}
	if err := s.DB.Create(&gp).Error; err != nil {
		log.Printf("❌ [LEAGUE] grand prix create failed: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to create grand prix"})
	}
	return c.Status(201).JSON(gp)
}

func (s *LeagueService) GetCalendar(c *fiber.Ctx) error {
	seasonID := c.Params("season_id")

	var gps []models.GrandPrix
	if err := s.DB.Where("season_id = ?", seasonID).
		Order("race_datetime ASC").Find(&gps).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to load calendar"})
	}
	return c.JSON(gps)
}

// --- Roster ---

type constructorPayload struct {
	SeasonID    string `json:"season_id"`
	Name        string `json:"name"`
	Color       string `json:"color"`
	HomeCountry string `json:"home_country"`
	Drivers     []struct {
		Code string `json:"code"`
		Name string `json:"name"`
	} `json:"drivers"`
}

func (s *LeagueService) CreateConstructor(c *fiber.Ctx) error {
	var payload constructorPayload
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON body"})
	}
	if payload.SeasonID == "" || payload.Name == "" {
		return c.Status(400).JSON(fiber.Map{"error": "season_id and name are required"})
	}

	constructor := models.Constructor{
		ID:          uuid.NewString(),
		SeasonID:    payload.SeasonID,
		Name:        payload.Name,
		Color:       payload.Color,
		HomeCountry: payload.HomeCountry,
	}
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&constructor).Error; err != nil {
			return err
		}
		for _, d := range payload.Drivers {
			driver := models.Driver{
				ID:            uuid.NewString(),
				ConstructorID: constructor.ID,
				Code:          strings.ToUpper(d.Code),
				Name:          d.Name,
			}
			if err := tx.Create(&driver).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Printf("❌ [LEAGUE] constructor create failed: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to create constructor"})
	}

	s.DB.Preload("Drivers").First(&constructor, "id = ?", constructor.ID)
	return c.Status(201).JSON(constructor)
}

func (s *LeagueService) GetRoster(c *fiber.Ctx) error {
	seasonID := c.Params("season_id")

	var constructors []models.Constructor
	if err := s.DB.Preload("Drivers").Where("season_id = ?", seasonID).
		Order("name ASC").Find(&constructors).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to load roster"})
	}
	return c.JSON(constructors)
}

// --- Multiplier configuration ---

type multiplierPayload struct {
	SeasonID    string  `json:"season_id"`
	OutcomeType string  `json:"outcome_type"`
	Multiplier  float64 `json:"multiplier"`
}

func (s *LeagueService) UpsertMultiplier(c *fiber.Ctx) error {
	var payload multiplierPayload
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON body"})
	}
	if payload.SeasonID == "" || payload.OutcomeType == "" {
		return c.Status(400).JSON(fiber.Map{"error": "season_id and outcome_type are required"})
	}
	if payload.Multiplier <= 0 {
		return c.Status(400).JSON(fiber.Map{"error": "multiplier must be positive"})
	}

	var config models.MultiplierConfig
	err := s.DB.Where("season_id = ? AND outcome_type = ?", payload.SeasonID, payload.OutcomeType).
		First(&config).Error
	if err == gorm.ErrRecordNotFound {
		config = models.MultiplierConfig{
			ID:          uuid.NewString(),
			SeasonID:    payload.SeasonID,
			OutcomeType: payload.OutcomeType,
			Multiplier:  payload.Multiplier,
		}
		err = s.DB.Create(&config).Error
	} else if err == nil {
		config.Multiplier = payload.Multiplier
		err = s.DB.Save(&config).Error
	}
	if err != nil {
		log.Printf("❌ [LEAGUE] multiplier upsert failed: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to save multiplier"})
	}
	return c.JSON(config)
}

// --- Scoring entry points ---

func (s *LeagueService) ScoreGrandPrixEndpoint(c *fiber.Ctx) error {
	gpID := c.Params("gp_id")

	points, err := s.Engine.ScoreGrandPrix(gpID)
	if err != nil {
		log.Printf("❌ [LEAGUE] scoring failed for gp %s: %v", gpID, err)
		return c.Status(500).JSON(fiber.Map{"error": "scoring failed"})
	}
	return c.JSON(fiber.Map{"points": points})
}

func (s *LeagueService) CloseSeasonEndpoint(c *fiber.Ctx) error {
	seasonID := c.Params("season_id")

	if err := s.Engine.CloseSeason(seasonID); err != nil {
		log.Printf("❌ [LEAGUE] season close failed for %s: %v", seasonID, err)
		return c.Status(500).JSON(fiber.Map{"error": "season close failed"})
	}
	return c.JSON(fiber.Map{"message": "season closed, finale awards assigned"})
}

func (s *LeagueService) RebuildEndpoint(c *fiber.Ctx) error {
	if err := s.Engine.RebuildAll(); err != nil {
		log.Printf("❌ [LEAGUE] rebuild failed: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "rebuild failed"})
	}
	return c.JSON(fiber.Map{"message": "history replayed"})
}
