package services

import (
	"log"

	"prediction-league-system/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ResultService struct {
	DB     *gorm.DB
	Engine *EngineService
}

func NewResultService(db *gorm.DB, engine *EngineService) *ResultService {
	return &ResultService{DB: db, Engine: engine}
}

type resultPayload struct {
	Positions []positionEntry   `json:"positions"`
	Outcomes  map[string]string `json:"outcomes"`
}

// UpsertResult stores or replaces the official result of a round and runs the
// scoring engine over it. Replacing an already-scored result is the correction
// path: the engine re-scores and the stats cache subtracts the old contribution
// before adding the new one.
func (s *ResultService) UpsertResult(c *fiber.Ctx) error {
	gpID := c.Params("gp_id")

	var payload resultPayload
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON body"})
	}
	if len(payload.Positions) == 0 {
		return c.Status(400).JSON(fiber.Map{"error": "at least one classified position is required"})
	}
	if err := validatePositions(payload.Positions); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	var gp models.GrandPrix
	if err := s.DB.First(&gp, "id = ?", gpID).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "grand prix not found"})
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var result models.RaceResult
		err := tx.Where("grand_prix_id = ?", gp.ID).First(&result).Error
		if err == gorm.ErrRecordNotFound {
			result = models.RaceResult{ID: uuid.NewString(), GrandPrixID: gp.ID}
			if err := tx.Create(&result).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		if err := tx.Where("race_result_id = ?", result.ID).Delete(&models.RacePosition{}).Error; err != nil {
			return err
		}
		if err := tx.Where("race_result_id = ?", result.ID).Delete(&models.RaceOutcome{}).Error; err != nil {
			return err
		}
		for _, entry := range payload.Positions {
			row := models.RacePosition{
				ID:           uuid.NewString(),
				RaceResultID: result.ID,
				Position:     entry.Position,
				DriverCode:   entry.DriverCode,
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		for outcomeType, value := range payload.Outcomes {
			row := models.RaceOutcome{
				ID:           uuid.NewString(),
				RaceResultID: result.ID,
				OutcomeType:  outcomeType,
				Value:        value,
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}

		// A round with an official result never reopens, and the sweep worker
		// picks it back up if the synchronous scoring below fails.
		return tx.Model(&gp).Updates(map[string]interface{}{
			"status":    models.GPStatusLocked,
			"scored_at": nil,
		}).Error
	})
	if err != nil {
		log.Printf("❌ [RESULT] save failed for gp %s: %v", gp.ID, err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to save result"})
	}

	points, err := s.Engine.ScoreGrandPrix(gp.ID)
	if err != nil {
		log.Printf("❌ [RESULT] scoring failed for %s, sweep worker will retry: %v", gp.Name, err)
		return c.Status(202).JSON(fiber.Map{
			"message": "result saved, scoring deferred",
		})
	}

	return c.JSON(fiber.Map{
		"message": "result saved and scored",
		"points":  points,
	})
}

// GetResult returns the stored official result of a round, 404 if none.
func (s *ResultService) GetResult(c *fiber.Ctx) error {
	gpID := c.Params("gp_id")

	var result models.RaceResult
	err := s.DB.Preload("Positions").Preload("Outcomes").
		Where("grand_prix_id = ?", gpID).First(&result).Error
	if err == gorm.ErrRecordNotFound {
		return c.Status(404).JSON(fiber.Map{"error": "no result for this grand prix"})
	}
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to load result"})
	}
	return c.JSON(result)
}
