package services

import (
	"errors"
	"log"
	"time"

	"prediction-league-system/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PredictionService struct {
	DB *gorm.DB
}

func NewPredictionService(db *gorm.DB) *PredictionService {
	return &PredictionService{DB: db}
}

type positionEntry struct {
	Position   int    `json:"position"`
	DriverCode string `json:"driver_code"`
}

type predictionPayload struct {
	GrandPrixID string            `json:"grand_prix_id"`
	Positions   []positionEntry   `json:"positions"`
	Outcomes    map[string]string `json:"outcomes"`
}

// SubmitPrediction creates or fully overwrites the caller's prediction for a
// round. Resubmission is allowed any number of times while the round is open;
// once the round locks or a result exists the prediction is read-only.
func (s *PredictionService) SubmitPrediction(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	if userID == "" {
		return c.Status(401).JSON(fiber.Map{"error": "missing user context"})
	}

	var payload predictionPayload
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON body"})
	}
	if payload.GrandPrixID == "" {
		return c.Status(400).JSON(fiber.Map{"error": "grand_prix_id is required"})
	}

	var gp models.GrandPrix
	if err := s.DB.First(&gp, "id = ?", payload.GrandPrixID).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "grand prix not found"})
	}
	if gp.Status == models.GPStatusLocked || !time.Now().UTC().Before(gp.RaceDatetime) {
		return c.Status(409).JSON(fiber.Map{"error": "predictions for this grand prix are locked"})
	}
	var resultCount int64
	s.DB.Model(&models.RaceResult{}).Where("grand_prix_id = ?", gp.ID).Count(&resultCount)
	if resultCount > 0 {
		return c.Status(409).JSON(fiber.Map{"error": "an official result already exists for this grand prix"})
	}

	if err := validatePositions(payload.Positions); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	var pred models.Prediction
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("user_id = ? AND grand_prix_id = ?", userID, gp.ID).First(&pred).Error
		if err == gorm.ErrRecordNotFound {
			pred = models.Prediction{
				ID:          uuid.NewString(),
				UserID:      userID,
				GrandPrixID: gp.ID,
			}
			if err := tx.Create(&pred).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		// Wholesale replace of the child rows on every resubmission.
		if err := tx.Where("prediction_id = ?", pred.ID).Delete(&models.PredictionPosition{}).Error; err != nil {
			return err
		}
		if err := tx.Where("prediction_id = ?", pred.ID).Delete(&models.PredictionOutcome{}).Error; err != nil {
			return err
		}

		for _, entry := range payload.Positions {
			row := models.PredictionPosition{
				ID:           uuid.NewString(),
				PredictionID: pred.ID,
				Position:     entry.Position,
				DriverCode:   entry.DriverCode,
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		for outcomeType, value := range payload.Outcomes {
			row := models.PredictionOutcome{
				ID:           uuid.NewString(),
				PredictionID: pred.ID,
				OutcomeType:  outcomeType,
				Value:        value,
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Printf("❌ [PREDICTION] save failed for user %s, gp %s: %v", userID, gp.ID, err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to save prediction"})
	}

	s.DB.Preload("Positions").Preload("Outcomes").First(&pred, "id = ?", pred.ID)
	return c.Status(200).JSON(pred)
}

// GetMyPrediction returns the caller's prediction for one round, 404 if none.
func (s *PredictionService) GetMyPrediction(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	if userID == "" {
		return c.Status(401).JSON(fiber.Map{"error": "missing user context"})
	}
	gpID := c.Params("gp_id")

	var pred models.Prediction
	err := s.DB.Preload("Positions").Preload("Outcomes").
		Where("user_id = ? AND grand_prix_id = ?", userID, gpID).
		First(&pred).Error
	if err == gorm.ErrRecordNotFound {
		return c.Status(404).JSON(fiber.Map{"error": "no prediction for this grand prix"})
	}
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to load prediction"})
	}
	return c.JSON(pred)
}

// GetPredictionsForGP lists every prediction of a round. Other players'
// predictions stay hidden until the round locks.
func (s *PredictionService) GetPredictionsForGP(c *fiber.Ctx) error {
	gpID := c.Params("gp_id")

	var gp models.GrandPrix
	if err := s.DB.First(&gp, "id = ?", gpID).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "grand prix not found"})
	}
	if gp.Status != models.GPStatusLocked && time.Now().UTC().Before(gp.RaceDatetime) {
		return c.Status(409).JSON(fiber.Map{"error": "predictions are hidden until the grand prix locks"})
	}

	var preds []models.Prediction
	if err := s.DB.Preload("Positions").Preload("Outcomes").
		Where("grand_prix_id = ?", gpID).
		Order("points DESC").Find(&preds).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to load predictions"})
	}
	return c.JSON(preds)
}

func validatePositions(entries []positionEntry) error {
	seenSlots := map[int]bool{}
	seenDrivers := map[string]bool{}
	for _, e := range entries {
		if e.Position < 1 || e.Position > 10 {
			return errors.New("positions must be between 1 and 10")
		}
		if e.DriverCode == "" {
			return errors.New("driver_code is required for every position")
		}
		if seenSlots[e.Position] {
			return errors.New("duplicate position slot")
		}
		if seenDrivers[e.DriverCode] {
			return errors.New("a driver can only appear once")
		}
		seenSlots[e.Position] = true
		seenDrivers[e.DriverCode] = true
	}
	return nil
}
