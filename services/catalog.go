package services

import (
	"log"

	"prediction-league-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SeedAchievements writes the built-in achievement catalog into the database.
// Safe to run on every boot: existing rows are updated in place by slug so
// renamed descriptions or rarity changes propagate without touching unlocks.
func SeedAchievements(db *gorm.DB) error {
	defs := make([]models.Achievement, len(models.Catalog))
	copy(defs, models.Catalog)
	for i := range defs {
		defs[i].ID = uuid.NewString()
	}

	err := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "slug"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name", "description", "icon", "rarity", "scope", "revocable",
		}),
	}).Create(&defs).Error
	if err != nil {
		return err
	}

	log.Printf("✅ [CATALOG] %d achievement definition(s) in place", len(defs))
	return nil
}
