package services

import (
	"testing"
	"time"

	"prediction-league-system/models"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap test db: %v", err)
	}
	// one connection keeps the in-memory database alive and shared
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&models.Season{},
		&models.MultiplierConfig{},
		&models.GrandPrix{},
		&models.RaceResult{},
		&models.RacePosition{},
		&models.RaceOutcome{},
		&models.Prediction{},
		&models.PredictionPosition{},
		&models.PredictionOutcome{},
		&models.Constructor{},
		&models.Driver{},
		&models.Team{},
		&models.TeamMember{},
		&models.LeagueUser{},
		&models.UserStats{},
		&models.UserGPStats{},
		&models.Achievement{},
		&models.UserAchievement{},
		&models.BingoTile{},
		&models.BingoSelection{},
	); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	if err := SeedAchievements(db); err != nil {
		t.Fatalf("seed achievements: %v", err)
	}
	return db
}

func makeSeason(t *testing.T, db *gorm.DB, year int) *models.Season {
	t.Helper()
	season := models.Season{ID: uuid.NewString(), Year: year, Name: "Test Season"}
	if err := db.Create(&season).Error; err != nil {
		t.Fatalf("create season: %v", err)
	}
	return &season
}

func makeGrandPrix(t *testing.T, db *gorm.DB, seasonID, name string, raceAt time.Time) *models.GrandPrix {
	t.Helper()
	gp := models.GrandPrix{
		ID:           uuid.NewString(),
		SeasonID:     seasonID,
		Name:         name,
		RaceDatetime: raceAt.UTC(),
		Status:       models.GPStatusScheduled,
	}
	if err := db.Create(&gp).Error; err != nil {
		t.Fatalf("create grand prix: %v", err)
	}
	return &gp
}

func makePrediction(t *testing.T, db *gorm.DB, userID, gpID string, positions map[int]string, outcomes map[string]string) {
	t.Helper()
	pred := models.Prediction{ID: uuid.NewString(), UserID: userID, GrandPrixID: gpID}
	if err := db.Create(&pred).Error; err != nil {
		t.Fatalf("create prediction: %v", err)
	}
	for pos, code := range positions {
		row := models.PredictionPosition{ID: uuid.NewString(), PredictionID: pred.ID, Position: pos, DriverCode: code}
		if err := db.Create(&row).Error; err != nil {
			t.Fatalf("create prediction position: %v", err)
		}
	}
	for outcomeType, value := range outcomes {
		row := models.PredictionOutcome{ID: uuid.NewString(), PredictionID: pred.ID, OutcomeType: outcomeType, Value: value}
		if err := db.Create(&row).Error; err != nil {
			t.Fatalf("create prediction outcome: %v", err)
		}
	}
}

func makeResult(t *testing.T, db *gorm.DB, gpID string, positions map[int]string, outcomes map[string]string) {
	t.Helper()

	// replace any previous result wholesale, like the admin endpoint does
	var result models.RaceResult
	err := db.Where("grand_prix_id = ?", gpID).First(&result).Error
	if err == gorm.ErrRecordNotFound {
		result = models.RaceResult{ID: uuid.NewString(), GrandPrixID: gpID}
		if err := db.Create(&result).Error; err != nil {
			t.Fatalf("create result: %v", err)
		}
	} else if err != nil {
		t.Fatalf("load result: %v", err)
	} else {
		db.Where("race_result_id = ?", result.ID).Delete(&models.RacePosition{})
		db.Where("race_result_id = ?", result.ID).Delete(&models.RaceOutcome{})
	}

	for pos, code := range positions {
		row := models.RacePosition{ID: uuid.NewString(), RaceResultID: result.ID, Position: pos, DriverCode: code}
		if err := db.Create(&row).Error; err != nil {
			t.Fatalf("create result position: %v", err)
		}
	}
	for outcomeType, value := range outcomes {
		row := models.RaceOutcome{ID: uuid.NewString(), RaceResultID: result.ID, OutcomeType: outcomeType, Value: value}
		if err := db.Create(&row).Error; err != nil {
			t.Fatalf("create result outcome: %v", err)
		}
	}
	if err := db.Model(&models.GrandPrix{}).Where("id = ?", gpID).
		Updates(map[string]interface{}{"status": models.GPStatusLocked, "scored_at": nil}).Error; err != nil {
		t.Fatalf("lock grand prix: %v", err)
	}
}

func heldSlugs(t *testing.T, db *gorm.DB, userID string) map[string]bool {
	t.Helper()
	var rows []models.UserAchievement
	if err := db.Preload("Achievement").Where("user_id = ?", userID).Find(&rows).Error; err != nil {
		t.Fatalf("load unlocks: %v", err)
	}
	held := map[string]bool{}
	for _, row := range rows {
		held[row.Achievement.Slug] = true
	}
	return held
}
