// services/scheduler.go
package services

import (
	"log"
	"time"

	"prediction-league-system/models"

	"github.com/go-co-op/gocron/v2"
)

func (s *PredictionService) StartLockScheduler() {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	// Every minute: lock rounds whose race has started
	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Minute),
		gocron.NewTask(func() {
			var gps []models.GrandPrix
			now := time.Now().UTC()
			err := s.DB.Where("status = ? AND race_datetime <= ?", models.GPStatusScheduled, now).
				Find(&gps).Error
			if err != nil {
				log.Printf("[Scheduler] DB error: %v", err)
				return
			}

			for _, gp := range gps {
				gp.Status = models.GPStatusLocked
				if err := s.DB.Save(&gp).Error; err != nil {
					log.Printf("[Scheduler] Failed to lock grand prix %s: %v", gp.ID, err)
				} else {
					log.Printf("✅ Auto-locked predictions for: %s", gp.Name)
				}
			}
		}),
	)
}
