package workers

import (
	"context"
	"log"
	"time"

	"prediction-league-system/models"
	"prediction-league-system/services"

	"gorm.io/gorm"
)

// ScoreSweepWorker re-delivers rounds that have an official result but no
// scored_at stamp: a crashed scoring run, a correction that cleared the stamp,
// or a result inserted while the service was down. Re-delivering an already
// processed round is harmless — the stats cache ordering guard and the ledger's
// at-most-once grants absorb it.
type ScoreSweepWorker struct {
	db     *gorm.DB
	engine *services.EngineService
}

func NewScoreSweepWorker(db *gorm.DB, engine *services.EngineService) *ScoreSweepWorker {
	return &ScoreSweepWorker{db: db, engine: engine}
}

func (w *ScoreSweepWorker) Start(ctx context.Context, pollInterval time.Duration) {
	log.Println("🔁 Starting Score Sweep Worker (unscored results → engine)…")
	go w.run(ctx, pollInterval)
}

func (w *ScoreSweepWorker) run(ctx context.Context, pollInterval time.Duration) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("⏹️ Score Sweep Worker stopped")
			return
		case <-ticker.C:
			w.sweep()
		}
	}
}

func (w *ScoreSweepWorker) sweep() {
	var gps []models.GrandPrix
	err := w.db.Where("scored_at IS NULL AND id IN (?)",
		w.db.Session(&gorm.Session{NewDB: true}).Model(&models.RaceResult{}).Select("grand_prix_id"),
	).Order("race_datetime ASC").Find(&gps).Error
	if err != nil {
		log.Printf("❌ [SWEEP] query failed: %v", err)
		return
	}
	if len(gps) == 0 {
		return
	}

	log.Printf("📥 [SWEEP] %d unscored round(s) found", len(gps))
	for _, gp := range gps {
		if _, err := w.engine.ScoreGrandPrix(gp.ID); err != nil {
			log.Printf("❌ [SWEEP] scoring %s failed: %v", gp.Name, err)
			// leave scored_at empty, retry on the next tick
		}
	}
}
