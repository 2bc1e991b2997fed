package services

import (
	"fmt"
	"log"
	"time"

	"prediction-league-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type StatsService struct {
	DB *gorm.DB
}

func NewStatsService(db *gorm.DB) *StatsService {
	return &StatsService{DB: db}
}

// ApplyGrandPrix folds one round's metrics into the user's rolling totals.
// Designed to run inside the caller's transaction, one (user, gp) at a time.
//
// Replays are idempotent: an existing UserGPStats snapshot is subtracted before
// the new metrics are added, so re-scoring after a result correction converges
// on the same totals as a clean run. Deliveries older than the user's
// last-processed pointer are skipped silently unless rebuilding — schedulers
// re-deliver stale rounds and that must not corrupt the aggregates.
func (s *StatsService) ApplyGrandPrix(tx *gorm.DB, userID string, gp *models.GrandPrix, m GPMetrics, rebuild bool) (*models.UserStats, error) {
	stats, err := s.ensureStats(tx, userID)
	if err != nil {
		return nil, err
	}

	if !rebuild && stats.LastGPAt != nil && stats.LastGPAt.After(gp.RaceDatetime) {
		log.Printf("[STATS] ⏭️ out-of-order gp %s for user %s (last processed %s), skipping", gp.ID, userID, stats.LastGPAt.Format(time.RFC3339))
		return stats, nil
	}

	var snap models.UserGPStats
	hadSnapshot := true
	if err := tx.Where("user_id = ? AND grand_prix_id = ?", userID, gp.ID).First(&snap).Error; err != nil {
		if err != gorm.ErrRecordNotFound {
			return nil, err
		}
		hadSnapshot = false
	}

	// Correction path: remove exactly what this round contributed last time.
	if hadSnapshot {
		stats.TotalPoints -= snap.Points
		stats.TotalGPsPlayed--
		stats.ExactPositions -= snap.ExactPositions
		stats.ExactPodiums -= boolToInt(snap.ExactPodium)
		stats.FastestLapHits -= boolToInt(snap.FastestLapHit)
		stats.SafetyCarHits -= boolToInt(snap.SafetyCarHit)
		stats.DNFCountHits -= boolToInt(snap.DNFCountHit)
		stats.DNFDriverHits -= boolToInt(snap.DNFDriverHit)
		if snap.SeasonID == stats.CurrentSeasonID {
			stats.CurrentSeasonPoints -= snap.Points
		}
	}

	// Season rollover: the snapshots stay the single source of truth for the
	// season total, so rederive instead of trusting a stale running value.
	// This round's own snapshot is excluded — it still carries the pre-correction
	// points and the apply path below adds the fresh value.
	if stats.CurrentSeasonID != gp.SeasonID {
		points, err := s.seasonPointsExcluding(tx, userID, gp.SeasonID, gp.ID)
		if err != nil {
			return nil, err
		}
		stats.CurrentSeasonID = gp.SeasonID
		stats.CurrentSeasonPoints = points
	}

	// Apply path.
	stats.TotalPoints += m.FinalPoints
	stats.TotalGPsPlayed++
	stats.ExactPositions += m.ExactPositions
	stats.ExactPodiums += boolToInt(m.PodiumExact)
	stats.FastestLapHits += boolToInt(m.FastestLapHit)
	stats.SafetyCarHits += boolToInt(m.SafetyCarHit)
	stats.DNFCountHits += boolToInt(m.DNFCountHit)
	stats.DNFDriverHits += boolToInt(m.DNFDriverHit)
	stats.CurrentSeasonPoints += m.FinalPoints

	if !hadSnapshot {
		snap = models.UserGPStats{
			ID:          uuid.NewString(),
			UserID:      userID,
			GrandPrixID: gp.ID,
		}
	}
	snap.SeasonID = gp.SeasonID
	snap.Points = m.FinalPoints
	snap.ExactPositions = m.ExactPositions
	snap.ExactPodium = m.PodiumExact
	snap.FastestLapHit = m.FastestLapHit
	snap.SafetyCarHit = m.SafetyCarHit
	snap.DNFCountHit = m.DNFCountHit
	snap.DNFDriverHit = m.DNFDriverHit
	if err := tx.Save(&snap).Error; err != nil {
		return nil, err
	}

	if stats.LastGPAt == nil || !gp.RaceDatetime.Before(*stats.LastGPAt) {
		raceAt := gp.RaceDatetime
		gpID := gp.ID
		stats.LastGPAt = &raceAt
		stats.LastGPID = &gpID
	}

	if err := tx.Save(stats).Error; err != nil {
		return nil, err
	}
	return stats, nil
}

// SeasonPoints sums a user's per-round snapshots for one season.
func (s *StatsService) SeasonPoints(tx *gorm.DB, userID, seasonID string) (int, error) {
	var points int
	err := tx.Raw(
		"SELECT COALESCE(SUM(points), 0) FROM user_gp_stats WHERE user_id = ? AND season_id = ?",
		userID, seasonID,
	).Scan(&points).Error
	return points, err
}

func (s *StatsService) seasonPointsExcluding(tx *gorm.DB, userID, seasonID, gpID string) (int, error) {
	var points int
	err := tx.Raw(
		"SELECT COALESCE(SUM(points), 0) FROM user_gp_stats WHERE user_id = ? AND season_id = ? AND grand_prix_id <> ?",
		userID, seasonID, gpID,
	).Scan(&points).Error
	return points, err
}

// VerifySnapshots surfaces snapshot rows pointing at rounds that no longer
// exist. That is a bug, not a correction, and must abort the caller.
func (s *StatsService) VerifySnapshots(tx *gorm.DB, userID string) error {
	var orphans int64
	err := tx.Raw(`
		SELECT COUNT(*) FROM user_gp_stats ugs
		LEFT JOIN grand_prixes gp ON gp.id = ugs.grand_prix_id
		WHERE ugs.user_id = ? AND gp.id IS NULL`,
		userID,
	).Scan(&orphans).Error
	if err != nil {
		return err
	}
	if orphans > 0 {
		return fmt.Errorf("user %s has %d stats snapshot(s) without a grand prix", userID, orphans)
	}
	return nil
}

// Wipe drops every aggregate and snapshot. Rebuild-only.
func (s *StatsService) Wipe(tx *gorm.DB) error {
	if err := tx.Where("1 = 1").Delete(&models.UserGPStats{}).Error; err != nil {
		return err
	}
	return tx.Where("1 = 1").Delete(&models.UserStats{}).Error
}

func (s *StatsService) ensureStats(tx *gorm.DB, userID string) (*models.UserStats, error) {
	var stats models.UserStats
	err := tx.Where("user_id = ?", userID).First(&stats).Error
	if err == gorm.ErrRecordNotFound {
		stats = models.UserStats{UserID: userID}
		if err := tx.Create(&stats).Error; err != nil {
			return nil, err
		}
		return &stats, nil
	}
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
