package services

import (
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"prediction-league-system/models"

	"gorm.io/gorm"
)

// EngineService drives the scoring pipeline for one round at a time:
// score each participant's prediction, fold the metrics into the stats cache,
// evaluate the achievement rules and reconcile the ledger — all inside one
// transaction per (user, round). It also owns the season finale pass and the
// full-history rebuild.
type EngineService struct {
	DB     *gorm.DB
	Stats  *StatsService
	Ledger *LedgerService

	// Serializes round scoring against the finale pass and rebuilds. A late
	// correction racing a finale wipe would either lose its grant or resurrect
	// stale ranks; neither is acceptable.
	mu sync.Mutex
}

func NewEngineService(db *gorm.DB, stats *StatsService, ledger *LedgerService) *EngineService {
	e := &EngineService{DB: db, Stats: stats, Ledger: ledger}
	ledger.Rescan = e.rescanEventSlug
	return e
}

// ScoreGrandPrix scores one round for every user who predicted it and returns
// their final points. A round without a stored result is a no-op, not an error.
func (e *EngineService) ScoreGrandPrix(gpID string) (map[string]int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.scoreGrandPrixLocked(e.DB, gpID, false)
}

func (e *EngineService) scoreGrandPrixLocked(db *gorm.DB, gpID string, rebuild bool) (map[string]int, error) {
	var gp models.GrandPrix
	if err := db.First(&gp, "id = ?", gpID).Error; err != nil {
		return nil, fmt.Errorf("grand prix %s not found: %w", gpID, err)
	}

	var result models.RaceResult
	err := db.Preload("Positions").Preload("Outcomes").
		Where("grand_prix_id = ?", gpID).First(&result).Error
	if err == gorm.ErrRecordNotFound {
		log.Printf("[SCORING] ⏭️ no result stored for %s yet, skipping", gp.Name)
		return map[string]int{}, nil
	}
	if err != nil {
		return nil, err
	}

	sctx, err := e.seasonContext(db, gp.SeasonID)
	if err != nil {
		return nil, err
	}

	var userIDs []string
	if err := db.Model(&models.Prediction{}).
		Where("grand_prix_id = ?", gpID).
		Distinct().Pluck("user_id", &userIDs).Error; err != nil {
		return nil, err
	}

	real := resultView(&result)
	points := make(map[string]int, len(userIDs))

	for _, userID := range userIDs {
		uid := userID
		run := func(tx *gorm.DB) error {
			final, err := e.scoreUserRound(tx, &gp, uid, real, sctx, rebuild)
			if err != nil {
				return err
			}
			points[uid] = final
			return nil
		}
		// Inside a rebuild everything already runs in one enclosing
		// transaction; otherwise each (user, round) pair commits atomically.
		if rebuild {
			err = run(db)
		} else {
			err = db.Transaction(run)
		}
		if err != nil {
			return nil, fmt.Errorf("scoring %s for user %s: %w", gp.Name, uid, err)
		}
	}

	now := time.Now().UTC()
	if err := db.Model(&gp).Update("scored_at", &now).Error; err != nil {
		return nil, err
	}

	log.Printf("[SCORING] ✅ %s scored for %d user(s)", gp.Name, len(userIDs))
	return points, nil
}

// scoreUserRound is the per-user pipeline: score -> stats -> rules -> ledger.
func (e *EngineService) scoreUserRound(tx *gorm.DB, gp *models.GrandPrix, userID string, real ResultView, sctx *seasonContext, rebuild bool) (int, error) {
	var pred models.Prediction
	err := tx.Preload("Positions").Preload("Outcomes").
		Where("user_id = ? AND grand_prix_id = ?", userID, gp.ID).
		First(&pred).Error
	if err == gorm.ErrRecordNotFound {
		return 0, nil // never predicted this round — zero contribution
	}
	if err != nil {
		return 0, err
	}

	view := predictionView(&pred)
	score := CalculateScore(view, real, sctx.configs)

	if err := tx.Model(&pred).Updates(map[string]interface{}{
		"base_points": score.BasePoints,
		"multiplier":  score.Multiplier,
		"points":      score.FinalPoints,
	}).Error; err != nil {
		return 0, err
	}

	metrics := ExtractMetrics(view, real, sctx.configs)

	stats, err := e.Stats.ApplyGrandPrix(tx, userID, gp, metrics, rebuild)
	if err != nil {
		return 0, err
	}

	// Event badges still evaluate for a late-delivered round: the ordering
	// guard protects the aggregates, not a badge genuinely earned here.
	seasonPoints := stats.CurrentSeasonPoints
	if stats.CurrentSeasonID != gp.SeasonID {
		if seasonPoints, err = e.Stats.SeasonPoints(tx, userID, gp.SeasonID); err != nil {
			return 0, err
		}
	}

	shouldHave := EvaluateEventSlugs(metrics, e.gpContext(gp, view, real, sctx, userID))
	for slug := range EvaluateSeasonSlugs(seasonPoints) {
		shouldHave[slug] = true
	}
	for slug := range EvaluateCareerSlugs(stats) {
		shouldHave[slug] = true
	}

	err = e.Ledger.Reconcile(tx, userID, shouldHave, GrantContext{
		SeasonID:    gp.SeasonID,
		GrandPrixID: gp.ID,
	})
	if err != nil {
		return 0, err
	}
	return score.FinalPoints, nil
}

// RebuildAll is the recovery path for rule changes or bad history: wipe every
// aggregate and unlock, then replay all resulted rounds in race order, running
// the finale pass again after the last round of every closed season.
func (e *EngineService) RebuildAll() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.DB.Transaction(func(tx *gorm.DB) error {
		if err := e.Ledger.WipeAll(tx); err != nil {
			return err
		}
		if err := e.Stats.Wipe(tx); err != nil {
			return err
		}

		var gps []models.GrandPrix
		err := tx.Where("id IN (?)",
			tx.Session(&gorm.Session{NewDB: true}).Model(&models.RaceResult{}).Select("grand_prix_id"),
		).Order("race_datetime ASC").Find(&gps).Error
		if err != nil {
			return err
		}

		prevSeason := ""
		for _, gp := range gps {
			if prevSeason != "" && prevSeason != gp.SeasonID {
				if err := e.finaleIfClosed(tx, prevSeason); err != nil {
					return err
				}
			}
			prevSeason = gp.SeasonID

			if _, err := e.scoreGrandPrixLocked(tx, gp.ID, true); err != nil {
				return err
			}
		}
		if prevSeason != "" {
			if err := e.finaleIfClosed(tx, prevSeason); err != nil {
				return err
			}
		}

		log.Printf("[SCORING] ✅ full rebuild replayed %d round(s)", len(gps))
		return nil
	})
}

func (e *EngineService) finaleIfClosed(tx *gorm.DB, seasonID string) error {
	var season models.Season
	if err := tx.First(&season, "id = ?", seasonID).Error; err != nil {
		return err
	}
	if season.ClosedAt == nil {
		return nil
	}
	return e.runFinale(tx, seasonID)
}

// rescanEventSlug replays every (prediction, result) pair of the user through
// the same event predicates used for granting and reports whether any round
// still satisfies the slug. This is the guard against revoking a badge that
// was legitimately earned at an earlier round.
func (e *EngineService) rescanEventSlug(tx *gorm.DB, userID, slug string) (bool, error) {
	var preds []models.Prediction
	err := tx.Preload("Positions").Preload("Outcomes").Preload("GrandPrix").
		Where("user_id = ?", userID).Find(&preds).Error
	if err != nil {
		return false, err
	}

	contexts := map[string]*seasonContext{}
	for i := range preds {
		pred := &preds[i]
		gp := &pred.GrandPrix

		var result models.RaceResult
		err := tx.Preload("Positions").Preload("Outcomes").
			Where("grand_prix_id = ?", gp.ID).First(&result).Error
		if err == gorm.ErrRecordNotFound {
			continue
		}
		if err != nil {
			return false, err
		}

		sctx, ok := contexts[gp.SeasonID]
		if !ok {
			if sctx, err = e.seasonContext(tx, gp.SeasonID); err != nil {
				return false, err
			}
			contexts[gp.SeasonID] = sctx
		}

		view := predictionView(pred)
		real := resultView(&result)
		metrics := ExtractMetrics(view, real, sctx.configs)
		if EvaluateEventSlugs(metrics, e.gpContext(gp, view, real, sctx, userID))[slug] {
			return true, nil
		}
	}
	return false, nil
}

// seasonContext bundles the per-season lookups shared by every user of a round.
type seasonContext struct {
	configs           []models.MultiplierConfig
	driverConstructor map[string]string
	homeByCountry     map[string]string
	teamMembers       map[string]bool
}

func (e *EngineService) seasonContext(tx *gorm.DB, seasonID string) (*seasonContext, error) {
	sctx := &seasonContext{
		driverConstructor: map[string]string{},
		homeByCountry:     map[string]string{},
		teamMembers:       map[string]bool{},
	}

	if err := tx.Where("season_id = ?", seasonID).Find(&sctx.configs).Error; err != nil {
		return nil, err
	}

	var constructors []models.Constructor
	if err := tx.Preload("Drivers").Where("season_id = ?", seasonID).Find(&constructors).Error; err != nil {
		return nil, err
	}
	for _, c := range constructors {
		if c.HomeCountry != "" {
			sctx.homeByCountry[c.HomeCountry] = c.ID
		}
		for _, d := range c.Drivers {
			sctx.driverConstructor[d.Code] = c.ID
		}
	}

	var memberIDs []string
	if err := tx.Model(&models.TeamMember{}).Where("season_id = ?", seasonID).Pluck("user_id", &memberIDs).Error; err != nil {
		return nil, err
	}
	for _, id := range memberIDs {
		sctx.teamMembers[id] = true
	}
	return sctx, nil
}

func (e *EngineService) gpContext(gp *models.GrandPrix, pred PredictionView, real ResultView, sctx *seasonContext, userID string) GPContext {
	dnfCount := 0
	if raw, ok := real.Outcomes[models.OutcomeDNFCount]; ok {
		if n, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil {
			dnfCount = n
		}
	}
	return GPContext{
		Country:           gp.Country,
		RealDNFCount:      dnfCount,
		PredPositions:     pred.Positions,
		RealPositions:     real.Positions,
		HasTeam:           sctx.teamMembers[userID],
		DriverConstructor: sctx.driverConstructor,
		HomeConstructorID: sctx.homeByCountry[gp.Country],
	}
}

func predictionView(p *models.Prediction) PredictionView {
	view := PredictionView{
		Positions: make(map[int]string, len(p.Positions)),
		Outcomes:  make(map[string]string, len(p.Outcomes)),
	}
	for _, pos := range p.Positions {
		view.Positions[pos.Position] = pos.DriverCode
	}
	for _, o := range p.Outcomes {
		view.Outcomes[o.OutcomeType] = o.Value
	}
	return view
}

func resultView(r *models.RaceResult) ResultView {
	view := ResultView{
		Positions: make(map[int]string, len(r.Positions)),
		Outcomes:  make(map[string]string, len(r.Outcomes)),
	}
	for _, pos := range r.Positions {
		view.Positions[pos.Position] = pos.DriverCode
	}
	for _, o := range r.Outcomes {
		view.Outcomes[o.OutcomeType] = o.Value
	}
	return view
}
