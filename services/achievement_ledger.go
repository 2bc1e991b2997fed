package services

import (
	"fmt"
	"log"

	"prediction-league-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RescanFunc re-checks whether any round in the user's history independently
// satisfies an EVENT slug. Wired in by the engine, which owns the replay logic.
type RescanFunc func(tx *gorm.DB, userID, slug string) (bool, error)

// GrantContext records where an unlock happened, for display and for the
// season-protection rule.
type GrantContext struct {
	SeasonID    string
	GrandPrixID string
}

// LedgerService owns the set of unlocked achievements per user: at-most-once
// granting for the lifetime of the user, and the guarded revoke protocol.
type LedgerService struct {
	DB     *gorm.DB
	Rescan RescanFunc
}

func NewLedgerService(db *gorm.DB) *LedgerService {
	return &LedgerService{DB: db}
}

// Reconcile diffs the should-be-true slug set against the user's unlock rows.
//
// Grants are at-most-once-ever. Revocations only touch definitions flagged
// revocable, never CAREER unlocks (lifetime totals don't regress outside a
// rebuild), never SEASON unlocks earned in another season, and never FINALE
// awards (the finale pass owns those). An EVENT unlock missing from the
// current set survives if any past round still satisfies it — evaluating
// round N+1 before N must not delete a badge genuinely earned at N.
func (l *LedgerService) Reconcile(tx *gorm.DB, userID string, shouldHave map[string]bool, ctx GrantContext) error {
	defs, err := l.definitions(tx)
	if err != nil {
		return err
	}

	slugs := make([]string, 0, len(shouldHave))
	for slug := range shouldHave {
		slugs = append(slugs, slug)
	}
	if err := l.Grant(tx, userID, slugs, ctx); err != nil {
		return err
	}

	var rows []models.UserAchievement
	if err := tx.Preload("Achievement").Where("user_id = ?", userID).Find(&rows).Error; err != nil {
		return err
	}

	for _, row := range rows {
		def, ok := defs[row.AchievementID]
		if !ok || !def.Revocable {
			continue
		}
		if def.Scope == models.ScopeCareer || def.Scope == models.ScopeFinale {
			continue
		}
		if def.Scope == models.ScopeSeason && row.SeasonID != nil && *row.SeasonID != ctx.SeasonID {
			continue // earned in another season, history stands
		}
		if shouldHave[def.Slug] {
			continue
		}

		if def.Scope == models.ScopeEvent && l.Rescan != nil {
			valid, err := l.Rescan(tx, userID, def.Slug)
			if err != nil {
				return err
			}
			if valid {
				continue
			}
		}

		log.Printf("[LEDGER] 🚫 revoked %s from user %s", def.Slug, userID)
		if err := tx.Delete(&models.UserAchievement{}, "id = ?", row.ID).Error; err != nil {
			return err
		}
	}
	return nil
}

// Grant inserts unlock rows for slugs the user does not hold yet. Unknown
// slugs are ignored — definitions are configuration, not code.
func (l *LedgerService) Grant(tx *gorm.DB, userID string, slugs []string, ctx GrantContext) error {
	if len(slugs) == 0 {
		return nil
	}
	defs, err := l.definitions(tx)
	if err != nil {
		return err
	}
	bySlug := make(map[string]models.Achievement, len(defs))
	for _, def := range defs {
		bySlug[def.Slug] = def
	}

	var existing []models.UserAchievement
	if err := tx.Where("user_id = ?", userID).Find(&existing).Error; err != nil {
		return err
	}
	held := make(map[string]bool, len(existing))
	for _, row := range existing {
		held[row.AchievementID] = true
	}

	for _, slug := range slugs {
		def, ok := bySlug[slug]
		if !ok {
			continue
		}
		if held[def.ID] {
			continue
		}

		row := models.UserAchievement{
			ID:            uuid.NewString(),
			UserID:        userID,
			AchievementID: def.ID,
		}
		if ctx.SeasonID != "" {
			seasonID := ctx.SeasonID
			row.SeasonID = &seasonID
		}
		// EVENT unlocks record where they happened; CAREER ones record when.
		if ctx.GrandPrixID != "" && (def.Scope == models.ScopeEvent || def.Scope == models.ScopeCareer) {
			gpID := ctx.GrandPrixID
			row.GrandPrixID = &gpID
		}

		if err := tx.Create(&row).Error; err != nil {
			// The unique index caught a concurrent duplicate — a bug upstream,
			// not something to paper over.
			return fmt.Errorf("duplicate unlock of %s for user %s: %w", slug, userID, err)
		}
		held[def.ID] = true
		log.Printf("[LEDGER] 🏆 unlocked %s for user %s", slug, userID)
	}
	return nil
}

// WipeFinale removes every FINALE-scope unlock tagged with the season, for all
// users. Step one of the wipe-and-reassign protocol.
func (l *LedgerService) WipeFinale(tx *gorm.DB, seasonID string) error {
	return tx.Where(
		"season_id = ? AND achievement_id IN (?)",
		seasonID,
		tx.Session(&gorm.Session{NewDB: true}).Model(&models.Achievement{}).Select("id").Where("scope = ?", models.ScopeFinale),
	).Delete(&models.UserAchievement{}).Error
}

// WipeAll drops every unlock row. Rebuild-only.
func (l *LedgerService) WipeAll(tx *gorm.DB) error {
	return tx.Where("1 = 1").Delete(&models.UserAchievement{}).Error
}

// ForUser returns a user's unlocks with their definitions, newest first.
func (l *LedgerService) ForUser(userID string) ([]models.UserAchievement, error) {
	var rows []models.UserAchievement
	err := l.DB.Preload("Achievement").
		Where("user_id = ?", userID).
		Order("unlocked_at DESC").
		Find(&rows).Error
	return rows, err
}

func (l *LedgerService) definitions(tx *gorm.DB) (map[string]models.Achievement, error) {
	var defs []models.Achievement
	if err := tx.Find(&defs).Error; err != nil {
		return nil, err
	}
	byID := make(map[string]models.Achievement, len(defs))
	for _, def := range defs {
		byID[def.ID] = def
	}
	return byID, nil
}
