package services

import (
	"fmt"
	"log"
	"sort"
	"time"

	"prediction-league-system/models"

	"gorm.io/gorm"
)

const (
	SlugFinaleChampion    = "finale_champion"
	SlugFinaleRunnerUp    = "finale_runner_up"
	SlugFinaleBronze      = "finale_bronze"
	SlugFinaleSquadLeader = "finale_squad_leader"
	SlugFinaleBackpack    = "finale_backpack"
)

// CloseSeason runs the finale pass for a season and marks it closed. The pass
// is wipe-and-reassign: every finale badge of the season is removed first, so
// re-running after a late correction always lands on the current standings.
func (e *EngineService) CloseSeason(seasonID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.DB.Transaction(func(tx *gorm.DB) error {
		var season models.Season
		if err := tx.First(&season, "id = ?", seasonID).Error; err != nil {
			return fmt.Errorf("season %s not found: %w", seasonID, err)
		}

		if err := e.runFinale(tx, seasonID); err != nil {
			return err
		}

		now := time.Now().UTC()
		return tx.Model(&season).Update("closed_at", &now).Error
	})
}

type seasonTotal struct {
	UserID string
	Points int
}

func (e *EngineService) runFinale(tx *gorm.DB, seasonID string) error {
	if err := e.Ledger.WipeFinale(tx, seasonID); err != nil {
		return err
	}

	var totals []seasonTotal
	err := tx.Model(&models.UserGPStats{}).
		Select("user_id, SUM(points) AS points").
		Where("season_id = ?", seasonID).
		Group("user_id").
		Scan(&totals).Error
	if err != nil {
		return err
	}
	if len(totals) == 0 {
		log.Printf("[FINALE] ⏭️ season %s has no scored rounds, nothing to assign", seasonID)
		return nil
	}
	for _, t := range totals {
		if err := e.Stats.VerifySnapshots(tx, t.UserID); err != nil {
			return err
		}
	}

	// Ties break on user id so a re-run assigns the same podium.
	sort.Slice(totals, func(i, j int) bool {
		if totals[i].Points != totals[j].Points {
			return totals[i].Points > totals[j].Points
		}
		return totals[i].UserID < totals[j].UserID
	})

	ctx := GrantContext{SeasonID: seasonID}
	podium := []string{SlugFinaleChampion, SlugFinaleRunnerUp, SlugFinaleBronze}
	for i, slug := range podium {
		if i >= len(totals) {
			break
		}
		if err := e.Ledger.Grant(tx, totals[i].UserID, []string{slug}, ctx); err != nil {
			return err
		}
	}

	if err := e.assignSquadBadges(tx, seasonID, totals, ctx); err != nil {
		return err
	}

	log.Printf("[FINALE] ✅ season %s finale assigned over %d participant(s)", seasonID, len(totals))
	return nil
}

// assignSquadBadges compares the two members of each full squad: the higher
// total takes squad leader, the lower carries the backpack. Equal totals
// assign neither.
func (e *EngineService) assignSquadBadges(tx *gorm.DB, seasonID string, totals []seasonTotal, ctx GrantContext) error {
	pointsByUser := make(map[string]int, len(totals))
	for _, t := range totals {
		pointsByUser[t.UserID] = t.Points
	}

	var members []models.TeamMember
	if err := tx.Where("season_id = ?", seasonID).Find(&members).Error; err != nil {
		return err
	}
	byTeam := map[string][]string{}
	for _, m := range members {
		byTeam[m.TeamID] = append(byTeam[m.TeamID], m.UserID)
	}

	for _, userIDs := range byTeam {
		if len(userIDs) != models.MaxTeamSize {
			continue
		}
		a, b := userIDs[0], userIDs[1]
		pa, oka := pointsByUser[a]
		pb, okb := pointsByUser[b]
		if !oka || !okb || pa == pb {
			continue
		}
		leader, carrier := a, b
		if pb > pa {
			leader, carrier = b, a
		}
		if err := e.Ledger.Grant(tx, leader, []string{SlugFinaleSquadLeader}, ctx); err != nil {
			return err
		}
		if err := e.Ledger.Grant(tx, carrier, []string{SlugFinaleBackpack}, ctx); err != nil {
			return err
		}
	}
	return nil
}
