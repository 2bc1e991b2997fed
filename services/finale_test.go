package services

import (
	"testing"

	"prediction-league-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// seed one frozen round contribution directly; the finale only reads snapshots
func seedSnapshot(t *testing.T, db *gorm.DB, userID, seasonID, gpID string, points int) {
	t.Helper()
	snap := models.UserGPStats{
		ID:          uuid.NewString(),
		UserID:      userID,
		GrandPrixID: gpID,
		SeasonID:    seasonID,
		Points:      points,
	}
	if err := db.Create(&snap).Error; err != nil {
		t.Fatalf("seed snapshot: %v", err)
	}
}

func TestCloseSeasonAssignsPodium(t *testing.T) {
	db, engine := newTestEngine(t)
	season := makeSeason(t, db, 2025)
	gp := makeGrandPrix(t, db, season.ID, "Bahrain", baseRace)

	seedSnapshot(t, db, "u1", season.ID, gp.ID, 80)
	seedSnapshot(t, db, "u2", season.ID, gp.ID, 60)
	seedSnapshot(t, db, "u3", season.ID, gp.ID, 40)
	seedSnapshot(t, db, "u4", season.ID, gp.ID, 20)

	if err := engine.CloseSeason(season.ID); err != nil {
		t.Fatalf("CloseSeason: %v", err)
	}

	if !heldSlugs(t, db, "u1")["finale_champion"] {
		t.Fatal("u1 should be champion")
	}
	if !heldSlugs(t, db, "u2")["finale_runner_up"] {
		t.Fatal("u2 should be runner-up")
	}
	if !heldSlugs(t, db, "u3")["finale_bronze"] {
		t.Fatal("u3 should take bronze")
	}
	if len(heldSlugs(t, db, "u4")) != 0 {
		t.Fatal("u4 earns nothing from the finale")
	}

	var season2 models.Season
	db.First(&season2, "id = ?", season.ID)
	if season2.ClosedAt == nil {
		t.Fatal("season should be marked closed")
	}
}

func TestCloseSeasonRerunReassignsAfterCorrection(t *testing.T) {
	db, engine := newTestEngine(t)
	season := makeSeason(t, db, 2025)
	gp := makeGrandPrix(t, db, season.ID, "Bahrain", baseRace)

	seedSnapshot(t, db, "u1", season.ID, gp.ID, 80)
	seedSnapshot(t, db, "u2", season.ID, gp.ID, 60)

	if err := engine.CloseSeason(season.ID); err != nil {
		t.Fatalf("first close: %v", err)
	}
	if !heldSlugs(t, db, "u1")["finale_champion"] {
		t.Fatal("u1 should be champion before the correction")
	}

	// A correction flips the standings; re-running the finale must follow.
	if err := db.Model(&models.UserGPStats{}).
		Where("user_id = ? AND grand_prix_id = ?", "u2", gp.ID).
		Update("points", 100).Error; err != nil {
		t.Fatalf("apply correction: %v", err)
	}
	if err := engine.CloseSeason(season.ID); err != nil {
		t.Fatalf("second close: %v", err)
	}

	u1 := heldSlugs(t, db, "u1")
	u2 := heldSlugs(t, db, "u2")
	if u1["finale_champion"] || !u1["finale_runner_up"] {
		t.Fatalf("u1 should have been demoted to runner-up: %v", u1)
	}
	if !u2["finale_champion"] || u2["finale_runner_up"] {
		t.Fatalf("u2 should be the new champion: %v", u2)
	}
}

func TestCloseSeasonSquadComparison(t *testing.T) {
	db, engine := newTestEngine(t)
	season := makeSeason(t, db, 2025)
	gp := makeGrandPrix(t, db, season.ID, "Bahrain", baseRace)

	team := models.Team{ID: uuid.NewString(), SeasonID: season.ID, Name: "Boxbox", Slug: "boxbox", JoinCode: "AAA-111"}
	if err := db.Create(&team).Error; err != nil {
		t.Fatalf("create team: %v", err)
	}
	for _, userID := range []string{"u1", "u2"} {
		member := models.TeamMember{ID: uuid.NewString(), TeamID: team.ID, UserID: userID, SeasonID: season.ID}
		if err := db.Create(&member).Error; err != nil {
			t.Fatalf("create member: %v", err)
		}
	}
	seedSnapshot(t, db, "u1", season.ID, gp.ID, 80)
	seedSnapshot(t, db, "u2", season.ID, gp.ID, 30)

	if err := engine.CloseSeason(season.ID); err != nil {
		t.Fatalf("CloseSeason: %v", err)
	}

	if !heldSlugs(t, db, "u1")["finale_squad_leader"] {
		t.Fatal("higher scorer should lead the squad")
	}
	if !heldSlugs(t, db, "u2")["finale_backpack"] {
		t.Fatal("lower scorer carries the backpack")
	}
}

func TestCloseSeasonSquadTieAssignsNeither(t *testing.T) {
	db, engine := newTestEngine(t)
	season := makeSeason(t, db, 2025)
	gp := makeGrandPrix(t, db, season.ID, "Bahrain", baseRace)

	team := models.Team{ID: uuid.NewString(), SeasonID: season.ID, Name: "Even", Slug: "even", JoinCode: "BBB-222"}
	if err := db.Create(&team).Error; err != nil {
		t.Fatalf("create team: %v", err)
	}
	for _, userID := range []string{"u1", "u2"} {
		member := models.TeamMember{ID: uuid.NewString(), TeamID: team.ID, UserID: userID, SeasonID: season.ID}
		if err := db.Create(&member).Error; err != nil {
			t.Fatalf("create member: %v", err)
		}
	}
	seedSnapshot(t, db, "u1", season.ID, gp.ID, 50)
	seedSnapshot(t, db, "u2", season.ID, gp.ID, 50)

	if err := engine.CloseSeason(season.ID); err != nil {
		t.Fatalf("CloseSeason: %v", err)
	}

	for _, userID := range []string{"u1", "u2"} {
		held := heldSlugs(t, db, userID)
		if held["finale_squad_leader"] || held["finale_backpack"] {
			t.Fatalf("tied squad must assign neither badge, %s has %v", userID, held)
		}
	}
}

func TestCloseSeasonLeavesOtherSeasonsAlone(t *testing.T) {
	db, engine := newTestEngine(t)
	oldSeason := makeSeason(t, db, 2024)
	newSeason := makeSeason(t, db, 2025)
	oldGP := makeGrandPrix(t, db, oldSeason.ID, "Abu Dhabi", baseRace.AddDate(-1, 0, 0))
	newGP := makeGrandPrix(t, db, newSeason.ID, "Bahrain", baseRace)

	seedSnapshot(t, db, "u1", oldSeason.ID, oldGP.ID, 80)
	seedSnapshot(t, db, "u2", newSeason.ID, newGP.ID, 10)

	if err := engine.CloseSeason(oldSeason.ID); err != nil {
		t.Fatalf("close old season: %v", err)
	}
	if err := engine.CloseSeason(newSeason.ID); err != nil {
		t.Fatalf("close new season: %v", err)
	}

	// u1 keeps the 2024 title even though they sat out 2025
	if !heldSlugs(t, db, "u1")["finale_champion"] {
		t.Fatal("closing a later season must not wipe an earlier title")
	}
	if !heldSlugs(t, db, "u2")["finale_champion"] {
		t.Fatal("u2 should be the 2025 champion")
	}
}
