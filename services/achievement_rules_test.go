package services

import (
	"testing"

	"prediction-league-system/models"
)

func fullTop10() map[int]string {
	m := make(map[int]string, 10)
	codes := []string{"VER", "LEC", "NOR", "HAM", "RUS", "PIA", "SAI", "ALO", "GAS", "OCO"}
	for i, code := range codes {
		m[i+1] = code
	}
	return m
}

func TestEventSlugsPointsTiers(t *testing.T) {
	ctx := GPContext{}

	got := EvaluateEventSlugs(GPMetrics{FinalPoints: 0}, ctx)
	if !got["event_maldonado"] || got["event_first"] {
		t.Fatalf("zero points: %v", got)
	}

	got = EvaluateEventSlugs(GPMetrics{FinalPoints: 26}, ctx)
	if !got["event_first"] || !got["event_25pts"] || got["event_50pts"] || got["event_maldonado"] {
		t.Fatalf("26 points: %v", got)
	}

	got = EvaluateEventSlugs(GPMetrics{FinalPoints: 51}, ctx)
	if !got["event_25pts"] || !got["event_50pts"] {
		t.Fatalf("51 points: %v", got)
	}
}

func TestEventSlugExactHitTiersStack(t *testing.T) {
	got := EvaluateEventSlugs(GPMetrics{FinalPoints: 30, ExactPositions: 10, PodiumExact: true}, GPContext{})
	for _, slug := range []string{"event_high_five", "event_la_decima", "event_nostradamus"} {
		if !got[slug] {
			t.Fatalf("missing %s in %v", slug, got)
		}
	}
}

func TestEventSlugOracleNeedsTheFullSet(t *testing.T) {
	real := fullTop10()

	pred := fullTop10()
	pred[1], pred[2] = pred[2], pred[1] // same ten drivers, different order
	got := EvaluateEventSlugs(GPMetrics{FinalPoints: 10}, GPContext{PredPositions: pred, RealPositions: real})
	if !got["event_oracle"] {
		t.Fatal("same ten drivers out of order should be an oracle")
	}

	pred = fullTop10()
	pred[10] = "STR" // one driver off the list
	got = EvaluateEventSlugs(GPMetrics{FinalPoints: 10}, GPContext{PredPositions: pred, RealPositions: real})
	if got["event_oracle"] {
		t.Fatal("a wrong driver breaks the oracle")
	}

	pred = fullTop10()
	pred[10] = pred[1] // duplicate cannot cover ten distinct drivers
	got = EvaluateEventSlugs(GPMetrics{FinalPoints: 10}, GPContext{PredPositions: pred, RealPositions: real})
	if got["event_oracle"] {
		t.Fatal("a duplicated driver breaks the oracle")
	}
}

func TestEventSlugOutcomeSweeps(t *testing.T) {
	allHits := GPMetrics{
		FinalPoints:   40,
		FastestLapHit: true,
		SafetyCarHit:  true,
		DNFCountHit:   true,
		DNFDriverHit:  true,
	}
	got := EvaluateEventSlugs(allHits, GPContext{})
	if !got["event_mc"] {
		t.Fatalf("all four outcome hits should be an mc: %v", got)
	}
	if got["event_god"] {
		t.Fatal("god also needs all ten positions")
	}

	allHits.ExactPositions = 10
	got = EvaluateEventSlugs(allHits, GPContext{})
	if !got["event_god"] {
		t.Fatal("perfect round should be god")
	}

	threeHits := GPMetrics{FinalPoints: 40, FastestLapHit: true, SafetyCarHit: true, DNFCountHit: true}
	if EvaluateEventSlugs(threeHits, GPContext{})["event_mc"] {
		t.Fatal("three of four outcome hits is not an mc")
	}
}

func TestEventSlugGrandChelem(t *testing.T) {
	ctx := GPContext{
		PredPositions: map[int]string{1: "VER"},
		RealPositions: map[int]string{1: "VER"},
	}
	m := GPMetrics{FinalPoints: 10, PoleHit: true, FastestLapHit: true}
	if !EvaluateEventSlugs(m, ctx)["event_grand_chelem"] {
		t.Fatal("pole + fastest lap + winner should be a grand chelem")
	}

	ctx.RealPositions[1] = "LEC"
	if EvaluateEventSlugs(m, ctx)["event_grand_chelem"] {
		t.Fatal("wrong winner breaks the grand chelem")
	}
}

func TestEventSlugChaos(t *testing.T) {
	m := GPMetrics{FinalPoints: 10, DNFCountHit: true}
	if !EvaluateEventSlugs(m, GPContext{RealDNFCount: 5})["event_chaos"] {
		t.Fatal("5 DNFs called exactly should be chaos")
	}
	if EvaluateEventSlugs(m, GPContext{RealDNFCount: 4})["event_chaos"] {
		t.Fatal("4 DNFs is not chaotic enough")
	}
	if EvaluateEventSlugs(GPMetrics{FinalPoints: 10}, GPContext{RealDNFCount: 7})["event_chaos"] {
		t.Fatal("chaos needs the count called, not just a messy race")
	}
}

func TestEventSlugCivilWar(t *testing.T) {
	roster := map[string]string{"LEC": "ferrari", "SAI": "ferrari", "VER": "redbull"}
	ctx := GPContext{
		PredPositions:     map[int]string{1: "LEC", 2: "SAI"},
		RealPositions:     map[int]string{1: "LEC", 2: "SAI"},
		DriverConstructor: roster,
	}
	if !EvaluateEventSlugs(GPMetrics{FinalPoints: 10}, ctx)["event_civil_war"] {
		t.Fatal("exact teammate one-two should be a civil war")
	}

	ctx.RealPositions[2] = "VER"
	ctx.PredPositions[2] = "VER"
	if EvaluateEventSlugs(GPMetrics{FinalPoints: 10}, ctx)["event_civil_war"] {
		t.Fatal("mixed constructors is not a civil war")
	}
}

func TestEventSlugTifosi(t *testing.T) {
	roster := map[string]string{"LEC": "ferrari", "VER": "redbull"}
	ctx := GPContext{
		Country:           "Italy",
		RealPositions:     map[int]string{1: "LEC"},
		DriverConstructor: roster,
		HomeConstructorID: "ferrari",
	}
	if !EvaluateEventSlugs(GPMetrics{FinalPoints: 3}, ctx)["event_tifosi"] {
		t.Fatal("home constructor winning at home with points scored is tifosi")
	}
	if EvaluateEventSlugs(GPMetrics{FinalPoints: 0}, ctx)["event_tifosi"] {
		t.Fatal("tifosi still requires scoring")
	}

	ctx.RealPositions[1] = "VER"
	if EvaluateEventSlugs(GPMetrics{FinalPoints: 3}, ctx)["event_tifosi"] {
		t.Fatal("a visitor winning is not tifosi")
	}
}

func TestEventSlugJoinTeam(t *testing.T) {
	if !EvaluateEventSlugs(GPMetrics{}, GPContext{HasTeam: true})["event_join_team"] {
		t.Fatal("squad membership should unlock event_join_team")
	}
	if EvaluateEventSlugs(GPMetrics{FinalPoints: 5}, GPContext{})["event_join_team"] {
		t.Fatal("no squad, no badge")
	}
}

func TestSeasonSlugThresholds(t *testing.T) {
	if len(EvaluateSeasonSlugs(99)) != 0 {
		t.Fatal("99 points unlocks nothing")
	}
	got := EvaluateSeasonSlugs(300)
	if !got["season_100"] || !got["season_300"] || got["season_500"] {
		t.Fatalf("300 points: %v", got)
	}
	if !EvaluateSeasonSlugs(500)["season_500"] {
		t.Fatal("500 points should unlock season_500")
	}
}

func TestCareerSlugThresholds(t *testing.T) {
	stats := &models.UserStats{TotalGPsPlayed: 1, TotalPoints: 10}
	got := EvaluateCareerSlugs(stats)
	if !got["career_debut"] || got["career_500"] {
		t.Fatalf("debut: %v", got)
	}

	stats = &models.UserStats{TotalGPsPlayed: 50, TotalPoints: 2500, ExactPositions: 50}
	got = EvaluateCareerSlugs(stats)
	for _, slug := range []string{"career_debut", "career_500", "career_1000", "career_2500", "career_50_gps", "career_50_exact"} {
		if !got[slug] {
			t.Fatalf("missing %s in %v", slug, got)
		}
	}
}
