package services

import (
	"testing"

	"prediction-league-system/models"
)

func TestBasePointsExactAndAdjacent(t *testing.T) {
	pred := map[int]string{1: "VER", 2: "LEC", 3: "NOR"}
	real := map[int]string{1: "VER", 2: "NOR", 3: "LEC"}

	// VER exact (+3), LEC and NOR each one slot off (+1 each)
	if got := BasePoints(pred, real); got != 5 {
		t.Fatalf("BasePoints = %d, want 5", got)
	}
}

func TestBasePointsIgnoresUnclassifiedDrivers(t *testing.T) {
	pred := map[int]string{1: "VER", 2: "PER"}
	real := map[int]string{1: "VER", 2: "LEC"}

	if got := BasePoints(pred, real); got != 3 {
		t.Fatalf("BasePoints = %d, want 3", got)
	}
}

func TestEvaluatePodiumTotal(t *testing.T) {
	pred := map[int]string{1: "VER", 2: "LEC", 3: "NOR"}
	real := map[int]string{1: "VER", 2: "LEC", 3: "NOR"}

	total, partial := EvaluatePodium(pred, real)
	if !total || partial {
		t.Fatalf("EvaluatePodium = (%v, %v), want (true, false)", total, partial)
	}
}

func TestEvaluatePodiumPartial(t *testing.T) {
	pred := map[int]string{1: "LEC", 2: "VER", 3: "NOR"}
	real := map[int]string{1: "VER", 2: "LEC", 3: "NOR"}

	total, partial := EvaluatePodium(pred, real)
	if total || !partial {
		t.Fatalf("EvaluatePodium = (%v, %v), want (false, true)", total, partial)
	}
}

func TestEvaluatePodiumNeitherWhenIncomplete(t *testing.T) {
	pred := map[int]string{1: "VER", 2: "LEC"}
	real := map[int]string{1: "VER", 2: "LEC", 3: "NOR"}

	total, partial := EvaluatePodium(pred, real)
	if total || partial {
		t.Fatalf("EvaluatePodium = (%v, %v), want (false, false)", total, partial)
	}
}

func TestOutcomeMatchesDNFDriverMembership(t *testing.T) {
	cases := []struct {
		predicted, official string
		want                bool
	}{
		{"SAI", "SAI,HAM", true},
		{"HAM", "SAI,HAM", true},
		{"PER", "SAI,HAM", false},
		{"", "", true},
		{"SAI", "", false},
		{"", "SAI,HAM", false},
	}
	for _, tc := range cases {
		got := outcomeMatches(models.OutcomeDNFDriver, tc.predicted, tc.official)
		if got != tc.want {
			t.Errorf("outcomeMatches(DNF_DRIVER, %q, %q) = %v, want %v", tc.predicted, tc.official, got, tc.want)
		}
	}
}

func TestOutcomeMatchesExactForOtherTypes(t *testing.T) {
	if !outcomeMatches(models.OutcomeFastestLap, "VER", "VER") {
		t.Fatal("expected exact match to succeed")
	}
	if outcomeMatches(models.OutcomeFastestLap, "VER", "LEC") {
		t.Fatal("expected mismatch to fail")
	}
}

func TestCalculateScoreFloorsFinalPoints(t *testing.T) {
	pred := PredictionView{
		Positions: map[int]string{1: "VER", 2: "LEC", 3: "NOR"},
		Outcomes:  map[string]string{models.OutcomeFastestLap: "VER"},
	}
	real := ResultView{
		Positions: map[int]string{1: "VER", 2: "LEC", 3: "HAM", 4: "NOR"},
		Outcomes:  map[string]string{models.OutcomeFastestLap: "VER"},
	}
	configs := []models.MultiplierConfig{
		{SeasonID: "s", OutcomeType: models.OutcomeFastestLap, Multiplier: 1.5},
	}

	score := CalculateScore(pred, real, configs)
	if score.BasePoints != 7 {
		t.Fatalf("BasePoints = %d, want 7", score.BasePoints)
	}
	if score.Multiplier != 1.5 {
		t.Fatalf("Multiplier = %v, want 1.5", score.Multiplier)
	}
	// 7 * 1.5 = 10.5, floored
	if score.FinalPoints != 10 {
		t.Fatalf("FinalPoints = %d, want 10", score.FinalPoints)
	}
}

func TestCalculateScoreNeutralWithoutConfig(t *testing.T) {
	pred := PredictionView{
		Positions: map[int]string{1: "VER"},
		Outcomes:  map[string]string{models.OutcomeSafetyCar: "yes"},
	}
	real := ResultView{
		Positions: map[int]string{1: "VER"},
		Outcomes:  map[string]string{models.OutcomeSafetyCar: "yes"},
	}

	score := CalculateScore(pred, real, nil)
	if score.Multiplier != 1.0 {
		t.Fatalf("Multiplier = %v, want neutral 1.0", score.Multiplier)
	}
	if score.FinalPoints != 3 {
		t.Fatalf("FinalPoints = %d, want 3", score.FinalPoints)
	}
}

func TestCalculateScoreDerivedPodiumMultiplier(t *testing.T) {
	pred := PredictionView{Positions: map[int]string{1: "LEC", 2: "VER", 3: "NOR"}}
	real := ResultView{Positions: map[int]string{1: "VER", 2: "LEC", 3: "NOR"}}
	configs := []models.MultiplierConfig{
		{SeasonID: "s", OutcomeType: models.OutcomePodiumPartial, Multiplier: 2.0},
		{SeasonID: "s", OutcomeType: models.OutcomePodiumTotal, Multiplier: 3.0},
	}

	score := CalculateScore(pred, real, configs)
	// LEC/VER swapped (+1 each), NOR exact (+3): base 5, partial podium doubles it
	if score.BasePoints != 5 {
		t.Fatalf("BasePoints = %d, want 5", score.BasePoints)
	}
	if score.FinalPoints != 10 {
		t.Fatalf("FinalPoints = %d, want 10", score.FinalPoints)
	}
}

func TestExtractMetricsAgreesWithScore(t *testing.T) {
	pred := PredictionView{
		Positions: map[int]string{1: "VER", 2: "LEC", 3: "NOR", 4: "HAM"},
		Outcomes: map[string]string{
			models.OutcomeFastestLap: "VER",
			models.OutcomeDNFDriver:  "SAI",
			models.OutcomeDNFCount:   "2",
		},
	}
	real := ResultView{
		Positions: map[int]string{1: "VER", 2: "LEC", 3: "NOR", 4: "ALO"},
		Outcomes: map[string]string{
			models.OutcomeFastestLap: "VER",
			models.OutcomeDNFDriver:  "SAI,HAM",
			models.OutcomeDNFCount:   "3",
		},
	}

	m := ExtractMetrics(pred, real, nil)
	if m.ExactPositions != 3 {
		t.Fatalf("ExactPositions = %d, want 3", m.ExactPositions)
	}
	if !m.PodiumExact {
		t.Fatal("expected PodiumExact")
	}
	if !m.FastestLapHit || !m.DNFDriverHit {
		t.Fatalf("hit flags = fl:%v dnfDriver:%v, want both true", m.FastestLapHit, m.DNFDriverHit)
	}
	if m.DNFCountHit {
		t.Fatal("DNFCountHit should be false for 2 vs 3")
	}
	if m.FinalPoints != CalculateScore(pred, real, nil).FinalPoints {
		t.Fatal("metrics final points must equal the score")
	}
}
