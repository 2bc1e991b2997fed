package services

import (
	"strings"

	"prediction-league-system/models"
)

// PredictionView and ResultView are plain data carriers for the scorer —
// no ORM types, so the scoring math can be exercised standalone.
type PredictionView struct {
	Positions map[int]string    // slot 1..10 -> driver code
	Outcomes  map[string]string // outcome type -> predicted value
}

type ResultView struct {
	Positions map[int]string    // final classification
	Outcomes  map[string]string // outcome type -> official value (DNF_DRIVER may be "A,B,C")
}

// ScoreBreakdown is what one (prediction, result) pair is worth.
type ScoreBreakdown struct {
	BasePoints      int
	Multiplier      float64
	FinalPoints     int
	CorrectOutcomes []string
}

// GPMetrics is the fixed-shape record consumed by both the stats cache and the
// achievement rules. It is derived from the same correctness determinations as
// the score itself, so scoring and achievements can never disagree on a hit.
type GPMetrics struct {
	BasePoints  int
	Multiplier  float64
	FinalPoints int

	ExactPositions int  // slots where predicted slot == actual slot
	PodiumExact    bool // positions 1-3 all exact
	FastestLapHit  bool
	SafetyCarHit   bool
	PoleHit        bool
	DNFCountHit    bool
	DNFDriverHit   bool

	CorrectOutcomes []string
}

const (
	pointsExact    = 3
	pointsAdjacent = 1
	topPositions   = 10
)

// BasePoints awards +3 for every driver placed exactly and +1 for every driver
// placed one slot away. Drivers absent from the official result contribute nothing.
func BasePoints(pred, real map[int]string) int {
	realPos := make(map[string]int, len(real))
	for pos, code := range real {
		realPos[code] = pos
	}

	total := 0
	for pos, code := range pred {
		actual, ok := realPos[code]
		if !ok {
			continue
		}
		switch diff := pos - actual; {
		case diff == 0:
			total += pointsExact
		case diff == 1 || diff == -1:
			total += pointsAdjacent
		}
	}
	return total
}

// outcomeMatches compares one predicted outcome value against the official one.
// DNF_DRIVER is membership in the official comma-separated list; an empty
// official list matches only an empty prediction. Everything else is an exact
// string match.
func outcomeMatches(outcomeType, predicted, official string) bool {
	if outcomeType != models.OutcomeDNFDriver {
		return predicted == official
	}

	official = strings.TrimSpace(official)
	predicted = strings.TrimSpace(predicted)
	if official == "" {
		return predicted == ""
	}
	for _, code := range strings.Split(official, ",") {
		if predicted == strings.TrimSpace(code) {
			return true
		}
	}
	return false
}

// CorrectOutcomes returns the outcome types the user called right — only types
// present in both maps are comparable.
func CorrectOutcomes(pred, real map[string]string) []string {
	var correct []string
	for outcomeType, predicted := range pred {
		official, ok := real[outcomeType]
		if !ok {
			continue
		}
		if outcomeMatches(outcomeType, predicted, official) {
			correct = append(correct, outcomeType)
		}
	}
	return correct
}

// EvaluatePodium derives the podium bonuses: PODIUM_TOTAL for the exact top
// three in order, otherwise PODIUM_PARTIAL for the same three in any order.
// Mutually exclusive; neither applies if either podium is incomplete.
func EvaluatePodium(pred, real map[int]string) (total, partial bool) {
	var predPodium, realPodium [3]string
	for i := 1; i <= 3; i++ {
		predPodium[i-1] = pred[i]
		realPodium[i-1] = real[i]
		if predPodium[i-1] == "" || realPodium[i-1] == "" {
			return false, false
		}
	}

	if predPodium == realPodium {
		return true, false
	}

	set := map[string]bool{realPodium[0]: true, realPodium[1]: true, realPodium[2]: true}
	for _, code := range predPodium {
		if !set[code] {
			return false, false
		}
	}
	return false, true
}

// Multiplier multiplies together the season multipliers of every correct
// outcome type. Types without a config stay neutral.
func Multiplier(correct []string, configs []models.MultiplierConfig) float64 {
	m := 1.0
	for _, mc := range configs {
		for _, outcomeType := range correct {
			if mc.OutcomeType == outcomeType {
				m *= mc.Multiplier
				break
			}
		}
	}
	return m
}

// CalculateScore runs the full deterministic scoring pass for one prediction
// against one official result. Final points are floored.
func CalculateScore(pred PredictionView, real ResultView, configs []models.MultiplierConfig) ScoreBreakdown {
	base := BasePoints(pred.Positions, real.Positions)
	correct := CorrectOutcomes(pred.Outcomes, real.Outcomes)

	total, partial := EvaluatePodium(pred.Positions, real.Positions)
	if total {
		correct = append(correct, models.OutcomePodiumTotal)
	} else if partial {
		correct = append(correct, models.OutcomePodiumPartial)
	}

	mult := Multiplier(correct, configs)

	return ScoreBreakdown{
		BasePoints:      base,
		Multiplier:      mult,
		FinalPoints:     int(float64(base) * mult),
		CorrectOutcomes: correct,
	}
}

// ExtractMetrics builds the metrics record off the same scoring pass.
func ExtractMetrics(pred PredictionView, real ResultView, configs []models.MultiplierConfig) GPMetrics {
	score := CalculateScore(pred, real, configs)

	hit := make(map[string]bool, len(score.CorrectOutcomes))
	for _, outcomeType := range score.CorrectOutcomes {
		hit[outcomeType] = true
	}

	exact := 0
	for pos, code := range pred.Positions {
		if real.Positions[pos] == code {
			exact++
		}
	}

	podiumExact := true
	for i := 1; i <= 3; i++ {
		if pred.Positions[i] == "" || pred.Positions[i] != real.Positions[i] {
			podiumExact = false
			break
		}
	}

	return GPMetrics{
		BasePoints:      score.BasePoints,
		Multiplier:      score.Multiplier,
		FinalPoints:     score.FinalPoints,
		ExactPositions:  exact,
		PodiumExact:     podiumExact,
		FastestLapHit:   hit[models.OutcomeFastestLap],
		SafetyCarHit:    hit[models.OutcomeSafetyCar],
		PoleHit:         hit[models.OutcomePolePosition],
		DNFCountHit:     hit[models.OutcomeDNFCount],
		DNFDriverHit:    hit[models.OutcomeDNFDriver],
		CorrectOutcomes: score.CorrectOutcomes,
	}
}
