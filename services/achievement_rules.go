package services

import (
	"prediction-league-system/models"
)

// GPContext carries the event-scoped facts the per-race predicates need beyond
// the metrics record: the round itself, team membership, and the roster lookup
// for teammate/home-race couplings.
type GPContext struct {
	Country      string
	RealDNFCount int

	PredPositions map[int]string
	RealPositions map[int]string

	HasTeam           bool
	DriverConstructor map[string]string // driver code -> constructor id
	HomeConstructorID string            // constructor at home in this country, "" if none
}

// EvaluateEventSlugs returns every EVENT-scope slug this round currently
// satisfies — the full set, not a delta, so the ledger can diff it. Several
// tiers firing at once (5 and 10 exact hits, say) is expected.
func EvaluateEventSlugs(m GPMetrics, ctx GPContext) map[string]bool {
	unlocks := map[string]bool{}

	if m.FinalPoints > 0 {
		unlocks["event_first"] = true
	}
	if m.FinalPoints > 25 {
		unlocks["event_25pts"] = true
	}
	if m.FinalPoints > 50 {
		unlocks["event_50pts"] = true
	}
	if m.FinalPoints == 0 {
		unlocks["event_maldonado"] = true
	}

	if m.PodiumExact {
		unlocks["event_nostradamus"] = true
	}
	if m.ExactPositions >= 5 {
		unlocks["event_high_five"] = true
	}
	if m.ExactPositions >= 10 {
		unlocks["event_la_decima"] = true
	}

	if top10SetsMatch(ctx.PredPositions, ctx.RealPositions) {
		unlocks["event_oracle"] = true
	}

	outcomeHits := boolToInt(m.SafetyCarHit) + boolToInt(m.FastestLapHit) +
		boolToInt(m.DNFCountHit) + boolToInt(m.DNFDriverHit)
	if outcomeHits == 4 {
		unlocks["event_mc"] = true
	}
	if m.ExactPositions >= 10 && outcomeHits == 4 {
		unlocks["event_god"] = true
	}

	if m.PoleHit && m.FastestLapHit && winnerCalled(ctx) {
		unlocks["event_grand_chelem"] = true
	}

	if ctx.RealDNFCount > 4 && m.DNFCountHit {
		unlocks["event_chaos"] = true
	}

	if civilWar(ctx) {
		unlocks["event_civil_war"] = true
	}

	if m.FinalPoints > 0 && homeWin(ctx) {
		unlocks["event_tifosi"] = true
	}

	if ctx.HasTeam {
		unlocks["event_join_team"] = true
	}

	return unlocks
}

// EvaluateSeasonSlugs: plain thresholds over the rolling season total.
func EvaluateSeasonSlugs(seasonPoints int) map[string]bool {
	unlocks := map[string]bool{}
	if seasonPoints >= 100 {
		unlocks["season_100"] = true
	}
	if seasonPoints >= 300 {
		unlocks["season_300"] = true
	}
	if seasonPoints >= 500 {
		unlocks["season_500"] = true
	}
	return unlocks
}

// EvaluateCareerSlugs: plain thresholds over the rolling lifetime totals.
func EvaluateCareerSlugs(stats *models.UserStats) map[string]bool {
	unlocks := map[string]bool{}
	if stats.TotalGPsPlayed >= 1 {
		unlocks["career_debut"] = true
	}
	if stats.TotalPoints >= 500 {
		unlocks["career_500"] = true
	}
	if stats.TotalPoints >= 1000 {
		unlocks["career_1000"] = true
	}
	if stats.TotalPoints >= 2500 {
		unlocks["career_2500"] = true
	}
	if stats.TotalGPsPlayed >= 50 {
		unlocks["career_50_gps"] = true
	}
	if stats.ExactPositions >= 50 {
		unlocks["career_50_exact"] = true
	}
	return unlocks
}

// winnerCalled: the predicted winner actually won.
func winnerCalled(ctx GPContext) bool {
	winner := ctx.RealPositions[1]
	return winner != "" && ctx.PredPositions[1] == winner
}

// civilWar: an exact one-two by drivers of the same constructor.
func civilWar(ctx GPContext) bool {
	p1, p2 := ctx.PredPositions[1], ctx.PredPositions[2]
	if p1 == "" || p2 == "" || p1 != ctx.RealPositions[1] || p2 != ctx.RealPositions[2] {
		return false
	}
	c1, c2 := ctx.DriverConstructor[p1], ctx.DriverConstructor[p2]
	return c1 != "" && c1 == c2
}

// homeWin: the race winner drives for the constructor at home in this country.
func homeWin(ctx GPContext) bool {
	if ctx.HomeConstructorID == "" {
		return false
	}
	winner := ctx.RealPositions[1]
	return winner != "" && ctx.DriverConstructor[winner] == ctx.HomeConstructorID
}

// top10SetsMatch: the official classification fills all ten scoring slots and
// the prediction names the same ten drivers, order aside.
func top10SetsMatch(pred, real map[int]string) bool {
	realSet := map[string]bool{}
	for i := 1; i <= topPositions; i++ {
		code := real[i]
		if code == "" {
			return false
		}
		realSet[code] = true
	}
	if len(realSet) != topPositions {
		return false
	}
	predSet := map[string]bool{}
	for i := 1; i <= topPositions; i++ {
		if !realSet[pred[i]] {
			return false
		}
		predSet[pred[i]] = true
	}
	return len(predSet) == topPositions
}
