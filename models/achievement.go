package models

import (
	"time"
)

// Achievement scopes: the span the predicate is evaluated over.
const (
	ScopeEvent  = "EVENT"  // one grand prix's metrics
	ScopeSeason = "SEASON" // the rolling season total
	ScopeCareer = "CAREER" // the rolling lifetime totals
	ScopeFinale = "FINALE" // season close only, rank-based, wipe-and-reassign
)

const (
	RarityCommon    = "common"
	RarityRare      = "rare"
	RarityEpic      = "epic"
	RarityLegendary = "legendary"
	RarityHidden    = "hidden"
)

// Achievement: static definition, seeded from Catalog at startup.
// Revocable marks slugs whose unlock may be removed when the condition stops
// holding after a correction; protected slugs are never touched once granted.
type Achievement struct {
	ID          string    `json:"id" gorm:"primaryKey"`
	Slug        string    `json:"slug" gorm:"uniqueIndex;not null"` // stable identity, e.g. "event_oracle"
	Name        string    `json:"name" gorm:"not null"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"` // e.g. "Trophy", "Zap"
	Rarity      string    `json:"rarity" gorm:"type:varchar(16);default:'common'"`
	Scope       string    `json:"scope" gorm:"type:varchar(16);not null;index"`
	Revocable   bool      `json:"revocable" gorm:"default:false"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// UserAchievement: awarded instance — at most one per (user, achievement) for
// the lifetime of the user, whatever the scope. Season/GP context is kept for
// display and for the season-protection rule on revocation.
type UserAchievement struct {
	ID            string    `json:"id" gorm:"primaryKey"`
	UserID        string    `json:"user_id" gorm:"not null;uniqueIndex:idx_user_achievement"`
	AchievementID string    `json:"achievement_id" gorm:"not null;uniqueIndex:idx_user_achievement"`
	SeasonID      *string   `json:"season_id,omitempty" gorm:"index"`
	GrandPrixID   *string   `json:"grand_prix_id,omitempty"`
	UnlockedAt    time.Time `json:"unlocked_at" gorm:"autoCreateTime"`

	Achievement Achievement `json:"achievement,omitempty" gorm:"foreignKey:AchievementID"`
}

// Catalog is the built-in achievement list, synced into the achievements table
// on startup. Finale awards are not revocable through the per-race reconcile;
// the finale pass owns their lifecycle via wipe-and-reassign.
var Catalog = []Achievement{
	// Career
	{Slug: "career_debut", Name: "Debutant", Description: "Complete your first grand prix.", Icon: "Flag", Rarity: RarityCommon, Scope: ScopeCareer, Revocable: true},
	{Slug: "career_500", Name: "Prospect", Description: "500 career points.", Icon: "TrendingUp", Rarity: RarityCommon, Scope: ScopeCareer, Revocable: true},
	{Slug: "career_1000", Name: "Veteran", Description: "1,000 career points.", Icon: "Award", Rarity: RarityRare, Scope: ScopeCareer, Revocable: true},
	{Slug: "career_2500", Name: "Legend", Description: "2,500 career points.", Icon: "Star", Rarity: RarityEpic, Scope: ScopeCareer, Revocable: true},
	{Slug: "career_50_gps", Name: "Half Century", Description: "Enter 50 grand prix.", Icon: "Calendar", Rarity: RarityEpic, Scope: ScopeCareer, Revocable: true},
	{Slug: "career_50_exact", Name: "Sharpshooter", Description: "50 exact position calls, career-wide.", Icon: "Crosshair", Rarity: RarityEpic, Scope: ScopeCareer, Revocable: true},

	// Season
	{Slug: "season_100", Name: "Centurion", Description: "100 points in one season.", Icon: "Battery", Rarity: RarityCommon, Scope: ScopeSeason, Revocable: true},
	{Slug: "season_300", Name: "Three Hundred", Description: "300 points in one season.", Icon: "BatteryCharging", Rarity: RarityRare, Scope: ScopeSeason, Revocable: true},
	{Slug: "season_500", Name: "Elite", Description: "500 points in one season.", Icon: "Zap", Rarity: RarityEpic, Scope: ScopeSeason, Revocable: true},

	// Event
	{Slug: "event_first", Name: "Lights Out!", Description: "Score your first points.", Icon: "Play", Rarity: RarityCommon, Scope: ScopeEvent, Revocable: true},
	{Slug: "event_join_team", Name: "Team Player", Description: "Join a squad.", Icon: "Users", Rarity: RarityCommon, Scope: ScopeEvent, Revocable: true},
	{Slug: "event_25pts", Name: "Good Haul", Description: "More than 25 points in one grand prix.", Icon: "DollarSign", Rarity: RarityCommon, Scope: ScopeEvent, Revocable: true},
	{Slug: "event_50pts", Name: "Great Harvest", Description: "More than 50 points in one grand prix.", Icon: "Package", Rarity: RarityRare, Scope: ScopeEvent, Revocable: true},
	{Slug: "event_nostradamus", Name: "Nostradamus", Description: "Call the exact podium.", Icon: "Eye", Rarity: RarityEpic, Scope: ScopeEvent, Revocable: true},
	{Slug: "event_high_five", Name: "High Five", Description: "Five exact positions in one grand prix.", Icon: "Hand", Rarity: RarityRare, Scope: ScopeEvent, Revocable: true},
	{Slug: "event_la_decima", Name: "La Decima", Description: "Ten exact positions in one grand prix.", Icon: "Award", Rarity: RarityLegendary, Scope: ScopeEvent, Revocable: true},
	{Slug: "event_oracle", Name: "Oracle", Description: "Name all ten scorers, order aside.", Icon: "Eye", Rarity: RarityEpic, Scope: ScopeEvent, Revocable: true},
	{Slug: "event_mc", Name: "Master of Ceremonies", Description: "Hit every named outcome in one grand prix.", Icon: "Mic", Rarity: RarityEpic, Scope: ScopeEvent, Revocable: true},
	{Slug: "event_god", Name: "Racing God", Description: "Perfect round: every position and every outcome.", Icon: "Sun", Rarity: RarityLegendary, Scope: ScopeEvent, Revocable: true},
	{Slug: "event_grand_chelem", Name: "Grand Chelem", Description: "Pole, fastest lap and the winner, all called.", Icon: "Maximize", Rarity: RarityEpic, Scope: ScopeEvent, Revocable: true},
	{Slug: "event_civil_war", Name: "Civil War", Description: "Call a one-two by teammates.", Icon: "Swords", Rarity: RarityRare, Scope: ScopeEvent, Revocable: true},
	{Slug: "event_chaos", Name: "Chaos", Description: "Call the retirement count in a race with more than four.", Icon: "AlertTriangle", Rarity: RarityRare, Scope: ScopeEvent, Revocable: true},
	{Slug: "event_tifosi", Name: "Tifosi", Description: "Score while the home constructor wins at home.", Icon: "Heart", Rarity: RarityRare, Scope: ScopeEvent, Revocable: true},
	{Slug: "event_maldonado", Name: "Maldonado", Description: "Zero points. It happens.", Icon: "Skull", Rarity: RarityHidden, Scope: ScopeEvent, Revocable: true},

	// Finale — assigned only by the season-close pass
	{Slug: "finale_champion", Name: "World Champion", Description: "Top the season standings.", Icon: "Trophy", Rarity: RarityLegendary, Scope: ScopeFinale},
	{Slug: "finale_runner_up", Name: "Eternal Second", Description: "Runner-up of a season.", Icon: "Medal", Rarity: RarityLegendary, Scope: ScopeFinale},
	{Slug: "finale_bronze", Name: "World Podium", Description: "Third in the season standings.", Icon: "Medal", Rarity: RarityEpic, Scope: ScopeFinale},
	{Slug: "finale_squad_leader", Name: "Squad Leader", Description: "Outscore your teammate over the season.", Icon: "UserCheck", Rarity: RarityRare, Scope: ScopeFinale},
	{Slug: "finale_backpack", Name: "The Backpack", Description: "Get carried by your teammate.", Icon: "ShoppingBag", Rarity: RarityHidden, Scope: ScopeFinale},
}
