package handlers

import (
	"prediction-league-system/middleware"
	"prediction-league-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupLeagueRoutes(
	app *fiber.App,
	leagueService *services.LeagueService,
	predictionService *services.PredictionService,
	resultService *services.ResultService,
	teamService *services.TeamService,
	standingsService *services.StandingsService,
	bingoService *services.BingoService,
	ledgerService *services.LedgerService,
) {
	// 🔓 Public reads
	app.Get("/seasons", leagueService.GetAllSeasons)
	app.Get("/seasons/:season_id/calendar", leagueService.GetCalendar)
	app.Get("/seasons/:season_id/roster", leagueService.GetRoster)
	app.Get("/seasons/:season_id/standings", standingsService.GetSeasonStandings)
	app.Get("/seasons/:season_id/standings/teams", standingsService.GetTeamStandings)
	app.Get("/grands-prix/:gp_id/standings", standingsService.GetGPStandings)
	app.Get("/grands-prix/:gp_id/result", resultService.GetResult)
	app.Get("/seasons/:season_id/evolution", standingsService.GetSeasonEvolution)
	app.Get("/seasons/:season_id/bingo/standings", bingoService.GetStandings)
	app.Get("/achievements/catalog", ledgerService.GetCatalog)
	app.Get("/users/:user_id/achievements", ledgerService.GetUserAchievements)
	app.Get("/users/:user_id/stats", standingsService.GetUserStats)

	// 🔐 Authenticated routes
	secured := app.Group("/", middleware.UserContextMiddleware())

	// Predictions
	secured.Post("/predictions", predictionService.SubmitPrediction)
	secured.Get("/grands-prix/:gp_id/predictions/me", predictionService.GetMyPrediction)
	secured.Get("/grands-prix/:gp_id/predictions", predictionService.GetPredictionsForGP)

	// Squads
	secured.Post("/teams", teamService.CreateTeam)
	secured.Post("/teams/join", teamService.JoinTeam)
	secured.Get("/seasons/:season_id/teams/me", teamService.GetMyTeam)

	// Achievements
	secured.Get("/achievements/me", ledgerService.GetMyAchievements)

	// Career stats + bingo board
	secured.Get("/stats/me", standingsService.GetMyStats)
	secured.Get("/seasons/:season_id/bingo/board", bingoService.GetBoard)
	secured.Post("/bingo/tiles/:tile_id/toggle", bingoService.ToggleTile)

	// 🔒 Admin-only routes
	admin := secured.Group("/admin", middleware.AdminOnlyMiddleware())
	admin.Post("/seasons", leagueService.CreateSeason)
	admin.Post("/grands-prix", leagueService.CreateGrandPrix)
	admin.Post("/constructors", leagueService.CreateConstructor)
	admin.Put("/multipliers", leagueService.UpsertMultiplier)
	admin.Post("/bingo/tiles", bingoService.CreateTile)
	admin.Put("/bingo/tiles/:tile_id", bingoService.UpdateTile)
	admin.Delete("/bingo/tiles/:tile_id", bingoService.DeleteTile)
	admin.Put("/grands-prix/:gp_id/result", resultService.UpsertResult)
	admin.Post("/grands-prix/:gp_id/score", leagueService.ScoreGrandPrixEndpoint)
	admin.Post("/seasons/:season_id/close", leagueService.CloseSeasonEndpoint)
	admin.Post("/rebuild", leagueService.RebuildEndpoint)
}
