package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"prediction-league-system/handlers"
	"prediction-league-system/middleware"
	"prediction-league-system/models"
	"prediction-league-system/services"
	"prediction-league-system/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	app := fiber.New(fiber.Config{})

	// 🔐❗ GLOBAL: Only Gateway requests allowed — no exceptions
	app.Use(middleware.GatewayAuthMiddleware())

	// Load allowed origins from environment variable
	allowedOriginsEnv := os.Getenv("ALLOWED_ORIGINS")
	if allowedOriginsEnv == "" {
		log.Println("⚠️  ALLOWED_ORIGINS environment variable not set, using default: http://localhost:3000")
		allowedOriginsEnv = "http://localhost:3000"
	}
	allowedOriginsList := strings.Split(allowedOriginsEnv, ",")
	for i, origin := range allowedOriginsList {
		allowedOriginsList[i] = strings.TrimSpace(origin)
	}
	allowedOriginsString := strings.Join(allowedOriginsList, ",")

	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOriginsString,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, User-Agent, Cache-Control, X-Session-Token, X-Service-Token, X-Device-ID",
		ExposeHeaders:    "Content-Length, Content-Type, Authorization, X-Request-ID, X-Otp-Not-Required",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.Season{},
		&models.MultiplierConfig{},
		&models.GrandPrix{},
		&models.RaceResult{},
		&models.RacePosition{},
		&models.RaceOutcome{},
		&models.Prediction{},
		&models.PredictionPosition{},
		&models.PredictionOutcome{},
		&models.Constructor{},
		&models.Driver{},
		&models.Team{},
		&models.TeamMember{},
		&models.LeagueUser{},
		&models.UserStats{},
		&models.UserGPStats{},
		&models.Achievement{},
		&models.UserAchievement{},
		&models.BingoTile{},
		&models.BingoSelection{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	if err := services.SeedAchievements(db); err != nil {
		log.Fatal("failed to seed achievement catalog:", err)
	}

	statsService := services.NewStatsService(db)
	ledgerService := services.NewLedgerService(db)
	engineService := services.NewEngineService(db, statsService, ledgerService)
	leagueService := services.NewLeagueService(db, engineService)
	predictionService := services.NewPredictionService(db)
	resultService := services.NewResultService(db, engineService)
	teamService := services.NewTeamService(db)
	standingsService := services.NewStandingsService(db)
	bingoService := services.NewBingoService(db)

	// --- CONFIGURE Sync Service Details for League Users ---
	syncServiceURL := os.Getenv("SYNC_SERVICE_URL")
	if syncServiceURL == "" {
		log.Fatal("SYNC_SERVICE_URL environment variable not set")
	}
	leagueServiceToken := os.Getenv("LEAGUE_SERVICE_TOKEN")
	if leagueServiceToken == "" {
		log.Fatal("LEAGUE_SERVICE_TOKEN environment variable not set")
	}
	// --- END CONFIG ---

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	syncWorker := workers.NewLeagueUserSyncWorker(db, syncServiceURL, "/api/v1/public/profiles", leagueServiceToken)
	syncWorker.Start(ctx)

	sweepInterval := 30 * time.Second
	if raw := os.Getenv("SCORE_SWEEP_INTERVAL"); raw != "" {
		if parsed, err := time.ParseDuration(raw); err == nil {
			sweepInterval = parsed
		} else {
			log.Printf("⚠️  Invalid SCORE_SWEEP_INTERVAL %q, keeping %s", raw, sweepInterval)
		}
	}
	sweepWorker := workers.NewScoreSweepWorker(db, engineService)
	sweepWorker.Start(ctx, sweepInterval)

	predictionService.StartLockScheduler()

	handlers.SetupLeagueRoutes(app, leagueService, predictionService, resultService, teamService, standingsService, bingoService, ledgerService)

	go func() {
		if err := app.Listen(":5300"); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Println("✅ Server running on http://localhost:5300")
	log.Println("✅ League User Sync Worker running")
	log.Printf("✅ Score sweep running (every %s)", sweepInterval)
	log.Println("✅ GatewayAuthMiddleware enforced globally — all requests must come from Gateway")
	log.Printf("✅ CORS configured for origins: %s", allowedOriginsString)

	<-ctx.Done()
	log.Println("Shutting down server...")
}
