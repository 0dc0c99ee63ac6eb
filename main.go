package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"gamer-network-system/cache"
	"gamer-network-system/handlers"
	"gamer-network-system/middleware"
	"gamer-network-system/models"
	"gamer-network-system/realtime"
	"gamer-network-system/services"
	"gamer-network-system/utils"
	"gamer-network-system/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading environment variables directly")
	}

	app := fiber.New(fiber.Config{
		BodyLimit: 10 * 1024 * 1024, // 10MB — avatars are the largest upload
	})

	// GLOBAL: only Gateway requests allowed — no exceptions.
	app.Use(middleware.GatewayAuthMiddleware())

	allowedOriginsEnv := os.Getenv("ALLOWED_ORIGINS")
	if allowedOriginsEnv == "" {
		log.Println("ALLOWED_ORIGINS not set, using default: http://localhost:3000")
		allowedOriginsEnv = "http://localhost:3000"
	}
	allowedOriginsList := strings.Split(allowedOriginsEnv, ",")
	for i, origin := range allowedOriginsList {
		allowedOriginsList[i] = strings.TrimSpace(origin)
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(allowedOriginsList, ","),
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, X-User-ID, X-Username, X-Network-ID",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	if err := utils.InitR2(); err != nil {
		log.Fatal("failed to initialize R2 client:", err)
	}

	// TranslateError surfaces driver unique violations as
	// gorm.ErrDuplicatedKey on any insert not going through ON CONFLICT.
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.Network{},
		&models.User{},
		&models.FriendRequest{},
		&models.XPEvent{},
		&models.Referral{},
		&models.Notification{},
		&models.Player{},
		&models.Match{},
		&models.NetworkPreference{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	standings, err := cache.NewStandingsCache(redisAddr, os.Getenv("REDIS_PASSWORD"))
	if err != nil {
		log.Fatal("failed to connect to redis:", err)
	}

	authServiceURL := os.Getenv("AUTH_SERVICE_URL")
	if authServiceURL == "" {
		log.Fatal("AUTH_SERVICE_URL environment variable not set")
	}
	serviceToken := os.Getenv("NETWORK_SERVICE_TOKEN")
	authClient := services.NewAuthServiceClient(authServiceURL, serviceToken)

	// Realtime layer: the coordinator resolves members fresh from the
	// graph at push time, never from a cached list.
	registry := realtime.NewRegistry()
	eligibility := services.NewEligibilityService(db)
	var graph *services.GraphService
	coordinator := realtime.NewCoordinator(registry, func(networkID string) ([]string, error) {
		return graph.NetworkMemberIDs(networkID)
	})

	notifications := services.NewNotificationService(db, coordinator)
	graph = services.NewGraphService(db, eligibility, notifications, coordinator)
	ledger := services.NewLedgerService(db, standings, coordinator)
	merge := services.NewMergeService(db, graph, eligibility, notifications, standings, coordinator)
	roster := services.NewRosterService(db, ledger, coordinator)

	services.StartMaintenanceScheduler(db)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	profileServiceURL := os.Getenv("PROFILE_SERVICE_URL")
	if profileServiceURL == "" {
		log.Fatal("PROFILE_SERVICE_URL environment variable not set")
	}
	syncWorker := workers.NewProfileSyncWorker(db, profileServiceURL, "/api/v1/public/profiles", serviceToken)
	go syncWorker.Start(ctx)

	handlers.SetupNetworkRoutes(app, graph, merge, ledger)
	handlers.SetupXPRoutes(app, ledger, roster)
	handlers.SetupNotificationRoutes(app, notifications)

	// Live connections: cookie-token auth, then upgrade.
	app.Get("/realtime",
		middleware.WSAuthMiddleware(authClient),
		realtime.UpgradeRequired,
		realtime.Handler(registry),
	)

	go func() {
		if err := app.Listen(":5300"); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Println("Server running on http://localhost:5300")
	log.Println("Profile Sync Worker running")
	log.Println("Maintenance scheduler running")
	log.Println("GatewayAuthMiddleware enforced globally — all requests must come from Gateway")

	<-ctx.Done()
	log.Println("Shutting down server...")
}
