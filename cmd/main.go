package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	redisclient "github.com/cbpricey/Motion-Industries/internal/clients/redis"
	"github.com/cbpricey/Motion-Industries/internal/db"
	httpserver "github.com/cbpricey/Motion-Industries/internal/http"
	httpH "github.com/cbpricey/Motion-Industries/internal/http/handlers"
	httpMW "github.com/cbpricey/Motion-Industries/internal/http/middleware"
	"github.com/cbpricey/Motion-Industries/internal/observability"
	"github.com/cbpricey/Motion-Industries/internal/pkg/logger"
	"github.com/cbpricey/Motion-Industries/internal/repos"
	"github.com/cbpricey/Motion-Industries/internal/services"
	"github.com/cbpricey/Motion-Industries/internal/utils"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Env
	log.Info("Loading environment variables from main...")
	jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	accessTokenTTL := utils.GetEnvAsInt("ACCESS_TOKEN_TTL", 3600, log)
	refreshTokenTTL := utils.GetEnvAsInt("REFRESH_TOKEN_TTL", 86400, log)
	seedAdminEmails := strings.Split(utils.GetEnv("SEED_ADMIN_EMAILS", "", log), ",")
	port := utils.GetEnv("PORT", "8080", log)

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Fatal("Postgres init failed", "error", err)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Warn("Postgres auto migration failed", "error", err)
	}
	thePG := postgresService.DB()

	// Metrics
	metrics := observability.Init()

	// Repos
	log.Info("Setting up Repos from main...")
	userRepo := repos.NewUserRepo(thePG, log)
	userTokenRepo := repos.NewUserTokenRepo(thePG, log)
	candidateRepo := repos.NewCandidateRepo(thePG, log)
	reviewLogRepo := repos.NewReviewLogRepo(thePG, log)
	feedbackRepo := repos.NewFeedbackRepo(thePG, log)

	// Redis (optional)
	var reviewBus redisclient.ReviewBus
	if os.Getenv("REDIS_ADDR") != "" {
		reviewBus, err = redisclient.NewReviewBus(log)
		if err != nil {
			log.Warn("Redis review bus init failed, continuing without it", "error", err)
			reviewBus = nil
		}
	}

	// Services
	log.Info("Setting up Services from main...")
	authService := services.NewAuthService(thePG, log, userRepo, userTokenRepo, jwtSecretKey, seedAdminEmails, time.Duration(accessTokenTTL)*time.Second, time.Duration(refreshTokenTTL)*time.Second)
	userService := services.NewUserService(thePG, log, userRepo, userTokenRepo)
	candidateService := services.NewCandidateService(log, candidateRepo)
	recorder := services.NewReviewRecorder(log, reviewLogRepo, feedbackRepo, reviewBus)
	reviewService := services.NewReviewService(log, candidateRepo, recorder)

	// Handlers
	log.Info("Setting up Handlers from main...")
	authHandler := httpH.NewAuthHandler(authService)
	userHandler := httpH.NewUserHandler(userService)
	candidateHandler := httpH.NewCandidateHandler(candidateService, reviewService)
	healthHandler := httpH.NewHealthHandler()

	// Middleware
	authMiddleware := httpMW.NewAuthMiddleware(log, authService)

	// Server
	server := httpserver.NewServer(httpserver.RouterConfig{
		Log:              log,
		Metrics:          metrics,
		AuthMiddleware:   authMiddleware,
		AuthHandler:      authHandler,
		UserHandler:      userHandler,
		CandidateHandler: candidateHandler,
		HealthHandler:    healthHandler,
	})

	log.Info("Starting server...", "port", port)
	if err := server.Run(":" + port); err != nil {
		log.Fatal("Server exited", "error", err)
	}
}
