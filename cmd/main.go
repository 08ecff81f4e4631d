package main

import (
  "fmt"
  "os"

  redisclient "github.com/saffron-speech/saffron-backend/internal/clients/redis"
  "github.com/saffron-speech/saffron-backend/internal/config"
  "github.com/saffron-speech/saffron-backend/internal/db"
  "github.com/saffron-speech/saffron-backend/internal/handlers"
  "github.com/saffron-speech/saffron-backend/internal/logger"
  "github.com/saffron-speech/saffron-backend/internal/middleware"
  "github.com/saffron-speech/saffron-backend/internal/repos"
  "github.com/saffron-speech/saffron-backend/internal/sequencer"
  "github.com/saffron-speech/saffron-backend/internal/server"
  "github.com/saffron-speech/saffron-backend/internal/services"
  "github.com/saffron-speech/saffron-backend/internal/utils"
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

  // Config
  cfgPath := utils.GetEnv("CONFIG_FILE", "config.yaml", log)
  cfg, err := config.Load(cfgPath, log)
  if err != nil {
    log.Fatal("Failed to load config", "error", err)
  }

  // Postgres
  postgresService, err := db.NewPostgresService(log)
  if err != nil {
    log.Fatal("Postgres init failed", "error", err)
  }
  if err := postgresService.AutoMigrateAll(); err != nil {
    log.Fatal("Postgres auto migration failed", "error", err)
  }
  thePG := postgresService.DB()

  // Redis (screening timer cache; the service fails open without it)
  cache, err := redisclient.NewCache(log)
  if err != nil {
    log.Warn("Redis init failed, screening timer will serve the full budget", "error", err)
    cache = nil
  }

  // Repos
  log.Info("Setting up repos...")
  raterRepo := repos.NewRaterRepo(thePG, log)
  testRepo := repos.NewTestRepo(thePG, log)
  studyRepo := repos.NewStudyRepo(thePG, log)
  sessionRepo := repos.NewSessionRepo(thePG, log)
  ratingRepo := repos.NewRatingRepo(thePG, log)
  consentRepo := repos.NewConsentRepo(thePG, log)

  // Services
  log.Info("Setting up services...")
  shuffler := sequencer.NewShuffler(cfg.ShuffleSeed)
  authService := services.NewAuthService(thePG, log, raterRepo, cfg.JWTSecretKey, cfg.TokenTTL)
  progressService := services.NewProgressService(thePG, log, ratingRepo)
  testService := services.NewTestService(thePG, log, testRepo, progressService, shuffler)
  consentService := services.NewConsentService(thePG, log, consentRepo, testRepo)
  screeningService := services.NewScreeningService(log, cache, cfg.ScreeningBudget, cfg.ScreeningTTL)
  trackingService := services.NewTrackingService(thePG, log, raterRepo, testRepo, ratingRepo)
  panelService := services.NewPanelService(
    thePG,
    log,
    raterRepo,
    testRepo,
    studyRepo,
    sessionRepo,
    authService,
    testService,
    progressService,
    consentService,
    screeningService,
  )

  // Handlers
  log.Info("Setting up handlers...")
  rejectionURL := utils.GetEnv("PANEL_REJECTION_URL", "", log)
  authHandler := handlers.NewAuthHandler(log, authService)
  testHandler := handlers.NewTestHandler(log, testService)
  ratingHandler := handlers.NewRatingHandler(log, progressService)
  panelHandler := handlers.NewPanelHandler(log, panelService, consentService, rejectionURL)
  trackingHandler := handlers.NewTrackingHandler(log, trackingService)

  // Middleware
  authMiddleware := middleware.NewAuthMiddleware(log, authService)

  // Router
  router := server.NewRouter(server.RouterConfig{
    AuthHandler:     authHandler,
    TestHandler:     testHandler,
    RatingHandler:   ratingHandler,
    PanelHandler:    panelHandler,
    TrackingHandler: trackingHandler,
    AuthMiddleware:  authMiddleware,
  })

  log.Info("Server listening", "port", cfg.Port)
  if err := router.Run(":" + cfg.Port); err != nil {
    log.Fatal("Server stopped", "error", err)
  }
}
