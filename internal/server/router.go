package server

import (
  "github.com/gin-contrib/cors"
  "github.com/gin-gonic/gin"

  "github.com/saffron-speech/saffron-backend/internal/handlers"
  "github.com/saffron-speech/saffron-backend/internal/middleware"
)

type RouterConfig struct {
  AuthHandler     *handlers.AuthHandler
  TestHandler     *handlers.TestHandler
  RatingHandler   *handlers.RatingHandler
  PanelHandler    *handlers.PanelHandler
  TrackingHandler *handlers.TrackingHandler
  AuthMiddleware  *middleware.AuthMiddleware
}

func NewRouter(cfg RouterConfig) *gin.Engine {
  router := gin.Default()

  router.Use(cors.New(cors.Config{
    AllowOrigins:     []string{"*"},
    AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
    AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
    AllowCredentials: false,
  }))

  api := router.Group("/api")

  // Public
  api.GET("/", handlers.HealthCheck)
  api.POST("/login", cfg.AuthHandler.Login)
  api.POST("/signup", cfg.AuthHandler.Signup)
  api.PUT("/ratings/:id", cfg.RatingHandler.UpdateRating)

  // Panel service (no login; identity comes from query parameters)
  api.POST("/prolific/study", cfg.PanelHandler.CreateStudy)
  api.GET("/prolific/study", cfg.PanelHandler.Entry)
  api.POST("/prolific/session", cfg.PanelHandler.CreateSession)
  api.POST("/prolific/rating", cfg.PanelHandler.SubmitRating)

  // Authenticated
  protected := api.Group("/")
  protected.Use(cfg.AuthMiddleware.RequireAuth())
  protected.GET("/test/:id", cfg.TestHandler.GetTest)
  protected.GET("/verify_test/:id", cfg.TestHandler.VerifyTest)
  protected.POST("/ratings", cfg.RatingHandler.CreateRating)
  protected.GET("/prolific/consent/:test_id", cfg.PanelHandler.GiveConsent)

  // Admin
  admin := api.Group("/")
  admin.Use(cfg.AuthMiddleware.RequireAdmin())
  admin.POST("/test", cfg.TestHandler.CreateTest)
  admin.GET("/tracking", cfg.TrackingHandler.GetTracking)
  admin.GET("/results", cfg.TrackingHandler.GetResults)
  admin.GET("/results/:test_id", cfg.TrackingHandler.GetResultsByTest)

  return router
}
