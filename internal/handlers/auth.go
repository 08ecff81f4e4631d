package handlers

import (
  "errors"

  "github.com/gin-gonic/gin"

  "github.com/saffron-speech/saffron-backend/internal/apierr"
  "github.com/saffron-speech/saffron-backend/internal/logger"
  "github.com/saffron-speech/saffron-backend/internal/services"
  "github.com/saffron-speech/saffron-backend/internal/types"
)

type AuthHandler struct {
  log         *logger.Logger
  authService services.AuthService
}

func NewAuthHandler(log *logger.Logger, authService services.AuthService) *AuthHandler {
  return &AuthHandler{
    log:         log.With("handler", "AuthHandler"),
    authService: authService,
  }
}

// POST /api/login
func (ah *AuthHandler) Login(c *gin.Context) {
  var req struct {
    Username string `json:"username"`
    Password string `json:"password"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, apierr.Validation(errors.New("invalid request body")))
    return
  }
  token, err := ah.authService.Login(c.Request.Context(), req.Username, req.Password)
  if err != nil {
    RespondError(c, err)
    return
  }
  RespondOK(c, gin.H{"token": token})
}

// POST /api/signup
func (ah *AuthHandler) Signup(c *gin.Context) {
  var req struct {
    Name     string `json:"name"`
    Age      int    `json:"age"`
    Gender   string `json:"gender"`
    Email    string `json:"email"`
    Password string `json:"password"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, apierr.Validation(errors.New("invalid request body")))
    return
  }
  rater := types.Rater{
    Name:     req.Name,
    Age:      req.Age,
    Gender:   req.Gender,
    Email:    req.Email,
    Password: req.Password,
  }
  token, err := ah.authService.Signup(c.Request.Context(), &rater)
  if err != nil {
    RespondError(c, err)
    return
  }
  RespondCreated(c, gin.H{"token": token})
}
