package middleware

import (
  "net/http"
  "net/http/httptest"
  "testing"
  "time"

  "github.com/gin-gonic/gin"
  "github.com/stretchr/testify/assert"
  "github.com/stretchr/testify/require"
  "gorm.io/driver/sqlite"
  "gorm.io/gorm"

  "github.com/saffron-speech/saffron-backend/internal/logger"
  "github.com/saffron-speech/saffron-backend/internal/repos"
  "github.com/saffron-speech/saffron-backend/internal/services"
  "github.com/saffron-speech/saffron-backend/internal/types"
)

func newAuthStack(t *testing.T) (services.AuthService, *gorm.DB) {
  t.Helper()
  db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
  require.NoError(t, err)
  sqlDB, err := db.DB()
  require.NoError(t, err)
  sqlDB.SetMaxOpenConns(1)
  require.NoError(t, db.AutoMigrate(&types.Rater{}))

  log := logger.NewNop()
  return services.NewAuthService(db, log, repos.NewRaterRepo(db, log), "test-secret", time.Hour), db
}

func signupAndToken(t *testing.T, auth services.AuthService, db *gorm.DB, name string) string {
  t.Helper()
  rater := &types.Rater{
    Name:     name,
    Age:      30,
    Gender:   "female",
    Email:    name + "@example.com",
    Password: "pw",
  }
  require.NoError(t, db.Create(rater).Error)
  token, err := auth.GenerateToken(name)
  require.NoError(t, err)
  return token
}

func newGuardedRouter(am *AuthMiddleware, handlerRan *bool) *gin.Engine {
  gin.SetMode(gin.TestMode)
  router := gin.New()

  protected := router.Group("/")
  protected.Use(am.RequireAuth())
  protected.GET("/me", func(c *gin.Context) {
    c.JSON(http.StatusOK, gin.H{"message": "ok"})
  })

  admin := router.Group("/")
  admin.Use(am.RequireAdmin())
  admin.GET("/tracking", func(c *gin.Context) {
    *handlerRan = true
    c.JSON(http.StatusOK, gin.H{"rows": []string{}})
  })
  return router
}

func TestRequireAdminRejectsNonAdminBeforeHandler(t *testing.T) {
  auth, db := newAuthStack(t)
  am := NewAuthMiddleware(logger.NewNop(), auth)

  handlerRan := false
  router := newGuardedRouter(am, &handlerRan)
  token := signupAndToken(t, auth, db, "mallory")

  rec := httptest.NewRecorder()
  req := httptest.NewRequest(http.MethodGet, "/tracking", nil)
  req.Header.Set("Authorization", "Bearer "+token)
  router.ServeHTTP(rec, req)

  assert.Equal(t, http.StatusUnauthorized, rec.Code)
  assert.False(t, handlerRan, "admin handler must not run for a non-admin token")
  assert.JSONEq(t, `{"message": "unauthorized"}`, rec.Body.String())
}

func TestRequireAdminAllowsAdmin(t *testing.T) {
  auth, db := newAuthStack(t)
  am := NewAuthMiddleware(logger.NewNop(), auth)

  handlerRan := false
  router := newGuardedRouter(am, &handlerRan)
  token := signupAndToken(t, auth, db, "admin")

  rec := httptest.NewRecorder()
  req := httptest.NewRequest(http.MethodGet, "/tracking", nil)
  req.Header.Set("Authorization", "Bearer "+token)
  router.ServeHTTP(rec, req)

  assert.Equal(t, http.StatusOK, rec.Code)
  assert.True(t, handlerRan)
}

func TestRequireAdminRejectsMissingToken(t *testing.T) {
  auth, _ := newAuthStack(t)
  am := NewAuthMiddleware(logger.NewNop(), auth)

  handlerRan := false
  router := newGuardedRouter(am, &handlerRan)

  rec := httptest.NewRecorder()
  req := httptest.NewRequest(http.MethodGet, "/tracking", nil)
  router.ServeHTTP(rec, req)

  assert.Equal(t, http.StatusUnauthorized, rec.Code)
  assert.False(t, handlerRan)
}

func TestRequireAuthPassesValidToken(t *testing.T) {
  auth, db := newAuthStack(t)
  am := NewAuthMiddleware(logger.NewNop(), auth)

  handlerRan := false
  router := newGuardedRouter(am, &handlerRan)
  token := signupAndToken(t, auth, db, "alice")

  rec := httptest.NewRecorder()
  req := httptest.NewRequest(http.MethodGet, "/me", nil)
  req.Header.Set("Authorization", "Bearer "+token)
  router.ServeHTTP(rec, req)

  assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireAuthRejectsGarbageToken(t *testing.T) {
  auth, _ := newAuthStack(t)
  am := NewAuthMiddleware(logger.NewNop(), auth)

  handlerRan := false
  router := newGuardedRouter(am, &handlerRan)

  rec := httptest.NewRecorder()
  req := httptest.NewRequest(http.MethodGet, "/me", nil)
  req.Header.Set("Authorization", "Bearer not-a-token")
  router.ServeHTTP(rec, req)

  assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
