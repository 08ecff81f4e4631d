package services

import (
  "testing"

  "gorm.io/driver/sqlite"
  "gorm.io/gorm"

  "github.com/saffron-speech/saffron-backend/internal/logger"
  "github.com/saffron-speech/saffron-backend/internal/types"
)

func newTestDB(t *testing.T) *gorm.DB {
  t.Helper()
  db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
  if err != nil {
    t.Fatalf("open sqlite: %v", err)
  }
  sqlDB, err := db.DB()
  if err != nil {
    t.Fatalf("unwrap sql.DB: %v", err)
  }
  sqlDB.SetMaxOpenConns(1)

  if err := db.AutoMigrate(
    &types.Rater{},
    &types.Test{},
    &types.Study{},
    &types.Session{},
    &types.Rating{},
    &types.Consent{},
  ); err != nil {
    t.Fatalf("migrate: %v", err)
  }
  return db
}

func newTestLogger() *logger.Logger {
  return logger.NewNop()
}
