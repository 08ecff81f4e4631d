package services

import (
  "context"
  "errors"
  "fmt"
  "time"

  "gorm.io/gorm"

  "github.com/saffron-speech/saffron-backend/internal/apierr"
  "github.com/saffron-speech/saffron-backend/internal/logger"
  "github.com/saffron-speech/saffron-backend/internal/repos"
  "github.com/saffron-speech/saffron-backend/internal/types"
)

type ConsentService interface {
  RecordConsent(ctx context.Context, raterID, testID uint) error
  HasConsented(ctx context.Context, raterID, testID uint) (bool, error)
}

type consentService struct {
  db          *gorm.DB
  log         *logger.Logger
  consentRepo repos.ConsentRepo
  testRepo    repos.TestRepo
}

func NewConsentService(db *gorm.DB, log *logger.Logger, consentRepo repos.ConsentRepo, testRepo repos.TestRepo) ConsentService {
  return &consentService{
    db:          db,
    log:         log.With("service", "ConsentService"),
    consentRepo: consentRepo,
    testRepo:    testRepo,
  }
}

// RecordConsent appends a consent row unconditionally; repeat calls accumulate
// rows and HasConsented stays true either way.
func (cs *consentService) RecordConsent(ctx context.Context, raterID, testID uint) error {
  test, err := cs.testRepo.GetByID(ctx, nil, testID)
  if err != nil {
    return fmt.Errorf("Failed to load test for consent: %w", err)
  }
  if test == nil {
    return apierr.NotFound(errors.New("test not found"))
  }

  consent := &types.Consent{
    RaterID:          raterID,
    TestID:           testID,
    TimeOfSubmission: time.Now(),
  }
  if err := cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    return cs.consentRepo.Create(ctx, tx, consent)
  }); err != nil {
    cs.log.Error("Failed to record consent", "error", err)
    return apierr.Persistence(errors.New("error recording consent"))
  }
  return nil
}

func (cs *consentService) HasConsented(ctx context.Context, raterID, testID uint) (bool, error) {
  ok, err := cs.consentRepo.Exists(ctx, nil, raterID, testID)
  if err != nil {
    return false, fmt.Errorf("Failed to check consent: %w", err)
  }
  return ok, nil
}
