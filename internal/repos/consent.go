package repos

import (
  "context"

  "gorm.io/gorm"

  "github.com/saffron-speech/saffron-backend/internal/logger"
  "github.com/saffron-speech/saffron-backend/internal/types"
)

type ConsentRepo interface {
  Create(ctx context.Context, tx *gorm.DB, consent *types.Consent) error
  Exists(ctx context.Context, tx *gorm.DB, raterID, testID uint) (bool, error)
}

type consentRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewConsentRepo(db *gorm.DB, baseLog *logger.Logger) ConsentRepo {
  return &consentRepo{db: db, log: baseLog.With("repo", "ConsentRepo")}
}

func (cr *consentRepo) Create(ctx context.Context, tx *gorm.DB, consent *types.Consent) error {
  transaction := tx
  if transaction == nil {
    transaction = cr.db
  }
  return transaction.WithContext(ctx).Create(consent).Error
}

func (cr *consentRepo) Exists(ctx context.Context, tx *gorm.DB, raterID, testID uint) (bool, error) {
  transaction := tx
  if transaction == nil {
    transaction = cr.db
  }
  var count int64
  if err := transaction.WithContext(ctx).
    Model(&types.Consent{}).
    Where("rater_id = ? AND test_id = ?", raterID, testID).
    Count(&count).Error; err != nil {
    return false, err
  }
  return count > 0, nil
}
