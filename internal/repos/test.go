package repos

import (
  "context"
  "errors"

  "gorm.io/gorm"

  "github.com/saffron-speech/saffron-backend/internal/logger"
  "github.com/saffron-speech/saffron-backend/internal/types"
)

type TestRepo interface {
  Create(ctx context.Context, tx *gorm.DB, test *types.Test) error
  GetByID(ctx context.Context, tx *gorm.DB, id uint) (*types.Test, error)
}

type testRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewTestRepo(db *gorm.DB, baseLog *logger.Logger) TestRepo {
  return &testRepo{db: db, log: baseLog.With("repo", "TestRepo")}
}

func (tr *testRepo) Create(ctx context.Context, tx *gorm.DB, test *types.Test) error {
  transaction := tx
  if transaction == nil {
    transaction = tr.db
  }
  return transaction.WithContext(ctx).Create(test).Error
}

func (tr *testRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*types.Test, error) {
  transaction := tx
  if transaction == nil {
    transaction = tr.db
  }
  var result types.Test
  err := transaction.WithContext(ctx).Where("id = ?", id).First(&result).Error
  if errors.Is(err, gorm.ErrRecordNotFound) {
    return nil, nil
  }
  if err != nil {
    return nil, err
  }
  return &result, nil
}
