package repos

import (
  "context"
  "errors"

  "gorm.io/gorm"
  "gorm.io/gorm/clause"

  "github.com/saffron-speech/saffron-backend/internal/logger"
  "github.com/saffron-speech/saffron-backend/internal/types"
)

type StudyRepo interface {
  CreateIfAbsent(ctx context.Context, tx *gorm.DB, study *types.Study) (*types.Study, error)
  GetByExternalID(ctx context.Context, tx *gorm.DB, studyID string) (*types.Study, error)
}

type studyRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewStudyRepo(db *gorm.DB, baseLog *logger.Logger) StudyRepo {
  return &studyRepo{db: db, log: baseLog.With("repo", "StudyRepo")}
}

func (sr *studyRepo) CreateIfAbsent(ctx context.Context, tx *gorm.DB, study *types.Study) (*types.Study, error) {
  transaction := tx
  if transaction == nil {
    transaction = sr.db
  }
  if err := transaction.WithContext(ctx).
    Clauses(clause.OnConflict{
      Columns:   []clause.Column{{Name: "study_id"}},
      DoNothing: true,
    }).
    Create(study).Error; err != nil {
    return nil, err
  }
  return sr.GetByExternalID(ctx, tx, study.StudyID)
}

func (sr *studyRepo) GetByExternalID(ctx context.Context, tx *gorm.DB, studyID string) (*types.Study, error) {
  transaction := tx
  if transaction == nil {
    transaction = sr.db
  }
  var result types.Study
  err := transaction.WithContext(ctx).Where("study_id = ?", studyID).First(&result).Error
  if errors.Is(err, gorm.ErrRecordNotFound) {
    return nil, nil
  }
  if err != nil {
    return nil, err
  }
  return &result, nil
}
