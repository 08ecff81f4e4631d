package repos

import (
  "context"
  "errors"

  "gorm.io/gorm"
  "gorm.io/gorm/clause"

  "github.com/saffron-speech/saffron-backend/internal/logger"
  "github.com/saffron-speech/saffron-backend/internal/types"
)

type RaterRepo interface {
  Create(ctx context.Context, tx *gorm.DB, rater *types.Rater) error
  GetByID(ctx context.Context, tx *gorm.DB, id uint) (*types.Rater, error)
  GetByName(ctx context.Context, tx *gorm.DB, name string) (*types.Rater, error)
  GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*types.Rater, error)
  GetAll(ctx context.Context, tx *gorm.DB) ([]*types.Rater, error)
  CreateIfAbsentByEmail(ctx context.Context, tx *gorm.DB, rater *types.Rater) (*types.Rater, error)
}

type raterRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewRaterRepo(db *gorm.DB, baseLog *logger.Logger) RaterRepo {
  return &raterRepo{db: db, log: baseLog.With("repo", "RaterRepo")}
}

func (rr *raterRepo) Create(ctx context.Context, tx *gorm.DB, rater *types.Rater) error {
  transaction := tx
  if transaction == nil {
    transaction = rr.db
  }
  return transaction.WithContext(ctx).Create(rater).Error
}

func (rr *raterRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*types.Rater, error) {
  return rr.getOne(ctx, tx, "id = ?", id)
}

func (rr *raterRepo) GetByName(ctx context.Context, tx *gorm.DB, name string) (*types.Rater, error) {
  return rr.getOne(ctx, tx, "name = ?", name)
}

func (rr *raterRepo) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*types.Rater, error) {
  return rr.getOne(ctx, tx, "email = ?", email)
}

func (rr *raterRepo) GetAll(ctx context.Context, tx *gorm.DB) ([]*types.Rater, error) {
  transaction := tx
  if transaction == nil {
    transaction = rr.db
  }
  var results []*types.Rater
  if err := transaction.WithContext(ctx).Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

// CreateIfAbsentByEmail closes the first-contact race for panel raters: the
// insert does nothing on an email conflict and the row is re-fetched, so
// concurrent first contacts converge on one rater.
func (rr *raterRepo) CreateIfAbsentByEmail(ctx context.Context, tx *gorm.DB, rater *types.Rater) (*types.Rater, error) {
  transaction := tx
  if transaction == nil {
    transaction = rr.db
  }
  if err := transaction.WithContext(ctx).
    Clauses(clause.OnConflict{
      Columns:   []clause.Column{{Name: "email"}},
      DoNothing: true,
    }).
    Create(rater).Error; err != nil {
    return nil, err
  }
  return rr.getOne(ctx, tx, "email = ?", rater.Email)
}

// getOne returns (nil, nil) when no row matches; callers decide whether that
// is a not-found or an authentication failure.
func (rr *raterRepo) getOne(ctx context.Context, tx *gorm.DB, query string, args ...any) (*types.Rater, error) {
  transaction := tx
  if transaction == nil {
    transaction = rr.db
  }
  var result types.Rater
  err := transaction.WithContext(ctx).Where(query, args...).First(&result).Error
  if errors.Is(err, gorm.ErrRecordNotFound) {
    return nil, nil
  }
  if err != nil {
    return nil, err
  }
  return &result, nil
}
