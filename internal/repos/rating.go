package repos

import (
  "context"
  "errors"

  "gorm.io/gorm"

  "github.com/saffron-speech/saffron-backend/internal/logger"
  "github.com/saffron-speech/saffron-backend/internal/types"
)

type RatingRepo interface {
  Create(ctx context.Context, tx *gorm.DB, rating *types.Rating) error
  GetByID(ctx context.Context, tx *gorm.DB, id uint) (*types.Rating, error)
  Update(ctx context.Context, tx *gorm.DB, id uint, fields map[string]any) (int64, error)
  DistinctMarkers(ctx context.Context, tx *gorm.DB, raterID, testID uint) ([]string, error)
  GetAll(ctx context.Context, tx *gorm.DB) ([]*types.Rating, error)
  GetByTest(ctx context.Context, tx *gorm.DB, testID uint) ([]*types.Rating, error)
  CountPerTest(ctx context.Context, tx *gorm.DB, raterID uint) (map[uint]int, error)
}

type ratingRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewRatingRepo(db *gorm.DB, baseLog *logger.Logger) RatingRepo {
  return &ratingRepo{db: db, log: baseLog.With("repo", "RatingRepo")}
}

func (rr *ratingRepo) Create(ctx context.Context, tx *gorm.DB, rating *types.Rating) error {
  transaction := tx
  if transaction == nil {
    transaction = rr.db
  }
  return transaction.WithContext(ctx).Create(rating).Error
}

func (rr *ratingRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*types.Rating, error) {
  transaction := tx
  if transaction == nil {
    transaction = rr.db
  }
  var result types.Rating
  err := transaction.WithContext(ctx).Where("id = ?", id).First(&result).Error
  if errors.Is(err, gorm.ErrRecordNotFound) {
    return nil, nil
  }
  if err != nil {
    return nil, err
  }
  return &result, nil
}

// Update applies a partial field map and reports how many rows matched, so the
// caller can distinguish a missing rating from a no-op.
func (rr *ratingRepo) Update(ctx context.Context, tx *gorm.DB, id uint, fields map[string]any) (int64, error) {
  transaction := tx
  if transaction == nil {
    transaction = rr.db
  }
  res := transaction.WithContext(ctx).
    Model(&types.Rating{}).
    Where("id = ?", id).
    Updates(fields)
  if res.Error != nil {
    return 0, res.Error
  }
  return res.RowsAffected, nil
}

// DistinctMarkers returns the distinct page_no_progress values recorded for a
// (rater, test) pair. Duplicate submissions collapse here.
func (rr *ratingRepo) DistinctMarkers(ctx context.Context, tx *gorm.DB, raterID, testID uint) ([]string, error) {
  transaction := tx
  if transaction == nil {
    transaction = rr.db
  }
  var markers []string
  if err := transaction.WithContext(ctx).
    Model(&types.Rating{}).
    Distinct("page_no_progress").
    Where("rater_id = ? AND test_id = ?", raterID, testID).
    Pluck("page_no_progress", &markers).Error; err != nil {
    return nil, err
  }
  return markers, nil
}

func (rr *ratingRepo) GetAll(ctx context.Context, tx *gorm.DB) ([]*types.Rating, error) {
  transaction := tx
  if transaction == nil {
    transaction = rr.db
  }
  var results []*types.Rating
  if err := transaction.WithContext(ctx).Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (rr *ratingRepo) GetByTest(ctx context.Context, tx *gorm.DB, testID uint) ([]*types.Rating, error) {
  transaction := tx
  if transaction == nil {
    transaction = rr.db
  }
  var results []*types.Rating
  if err := transaction.WithContext(ctx).
    Where("test_id = ?", testID).
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

// CountPerTest groups one rater's submissions by test.
func (rr *ratingRepo) CountPerTest(ctx context.Context, tx *gorm.DB, raterID uint) (map[uint]int, error) {
  transaction := tx
  if transaction == nil {
    transaction = rr.db
  }
  var rows []struct {
    TestID uint
    Total  int
  }
  if err := transaction.WithContext(ctx).
    Model(&types.Rating{}).
    Select("test_id, count(*) as total").
    Where("rater_id = ?", raterID).
    Group("test_id").
    Scan(&rows).Error; err != nil {
    return nil, err
  }
  counts := make(map[uint]int, len(rows))
  for _, row := range rows {
    counts[row.TestID] = row.Total
  }
  return counts, nil
}
